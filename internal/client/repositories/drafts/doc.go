// Package drafts persists the composer's in-progress post.
//
// Exactly one draft exists per local database. It is stored as JSON
// ({"title", "content", "tags"}) under common.DraftKey in the metadata
// table, so a draft written by one session is restored by the next.
//
// Typical usage
//
//	st := drafts.NewSQLiteStore(db)
//	_ = st.Save(ctx, models.Draft{Title: "Hello"})
//	d, _ := st.Load(ctx) // nil when nothing is saved
//	_ = st.MarkPublished(ctx, digest)
package drafts
