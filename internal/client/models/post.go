// Package models defines the client-side view of blog posts, drafts and
// wallet results.
package models

import "time"

// Post is a blog post object as read from the ledger.
type Post struct {
	// ID is the ledger object id.
	ID string

	Title string

	// Content is inline Markdown or, depending on ContentType, a blob
	// reference resolved by the reader.
	Content     string
	ContentType string

	// Author is the address that published the post.
	Author string

	// CreatedAt is milliseconds since the Unix epoch, taken from the ledger clock.
	CreatedAt int64

	Tags     []string
	Likes    uint64
	Assets   []Asset
	Comments []Comment
}

// Created returns CreatedAt as a time in UTC.
func (p *Post) Created() time.Time {
	return time.UnixMilli(p.CreatedAt).UTC()
}

// Asset is an attachment owned by a post.
type Asset struct {
	// Hash is the retrieval URL or blob id.
	Hash string
	// Type is the declared MIME type.
	Type string
	Name string
}

// Comment is an append-only remark on a post.
type Comment struct {
	Author    string
	Content   string
	CreatedAt int64
}

// Page is one page of the post feed.
type Page struct {
	Number  int
	Posts   []*Post
	HasNext bool
}
