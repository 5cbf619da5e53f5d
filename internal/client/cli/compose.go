package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/common"
)

// restoreDraft loads the draft left by a previous session, if any.
func (a *App) restoreDraft(ctx context.Context) error {
	d, err := a.drafts.Load(ctx)
	if err != nil {
		return err
	}
	if d != nil {
		a.draft = d
		fmt.Fprintf(a.out, "Restored draft %q (type 'draft' to view it)\n", d.Title)
	}
	return nil
}

// saveDraft persists the in-memory draft. A failed save is reported but
// does not abort editing.
func (a *App) saveDraft(ctx context.Context) {
	if a.draft == nil {
		return
	}
	if err := a.drafts.Save(ctx, *a.draft); err != nil {
		a.log.Warn(ctx, "save draft", "error", err)
		fmt.Fprintf(a.out, "warning: draft not saved: %v\n", err)
	}
}

// New edits the draft field by field, saving after each one. An existing
// draft is used as the starting point; empty answers keep its values.
func (a *App) New(ctx context.Context) error {
	if a.draft == nil {
		a.draft = &models.Draft{Tags: []string{}}
		a.attachments = nil
	}

	title, err := GetTextWithDefault(a.reader, "Title", a.draft.Title, a.out)
	if err != nil {
		return a.fail(fmt.Errorf("read title: %w", err))
	}
	a.draft.Title = title
	a.saveDraft(ctx)

	prompt := "Content (Markdown)"
	if a.draft.Content != "" {
		prompt += ", empty keeps the current body"
	}
	content, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return a.fail(fmt.Errorf("read content: %w", err))
	}
	if content != "" {
		a.draft.Content = content
		a.saveDraft(ctx)
	}

	tags, err := GetTags(a.reader, "Tags", a.out)
	if err != nil {
		return a.fail(fmt.Errorf("read tags: %w", err))
	}
	if len(tags) > 0 {
		a.draft.Tags = tags
		a.saveDraft(ctx)
	}

	fmt.Fprintln(a.out, "Draft saved. Use 'attach <path>' to add images and 'publish' when ready.")
	return nil
}

func (a *App) Draft(ctx context.Context) error {
	if a.draft == nil {
		fmt.Fprintln(a.out, "No draft. Use 'new' to start one.")
		return nil
	}
	renderDraft(a.out, a.draft, a.attachments)
	return nil
}

func (a *App) Discard(ctx context.Context) error {
	if a.draft == nil && len(a.attachments) == 0 {
		fmt.Fprintln(a.out, "Nothing to discard.")
		return nil
	}
	if !Confirm(a.reader, "Discard the current draft?", a.out) {
		return nil
	}
	if err := a.drafts.Clear(ctx); err != nil {
		return a.fail(err)
	}
	a.draft, a.attachments = nil, nil
	fmt.Fprintln(a.out, "Draft discarded.")
	return nil
}

// Attach stages an image for the next publish. Attachments live only for
// the session; the saved draft holds text fields only.
func (a *App) Attach(ctx context.Context, path string) error {
	att, err := models.LoadAttachment(path)
	if err != nil {
		return a.fail(err)
	}
	if !att.IsImage() {
		return a.fail(&common.ValidationError{
			Field:  "attachment",
			Reason: fmt.Sprintf("%s is %s, only images can be attached", att.Name, att.MIME),
		})
	}
	if a.draft == nil {
		a.draft = &models.Draft{Tags: []string{}}
	}
	a.attachments = append(a.attachments, att)
	fmt.Fprintf(a.out, "Attached %s (%s, %d bytes)\n", att.Name, att.MIME, len(att.Data))
	return nil
}

// Publish runs without the per-command deadline: once the wallet has the
// transaction it may land on chain whether or not we are still waiting.
// Each HTTP request is still bounded by the client timeout.
func (a *App) Publish(ctx context.Context) error {
	if a.draft == nil {
		return a.fail(errors.New("no draft to publish, use 'new' first"))
	}

	fmt.Fprintf(a.out, "Publishing %q with %d attachment(s)...\n", a.draft.Title, len(a.attachments))
	receipt, err := a.publisher.Publish(ctx, a.account, *a.draft, a.attachments)
	if err != nil {
		if errors.Is(err, common.ErrUpload) || errors.Is(err, common.ErrTransaction) {
			fmt.Fprintln(a.out, "The draft was kept; fix the problem and publish again.")
		}
		return a.fail(err)
	}

	a.draft, a.attachments = nil, nil
	a.feed.Reset()
	fmt.Fprintf(a.out, "Published. Transaction %s\n", receipt.Digest)
	for _, id := range receipt.Created {
		fmt.Fprintf(a.out, "  created %s\n", id)
	}
	return nil
}
