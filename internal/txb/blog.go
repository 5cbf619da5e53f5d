package txb

import (
	"fmt"

	"github.com/dmitrijs2005/suiblog/internal/codec"
	"github.com/dmitrijs2005/suiblog/internal/common"
)

// ModuleName is the Move module holding the blog entry functions.
const ModuleName = "blog"

// Content type tags understood by readers.
const (
	ContentMarkdown = "markdown"
	ContentWalrus   = "walrus"
)

// PostFields are the text fields of a new post.
type PostFields struct {
	Title       string
	Content     string
	ContentType string
	Author      string
	Tags        []string
}

// AssetFields describe one uploaded attachment.
type AssetFields struct {
	Hash string // retrieval URL or blob id
	Type string // MIME type
	Name string
}

// Blog builds calls against one deployed blog package.
type Blog struct {
	pkg string
}

func NewBlog(packageID string) *Blog {
	return &Blog{pkg: packageID}
}

func (b *Blog) target(fn string) string {
	return b.pkg + "::" + ModuleName + "::" + fn
}

// EventType is the fully qualified type of the given blog event.
func (b *Blog) EventType(name string) string { return b.target(name) }

// PostType is the struct tag of blog posts.
func (b *Blog) PostType() string { return b.target("Post") }

func pureText(t *Transaction, field, s string) (Argument, error) {
	enc, err := codec.Encode(s)
	if err != nil {
		return Argument{}, fmt.Errorf("%s: %w", field, err)
	}
	return t.Pure(EncodeBytes(enc)), nil
}

func pureTexts(t *Transaction, field string, ss []string) (Argument, error) {
	enc, err := codec.EncodeAll(ss)
	if err != nil {
		return Argument{}, fmt.Errorf("%s: %w", field, err)
	}
	return t.Pure(EncodeBytesVector(enc)), nil
}

// BuildPublishTransaction creates the post and attaches every asset to it in
// the same transaction. Each add_asset call takes the post produced by the
// first call, not a known object id.
func (b *Blog) BuildPublishTransaction(p PostFields, assets []AssetFields) (*Transaction, error) {
	t := New()
	clock := t.Object(common.ClockObjectID)

	contentType := p.ContentType
	if contentType == "" {
		contentType = ContentMarkdown
	}

	var args []Argument
	for _, f := range []struct{ name, value string }{
		{"title", p.Title},
		{"content", p.Content},
		{"content_type", contentType},
		{"author", p.Author},
	} {
		a, err := pureText(t, f.name, f.value)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}

	tags, err := pureTexts(t, "tags", p.Tags)
	if err != nil {
		return nil, err
	}
	args = append(args, tags, clock)

	post, err := t.MoveCall(b.target("create_post"), args...)
	if err != nil {
		return nil, err
	}

	for i, a := range assets {
		hash, err := pureText(t, fmt.Sprintf("asset %d hash", i), a.Hash)
		if err != nil {
			return nil, err
		}
		typ, err := pureText(t, fmt.Sprintf("asset %d type", i), a.Type)
		if err != nil {
			return nil, err
		}
		name, err := pureText(t, fmt.Sprintf("asset %d name", i), a.Name)
		if err != nil {
			return nil, err
		}
		if _, err := t.MoveCall(b.target("add_asset"), post, hash, typ, name, clock); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// BuildCommentTransaction appends a comment to an existing post.
func (b *Blog) BuildCommentTransaction(postID, author, text string) (*Transaction, error) {
	t := New()
	post := t.Object(postID)

	authorArg, err := pureText(t, "author", author)
	if err != nil {
		return nil, err
	}
	content, err := pureText(t, "content", text)
	if err != nil {
		return nil, err
	}
	clock := t.Object(common.ClockObjectID)

	if _, err := t.MoveCall(b.target("add_comment"), post, authorArg, content, clock); err != nil {
		return nil, err
	}
	return t, nil
}

// BuildLikeTransaction increments the like counter of a post.
func (b *Blog) BuildLikeTransaction(postID string) (*Transaction, error) {
	t := New()
	if _, err := t.MoveCall(b.target("like_post"), t.Object(postID)); err != nil {
		return nil, err
	}
	return t, nil
}
