package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/codec"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/txb"
)

// moveStruct accepts a nested Move struct in either shape the node renders
// it: wrapped as {"type": ..., "fields": {...}} or as the bare field object.
type moveStruct[T any] struct {
	Value T
}

func (m *moveStruct[T]) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.Fields) > 0 && !bytes.Equal(wrapped.Fields, []byte("null")) {
		data = wrapped.Fields
	}
	return json.Unmarshal(data, &m.Value)
}

type commentFields struct {
	Author    codec.Bytes `json:"author"`
	Content   codec.Bytes `json:"content"`
	CreatedAt codec.U64   `json:"created_at"`
}

type assetFields struct {
	Hash      codec.Bytes `json:"hash"`
	AssetType codec.Bytes `json:"asset_type"`
	Name      codec.Bytes `json:"name"`
}

type postFields struct {
	Title       codec.Bytes                 `json:"title"`
	ContentHash codec.Bytes                 `json:"content_hash"`
	ContentType codec.Bytes                 `json:"content_type"`
	Author      codec.Bytes                 `json:"author"`
	Tags        []codec.Bytes               `json:"tags"`
	CreatedAt   codec.U64                   `json:"created_at"`
	Likes       codec.U64                   `json:"likes"`
	Comments    []moveStruct[commentFields] `json:"comments"`
	Assets      []moveStruct[assetFields]   `json:"assets"`
}

// postCreated is the parsed payload of a PostCreated event.
type postCreated struct {
	PostID string      `json:"post_id"`
	Title  codec.Bytes `json:"title"`
	Author codec.Bytes `json:"author"`
}

// sameType compares two Move type tags, ignoring the case of the package address.
func sameType(a, b string) bool {
	pa, ra, okA := strings.Cut(a, "::")
	pb, rb, okB := strings.Cut(b, "::")
	if !okA || !okB {
		return a == b
	}
	return strings.EqualFold(pa, pb) && ra == rb
}

// decodePost turns a ledger object into a Post. It fails with
// *common.DecodeError when the object is not a blog post of this package.
func decodePost(blog *txb.Blog, obj *chain.ObjectData) (*models.Post, error) {
	if obj.Content == nil || obj.Content.DataType != "moveObject" {
		return nil, &common.DecodeError{ID: obj.ObjectID, Reason: "not a Move object"}
	}

	typ := obj.Content.Type
	if typ == "" {
		typ = obj.Type
	}
	if !sameType(typ, blog.PostType()) {
		return nil, &common.DecodeError{ID: obj.ObjectID, Reason: "unexpected type " + typ}
	}

	var f postFields
	if err := json.Unmarshal(obj.Content.Fields, &f); err != nil {
		return nil, &common.DecodeError{ID: obj.ObjectID, Reason: err.Error()}
	}

	p := &models.Post{
		ID:          obj.ObjectID,
		Title:       f.Title.String(),
		Content:     f.ContentHash.String(),
		ContentType: f.ContentType.String(),
		Author:      f.Author.String(),
		CreatedAt:   int64(f.CreatedAt),
		Tags:        codec.Strings(f.Tags),
		Likes:       uint64(f.Likes),
	}
	if p.ContentType == "" {
		p.ContentType = txb.ContentMarkdown
	}

	for _, c := range f.Comments {
		p.Comments = append(p.Comments, models.Comment{
			Author:    c.Value.Author.String(),
			Content:   c.Value.Content.String(),
			CreatedAt: int64(c.Value.CreatedAt),
		})
	}
	for _, a := range f.Assets {
		p.Assets = append(p.Assets, models.Asset{
			Hash: a.Value.Hash.String(),
			Type: a.Value.AssetType.String(),
			Name: a.Value.Name.String(),
		})
	}
	return p, nil
}
