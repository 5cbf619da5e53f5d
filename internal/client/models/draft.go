package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Draft is an unpublished post kept in local storage between sessions.
type Draft struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"dive,required"`
}

// Normalized returns d with surrounding whitespace trimmed from every field.
// Empty tags are kept so validation can report them.
func (d Draft) Normalized() Draft {
	out := Draft{
		Title:   strings.TrimSpace(d.Title),
		Content: strings.TrimSpace(d.Content),
	}
	if len(d.Tags) > 0 {
		out.Tags = make([]string, len(d.Tags))
		for i, t := range d.Tags {
			out.Tags[i] = strings.TrimSpace(t)
		}
	}
	return out
}

// Attachment is a local file staged for upload with the next publish.
type Attachment struct {
	Path string
	Name string
	Data []byte
	// MIME is detected from the bytes, not the file extension.
	MIME string `validate:"startswith=image/"`
}

// LoadAttachment reads path and detects its MIME type.
func LoadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return &Attachment{
		Path: path,
		Name: filepath.Base(path),
		Data: data,
		MIME: mimetype.Detect(data).String(),
	}, nil
}

// IsImage reports whether the detected type is an image.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MIME, "image/")
}
