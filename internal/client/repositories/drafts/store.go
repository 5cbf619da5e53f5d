package drafts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/dbx"
)

// LastPublishedKey holds the digest of the most recent successful publish.
const LastPublishedKey = "lastPublishedDigest"

type Store interface {
	Save(ctx context.Context, d models.Draft) error
	// Load returns (nil, nil) when no draft is saved.
	Load(ctx context.Context) (*models.Draft, error)
	Clear(ctx context.Context) error
	// MarkPublished drops the draft and records digest atomically.
	MarkPublished(ctx context.Context, digest string) error
	LastPublished(ctx context.Context) (string, error)
}

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

type SQLiteStore struct {
	db   DB
	repo metadata.Repository
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db DB) *SQLiteStore {
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db)}
}

func (s *SQLiteStore) Save(ctx context.Context, d models.Draft) error {
	if d.Tags == nil {
		d.Tags = []string{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.repo.Set(ctx, common.DraftKey, data)
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Draft, error) {
	data, err := s.repo.Get(ctx, common.DraftKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var d models.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.DraftKey)
}

func (s *SQLiteStore) MarkPublished(ctx context.Context, digest string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.DraftKey); err != nil {
			return err
		}
		return repo.Set(ctx, LastPublishedKey, []byte(digest))
	})
}

func (s *SQLiteStore) LastPublished(ctx context.Context) (string, error) {
	data, err := s.repo.Get(ctx, LastPublishedKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
