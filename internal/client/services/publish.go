package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/suiblog/internal/blob"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/txb"
	"github.com/go-playground/validator/v10"
)

// Signer signs and submits a transaction on behalf of an account.
type Signer interface {
	SignAndExecute(ctx context.Context, tx *txb.Transaction, account, network string) (*models.Receipt, error)
}

// Invalidator drops cached copies of an object.
type Invalidator interface {
	Invalidate(id string)
}

type PublishConfig struct {
	Network string
	Epochs  int
	// UploadConcurrency bounds parallel attachment uploads; 0 is unbounded.
	UploadConcurrency int
	// InlineContentLimit is the largest body stored inline in the post
	// object. Longer bodies go to blob storage. 0 disables the limit.
	InlineContentLimit int
}

type PublishService interface {
	// Publish validates the draft, uploads attachments, submits one
	// transaction creating the post with its assets and, on success,
	// clears the saved draft. On any failure the draft is kept.
	Publish(ctx context.Context, account string, d models.Draft, attachments []*models.Attachment) (*models.Receipt, error)
	Comment(ctx context.Context, account, postID, text string) (*models.Receipt, error)
	Like(ctx context.Context, account, postID string) (*models.Receipt, error)
}

type publishService struct {
	blog     *txb.Blog
	uploader blob.Uploader
	signer   Signer
	drafts   drafts.Store
	cache    Invalidator
	cfg      PublishConfig
	validate *validator.Validate
	metrics  metrics.Provider
	log      logging.Logger
}

func NewPublishService(blog *txb.Blog, up blob.Uploader, signer Signer, ds drafts.Store, cache Invalidator,
	cfg PublishConfig, m metrics.Provider, log logging.Logger) PublishService {

	if m == nil {
		m = metrics.Noop{}
	}
	return &publishService{
		blog:     blog,
		uploader: up,
		signer:   signer,
		drafts:   ds,
		cache:    cache,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		log:      log.With("component", "publish"),
	}
}

// validationError converts the first validator failure into the
// project's error type.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		switch fe.Tag() {
		case "required":
			reason = "must not be empty"
		case "startswith":
			reason = fmt.Sprintf("must start with %q, got %q", fe.Param(), fe.Value())
		}
		return &common.ValidationError{Field: strings.ToLower(fe.StructField()), Reason: reason}
	}
	return &common.ValidationError{Reason: err.Error()}
}

func (s *publishService) checkDraft(account string, d models.Draft, attachments []*models.Attachment) error {
	if account == "" {
		return &common.ValidationError{Reason: "no wallet account selected"}
	}
	if err := s.validate.Struct(d); err != nil {
		return validationError(err)
	}
	for _, a := range attachments {
		if err := s.validate.Struct(a); err != nil {
			return &common.ValidationError{
				Field:  "attachment",
				Reason: fmt.Sprintf("%s is %s, only images can be attached", a.Name, a.MIME),
			}
		}
	}
	return nil
}

func asUploadError(err error) error {
	if errors.Is(err, common.ErrUpload) {
		return err
	}
	return &common.UploadError{Err: err}
}

func asTransactionError(err error) error {
	if errors.Is(err, common.ErrTransaction) {
		return err
	}
	return &common.TransactionError{Err: err}
}

func (s *publishService) Publish(ctx context.Context, account string, d models.Draft, attachments []*models.Attachment) (*models.Receipt, error) {
	d = d.Normalized()
	if err := s.checkDraft(account, d, attachments); err != nil {
		return nil, err
	}

	fields := txb.PostFields{
		Title:       d.Title,
		Content:     d.Content,
		ContentType: txb.ContentMarkdown,
		Author:      account,
		Tags:        d.Tags,
	}

	if limit := s.cfg.InlineContentLimit; limit > 0 && len(d.Content) > limit {
		id, err := s.uploader.Upload(ctx, []byte(d.Content), s.cfg.Epochs, account)
		if err != nil {
			return nil, fmt.Errorf("upload content: %w", asUploadError(err))
		}
		s.log.Info(ctx, "content stored as blob", "blob_id", id, "size", len(d.Content))
		fields.Content = id
		fields.ContentType = txb.ContentWalrus
	}

	items := make([]blob.Item, len(attachments))
	for i, a := range attachments {
		items[i] = blob.Item{Name: a.Name, Data: a.Data}
	}
	results, err := blob.UploadAll(ctx, s.uploader, items, s.cfg.Epochs, account, s.cfg.UploadConcurrency)
	if err != nil {
		return nil, fmt.Errorf("upload attachments: %w", asUploadError(err))
	}

	assets := make([]txb.AssetFields, len(attachments))
	for i, a := range attachments {
		assets[i] = txb.AssetFields{Hash: results[i].URL, Type: a.MIME, Name: a.Name}
	}

	tx, err := s.blog.BuildPublishTransaction(fields, assets)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	receipt, err := s.submit(ctx, "publish", tx, account)
	if err != nil {
		return receipt, err
	}

	if err := s.drafts.MarkPublished(ctx, receipt.Digest); err != nil {
		// the post is on chain; a stale draft is the only casualty
		s.log.Error(ctx, "clear draft after publish", "digest", receipt.Digest, "error", err)
	}
	s.log.Info(ctx, "post published", "digest", receipt.Digest, "assets", len(assets))
	return receipt, nil
}

func (s *publishService) submit(ctx context.Context, kind string, tx *txb.Transaction, account string) (*models.Receipt, error) {
	receipt, err := s.signer.SignAndExecute(ctx, tx, account, s.cfg.Network)
	if err == nil && !receipt.Succeeded() {
		msg := receipt.Error
		if msg == "" {
			msg = "execution status " + receipt.Status
		}
		err = &common.TransactionError{Digest: receipt.Digest, Err: errors.New(msg)}
	}
	s.metrics.IncrementTransactions(kind, err == nil)
	if err != nil {
		s.log.Warn(ctx, "transaction failed", "kind", kind, "error", err)
		return receipt, asTransactionError(err)
	}
	return receipt, nil
}

func (s *publishService) invalidate(id string) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}

func (s *publishService) Comment(ctx context.Context, account, postID, text string) (*models.Receipt, error) {
	text = strings.TrimSpace(text)
	switch {
	case account == "":
		return nil, &common.ValidationError{Reason: "no wallet account selected"}
	case postID == "":
		return nil, &common.ValidationError{Field: "post", Reason: "must not be empty"}
	case text == "":
		return nil, &common.ValidationError{Field: "comment", Reason: "must not be empty"}
	}

	tx, err := s.blog.BuildCommentTransaction(postID, account, text)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	receipt, err := s.submit(ctx, "comment", tx, account)
	if err != nil {
		return receipt, err
	}
	s.invalidate(postID)
	return receipt, nil
}

func (s *publishService) Like(ctx context.Context, account, postID string) (*models.Receipt, error) {
	switch {
	case account == "":
		return nil, &common.ValidationError{Reason: "no wallet account selected"}
	case postID == "":
		return nil, &common.ValidationError{Field: "post", Reason: "must not be empty"}
	}

	tx, err := s.blog.BuildLikeTransaction(postID)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	receipt, err := s.submit(ctx, "like", tx, account)
	if err != nil {
		return receipt, err
	}
	s.invalidate(postID)
	return receipt, nil
}
