package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/blob"
	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/config"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/suiblog/internal/client/services"
	"github.com/dmitrijs2005/suiblog/internal/client/store"
	"github.com/dmitrijs2005/suiblog/internal/client/wallet"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/netx"
	"github.com/dmitrijs2005/suiblog/internal/txb"
)

type Mode string

const (
	ModeConnected    Mode = "connected"
	ModeDisconnected Mode = "disconnected"
)

// walletClient is the part of the wallet bridge the REPL talks to directly.
// Signing goes through the publish service.
type walletClient interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	Ping(ctx context.Context) error
}

type App struct {
	config    *config.Config
	wallet    walletClient
	posts     services.PostService
	publisher services.PublishService
	feed      *services.Feed
	drafts    drafts.Store
	log       logging.Logger

	account     string
	draft       *models.Draft
	attachments []*models.Attachment
	// listing is the last table of posts shown; "#n" arguments index into it.
	listing []*models.Post

	modeMu sync.Mutex
	mode   Mode

	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

func newBlobStore(ctx context.Context, c *config.Config, hc *http.Client, policy netx.RetryPolicy,
	m metrics.Provider, l logging.Logger) (blob.Store, error) {

	walrus := blob.NewWalrus(c.PublisherURL, c.AggregatorURL, hc, policy, m, l)

	switch c.BlobBackend {
	case config.BackendS3:
		s3, err := blob.NewS3(ctx, blob.S3Config{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		}, policy, m, l)
		if err != nil {
			return nil, err
		}
		// posts published by other clients keep pointing at Walrus
		return s3.WithFallback(walrus), nil
	default:
		return walrus, nil
	}
}

// NewApp opens local storage and connects every collaborator named in c.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger, m metrics.Provider) (*App, error) {
	db, err := store.Open(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	policy := netx.RetryPolicy{Attempts: c.RetryAttempts, BaseDelay: netx.DefaultRetryPolicy.BaseDelay}
	hc := &http.Client{Timeout: c.RequestTimeout}

	blobs, err := newBlobStore(ctx, c, hc, policy, m, l)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}

	w, err := wallet.New(c.WalletAddr, c.WalletSession)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("wallet: %w", err)
	}

	reader := chain.NewCachedReader(chain.NewClient(c.RPCURL, hc, policy, m, l), c.CacheSize, c.CacheTTL, m)
	blog := txb.NewBlog(c.PackageID)
	ds := drafts.NewSQLiteStore(db)
	posts := services.NewPostService(reader, blobs, blog, m, l)
	pub := services.NewPublishService(blog, blobs, w, ds, reader, services.PublishConfig{
		Network:            c.Network,
		Epochs:             c.Epochs,
		UploadConcurrency:  c.UploadConcurrency,
		InlineContentLimit: c.InlineContentLimit,
	}, m, l)

	return &App{
		config:    c,
		wallet:    w,
		posts:     posts,
		publisher: pub,
		feed:      services.NewFeed(posts, c.PageSize),
		drafts:    ds,
		log:       l,
		mode:      ModeDisconnected,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		closers:   []func() error{w.Close, db.Close},
	}, nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Run blocks in the REPL until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error(ctx, "close", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) hasAccount() bool {
	return a.account != ""
}

// commandContext bounds one REPL command by the configured request timeout.
func (a *App) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// fail reports err to the user and hands it back to the caller.
func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "error: %v\n", err)
	return err
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.wallet.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ModeDisconnected)
		} else {
			a.setMode(ModeConnected)
		}
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
