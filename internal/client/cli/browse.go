package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/filex"
)

func (a *App) Accounts(ctx context.Context) error {
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	accounts, err := a.wallet.Accounts(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "The wallet exposes no accounts.")
		return nil
	}
	renderAccounts(a.out, accounts, a.account)
	return nil
}

// Use selects the signing account by address or by its number in the
// wallet's account list.
func (a *App) Use(ctx context.Context, ref string) error {
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	accounts, err := a.wallet.Accounts(ctx)
	if err != nil {
		return a.fail(err)
	}

	var found *models.Account
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(accounts) {
		found = &accounts[n-1]
	}
	for i := range accounts {
		if found == nil && strings.EqualFold(accounts[i].Address, ref) {
			found = &accounts[i]
		}
	}
	if found == nil {
		return a.fail(&common.ValidationError{Field: "account", Reason: ref + " is not an account of the connected wallet"})
	}

	a.account = found.Address
	fmt.Fprintf(a.out, "Using %s\n", found.Address)
	return nil
}

// postRef resolves "#n"/"n" against the last listing, anything else is an object id.
func (a *App) postRef(ref string) (string, error) {
	num := strings.TrimPrefix(ref, "#")
	if n, err := strconv.Atoi(num); err == nil {
		if n < 1 || n > len(a.listing) {
			return "", &common.ValidationError{Field: "post", Reason: fmt.Sprintf("no post #%d in the last listing", n)}
		}
		return a.listing[n-1].ID, nil
	}
	if !strings.HasPrefix(ref, "0x") {
		return "", &common.ValidationError{Field: "post", Reason: "expected a listing number or a 0x object id"}
	}
	return ref, nil
}

func (a *App) showPage(p *models.Page) {
	a.listing = p.Posts
	total, exact := a.feed.Estimate()
	caption := fmt.Sprintf("page %d of %d, about %d posts", p.Number, a.feed.Pages(), total)
	if exact {
		caption = fmt.Sprintf("page %d of %d, %d posts", p.Number, a.feed.Pages(), total)
	}
	renderPosts(a.out, p.Posts, caption)
}

func (a *App) pageCommand(ctx context.Context, load func(context.Context) (*models.Page, error)) error {
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	p, err := load(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.showPage(p)
	return nil
}

// List shows the current page, loading the first one on first use.
func (a *App) List(ctx context.Context) error {
	if p := a.feed.Current(); p != nil {
		a.showPage(p)
		return nil
	}
	return a.pageCommand(ctx, a.feed.Refresh)
}

func (a *App) Next(ctx context.Context) error { return a.pageCommand(ctx, a.feed.Next) }

func (a *App) Prev(ctx context.Context) error { return a.pageCommand(ctx, a.feed.Prev) }

func (a *App) Refresh(ctx context.Context) error { return a.pageCommand(ctx, a.feed.Refresh) }

func (a *App) Page(ctx context.Context, n int) error {
	return a.pageCommand(ctx, func(ctx context.Context) (*models.Page, error) {
		return a.feed.GoToPage(ctx, n)
	})
}

func (a *App) Show(ctx context.Context, ref string) error {
	id, err := a.postRef(ref)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	p, err := a.posts.GetPost(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	body, err := a.posts.ResolveContent(ctx, p)
	if err != nil {
		a.log.Warn(ctx, "resolve content", "post", id, "error", err)
		body = "(content unavailable: " + err.Error() + ")"
	}
	renderPost(a.out, p, body)
	return nil
}

// Comment and Like submit without a command deadline, like Publish.
func (a *App) Comment(ctx context.Context, ref string) error {
	id, err := a.postRef(ref)
	if err != nil {
		return a.fail(err)
	}
	text, err := GetMultiline(a.reader, "Comment", a.out)
	if err != nil {
		return a.fail(err)
	}

	receipt, err := a.publisher.Comment(ctx, a.account, id, text)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Comment added. Transaction %s\n", receipt.Digest)
	return nil
}

func (a *App) Like(ctx context.Context, ref string) error {
	id, err := a.postRef(ref)
	if err != nil {
		return a.fail(err)
	}

	receipt, err := a.publisher.Like(ctx, a.account, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Liked. Transaction %s\n", receipt.Digest)
	return nil
}

// Mine lists the posts owned by the selected account.
func (a *App) Mine(ctx context.Context) error {
	if !a.hasAccount() {
		return a.fail(&common.ValidationError{Reason: "no wallet account selected, see 'accounts' and 'use'"})
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	posts, err := a.posts.OwnedPosts(ctx, a.account)
	if err != nil {
		return a.fail(err)
	}
	a.listing = posts
	renderPosts(a.out, posts, fmt.Sprintf("%d posts owned by %s", len(posts), shortAddr(a.account)))
	return nil
}

// Download saves asset n (1-based) of a post into the download directory.
func (a *App) Download(ctx context.Context, ref string, n int) error {
	id, err := a.postRef(ref)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	p, err := a.posts.GetPost(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	if n < 1 || n > len(p.Assets) {
		return a.fail(&common.ValidationError{Field: "asset", Reason: fmt.Sprintf("post has %d asset(s), got #%d", len(p.Assets), n)})
	}
	asset := p.Assets[n-1]

	data, err := a.posts.FetchAsset(ctx, asset)
	if err != nil {
		return a.fail(err)
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		return a.fail(err)
	}
	name := asset.Name
	if name == "" {
		name = fmt.Sprintf("asset-%d", n)
	}
	path, err := filex.WriteUnique(dir, name, data)
	if err != nil {
		return a.fail(fmt.Errorf("save asset: %w", err))
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(data))
	return nil
}
