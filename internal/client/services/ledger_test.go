package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/suiblog/internal/blob"
	"github.com/dmitrijs2005/suiblog/internal/chain"
	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/codec"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/txb"
)

const testPackage = "0x4a38581778ca24696476d84e0960ba8b5d2c709ac3b1ab9570b6699b9ad3bd50"

type ledgerAsset struct{ hash, typ, name string }

type ledgerComment struct {
	author, content string
	created         int64
}

type ledgerPost struct {
	id, owner                         string
	title, content, contentType, auth string
	tags                              []string
	created                           int64
	likes                             uint64
	comments                          []ledgerComment
	assets                            []ledgerAsset
}

// fakeLedger is an in-memory node and wallet in one: it serves reads the
// way the JSON-RPC node renders them and applies blog transactions.
type fakeLedger struct {
	mu       sync.Mutex
	blog     *txb.Blog
	posts    map[string]*ledgerPost
	events   []chain.Event // oldest first
	now      int64
	seq      int
	executed []*txb.Transaction

	signErr    error
	failStatus string
	failError  string

	getCalls atomic.Int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{blog: txb.NewBlog(testPackage), posts: map[string]*ledgerPost{}, now: 1_700_000_000_000}
}

func (l *fakeLedger) nextID() string {
	l.seq++
	return fmt.Sprintf("0x%064x", l.seq)
}

// addPost stores p and emits its PostCreated event.
func (l *fakeLedger) addPost(p *ledgerPost) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addPostLocked(p)
}

func (l *fakeLedger) addPostLocked(p *ledgerPost) string {
	if p.id == "" {
		p.id = l.nextID()
	}
	if p.created == 0 {
		l.now += 1000
		p.created = l.now
	}
	l.posts[p.id] = p

	payload, _ := json.Marshal(map[string]any{
		"post_id": p.id,
		"title":   codec.Bytes(p.title),
		"author":  codec.Bytes(p.auth),
	})
	l.events = append(l.events, chain.Event{
		ID:         chain.EventID{TxDigest: "tx-" + p.id[len(p.id)-4:], EventSeq: "0"},
		Type:       l.blog.EventType("PostCreated"),
		ParsedJSON: payload,
	})
	return p.id
}

// remove drops the object but keeps its event, like a post whose object
// the node cannot serve.
func (l *fakeLedger) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.posts, id)
}

func (l *fakeLedger) render(p *ledgerPost) *chain.ObjectData {
	tags := make([]codec.Bytes, len(p.tags))
	for i, t := range p.tags {
		tags[i] = codec.Bytes(t)
	}
	comments := make([]any, 0, len(p.comments))
	for _, c := range p.comments {
		comments = append(comments, map[string]any{
			"type": testPackage + "::blog::Comment",
			"fields": map[string]any{
				"author":     codec.Bytes(c.author),
				"content":    codec.Bytes(c.content),
				"created_at": strconv.FormatInt(c.created, 10),
			},
		})
	}
	assets := make([]any, 0, len(p.assets))
	for _, a := range p.assets {
		assets = append(assets, map[string]any{
			"hash":       codec.Bytes(a.hash),
			"asset_type": codec.Bytes(a.typ),
			"name":       codec.Bytes(a.name),
		})
	}
	contentType := p.contentType
	if contentType == "" {
		contentType = txb.ContentMarkdown
	}
	fields, _ := json.Marshal(map[string]any{
		"id":           map[string]string{"id": p.id},
		"title":        codec.Bytes(p.title),
		"content_hash": codec.Bytes(p.content),
		"content_type": codec.Bytes(contentType),
		"author":       codec.Bytes(p.auth),
		"tags":         tags,
		"created_at":   strconv.FormatInt(p.created, 10),
		"likes":        strconv.FormatUint(p.likes, 10),
		"comments":     comments,
		"assets":       assets,
	})
	return &chain.ObjectData{
		ObjectID: p.id,
		Version:  "1",
		Type:     l.blog.PostType(),
		Content: &chain.MoveContent{
			DataType: "moveObject",
			Type:     l.blog.PostType(),
			Fields:   fields,
		},
	}
}

func (l *fakeLedger) GetObject(ctx context.Context, id string) (*chain.ObjectData, error) {
	l.getCalls.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.posts[id]
	if !ok {
		return nil, &common.NotFoundError{ID: id}
	}
	return l.render(p), nil
}

func (l *fakeLedger) QueryEvents(ctx context.Context, eventType string, cursor *chain.EventID, limit int, descending bool) (*chain.EventPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := slices.Clone(l.events)
	if descending {
		slices.Reverse(events)
	}
	start := 0
	if cursor != nil {
		i := slices.IndexFunc(events, func(e chain.Event) bool { return e.ID == *cursor })
		if i < 0 {
			return nil, errors.New("unknown cursor")
		}
		start = i + 1
	}
	end := min(start+limit, len(events))
	page := &chain.EventPage{Data: events[start:end], HasNextPage: end < len(events)}
	if end > start {
		last := events[end-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

func (l *fakeLedger) GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*chain.ObjectPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []string
	for id, p := range l.posts {
		if p.owner == owner {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	start := 0
	if cursor != nil {
		start, _ = strconv.Atoi(*cursor)
	}
	end := min(start+limit, len(ids))
	page := &chain.ObjectPage{HasNextPage: end < len(ids)}
	for _, id := range ids[start:end] {
		page.Data = append(page.Data, chain.ObjectResponse{Data: l.render(l.posts[id])})
	}
	if page.HasNextPage {
		next := strconv.Itoa(end)
		page.NextCursor = &next
	}
	return page, nil
}

func readVector(b []byte) ([]byte, []byte, error) {
	n, k := binary.Uvarint(b)
	if k <= 0 || uint64(len(b)-k) < n {
		return nil, nil, errors.New("bad vector")
	}
	b = b[k:]
	return b[:n], b[n:], nil
}

func (l *fakeLedger) pureText(tx *txb.Transaction, a txb.Argument) string {
	v, _, err := readVector(tx.Inputs[a.Index].Pure)
	if err != nil {
		panic(err)
	}
	return string(v)
}

func (l *fakeLedger) pureTexts(tx *txb.Transaction, a txb.Argument) []string {
	b := tx.Inputs[a.Index].Pure
	n, k := binary.Uvarint(b)
	b = b[k:]
	out := make([]string, 0, n)
	for range n {
		v, rest, err := readVector(b)
		if err != nil {
			panic(err)
		}
		out = append(out, string(v))
		b = rest
	}
	return out
}

func (l *fakeLedger) objectArg(tx *txb.Transaction, a txb.Argument) string {
	return tx.Inputs[a.Index].ObjectID
}

func (l *fakeLedger) SignAndExecute(ctx context.Context, tx *txb.Transaction, account, network string) (*models.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.executed = append(l.executed, tx)
	if l.signErr != nil {
		return nil, &common.TransactionError{Err: l.signErr}
	}
	digest := fmt.Sprintf("digest-%d", len(l.executed))
	if l.failStatus != "" {
		return &models.Receipt{Digest: digest, Status: l.failStatus, Error: l.failError}, nil
	}

	receipt := &models.Receipt{Digest: digest, Status: "success"}
	var results []*ledgerPost
	for _, call := range tx.Calls() {
		args := call.Arguments
		var created *ledgerPost
		switch call.Function {
		case "create_post":
			created = &ledgerPost{
				owner:       account,
				title:       l.pureText(tx, args[0]),
				content:     l.pureText(tx, args[1]),
				contentType: l.pureText(tx, args[2]),
				auth:        l.pureText(tx, args[3]),
				tags:        l.pureTexts(tx, args[4]),
			}
			l.addPostLocked(created)
			receipt.Created = append(receipt.Created, created.id)
		case "add_asset":
			p := results[args[0].Index]
			p.assets = append(p.assets, ledgerAsset{
				hash: l.pureText(tx, args[1]),
				typ:  l.pureText(tx, args[2]),
				name: l.pureText(tx, args[3]),
			})
		case "add_comment":
			p := l.posts[l.objectArg(tx, args[0])]
			l.now += 1000
			p.comments = append(p.comments, ledgerComment{
				author:  l.pureText(tx, args[1]),
				content: l.pureText(tx, args[2]),
				created: l.now,
			})
		case "like_post":
			l.posts[l.objectArg(tx, args[0])].likes++
		}
		results = append(results, created)
	}
	return receipt, nil
}

// fakeBlobs is a content-addressed blob store.
type fakeBlobs struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failFor string
	uploads atomic.Int64
}

var _ blob.Store = (*fakeBlobs)(nil)

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{blobs: map[string][]byte{}} }

func (f *fakeBlobs) Upload(ctx context.Context, data []byte, epochs int, recipient string) (string, error) {
	f.uploads.Add(1)
	if f.failFor != "" && string(data) == f.failFor {
		return "", &common.UploadError{Status: 500, Body: "publisher down"}
	}
	sum := sha256.Sum256(data)
	id := fmt.Sprintf("blob-%x", sum[:8])
	f.mu.Lock()
	f.blobs[id] = data
	f.mu.Unlock()
	return id, nil
}

func (f *fakeBlobs) URL(id string) string { return "https://aggregator.test/v1/blobs/" + id }

func (f *fakeBlobs) Fetch(ctx context.Context, ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, data := range f.blobs {
		if ref == id || ref == f.URL(id) {
			return data, nil
		}
	}
	return nil, &common.NotFoundError{ID: ref}
}

type countingMetrics struct {
	metrics.Noop
	skipped atomic.Int64
	txOK    atomic.Int64
	txFail  atomic.Int64
}

func (m *countingMetrics) IncrementSkippedPosts() { m.skipped.Add(1) }

func (m *countingMetrics) IncrementTransactions(kind string, success bool) {
	if success {
		m.txOK.Add(1)
	} else {
		m.txFail.Add(1)
	}
}
