// Package wallet talks to the local wallet daemon that holds the user's keys.
// suiblog never sees private keys: it hands an unsigned transaction to the
// wallet and gets back the execution receipt.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/suiblog/internal/client/models"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/txb"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Client struct {
	endpointURL string
	conn        *grpc.ClientConn
	bridge      bridgeClient

	mu      sync.Mutex
	session string
}

func withSession(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) sessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// sessionInterceptor attaches the session token and, when the wallet reports
// an expired session, refreshes it once and repeats the call.
func (c *Client) sessionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	token := c.sessionToken()
	err := invoker(withSession(ctx, token), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrSessionExpired.Error() {
		return err
	}
	if token == "" || method == serviceName+"RefreshSession" {
		return err
	}

	in, _ := structpb.NewStruct(map[string]any{"session": token})
	resp, rerr := c.bridge.RefreshSession(withSession(ctx, token), in)
	if rerr != nil {
		return rerr
	}
	fresh := resp.GetFields()["session"].GetStringValue()
	if fresh == "" {
		return err
	}

	c.mu.Lock()
	c.session = fresh
	c.mu.Unlock()

	return invoker(withSession(ctx, fresh), method, req, reply, cc, opts...)
}

// New dials the wallet daemon. The connection is established lazily on the
// first call.
func New(endpointURL, session string) (*Client, error) {
	c := &Client{endpointURL: endpointURL, session: session}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionInterceptor))
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.bridge = newBridgeClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("wallet error: %w", err)
	}
}

// Accounts lists the addresses the wallet can sign for.
func (c *Client) Accounts(ctx context.Context) ([]models.Account, error) {
	resp, err := c.bridge.Accounts(ctx, &structpb.Struct{})
	if err != nil {
		return nil, c.mapError(err)
	}

	list := resp.GetFields()["accounts"].GetListValue().GetValues()
	out := make([]models.Account, 0, len(list))
	for _, v := range list {
		f := v.GetStructValue().GetFields()
		addr := f["address"].GetStringValue()
		if addr == "" {
			continue
		}
		out = append(out, models.Account{Address: addr, Label: f["label"].GetStringValue()})
	}
	return out, nil
}

// SignAndExecute asks the wallet to sign tx as account and submit it to
// network. Any failure, including a non-success effects status, is
// reported as *common.TransactionError carrying the wallet's message.
func (c *Client) SignAndExecute(ctx context.Context, tx *txb.Transaction, account, network string) (*models.Receipt, error) {
	raw, err := tx.JSON()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	var txMap map[string]any
	if err := json.Unmarshal(raw, &txMap); err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	in, err := structpb.NewStruct(map[string]any{
		"request_id":  uuid.NewString(),
		"transaction": txMap,
		"account":     account,
		"network":     network,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.bridge.SignAndExecute(ctx, in)
	if err != nil {
		return nil, &common.TransactionError{Err: c.mapError(err)}
	}

	r := receiptFromStruct(resp)
	if !r.Succeeded() {
		msg := r.Error
		if msg == "" {
			msg = "execution status " + r.Status
		}
		return r, &common.TransactionError{Digest: r.Digest, Err: errors.New(msg)}
	}
	return r, nil
}

func receiptFromStruct(s *structpb.Struct) *models.Receipt {
	f := s.GetFields()
	st := f["effects"].GetStructValue().GetFields()["status"].GetStructValue().GetFields()

	r := &models.Receipt{
		Digest: f["digest"].GetStringValue(),
		Status: st["status"].GetStringValue(),
		Error:  st["error"].GetStringValue(),
	}
	for _, v := range f["created"].GetListValue().GetValues() {
		r.Created = append(r.Created, v.GetStringValue())
	}
	return r
}

// Ping checks that the wallet daemon is up and unlocked.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.bridge.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.GetFields()["status"].GetStringValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}
