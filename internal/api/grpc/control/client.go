package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultCallTimeout bounds each call unless WithCallTimeout overrides it.
const DefaultCallTimeout = 5 * time.Second

// Client talks to a running daemon.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn grpc.ClientConnInterface
	// closer releases conn; nil when the caller owns the connection.
	closer func() error

	// callTimeout is the default timeout for individual calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the daemon listening on address. The connection
// is established lazily by the first call.
// Note: transport is insecure; the daemon is meant to listen on loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. Close leaves conn open.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// Dismiss ends the alert of alarmID, or every alert for 0.
func (c *Client) Dismiss(ctx context.Context, alarmID int) (int, error) {
	reply := new(wrapperspb.Int64Value)
	if err := c.invoke(ctx, methodDismiss, wrapperspb.Int64(int64(alarmID)), reply); err != nil {
		return 0, fmt.Errorf("dismiss: %w", err)
	}

	return int(reply.GetValue()), nil
}

// Snooze ends the alert of alarmID, or every alert for 0, and returns the
// re-fire instants keyed by alarm id.
func (c *Client) Snooze(ctx context.Context, alarmID int) (map[int]time.Time, error) {
	reply := new(structpb.Struct)
	if err := c.invoke(ctx, methodSnooze, wrapperspb.Int64(int64(alarmID)), reply); err != nil {
		return nil, fmt.Errorf("snooze: %w", err)
	}

	return snoozeFromStruct(reply)
}

// ReadAgain replays the verse of alarmID, or of every alert for 0.
func (c *Client) ReadAgain(ctx context.Context, alarmID int) (int, error) {
	reply := new(wrapperspb.Int64Value)
	if err := c.invoke(ctx, methodReadAgain, wrapperspb.Int64(int64(alarmID)), reply); err != nil {
		return 0, fmt.Errorf("read again: %w", err)
	}

	return int(reply.GetValue()), nil
}

// Status fetches the active alerts and armed timers.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	reply := new(structpb.Struct)
	if err := c.invoke(ctx, methodStatus, new(emptypb.Empty), reply); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return statusFromStruct(reply)
}

// Reload asks the daemon to re-read the alarm store.
func (c *Client) Reload(ctx context.Context) error {
	if err := c.invoke(ctx, methodReload, new(emptypb.Empty), new(emptypb.Empty)); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	return nil
}

func (c *Client) invoke(ctx context.Context, method string, req, reply any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.conn.Invoke(callCtx, method, req, reply)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
