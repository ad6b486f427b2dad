package mongodb

import (
	"context"
	"errors"
	"sync"
	"time"

	"blood-donate.backend/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Database after Close.
var ErrClosed = errors.New("mongodb connector closed")

var (
	connectClient = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
		return mongo.Connect(ctx, opts)
	}
	pingClient = func(ctx context.Context, c *mongo.Client) error {
		return c.Ping(ctx, readpref.Primary())
	}
)

// Config holds connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	// OnConnect runs once per successful connection, before the handle is shared.
	// Used to create indexes.
	OnConnect func(ctx context.Context, db *mongo.Database) error
}

// Connector opens the client lazily. Concurrent first callers share one
// in-flight attempt and a failed attempt is never cached.
type Connector struct {
	cfg    Config
	group  singleflight.Group
	mu     sync.RWMutex
	client *mongo.Client
	closed bool
}

func NewConnector(cfg Config) *Connector {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Connector{cfg: cfg}
}

// Database returns the configured database, connecting on first use.
func (c *Connector) Database(ctx context.Context) (*mongo.Database, error) {
	c.mu.RLock()
	client, closed := c.client, c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if client != nil {
		return client.Database(c.cfg.Database), nil
	}

	// The shared attempt outlives any single caller; ConnectTimeout bounds it.
	ch := c.group.DoChan("connect", func() (interface{}, error) {
		c.mu.RLock()
		existing := c.client
		c.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
		return c.connect(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client).Database(c.cfg.Database), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Connector) connect(ctx context.Context) (*mongo.Client, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(c.cfg.URI).SetServerSelectionTimeout(c.cfg.ConnectTimeout)
	client, err := connectClient(ctx, opts)
	if err != nil {
		metrics.RecordExternalCall("mongodb", "connect", err, time.Since(start))
		return nil, err
	}
	if err := pingClient(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		metrics.RecordExternalCall("mongodb", "connect", err, time.Since(start))
		return nil, err
	}
	if c.cfg.OnConnect != nil {
		if err := c.cfg.OnConnect(ctx, client.Database(c.cfg.Database)); err != nil {
			_ = client.Disconnect(context.Background())
			metrics.RecordExternalCall("mongodb", "connect", err, time.Since(start))
			return nil, err
		}
	}
	metrics.RecordExternalCall("mongodb", "connect", nil, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = client.Disconnect(context.Background())
		return nil, ErrClosed
	}
	c.client = client
	return client, nil
}

// Ping connects if needed and checks the primary answers.
func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.Database(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	err = pingClient(ctx, db.Client())
	metrics.RecordExternalCall("mongodb", "ping", err, time.Since(start))
	return err
}

// Close disconnects the client, waiting at most until ctx is done.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.closed = true
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
