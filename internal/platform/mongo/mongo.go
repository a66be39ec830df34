// Package mongo connects to MongoDB and exposes the database used by the repositories.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultDBName = "users"

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Connector opens and verifies a client for the given URI.
type Connector func(ctx context.Context, uri string) (*mongodriver.Client, error)

// Mongo is a thin wrapper around the client and the selected database.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// New connects to MongoDB, retrying until timeout elapses.
// The database name is taken from the URI path.
func New(ctx context.Context, uri string, timeout time.Duration) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := ConnectWithRetry(ctx, uri, timeout, Connect)
	if err != nil {
		return nil, err
	}

	return &Mongo{client: cli, db: cli.Database(DatabaseFromURI(uri))}, nil
}

// Connect is the default Connector: it dials and pings the primary.
// Embedded documents decode as maps so they render as JSON objects.
func Connect(ctx context.Context, uri string) (*mongodriver.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	cli, err := mongodriver.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return cli, nil
}

// ConnectWithRetry calls connect until it succeeds, ctx is done or timeout elapses.
func ConnectWithRetry(ctx context.Context, uri string, timeout time.Duration, connect Connector) (*mongodriver.Client, error) {
	deadline := time.Now().Add(timeout)
	for {
		cli, err := connect(ctx, uri)
		if err == nil {
			return cli, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("mongo connect failed after %s: %w", timeout, err)
		}
		slog.Warn("mongo connect failed, retrying", "error", err, "retry_in", retryInterval)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mongo connect: %w", ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Database returns the database selected from the URI.
func (m *Mongo) Database() *mongodriver.Database {
	return m.db
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// DatabaseFromURI extracts the database name from the mongodb URI path.
// It falls back to "users" when the path is empty or the URI cannot be parsed.
func DatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
