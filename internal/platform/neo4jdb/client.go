package neo4jdb

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Hollando78/airgen-sub002/internal/platform/envutil"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

// Client wraps the Neo4j driver. It is the only way the rest of the
// service obtains sessions, so every session is configured consistently
// (database name, access mode) and closed by the caller via defer.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

func NewFromEnv(log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}

	uri := envutil.Str("NEO4J_URI", "")
	if uri == "" {
		return nil, fmt.Errorf("neo4jdb: missing NEO4J_URI")
	}
	user := envutil.Str("NEO4J_USER", "neo4j")
	password := envutil.Str("NEO4J_PASSWORD", "")
	database := envutil.Str("NEO4J_DATABASE", "")
	timeout := time.Duration(envutil.Int("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second
	maxPool := envutil.Int("NEO4J_MAX_POOL_SIZE", 50)

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

// New builds a client against an already-constructed driver. Used by
// integration tests that point at a scratch database.
func New(driver neo4j.DriverWithContext, database string, log *logger.Logger) *Client {
	return &Client{Driver: driver, Database: database, log: log}
}

func (c *Client) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.Database,
	})
}

func (c *Client) WriteSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
