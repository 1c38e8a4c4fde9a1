// Package graphdb is the bridge's graph store client: a pooled, retrying
// Cypher executor speaking Bolt against Memgraph.
package graphdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/logger"
)

// Row is a single set of named parameters for one UNWIND $rows write.
type Row map[string]any

// Client connects to the graph store and executes parameterised Cypher. The
// pool is a mutex-guarded LIFO list of sessions; acquisition never blocks —
// it returns the primary session when the pool is empty.
type Client struct {
	driver  neo4j.DriverWithContext
	primary neo4j.SessionWithContext

	poolMu sync.Mutex
	pool   []neo4j.SessionWithContext

	queryTimeout time.Duration
}

// Connect opens the primary connection, retrying with linear backoff.
func Connect(ctx context.Context, host string, port int, maxRetries int, retryDelay, queryTimeout time.Duration) (*Client, error) {
	uri := fmt.Sprintf("bolt://%s:%d", host, port)

	var driver neo4j.DriverWithContext
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		d, err := neo4j.NewDriverWithContext(uri, neo4j.NoAuth())
		if err == nil {
			if verifyErr := d.VerifyConnectivity(ctx); verifyErr == nil {
				driver = d
				lastErr = nil
				break
			} else {
				lastErr = verifyErr
				_ = d.Close(ctx)
			}
		} else {
			lastErr = err
		}

		logger.Warnw("graph connect attempt failed", logger.FieldAddress, uri, "attempt", attempt+1, logger.FieldError, lastErr)
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "graph connect cancelled")
		case <-time.After(retryDelay * time.Duration(attempt+1)):
		}
	}
	if lastErr != nil {
		return nil, errors.Wrapf(errors.ErrConnect, "connecting to graph store at %s: %v", uri, lastErr)
	}

	logger.Infow("connected to graph store", logger.FieldAddress, uri)

	return &Client{
		driver:       driver,
		primary:      driver.NewSession(ctx, neo4j.SessionConfig{}),
		queryTimeout: queryTimeout,
	}, nil
}

// InitPool opens size additional sessions. Partial failure logs and
// continues with whatever was opened.
func (c *Client) InitPool(ctx context.Context, size int) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	for i := 0; i < size; i++ {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warnw("failed to open pooled session", logger.FieldError, r)
				}
			}()
			c.pool = append(c.pool, c.driver.NewSession(ctx, neo4j.SessionConfig{}))
		}()
	}
	logger.Infow("graph connection pool initialized", logger.FieldSize, len(c.pool))
}

// Execute runs a single statement on the primary session. On a conflicting-
// transaction error it retries exactly once after a 1ms delay.
func (c *Client) Execute(ctx context.Context, cypher string, params map[string]any) error {
	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	_, err := c.primary.Run(qctx, cypher, params)
	if err != nil && errors.IsTransient(err) {
		time.Sleep(time.Millisecond)
		_, err = c.primary.Run(qctx, cypher, params)
	}
	if err != nil {
		return errors.Wrapf(errors.ErrWrite, "executing query: %v", err)
	}
	return nil
}

// ExecutePooled acquires a session from the pool (or the primary if the
// pool is exhausted), runs the query, and returns the session to the pool.
// The primary is never returned to the pool.
func (c *Client) ExecutePooled(ctx context.Context, cypher string, params map[string]any) error {
	session, usedPrimary := c.acquire()
	defer c.release(session, usedPrimary)

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	_, err := session.Run(qctx, cypher, params)
	if err != nil {
		return errors.Wrapf(errors.ErrWrite, "executing pooled query: %v", err)
	}
	return nil
}

func (c *Client) acquire() (neo4j.SessionWithContext, bool) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	if n := len(c.pool); n > 0 {
		session := c.pool[n-1]
		c.pool = c.pool[:n-1]
		return session, false
	}
	return c.primary, true
}

func (c *Client) release(session neo4j.SessionWithContext, wasPrimary bool) {
	if wasPrimary {
		return
	}
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	c.pool = append(c.pool, session)
}

// indexStatements is the fixed list of single-property indexes from
// spec.md §6, issued once at startup.
var indexStatements = []string{
	"CREATE INDEX ON :Frame(tickID)",
	"CREATE INDEX ON :Camera(cameraID)",
	"CREATE INDEX ON :BallTrack(track_id)",
	"CREATE INDEX ON :BallTrack(is_best)",
	"CREATE INDEX ON :PlayerTrack(track_id)",
	"CREATE INDEX ON :CamParams(cameraID)",
	"CREATE INDEX ON :Scene_Descriptor(venue_id)",
	"CREATE INDEX ON :FusedPlayer(id)",
	"CREATE INDEX ON :FusedPlayer(status)",
	"CREATE INDEX ON :FusedPlayer(x)",
	"CREATE INDEX ON :FusedPlayer(y)",
	"CREATE INDEX ON :FusedPlayer(z)",
	"CREATE INDEX ON :FusionBall3D(position_world)",
	"CREATE INDEX ON :FusionBall3D(status)",
	"CREATE INDEX ON :CameraConfig(cameraID)",
	"CREATE INDEX ON :CameraConfig(role)",
	"CREATE INDEX ON :CameraConfig(gimbal_position)",
	"CREATE INDEX ON :Intent(cameraID)",
	"CREATE INDEX ON :Intent(status)",
}

// CreateIndexes issues the fixed index list, tolerating "already exists".
func (c *Client) CreateIndexes(ctx context.Context) {
	for _, stmt := range indexStatements {
		if err := c.Execute(ctx, stmt, nil); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				logger.Debugw("index create skipped", logger.FieldQuery, stmt, logger.FieldError, err)
			} else {
				logger.Warnw("index create failed", logger.FieldQuery, stmt, logger.FieldError, err)
			}
			continue
		}
		logger.Debugw("index created", logger.FieldQuery, stmt)
	}
}

// CountLabel runs "MATCH (n:label) RETURN count(n)" and returns the count.
func (c *Client) CountLabel(ctx context.Context, label string) (int64, error) {
	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	result, err := c.primary.Run(qctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS c", label), nil)
	if err != nil {
		return 0, errors.Wrapf(err, "counting %s", label)
	}
	record, err := result.Single(qctx)
	if err != nil {
		return 0, errors.Wrapf(err, "reading count(%s)", label)
	}
	count, _ := record.Get("c")
	n, _ := count.(int64)
	return n, nil
}

// Close releases the primary session, the pool, and the driver.
func (c *Client) Close(ctx context.Context) error {
	c.poolMu.Lock()
	for _, session := range c.pool {
		_ = session.Close(ctx)
	}
	c.pool = nil
	c.poolMu.Unlock()

	if c.primary != nil {
		_ = c.primary.Close(ctx)
	}
	if c.driver != nil {
		return c.driver.Close(ctx)
	}
	return nil
}
