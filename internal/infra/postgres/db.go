package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	connectAttempts     = 5
	connectInitialDelay = time.Second
	connectMaxDelay     = 30 * time.Second
)

// Connect opens a bun DB over the pgdriver connector and verifies it with a
// bounded exponential-backoff ping: 5 attempts, 1s initial delay doubling,
// capped at 30s.
func Connect(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	var err error
	delay := connectInitialDelay
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		if attempt == connectAttempts {
			break
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"retryIn": delay,
		}).Warn("postgres not ready, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		}
		delay *= 2
		if delay > connectMaxDelay {
			delay = connectMaxDelay
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("connect postgres after %d attempts: %w", connectAttempts, err)
}
