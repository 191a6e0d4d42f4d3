// Package store persists tour dates, grade courses and registrations in
// PostgreSQL. All capacity mutations run inside transactions with row
// locks so concurrent chats cannot overbook a slot.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/sam-admissions/tourbot/tour/contract"
)

// DBConfig is the PostgreSQL connection configuration, loaded from the
// environment by configx.
type DBConfig struct {
	DSN         string        `envconfig:"DSN" required:"true"`
	PingTimeout time.Duration `envconfig:"PING_TIMEOUT" default:"5s"`
}

// Connect opens a bun handle over pgdriver and verifies the connection.
func Connect(ctx context.Context, cfg DBConfig) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", contractx.ErrStorage, err)
	}
	return db, nil
}
