// Package orders journals completed checkouts. The journal is best-effort:
// carts live in memory by design, but a placed order is worth a durable row
// when a database is configured.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/cart"
	"log/slog"
)

// Order is one completed checkout ready for journaling.
type Order struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Lines     string    `db:"lines"`
	Total     float64   `db:"total"`
	CreatedAt time.Time `db:"created_at"`
}

// FromSummary renders a cart summary into a journal row.
func FromSummary(userID int64, username string, sum cart.Summary) Order {
	return Order{
		UserID:    userID,
		Username:  username,
		Lines:     cart.RenderLines(sum),
		Total:     sum.Total,
		CreatedAt: time.Now().UTC(),
	}
}

// Journal records completed orders.
type Journal interface {
	Record(ctx context.Context, o Order) error
}

// PostgresJournal writes orders to the orders table.
type PostgresJournal struct {
	db *sqlx.DB
}

// NewPostgresJournal wraps an open database handle.
func NewPostgresJournal(db *sqlx.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

const insertOrder = `
INSERT INTO orders (user_id, username, lines, total, created_at)
VALUES (:user_id, :username, :lines, :total, :created_at)`

// Record inserts the order row.
func (j *PostgresJournal) Record(ctx context.Context, o Order) error {
	start := time.Now()
	_, err := j.db.NamedExecContext(ctx, insertOrder, o)
	if err != nil {
		logger.ORD.Error("order journal failed",
			slog.String("event", "orders.record"),
			slog.Int64("user_id", o.UserID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("record order: %w", err)
	}
	logger.ORD.Info("order journaled",
		slog.String("event", "orders.record"),
		slog.Int64("user_id", o.UserID),
		slog.Float64("total", o.Total),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// NoopJournal is used when no database is configured.
type NoopJournal struct{}

// Record does nothing.
func (NoopJournal) Record(context.Context, Order) error { return nil }
