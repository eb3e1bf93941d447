// Package postgres stores dispatched tickets in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/supportbot/core/logger"
	"github.com/m3rciful/supportbot/internal/ticket"
)

const (
	insertTicket = `INSERT INTO tickets (id, merchant, description, reporter, user_id, media_count, failed_attachments, created_at)
VALUES (:id, :merchant, :description, :reporter, :user_id, :media_count, :failed_attachments, :created_at)`

	countTickets = `SELECT COUNT(*) FROM tickets`
)

// dbtx is the part of *sqlx.DB the archive uses.
type dbtx interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var _ dbtx = (*sqlx.DB)(nil)

type ticketRow struct {
	ID                uuid.UUID `db:"id"`
	Merchant          string    `db:"merchant"`
	Description       string    `db:"description"`
	Reporter          string    `db:"reporter"`
	UserID            int64     `db:"user_id"`
	MediaCount        int       `db:"media_count"`
	FailedAttachments int       `db:"failed_attachments"`
	CreatedAt         time.Time `db:"created_at"`
}

func rowFromTicket(t ticket.Ticket, userID int64) ticketRow {
	return ticketRow{
		ID:                t.ID,
		Merchant:          t.Draft.MerchantName,
		Description:       t.Draft.Description,
		Reporter:          t.Draft.ReporterHandle,
		UserID:            userID,
		MediaCount:        len(t.Draft.Media),
		FailedAttachments: t.FailedAttachments,
		CreatedAt:         t.CreatedAt,
	}
}

// Archive implements ticket.Archive.
type Archive struct {
	db dbtx
}

var _ ticket.Archive = (*Archive)(nil)

// NewArchive returns an Archive over db. The tickets table must exist.
func NewArchive(db *sqlx.DB) *Archive {
	return &Archive{db: db}
}

// Record inserts t.
func (a *Archive) Record(ctx context.Context, t ticket.Ticket, userID int64) error {
	if _, err := a.db.NamedExecContext(ctx, insertTicket, rowFromTicket(t, userID)); err != nil {
		return fmt.Errorf("failed to archive ticket %s: %w", t.ID, err)
	}
	logger.Debug(ctx, logger.ComponentDB, "ticket.archived",
		slog.String("ticket_id", t.ID.String()),
	)
	return nil
}

// Count returns the number of archived tickets.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.GetContext(ctx, &n, countTickets); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}
