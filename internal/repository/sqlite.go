package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// SQLiteSchema creates the tickets table. AUTOINCREMENT keeps ids from
// being reused after the highest row is deleted.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL CHECK (trim(title) <> ''),
    priority TEXT NOT NULL DEFAULT 'MED' CHECK (priority IN ('LOW', 'MED', 'HIGH')),
    status TEXT NOT NULL DEFAULT 'BACKLOG' CHECK (status IN ('BACKLOG', 'DONE')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority);
`

const ticketColumns = `id, title, priority, status, created_at, updated_at`

type sqliteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTicketRepository wraps an open SQLite handle. The schema must
// already exist; see MigrateSQLite.
func NewSQLiteTicketRepository(db *sql.DB) TicketRepository {
	return &sqliteTicketRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// MigrateSQLite creates the tickets table and its indexes if missing.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("failed to create tickets schema: %w", err)
	}
	return nil
}

func (r *sqliteTicketRepository) Create(ctx context.Context, title string, priority domain.Priority, status domain.Status) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(title, priority, status)
	if err != nil {
		return nil, err
	}
	ticket.CreatedAt = r.now()
	ticket.UpdatedAt = ticket.CreatedAt

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (title, priority, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		ticket.Title, ticket.Priority, ticket.Status,
		formatTime(ticket.CreatedAt), formatTime(ticket.UpdatedAt),
	)
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("insert ticket: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	ticket.ID = uint(id)
	return ticket, nil
}

func (r *sqliteTicketRepository) FindByID(ctx context.Context, id uint) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	ticket, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket %d: %w", id, err)
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, string(*filter.Priority))
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// Update relies on COALESCE so unset fields keep their stored value, and
// on RETURNING to read the row back in the same statement.
func (r *sqliteTicketRepository) Update(ctx context.Context, id uint, patch domain.TicketPatch) (*domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE tickets SET
    title = COALESCE(?, title),
    priority = COALESCE(?, priority),
    status = COALESCE(?, status),
    updated_at = ?
WHERE id = ?
RETURNING `+ticketColumns,
		nullableString(patch.Title),
		nullableString(patch.Priority),
		nullableString(patch.Status),
		formatTime(r.now()),
		id,
	)
	ticket, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("update ticket %d: %w", id, err))
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.Ticket, error) {
	return r.Update(ctx, id, statusPatch(status))
}

func (r *sqliteTicketRepository) UpdatePriority(ctx context.Context, id uint, priority domain.Priority) (*domain.Ticket, error) {
	return r.Update(ctx, id, priorityPatch(priority))
}

func (r *sqliteTicketRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete ticket %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *sqliteTicketRepository) FilterByStatus(ctx context.Context, status domain.Status) ([]domain.Ticket, error) {
	return r.List(ctx, statusFilter(status))
}

func (r *sqliteTicketRepository) FilterByPriority(ctx context.Context, priority domain.Priority) ([]domain.Ticket, error) {
	return r.List(ctx, priorityFilter(priority))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket             domain.Ticket
		createdAt, updated string
	)
	if err := row.Scan(&ticket.ID, &ticket.Title, &ticket.Priority, &ticket.Status, &createdAt, &updated); err != nil {
		return nil, err
	}
	var err error
	if ticket.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ticket.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullableString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func translateSQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK {
		return &domain.ValidationError{Message: sqliteErr.Error()}
	}
	return err
}
