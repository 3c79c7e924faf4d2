package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// pgCheckViolation is the SQLSTATE Postgres reports when a CHECK constraint
// rejects a row.
const pgCheckViolation = "23514"

// gormTicketRepository implements TicketRepository using GORM
type gormTicketRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormTicketRepository creates a new GORM ticket repository
func NewGormTicketRepository(db *gorm.DB) TicketRepository {
	return &gormTicketRepository{db: db, now: postgresNow}
}

// postgresNow matches the microsecond precision of timestamptz so a ticket
// returned from Create compares equal to the same ticket read back later.
func postgresNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Create adds a new ticket to the database
func (r *gormTicketRepository) Create(ctx context.Context, title string, priority domain.Priority, status domain.Status) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(title, priority, status)
	if err != nil {
		return nil, err
	}
	ticket.CreatedAt = r.now()
	ticket.UpdatedAt = ticket.CreatedAt

	// GORM populates ID from the identity column via RETURNING
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, translatePgError(fmt.Errorf("insert ticket: %w", err))
	}
	return ticket, nil
}

// FindByID retrieves a ticket by its ID
func (r *gormTicketRepository) FindByID(ctx context.Context, id uint) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.db.WithContext(ctx).Take(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket %d: %w", id, err)
	}
	return normalizeTimes(&ticket), nil
}

// List retrieves tickets matching filter, oldest first
func (r *gormTicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query := r.db.WithContext(ctx).Model(&domain.Ticket{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	tickets := make([]domain.Ticket, 0)
	if err := query.Order("id ASC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	for i := range tickets {
		normalizeTimes(&tickets[i])
	}
	return tickets, nil
}

// Update writes only the fields set in patch in a single UPDATE and reads
// the row back through RETURNING.
func (r *gormTicketRepository) Update(ctx context.Context, id uint, patch domain.TicketPatch) (*domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": r.now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	var ticket domain.Ticket
	result := r.db.WithContext(ctx).
		Model(&ticket).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, translatePgError(fmt.Errorf("update ticket %d: %w", id, result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return normalizeTimes(&ticket), nil
}

func (r *gormTicketRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.Ticket, error) {
	return r.Update(ctx, id, statusPatch(status))
}

func (r *gormTicketRepository) UpdatePriority(ctx context.Context, id uint, priority domain.Priority) (*domain.Ticket, error) {
	return r.Update(ctx, id, priorityPatch(priority))
}

// Delete permanently removes a ticket by its ID. The model has no
// DeletedAt field, so GORM issues a real DELETE rather than a soft delete.
func (r *gormTicketRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Ticket{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete ticket %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormTicketRepository) FilterByStatus(ctx context.Context, status domain.Status) ([]domain.Ticket, error) {
	return r.List(ctx, statusFilter(status))
}

func (r *gormTicketRepository) FilterByPriority(ctx context.Context, priority domain.Priority) ([]domain.Ticket, error) {
	return r.List(ctx, priorityFilter(priority))
}

// translatePgError turns a CHECK violation into a ValidationError and
// leaves every other error as it is.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return &domain.ValidationError{
			Field:   constraintField(pgErr.ConstraintName),
			Message: fmt.Sprintf("value rejected by constraint %s", pgErr.ConstraintName),
		}
	}
	return err
}

func constraintField(name string) string {
	switch name {
	case "chk_tickets_title":
		return "title"
	case "chk_tickets_priority":
		return "priority"
	case "chk_tickets_status":
		return "status"
	}
	return ""
}

// pgx hands timestamptz back in the local zone; the rest of the
// application works in UTC.
func normalizeTimes(t *domain.Ticket) *domain.Ticket {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t
}
