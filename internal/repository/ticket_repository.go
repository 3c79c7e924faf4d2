package repository

import (
	"context"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// TicketRepository defines the interface for ticket data operations.
//
// Lookups that target a missing id return a nil ticket (or false for
// Delete) and a nil error; absence is not an error at this layer. Listings
// are ordered by ascending id, which is creation order.
type TicketRepository interface {
	Create(ctx context.Context, title string, priority domain.Priority, status domain.Status) (*domain.Ticket, error)
	FindByID(ctx context.Context, id uint) (*domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, id uint, patch domain.TicketPatch) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.Ticket, error)
	UpdatePriority(ctx context.Context, id uint, priority domain.Priority) (*domain.Ticket, error)
	Delete(ctx context.Context, id uint) (bool, error)
	FilterByStatus(ctx context.Context, status domain.Status) ([]domain.Ticket, error)
	FilterByPriority(ctx context.Context, priority domain.Priority) ([]domain.Ticket, error)
}

// statusPatch and priorityPatch let every backend route its single-field
// updates through Update.
func statusPatch(status domain.Status) domain.TicketPatch {
	return domain.TicketPatch{Status: &status}
}

func priorityPatch(priority domain.Priority) domain.TicketPatch {
	return domain.TicketPatch{Priority: &priority}
}

func statusFilter(status domain.Status) domain.TicketFilter {
	return domain.TicketFilter{Status: &status}
}

func priorityFilter(priority domain.Priority) domain.TicketFilter {
	return domain.TicketFilter{Priority: &priority}
}
