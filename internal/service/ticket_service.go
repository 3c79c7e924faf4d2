package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
)

// CreateTicketRequest holds the data needed to create a new ticket.
// Omitted enums take their defaults (MED, BACKLOG).
type CreateTicketRequest struct {
	Title    string          `json:"title"`
	Priority domain.Priority `json:"priority,omitempty"`
	Status   domain.Status   `json:"status,omitempty"`
}

// UpdateTicketRequest holds a partial update. Absent fields are left
// untouched; an explicit null is rejected because no field is nullable.
type UpdateTicketRequest struct {
	Title    Optional[string]          `json:"title"`
	Priority Optional[domain.Priority] `json:"priority"`
	Status   Optional[domain.Status]   `json:"status"`
}

// TicketResponse is the standard representation of a Ticket returned by the service.
type TicketResponse struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Priority  domain.Priority `json:"priority"`
	Status    domain.Status   `json:"status"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// TicketService defines the operations for managing tickets. Operations
// on a missing id fail with an error matching domain.ErrNotFound; bad
// input fails with a *domain.ValidationError.
type TicketService interface {
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketResponse, error)
	GetTicket(ctx context.Context, id uint) (*TicketResponse, error)

	// ListTickets returns tickets in creation order, narrowed by filter.
	ListTickets(ctx context.Context, filter domain.TicketFilter) ([]TicketResponse, error)

	UpdateTicket(ctx context.Context, id uint, req UpdateTicketRequest) (*TicketResponse, error)
	UpdateTicketStatus(ctx context.Context, id uint, status domain.Status) (*TicketResponse, error)
	UpdateTicketPriority(ctx context.Context, id uint, priority domain.Priority) (*TicketResponse, error)
	DeleteTicket(ctx context.Context, id uint) error
}

// ticketService implements the TicketService interface.
type ticketService struct {
	repo   repository.TicketRepository
	logger *zap.Logger
}

// NewTicketService creates a new instance of ticketService.
func NewTicketService(repo repository.TicketRepository, logger *zap.Logger) TicketService {
	return &ticketService{
		repo:   repo,
		logger: logger.Named("ticket_service"),
	}
}

func (s *ticketService) CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketResponse, error) {
	ticket, err := s.repo.Create(ctx, req.Title, req.Priority, req.Status)
	if err != nil {
		return nil, s.fail("create ticket", err)
	}
	s.logger.Debug("ticket created", zap.Uint("id", ticket.ID), zap.Stringer("priority", ticket.Priority))
	return toResponse(ticket), nil
}

func (s *ticketService) GetTicket(ctx context.Context, id uint) (*TicketResponse, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("retrieve ticket", err, zap.Uint("id", id))
	}
	if ticket == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	return toResponse(ticket), nil
}

// ListTickets routes single-field filters to the repository's dedicated
// filter methods.
func (s *ticketService) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]TicketResponse, error) {
	var (
		tickets []domain.Ticket
		err     error
	)
	switch {
	case filter.Status != nil && filter.Priority == nil:
		tickets, err = s.repo.FilterByStatus(ctx, *filter.Status)
	case filter.Priority != nil && filter.Status == nil:
		tickets, err = s.repo.FilterByPriority(ctx, *filter.Priority)
	default:
		tickets, err = s.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, s.fail("retrieve tickets", err)
	}

	responses := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, *toResponse(&tickets[i]))
	}
	return responses, nil
}

func (s *ticketService) UpdateTicket(ctx context.Context, id uint, req UpdateTicketRequest) (*TicketResponse, error) {
	patch, err := req.patch()
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.Update(ctx, id, patch)
	return s.updated("update ticket", id, ticket, err)
}

func (s *ticketService) UpdateTicketStatus(ctx context.Context, id uint, status domain.Status) (*TicketResponse, error) {
	ticket, err := s.repo.UpdateStatus(ctx, id, status)
	return s.updated("update ticket status", id, ticket, err)
}

func (s *ticketService) UpdateTicketPriority(ctx context.Context, id uint, priority domain.Priority) (*TicketResponse, error) {
	ticket, err := s.repo.UpdatePriority(ctx, id, priority)
	return s.updated("update ticket priority", id, ticket, err)
}

func (s *ticketService) DeleteTicket(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail("delete ticket", err, zap.Uint("id", id))
	}
	if !deleted {
		return &domain.NotFoundError{ID: id}
	}
	s.logger.Debug("ticket deleted", zap.Uint("id", id))
	return nil
}

func (s *ticketService) updated(op string, id uint, ticket *domain.Ticket, err error) (*TicketResponse, error) {
	if err != nil {
		return nil, s.fail(op, err, zap.Uint("id", id))
	}
	if ticket == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	return toResponse(ticket), nil
}

// fail passes validation errors through untouched and logs anything else
// before wrapping it.
func (s *ticketService) fail(op string, err error, fields ...zap.Field) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	s.logger.Error("failed to "+op, append(fields, zap.Error(err))...)
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (r UpdateTicketRequest) patch() (domain.TicketPatch, error) {
	var (
		patch domain.TicketPatch
		err   error
	)
	if patch.Title, err = present(r.Title, "title"); err != nil {
		return patch, err
	}
	if patch.Priority, err = present(r.Priority, "priority"); err != nil {
		return patch, err
	}
	if patch.Status, err = present(r.Status, "status"); err != nil {
		return patch, err
	}
	return patch, nil
}

func present[T any](o Optional[T], field string) (*T, error) {
	if !o.Set {
		return nil, nil
	}
	if o.Null {
		return nil, &domain.ValidationError{Field: field, Message: field + " cannot be null"}
	}
	v := o.Value
	return &v, nil
}

func toResponse(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:        t.ID,
		Title:     t.Title,
		Priority:  t.Priority,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}
