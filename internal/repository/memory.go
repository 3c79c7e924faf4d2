package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// memoryTicketRepository keeps tickets in a map. All access goes through
// mu, so it is safe for concurrent callers.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[uint]*domain.Ticket
	nextID  uint
	now     func() time.Time
}

// NewMemoryTicketRepository creates an empty in-memory repository. Ids
// start at 1 and are never reused.
func NewMemoryTicketRepository() TicketRepository {
	return newMemoryTicketRepository(func() time.Time { return time.Now().UTC() })
}

func newMemoryTicketRepository(now func() time.Time) *memoryTicketRepository {
	return &memoryTicketRepository{
		tickets: make(map[uint]*domain.Ticket),
		nextID:  1,
		now:     now,
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, title string, priority domain.Priority, status domain.Status) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(title, priority, status)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = r.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = ticket

	out := *ticket
	return &out, nil
}

func (r *memoryTicketRepository) FindByID(_ context.Context, id uint) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	out := *ticket
	return &out, nil
}

func (r *memoryTicketRepository) List(_ context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickets := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if filter.Matches(ticket) {
			tickets = append(tickets, *ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (r *memoryTicketRepository) Update(_ context.Context, id uint, patch domain.TicketPatch) (*domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(ticket)
	ticket.UpdatedAt = r.now()

	out := *ticket
	return &out, nil
}

func (r *memoryTicketRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.Ticket, error) {
	return r.Update(ctx, id, statusPatch(status))
}

func (r *memoryTicketRepository) UpdatePriority(ctx context.Context, id uint, priority domain.Priority) (*domain.Ticket, error) {
	return r.Update(ctx, id, priorityPatch(priority))
}

func (r *memoryTicketRepository) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return false, nil
	}
	delete(r.tickets, id)
	return true, nil
}

func (r *memoryTicketRepository) FilterByStatus(ctx context.Context, status domain.Status) ([]domain.Ticket, error) {
	return r.List(ctx, statusFilter(status))
}

func (r *memoryTicketRepository) FilterByPriority(ctx context.Context, priority domain.Priority) ([]domain.Ticket, error) {
	return r.List(ctx, priorityFilter(priority))
}
