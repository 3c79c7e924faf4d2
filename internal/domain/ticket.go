package domain

import (
	"strings"
	"time"
)

// Ticket is a unit of tracked work. The gorm tags describe the Postgres
// table; the SQLite repository keeps an equivalent schema by hand.
type Ticket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:text;not null;check:chk_tickets_title,btrim(title) <> ''" json:"title"`
	Priority  Priority  `gorm:"type:varchar(8);not null;default:MED;index;check:chk_tickets_priority,priority IN ('LOW','MED','HIGH')" json:"priority"`
	Status    Status    `gorm:"type:varchar(8);not null;default:BACKLOG;index;check:chk_tickets_status,status IN ('BACKLOG','DONE')" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// NewTicket validates the caller-supplied fields and fills in defaults for
// zero-valued enums. The returned ticket has no ID or timestamps yet.
func NewTicket(title string, priority Priority, status Status) (*Ticket, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = DefaultPriority
	}
	if status == "" {
		status = DefaultStatus
	}
	if !priority.Valid() {
		return nil, invalidPriority(string(priority))
	}
	if !status.Valid() {
		return nil, invalidStatus(string(status))
	}
	return &Ticket{Title: title, Priority: priority, Status: status}, nil
}

// NormalizeTitle trims surrounding whitespace and rejects empty titles.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	return title, nil
}

// TicketFilter narrows a listing. Nil fields match everything; set fields
// are AND-combined.
type TicketFilter struct {
	Status   *Status
	Priority *Priority
}

// Matches reports whether t passes every set filter.
func (f TicketFilter) Matches(t *Ticket) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TicketPatch carries a partial update. Only non-nil fields are written.
type TicketPatch struct {
	Title    *string
	Priority *Priority
	Status   *Status
}

// Validate normalizes the title in place and checks enum values.
func (p *TicketPatch) Validate() error {
	if p.Title != nil {
		title, err := NormalizeTitle(*p.Title)
		if err != nil {
			return err
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalidPriority(string(*p.Priority))
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalidStatus(string(*p.Status))
	}
	return nil
}

// Apply writes the set fields onto t. It does not touch timestamps.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Empty reports whether the patch sets no fields.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Priority == nil && p.Status == nil
}
