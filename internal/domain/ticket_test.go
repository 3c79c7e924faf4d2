package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket_Defaults(t *testing.T) {
	ticket, err := NewTicket("Add dark mode", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Add dark mode", ticket.Title)
	assert.Equal(t, PriorityMed, ticket.Priority)
	assert.Equal(t, StatusBacklog, ticket.Status)
}

func TestNewTicket_AllFields(t *testing.T) {
	ticket, err := NewTicket("  Fix login bug ", PriorityHigh, StatusDone)
	require.NoError(t, err)
	assert.Equal(t, "Fix login bug", ticket.Title)
	assert.Equal(t, PriorityHigh, ticket.Priority)
	assert.Equal(t, StatusDone, ticket.Status)
}

func TestNewTicket_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		priority Priority
		status   Status
		field    string
	}{
		{"empty title", "", "", "", "title"},
		{"blank title", "   ", "", "", "title"},
		{"bad priority", "x", "URGENT", "", "priority"},
		{"bad status", "x", "", "WIP", "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTicket(tt.title, tt.priority, tt.status)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOW, MED, HIGH")
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" done ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, s)

	_, err = ParseStatus("")
	require.Error(t, err)
}

func TestEnumJSON(t *testing.T) {
	var body struct {
		Priority Priority `json:"priority"`
		Status   Status   `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"priority":"low","status":"DONE"}`), &body))
	assert.Equal(t, PriorityLow, body.Priority)
	assert.Equal(t, StatusDone, body.Status)

	err := json.Unmarshal([]byte(`{"priority":"nope"}`), &body)
	assert.True(t, IsValidation(err))

	_, err = json.Marshal(Ticket{Priority: "bogus", Status: StatusDone})
	assert.Error(t, err)
}

func TestEnumScanValue(t *testing.T) {
	var p Priority
	require.NoError(t, p.Scan([]byte("MED")))
	assert.Equal(t, PriorityMed, p)
	assert.Error(t, p.Scan("urgent"))
	assert.Error(t, p.Scan(nil))

	var s Status
	require.NoError(t, s.Scan("BACKLOG"))
	assert.Equal(t, StatusBacklog, s)
	assert.Error(t, s.Scan(42))

	v, err := PriorityHigh.Value()
	require.NoError(t, err)
	assert.Equal(t, "HIGH", v)

	_, err = Status("WIP").Value()
	assert.Error(t, err)
}

func TestTicketFilter_Matches(t *testing.T) {
	high := PriorityHigh
	done := StatusDone
	ticket := &Ticket{Priority: PriorityHigh, Status: StatusBacklog}

	assert.True(t, TicketFilter{}.Matches(ticket))
	assert.True(t, TicketFilter{Priority: &high}.Matches(ticket))
	assert.False(t, TicketFilter{Status: &done}.Matches(ticket))
	assert.False(t, TicketFilter{Status: &done, Priority: &high}.Matches(ticket))
}

func TestTicketPatch(t *testing.T) {
	title := "  Renamed "
	low := PriorityLow
	patch := TicketPatch{Title: &title, Priority: &low}
	require.NoError(t, patch.Validate())
	assert.Equal(t, "Renamed", *patch.Title)
	assert.False(t, patch.Empty())

	ticket := &Ticket{Title: "Old", Priority: PriorityHigh, Status: StatusDone}
	patch.Apply(ticket)
	assert.Equal(t, "Renamed", ticket.Title)
	assert.Equal(t, PriorityLow, ticket.Priority)
	assert.Equal(t, StatusDone, ticket.Status, "unset fields are left alone")

	empty := ""
	bad := TicketPatch{Title: &empty}
	assert.True(t, IsValidation(bad.Validate()))
	assert.True(t, TicketPatch{}.Empty())
}
