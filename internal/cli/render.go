package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// ANSI palette indexes; lipgloss degrades them to plain text when the
// writer is not a terminal.
var (
	priorityColors = map[domain.Priority]lipgloss.Color{
		domain.PriorityLow:  lipgloss.Color("2"),
		domain.PriorityMed:  lipgloss.Color("3"),
		domain.PriorityHigh: lipgloss.Color("1"),
	}
	statusColors = map[domain.Status]lipgloss.Color{
		domain.StatusBacklog: lipgloss.Color("4"),
		domain.StatusDone:    lipgloss.Color("2"),
	}
)

type renderer struct {
	out    io.Writer
	errOut io.Writer
	format string

	lg      *lipgloss.Renderer
	success lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	heading lipgloss.Style
	panel   lipgloss.Style
	notice  lipgloss.Style
}

func newRenderer(out, errOut io.Writer, format string) *renderer {
	lg := lipgloss.NewRenderer(out)
	return &renderer{
		out:     out,
		errOut:  errOut,
		format:  format,
		lg:      lg,
		success: lg.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failure: lipgloss.NewRenderer(errOut).NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		label:   lg.NewStyle().Bold(true),
		heading: lg.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		panel: lg.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1),
		notice: lg.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (r *renderer) json() bool { return r.format == outputJSON }

// successf prints a SUCCESS line. JSON output stays machine-readable, so
// the line is skipped there.
func (r *renderer) successf(format string, args ...any) {
	if r.json() {
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", r.success.Render("SUCCESS"), fmt.Sprintf(format, args...))
}

func (r *renderer) errorf(format string, args ...any) {
	fmt.Fprintf(r.errOut, "%s %s\n", r.failure.Render("ERROR"), fmt.Sprintf(format, args...))
}

// section prints a demo heading.
func (r *renderer) section(title string) {
	if r.json() {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.heading.Render(title))
}

func (r *renderer) ticket(t *service.TicketResponse) error {
	if r.json() {
		return r.writeJSON(t)
	}

	lines := []string{
		r.heading.Render(fmt.Sprintf("Ticket #%d", t.ID)),
		"",
		r.label.Render("Title:") + " " + t.Title,
		r.label.Render("Priority:") + " " + r.priority(t.Priority),
		r.label.Render("Status:") + " " + r.status(t.Status),
		r.label.Render("Updated:") + " " + t.UpdatedAt,
	}
	_, err := fmt.Fprintln(r.out, r.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}

func (r *renderer) tickets(tickets []service.TicketResponse) error {
	if r.json() {
		return r.writeJSON(tickets)
	}
	if len(tickets) == 0 {
		_, err := fmt.Fprintln(r.out, r.notice.Render("No tickets found."))
		return err
	}

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{strconv.FormatUint(uint64(t.ID), 10), t.Title, string(t.Priority), string(t.Status)})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.lg.NewStyle().Foreground(lipgloss.Color("6"))).
		Headers("ID", "Title", "Priority", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := r.lg.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Bold(true).Foreground(lipgloss.Color("5"))
			}
			if row < 0 || row >= len(tickets) {
				return cell
			}
			switch col {
			case 0:
				return cell.Foreground(lipgloss.Color("6")).Align(lipgloss.Right)
			case 2:
				return cell.Foreground(priorityColors[tickets[row].Priority]).Align(lipgloss.Center)
			case 3:
				return cell.Foreground(statusColors[tickets[row].Status]).Align(lipgloss.Center)
			}
			return cell
		})

	_, err := fmt.Fprintln(r.out, tbl.Render())
	return err
}

func (r *renderer) priority(p domain.Priority) string {
	return r.lg.NewStyle().Foreground(priorityColors[p]).Render(string(p))
}

func (r *renderer) status(s domain.Status) string {
	return r.lg.NewStyle().Foreground(statusColors[s]).Render(string(s))
}

func (r *renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
