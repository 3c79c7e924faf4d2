package cli

import (
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

var demoTickets = []service.CreateTicketRequest{
	{Title: "Fix login bug", Priority: domain.PriorityHigh, Status: domain.StatusBacklog},
	{Title: "Add dark mode", Priority: domain.PriorityMed, Status: domain.StatusBacklog},
	{Title: "Update docs", Priority: domain.PriorityLow, Status: domain.StatusDone},
	{Title: "Refactor auth", Priority: domain.PriorityHigh, Status: domain.StatusBacklog},
}

func (a *App) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed sample tickets and walk through filtering and updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a.render.section("Creating tickets...")
			created := make([]*service.TicketResponse, 0, len(demoTickets))
			for _, req := range demoTickets {
				ticket, err := a.tickets.CreateTicket(ctx, req)
				if err != nil {
					return err
				}
				created = append(created, ticket)
			}

			a.render.section("All Tickets:")
			if err := a.showList(cmd, domain.TicketFilter{}); err != nil {
				return err
			}

			backlog := domain.StatusBacklog
			a.render.section("Backlog Tickets:")
			if err := a.showList(cmd, domain.TicketFilter{Status: &backlog}); err != nil {
				return err
			}

			high := domain.PriorityHigh
			a.render.section("High Priority Tickets:")
			if err := a.showList(cmd, domain.TicketFilter{Priority: &high}); err != nil {
				return err
			}

			first, second := created[0].ID, created[1].ID

			a.render.section("Updating the first ticket to DONE...")
			ticket, err := a.tickets.UpdateTicketStatus(ctx, first, domain.StatusDone)
			if err != nil {
				return err
			}
			if err := a.render.ticket(ticket); err != nil {
				return err
			}

			a.render.section("Raising the second ticket to HIGH...")
			ticket, err = a.tickets.UpdateTicketPriority(ctx, second, domain.PriorityHigh)
			if err != nil {
				return err
			}
			if err := a.render.ticket(ticket); err != nil {
				return err
			}

			a.render.section("Final State:")
			if err := a.showList(cmd, domain.TicketFilter{}); err != nil {
				return err
			}
			a.render.successf("Demo completed successfully!")
			return nil
		},
	}
}

func (a *App) showList(cmd *cobra.Command, filter domain.TicketFilter) error {
	tickets, err := a.tickets.ListTickets(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return a.render.tickets(tickets)
}
