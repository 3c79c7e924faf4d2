package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

func (a *App) createCommand() *cobra.Command {
	priority := domain.DefaultPriority
	status := domain.DefaultStatus

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := a.tickets.CreateTicket(cmd.Context(), service.CreateTicketRequest{
				Title:    args[0],
				Priority: priority,
				Status:   status,
			})
			if err != nil {
				return err
			}
			a.render.successf("Ticket created successfully!")
			return a.render.ticket(ticket)
		},
	}
	cmd.Flags().VarP(priorityValue{&priority}, "priority", "p", "ticket priority (LOW, MED, HIGH)")
	cmd.Flags().VarP(statusValue{&status}, "status", "s", "ticket status (BACKLOG, DONE)")
	return cmd
}

func (a *App) listCommand() *cobra.Command {
	var (
		priority domain.Priority
		status   domain.Status
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all tickets or filter by status/priority",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.TicketFilter
			if cmd.Flags().Changed("status") {
				filter.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				filter.Priority = &priority
			}

			tickets, err := a.tickets.ListTickets(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.render.tickets(tickets)
		},
	}
	cmd.Flags().VarP(priorityValue{&priority}, "priority", "p", "filter by priority")
	cmd.Flags().VarP(statusValue{&status}, "status", "s", "filter by status")
	return cmd
}

func (a *App) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a specific ticket by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ticket, err := a.tickets.GetTicket(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render.ticket(ticket)
		},
	}
}

func (a *App) updateCommand() *cobra.Command {
	var (
		title    string
		priority domain.Priority
		status   domain.Status
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update any combination of title, priority and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req service.UpdateTicketRequest
			if cmd.Flags().Changed("title") {
				req.Title = service.Some(title)
			}
			if cmd.Flags().Changed("priority") {
				req.Priority = service.Some(priority)
			}
			if cmd.Flags().Changed("status") {
				req.Status = service.Some(status)
			}
			if !req.Title.Set && !req.Priority.Set && !req.Status.Set {
				return errors.New("nothing to update; pass --title, --priority or --status")
			}

			ticket, err := a.tickets.UpdateTicket(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			a.render.successf("Ticket #%d updated!", id)
			return a.render.ticket(ticket)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().VarP(priorityValue{&priority}, "priority", "p", "new priority")
	cmd.Flags().VarP(statusValue{&status}, "status", "s", "new status")
	return cmd
}

func (a *App) updateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-status <id> <status>",
		Short: "Update ticket status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			ticket, err := a.tickets.UpdateTicketStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			a.render.successf("Ticket #%d status updated to %s!", id, status)
			return a.render.ticket(ticket)
		},
	}
}

func (a *App) updatePriorityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-priority <id> <priority>",
		Short: "Update ticket priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			priority, err := domain.ParsePriority(args[1])
			if err != nil {
				return err
			}

			ticket, err := a.tickets.UpdateTicketPriority(cmd.Context(), id, priority)
			if err != nil {
				return err
			}
			a.render.successf("Ticket #%d priority updated to %s!", id, priority)
			return a.render.ticket(ticket)
		},
	}
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tickets.DeleteTicket(cmd.Context(), id); err != nil {
				return err
			}
			a.render.successf("Ticket #%d deleted successfully!", id)
			return nil
		},
	}
}
