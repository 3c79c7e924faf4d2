// Package cli implements the tickets command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/config"
	"github.com/Tomlord1122/ticket-tracker/internal/database"
	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/logging"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
	"github.com/Tomlord1122/ticket-tracker/internal/storage"
)

// App carries the state one CLI invocation needs. The store is opened
// lazily in the root command's PersistentPreRunE so --help never touches
// the database.
type App struct {
	out    io.Writer
	errOut io.Writer

	viper   *viper.Viper
	cfgFile string
	output  string

	repo    repository.TicketRepository
	db      database.Service
	logger  *zap.Logger
	tickets service.TicketService
	render  *renderer
}

type Option func(*App)

// WithOutput redirects rendered output and errors.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithRepository skips backend selection and uses repo directly.
func WithRepository(repo repository.TicketRepository) Option {
	return func(a *App) { a.repo = repo }
}

func New(opts ...Option) *App {
	v := config.NewViper()
	// The CLI persists to a local file and keeps stderr quiet by default.
	v.SetDefault("backend", config.BackendSQLite)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	a := &App{
		out:    os.Stdout,
		errOut: os.Stderr,
		viper:  v,
		output: outputTable,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the CLI with args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.Command()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

// Command builds the root command and all subcommands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "tickets",
		Short: "Dev-Ops Ticket Management CLI",
		Long: `tickets creates, lists, updates and deletes tickets.

By default tickets are stored in a local SQLite file (tickets.db). Use
--backend postgres with DATABASE_URL or BLUEPRINT_DB_* to share the API
server's database, or --backend memory for a throwaway session.

Examples:
  tickets create "Fix login bug" --priority HIGH
  tickets list --status BACKLOG
  tickets update-status 1 DONE
  tickets delete 1`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./ticket-tracker.{yaml,json,toml})")
	flags.StringVarP(&a.output, "output", "o", outputTable, "output format (table, json)")
	flags.String("backend", config.BackendSQLite, "storage backend (sqlite, postgres, memory)")
	flags.String("sqlite-path", "tickets.db", "SQLite database file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = a.viper.BindPFlag("backend", flags.Lookup("backend"))
	_ = a.viper.BindPFlag("sqlite.path", flags.Lookup("sqlite-path"))
	_ = a.viper.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		a.createCommand(),
		a.listCommand(),
		a.getCommand(),
		a.updateCommand(),
		a.updateStatusCommand(),
		a.updatePriorityCommand(),
		a.deleteCommand(),
		a.demoCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.output != outputTable && a.output != outputJSON {
		return fmt.Errorf("invalid output format %q (expected table or json)", a.output)
	}
	a.render = newRenderer(a.out, a.errOut, a.output)

	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.repo == nil {
		repo, db, err := storage.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		a.repo, a.db = repo, db
	}
	a.tickets = service.NewTicketService(a.repo, logger)
	return nil
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *App) reportError(err error) {
	r := a.render
	if r == nil {
		r = newRenderer(a.out, a.errOut, outputTable)
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		r.errorf("Ticket #%d not found.", nf.ID)
		return
	}
	r.errorf("%s", err.Error())
}
