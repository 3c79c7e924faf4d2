package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes one CLI invocation against repo, the way a shell would run
// the binary once per command.
func run(t *testing.T, repo repository.TicketRepository, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := []Option{WithOutput(&stdout, &stderr)}
	if repo != nil {
		opts = append(opts, WithRepository(repo))
	}
	code := New(opts...).Run(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCreateAndGet(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()

	res := run(t, repo, "create", "Fix login bug", "--priority", "high")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SUCCESS Ticket created successfully!")
	assert.Contains(t, res.stdout, "Ticket #1")
	assert.Contains(t, res.stdout, "HIGH")
	assert.Contains(t, res.stdout, "BACKLOG")

	res = run(t, repo, "get", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Fix login bug")
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()

	res := run(t, repo, "create", "Fix login bug", "--priority", "URGENT")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR")
	assert.Contains(t, res.stderr, "URGENT")

	res = run(t, repo, "create", "   ")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR")

	res = run(t, repo, "list", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, "[]", res.stdout)
}

func TestGetMissingTicket(t *testing.T) {
	res := run(t, repository.NewMemoryTicketRepository(), "get", "42")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR Ticket #42 not found.")
	assert.Empty(t, res.stdout)
}

func TestInvalidID(t *testing.T) {
	res := run(t, repository.NewMemoryTicketRepository(), "delete", "abc")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `invalid ticket id "abc"`)
}

func TestListFilters(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	for _, args := range [][]string{
		{"create", "Fix login bug", "-p", "HIGH"},
		{"create", "Add dark mode"},
		{"create", "Update docs", "-p", "LOW", "-s", "DONE"},
	} {
		require.Equal(t, 0, run(t, repo, args...).code)
	}

	titles := func(args ...string) []string {
		res := run(t, repo, append(args, "--output", "json")...)
		require.Equal(t, 0, res.code, res.stderr)
		var tickets []service.TicketResponse
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &tickets))
		out := make([]string, 0, len(tickets))
		for _, tk := range tickets {
			out = append(out, tk.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Fix login bug", "Add dark mode", "Update docs"}, titles("list"))
	assert.Equal(t, []string{"Fix login bug", "Add dark mode"}, titles("list", "--status", "backlog"))
	assert.Equal(t, []string{"Update docs"}, titles("list", "--priority", "LOW"))
	assert.Equal(t, []string{}, titles("list", "--priority", "LOW", "--status", "BACKLOG"))

	res := run(t, repo, "list", "--status", "DONE")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Update docs")
	assert.NotContains(t, res.stdout, "Fix login bug")
}

func TestListEmpty(t *testing.T) {
	res := run(t, repository.NewMemoryTicketRepository(), "list")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "No tickets found.")
}

func TestUpdateCommands(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	require.Equal(t, 0, run(t, repo, "create", "Fix login bug").code)

	res := run(t, repo, "update-status", "1", "done")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SUCCESS Ticket #1 status updated to DONE!")

	res = run(t, repo, "update-priority", "1", "HIGH")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SUCCESS Ticket #1 priority updated to HIGH!")

	res = run(t, repo, "update", "1", "--title", "Fix SSO login bug")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Fix SSO login bug")

	res = run(t, repo, "get", "1", "-o", "json")
	require.Equal(t, 0, res.code)
	var got service.TicketResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "Fix SSO login bug", got.Title)
	assert.EqualValues(t, "HIGH", got.Priority)
	assert.EqualValues(t, "DONE", got.Status)

	res = run(t, repo, "update", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "nothing to update")

	res = run(t, repo, "update-status", "1", "CLOSED")
	assert.Equal(t, 1, res.code)

	res = run(t, repo, "update-priority", "9", "LOW")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Ticket #9 not found.")
}

func TestDelete(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	require.Equal(t, 0, run(t, repo, "create", "Fix login bug").code)

	res := run(t, repo, "delete", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SUCCESS Ticket #1 deleted successfully!")

	res = run(t, repo, "delete", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Ticket #1 not found.")
}

func TestDemo(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()

	res := run(t, repo, "demo")
	require.Equal(t, 0, res.code, res.stderr)
	for _, want := range []string{
		"All Tickets:",
		"Backlog Tickets:",
		"High Priority Tickets:",
		"Final State:",
		"Refactor auth",
		"SUCCESS Demo completed successfully!",
	} {
		assert.Contains(t, res.stdout, want)
	}

	tickets, err := repo.List(context.Background(), domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 4)
	assert.EqualValues(t, "DONE", tickets[0].Status)
	assert.EqualValues(t, "HIGH", tickets[1].Priority)
}

func TestInvalidOutputFormat(t *testing.T) {
	res := run(t, repository.NewMemoryTicketRepository(), "list", "-o", "yaml")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid output format")
}

func TestSQLiteBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")

	res := run(t, nil, "--sqlite-path", path, "create", "Persisted ticket", "-p", "LOW")
	require.Equal(t, 0, res.code, res.stderr)

	res = run(t, nil, "--backend", "sqlite", "--sqlite-path", path, "get", "1", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	var got service.TicketResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "Persisted ticket", got.Title)
	assert.EqualValues(t, "LOW", got.Priority)
}

func TestUnknownBackend(t *testing.T) {
	res := run(t, nil, "--backend", "redis", "list")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR")
}
