// Package repositorytest holds the behavioral suite every
// repository.TicketRepository implementation must pass.
package repositorytest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
)

// Factory returns an empty repository whose ids start at 1.
type Factory func(t *testing.T) repository.TicketRepository

// RunContract runs the shared suite against repositories built by newRepo.
// Each subtest gets its own repository.
func RunContract(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.TicketRepository)
	}{
		{"CreateAppliesDefaults", testCreateAppliesDefaults},
		{"CreateAssignsIncreasingIDs", testCreateAssignsIncreasingIDs},
		{"CreateRejectsEmptyTitle", testCreateRejectsEmptyTitle},
		{"CreateRejectsInvalidEnums", testCreateRejectsInvalidEnums},
		{"FindByIDRoundTrip", testFindByIDRoundTrip},
		{"FindByIDMissing", testFindByIDMissing},
		{"ListOrderAndFilters", testListOrderAndFilters},
		{"FilterHelpersMatchList", testFilterHelpersMatchList},
		{"UpdateIsPartial", testUpdateIsPartial},
		{"UpdateRejectsInvalidPatch", testUpdateRejectsInvalidPatch},
		{"UpdateMissing", testUpdateMissing},
		{"SingleFieldUpdates", testSingleFieldUpdates},
		{"DeleteReportsOnce", testDeleteReportsOnce},
		{"IDsNotReusedAfterDelete", testIDsNotReusedAfterDelete},
		{"Scenario", testScenario},
		{"ConcurrentCreates", testConcurrentCreates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

func mustCreate(t *testing.T, repo repository.TicketRepository, title string, p domain.Priority, s domain.Status) *domain.Ticket {
	t.Helper()
	ticket, err := repo.Create(context.Background(), title, p, s)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	return ticket
}

func ids(tickets []domain.Ticket) []uint {
	out := make([]uint, len(tickets))
	for i, ticket := range tickets {
		out[i] = ticket.ID
	}
	return out
}

// requireSameTicket compares timestamps with Equal so the check does not
// depend on monotonic clock readings.
func requireSameTicket(t *testing.T, want, got *domain.Ticket) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Priority, got.Priority)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at: want %s, got %s", want.UpdatedAt, got.UpdatedAt)
}

func testCreateAppliesDefaults(t *testing.T, repo repository.TicketRepository) {
	ticket := mustCreate(t, repo, "Add dark mode", "", "")
	assert.Equal(t, uint(1), ticket.ID)
	assert.Equal(t, "Add dark mode", ticket.Title)
	assert.Equal(t, domain.PriorityMed, ticket.Priority)
	assert.Equal(t, domain.StatusBacklog, ticket.Status)
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.True(t, ticket.CreatedAt.Equal(ticket.UpdatedAt))
}

func testCreateAssignsIncreasingIDs(t *testing.T, repo repository.TicketRepository) {
	var last uint
	for i := 0; i < 5; i++ {
		ticket := mustCreate(t, repo, "Task", domain.PriorityLow, domain.StatusBacklog)
		assert.Greater(t, ticket.ID, last)
		last = ticket.ID
	}
}

func testCreateRejectsEmptyTitle(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	for _, title := range []string{"", "   "} {
		ticket, err := repo.Create(ctx, title, "", "")
		assert.Nil(t, ticket)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Field)
	}

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testCreateRejectsInvalidEnums(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	_, err := repo.Create(ctx, "Task", domain.Priority("URGENT"), "")
	assert.True(t, domain.IsValidation(err))
	_, err = repo.Create(ctx, "Task", "", domain.Status("WIP"))
	assert.True(t, domain.IsValidation(err))

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testFindByIDRoundTrip(t *testing.T, repo repository.TicketRepository) {
	created := mustCreate(t, repo, "Fix login bug", domain.PriorityHigh, domain.StatusBacklog)

	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	requireSameTicket(t, created, got)
}

func testFindByIDMissing(t *testing.T, repo repository.TicketRepository) {
	got, err := repo.FindByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testListOrderAndFilters(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	t1 := mustCreate(t, repo, "Fix login bug", domain.PriorityHigh, domain.StatusBacklog)
	t2 := mustCreate(t, repo, "Add dark mode", domain.PriorityMed, domain.StatusBacklog)
	t3 := mustCreate(t, repo, "Update docs", domain.PriorityLow, domain.StatusDone)
	t4 := mustCreate(t, repo, "Refactor auth", domain.PriorityHigh, domain.StatusDone)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t2.ID, t3.ID, t4.ID}, ids(all))

	high := domain.PriorityHigh
	done := domain.StatusDone
	backlog := domain.StatusBacklog

	got, err := repo.List(ctx, domain.TicketFilter{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t4.ID}, ids(got))

	got, err = repo.List(ctx, domain.TicketFilter{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, []uint{t3.ID, t4.ID}, ids(got))

	got, err = repo.List(ctx, domain.TicketFilter{Status: &backlog, Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID}, ids(got))

	low := domain.PriorityLow
	got, err = repo.List(ctx, domain.TicketFilter{Status: &backlog, Priority: &low})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testFilterHelpersMatchList(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	mustCreate(t, repo, "a", domain.PriorityLow, domain.StatusDone)
	mustCreate(t, repo, "b", domain.PriorityHigh, domain.StatusBacklog)
	mustCreate(t, repo, "c", domain.PriorityLow, domain.StatusBacklog)
	mustCreate(t, repo, "d", domain.PriorityMed, domain.StatusDone)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)

	for _, status := range domain.Statuses {
		want := make([]uint, 0)
		for _, ticket := range all {
			if ticket.Status == status {
				want = append(want, ticket.ID)
			}
		}
		got, err := repo.FilterByStatus(ctx, status)
		require.NoError(t, err)
		assert.Equal(t, want, ids(got), "status %s", status)
	}

	for _, priority := range domain.Priorities {
		want := make([]uint, 0)
		for _, ticket := range all {
			if ticket.Priority == priority {
				want = append(want, ticket.ID)
			}
		}
		got, err := repo.FilterByPriority(ctx, priority)
		require.NoError(t, err)
		assert.Equal(t, want, ids(got), "priority %s", priority)
	}
}

func testUpdateIsPartial(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, "Old title", domain.PriorityHigh, domain.StatusBacklog)

	title := "New title"
	updated, err := repo.Update(ctx, created.ID, domain.TicketPatch{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, domain.StatusBacklog, updated.Status)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	requireSameTicket(t, updated, got)

	// An empty patch still refreshes updated_at and changes nothing else.
	again, err := repo.Update(ctx, created.ID, domain.TicketPatch{})
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, "New title", again.Title)
	assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))
}

func testUpdateRejectsInvalidPatch(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, "Keep me", domain.PriorityLow, domain.StatusBacklog)

	empty := ""
	_, err := repo.Update(ctx, created.ID, domain.TicketPatch{Title: &empty})
	assert.True(t, domain.IsValidation(err))

	bogus := domain.Status("WIP")
	_, err = repo.Update(ctx, created.ID, domain.TicketPatch{Status: &bogus})
	assert.True(t, domain.IsValidation(err))

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	requireSameTicket(t, created, got)
}

func testUpdateMissing(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	existing := mustCreate(t, repo, "Existing", domain.PriorityLow, domain.StatusBacklog)

	title := "Ghost"
	got, err := repo.Update(ctx, existing.ID+100, domain.TicketPatch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	requireSameTicket(t, existing, &all[0])
}

func testSingleFieldUpdates(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, "Task", domain.PriorityLow, domain.StatusBacklog)

	updated, err := repo.UpdateStatus(ctx, created.ID, domain.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, domain.PriorityLow, updated.Priority)

	updated, err = repo.UpdatePriority(ctx, created.ID, domain.PriorityHigh)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, domain.StatusDone, updated.Status)

	missing, err := repo.UpdateStatus(ctx, 999, domain.StatusDone)
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = repo.UpdatePriority(ctx, 999, domain.PriorityLow)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	requireSameTicket(t, updated, &all[0])
}

func testDeleteReportsOnce(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	doomed := mustCreate(t, repo, "Doomed", domain.PriorityHigh, domain.StatusBacklog)
	kept := mustCreate(t, repo, "Kept", domain.PriorityHigh, domain.StatusBacklog)

	deleted, err := repo.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := repo.FindByID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	high, err := repo.FilterByPriority(ctx, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, []uint{kept.ID}, ids(high))
}

func testIDsNotReusedAfterDelete(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()
	mustCreate(t, repo, "one", "", "")
	last := mustCreate(t, repo, "two", "", "")

	deleted, err := repo.Delete(ctx, last.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	next := mustCreate(t, repo, "three", "", "")
	assert.Greater(t, next.ID, last.ID)
}

func testScenario(t *testing.T, repo repository.TicketRepository) {
	ctx := context.Background()

	t1 := mustCreate(t, repo, "Fix login bug", domain.PriorityHigh, domain.StatusBacklog)
	assert.Equal(t, uint(1), t1.ID)
	t2 := mustCreate(t, repo, "Add dark mode", "", "")
	assert.Equal(t, uint(2), t2.ID)
	assert.Equal(t, domain.PriorityMed, t2.Priority)
	assert.Equal(t, domain.StatusBacklog, t2.Status)

	high, err := repo.FilterByPriority(ctx, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(high))

	done, err := repo.UpdateStatus(ctx, 1, domain.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, domain.StatusDone, done.Status)

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(1), all[0].ID)
	assert.Equal(t, domain.StatusDone, all[0].Status)
}

func testConcurrentCreates(t *testing.T, repo repository.TicketRepository) {
	const n = 20
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan uint, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := repo.Create(ctx, "Parallel", domain.PriorityLow, domain.StatusBacklog)
			if err != nil {
				errs <- err
				return
			}
			results <- ticket.ID
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[uint]bool, n)
	for id := range results {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, n)
}
