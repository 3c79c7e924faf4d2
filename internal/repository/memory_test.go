package repository_test

import (
	"testing"

	"github.com/Tomlord1122/ticket-tracker/internal/repository"
	"github.com/Tomlord1122/ticket-tracker/internal/repository/repositorytest"
)

func TestMemoryTicketRepository(t *testing.T) {
	repositorytest.RunContract(t, func(t *testing.T) repository.TicketRepository {
		return repository.NewMemoryTicketRepository()
	})
}
