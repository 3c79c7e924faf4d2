package cli

import (
	"fmt"
	"strconv"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// priorityValue and statusValue implement pflag.Value so enum flags are
// validated while cobra parses arguments.
type priorityValue struct{ p *domain.Priority }

func (v priorityValue) String() string { return string(*v.p) }
func (v priorityValue) Type() string   { return "priority" }

func (v priorityValue) Set(s string) error {
	p, err := domain.ParsePriority(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

type statusValue struct{ s *domain.Status }

func (v statusValue) String() string { return string(*v.s) }
func (v statusValue) Type() string   { return "status" }

func (v statusValue) Set(s string) error {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return err
	}
	*v.s = st
	return nil
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, &domain.ValidationError{Field: "id", Message: fmt.Sprintf("invalid ticket id %q", arg)}
	}
	return uint(id), nil
}
