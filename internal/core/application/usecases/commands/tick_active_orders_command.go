package commands

import (
	"errors"

	"tracker/internal/pkg/guard"
)

var ErrTickActiveOrdersCommandIsNotConstructed = errors.New(
	"TickActiveOrdersCommand must be created via NewTickActiveOrdersCommand constructor",
)

// TickActiveOrdersCommand represents a request to advance every activated
// order by one simulation step. Carries no payload.
type TickActiveOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewTickActiveOrdersCommand creates a command for one simulation round.
func NewTickActiveOrdersCommand() TickActiveOrdersCommand {
	return TickActiveOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrTickActiveOrdersCommandIsNotConstructed if validation fails.
func (c TickActiveOrdersCommand) Validate() error {
	return c.guard.Validate(ErrTickActiveOrdersCommandIsNotConstructed)
}
