package journal

import (
	"context"
	"fmt"
)

type CommandName string
type Command any

func CommandNameOf(command Command) CommandName {
	return CommandName(NameOf(command))
}

type CommandHandler[T any] interface {
	HandleCommand(ctx context.Context, cmd Command, state Snapshot[T], publish Appender) error
}

type CommandHandlerFunction[T any, C any] func(ctx context.Context, cmd C, state Snapshot[T], publish Appender) error

func (f CommandHandlerFunction[T, C]) HandleCommand(ctx context.Context, cmd Command, state Snapshot[T], publish Appender) error {
	command, ok := cmd.(C)
	if !ok {
		return UnexpectedCommand(cmd)
	}

	return f(ctx, command, state, publish)
}

type UnexpectedCommandError struct {
	Command CommandName
}

func (e UnexpectedCommandError) Error() string {
	return fmt.Sprintf("unexpected command %s", e.Command)
}

func UnexpectedCommand(command Command) error {
	return UnexpectedCommandError{Command: CommandNameOf(command)}
}
