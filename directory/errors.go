package directory

import (
	"errors"
	"fmt"
)

// UserFacing marks errors that are reported back to the invoking user
// verbatim and then swallowed. Anything else that escapes a command
// handler is an internal error: logged, never shown.
type UserFacing interface {
	error
	UserFacing()
}

type userFacing struct{ msg string }

func (e userFacing) Error() string { return e.msg }
func (e userFacing) UserFacing()   {}

// NewUserError builds an ad-hoc user-facing error.
func NewUserError(format string, args ...any) error {
	return userFacing{msg: fmt.Sprintf(format, args...)}
}

// IsUserError reports whether err should be relayed to the user.
func IsUserError(err error) bool {
	var uf UserFacing
	return errors.As(err, &uf)
}

type UserNotFoundError struct{ Nick string }

func (e UserNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, I don't know who %q is.", e.Nick)
}
func (e UserNotFoundError) UserFacing() {}

type MessageNotFoundError struct{ ID int }

func (e MessageNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, I couldn't find message %d.", e.ID)
}
func (e MessageNotFoundError) UserFacing() {}

type TopicNotFoundError struct{ Name string }

func (e TopicNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, there's no such topic %q.", e.Name)
}
func (e TopicNotFoundError) UserFacing() {}

type ChannelNotFoundError struct{ Name string }

func (e ChannelNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, I don't know channel %s.", e.Name)
}
func (e ChannelNotFoundError) UserFacing() {}

type OwnerNotFoundError struct{ Channel string }

func (e OwnerNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, I don't know who owns this channel %s.", e.Channel)
}
func (e OwnerNotFoundError) UserFacing() {}

type CommandNotFoundError struct{ Command string }

func (e CommandNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, there is no such command %q.", e.Command)
}
func (e CommandNotFoundError) UserFacing() {}

type AmbiguousCommandError struct {
	Position int
	Word     string
}

func (e AmbiguousCommandError) Error() string {
	return fmt.Sprintf("Sorry, but word %d (%s) is too ambiguous. Please be more precise.", e.Position, e.Word)
}
func (e AmbiguousCommandError) UserFacing() {}

type BadValueError struct{ Value string }

func (e BadValueError) Error() string {
	return fmt.Sprintf("Invalid value: %q.", e.Value)
}
func (e BadValueError) UserFacing() {}

// ErrMissingParams is raised before any state was touched when a
// handler received fewer parameters than it needs.
var ErrMissingParams = userFacing{msg: "Sorry, but that command needs more parameters."}

var ErrWrongParamCount = userFacing{msg: "Sorry, but you entered a wrong amount of parameters."}

var ErrNotAuthenticated = userFacing{msg: "Sorry, but you need to be logged in to do that."}

// ErrShowSubcommands signals the dispatcher to list the resolved
// verb's immediate children instead of reporting a failure.
var ErrShowSubcommands = errors.New("show sub-command menu")
