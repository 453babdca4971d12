package model

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported back to the client as failure lines. All of them are
// request-local: the connection keeps being served after any of these.
var (
	ErrAlreadyLoggedIn    = errors.New("Already logged in")
	ErrTooFast            = errors.New("Too fast")
	ErrLoginAlreadyExists = errors.New("Login already exists")
	ErrInvalidLogin       = errors.New("Invalid login: only printable ascii/rus chars allowed, ':' is forbidden, 20 chars at max")
	ErrNotLoggedIn        = errors.New("Please log in")
	ErrNoSuchUser         = errors.New("No such user")
	ErrUnknownCommand     = errors.New("Unknown command")
	ErrWrongPassword      = errors.New("Wrong password")
)

// WrongArgsError is returned when a command is missing required arguments.
type WrongArgsError struct {
	Required []string
}

func (e *WrongArgsError) Error() string {
	return fmt.Sprintf("Required args: %s", strings.Join(e.Required, ", "))
}

// SyntaxError is returned when a request line does not match the grammar.
type SyntaxError struct {
	Input string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error: %s", e.Input)
}
