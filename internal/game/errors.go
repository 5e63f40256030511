package game

import (
	"errors"
	"fmt"
)

// ViolationCode identifies why an action was rejected.
type ViolationCode string

const (
	CodeNotYourTurn       ViolationCode = "not_your_turn"
	CodeInvalidAction     ViolationCode = "invalid_action"
	CodeRaiseTooSmall     ViolationCode = "raise_too_small"
	CodeInsufficientChips ViolationCode = "insufficient_chips"
	CodeCannotCheck       ViolationCode = "cannot_check"
	CodeRaiseNotReopened  ViolationCode = "raise_not_reopened"
	CodeNoHandInProgress  ViolationCode = "no_hand_in_progress"
	CodeUnknownPlayer     ViolationCode = "unknown_player"
)

// RuleViolation is returned when a player action breaks the betting rules.
// The hand state is left untouched.
type RuleViolation struct {
	Code    ViolationCode
	Message string
}

func (e *RuleViolation) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any RuleViolation with the same code, so the sentinels below
// work with errors.Is regardless of message.
func (e *RuleViolation) Is(target error) bool {
	var rv *RuleViolation
	if !errors.As(target, &rv) {
		return false
	}
	return rv.Code == e.Code
}

func violation(code ViolationCode, format string, args ...any) error {
	return &RuleViolation{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotYourTurn       = &RuleViolation{Code: CodeNotYourTurn}
	ErrInvalidAction     = &RuleViolation{Code: CodeInvalidAction}
	ErrRaiseTooSmall     = &RuleViolation{Code: CodeRaiseTooSmall}
	ErrInsufficientChips = &RuleViolation{Code: CodeInsufficientChips}
	ErrCannotCheck       = &RuleViolation{Code: CodeCannotCheck}
	ErrRaiseNotReopened  = &RuleViolation{Code: CodeRaiseNotReopened}
	ErrNoHandInProgress  = &RuleViolation{Code: CodeNoHandInProgress}
	ErrUnknownPlayer     = &RuleViolation{Code: CodeUnknownPlayer}
)

// ErrChipMismatch marks a failed chip conservation check.
var ErrChipMismatch = errors.New("chip conservation violated")

// StateError reports an engine defect. The hand it occurs in is aborted.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error in %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func stateError(op string, err error) error {
	return &StateError{Op: op, Err: err}
}

// IsStateError reports whether err is (or wraps) a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
