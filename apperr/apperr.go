// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind groups errors by how the caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Code is the machine-readable reason sent to clients next to the message.
type Code string

const (
	CodeInvalidJSON         Code = "invalid_json"
	CodeUnknownAction       Code = "unknown_action"
	CodeMissingFields       Code = "missing_fields"
	CodeMissingPresident    Code = "missing_president"
	CodeTooManyMembers      Code = "too_many_members"
	CodeMissingEthicsAnswer Code = "missing_ethics_answer"
	CodeUnknownCandidate    Code = "unknown_candidate"
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeInvalidOrExpired    Code = "invalid_or_expired"
	CodeNotEligible         Code = "not_eligible"
	CodeElectionClosed      Code = "election_closed"
	CodeElectionOpen        Code = "election_open"
	CodeAlreadyVoted        Code = "already_voted"
	CodeResultsHidden       Code = "results_hidden"
	CodeHasVotes            Code = "has_votes"
	CodeNotFound            Code = "not_found"
	CodeUnavailable         Code = "unavailable"
	CodeInternal            Code = "internal"
)

// Error is the single error type crossing service boundaries. Two Errors
// match under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an Error without a cause.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches cause to a new Error.
func Wrap(err error, kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code Code, message string) *Error {
	return New(KindValidation, code, message)
}

func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, CodeInternal, message)
}

func Unavailable(err error) *Error {
	return Wrap(err, KindUnavailable, CodeUnavailable, "service temporarily unavailable, retry later")
}

// FromStore converts an unexpected store failure. Deadline and cancellation
// errors become Unavailable, everything else Internal.
func FromStore(err error, message string) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Unavailable(err)
	}
	return Internal(err, message)
}

// Reference values for errors.Is checks.
var (
	ErrInvalidCredentials  = New(KindAuth, CodeInvalidCredentials, "invalid credentials")
	ErrInvalidOrExpired    = New(KindAuth, CodeInvalidOrExpired, "invalid or expired session")
	ErrNotEligible         = New(KindForbidden, CodeNotEligible, "membership fees are not up to date; contact the society")
	ErrElectionClosed      = New(KindForbidden, CodeElectionClosed, "voting is not open")
	ErrElectionOpen        = New(KindForbidden, CodeElectionOpen, "close the election before revealing results")
	ErrAlreadyVoted        = New(KindForbidden, CodeAlreadyVoted, "you have already voted")
	ErrResultsHidden       = New(KindForbidden, CodeResultsHidden, "results have not been revealed yet")
	ErrHasVotes            = New(KindForbidden, CodeHasVotes, "candidate already has recorded votes; reset the election first")
	ErrMissingPresident    = Validation(CodeMissingPresident, "a president must be selected")
	ErrTooManyMembers      = Validation(CodeTooManyMembers, "member_ids must be a list of at most 10 candidates")
	ErrMissingEthicsAnswer = Validation(CodeMissingEthicsAnswer, "the ethics code question must be answered")
	ErrUnknownCandidate    = Validation(CodeUnknownCandidate, "invalid candidates")
	ErrNotFound            = New(KindNotFound, CodeNotFound, "not found")
)

// KindOf reports the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the Code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return to a client. Internal causes are
// never exposed.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	return e.Message
}
