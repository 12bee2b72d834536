// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"errors"

	"github.com/olegiv/eventfx/internal/remote"
)

// ErrUnknownEntity is returned when selecting an id that is not cached.
var ErrUnknownEntity = errors.New("unknown entity")

// ValidationError is a local input check that failed before any remote
// call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ErrorKind classifies a failed mutation.
type ErrorKind int

// Failure kinds. KindNone marks a successful outcome.
const (
	KindNone ErrorKind = iota
	KindValidation
	KindBusy
	KindRemote
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindBusy:
		return "busy"
	case KindRemote:
		return "remote"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Outcome is the result of a mutation. Message is set on failure and is
// fit to show to the user.
type Outcome[T any] struct {
	OK      bool
	Entity  T
	Kind    ErrorKind
	Message string
}

func succeed[T any](v T) Outcome[T] {
	return Outcome[T]{OK: true, Entity: v}
}

func fail[T any](kind ErrorKind, msg string) Outcome[T] {
	return Outcome[T]{Kind: kind, Message: msg}
}

func invalid[T any](err *ValidationError) Outcome[T] {
	return fail[T](KindValidation, err.Message)
}

func busy[T any]() Outcome[T] {
	return fail[T](KindBusy, "Another change to this item is still in progress")
}

// remoteFailure maps a remote error. fallback is used when the server
// sent no message.
func remoteFailure[T any](err error, fallback string) Outcome[T] {
	msg := remote.MessageOf(err)
	if remote.IsUnauthorized(err) {
		if msg == "" || msg == "unauthorized" {
			msg = "Session expired, log in again"
		}
		return fail[T](KindUnauthorized, msg)
	}
	if msg == "" {
		msg = fallback
	}
	return fail[T](KindRemote, msg)
}
