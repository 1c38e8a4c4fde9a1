// Package errors provides error handling for the bridge.
//
// This package re-exports the handful of github.com/cockroachdb/errors
// entry points the bridge actually calls, providing stack traces and
// wrapping/context on top of the standard error interface.
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, ErrConnect) {
//	    // handle connect failure
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation, wrapping, and inspection.
var (
	New   = crdb.New
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Is    = crdb.Is
)

// Common sentinel errors can be defined like:
//   var ErrNotFound = errors.New("not found")
//   var ErrClosed = errors.New("closed")

// Sentinel errors for the taxonomy in DESIGN.md. The row builder, writer,
// graph client, broker connect and TTL sweeper wrap one of these so callers
// can classify with errors.Is without string matching. The bridge's JSON
// decode failures are counted and logged without producing ErrParse.
var (
	// ErrParse marks a message whose payload could not be decoded as JSON or
	// was missing a field its subject requires. The message is dropped.
	ErrParse = crdb.New("parse error")

	// ErrBuild marks a message the builder refused to turn into rows
	// (non-object payload, missing camera ID, non-list fused_players
	// payload). Unknown subjects and a zero current tick are skipped with no
	// rows and no error.
	ErrBuild = crdb.New("build error")

	// ErrWrite marks a failed graph write. The batch that produced it is
	// aborted; processing resumes on the next tick.
	ErrWrite = crdb.New("write error")

	// ErrCleanup marks a failed TTL sweep statement. Only the current sweep
	// is aborted; the next cleanup tick retries.
	ErrCleanup = crdb.New("cleanup error")

	// ErrConnect marks a graph connection failure that survived all
	// configured retries. Fatal at startup.
	ErrConnect = crdb.New("connect failure")
)

// IsTransient reports whether err belongs to the one error class the graph
// client and the TTL sweeper are allowed to retry automatically: a
// conflicting-transaction response from the graph store. Everything else is
// surfaced to the caller as-is.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "conflicting transaction")
}
