// Package cliutil holds conventions shared by cmd/flowctl's command
// handlers: POSIX sysexits.h exit codes and the error-to-exit-code
// mapping that lets every subcommand exit consistently.
package cliutil

import (
	"errors"

	"github.com/flowctl/flowctl/internal/serverclient"
)

// Exit codes, POSIX sysexits.h semantics.
const (
	ExitOK          = 0  // success
	ExitUsage       = 64 // command line usage error
	ExitDataErr     = 65 // data format / validation error
	ExitNoInput     = 66 // no input file
	ExitUnavailable = 69 // service unavailable
	ExitSoftware    = 70 // internal software error
	ExitCantCreate  = 73 // cannot create output
	ExitIOErr       = 74 // I/O error
	ExitTempFail    = 75 // temporary failure (rate-limit)
	ExitProtocol    = 76 // protocol error (5xx from server)
	ExitNoPerm      = 77 // permission denied (auth)
	ExitConfig      = 78 // configuration error
)

// FromError maps an error returned by a command handler to the exit
// code cmd/flowctl should return. A nil error maps to ExitOK.
//
// serverclient.Error carries its own taxonomy and maps directly;
// errors wrapped by NoInputError, ConfigError, UsageError, or DataError
// map to their category's code; everything else falls back to
// ExitSoftware, the "this should have been handled more specifically"
// bucket.
func FromError(err error) int {
	if err == nil {
		return ExitOK
	}

	var svcErr *serverclient.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Code {
		case serverclient.ErrAuth:
			return ExitNoPerm
		case serverclient.ErrNotFound:
			return ExitDataErr
		case serverclient.ErrValidation:
			return ExitDataErr
		case serverclient.ErrRateLimit:
			return ExitTempFail
		case serverclient.ErrServer:
			return ExitProtocol
		case serverclient.ErrConnection:
			return ExitUnavailable
		}
	}

	if errors.Is(err, errNoInput) {
		return ExitNoInput
	}
	if errors.Is(err, errConfig) {
		return ExitConfig
	}
	if errors.Is(err, errUsage) {
		return ExitUsage
	}
	if errors.Is(err, errData) {
		return ExitDataErr
	}

	return ExitSoftware
}
