package cliutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/flowctl/flowctl/internal/serverclient"
)

func TestFromError_Nil(t *testing.T) {
	if got := FromError(nil); got != ExitOK {
		t.Errorf("FromError(nil) = %d, want %d", got, ExitOK)
	}
}

func TestFromError_ServerClientTaxonomy(t *testing.T) {
	cases := []struct {
		code serverclient.ErrorCode
		want int
	}{
		{serverclient.ErrAuth, ExitNoPerm},
		{serverclient.ErrNotFound, ExitDataErr},
		{serverclient.ErrValidation, ExitDataErr},
		{serverclient.ErrRateLimit, ExitTempFail},
		{serverclient.ErrServer, ExitProtocol},
		{serverclient.ErrConnection, ExitUnavailable},
	}
	for _, tc := range cases {
		err := &serverclient.Error{Code: tc.code, Message: "boom"}
		if got := FromError(err); got != tc.want {
			t.Errorf("FromError(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestFromError_WrappedCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no input", NoInputError(errors.New("missing.json")), ExitNoInput},
		{"config", ConfigError(errors.New("bad yaml")), ExitConfig},
		{"usage", UsageError(errors.New("missing flag")), ExitUsage},
		{"data", DataError(errors.New("3 issue(s)")), ExitDataErr},
	}
	for _, tc := range cases {
		if got := FromError(tc.err); got != tc.want {
			t.Errorf("%s: FromError = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestFromError_UnrecognizedFallsBackToSoftware(t *testing.T) {
	if got := FromError(errors.New("something unexpected")); got != ExitSoftware {
		t.Errorf("FromError(unrecognized) = %d, want %d", got, ExitSoftware)
	}
}

func TestFromError_WrappedServerClientError(t *testing.T) {
	inner := &serverclient.Error{Code: serverclient.ErrAuth, Message: "expired token"}
	wrapped := fmt.Errorf("refreshing workflow: %w", inner)
	if got := FromError(wrapped); got != ExitNoPerm {
		t.Errorf("FromError(wrapped) = %d, want %d", got, ExitNoPerm)
	}
}
