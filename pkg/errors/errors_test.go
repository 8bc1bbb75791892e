package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "resolution must be positive, got %d", -4)

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}
	if want := "INVALID_CONFIG: resolution must be positive, got -4"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := Wrap(ErrCodeNetwork, cause, "fetch %s", "GaiaSource_000000-003111.csv.gz")

	want := "NETWORK_ERROR: fetch GaiaSource_000000-003111.csv.gz: connection reset by peer"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeChecksum, "md5"), ErrCodeChecksum, true},
		{"other code", New(ErrCodeChecksum, "md5"), ErrCodeDecode, false},
		{"outermost code wins", Wrap(ErrCodeNetwork, New(ErrCodeTimeout, "inner"), "outer"), ErrCodeNetwork, true},
		{"behind fmt wrapping", fmt.Errorf("ingest: %w", New(ErrCodeCacheIO, "disk full")), ErrCodeCacheIO, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeDecode, "gzip header"), ErrCodeDecode},
		{"joined", fmt.Errorf("render: %w", errors.Join(New(ErrCodeEncode, "png"))), ErrCodeEncode},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeTimeout, errors.New("deadline"), "shard download timed out")); got != "shard download timed out" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestIsShardLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", New(ErrCodeNetwork, "reset"), true},
		{"timeout", New(ErrCodeTimeout, "deadline"), true},
		{"checksum", New(ErrCodeChecksum, "mismatch"), true},
		{"decode", New(ErrCodeDecode, "gzip"), true},
		{"not found", New(ErrCodeNotFound, "404"), true},
		{"cache io", Wrap(ErrCodeCacheIO, errors.New("disk full"), "write"), true},
		{"encode", New(ErrCodeEncode, "png"), false},
		{"config", New(ErrCodeInvalidConfig, "resolution"), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsShardLevel(tt.err); got != tt.want {
				t.Errorf("IsShardLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
