package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("crawl: %w", context.Canceled), ExitInterrupted},
		{"invalid config", gemerrors.New(gemerrors.ErrCodeInvalidConfig, "no seeds"), ExitUsage},
		{"invalid gem", gemerrors.New(gemerrors.ErrCodeInvalidPackage, "bad name"), ExitUsage},
		{"network", gemerrors.Wrap(gemerrors.ErrCodeNetwork, errors.New("dial"), "crawl"), ExitRegistry},
		{"rate limited", gemerrors.New(gemerrors.ErrCodeRateLimited, "429"), ExitRegistry},
		{"not found", gemerrors.New(gemerrors.ErrCodeNotFound, "gem rack not in index"), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestInvalidConfigExitCode(t *testing.T) {
	_, err := execute(t, "build", "--config", "/nonexistent/gemindex.toml")
	if got := ExitCode(err); got != ExitUsage {
		t.Errorf("ExitCode(%v) = %d, want %d", err, got, ExitUsage)
	}
}
