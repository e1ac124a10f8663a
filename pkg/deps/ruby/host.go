package ruby

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/gemindex/pkg/deps"
)

// Pseudo-package names. Bundler resolves the running interpreter and
// RubyGems itself under these names, so gems that declare required Ruby or
// RubyGems versions can depend on them like on any other gem.
const (
	RubyPackage     = "Ruby\x00"
	RubyGemsPackage = "RubyGems\x00"
)

// HostVersions answers the versions of the pseudo-packages. Static values
// win; otherwise the Ruby interpreter at RubyBin (default "ruby") is asked.
type HostVersions struct {
	RuntimeVersion        string // e.g. "3.3.0"
	PackageManagerVersion string // e.g. "3.5.3"
	RubyBin               string

	run func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// Runtime returns the Ruby version.
func (h *HostVersions) Runtime(ctx context.Context) (string, error) {
	if h.RuntimeVersion != "" {
		return h.RuntimeVersion, nil
	}
	return h.eval(ctx, "print RUBY_VERSION")
}

// PackageManager returns the RubyGems version.
func (h *HostVersions) PackageManager(ctx context.Context) (string, error) {
	if h.PackageManagerVersion != "" {
		return h.PackageManagerVersion, nil
	}
	return h.eval(ctx, "print Gem::VERSION")
}

// Pseudo maps the pseudo-package names to their version lookups, ready for
// deps.Options.Pseudo. Empty names fall back to [RubyPackage] and
// [RubyGemsPackage].
func (h *HostVersions) Pseudo(rubyName, rubygemsName string) map[string]deps.VersionFunc {
	if rubyName == "" {
		rubyName = RubyPackage
	}
	if rubygemsName == "" {
		rubygemsName = RubyGemsPackage
	}
	return map[string]deps.VersionFunc{
		rubyName:     h.Runtime,
		rubygemsName: h.PackageManager,
	}
}

func (h *HostVersions) eval(ctx context.Context, script string) (string, error) {
	bin := h.RubyBin
	if bin == "" {
		bin = "ruby"
	}
	run := h.run
	if run == nil {
		run = execOutput
	}
	out, err := run(ctx, bin, "-e", script)
	if err != nil {
		return "", fmt.Errorf("%s -e %q: %w", bin, script, err)
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "", fmt.Errorf("%s -e %q: empty output", bin, script)
	}
	return v, nil
}

func execOutput(ctx context.Context, bin string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}
