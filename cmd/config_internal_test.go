package cmd

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestNewCLIConfigDefaults(t *testing.T) {
	cfg := newCLIConfig()

	if cfg.Watch.ObfuscationLimit != 25.0 {
		t.Fatalf("ObfuscationLimit = %v, want 25.0", cfg.Watch.ObfuscationLimit)
	}
	if len(cfg.Watch.SuspiciousCalls) != 3 {
		t.Fatalf("SuspiciousCalls = %v, want eval,atob,btoa", cfg.Watch.SuspiciousCalls)
	}
	if cfg.browseTimeout() != time.Duration(defaultBrowseTimeoutSecs)*time.Second {
		t.Fatalf("browseTimeout = %v", cfg.browseTimeout())
	}
	if cfg.trackerGitHubConfig().Configured() {
		t.Fatal("tracker must not be configured by default")
	}
}

func TestApplyIntDefaultRespectsChangedFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("browse-timeout", defaultBrowseTimeoutSecs, "")

	var got int
	applyIntDefault(flags, "browse-timeout", 120, func(v int) { got = v })
	if got != 120 {
		t.Fatalf("expected config default applied to unchanged flag, got %d", got)
	}

	if err := flags.Set("browse-timeout", "30"); err != nil {
		t.Fatal(err)
	}
	got = 0
	applyIntDefault(flags, "browse-timeout", 120, func(v int) { got = v })
	if got != 0 {
		t.Fatal("explicitly set flag must not be overridden by config default")
	}
}

func TestApplyFloatDefaultNilFlags(t *testing.T) {
	// must not panic with a nil flag set
	applyFloatDefault(nil, "obfuscation-limit", 50.0, func(float64) {
		t.Fatal("setter must not run for nil flags")
	})
}
