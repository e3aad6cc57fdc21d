package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
	"github.com/khanhnv2901/supplywatch/internal/tracker"
)

const defaultSettleSecs = 3

var defaultBrowseTimeoutSecs = int(constants.DefaultBrowseTimeout / time.Second)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Watch   WatchRuntimeConfig
	Tracker TrackerConfig
}

// WatchRuntimeConfig consolidates flag-driven settings for the watch command.
type WatchRuntimeConfig struct {
	ObfuscationLimit  float64
	SuspiciousCalls   []string
	BrowseTimeoutSecs int
	SettleSecs        int
}

// TrackerConfig groups issue-tracker credentials and target repository,
// typically supplied via config file or environment.
type TrackerConfig struct {
	Endpoint string
	Owner    string
	Repo     string
	Token    string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Watch: WatchRuntimeConfig{
			ObfuscationLimit:  constants.DefaultObfuscationLimit,
			SuspiciousCalls:   []string{"eval", "atob", "btoa"},
			BrowseTimeoutSecs: defaultBrowseTimeoutSecs,
			SettleSecs:        defaultSettleSecs,
		},
	}
}

// applyConfigDefaults merges config file values into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("watch.obfuscation_limit") {
		applyFloatDefault(watchCmd.Flags(), "obfuscation-limit", viper.GetFloat64("watch.obfuscation_limit"), func(v float64) {
			cliConfig.Watch.ObfuscationLimit = v
		})
	}
	if viper.IsSet("watch.suspicious_calls") {
		applyStringSliceDefault(watchCmd.Flags(), "suspicious-calls", viper.GetStringSlice("watch.suspicious_calls"), func(v []string) {
			cliConfig.Watch.SuspiciousCalls = v
		})
	}
	if viper.IsSet("watch.browse_timeout_secs") {
		applyIntDefault(watchCmd.Flags(), "browse-timeout", viper.GetInt("watch.browse_timeout_secs"), func(v int) {
			cliConfig.Watch.BrowseTimeoutSecs = v
		})
	}
	if viper.IsSet("watch.settle_secs") {
		applyIntDefault(watchCmd.Flags(), "settle", viper.GetInt("watch.settle_secs"), func(v int) {
			cliConfig.Watch.SettleSecs = v
		})
	}

	cliConfig.Tracker = TrackerConfig{
		Endpoint: viper.GetString("tracker.endpoint"),
		Owner:    viper.GetString("tracker.owner"),
		Repo:     viper.GetString("tracker.repo"),
		Token:    viper.GetString("tracker.token"),
	}
}

// trackerGitHubConfig converts the CLI tracker settings for the client.
func (c *CLIConfig) trackerGitHubConfig() tracker.GitHubConfig {
	return tracker.GitHubConfig{
		Endpoint: c.Tracker.Endpoint,
		Owner:    c.Tracker.Owner,
		Repo:     c.Tracker.Repo,
		Token:    c.Tracker.Token,
	}
}

func (c *CLIConfig) browseTimeout() time.Duration {
	return time.Duration(c.Watch.BrowseTimeoutSecs) * time.Second
}

func (c *CLIConfig) settle() time.Duration {
	return time.Duration(c.Watch.SettleSecs) * time.Second
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyFloatDefault(flags *pflag.FlagSet, name string, value float64, setter func(float64)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringSliceDefault(flags *pflag.FlagSet, name string, value []string, setter func([]string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
