package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quest4ione/hackmud-cli/cmd/util"
	"github.com/quest4ione/hackmud-cli/pkg/config"
	"github.com/quest4ione/hackmud-cli/pkg/errors"
	"github.com/quest4ione/hackmud-cli/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	parseUserConfig           = config.ParseUserIfExists
	writeUserConfig           = config.WriteUser
	getConfigPath             = config.GetUserConfigPath
)

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts config.User
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Set the defaults used by `hackmud sync`",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts, cmd.Flags().Changed("pattern")); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&cliOpts.HackmudPath, config.HackmudPathFlag, "",
		"Set the hackmud directory in the config.")
	cmd.Flags().StringArrayVar(&cliOpts.Patterns, "pattern", nil,
		"Set the globs synced when none are passed to `hackmud sync`. "+
			"May be repeated.")

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.User) string
	}

	getters := []getterSpec{
		{
			use:   "get-hackmud-path",
			short: "Get the configured hackmud directory",
			fn:    func(cfg config.User) string { return cfg.HackmudPath },
		},
		{
			use:   "get-patterns",
			short: "Get the configured globs, one per line",
			fn:    func(cfg config.User) string { return strings.Join(cfg.Patterns, "\n") },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Args:  cobra.NoArgs,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseUserConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig merges the given options into the current user config, and
// writes the result. Patterns are only replaced if `setPatterns` is true, so
// that they can be cleared by passing an empty pattern.
func SetupConfig(cliOpts config.User, setPatterns bool) error {
	cfg, err := parseUserConfig()
	if err != nil {
		return errors.WithContext(err, "read current config")
	}

	if cliOpts.HackmudPath != "" {
		cfg.HackmudPath = cliOpts.HackmudPath
	}

	if setPatterns {
		cfg.Patterns = nil
		for _, pattern := range cliOpts.Patterns {
			if pattern != "" {
				cfg.Patterns = append(cfg.Patterns, pattern)
			}
		}
		if err := sync.ValidatePatterns(cfg.Patterns); err != nil {
			return err
		}
	}

	if err := writeUserConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := getConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}
