package sync

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quest4ione/hackmud-cli/cmd/util"
	"github.com/quest4ione/hackmud-cli/pkg/config"
	"github.com/quest4ione/hackmud-cli/pkg/errors"
	"github.com/quest4ione/hackmud-cli/pkg/fswatch"
	"github.com/quest4ione/hackmud-cli/pkg/sync"
)

// The interval to poll the filesystem for any changes that need to be synced.
const pollSeconds = 15

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	runSync                   = sync.Run
	watch                     = fswatch.Watch
	parseUserConfig           = config.ParseUserIfExists
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var opts sync.Options
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "sync [GLOB...]",
		Short: "Install scripts for every hackmud user",
		Long: "Copy the scripts matched by the given globs into the scripts " +
			"directory of every user registered in the hackmud directory.\n\n" +
			"A script named `name.user.js` is only installed for `user`, " +
			"and replaces `name.js` for that user.\n" +
			"When no globs are given, the patterns from the user config are " +
			"used, or every file below the current directory if there are none.",
		Run: func(cmd *cobra.Command, args []string) {
			hackmudPath, patterns, err := resolveTargets(cmd.Flags(), args)
			if err != nil {
				util.HandleFatalError(err)
			}

			opts.HackmudPath = hackmudPath
			opts.Patterns = patterns
			if err := run(opts, watchFiles); err != nil {
				util.HandleFatalError(err)
			}
		},
	}

	cmd.Flags().String(config.HackmudPathFlag, "",
		"The hackmud directory. Defaults to the game's data directory.")
	cmd.Flags().BoolVarP(&opts.Clean, "clean", "c", false,
		"Remove the files in each user's scripts directory before copying.")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false,
		"Keep running, and sync again whenever the scripts change.")
	return cmd
}

// resolveTargets decides which hackmud directory to sync to, and which globs
// to sync from.
func resolveTargets(flags *pflag.FlagSet, args []string) (string, []string, error) {
	userCfg, err := parseUserConfig()
	if err != nil {
		return "", nil, errors.WithContext(err, "read config")
	}

	hackmudPath, err := config.HackmudPath(flags, userCfg)
	if err != nil {
		return "", nil, err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = userCfg.Patterns
	}
	if len(patterns) == 0 {
		patterns = sync.DefaultPatterns
	}
	return hackmudPath, patterns, nil
}

func run(opts sync.Options, watchFiles bool) error {
	if err := syncOnce(opts); err != nil {
		return err
	}

	if !watchFiles {
		return nil
	}

	fileWatcher, err := watch(opts.Patterns)
	if err != nil {
		if !strings.Contains(errors.RootCause(err).Error(), "too many open files") {
			return errors.WithContext(err, "watch scripts")
		}

		log.Warnf("Too many directories to automatically watch for changes. "+
			"Polling for changes every %d seconds instead.", pollSeconds)

		// Disable the file watcher channel.
		fileWatcher = nil
	}

	ticker := time.NewTicker(pollSeconds * time.Second)
	defer ticker.Stop()
	watchLoop(opts, fileWatcher, ticker.C)
	return nil
}

// watchLoop syncs whenever the scripts change or `poll` fires. It returns once
// `fileWatcher` is closed.
func watchLoop(opts sync.Options, fileWatcher <-chan struct{}, poll <-chan time.Time) {
	for {
		select {
		case _, ok := <-fileWatcher:
			if !ok {
				return
			}
		case <-poll:
		}

		if err := syncOnce(opts); err != nil {
			log.WithError(err).Error("Failed to sync")
		}
	}
}

func syncOnce(opts sync.Options) error {
	res, err := runSync(opts)
	if err != nil {
		return friendlyError(err, opts)
	}

	if opts.Clean {
		fmt.Fprintf(stdout, "cleaned %d scripts\n", res.Cleaned)
	}
	fmt.Fprintf(stdout, "copied %d scripts to %d users in %dms\n",
		res.Copied, res.Users, res.Elapsed.Milliseconds())
	return nil
}

func friendlyError(err error, opts sync.Options) error {
	switch rootCause := errors.RootCause(err).(type) {
	case errors.InvalidPattern:
		return errors.NewFriendlyError("Failed to parse glob %q.", rootCause.Pattern)
	case errors.FileNotFound:
		return errors.NewFriendlyError(
			"The hackmud directory %q doesn't exist.\n\n"+
				"Use --%s or $%s to point to the game's data directory.",
			rootCause.Path, config.HackmudPathFlag, config.HackmudPathEnvKey)
	default:
		return errors.WithContext(err, fmt.Sprintf("sync %s", opts.HackmudPath))
	}
}
