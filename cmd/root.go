package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/quest4ione/hackmud-cli/cmd/config"
	syncCmd "github.com/quest4ione/hackmud-cli/cmd/sync"
	"github.com/quest4ione/hackmud-cli/cmd/util"
	versionCmd "github.com/quest4ione/hackmud-cli/cmd/version"
	"github.com/quest4ione/hackmud-cli/pkg/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "HMS_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	if err := newRootCommand().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "hackmud",
		Short:        "Tools for developing hackmud scripts",
		Version:      version.Version,
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("hackmud version {{.Version}}\n")
	rootCmd.AddCommand(
		configCmd.New(),
		syncCmd.New(),
		versionCmd.New(),
	)
	return rootCmd
}
