package config

import (
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

const (
	// HackmudPathFlag is the name of the flag that sets the hackmud
	// directory.
	HackmudPathFlag = "hackmud-path"

	// HackmudPathEnvKey is the environment variable that sets the hackmud
	// directory when the flag isn't passed.
	HackmudPathEnvKey = "HMS_HACKMUD_PATH"
)

// Mocked out for unit testing.
var (
	goos          = runtime.GOOS
	getenv        = os.Getenv
	homeDir       = homedir.Dir
	homedirExpand = homedir.Expand
)

// DefaultHackmudPath returns the directory the game keeps its user data in on
// this platform.
func DefaultHackmudPath() (string, error) {
	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", errors.New("$APPDATA is not set")
		}
		return filepath.Join(appData, "hackmud"), nil
	case "plan9", "js", "wasip1":
		return "", errors.New("no default hackmud directory on %s", goos)
	default:
		home, err := homeDir()
		if err != nil {
			return "", errors.WithContext(err, "get home directory")
		}
		return filepath.Join(home, ".config", "hackmud"), nil
	}
}

// HackmudPath resolves the hackmud directory. An explicitly passed
// --hackmud-path wins over $HMS_HACKMUD_PATH, which wins over the user
// config, which wins over the platform default.
func HackmudPath(flags *pflag.FlagSet, userCfg User) (string, error) {
	v := viper.New()
	if flag := flags.Lookup(HackmudPathFlag); flag != nil {
		if err := v.BindPFlag(HackmudPathFlag, flag); err != nil {
			return "", errors.WithContext(err, "bind flag")
		}
	}
	if err := v.BindEnv(HackmudPathFlag, HackmudPathEnvKey); err != nil {
		return "", errors.WithContext(err, "bind env")
	}

	defaultPath, defaultErr := DefaultHackmudPath()
	switch {
	case userCfg.HackmudPath != "":
		v.SetDefault(HackmudPathFlag, userCfg.HackmudPath)
	case defaultErr == nil:
		v.SetDefault(HackmudPathFlag, defaultPath)
	default:
		log.WithError(defaultErr).Debug("No default hackmud directory")
	}

	path := v.GetString(HackmudPathFlag)
	if path == "" {
		return "", errors.NewFriendlyError("Couldn't find the hackmud directory (%s).\n"+
			"Pass --%s or set the $%s environment variable.",
			defaultErr, HackmudPathFlag, HackmudPathEnvKey)
	}

	expanded, err := homedirExpand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand hackmud path")
	}
	return expanded, nil
}
