package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

func mockPlatform(t *testing.T, os string, env map[string]string, home string) {
	oldGoos, oldGetenv, oldHomeDir := goos, getenv, homeDir
	t.Cleanup(func() {
		goos, getenv, homeDir = oldGoos, oldGetenv, oldHomeDir
	})

	goos = os
	getenv = func(key string) string { return env[key] }
	homeDir = func() (string, error) {
		if home == "" {
			return "", errors.New("no home")
		}
		return home, nil
	}
}

func TestDefaultHackmudPath(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		home     string
		expPath  string
		expError bool
	}{
		{
			name:    "Linux",
			goos:    "linux",
			home:    "/home/alice",
			expPath: "/home/alice/.config/hackmud",
		},
		{
			name:    "Darwin",
			goos:    "darwin",
			home:    "/Users/alice",
			expPath: "/Users/alice/.config/hackmud",
		},
		{
			name:     "NoHome",
			goos:     "linux",
			expError: true,
		},
		{
			name:    "Windows",
			goos:    "windows",
			env:     map[string]string{"APPDATA": "/appdata"},
			expPath: "/appdata/hackmud",
		},
		{
			name:     "WindowsNoAppData",
			goos:     "windows",
			home:     "/home/alice",
			expError: true,
		},
		{
			name:     "Unsupported",
			goos:     "plan9",
			home:     "/home/alice",
			expError: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			mockPlatform(t, test.goos, test.env, test.home)

			path, err := DefaultHackmudPath()
			if test.expError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expPath, path)
		})
	}
}

func TestHackmudPath(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     string
		home    string
		userCfg User
		expPath string
	}{
		{
			name:    "Default",
			home:    "/home/alice",
			expPath: "/home/alice/.config/hackmud",
		},
		{
			name:    "EnvOverridesDefault",
			env:     "/env/hackmud",
			home:    "/home/alice",
			expPath: "/env/hackmud",
		},
		{
			name:    "FlagOverridesEnv",
			args:    []string{"--hackmud-path", "/flag/hackmud"},
			env:     "/env/hackmud",
			home:    "/home/alice",
			expPath: "/flag/hackmud",
		},
		{
			name:    "FlagWithoutDefault",
			args:    []string{"--hackmud-path=/flag/hackmud"},
			expPath: "/flag/hackmud",
		},
		{
			name:    "UserConfigOverridesDefault",
			home:    "/home/alice",
			userCfg: User{HackmudPath: "/config/hackmud"},
			expPath: "/config/hackmud",
		},
		{
			name:    "EnvOverridesUserConfig",
			env:     "/env/hackmud",
			userCfg: User{HackmudPath: "/config/hackmud"},
			expPath: "/env/hackmud",
		},
		{
			name:    "ExpandHome",
			env:     "~/games/hackmud",
			expPath: "/home/bob/games/hackmud",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			mockPlatform(t, "linux", nil, test.home)
			t.Setenv(HackmudPathEnvKey, test.env)

			oldExpand := homedirExpand
			defer func() { homedirExpand = oldExpand }()
			homedirExpand = func(path string) (string, error) {
				if len(path) > 0 && path[0] == '~' {
					return "/home/bob" + path[1:], nil
				}
				return path, nil
			}

			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.String(HackmudPathFlag, "", "")
			require.NoError(t, flags.Parse(test.args))

			path, err := HackmudPath(flags, test.userCfg)
			assert.NoError(t, err)
			assert.Equal(t, test.expPath, path)
		})
	}
}

func TestHackmudPathUnresolvable(t *testing.T) {
	mockPlatform(t, "linux", nil, "")
	t.Setenv(HackmudPathEnvKey, "")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(HackmudPathFlag, "", "")

	_, err := HackmudPath(flags, User{})
	msg, ok := errors.GetFriendlyMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, HackmudPathEnvKey)
}
