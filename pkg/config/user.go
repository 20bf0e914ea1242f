package config

import (
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

const (
	// UserConfigPath is the default path to the user config.
	UserConfigPath = "~/.hackmud-cli.yaml"

	// InitialUserConfigVersion is the first version of the user config.
	// Config files that do not specify a version will default to this
	// version.
	InitialUserConfigVersion = "v1alpha1"

	// SupportedUserConfigVersion is the user config version understood by
	// this binary.
	SupportedUserConfigVersion = "v1alpha1"
)

// User contains the settings that apply to every sync run by the user.
type User struct {
	Version string `json:"version,omitempty"`

	// HackmudPath is used when neither --hackmud-path nor $HMS_HACKMUD_PATH
	// is set.
	HackmudPath string `json:"hackmudPath,omitempty"`

	// Patterns are the globs synced when none are passed on the command
	// line.
	Patterns []string `json:"patterns,omitempty"`
}

func (u User) getVersion() string {
	return u.Version
}

// ParseUser parses the user config stored in the default path. If the file
// doesn't exist, an errors.FileNotFound is returned.
func ParseUser() (User, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return User{}, errors.WithContext(err, "expand config path")
	}

	config := User{Version: InitialUserConfigVersion}
	if err := parseConfig(path, &config, SupportedUserConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return User{}, err
		}
		return User{}, errors.WithContext(err, "parse")
	}

	if config.HackmudPath != "" {
		config.HackmudPath, err = homedirExpand(config.HackmudPath)
		if err != nil {
			return User{}, errors.WithContext(err, "expand hackmud path")
		}

		// Evaluate relative paths relative to the config path.
		if !filepath.IsAbs(config.HackmudPath) {
			config.HackmudPath = filepath.Join(filepath.Dir(path), config.HackmudPath)
		}
	}
	return config, nil
}

// ParseUserIfExists is like ParseUser, but returns an empty config if the
// file doesn't exist.
func ParseUserIfExists() (User, error) {
	cfg, err := ParseUser()
	if _, ok := err.(errors.FileNotFound); ok {
		return User{Version: InitialUserConfigVersion}, nil
	}
	return cfg, err
}

// WriteUser writes the given user config to disk.
func WriteUser(cfg User) error {
	cfg.Version = SupportedUserConfigVersion
	path, err := GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetUserConfigPath returns the path to the user config. This path is
// expanded, so it can be directly passed to file operations.
func GetUserConfigPath() (string, error) {
	return homedirExpand(UserConfigPath)
}
