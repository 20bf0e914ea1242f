package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

// ScriptExt is the extension of script source files.
const ScriptExt = ".js"

// DefaultPatterns matches every file below the working directory.
var DefaultPatterns = []string{"**/*"}

// A Script is a script source file on the user's machine.
type Script struct {
	// Name is the name the script is installed under.
	Name string

	// Path is the path to the source file.
	Path string

	// UserOverride is the only user that should receive this script. If it's
	// empty, the script is installed for every user.
	UserOverride string
}

// ParseScriptName splits a script file name into the script name and the user
// it's addressed to. For example, `greet.alice.js` is the `greet` script for
// the user `alice`, and `greet.js` is the `greet` script for everyone.
// It returns false if the file isn't a script.
func ParseScriptName(fileName string) (name, userOverride string, ok bool) {
	ext := filepath.Ext(fileName)
	if ext != ScriptExt {
		return "", "", false
	}

	stem := strings.TrimSuffix(fileName, ext)
	if stem == "" || !utf8.ValidString(stem) {
		return "", "", false
	}

	if i := strings.LastIndex(stem, "."); i >= 0 {
		name, userOverride = stem[:i], stem[i+1:]
	} else {
		name = stem
	}

	if name == "" {
		return "", "", false
	}
	return name, userOverride, true
}

// ValidatePatterns checks that every pattern is a valid glob.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return errors.InvalidPattern{Pattern: pattern}
		}
	}
	return nil
}

// DiscoverScripts expands `patterns` and returns the scripts they match, in
// order. Paths that can't be read are skipped.
func DiscoverScripts(patterns []string) ([]Script, error) {
	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}

	var scripts []Script
	for _, pattern := range patterns {
		paths, err := glob(pattern)
		if err != nil {
			return nil, errors.WithContext(err, fmt.Sprintf("expand %q", pattern))
		}

		for _, path := range paths {
			name, userOverride, ok := ParseScriptName(filepath.Base(path))
			if !ok {
				continue
			}

			scripts = append(scripts, Script{
				Name:         name,
				Path:         path,
				UserOverride: userOverride,
			})
		}
	}
	return scripts, nil
}

// GlobBase returns the directory that must be walked to find the matches of
// `pattern`, and the cleaned pattern in slash form.
func GlobBase(pattern string) (base, cleaned string) {
	cleaned = filepath.ToSlash(filepath.Clean(pattern))
	base, _ = doublestar.SplitPattern(cleaned)
	return filepath.FromSlash(base), cleaned
}

// glob returns the regular files matching `pattern`. The pattern must already
// be valid.
func glob(pattern string) (matches []string, err error) {
	base, cleaned := GlobBase(pattern)

	// Without `**`, there's no point descending deeper than the pattern.
	maxDepth := -1
	if !strings.Contains(cleaned, "**") {
		maxDepth = strings.Count(cleaned, "/")
	}

	err = afero.Walk(fs, base, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if path == base && os.IsNotExist(err) {
				return nil
			}
			log.WithError(err).WithField("path", path).Warn("Can't read path, skipping")
			return nil
		}

		slashPath := filepath.ToSlash(path)
		if fi.IsDir() {
			if path != base && maxDepth >= 0 && strings.Count(slashPath, "/") >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if doublestar.MatchUnvalidated(cleaned, slashPath) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}
