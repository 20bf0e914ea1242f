package sync

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

// Mocked out for unit testing.
var (
	fs    = afero.NewOsFs()
	clock = clockwork.NewRealClock()
)

// Options configures a sync.
type Options struct {
	// HackmudPath is the directory containing the users' key files and
	// script directories.
	HackmudPath string

	// Patterns are the globs used to find script source files.
	Patterns []string

	// Clean removes the files already in each user's scripts directory
	// before copying.
	Clean bool
}

// Result summarizes a sync.
type Result struct {
	// Cleaned is the number of files removed from the scripts directories.
	Cleaned int

	// Copied is the number of scripts installed, summed over all users.
	Copied int

	// Users is the number of users scripts were installed for.
	Users int

	Elapsed time.Duration
}

// Run installs the scripts matched by `opts.Patterns` for every user in
// `opts.HackmudPath`. Errors while discovering scripts or users abort the sync
// before any files are touched. Errors for individual files are logged and
// skipped.
func Run(opts Options) (Result, error) {
	start := clock.Now()

	scripts, err := DiscoverScripts(opts.Patterns)
	if err != nil {
		return Result{}, errors.WithContext(err, "discover scripts")
	}

	users, err := DiscoverUsers(opts.HackmudPath)
	if err != nil {
		return Result{}, errors.WithContext(err, "discover users")
	}

	var res Result
	for _, user := range users {
		if opts.Clean {
			res.Cleaned += clean(user)
		}

		for _, script := range Resolve(scripts, user) {
			dst := filepath.Join(user.ScriptsPath, script.Name+ScriptExt)
			if err := copyFile(script.Path, dst); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"user":   user.Name,
					"script": script.Name,
				}).Error("Couldn't copy script, skipping")
				continue
			}
			res.Copied++
		}
	}

	res.Users = len(users)
	res.Elapsed = clock.Now().Sub(start)
	return res, nil
}

// Resolve returns the scripts that should be installed for `user`, at most one
// per name, in the order they were first seen.
// A script addressed to the user always wins over one addressed to everyone,
// and later scripts for everyone never replace earlier ones with the same name.
func Resolve(scripts []Script, user User) []Script {
	var order []string
	byName := map[string]Script{}
	set := func(script Script) {
		if _, ok := byName[script.Name]; !ok {
			order = append(order, script.Name)
		}
		byName[script.Name] = script
	}

	for _, script := range scripts {
		if script.UserOverride != "" {
			if script.UserOverride == user.Name {
				set(script)
			}
			continue
		}

		if _, ok := byName[script.Name]; !ok {
			set(script)
		}
	}

	resolved := make([]Script, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, byName[name])
	}
	return resolved
}

// clean removes the files in the user's scripts directory, and returns how
// many were removed.
func clean(user User) (removed int) {
	names, err := readDirNames(user.ScriptsPath)
	if err != nil {
		log.WithError(err).WithField("user", user.Name).Warn(
			"Couldn't clean scripts directory")
		return 0
	}

	for _, name := range names {
		path := filepath.Join(user.ScriptsPath, name)
		fi, err := lstat(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("Couldn't clean file")
			continue
		}

		if fi.IsDir() {
			log.WithField("path", path).Debug("Not cleaning directory")
			continue
		}

		if err := fs.Remove(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("Couldn't clean file")
			continue
		}
		removed++
	}
	return removed
}

// copyFile copies the contents and mode of `src` to `dst`, replacing `dst` if
// it exists.
func copyFile(src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return errors.WithContext(err, "stat source")
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "copy")
	}

	if err := out.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	// OpenFile only applies the mode to new files.
	if err := fs.Chmod(dst, fi.Mode().Perm()); err != nil {
		return errors.WithContext(err, "chmod destination")
	}
	return nil
}
