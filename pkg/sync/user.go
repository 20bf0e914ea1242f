package sync

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

// KeyExt is the extension of the marker files that register a user.
const KeyExt = ".key"

// A User is a hackmud user that scripts get installed for.
type User struct {
	Name string

	// ScriptsPath is the directory the game loads the user's scripts from.
	ScriptsPath string
}

// DiscoverUsers returns the users registered in the hackmud directory. Every
// `<name>.key` file in `hackmudPath` registers the user `<name>`.
func DiscoverUsers(hackmudPath string) ([]User, error) {
	names, err := readDirNames(hackmudPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: hackmudPath}
		}
		return nil, errors.WithContext(err, "read hackmud directory")
	}

	var users []User
	for _, name := range names {
		path := filepath.Join(hackmudPath, name)
		fi, err := lstat(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn(
				"Can't read file in hackmud directory, skipping")
			continue
		}

		if !fi.Mode().IsRegular() || filepath.Ext(name) != KeyExt {
			continue
		}

		userName := strings.TrimSuffix(name, KeyExt)
		if userName == "" || !utf8.ValidString(userName) {
			continue
		}

		users = append(users, User{
			Name:        userName,
			ScriptsPath: filepath.Join(hackmudPath, userName, "scripts"),
		})
	}
	return users, nil
}

func readDirNames(dir string) ([]string, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// lstat doesn't follow symlinks if the filesystem supports it.
func lstat(path string) (os.FileInfo, error) {
	if lstater, ok := fs.(afero.Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(path)
		return fi, err
	}
	return fs.Stat(path)
}
