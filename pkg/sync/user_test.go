package sync

import (
	"os"
	"testing"

	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

func TestDiscoverUsers(t *testing.T) {
	fs = afero.NewMemMapFs()
	for _, path := range []string{
		"/hackmud/bob.key",
		"/hackmud/alice.key",
		"/hackmud/alice/scripts/old.js",
		"/hackmud/settings.json",
		"/hackmud/.key",
		"/hackmud/\xff.key",
	} {
		require.NoError(t, afero.WriteFile(fs, path, nil, 0644))
	}
	require.NoError(t, fs.MkdirAll("/hackmud/dir.key", 0755))

	users, err := DiscoverUsers("/hackmud")
	assert.NoError(t, err)
	assert.Equal(t, []User{
		{Name: "alice", ScriptsPath: "/hackmud/alice/scripts"},
		{Name: "bob", ScriptsPath: "/hackmud/bob/scripts"},
	}, users)
}

func TestDiscoverUsersMissingDirectory(t *testing.T) {
	fs = afero.NewMemMapFs()

	users, err := DiscoverUsers("/hackmud")
	assert.Equal(t, errors.FileNotFound{Path: "/hackmud"}, err)
	assert.Empty(t, users)
}

func TestDiscoverUsersUnreadableDirectory(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/hackmud/alice.key", nil, 0644))
	fs = failingFs{Fs: mem, failOpen: "/hackmud"}

	users, err := DiscoverUsers("/hackmud")
	assert.Error(t, err)
	assert.Equal(t, errPermission, errors.RootCause(err))
	assert.Empty(t, users)
}

func TestDiscoverUsersUnreadableEntry(t *testing.T) {
	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/hackmud/alice.key", nil, 0644))
	require.NoError(t, afero.WriteFile(mem, "/hackmud/bob.key", nil, 0644))
	fs = failingFs{Fs: mem, failStat: "/hackmud/bob.key"}

	users, err := DiscoverUsers("/hackmud")
	assert.NoError(t, err)
	assert.Equal(t, []User{{Name: "alice", ScriptsPath: "/hackmud/alice/scripts"}}, users)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "/hackmud/bob.key", hook.LastEntry().Data["path"])
}

var errPermission = &os.PathError{Op: "open", Path: "mock", Err: os.ErrPermission}

// failingFs fails operations on specific paths.
type failingFs struct {
	afero.Fs
	failOpen   string
	failStat   string
	failRemove string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if name == f.failOpen {
		return nil, errPermission
	}
	return f.Fs.Open(name)
}

func (f failingFs) Stat(name string) (os.FileInfo, error) {
	if name == f.failStat {
		return nil, errPermission
	}
	return f.Fs.Stat(name)
}

func (f failingFs) Remove(name string) error {
	if name == f.failRemove {
		return errPermission
	}
	return f.Fs.Remove(name)
}
