package sync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest4ione/hackmud-cli/ci/util"
)

// Test exercises one-shot syncs. The helper must have the users `alice` and
// `bob`.
func Test(t *testing.T, helper *util.TestHelper) {
	t.Run("Overrides", func(t *testing.T) {
		testOverrides(t, helper)
	})
	t.Run("Clean", func(t *testing.T) {
		testClean(t, helper)
	})
	t.Run("Errors", func(t *testing.T) {
		testErrors(t, helper)
	})
}

func testOverrides(t *testing.T, helper *util.TestHelper) {
	require.NoError(t, helper.WriteScript("greet.js", "default"))
	require.NoError(t, helper.WriteScript("greet.alice.js", "for alice"))
	require.NoError(t, helper.WriteScript("lib/util.js", "util"))
	require.NoError(t, helper.WriteScript("README.md", "not a script"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Syncing twice should give the same result.
	for i := 0; i < 2; i++ {
		stdout, stderr, err := helper.Run(ctx, "sync")
		require.NoError(t, err, stderr)
		assert.Regexp(t, `^copied 4 scripts to 2 users in \d+ms\n$`, stdout)
		util.AssertNoErrorOrWarningLogs(t, stderr)

		alice, err := helper.InstalledScripts("alice")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"greet.js": "for alice",
			"util.js":  "util",
		}, alice)

		bob, err := helper.InstalledScripts("bob")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"greet.js": "default",
			"util.js":  "util",
		}, bob)
	}
}

func testClean(t *testing.T, helper *util.TestHelper) {
	stale := filepath.Join(helper.HackmudPath, "bob", "scripts", "stale.js")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, stderr, err := helper.Run(ctx, "sync", "--clean", "lib/*.js")
	require.NoError(t, err, stderr)
	assert.Regexp(t, `^cleaned \d+ scripts\ncopied 2 scripts to 2 users in \d+ms\n$`, stdout)

	bob, err := helper.InstalledScripts("bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"util.js": "util"}, bob)
}

func testErrors(t *testing.T, helper *util.TestHelper) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tests := []struct {
		name      string
		args      []string
		expStderr string
	}{
		{
			name:      "InvalidGlob",
			args:      []string{"sync", "src/[.js"},
			expStderr: `Failed to parse glob "src/[.js".`,
		},
		{
			name:      "MissingHackmudDirectory",
			args:      []string{"sync", "--hackmud-path", filepath.Join(helper.Root, "missing")},
			expStderr: "doesn't exist",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			stdout, stderr, err := helper.Run(ctx, test.args...)
			exitErr, ok := err.(*exec.ExitError)
			require.True(t, ok, "expected a non-zero exit, got %v", err)
			assert.Equal(t, 1, exitErr.ExitCode())
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, test.expStderr)
		})
	}
}

// TestWatch exercises `hackmud sync --watch`. The helper must have the user
// `alice`.
func TestWatch(t *testing.T, helper *util.TestHelper) {
	require.NoError(t, helper.WriteScript("greet.js", "before"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	watchCtx, stopWatch := context.WithCancel(ctx)
	lines, cmdErr, err := helper.Start(watchCtx, "sync", "--watch")
	require.NoError(t, err)
	defer func() {
		stopWatch()
		<-cmdErr
	}()

	require.NoError(t, util.WaitForOutput(ctx, lines, "copied 1 scripts to 1 users"))

	require.NoError(t, helper.WriteScript("greet.js", "after"))
	require.NoError(t, helper.WriteScript("nested/new.js", "new"))

	synced := util.TestWithRetry(ctx, func() bool {
		installed, err := helper.InstalledScripts("alice")
		return err == nil &&
			installed["greet.js"] == "after" &&
			installed["new.js"] == "new"
	})
	assert.True(t, synced, "changes were never synced")

	select {
	case err := <-cmdErr:
		t.Fatalf("hackmud sync --watch crashed: %s", err)
	default:
	}
}
