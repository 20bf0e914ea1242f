package util

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quest4ione/hackmud-cli/pkg/config"
	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

// TestHelper runs the hackmud binary against a scratch hackmud directory and
// scripts checkout.
type TestHelper struct {
	Root        string
	HackmudPath string
	SourcePath  string
}

// NewTestHelper creates a hackmud directory with the given users, and an
// empty scripts checkout, under `root`.
func NewTestHelper(root string, users ...string) (*TestHelper, error) {
	helper := &TestHelper{
		Root:        root,
		HackmudPath: filepath.Join(root, "hackmud"),
		SourcePath:  filepath.Join(root, "src"),
	}

	if err := os.MkdirAll(helper.SourcePath, 0755); err != nil {
		return nil, errors.WithContext(err, "make source directory")
	}

	if err := os.MkdirAll(helper.HackmudPath, 0755); err != nil {
		return nil, errors.WithContext(err, "make hackmud directory")
	}

	for _, user := range users {
		if err := helper.AddUser(user); err != nil {
			return nil, errors.WithContext(err, fmt.Sprintf("add user %s", user))
		}
	}
	return helper, nil
}

// AddUser registers a user in the hackmud directory.
func (helper *TestHelper) AddUser(name string) error {
	scriptsDir := filepath.Join(helper.HackmudPath, name, "scripts")
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return errors.WithContext(err, "make scripts directory")
	}

	keyPath := filepath.Join(helper.HackmudPath, name+".key")
	return os.WriteFile(keyPath, nil, 0644)
}

// WriteScript writes a script into the scripts checkout.
func (helper *TestHelper) WriteScript(path, contents string) error {
	path = filepath.Join(helper.SourcePath, path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "make parent directory")
	}
	return os.WriteFile(path, []byte(contents), 0644)
}

// InstalledScripts returns the contents of the user's scripts directory,
// keyed by file name.
func (helper *TestHelper) InstalledScripts(user string) (map[string]string, error) {
	dir := filepath.Join(helper.HackmudPath, user, "scripts")
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithContext(err, "read scripts directory")
	}

	installed := map[string]string{}
	for _, f := range files {
		contents, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, errors.WithContext(err, "read script")
		}
		installed[f.Name()] = string(contents)
	}
	return installed, nil
}

func (helper *TestHelper) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "hackmud", args...)
	cmd.Dir = helper.SourcePath

	// Point $HOME at the scratch directory so that the developer's own user
	// config doesn't leak into the tests.
	cmd.Env = append(os.Environ(),
		config.HackmudPathEnvKey+"="+helper.HackmudPath,
		"HOME="+helper.Root)
	return cmd
}

// Run runs the given hackmud command, and returns its stdout and stderr.
func (helper *TestHelper) Run(ctx context.Context, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := helper.command(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Start starts the given hackmud command. It returns a channel of the lines
// written to stdout, and a channel for obtaining any errors after starting the
// command. The command is stopped when `ctx` is cancelled.
func (helper *TestHelper) Start(ctx context.Context, args ...string) (
	chan string, chan error, error) {

	cmd := helper.command(context.Background(), args...)

	stdoutReader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}

	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdoutReader)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	errChan := make(chan error)
	go func() {
		waitErr := make(chan error)
		go func() {
			waitErr <- cmd.Wait()
			close(waitErr)
		}()

		defer close(errChan)
		select {
		case <-ctx.Done():
			if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
				errChan <- errors.WithContext(err, "kill")
				return
			}
			<-waitErr
		case err := <-waitErr:
			errChan <- fmt.Errorf("crashed (%s): stderr: %s", err, stderr)
		}
	}()
	return lines, errChan, nil
}

// WaitForOutput blocks until a line containing `expOutput` is read from
// `lines`, or `ctx` has expired.
func WaitForOutput(ctx context.Context, lines <-chan string, expOutput string) error {
	for {
		select {
		case <-ctx.Done():
			return errors.New("cancelled while waiting for %q", expOutput)
		case line, ok := <-lines:
			if !ok {
				return errors.New("output closed while waiting for %q", expOutput)
			}
			if strings.Contains(line, expOutput) {
				return nil
			}
		}
	}
}

// TestWithRetry runs `test` until it succeeds or `ctx` expires, backing off
// exponentially between attempts.
func TestWithRetry(ctx context.Context, test func() bool) bool {
	maxSleepTime := 5 * time.Second
	sleepTime := 100 * time.Millisecond
	for {
		if test() {
			return true
		}

		select {
		case <-ctx.Done():
			return test()
		case <-time.After(sleepTime):
			sleepTime *= 2
			if sleepTime > maxSleepTime {
				sleepTime = maxSleepTime
			}
		}
	}
}

// AssertNoErrorOrWarningLogs fails the test if `log` contains any logs at
// warning level or above.
func AssertNoErrorOrWarningLogs(t *testing.T, log string) {
	for _, line := range strings.Split(log, "\n") {
		assert.NotContains(t, line, "level=warning", "unexpected warning log")
		assert.NotContains(t, line, "level=error", "unexpected error log")
	}
}
