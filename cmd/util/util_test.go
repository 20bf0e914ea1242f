package util

import (
	"bytes"
	"testing"

	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest4ione/hackmud-cli/pkg/errors"
)

func mockExit(t *testing.T) (*bytes.Buffer, *int) {
	oldStderr, oldExit := stderr, exit
	t.Cleanup(func() { stderr, exit = oldStderr, oldExit })

	var out bytes.Buffer
	exitCode := -1
	stderr = &out
	exit = func(code int) { exitCode = code }
	return &out, &exitCode
}

func TestHandleFatalError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expStderr string
		expLogged bool
	}{
		{
			name:      "Friendly",
			err:       errors.NewFriendlyError("The hackmud directory %q doesn't exist.", "/hackmud"),
			expStderr: "The hackmud directory \"/hackmud\" doesn't exist.\n",
		},
		{
			name:      "WrappedFriendly",
			err:       errors.WithContext(errors.NewFriendlyError("friendly"), "context"),
			expStderr: "friendly\n",
		},
		{
			name:      "Unexpected",
			err:       errors.WithContext(errors.New("boom"), "sync"),
			expLogged: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			hook := logrusTest.NewGlobal()
			defer hook.Reset()
			out, exitCode := mockExit(t)

			HandleFatalError(test.err)
			assert.Equal(t, 1, *exitCode)
			assert.Equal(t, test.expStderr, out.String())

			if test.expLogged {
				require.Len(t, hook.Entries, 1)
				assert.Equal(t, test.err, hook.LastEntry().Data["error"])
			} else {
				assert.Empty(t, hook.Entries)
			}
		})
	}
}

func TestHandlePanic(t *testing.T) {
	hook := logrusTest.NewGlobal()
	defer hook.Reset()
	_, exitCode := mockExit(t)

	func() {
		defer HandlePanic()
		panic("oops")
	}()

	assert.Equal(t, 1, *exitCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Unexpected panic: oops", hook.LastEntry().Message)
}
