package fswatch

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestGetPathsToWatch(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		files    []string
		patterns []string
		expPaths []string
	}{
		{
			name:     "Recursive",
			dirs:     []string{"/src/lib", "/src/lib/deep", "/other"},
			files:    []string{"/src/greet.js", "/src/lib/deep/util.js", "/other/x.js"},
			patterns: []string{"/src/**/*.js"},
			expPaths: []string{"/src", "/src/lib", "/src/lib/deep"},
		},
		{
			name:     "MultiplePatterns",
			dirs:     []string{"/src/lib", "/other"},
			patterns: []string{"/src/*.js", "/other/*.js", "/src/lib/*.js"},
			expPaths: []string{"/src", "/src/lib", "/other"},
		},
		{
			name:     "IgnoredDirectories",
			dirs:     []string{"/src/.git/objects", "/src/node_modules/express", "/src/app"},
			patterns: []string{"/src/**/*.js"},
			expPaths: []string{"/src", "/src/app"},
		},
		{
			name:     "MissingBase",
			dirs:     []string{"/src"},
			patterns: []string{"/missing/*.js"},
		},
	}

	for _, test := range tests {
		fs = afero.NewMemMapFs()
		for _, dir := range test.dirs {
			assert.NoError(t, fs.MkdirAll(dir, 0755))
		}
		for _, file := range test.files {
			assert.NoError(t, afero.WriteFile(fs, file, []byte("testfile"), 0644))
		}

		paths, err := getPathsToWatch(test.patterns)
		assert.NoError(t, err, test.name)
		assert.Equal(t, test.expPaths, paths, test.name)
	}
}

func TestCombineUpdates(t *testing.T) {
	t.Parallel()

	updates := make(chan fsnotify.Event, 1024)
	addEvents := func(num int) {
		for i := 0; i < num; i++ {
			updates <- fsnotify.Event{}
		}
	}

	// Seed with events.
	numUpdates := 100
	addEvents(numUpdates)
	combined := combineUpdates(updates, make(chan error))

	// Assert that the events are being combined.
	numCombined := countEvents(combined)
	assert.True(t, numCombined < numUpdates,
		"expected less combined events (%d) than %d", numCombined, numUpdates)

	// Add more events.
	addEvents(100)
	<-combined
}

func countEvents(c chan struct{}) (n int) {
	// Block until the first event.
	<-c
	n++

	// Count the number of events until there hasn't been any new events in 500
	// milliseconds.
	for {
		select {
		case <-c:
			n++
		case <-time.After(500 * time.Millisecond):
			return n
		}
	}
}
