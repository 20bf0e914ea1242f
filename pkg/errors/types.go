package errors

import (
	"fmt"
)

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// InvalidPattern represents a glob pattern that can't be parsed.
type InvalidPattern struct {
	Pattern string
}

func (err InvalidPattern) Error() string {
	return fmt.Sprintf("invalid glob pattern %q", err.Pattern)
}
