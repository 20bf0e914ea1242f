package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quest4ione/hackmud-cli/pkg/version"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	stdout = &out

	cmd := New()
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
	assert.Equal(t, "hackmud version "+version.Version+"\n", out.String())
}
