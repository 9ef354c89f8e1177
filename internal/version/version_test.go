package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit = "v1.2.3", "unknown"
	assert.Equal(t, "blogbuilder v1.2.3", String())

	GitCommit, BuildTime = "abc123", "2024-01-01"
	assert.Equal(t, "blogbuilder v1.2.3 (abc123, built 2024-01-01)", String())
}
