package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	oldVersion, oldDate, oldCommit := buildVersion, buildDate, buildCommit
	t.Cleanup(func() { buildVersion, buildDate, buildCommit = oldVersion, oldDate, oldCommit })

	buildVersion, buildDate, buildCommit = "v1.2.3", "", "abc123"

	var out bytes.Buffer
	PrintBuildData(&out)

	assert.Equal(t, "Build version: v1.2.3\nBuild date: N/A\nBuild commit: abc123\n", out.String())
}
