package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	assert.Empty(t, Dedupe([]int{}))
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", "b", "a"}))
}

func TestPathHelpers(t *testing.T) {
	assert.True(t, IsWorkspacePath("/Workspace/Users/u/run.py"))
	assert.False(t, IsWorkspacePath("../src/run.py"))
	assert.True(t, HasVariableRef("${workspace.file_path}/run.py"))
	assert.Equal(t, "run", Stem("/Workspace/Users/u/run.py"))
	assert.Equal(t, "notebook", Stem("/Workspace/Users/u/notebook"))
	assert.Equal(t, "", Stem(""))
}
