package apperrors

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		fatal    bool
	}{
		{"config", Config("path_replacement", "bad regex"), ErrConfig, true},
		{"not found", ArtifactNotFound("/Workspace/a.py", "no match"), ErrArtifactNotFound, false},
		{"unknown variant", UnknownVariant("t1", "foo_task"), ErrUnknownTaskVariant, false},
		{"permission", PermissionDenied("workspace.export", "/a", nil), ErrPermissionDenied, false},
		{"scope", LibraryScopeMismatch("t1", "Default", 0), ErrLibraryScopeMismatch, false},
		{"output", OutputUnwritable("write", "/out", fs.ErrPermission), ErrOutputUnwritable, true},
		{"cancelled", Cancelled(context.Canceled), ErrCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	denied := PermissionDenied("workspace.export", "/Workspace/a.py", nil)
	err := ArtifactNotFoundCause("/Workspace/a.py", denied)

	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "/Workspace/a.py", appErr.Path)
}

func TestConfigMessage(t *testing.T) {
	assert.Equal(t, "path_replacement: bad", Config("path_replacement", "bad").Error())
	assert.Equal(t, "bad", Config("", "bad").Error())
}
