package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "grant-role", "import-course"}, names)
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"grant-role", "a@example.com", "superuser"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestImportCourseRejectsBadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Go\nchapters: []\n"), 0o644))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import-course", path})

	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}
