// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivePathLayout(t *testing.T) {
	a := Archive{Root: "/srv/motions", Prefix: "ultrasonic"}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 999, time.UTC)

	assert.Equal(t, "/srv/motions/2026-01-02", a.DateDir(ts))
	assert.Equal(t, "/srv/motions/2026-01-02/ultrasonic_20260102_030405.jpg", a.PathFor(ts))
}

func TestEnsureDateDirIsIdempotent(t *testing.T) {
	a := Archive{Root: t.TempDir(), Prefix: "ultrasonic"}
	ts := time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC)

	for i := 0; i < 3; i++ {
		dir, err := a.EnsureDateDir(ts)
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureArchiveRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b", "Ultrasonic_Motions")

	require.NoError(t, EnsureArchiveRoot(root))
	require.NoError(t, EnsureArchiveRoot(root))

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestEnsureArchiveRootFailsUnderFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0o644))

	err := EnsureArchiveRoot(filepath.Join(parent, "root"))
	assert.ErrorIs(t, err, ErrFilesystem)
}
