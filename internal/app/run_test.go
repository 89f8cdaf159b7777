// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCameraUnlessQuitStarts(t *testing.T) {
	cam := &flakyCamera{failures: 1}
	started, err := startCameraUnlessQuit(context.Background(), cam, 3, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, 2, cam.starts)
}

func TestStartCameraUnlessQuitReportsFailure(t *testing.T) {
	cam := &flakyCamera{failures: 10}
	started, err := startCameraUnlessQuit(context.Background(), cam, 2, time.Millisecond)
	assert.False(t, started)
	assert.ErrorContains(t, err, "after 2 attempts")
}

func TestStartCameraUnlessQuitDuringBackoffIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cam := &flakyCamera{failures: 10}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	started, err := startCameraUnlessQuit(ctx, cam, 3, time.Hour)
	assert.False(t, started)
	assert.NoError(t, err)
	assert.Equal(t, 1, cam.starts)
}

// The loop and its tests must build without OpenCV; the gocv backend is
// injected from cmd/monitor.
func TestAppDoesNotImportCameraBackend(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.False(t, strings.HasPrefix(path, "gocv.io/"), "%s imports %s", name, path)
			assert.False(t, strings.HasSuffix(path, "/internal/camera"), "%s imports %s", name, path)
		}
	}
}
