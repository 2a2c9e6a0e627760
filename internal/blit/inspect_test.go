package blit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blit-migrate/internal/blit"
	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/testutil"
)

func TestInspect_VersionOneProject(t *testing.T) {
	h := newHarness(t, nil)
	p := testutil.TwoCelProject()
	p.SkipAssets = []string{"b"}
	testutil.WriteProject(t, h.src, p)

	info, err := h.migrator.Inspect(h.src)
	require.NoError(t, err)

	assert.Equal(t, &blit.ProjectInfo{
		Path:            h.src,
		SequenceVersion: "1",
		PaletteVersion:  "1",
		Name:            "bounce",
		Width:           64,
		Height:          48,
		FPS:             24,
		SeqLength:       4,
		CelCount:        2,
		FrameCount:      1,
		PlaneCount:      1,
		MissingAssets:   []string{"b.png"},
	}, info)
}

func TestInspect_MigratedProject(t *testing.T) {
	h := newHarness(t, nil)
	testutil.WriteProject(t, h.src, testutil.TwoCelProject())
	_, err := h.migrate(t, blit.MigrateOptions{})
	require.NoError(t, err)

	info, err := h.migrator.Inspect(h.dst)
	require.NoError(t, err)

	assert.Equal(t, "2", info.SequenceVersion)
	assert.Equal(t, "2", info.PaletteVersion)
	assert.Equal(t, 2, info.CelCount)
	assert.Equal(t, 1, info.FrameCount)
	assert.Empty(t, info.MissingAssets)
}

func TestInspect_Errors(t *testing.T) {
	t.Run("not a directory", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.migrator.Inspect(filepath.Join(h.root, "nothing"))
		assert.True(t, mErrors.Is(err, mErrors.ErrInvalidSourcePath), "got %v", err)
	})

	t.Run("unknown version", func(t *testing.T) {
		h := newHarness(t, nil)
		p := testutil.TwoCelProject()
		p.Version = "9"
		testutil.WriteProject(t, h.src, p)

		_, err := h.migrator.Inspect(h.src)
		assert.True(t, mErrors.Is(err, mErrors.ErrUnsupportedVersion), "got %v", err)
	})

	t.Run("inspect does not journal", func(t *testing.T) {
		h := newHarness(t, nil)
		testutil.WriteProject(t, h.src, testutil.TwoCelProject())
		_, err := h.migrator.Inspect(h.src)
		require.NoError(t, err)

		runs, err := h.migrator.History(0)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}
