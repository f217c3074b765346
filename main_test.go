package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindow(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("all wins over everything", func(t *testing.T) {
		w, err := buildWindow(true, 90, "2025-01-01", "2025-02-01", now)
		require.NoError(t, err)
		assert.True(t, w.Unbounded())
	})

	t.Run("explicit range", func(t *testing.T) {
		w, err := buildWindow(false, 90, "2025-01-01", "2025-02-01", now)
		require.NoError(t, err)
		assert.True(t, w.Contains(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)))
		assert.False(t, w.Contains(time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("start date only defaults end to today", func(t *testing.T) {
		w, err := buildWindow(false, 90, "2025-03-01", "", now)
		require.NoError(t, err)
		assert.True(t, w.Contains(now))
		assert.False(t, w.Contains(now.AddDate(0, 0, 1)))
	})

	t.Run("trailing days fallback", func(t *testing.T) {
		w, err := buildWindow(false, 7, "", "", now)
		require.NoError(t, err)
		assert.True(t, w.Contains(now.AddDate(0, 0, -7)))
		assert.False(t, w.Contains(now.AddDate(0, 0, -8)))
	})

	t.Run("invalid start date", func(t *testing.T) {
		_, err := buildWindow(false, 90, "01/03/2025", "", now)
		assert.Error(t, err)
	})
}
