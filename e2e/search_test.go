//go:build e2e && unix

package main

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTypingShowsResults(t *testing.T) {
	t.Parallel()
	omdb := newFakeOMDb(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()
	defer tf.DumpTailOnFail(t, "typing", 8192)

	require.NoError(t, tf.StartApp(omdb.URL))
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.NoError(t, tf.Type("batman", 30*time.Millisecond))

	require.True(t, tf.OutputContainsPlain("Batman Begins", 3*time.Second), "Should render the first result")
	require.True(t, tf.SeePlain("Batman Returns"), "Should render the second result")
	require.True(t, tf.SeePlain("2 results"), "Should summarise the result count")

	// rapid typing collapses into a single request for the final term
	require.Equal(t, []string{"batman"}, omdb.Terms())
}

func TestNotFoundShowsError(t *testing.T) {
	t.Parallel()
	omdb := newFakeOMDb(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()
	defer tf.DumpTailOnFail(t, "not-found", 8192)

	require.NoError(t, tf.StartApp(omdb.URL))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("zzzz", 20*time.Millisecond))
	require.True(t, tf.OutputContainsPlain("Movie not found!", 3*time.Second), "Should show the API error text")
}

func TestEnterSearchesImmediately(t *testing.T) {
	t.Parallel()
	omdb := newFakeOMDb(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()
	defer tf.DumpTailOnFail(t, "enter", 8192)

	require.NoError(t, tf.StartApp(omdb.URL))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("heat", 10*time.Millisecond))
	require.NoError(t, tf.Enter())
	require.True(t, tf.OutputContainsPlain("1 results", 3*time.Second))
	require.Contains(t, omdb.Terms(), "heat")
}

func TestClearingResetsResults(t *testing.T) {
	t.Parallel()
	omdb := newFakeOMDb(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()
	defer tf.DumpTailOnFail(t, "clear", 8192)

	require.NoError(t, tf.StartApp(omdb.URL))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("heat", 20*time.Millisecond))
	require.True(t, tf.OutputContainsPlain("1 results", 3*time.Second))

	require.NoError(t, tf.Clear(len("heat")))
	cleared := waitForLog(tf, func(log string) bool {
		idx := strings.LastIndex(log, "Search state: RESOLVED")
		return idx >= 0 && strings.Contains(log[idx:], "Search state: IDLE")
	}, 3*time.Second)
	require.True(t, cleared, "Clearing the box should reset the results")
}

// waitForLog polls the app's log file
func waitForLog(tf *TUITestFramework, pred func(string) bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(tf.LogPath()); err == nil && pred(string(data)) {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

func TestShortQueryIsNotSent(t *testing.T) {
	t.Parallel()
	omdb := newFakeOMDb(t)
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp(omdb.URL))
	require.True(t, tf.Ready())

	require.NoError(t, tf.Type("ba", 20*time.Millisecond))
	time.Sleep(1200 * time.Millisecond)
	require.Empty(t, omdb.Terms(), "Two characters are below the minimum length")
}
