// Package testutil holds helpers for tests that watch goroutines and timers.
package testutil

import (
	"testing"
	"time"
)

const (
	waitTimeout = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
)

// WaitFor polls cond until it holds or two seconds pass. It reports whether cond held.
func WaitFor(tb testing.TB, cond func() bool) bool {
	tb.Helper()
	for deadline := time.Now().Add(waitTimeout); time.Now().Before(deadline); time.Sleep(pollEvery) {
		if cond() {
			return true
		}
	}
	return cond()
}

// MustWaitFor is WaitFor that fails the test on timeout
func MustWaitFor(tb testing.TB, cond func() bool) {
	tb.Helper()
	if !WaitFor(tb, cond) {
		tb.Fatal("condition not met within", waitTimeout)
	}
}

// Never reports whether cond stayed false for the whole window
func Never(tb testing.TB, cond func() bool, window time.Duration) bool {
	tb.Helper()
	for deadline := time.Now().Add(window); time.Now().Before(deadline); time.Sleep(pollEvery) {
		if cond() {
			return false
		}
	}
	return !cond()
}
