// Package testutils provides helpers shared by the tests of the module.
package testutils

import (
	"strings"
	"testing"

	"github.com/benoitkugler/vformat/logger"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// AssertEqual fails the test with a diff if [got] and [exp] differ.
func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}

// CapturedLogs records the logs emitted between CaptureLogs and
// one of the Assert methods.
type CapturedLogs struct {
	logs    *observer.ObservedLogs
	restore func()
}

// CaptureLogs redirects the global logger to an in memory recorder.
// Use it with defer:
//
//	defer testutils.CaptureLogs().AssertNoLogs(t)
func CaptureLogs() *CapturedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))
	return &CapturedLogs{logs: logs, restore: restore}
}

// Logs stops the capture and returns the messages logged
// at warning level or above.
func (c *CapturedLogs) Logs() []string {
	c.restore()
	var out []string
	for _, entry := range c.logs.All() {
		if entry.Level >= zapcore.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}

// AssertNoLogs stops the capture and fails if a warning was logged.
func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if l := c.Logs(); len(l) != 0 {
		t.Fatalf("expected no warnings, got %d: %q", len(l), l)
	}
}

// CheckLogs stops the capture and asserts exactly [expected] warnings
// were logged, each containing the given substring.
func (c *CapturedLogs) CheckLogs(t *testing.T, expected ...string) {
	t.Helper()
	l := c.Logs()
	if len(l) != len(expected) {
		t.Fatalf("expected %d warnings, got %d: %q", len(expected), len(l), l)
	}
	for i, exp := range expected {
		if !strings.Contains(l[i], exp) {
			t.Fatalf("warning %d: expected %q in %q", i, exp, l[i])
		}
	}
}
