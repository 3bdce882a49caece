package logger

import "testing"

// These just verify the package-level calls don't panic; slog output isn't
// asserted against since the handler writes to stderr.
func TestLoggingCallsDoNotPanic(t *testing.T) {
	Init("debug")
	Infof("starting %s on %d", "gateway", 8080)
	Warnf("slow backend %s", "foo")
	Errorf("failed: %v", "oops")
	Debugf("detail %d", 1)
	With("backend", "foo").Infof("scoped message")
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	Init("not-a-level")
	if parseLevel("not-a-level") != parseLevel("info") {
		t.Fatalf("expected unknown level to default to info")
	}
}
