package debug

import (
	"context"
	"testing"

	"github.com/dyike/StockPilot/config"
)

func TestDisabledDebuggerIsNoop(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugPort: 52538})
	if d.IsEnabled() {
		t.Fatalf("debugger should be disabled")
	}
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if d.GetDebugURL() != "" {
		t.Fatalf("disabled debugger must not report a url")
	}
}

func TestDebugURL(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugEnabled: true, EinoDebugPort: 52538})
	if got := d.GetDebugURL(); got != "http://localhost:52538" {
		t.Fatalf("unexpected url %q", got)
	}
}
