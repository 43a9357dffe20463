package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if Short() != 7*time.Second {
		t.Errorf("Short = %v, want 7s", Short())
	}
	if Medium() != Defaults.Medium || Ping() != Defaults.Ping || Long() != Defaults.Long {
		t.Errorf("unexpected change to other values: %+v", Current())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer Reset()

	t.Setenv("TIMEOUT_PING", "750ms")
	t.Setenv("TIMEOUT_SHORT", "nonsense")
	t.Setenv("TIMEOUT_MEDIUM", "-3s")
	t.Setenv("TIMEOUT_LONG", "1m")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}
	want := Config{
		Ping:   750 * time.Millisecond,
		Short:  Defaults.Short,
		Medium: Defaults.Medium,
		Long:   time.Minute,
	}
	if got := Current(); got != want {
		t.Errorf("Current = %+v, want %+v", got, want)
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow thing")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "slow thing" {
		t.Errorf("operation field = %v", got)
	}

	ctx, cancel = WithTimeout(context.Background(), time.Minute, log, "fast thing")
	cancel()
	if ctx.Err() != context.Canceled {
		t.Errorf("expected Canceled, got %v", ctx.Err())
	}
	if logs.Len() != 1 {
		t.Error("cancel before deadline should not log")
	}
}
