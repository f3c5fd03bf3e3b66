package bootstrap

import (
	"context"
	"testing"

	platformconfig "coap-adapter-go/internal/platform/config"
	platformerrors "coap-adapter-go/internal/platform/errors"
	platformtesting "coap-adapter-go/internal/platform/testing"
)

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{"config", "logging", "storage", "domain"}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, id := range want {
		if steps[i].ID != id {
			t.Errorf("step %d: got %q, want %q", i, steps[i].ID, id)
		}
	}
}

func TestExecuteInitStepsWrapsFailure(t *testing.T) {
	boom := []initStep{{
		ID:    "explode",
		Title: "always fails",
		Kind:  platformerrors.KindStorage,
		Execute: func(context.Context, *appState) error {
			return platformerrors.New(platformerrors.KindUnavailable, "test", "backend down")
		},
	}}

	err := executeInitSteps(context.Background(), boom, &appState{})
	if err == nil {
		t.Fatal("expected failure")
	}
	// An already typed error keeps its original kind.
	if !platformerrors.IsKind(err, platformerrors.KindUnavailable) {
		t.Fatalf("unexpected kind: %v", err)
	}
}

func TestDomainStepBuildsServices(t *testing.T) {
	state := &appState{
		config: platformtesting.SetupTestConfig(t),
		logger: platformtesting.SetupTestLogger(t),
	}

	if err := stepStore(context.Background(), state); err != nil {
		t.Fatalf("stepStore: %v", err)
	}
	t.Cleanup(func() { state.store.Close(context.Background()) })

	if err := stepDomain(context.Background(), state); err != nil {
		t.Fatalf("stepDomain: %v", err)
	}
	t.Cleanup(func() { state.sink.Close() })

	if state.registry == nil || state.resolver == nil || state.psk == nil || state.pipe == nil {
		t.Fatal("domain services not fully built")
	}
}

func TestStartServicesRequiresATransport(t *testing.T) {
	cfg := platformconfig.DefaultConfig()
	cfg.Transport.Dgram.Enabled = false
	cfg.Web.Enabled = false

	err := startServices(&appState{config: cfg}, nil, context.Background())
	if !platformerrors.IsKind(err, platformerrors.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
