package component

import (
	"context"
	"fmt"
	"testing"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	*m.order = append(*m.order, "start:"+m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	*m.order = append(*m.order, "stop:"+m.name)
	return m.stopErr
}

func TestRegisterDuplicate(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	if err := r.Register(&mockComponent{name: "tracer", order: &order}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "tracer", order: &order}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "tracer" {
		t.Errorf("Names() = %v", names)
	}
}

func TestStartStopOrder(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	for _, name := range []string{"a", "b", "c"} {
		if err := r.Register(&mockComponent{name: name, order: &order}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestStartFailureStopsOnlyStarted(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", order: &order})
	_ = r.Register(&mockComponent{name: "b", order: &order, startErr: fmt.Errorf("boom")})
	_ = r.Register(&mockComponent{name: "c", order: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	_ = r.StopAll(context.Background())
	want := []string{"start:a", "start:b", "stop:a"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", order: &order, stopErr: fmt.Errorf("flush failed")})
	_ = r.Register(&mockComponent{name: "b", order: &order})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected stop error to be reported")
	}
	if len(order) != 4 {
		t.Errorf("every started component must be stopped: %v", order)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Errorf("second StopAll must be a no-op, got %v", err)
	}
}
