package protoflow

import (
	"testing"
)

func TestLoggerExports(t *testing.T) {
	logger := NewEntryServiceLogger(&stubEntry{})
	logger.Info("boot", LogFields{"component": "test"})
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
}

func TestStreamAndPlannerExports(t *testing.T) {
	s, err := NewStream("orders", []ModuleDescriptor{
		{StreamName: "orders", Label: "source", Index: 0, Properties: NewModuleDeploymentProperties(nil)},
		{StreamName: "orders", Label: "sink", Index: 1, Properties: NewModuleDeploymentProperties(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error building stream: %v", err)
	}

	provider := SequencedRuntimeProvider{Base: DescriptorPropertiesProvider{}, Sequence: 1}
	if _, err := Plan(s, s.Source(), provider, PlannerHooks{}); err != nil {
		t.Fatalf("unexpected error planning source: %v", err)
	}
}

func TestBusCoreExports(t *testing.T) {
	table := NewBindingTable()
	registry := NewSharedChannelRegistry()
	strategies := NewStrategyRegistry()

	core := NewBusCore(table, registry, strategies, nil)
	if core == nil {
		t.Fatal("expected non-nil BusCore")
	}
}

func TestCreateULID(t *testing.T) {
	id := CreateULID()
	if id == "" {
		t.Fatal("expected non-empty ULID")
	}
}

type stubEntry struct {
	fields LogFields
	err    error
}

func (s *stubEntry) Error(args ...any) {}
func (s *stubEntry) Info(args ...any)  {}
func (s *stubEntry) Debug(args ...any) {}
func (s *stubEntry) Trace(args ...any) {}

func (s *stubEntry) WithError(err error) *stubEntry {
	clone := *s
	clone.err = err
	return &clone
}

func (s *stubEntry) WithField(key string, value any) *stubEntry {
	clone := *s
	if clone.fields == nil {
		clone.fields = make(LogFields)
	}
	clone.fields[key] = value
	return &clone
}
