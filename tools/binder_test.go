package tools

import (
	"errors"
	"strings"
	"testing"
)

func TestBindParamsEmpty(t *testing.T) {
	bound, err := BindParams(nil, map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound != nil {
		t.Errorf("expected nil for no bindings, got %v", bound)
	}
}

func TestBindParamsResolves(t *testing.T) {
	bindings := map[string]string{"username": "metadata.username"}
	metadata := map[string]any{"username": "alice"}

	bound, err := BindParams(bindings, metadata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound["username"] != "alice" {
		t.Errorf("expected alice, got %v", bound["username"])
	}
}

func TestBindParamsMissingKey(t *testing.T) {
	bindings := map[string]string{"username": "metadata.username"}

	_, err := BindParams(bindings, map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing key")
	}

	var bindErr *BindingError
	if !errors.As(err, &bindErr) {
		t.Fatalf("expected *BindingError, got %T", err)
	}
	if bindErr.Key != "username" {
		t.Errorf("expected key 'username', got %q", bindErr.Key)
	}
	if !strings.Contains(err.Error(), `"username" not found`) {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestBindParamsNilValue(t *testing.T) {
	bindings := map[string]string{"username": "metadata.username"}
	metadata := map[string]any{"username": nil}

	_, err := BindParams(bindings, metadata)
	if err == nil {
		t.Fatal("expected error for nil value")
	}
}

func TestBindParamsOnlyBoundKeys(t *testing.T) {
	bindings := map[string]string{"username": "metadata.username"}
	metadata := map[string]any{"username": "alice", "other": "ignored"}

	bound, err := BindParams(bindings, metadata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bound) != 1 {
		t.Errorf("expected only bound keys, got %v", bound)
	}
}

func TestBindParamsNonStringValue(t *testing.T) {
	bindings := map[string]string{"depth": "metadata.depth"}
	metadata := map[string]any{"depth": 3}

	bound, err := BindParams(bindings, metadata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound["depth"] != 3 {
		t.Errorf("expected 3, got %v", bound["depth"])
	}
}
