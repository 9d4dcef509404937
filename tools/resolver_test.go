package tools

import (
	"context"
	"testing"
)

// fakeTool is a configurable test tool.
type fakeTool struct {
	name        string
	description string
	params      []ToolParameter
	bindings    map[string]string
	callFn      func(ctx context.Context, args map[string]any) (any, error)
}

func (t *fakeTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: t.name, Description: t.description, Parameters: t.params}
}

func (t *fakeTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.callFn == nil {
		return "ok", nil
	}
	return t.callFn(ctx, args)
}

// boundTool additionally declares metadata bindings.
type boundTool struct {
	fakeTool
}

func (t *boundTool) MetadataParams() map[string]string {
	return t.bindings
}

func TestResolveNormalizes(t *testing.T) {
	ts := []Tool{
		&fakeTool{name: "alpha", description: "first"},
		&fakeTool{name: "beta", description: "second"},
	}

	defs := Resolve(ts)
	if len(defs) != 2 {
		t.Fatalf("expected 2 defs, got %d", len(defs))
	}
	if defs[0].Name != "alpha" || defs[1].Name != "beta" {
		t.Errorf("unexpected names: %s, %s", defs[0].Name, defs[1].Name)
	}
}

func TestResolveSkipsNilAndUnnamed(t *testing.T) {
	ts := []Tool{
		nil,
		&fakeTool{name: ""},
		&fakeTool{name: "alpha"},
	}

	defs := Resolve(ts)
	if len(defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(defs))
	}
	if defs[0].Name != "alpha" {
		t.Errorf("expected alpha, got %s", defs[0].Name)
	}
}

func TestResolveFirstDuplicateWins(t *testing.T) {
	ts := []Tool{
		&fakeTool{name: "alpha", description: "first"},
		&fakeTool{name: "alpha", description: "second"},
	}

	defs := Resolve(ts)
	if len(defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(defs))
	}
	if defs[0].Description != "first" {
		t.Errorf("expected first occurrence to win, got %q", defs[0].Description)
	}
}

func TestResolveCapturesBindings(t *testing.T) {
	bt := &boundTool{fakeTool{name: "greet"}}
	bt.bindings = map[string]string{"username": "metadata.username"}

	defs := Resolve([]Tool{bt})
	if len(defs) != 1 {
		t.Fatalf("expected 1 def, got %d", len(defs))
	}
	if defs[0].MetadataParams["username"] != "metadata.username" {
		t.Errorf("expected binding captured, got %v", defs[0].MetadataParams)
	}
}

func TestResolveEmpty(t *testing.T) {
	if defs := Resolve(nil); len(defs) != 0 {
		t.Errorf("expected no defs, got %d", len(defs))
	}
}

func TestInfosProjectsSchema(t *testing.T) {
	ts := []Tool{&fakeTool{
		name:        "alpha",
		description: "first",
		params: []ToolParameter{
			{Name: "x", ParamType: "string", Description: "the x", Required: true},
			{Name: "y", ParamType: "number", Description: "the y"},
		},
	}}

	infos := Infos(ts)
	if len(infos) != 1 {
		t.Fatalf("expected 1 info, got %d", len(infos))
	}

	info := infos[0]
	if info.Name != "alpha" || info.Description != "first" {
		t.Errorf("unexpected info: %+v", info)
	}

	props, ok := info.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %T", info.Parameters["properties"])
	}
	if _, ok := props["x"]; !ok {
		t.Error("expected x in properties")
	}
	if _, ok := props["y"]; !ok {
		t.Error("expected y in properties")
	}

	required, ok := info.Parameters["required"].([]string)
	if !ok {
		t.Fatalf("expected required list, got %T", info.Parameters["required"])
	}
	if len(required) != 1 || required[0] != "x" {
		t.Errorf("expected required [x], got %v", required)
	}
}
