// Tool catalog resolution.
//
// Information Hiding:
// - Normalization of heterogeneous tool-like objects hidden
// - Duplicate-name policy hidden behind Resolve

package tools

import (
	"context"

	"github.com/strandworks/strand/llm"
)

// Def is the normalized, resolved view of one tool: everything the invoker
// needs to dispatch a call, plus the schema projection sent to the model.
type Def struct {
	Name           string
	Description    string
	Parameters     []ToolParameter
	MetadataParams map[string]string // parameter name -> "metadata.<key>"

	call func(ctx context.Context, args map[string]any) (any, error)
}

// Resolve normalizes a list of tool-like objects into definitions. It never
// fails: nil entries and tools without a name are excluded rather than
// aborting the whole conversation over one bad tool. Duplicate names are
// resolved deterministically: the first occurrence wins and later
// duplicates are skipped.
func Resolve(ts []Tool) []Def {
	defs := make([]Def, 0, len(ts))
	seen := make(map[string]bool, len(ts))

	for _, t := range ts {
		if t == nil {
			continue
		}
		meta := t.Metadata()
		if meta.Name == "" || seen[meta.Name] {
			continue
		}
		seen[meta.Name] = true

		def := Def{
			Name:        meta.Name,
			Description: meta.Description,
			Parameters:  meta.Parameters,
			call:        t.Call,
		}
		if mp, ok := t.(MetadataParams); ok {
			def.MetadataParams = mp.MetadataParams()
		}
		defs = append(defs, def)
	}

	return defs
}

// Infos resolves a tool list and projects it to the model-facing form:
// name, description and JSON schema only, never the callable.
func Infos(ts []Tool) []llm.ToolInfo {
	defs := Resolve(ts)
	infos := make([]llm.ToolInfo, len(defs))
	for i, def := range defs {
		infos[i] = llm.ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Schema(),
		}
	}
	return infos
}

// Schema builds the JSON schema object for the definition's parameters.
func (d Def) Schema() map[string]any {
	properties := make(map[string]any, len(d.Parameters))
	required := []string{}
	for _, p := range d.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
