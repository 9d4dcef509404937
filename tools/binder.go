// Metadata parameter binding.
//
// A tool may declare that some of its parameters are taken from
// conversation metadata rather than from the model's arguments. Bindings
// are references of the form "metadata.<key>"; the binder resolves them
// against the conversation's metadata map at call time.

package tools

import (
	"fmt"
	"strings"
)

// metadataRefPrefix is the literal prefix of a metadata binding reference.
const metadataRefPrefix = "metadata."

// BindingError reports a declared metadata binding whose key is absent from
// the conversation metadata. This is a caller configuration defect, not a
// transient failure.
type BindingError struct {
	Key string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("metadata value %q not found for tool parameter", e.Key)
}

// BindParams resolves declared metadata bindings into concrete argument
// values. For every declared parameter the reference's key must be present
// (and non-nil) in metadata; a missing key fails with a *BindingError. The
// returned map contains only the metadata-sourced arguments.
func BindParams(bindings map[string]string, metadata map[string]any) (map[string]any, error) {
	if len(bindings) == 0 {
		return nil, nil
	}

	resolved := make(map[string]any, len(bindings))
	for name, ref := range bindings {
		key := strings.TrimPrefix(ref, metadataRefPrefix)
		value, ok := metadata[key]
		if !ok || value == nil {
			return nil, &BindingError{Key: key}
		}
		resolved[name] = value
	}
	return resolved, nil
}
