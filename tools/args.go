package tools

import "fmt"

// stringArg reads a named string argument. Missing optional arguments
// return "".
func stringArg(args map[string]any, name string) (string, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, value)
	}
	return s, nil
}

// requiredStringArg reads a named string argument that must be present and
// non-empty.
func requiredStringArg(args map[string]any, name string) (string, error) {
	s, err := stringArg(args, name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return s, nil
}
