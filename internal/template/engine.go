package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine expands inline {{ var }} placeholders in short strings such as
// endpoint names and URLs. Manifest files go through FileRenderer instead.
type Engine struct {
	// Pattern to match template variables like {{ variableName }}
	templatePattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		templatePattern: regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`),
	}
}

// Replace replaces all template variables in a value with actual values from
// the context. Maps and slices are walked recursively. A variable missing
// from the context is an error.
func (e *Engine) Replace(value interface{}, context map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.replaceString(v, context, true)
	case map[string]interface{}:
		return e.replaceMap(v, context)
	case []interface{}:
		return e.replaceSlice(v, context)
	default:
		// Non-templatable types are returned as-is
		return value, nil
	}
}

// Expand substitutes the variables of s that the context defines and leaves
// any other placeholder untouched.
func (e *Engine) Expand(s string, context map[string]interface{}) string {
	out, _ := e.replaceString(s, context, false)
	return out
}

func (e *Engine) replaceString(template string, context map[string]interface{}, strict bool) (string, error) {
	var missing []string
	result := e.templatePattern.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := e.templatePattern.FindStringSubmatch(placeholder)[1]
		value, ok := context[name]
		if !ok {
			missing = append(missing, name)
			return placeholder
		}
		return stringify(value)
	})

	if strict && len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *Engine) replaceMap(m map[string]interface{}, context map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))
	for key, value := range m {
		replaced, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error in key '%s': %w", key, err)
		}
		result[key] = replaced
	}
	return result, nil
}

func (e *Engine) replaceSlice(s []interface{}, context map[string]interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(s))
	for i, value := range s {
		replaced, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}
	return result, nil
}

// ExtractVariables returns the sorted variable names referenced by value.
func (e *Engine) ExtractVariables(value interface{}) []string {
	variables := make(map[string]bool)
	e.extractVariablesRecursive(value, variables)

	result := make([]string, 0, len(variables))
	for name := range variables {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (e *Engine) extractVariablesRecursive(value interface{}, variables map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range e.templatePattern.FindAllStringSubmatch(v, -1) {
			variables[match[1]] = true
		}
	case map[string]interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, variables)
		}
	case []interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, variables)
		}
	}
}
