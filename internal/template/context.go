package template

import "strings"

// MergeContexts merges multiple contexts into a single context
// Later contexts override values from earlier contexts
func MergeContexts(contexts ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for _, ctx := range contexts {
		for key, value := range ctx {
			result[key] = value
		}
	}

	return result
}

// SetDefaults copies every key of defaults that ctx does not define yet.
func SetDefaults(ctx, defaults map[string]interface{}) {
	for key, value := range defaults {
		if _, ok := ctx[key]; !ok {
			ctx[key] = value
		}
	}
}

// ReferenceResolver looks up the value behind a reference key such as
// "tenant_name" in source "config".
type ReferenceResolver func(source, key string) (interface{}, bool)

// ResolveReferences replaces "@source.key|default" strings in value with
// what resolve returns for them, or with default when resolve has nothing.
// A reference without a default that cannot be resolved becomes nil. Maps
// and slices are walked recursively; other values are returned as-is.
func ResolveReferences(value interface{}, resolve ReferenceResolver) interface{} {
	switch v := value.(type) {
	case string:
		return resolveReference(v, resolve)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = ResolveReferences(val, resolve)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = ResolveReferences(val, resolve)
		}
		return out
	default:
		return value
	}
}

func resolveReference(s string, resolve ReferenceResolver) interface{} {
	if !strings.HasPrefix(s, "@") {
		return s
	}

	ref, def, hasDefault := strings.Cut(s[1:], "|")
	var fallback interface{}
	if hasDefault {
		fallback = def
	}

	source, key, ok := strings.Cut(ref, ".")
	if !ok {
		return fallback
	}
	if value, found := resolve(source, key); found {
		return value
	}
	return fallback
}
