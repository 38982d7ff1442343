// Package template renders manifest templates and expands inline
// placeholders.
//
// FileRenderer reads a manifest file and renders it with text/template and
// the sprig function map; a value the template references but the context
// lacks fails the render. Engine expands short {{ var }} strings such as
// endpoint URLs. ResolveReferences replaces "@config.key|default" style
// references in step overrides and Helm values.
package template
