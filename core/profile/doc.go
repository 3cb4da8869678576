// Package profile defines educator profiles, the access-code registry and the
// rules that derive a profile for an external identity.
//
// Access codes are looked up case-insensitively:
//
//	reg := profile.DefaultRegistry()
//	p, ok := reg.Lookup("DEMO_TEACHER")
//
// Deployments can replace the built-in codes with a YAML file, see
// LoadRegistry.
//
// The token "all" is a wildcard in both the permission and the tool set.
// AvailableTools expands a wildcard tool set to ToolCatalog.
package profile
