package plansolve

import "sort"

// Registry is the read-only tool registry. It is built once at engine
// startup and read without locking afterwards.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry builds a registry from the given tool map. The map is
// copied; later mutation of the argument does not affect the registry.
func NewRegistry(tools map[string]Tool) *Registry {
	copied := make(map[string]Tool, len(tools))
	names := make([]string, 0, len(tools))
	for name, tool := range tools {
		copied[name] = tool
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{tools: copied, names: names}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Schemas returns the schema of every registered tool, keyed by name.
func (r *Registry) Schemas() map[string]map[string]interface{} {
	schemas := make(map[string]map[string]interface{}, len(r.tools))
	for name, tool := range r.tools {
		schemas[name] = tool.Schema()
	}
	return schemas
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
