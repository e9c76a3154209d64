package core

import (
	"fmt"
	"sort"
	"sync"
)

// OperationDefinition describes one supported import operation: the set of
// recognized columns, the field identifying an existing client for updates,
// and the validation specs applied to each row.
type OperationDefinition struct {
	Key      string // registry key, e.g. "create"
	Label    string // human-readable name for listings
	KeyField string // record field that resolves an existing client; empty for create
	Specs    []FieldSpec
}

// Columns returns the recognized header names in declaration order.
func (d *OperationDefinition) Columns() []string {
	cols := make([]string, len(d.Specs))
	for i, spec := range d.Specs {
		cols[i] = spec.Name
	}
	return cols
}

// Spec returns the field spec for a column name.
func (d *OperationDefinition) Spec(name string) (FieldSpec, bool) {
	for _, spec := range d.Specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

var (
	registry   = make(map[string]OperationDefinition)
	registryMu sync.RWMutex
)

// Register adds an operation definition to the registry.
// Panics if an operation with the same key is already registered.
func Register(def OperationDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Key == "" {
		panic("operation registered with empty key")
	}
	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("operation already registered: %s", def.Key))
	}

	registry[def.Key] = def
}

// Get returns an operation definition by key.
// Returns false if not found.
func Get(key string) (OperationDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered operation definitions, sorted by key for
// consistent ordering.
func All() []OperationDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]OperationDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// OperationCount returns the number of registered operations.
func OperationCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered operations.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]OperationDefinition)
}
