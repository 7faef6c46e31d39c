package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// DetailDefinition describes one site type's detail variant: the physical
// table its rows live in and the typed decode/insert/fetch behavior for it.
// Definitions are registered once at startup by the variants subpackage.
type DetailDefinition struct {
	// Type is the site type this variant serves.
	Type SiteType

	// Table is the detail table name within the monitoring schema,
	// e.g. "detail_cloud".
	Table string

	// Decode unmarshals a raw detail block into the variant's typed
	// payload, applying the variant's documented defaults. A block that
	// does not fit the schema yields a *ValidationError.
	Decode func(raw json.RawMessage) (any, error)

	// Insert writes one detail row for the given fact event.
	// The payload is the value produced by Decode.
	Insert func(ctx context.Context, db DBTX, siteID, eventID int64, execUnitID string, payload any) error

	// Fetch reads the detail row for an event.
	// Returns ErrDetailMissing (wrapped) when no row exists.
	Fetch func(ctx context.Context, db DBTX, eventID int64) (any, error)
}

var (
	registry   = make(map[SiteType]DetailDefinition)
	registryMu sync.RWMutex
)

// Register adds a detail definition to the registry.
// Panics if the definition is incomplete or its type is already registered.
func Register(def DetailDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Type == "" || def.Table == "" || def.Decode == nil || def.Insert == nil || def.Fetch == nil {
		panic(fmt.Sprintf("incomplete detail definition for %q", def.Type))
	}
	if _, exists := registry[def.Type]; exists {
		panic(fmt.Sprintf("detail variant already registered: %s", def.Type))
	}

	registry[def.Type] = def
}

// GetDefinition returns the detail definition for a site type.
// Returns false if not found.
func GetDefinition(t SiteType) (DetailDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[t]
	return def, ok
}

// All returns all registered detail definitions, sorted by site type.
func All() []DetailDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DetailDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})

	return result
}

// KnownTable reports whether name is the detail table of a registered
// variant. Used to guard table names read back from the store before they
// are interpolated into SQL.
func KnownTable(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, def := range registry {
		if def.Table == name {
			return true
		}
	}
	return false
}

// Count returns the number of registered detail variants.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered variants.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[SiteType]DetailDefinition)
}
