// internal/plugin/plugin.go
package plugin

import (
	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/host"
)

// HostAPI is what a plugin sees of the host editor: its block and caret
// operations, its read-only state and its event bus.
type HostAPI interface {
	host.Editor

	// ReadOnly reports the host's read-only mode at the time of the call.
	// Changes are announced with event.TypeReadOnlyChanged.
	ReadOnly() bool

	// --- Event Bus Interaction ---
	DispatchEvent(eventType event.Type, data interface{})
	SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID
	UnsubscribeEvent(id event.SubscriptionID)
}

// Plugin defines the interface that all plugins must implement.
type Plugin interface {
	// Name returns the unique identifier name of the plugin.
	Name() string

	// Initialize is called once when the plugin is attached to a host.
	// Used for setup and subscribing to events.
	Initialize(api HostAPI) error

	// Shutdown is called once when the host goes away or the program exits.
	Shutdown() error
}
