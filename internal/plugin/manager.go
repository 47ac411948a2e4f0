// internal/plugin/manager.go
package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bethropolis/blockundo/internal/logger"
)

// Manager handles the registration, initialization, and lifecycle of plugins.
type Manager struct {
	mu      sync.Mutex
	plugins map[string]Plugin // Store loaded plugins by name
	order   []string          // Registration order; shutdown runs in reverse
	api     HostAPI           // Set between InitializePlugins and ShutdownPlugins
}

// NewManager creates a new plugin manager.
func NewManager() *Manager {
	return &Manager{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin instance to the manager.
// This should be called before InitializePlugins.
func (m *Manager) Register(plugin Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := plugin.Name()
	if name == "" {
		return fmt.Errorf("plugin registration failed: plugin name cannot be empty")
	}
	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("plugin registration failed: plugin named '%s' already registered", name)
	}

	m.plugins[name] = plugin
	m.order = append(m.order, name)
	logger.Debugf("Plugin Manager: Registered plugin '%s'", name)
	return nil
}

// InitializePlugins calls Initialize on every registered plugin in
// registration order. A failing plugin is logged and skipped; the failures
// are returned joined. Initializing twice without a shutdown in between fails.
func (m *Manager) InitializePlugins(api HostAPI) error {
	m.mu.Lock()
	if m.api != nil {
		m.mu.Unlock()
		return errors.New("plugins already initialized")
	}
	m.api = api
	pluginsToInit := m.ordered()
	m.mu.Unlock()

	logger.Debugf("Plugin Manager: Initializing %d plugins...", len(pluginsToInit))
	var errs []error
	for _, plugin := range pluginsToInit {
		if err := plugin.Initialize(api); err != nil {
			logger.Errorf("Plugin Manager: ERROR initializing plugin '%s': %v", plugin.Name(), err)
			errs = append(errs, fmt.Errorf("initialize %s: %w", plugin.Name(), err))
			continue
		}
		logger.Debugf("Plugin Manager: Successfully initialized plugin '%s'", plugin.Name())
	}
	return errors.Join(errs...)
}

// ShutdownPlugins calls Shutdown on all registered plugins, last registered first.
func (m *Manager) ShutdownPlugins() error {
	m.mu.Lock()
	pluginsToShutdown := m.ordered()
	m.api = nil
	m.mu.Unlock()

	logger.Debugf("Plugin Manager: Shutting down %d plugins...", len(pluginsToShutdown))
	var errs []error
	for i := len(pluginsToShutdown) - 1; i >= 0; i-- {
		plugin := pluginsToShutdown[i]
		if err := plugin.Shutdown(); err != nil {
			logger.Errorf("Plugin Manager: ERROR shutting down plugin '%s': %v", plugin.Name(), err)
			errs = append(errs, fmt.Errorf("shutdown %s: %w", plugin.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) ordered() []Plugin {
	out := make([]Plugin, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.plugins[name])
	}
	return out
}
