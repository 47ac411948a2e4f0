// Package undo attaches a history manager to a host editor: it records
// debounced document changes and binds undo/redo to keyboard shortcuts.
package undo

import (
	"context"
	"sync"

	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/history"
	"github.com/bethropolis/blockundo/internal/logger"
	"github.com/bethropolis/blockundo/internal/observer"
	"github.com/bethropolis/blockundo/internal/plugin"
	"github.com/bethropolis/blockundo/internal/shortcut"
	"github.com/bethropolis/blockundo/internal/types"
)

// Ensure Undo implements plugin.Plugin
var _ plugin.Plugin = (*Undo)(nil)

// ReadOnlySupported declares that the plugin honors the host's read-only mode.
const ReadOnlySupported = true

// Undo is the undo/redo plugin.
type Undo struct {
	opts     Options
	bindings *shortcut.Bindings

	mutex    sync.Mutex
	api      plugin.HostAPI
	manager  *history.Manager
	observer *observer.Observer
	subs     []event.SubscriptionID
	initial  types.Snapshot // applied on Initialize when set earlier
	attached bool
}

// New creates the plugin. Nothing is recorded until it is initialized with a host.
func New(opts Options) *Undo {
	opts = opts.withDefaults()
	return &Undo{
		opts:     opts,
		bindings: shortcut.NewBindings(opts.Shortcuts.Undo, opts.Shortcuts.Redo),
	}
}

// IsReadOnlySupported reports ReadOnlySupported.
func (p *Undo) IsReadOnlySupported() bool { return ReadOnlySupported }

// Name returns the unique name of the plugin.
func (p *Undo) Name() string { return "undo" }

// Initialize builds the history for api and starts listening to it.
func (p *Undo) Initialize(api plugin.HostAPI) error {
	manager := history.NewManager(api, history.Options{
		MaxLength:         p.opts.MaxLength,
		DefaultBlockType:  p.opts.DefaultBlockType,
		CaretTypes:        p.opts.CaretTypes,
		CaretRestoreDelay: p.opts.CaretRestoreDelay,
		OnUpdate:          p.onUpdate,
		Metrics:           p.opts.Metrics,
	})
	manager.SetReadOnly(api.ReadOnly())

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.api = api
	p.manager = manager
	if p.initial != nil {
		manager.Initialize(p.initial)
		p.initial = nil
	}

	p.observer = observer.New(api, p.opts.DebounceTimer, p.capture)
	p.observer.Start()
	p.subs = []event.SubscriptionID{
		api.SubscribeEvent(event.TypeKeyPressed, p.handleKey),
		api.SubscribeEvent(event.TypeReadOnlyChanged, p.handleReadOnly),
		api.SubscribeEvent(event.TypeHostDestroyed, p.handleDestroy),
	}
	p.attached = true

	logger.Infof("%s: attached (max length %d, debounce %v)", p.Name(), p.opts.MaxLength, p.opts.DebounceTimer)
	return nil
}

// Shutdown detaches from the host and waits for pending caret restores.
func (p *Undo) Shutdown() error {
	p.detach()
	if m := p.history(); m != nil {
		m.Wait()
	}
	return nil
}

func (p *Undo) detach() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.attached {
		return
	}
	for _, id := range p.subs {
		p.api.UnsubscribeEvent(id)
	}
	p.subs = nil
	p.observer.Close()
	p.attached = false
	logger.Debugf("%s: detached", p.Name())
}

func (p *Undo) history() *history.Manager {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.manager
}

func (p *Undo) capture() {
	m := p.history()
	if m == nil {
		return
	}
	if _, err := m.Capture(context.Background()); err != nil {
		logger.Errorf("%s: recording change: %v", p.Name(), err)
	}
}

func (p *Undo) handleKey(ev event.Event) bool {
	data, ok := ev.Data.(event.KeyPressedData)
	if !ok {
		return false
	}
	var err error
	switch p.bindings.Resolve(data.KeyEvent) {
	case shortcut.ActionUndo:
		err = p.Undo(context.Background())
	case shortcut.ActionRedo:
		err = p.Redo(context.Background())
	default:
		return false
	}
	if err != nil {
		logger.Errorf("%s: %v", p.Name(), err)
	}
	return true
}

func (p *Undo) handleReadOnly(ev event.Event) bool {
	if data, ok := ev.Data.(event.ReadOnlyChangedData); ok {
		if m := p.history(); m != nil {
			m.SetReadOnly(data.Enabled)
		}
	}
	return false
}

func (p *Undo) handleDestroy(event.Event) bool {
	p.detach()
	return false
}

func (p *Undo) onUpdate() {
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate()
	}
	p.mutex.Lock()
	api, m := p.api, p.manager
	p.mutex.Unlock()
	if api == nil || m == nil {
		return
	}
	api.DispatchEvent(event.TypeHistoryUpdated, event.HistoryUpdatedData{
		Position: m.Position(),
		Count:    m.Count(),
		CanUndo:  m.CanUndo(),
		CanRedo:  m.CanRedo(),
	})
}

// InitializeState sets the baseline entry. Before Initialize it is kept and
// applied once the plugin is attached.
func (p *Undo) InitializeState(snapshot types.Snapshot) {
	p.mutex.Lock()
	m := p.manager
	if m == nil {
		p.initial = snapshot.Clone()
	}
	p.mutex.Unlock()
	if m != nil {
		m.Initialize(snapshot)
	}
}

// Undo reverts the last recorded change.
func (p *Undo) Undo(ctx context.Context) error {
	if m := p.history(); m != nil {
		return m.Undo(ctx)
	}
	return nil
}

// Redo re-applies the last undone change.
func (p *Undo) Redo(ctx context.Context) error {
	if m := p.history(); m != nil {
		return m.Redo(ctx)
	}
	return nil
}

func (p *Undo) CanUndo() bool {
	m := p.history()
	return m != nil && m.CanUndo()
}

func (p *Undo) CanRedo() bool {
	m := p.history()
	return m != nil && m.CanRedo()
}

// Count is the number of recorded changes.
func (p *Undo) Count() int {
	if m := p.history(); m != nil {
		return m.Count()
	}
	return 0
}

// Position is the current stack pointer.
func (p *Undo) Position() int {
	if m := p.history(); m != nil {
		return m.Position()
	}
	return 0
}

// Clear drops every recorded change and keeps the baseline.
func (p *Undo) Clear() {
	if m := p.history(); m != nil {
		m.Clear()
	}
}

// Flush records a pending change now instead of waiting for the debounce
// window. It reports whether a change notification was pending.
func (p *Undo) Flush() bool {
	p.mutex.Lock()
	o := p.observer
	attached := p.attached
	p.mutex.Unlock()
	if !attached {
		return false
	}
	return o.Flush()
}

// Wait blocks until deferred caret restores have run.
func (p *Undo) Wait() {
	if m := p.history(); m != nil {
		m.Wait()
	}
}
