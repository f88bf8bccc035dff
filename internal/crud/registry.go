// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crud

import (
	"sync"
	"time"
)

// Registry keeps one panel per (session id, resource name).
type Registry struct {
	backend  Backend
	tokens   TokenSource
	observer Observer

	mu     sync.Mutex
	panels map[string]map[string]*Panel
}

// NewRegistry creates an empty registry. Every panel it creates reads its token
// from tokens, which is expected to resolve the caller from the context.
func NewRegistry(api Backend, tokens TokenSource, observer Observer) *Registry {
	return &Registry{
		backend:  api,
		tokens:   tokens,
		observer: observer,
		panels:   make(map[string]map[string]*Panel),
	}
}

// Panel returns the session's panel for resource, creating it on first use.
func (registry *Registry) Panel(sessionID string, resource *Resource) *Panel {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	sessionPanels, ok := registry.panels[sessionID]
	if !ok {
		sessionPanels = make(map[string]*Panel)
		registry.panels[sessionID] = sessionPanels
	}

	panel, ok := sessionPanels[resource.Name]
	if !ok {
		panel = NewPanel(resource, registry.backend, registry.tokens, registry.observer)
		sessionPanels[resource.Name] = panel
	}
	return panel
}

// Drop forgets every panel of a session (logout, expiry, 401).
func (registry *Registry) Drop(sessionID string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.panels, sessionID)
}

// Prune drops sessions whose panels have all been idle longer than maxIdle,
// returning how many sessions were removed.
func (registry *Registry) Prune(maxIdle time.Duration) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	removed := 0
	for sessionID, sessionPanels := range registry.panels {
		idle := true
		for _, panel := range sessionPanels {
			if time.Since(panel.LastUsed()) <= maxIdle {
				idle = false
				break
			}
		}
		if idle {
			delete(registry.panels, sessionID)
			removed++
		}
	}
	return removed
}

// Sessions returns how many sessions hold panels.
func (registry *Registry) Sessions() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.panels)
}
