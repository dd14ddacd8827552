package shader

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/leapstack-labs/shadercat/internal/notifier"
)

// FallbackName is the bundled shader used when nothing else is selected.
// The system root must always contain it.
const FallbackName = "Pixellate"

// ErrFallbackMissing is returned when the bundled catalog lacks FallbackName.
var ErrFallbackMissing = errors.New("fallback shader " + FallbackName + " not found in system shaders")

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	// SystemRoot is the bundled shader directory. Scanned once.
	SystemRoot string
	// UserRoots are the user-writable shader directories, in search order.
	UserRoots []string
	// RequireFallback makes NewCatalog fail when FallbackName is not a system shader.
	RequireFallback bool
	// Notifier receives a ping after every Reload (optional).
	Notifier *notifier.Notifier
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Catalog holds the system and custom shader partitions.
//
// System shaders are fixed for the lifetime of the catalog. Custom shaders
// are replaced wholesale by Reload. All methods are safe for concurrent use.
type Catalog struct {
	system     []Entry
	systemRoot string
	userRoots  []string
	logger     *slog.Logger
	notifier   *notifier.Notifier

	// reloadMu serializes Reload so that a slower scan cannot overwrite a newer one.
	reloadMu sync.Mutex

	// mu guards everything below; system needs no locking once built.
	mu          sync.RWMutex
	custom      []Entry
	systemNames []string
	customNames []string
	allNames    []string
	systemValid bool
	customValid bool
	allValid    bool
	reloads     int
}

// Stats summarizes the catalog contents.
type Stats struct {
	System      int `json:"system"`
	Custom      int `json:"custom"`
	ReloadCount int `json:"reload_count"`
}

// NewCatalog scans the system root and the user roots and returns the catalog.
func NewCatalog(opts CatalogOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := opts.Notifier
	if n == nil {
		n = notifier.New()
	}

	c := &Catalog{
		systemRoot: opts.SystemRoot,
		userRoots:  slices.Clone(opts.UserRoots),
		logger:     logger,
		notifier:   n,
	}

	c.system = ScanRoot(opts.SystemRoot, logger)
	c.custom = ScanSearchRoots(c.userRoots, logger)

	if opts.RequireFallback {
		if _, ok := c.lookupSystem(FallbackName); !ok {
			return nil, fmt.Errorf("%w (system root %q)", ErrFallbackMissing, opts.SystemRoot)
		}
	}

	logger.Info("shader catalog initialized",
		"system_root", opts.SystemRoot,
		"system_shaders", len(c.system),
		"custom_shaders", len(c.custom))

	return c, nil
}

// Reload rescans the user roots and replaces the custom shaders.
// Subscribers are notified once the new list is in place. It returns the
// number of custom shaders found.
func (c *Catalog) Reload() int {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	custom := ScanSearchRoots(c.userRoots, c.logger)

	c.mu.Lock()
	c.custom = custom
	c.customNames = nil
	c.allNames = nil
	c.customValid = false
	c.allValid = false
	c.reloads++
	c.mu.Unlock()

	c.logger.Debug("custom shaders reloaded", "custom_shaders", len(custom))
	c.notifier.Broadcast()

	return len(custom)
}

// Lookup finds a shader by exact, case-sensitive name.
// System shaders take precedence over custom shaders with the same name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if e, ok := c.lookupSystem(name); ok {
		return e, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.custom {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Fallback returns the FallbackName entry. It panics if the bundled catalog
// lacks it; construct the catalog with RequireFallback to catch this at startup.
func (c *Catalog) Fallback() Entry {
	e, ok := c.lookupSystem(FallbackName)
	if !ok {
		panic(ErrFallbackMissing)
	}
	return e
}

// SystemShaders returns a copy of the system partition.
func (c *Catalog) SystemShaders() []Entry {
	return slices.Clone(c.system)
}

// CustomShaders returns a copy of the custom partition.
func (c *Catalog) CustomShaders() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.custom)
}

// SystemNames returns the system shader names in catalog order.
func (c *Catalog) SystemNames() []string {
	c.mu.RLock()
	if c.systemValid {
		defer c.mu.RUnlock()
		return slices.Clone(c.systemNames)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.systemNamesLocked())
}

// CustomNames returns the custom shader names in catalog order.
func (c *Catalog) CustomNames() []string {
	c.mu.RLock()
	if c.customValid {
		defer c.mu.RUnlock()
		return slices.Clone(c.customNames)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.customNamesLocked())
}

// AllNames returns SystemNames followed by CustomNames.
func (c *Catalog) AllNames() []string {
	c.mu.RLock()
	if c.allValid {
		defer c.mu.RUnlock()
		return slices.Clone(c.allNames)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.allValid {
		sys := c.systemNamesLocked()
		custom := c.customNamesLocked()
		all := make([]string, 0, len(sys)+len(custom))
		all = append(all, sys...)
		all = append(all, custom...)
		c.allNames = all
		c.allValid = true
	}
	return slices.Clone(c.allNames)
}

// SystemRoot returns the bundled shader directory.
func (c *Catalog) SystemRoot() string {
	return c.systemRoot
}

// UserRoots returns the user shader directories in search order.
func (c *Catalog) UserRoots() []string {
	return slices.Clone(c.userRoots)
}

// Subscribe returns a channel that is pinged after every Reload.
func (c *Catalog) Subscribe() chan struct{} {
	return c.notifier.Subscribe()
}

// Unsubscribe stops delivery to a channel returned by Subscribe.
func (c *Catalog) Unsubscribe(ch chan struct{}) {
	c.notifier.Unsubscribe(ch)
}

// Stats returns entry counts and the number of reloads so far.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		System:      len(c.system),
		Custom:      len(c.custom),
		ReloadCount: c.reloads,
	}
}

func (c *Catalog) lookupSystem(name string) (Entry, bool) {
	for _, e := range c.system {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// systemNamesLocked rebuilds the system name cache if needed. Caller holds mu for writing.
func (c *Catalog) systemNamesLocked() []string {
	if !c.systemValid {
		c.systemNames = names(c.system)
		c.systemValid = true
	}
	return c.systemNames
}

// customNamesLocked rebuilds the custom name cache if needed. Caller holds mu for writing.
func (c *Catalog) customNamesLocked() []string {
	if !c.customValid {
		c.customNames = names(c.custom)
		c.customValid = true
	}
	return c.customNames
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
