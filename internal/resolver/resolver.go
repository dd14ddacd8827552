// Package resolver decides which shader and parameter overrides apply in a
// given preference context.
//
// Resolution for the global context always yields a shader: the stored
// selection when it still exists in the catalog, the fallback otherwise.
// A system context with no stored selection defers to the global one. A
// system context whose stored selection no longer exists yields nothing.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/shadercat/internal/params"
	"github.com/leapstack-labs/shadercat/internal/prefs"
	"github.com/leapstack-labs/shadercat/internal/shader"
)

// Catalog is the subset of *shader.Catalog the resolver needs.
type Catalog interface {
	Lookup(name string) (shader.Entry, bool)
	Fallback() shader.Entry
}

// Resolver reads and writes shader preferences.
type Resolver struct {
	catalog Catalog
	store   prefs.Store
	logger  *slog.Logger
}

// New creates a Resolver. A nil logger discards output.
func New(catalog Catalog, store prefs.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// ShaderKey returns the preference key for the shader selection in ctx.
func (r *Resolver) ShaderKey(ctx prefs.Context) string {
	return prefs.ShaderKey(ctx)
}

// ActiveShader returns the shader that applies in ctx.
//
// ok is false only for a system context whose stored name cannot be found.
// Store read failures and invalid system IDs are returned as errors.
func (r *Resolver) ActiveShader(ctx prefs.Context) (shader.Entry, bool, error) {
	if err := ctx.Validate(); err != nil {
		return shader.Entry{}, false, err
	}

	key := prefs.ShaderKey(ctx)
	name, stored, err := r.store.GetString(key)
	if err != nil {
		return shader.Entry{}, false, fmt.Errorf("failed to read shader selection for %s: %w", ctx, err)
	}

	if ctx.IsGlobal() {
		if stored {
			if e, ok := r.catalog.Lookup(name); ok {
				return e, true, nil
			}
			r.logger.Debug("stored default shader not found, using fallback",
				"key", key, "shader", name, "fallback", shader.FallbackName)
		}
		return r.catalog.Fallback(), true, nil
	}

	if !stored {
		return r.ActiveShader(prefs.Global())
	}

	e, ok := r.catalog.Lookup(name)
	if !ok {
		r.logger.Debug("stored system shader not found",
			"key", key, "shader", name, "system", ctx.SystemID())
		return shader.Entry{}, false, nil
	}
	return e, true, nil
}

// SetDefaultShader stores entry as the global selection.
func (r *Resolver) SetDefaultShader(entry shader.Entry) error {
	return r.setShader(prefs.Global(), entry)
}

// SetSystemShader stores entry as the selection for one system.
func (r *Resolver) SetSystemShader(systemID string, entry shader.Entry) error {
	return r.setShader(prefs.System(systemID), entry)
}

// ClearSystemShader removes the selection for one system so that it defers
// to the global selection again.
func (r *Resolver) ClearSystemShader(systemID string) error {
	ctx := prefs.System(systemID)
	if err := ctx.Validate(); err != nil {
		return err
	}
	if err := r.store.Delete(prefs.ShaderKey(ctx)); err != nil {
		return fmt.Errorf("failed to clear shader selection for %s: %w", ctx, err)
	}
	return nil
}

func (r *Resolver) setShader(ctx prefs.Context, entry shader.Entry) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	// The name is stored as a value, so only emptiness matters here.
	if entry.Name == "" {
		return fmt.Errorf("invalid shader name: %w", prefs.ErrEmptySegment)
	}
	if err := r.store.SetString(prefs.ShaderKey(ctx), entry.Name); err != nil {
		return fmt.Errorf("failed to store shader selection for %s: %w", ctx, err)
	}
	r.logger.Info("shader selected", "context", ctx.String(), "shader", entry.Name)
	return nil
}

// Parameters returns the parameter overrides stored for shaderName in ctx.
// A system context does not inherit the global overrides. Malformed
// entries in the stored value are dropped. A shader whose name cannot form
// a key segment never has overrides.
func (r *Resolver) Parameters(shaderName string, ctx prefs.Context) (params.Map, bool, error) {
	if err := ctx.Validate(); err != nil {
		return nil, false, err
	}
	if err := prefs.ValidateSegment(shaderName); err != nil {
		r.logger.Debug("shader name cannot hold parameters", "shader", shaderName, "error", err)
		return nil, false, nil
	}

	key := prefs.ParamsKey(shaderName, ctx)
	raw, stored, err := r.store.GetString(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read parameters for %s in %s: %w", shaderName, ctx, err)
	}
	if !stored {
		return nil, false, nil
	}

	m, errs := params.DecodeDetailed(raw)
	for _, e := range errs {
		r.logger.Debug("dropping parameter entry", "key", key, "error", e)
	}
	return m, true, nil
}

// SetParameters stores m as the overrides for shaderName in ctx.
func (r *Resolver) SetParameters(shaderName string, ctx prefs.Context, m params.Map) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if err := prefs.ValidateSegment(shaderName); err != nil {
		return fmt.Errorf("invalid shader name: %w", err)
	}
	if err := r.store.SetString(prefs.ParamsKey(shaderName, ctx), params.Encode(m)); err != nil {
		return fmt.Errorf("failed to store parameters for %s in %s: %w", shaderName, ctx, err)
	}
	return nil
}

// ClearParameters removes the overrides for shaderName in ctx.
func (r *Resolver) ClearParameters(shaderName string, ctx prefs.Context) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if err := prefs.ValidateSegment(shaderName); err != nil {
		return fmt.Errorf("invalid shader name: %w", err)
	}
	if err := r.store.Delete(prefs.ParamsKey(shaderName, ctx)); err != nil {
		return fmt.Errorf("failed to clear parameters for %s in %s: %w", shaderName, ctx, err)
	}
	return nil
}
