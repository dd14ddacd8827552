// Package prefs stores shader selections and parameter overrides.
//
// Preferences are plain string values addressed by dotted keys. The key
// scheme is owned by this package; callers never format keys themselves.
//
// KeySeparator is the only reserved character. System IDs and shader names
// used as key segments must not contain it, otherwise a system selection
// key could name another shader's parameter key.
package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeySchemeVersion identifies the layout produced by ShaderKey and ParamsKey.
// Bump it together with a migration if the layout ever changes.
const KeySchemeVersion = 1

// KeySeparator joins key segments.
const KeySeparator = "."

const (
	shaderKeyPrefix = "videoShader"
	paramsKeySuffix = "params"
)

// Key segment errors.
var (
	ErrEmptySegment      = errors.New("key segment must not be empty")
	ErrReservedCharacter = errors.New("key segment must not contain " + strconv.Quote(KeySeparator))
)

// Context selects which preferences apply: the global defaults or the
// overrides for one emulated system.
type Context struct {
	systemID string
	system   bool
}

// Global returns the context for the global defaults.
func Global() Context {
	return Context{}
}

// System returns the context for the emulated system with the given ID.
func System(id string) Context {
	return Context{systemID: id, system: true}
}

// IsGlobal reports whether c is the global context.
func (c Context) IsGlobal() bool {
	return !c.system
}

// SystemID returns the system ID, or "" for the global context.
func (c Context) SystemID() string {
	return c.systemID
}

func (c Context) String() string {
	if c.IsGlobal() {
		return "global"
	}
	return "system:" + c.systemID
}

// Validate checks that a system context carries a usable ID.
func (c Context) Validate() error {
	if c.IsGlobal() {
		return nil
	}
	if err := ValidateSegment(c.systemID); err != nil {
		return fmt.Errorf("invalid system id: %w", err)
	}
	return nil
}

// ShaderKey returns the key holding the selected shader name for ctx.
//
//	Global     -> videoShader
//	System(id) -> videoShader.<id>
func ShaderKey(ctx Context) string {
	if ctx.IsGlobal() {
		return shaderKeyPrefix
	}
	return shaderKeyPrefix + KeySeparator + ctx.systemID
}

// ParamsKey returns the key holding the parameter overrides of a shader for ctx.
//
//	Global     -> videoShader.<shader>.params
//	System(id) -> videoShader.<id>.<shader>.params
func ParamsKey(shaderName string, ctx Context) string {
	if ctx.IsGlobal() {
		return strings.Join([]string{shaderKeyPrefix, shaderName, paramsKeySuffix}, KeySeparator)
	}
	return strings.Join([]string{shaderKeyPrefix, ctx.systemID, shaderName, paramsKeySuffix}, KeySeparator)
}

// ValidateSegment rejects empty key segments and segments containing
// KeySeparator.
func ValidateSegment(s string) error {
	if s == "" {
		return ErrEmptySegment
	}
	if strings.Contains(s, KeySeparator) {
		return ErrReservedCharacter
	}
	return nil
}
