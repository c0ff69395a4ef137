package ports

import (
	"context"
	"sync"
)

// FeatureFlags defines the contract for feature flag evaluation.
// This port allows the application to check feature enablement without
// knowing the underlying provider.
//
// Design principles:
//   - Always provide default values for graceful degradation
//   - Context parameter for user/request targeting
//   - Synchronous evaluation (async flag updates happen in adapter)
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetString retrieves a string feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetString(ctx context.Context, flag string, defaultValue string) string

	// GetInt retrieves an integer feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}

// StaticFlags is a FeatureFlags implementation backed by an in-memory map,
// suitable for configuration-driven flags and tests.
type StaticFlags struct {
	mu    sync.RWMutex
	flags map[string]any
}

// NewStaticFlags creates a StaticFlags with the given initial values.
func NewStaticFlags(flags map[string]any) *StaticFlags {
	copied := make(map[string]any, len(flags))
	for k, v := range flags {
		copied[k] = v
	}

	return &StaticFlags{flags: copied}
}

// Set updates a flag value at runtime.
func (s *StaticFlags) Set(flag string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flag] = value
}

// IsEnabled implements FeatureFlags.
func (s *StaticFlags) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.flags[flag].(bool); ok {
		return v
	}

	return defaultValue
}

// GetString implements FeatureFlags.
func (s *StaticFlags) GetString(_ context.Context, flag string, defaultValue string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.flags[flag].(string); ok {
		return v
	}

	return defaultValue
}

// GetInt implements FeatureFlags.
func (s *StaticFlags) GetInt(_ context.Context, flag string, defaultValue int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.flags[flag].(int); ok {
		return v
	}

	return defaultValue
}
