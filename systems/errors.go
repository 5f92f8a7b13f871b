package systems

import "fmt"

// ConfigurationError reports a parameter that cannot produce a valid simulation.
// It is raised before any buffer is allocated and is never recovered.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ResourceExhaustionError reports that the requested buffers exceed the memory limit.
type ResourceExhaustionError struct {
	What      string
	Requested int64 // bytes
	Limit     int64 // bytes
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("resource exhaustion: %s needs %d bytes, limit is %d", e.What, e.Requested, e.Limit)
}

func configErr(field string, value any, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
