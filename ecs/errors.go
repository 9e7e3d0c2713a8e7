package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("ecs: configuration error")
	ErrInvalidIndex    = errors.New("ecs: invalid index")
	ErrResourceMissing = errors.New("ecs: resource missing")
)

// ConfigurationError reports a missing or inconsistent material, shape or
// template definition.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ecs: configuration %q: %s", e.Name, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvalidIndexError reports an index outside [0, Count).
type InvalidIndexError struct {
	Index int
	Count int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("ecs: index %d out of range [0,%d)", e.Index, e.Count)
}

func (e *InvalidIndexError) Unwrap() error { return ErrInvalidIndex }

// ResourceMissingError reports an absent template or asset.
type ResourceMissingError struct {
	Kind string
}

func (e *ResourceMissingError) Error() string {
	return fmt.Sprintf("ecs: no resource for %q", e.Kind)
}

func (e *ResourceMissingError) Unwrap() error { return ErrResourceMissing }
