package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Records     int            `json:"records"`
	PerKind     map[string]int `json:"per_kind"`
	StorageType string         `json:"storage_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	perKind := make(map[string]int)
	for _, k := range Kinds() {
		if n := s.registry.Count(k); n > 0 {
			perKind[string(k)] = n
		}
	}

	storageType := "none"
	if s.store != nil {
		storageType = "persister"
		if comp, ok := s.store.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return ServiceState{
		Records:     s.registry.Len(),
		PerKind:     perKind,
		StorageType: storageType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
