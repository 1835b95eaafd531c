package model

import "github.com/neonzero/OpenERM/pkg/domain/types"

// Event is a domain event descriptor handed to the event sink
type Event struct {
	TenantID string
	ActorID  string
	Entity   string
	EntityID string
	Type     types.EventType
	Diff     map[string]any
}
