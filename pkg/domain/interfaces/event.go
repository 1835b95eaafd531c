package interfaces

import (
	"context"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

// EventSink receives domain events. Recording is fire-and-forget and has no result.
type EventSink interface {
	Record(ctx context.Context, event *model.Event)
}
