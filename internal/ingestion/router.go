package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

// EventHandler defines a function that processes events
type EventHandler func(ctx context.Context, eventType model.EventType, metadata *model.MessageMetadata, rawEvent []byte) error

// Router routes events to the appropriate handler based on event type
type Router struct {
	handlers map[model.EventType]EventHandler
	// Default handler for unknown event types
	defaultHandler EventHandler
}

// NewRouter creates a new event router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[model.EventType]EventHandler),
	}
}

// Register registers a handler for an event type
func (r *Router) Register(eventType model.EventType, handler EventHandler) {
	r.handlers[eventType] = handler
}

// RegisterDefault registers a default handler for unknown event types
func (r *Router) RegisterDefault(handler EventHandler) {
	r.defaultHandler = handler
}

// Route routes an event to the appropriate handler
func (r *Router) Route(ctx context.Context, metadata *model.MessageMetadata, rawEvent []byte) error {
	log := logger.FromContext(ctx)

	log = log.With(
		zap.String("event_subject", metadata.MessageSubject),
		zap.String("event_id", metadata.MessageID),
		zap.String("company_id", metadata.CompanyID),
	)
	ctx = logger.WithLogger(ctx, log)

	if metadata.CompanyID != "" {
		ctx = tenant.WithCompanyID(ctx, metadata.CompanyID)
	}

	eventType, found := model.MapToBaseEventType(metadata.MessageSubject)
	if !found {
		log.Warn("Could not map subject to a known base event type", zap.String("subject", metadata.MessageSubject))
	}

	log.Info("Event received",
		zap.Int("payload_bytes", len(rawEvent)),
		zap.String("base_type", string(eventType)),
	)

	handler, ok := r.handlers[eventType]
	if !ok {
		if r.defaultHandler != nil {
			log.Warn("No specific handler for event type, using default")
			return r.defaultHandler(ctx, eventType, metadata, rawEvent)
		}
		log.Error("No handler registered for event type")
		return nil
	}

	return handler(ctx, eventType, metadata, rawEvent)
}
