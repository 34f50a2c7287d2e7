package ingestion

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/jid"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// AutoResponder follows up on an inbound message for threads that are
// still handled by the bot.
type AutoResponder interface {
	MaybeAutoReply(ctx context.Context, chatID string) error
}

// Handlers persists webhook events. Message events land in the raw
// message table plus the webhook log; lead events upsert CRM cards.
type Handlers struct {
	messages  storage.MessageRepo
	leads     storage.LeadRepo
	logs      storage.WebhookLogRepo
	responder AutoResponder
}

// NewHandlers creates the event handler set. The responder may be nil,
// in which case inbound messages are stored without a follow-up.
func NewHandlers(messages storage.MessageRepo, leads storage.LeadRepo, logs storage.WebhookLogRepo, responder AutoResponder) *Handlers {
	return &Handlers{
		messages:  messages,
		leads:     leads,
		logs:      logs,
		responder: responder,
	}
}

// RegisterAll wires every known event type into the router
func (h *Handlers) RegisterAll(router *Router) {
	router.Register(model.V1WebhookMessages, h.HandleMessageEvent)
	router.Register(model.V1WebhookLeads, h.HandleLeadEvent)
}

// HandleMessageEvent stores one inbound or outbound chat message and
// appends the raw payload to the webhook log
func (h *Handlers) HandleMessageEvent(ctx context.Context, eventType model.EventType, metadata *model.MessageMetadata, rawEvent []byte) error {
	log := logger.FromContext(ctx)

	var msg model.RawChatMessage
	if err := json.Unmarshal(rawEvent, &msg); err != nil {
		return apperrors.NewFatal(err, "failed to unmarshal message event payload")
	}
	if msg.MessageID == "" || msg.ChatID == "" {
		return apperrors.NewFatal(apperrors.ErrBadRequest, "message event missing messageid or chatid")
	}

	msg.CompanyID = metadata.CompanyID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = metadata.Timestamp
	}

	if err := h.messages.Save(ctx, msg); err != nil {
		return wrapRepoError(err, "failed to save chat message")
	}

	// Log append is best effort, the message itself is already durable
	entry := model.WebhookLog{
		Timestamp: utils.Now(),
		Content:   string(rawEvent),
	}
	if err := h.logs.Append(ctx, entry); err != nil {
		log.Warn("Failed to append webhook log entry", zap.Error(err))
	}

	// Follow up on inbound messages while the thread is in bot mode.
	// The message itself is stored either way, so a failed draft or
	// send is not worth a redelivery.
	if h.responder != nil && !msg.IsFromMe {
		if err := h.responder.MaybeAutoReply(ctx, msg.ChatID); err != nil {
			log.Warn("Auto-reply failed", zap.String("chat_id", msg.ChatID), zap.Error(err))
		}
	}

	log.Debug("Stored chat message", zap.String("message_id", msg.MessageID), zap.String("chat_id", msg.ChatID))
	return nil
}

// HandleLeadEvent upserts one CRM lead card keyed by normalized chat id
func (h *Handlers) HandleLeadEvent(ctx context.Context, eventType model.EventType, metadata *model.MessageMetadata, rawEvent []byte) error {
	log := logger.FromContext(ctx)

	var lead model.Lead
	if err := json.Unmarshal(rawEvent, &lead); err != nil {
		return apperrors.NewFatal(err, "failed to unmarshal lead event payload")
	}
	if lead.ID == "" {
		return apperrors.NewFatal(apperrors.ErrBadRequest, "lead event missing id")
	}

	lead.ID = jid.Normalize(lead.ID)
	if lead.Phone == "" {
		lead.Phone = jid.PhonePart(lead.ID)
	}
	lead.CompanyID = metadata.CompanyID

	if err := h.leads.Save(ctx, lead); err != nil {
		return wrapRepoError(err, "failed to save lead")
	}

	log.Debug("Upserted lead", zap.String("lead_id", lead.ID), zap.String("stage", lead.Stage))
	return nil
}

// wrapRepoError classifies repository failures for the ack decision:
// database trouble is worth a redelivery, everything else is terminal
func wrapRepoError(err error, message string) error {
	if errors.Is(err, apperrors.ErrDatabase) {
		return apperrors.NewRetryable(err, message)
	}
	return apperrors.NewFatal(err, message)
}
