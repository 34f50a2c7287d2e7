package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/ai"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/derive"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/whatsapp"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/jid"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// ChatService serves the inbox: derived conversation threads, outbound
// sends through the messaging provider, the attendance mode switch and
// the drafted auto-reply for threads left in bot mode.
type ChatService struct {
	messages  storage.MessageRepo
	contracts storage.ContractRepo
	leads     storage.LeadRepo
	settings  storage.SettingsRepo
	sender    whatsapp.Sender
	drafter   ai.Drafter
}

// NewChatService creates a chat service
func NewChatService(messages storage.MessageRepo, contracts storage.ContractRepo, leads storage.LeadRepo, settings storage.SettingsRepo, sender whatsapp.Sender, drafter ai.Drafter) *ChatService {
	return &ChatService{
		messages:  messages,
		contracts: contracts,
		leads:     leads,
		settings:  settings,
		sender:    sender,
		drafter:   drafter,
	}
}

// RawMessages returns the flat stored message list.
func (s *ChatService) RawMessages(ctx context.Context) ([]model.RawChatMessage, error) {
	return s.messages.FindAll(ctx)
}

// Conversations returns the derived thread list: messages grouped by
// normalized chat id, names resolved against leads and contracts.
func (s *ChatService) Conversations(ctx context.Context) ([]model.Conversation, error) {
	messages, err := s.messages.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contracts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	leads, err := s.leads.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return derive.Conversations(messages, contracts, leads), nil
}

// SendMessage sends an outbound text through the messaging provider
// using the stored credentials, then records it locally so the thread
// reflects it immediately. A manual send puts the thread in human mode.
func (s *ChatService) SendMessage(ctx context.Context, chatID, text string) error {
	return s.send(ctx, chatID, text, model.AttendanceHuman)
}

func (s *ChatService) send(ctx context.Context, chatID, text, mode string) error {
	log := logger.FromContext(ctx)

	if text == "" {
		return fmt.Errorf("%w: message text is required", apperrors.ErrBadRequest)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	creds := whatsapp.Credentials{
		InstanceID:  settings.ZapiInstanceID,
		Token:       settings.ZapiToken,
		ClientToken: settings.ZapiClientToken,
	}

	if err := s.sender.SendText(ctx, creds, chatID, text); err != nil {
		return err
	}

	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	outbound := model.RawChatMessage{
		MessageID:      uuid.NewString(),
		ChatID:         jid.Normalize(chatID),
		Text:           text,
		IsFromMe:       true,
		Timestamp:      utils.Now(),
		AttendanceMode: mode,
		CompanyID:      companyID,
	}
	if err := s.messages.Save(ctx, outbound); err != nil {
		// The provider accepted the send, losing the local echo is recoverable
		log.Warn("Sent message but failed to store local copy", zap.String("chat_id", chatID), zap.Error(err))
	}

	return nil
}

// MaybeAutoReply drafts and sends a reply for a thread still in bot
// mode. Threads in human mode, threads whose last message is our own
// and unknown chat ids are all silently skipped; only drafting or
// sending failures come back as errors.
func (s *ChatService) MaybeAutoReply(ctx context.Context, chatID string) error {
	log := logger.FromContext(ctx)

	target := jid.Normalize(chatID)
	if target == "" {
		return fmt.Errorf("%w: chat id is required", apperrors.ErrBadRequest)
	}

	variants := []string{target}
	if chatID != target {
		variants = append(variants, chatID)
	}
	thread, err := s.messages.FindByChatID(ctx, variants)
	if err != nil {
		return err
	}
	if len(thread) == 0 {
		return nil
	}

	// The view treats an unset mode as bot, so the auto-reply does too.
	last := thread[len(thread)-1]
	mode := last.AttendanceMode
	if mode == "" {
		mode = model.AttendanceBot
	}
	if last.IsFromMe || mode != model.AttendanceBot {
		return nil
	}

	history := make([]model.ChatMessage, 0, len(thread))
	for _, msg := range thread {
		sender := model.SenderContact
		if msg.IsFromMe {
			sender = model.SenderMe
		}
		history = append(history, model.ChatMessage{
			ID:        msg.MessageID,
			Text:      msg.Text,
			Sender:    sender,
			Timestamp: msg.Timestamp,
		})
	}

	draft, err := s.drafter.DraftReply(ctx, s.contactName(ctx, target), history)
	if err != nil {
		return err
	}

	log.Info("Auto-replying to bot-mode thread", zap.String("chat_id", target))
	return s.send(ctx, target, draft, model.AttendanceBot)
}

// contactName resolves a display name for the chat from the CRM cards,
// falling back to the bare phone part.
func (s *ChatService) contactName(ctx context.Context, chatID string) string {
	leads, err := s.leads.FindAll(ctx)
	if err == nil {
		for _, lead := range leads {
			if jid.Normalize(lead.ID) == chatID && lead.Name != "" {
				return lead.Name
			}
		}
	}
	return jid.PhonePart(chatID)
}

// SetAttendanceMode switches a thread between bot and human handling.
// The mode lives on the stored messages (the view reads the latest
// one), so every known raw variant of the chat id gets updated.
func (s *ChatService) SetAttendanceMode(ctx context.Context, chatID, mode string) error {
	if mode != model.AttendanceBot && mode != model.AttendanceHuman {
		return fmt.Errorf("%w: invalid attendance mode %q", apperrors.ErrBadRequest, mode)
	}

	target := jid.Normalize(chatID)
	if target == "" {
		return fmt.Errorf("%w: chat id is required", apperrors.ErrBadRequest)
	}

	messages, err := s.messages.FindAll(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var variants []string
	for _, msg := range messages {
		if jid.Normalize(msg.ChatID) == target && !seen[msg.ChatID] {
			seen[msg.ChatID] = true
			variants = append(variants, msg.ChatID)
		}
	}
	if len(variants) == 0 {
		return fmt.Errorf("%w: no conversation found for %s", apperrors.ErrNotFound, target)
	}

	return s.messages.UpdateAttendanceMode(ctx, variants, mode)
}
