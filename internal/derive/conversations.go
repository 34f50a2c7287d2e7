package derive

import (
	"sort"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/jid"
)

// Conversations groups raw chat messages into threads keyed by
// normalized identifier. Messages whose identifier normalizes to empty
// are dropped. Within a thread, messages are ordered by timestamp
// ascending (stable for ties); the thread list is ordered by
// last-message time descending with the thread id as tiebreak, so the
// result does not depend on input order.
//
// The display name resolves through a priority chain: CRM lead name,
// contract name matched by normalized phone, last message's sender
// name, and finally the raw identifier.
func Conversations(messages []model.RawChatMessage, contracts []model.Contract, leads []model.Lead) []model.Conversation {
	if len(messages) == 0 {
		return []model.Conversation{}
	}

	grouped := make(map[string][]model.RawChatMessage)
	order := make([]string, 0)
	for _, msg := range messages {
		id := jid.Normalize(msg.ChatID)
		if id == "" {
			continue
		}
		if _, ok := grouped[id]; !ok {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], msg)
	}

	leadNames := make(map[string]string, len(leads))
	for _, lead := range leads {
		if normalized := jid.Normalize(lead.ID); normalized != "" && lead.Name != "" {
			leadNames[normalized] = lead.Name
		}
	}

	contractNames := make(map[string]string, len(contracts))
	for _, contract := range contracts {
		if phone := jid.DigitsOnly(contract.Phone); phone != "" {
			if _, ok := contractNames[phone]; !ok {
				contractNames[phone] = contract.Name
			}
		}
	}

	conversations := make([]model.Conversation, 0, len(order))
	for _, chatID := range order {
		thread := grouped[chatID]
		sort.SliceStable(thread, func(a, b int) bool {
			return thread[a].Timestamp.Before(thread[b].Timestamp)
		})
		last := thread[len(thread)-1]

		name := leadNames[chatID]
		if name == "" {
			name = contractNames[jid.PhonePart(chatID)]
		}
		if name == "" {
			name = last.SenderName
		}
		if name == "" {
			name = chatID
		}

		conversationType := model.ConversationIndividual
		if jid.IsGroup(chatID) {
			conversationType = model.ConversationGroup
		}

		mode := last.AttendanceMode
		if mode == "" {
			mode = model.AttendanceBot
		}

		chatMessages := make([]model.ChatMessage, len(thread))
		for i, msg := range thread {
			sender := model.SenderContact
			if msg.IsFromMe {
				sender = model.SenderMe
			}
			chatMessages[i] = model.ChatMessage{
				ID:        msg.MessageID,
				Text:      msg.Text,
				Sender:    sender,
				Timestamp: msg.Timestamp,
			}
		}

		conversations = append(conversations, model.Conversation{
			ID:              chatID,
			Name:            name,
			Type:            conversationType,
			LastMessage:     last.Text,
			LastMessageTime: last.Timestamp,
			Messages:        chatMessages,
			AttendanceMode:  mode,
		})
	}

	sort.Slice(conversations, func(a, b int) bool {
		if !conversations[a].LastMessageTime.Equal(conversations[b].LastMessageTime) {
			return conversations[a].LastMessageTime.After(conversations[b].LastMessageTime)
		}
		return conversations[a].ID < conversations[b].ID
	})

	return conversations
}
