package model

import (
	"strings"
	"time"
)

// EventType identifies a class of webhook event delivered over JetStream
type EventType string

// Known event types. Subjects on the wire carry a trailing company id
// token, e.g. "v1.webhook.messages.<company_id>".
const (
	V1WebhookMessages EventType = "v1.webhook.messages"
	V1WebhookLeads    EventType = "v1.webhook.leads"
)

// MapToBaseEventType maps a NATS subject (potentially carrying a trailing
// company id token) back to a known base EventType constant.
// It returns the mapped EventType and true, or "" and false when the
// subject matches nothing we know.
func MapToBaseEventType(input string) (EventType, bool) {
	switch EventType(input) {
	case V1WebhookMessages, V1WebhookLeads:
		return EventType(input), true
	}

	lastDotIndex := strings.LastIndex(input, ".")
	if lastDotIndex <= 0 {
		return "", false
	}

	base := input[:lastDotIndex]
	switch EventType(base) {
	case V1WebhookMessages, V1WebhookLeads:
		return EventType(base), true
	}

	return "", false
}

// MessageMetadata carries JetStream delivery metadata alongside an event
type MessageMetadata struct {
	ConsumerSequence uint64
	StreamSequence   uint64
	NumDelivered     uint64
	NumPending       uint64
	Timestamp        time.Time
	Stream           string
	Consumer         string
	MessageID        string
	MessageSubject   string
	CompanyID        string
}
