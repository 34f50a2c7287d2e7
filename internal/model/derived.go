package model

import "time"

// The types in this file are projections recomputed from persisted
// records on demand. None of them is ever stored.

// Client groups the contracts sharing one name. Contact fields mirror
// the chronologically latest contract.
type Client struct {
	Name        string     `json:"name"`
	Contracts   []Contract `json:"contracts"`
	CompanyName string     `json:"companyName,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Instagram   string     `json:"instagram,omitempty"`
	Email       string     `json:"email,omitempty"`
	ClientType  string     `json:"clientType,omitempty"`
	CPF         string     `json:"cpf,omitempty"`
	CNPJ        string     `json:"cnpj,omitempty"`

	// Derived from the latest contract's package description and end
	// date. Status is empty when the contract carries no usable end date.
	Status string  `json:"status,omitempty"`
	Plan   string  `json:"plan,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// Message senders within a conversation thread.
const (
	SenderMe      = "me"
	SenderContact = "contact"
)

// Conversation kinds.
const (
	ConversationGroup      = "group"
	ConversationIndividual = "individual"
)

// ChatMessage is one message of a conversation thread, sender already
// classified.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a message thread keyed by normalized identifier.
type Conversation struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	LastMessage     string        `json:"lastMessage"`
	LastMessageTime time.Time     `json:"lastMessageTime"`
	UnreadCount     int           `json:"unreadCount"`
	Messages        []ChatMessage `json:"messages"`
	AttendanceMode  string        `json:"attendanceMode"`
}

// ReportLine is one contract's click count within a report period.
type ReportLine struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ClicksInPeriod int64  `json:"clicksInPeriod"`
}

// ReportData is the click report for a date range, optionally filtered
// to a single contract.
type ReportData struct {
	TotalClicks int64        `json:"totalClicks"`
	Links       []ReportLine `json:"links"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	FilterName  string       `json:"filterName,omitempty"`
}
