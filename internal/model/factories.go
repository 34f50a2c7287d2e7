package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Test factories. Each returns an instance filled with plausible fake
// data; pass an override to pin fields a test cares about.

func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// WorkMaterialsJSON marshals a work-material list for the jsonb column.
func WorkMaterialsJSON(materials []WorkMaterial) datatypes.JSON {
	bytes, _ := json.Marshal(materials)
	return datatypes.JSON(bytes)
}

// NewContract creates a Contract with fake data.
func NewContract(override ...*Contract) *Contract {
	start := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
	c := &Contract{
		ID:          uuid.NewString(),
		Name:        gofakeit.Name(),
		CompanyName: gofakeit.Company(),
		OriginalURL: gofakeit.URL(),
		Clicks:      int64(gofakeit.Number(0, 500)),
		StartDate:   start.Format("2006-01-02"),
		EndDate:     start.AddDate(0, 1, 0).Format("2006-01-02"),
		Phone:       fmt.Sprintf("55%d", gofakeit.Number(10999990000, 11999999999)),
		Instagram:   "@" + gofakeit.Username(),
		Email:       gofakeit.Email(),
		PackageInfo: fmt.Sprintf("Básico: stories (R$ %d,00)", gofakeit.Number(100, 999)),
		ClientType:  ClientTypeCliente,
		CompanyID:   "company-test",
	}
	if len(override) > 0 && override[0] != nil {
		o := override[0]
		if o.ID != "" {
			c.ID = o.ID
		}
		if o.Name != "" {
			c.Name = o.Name
		}
		if o.StartDate != "" {
			c.StartDate = o.StartDate
		}
		if o.EndDate != "" {
			c.EndDate = o.EndDate
		}
		if o.Phone != "" {
			c.Phone = o.Phone
		}
		if o.PackageInfo != "" {
			c.PackageInfo = o.PackageInfo
		}
		if o.CompanyID != "" {
			c.CompanyID = o.CompanyID
		}
		c.IsArchived = o.IsArchived
	}
	return c
}

// NewRawChatMessage creates a RawChatMessage with fake data.
func NewRawChatMessage(override ...*RawChatMessage) *RawChatMessage {
	m := &RawChatMessage{
		MessageID:      uuid.NewString(),
		ChatID:         fmt.Sprintf("55%d@c.us", gofakeit.Number(10999990000, 11999999999)),
		Text:           gofakeit.Sentence(6),
		IsFromMe:       gofakeit.Bool(),
		Timestamp:      gofakeit.DateRange(time.Now().Add(-48*time.Hour), time.Now()),
		SenderName:     gofakeit.FirstName(),
		AttendanceMode: AttendanceBot,
		CompanyID:      "company-test",
	}
	if len(override) > 0 && override[0] != nil {
		o := override[0]
		if o.MessageID != "" {
			m.MessageID = o.MessageID
		}
		if o.ChatID != "" {
			m.ChatID = o.ChatID
		}
		if o.Text != "" {
			m.Text = o.Text
		}
		if !o.Timestamp.IsZero() {
			m.Timestamp = o.Timestamp
		}
		if o.SenderName != "" {
			m.SenderName = o.SenderName
		}
		if o.AttendanceMode != "" {
			m.AttendanceMode = o.AttendanceMode
		}
		m.IsFromMe = o.IsFromMe
	}
	return m
}

// NewLead creates a Lead with fake data.
func NewLead(override ...*Lead) *Lead {
	phone := fmt.Sprintf("55%d", gofakeit.Number(10999990000, 11999999999))
	l := &Lead{
		ID:        phone + "@c.us",
		Name:      gofakeit.Name(),
		Phone:     phone,
		Stage:     "new",
		CompanyID: "company-test",
	}
	if len(override) > 0 && override[0] != nil {
		o := override[0]
		if o.ID != "" {
			l.ID = o.ID
		}
		if o.Name != "" {
			l.Name = o.Name
		}
		if o.Phone != "" {
			l.Phone = o.Phone
		}
		if o.Stage != "" {
			l.Stage = o.Stage
		}
	}
	return l
}

// NewTransaction creates a FinancialTransaction with fake data.
func NewTransaction(override ...*FinancialTransaction) *FinancialTransaction {
	tx := &FinancialTransaction{
		ID:          uuid.NewString(),
		Date:        gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()).Format("2006-01-02"),
		Description: gofakeit.Sentence(4),
		Type:        TransactionReceita,
		Amount:      gofakeit.Price(50, 2000),
		CompanyID:   "company-test",
	}
	if len(override) > 0 && override[0] != nil {
		o := override[0]
		if o.ID != "" {
			tx.ID = o.ID
		}
		if o.Type != "" {
			tx.Type = o.Type
		}
		if o.Amount != 0 {
			tx.Amount = o.Amount
		}
		if o.RelatedContractID != "" {
			tx.RelatedContractID = o.RelatedContractID
		}
	}
	return tx
}
