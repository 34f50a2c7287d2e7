package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

type fakeMessageRepo struct {
	saved   []model.RawChatMessage
	saveErr error
}

func (f *fakeMessageRepo) Save(ctx context.Context, msg model.RawChatMessage) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessageRepo) FindAll(ctx context.Context) ([]model.RawChatMessage, error) {
	return f.saved, nil
}

func (f *fakeMessageRepo) FindByChatID(ctx context.Context, chatIDs []string) ([]model.RawChatMessage, error) {
	return nil, nil
}

func (f *fakeMessageRepo) UpdateAttendanceMode(ctx context.Context, chatIDs []string, mode string) error {
	return nil
}

func (f *fakeMessageRepo) Close(ctx context.Context) error { return nil }

type fakeLeadRepo struct {
	saved   []model.Lead
	saveErr error
}

func (f *fakeLeadRepo) Save(ctx context.Context, lead model.Lead) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, lead)
	return nil
}

func (f *fakeLeadRepo) FindAll(ctx context.Context) ([]model.Lead, error) { return f.saved, nil }

func (f *fakeLeadRepo) UpdateStage(ctx context.Context, id, stage string) error { return nil }

func (f *fakeLeadRepo) Close(ctx context.Context) error { return nil }

type fakeWebhookLogRepo struct {
	entries   []model.WebhookLog
	appendErr error
}

func (f *fakeWebhookLogRepo) Append(ctx context.Context, entry model.WebhookLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeWebhookLogRepo) FindRecent(ctx context.Context, limit int) ([]model.WebhookLog, error) {
	return f.entries, nil
}

func (f *fakeWebhookLogRepo) Close(ctx context.Context) error { return nil }

type fakeResponder struct {
	replied []string
	err     error
}

func (f *fakeResponder) MaybeAutoReply(ctx context.Context, chatID string) error {
	f.replied = append(f.replied, chatID)
	return f.err
}

func newTestHandlers() (*Handlers, *fakeMessageRepo, *fakeLeadRepo, *fakeWebhookLogRepo) {
	messages := &fakeMessageRepo{}
	leads := &fakeLeadRepo{}
	logs := &fakeWebhookLogRepo{}
	return NewHandlers(messages, leads, logs, nil), messages, leads, logs
}

func TestHandleMessageEvent_SavesMessageAndLog(t *testing.T) {
	h, messages, _, logs := newTestHandlers()
	metadata := &model.MessageMetadata{CompanyID: "acme", Timestamp: time.Now()}

	payload := []byte(`{"messageid":"msg-1","chatid":"5511999998888@c.us","text":"Oi, tudo bem?","isfromme":false,"timestamp":"2026-08-30T10:00:00Z","sendername":"Maria"}`)

	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	require.NoError(t, err)

	require.Len(t, messages.saved, 1)
	saved := messages.saved[0]
	assert.Equal(t, "msg-1", saved.MessageID)
	assert.Equal(t, "5511999998888@c.us", saved.ChatID)
	assert.Equal(t, "acme", saved.CompanyID)
	assert.False(t, saved.Timestamp.IsZero())

	require.Len(t, logs.entries, 1)
	assert.Equal(t, string(payload), logs.entries[0].Content)
}

func TestHandleMessageEvent_MissingIDsIsFatal(t *testing.T) {
	h, messages, _, _ := newTestHandlers()
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, []byte(`{"text":"sem id"}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
	assert.False(t, apperrors.IsRetryable(err))
	assert.Empty(t, messages.saved)
}

func TestHandleMessageEvent_BadJSONIsFatal(t *testing.T) {
	h, _, _, _ := newTestHandlers()
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, []byte(`{nope`))
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
}

func TestHandleMessageEvent_DatabaseErrorIsRetryable(t *testing.T) {
	h, messages, _, _ := newTestHandlers()
	messages.saveErr = apperrors.ErrDatabase
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"messageid":"msg-1","chatid":"5511999998888@c.us","text":"oi"}`)
	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestHandleMessageEvent_LogFailureDoesNotFail(t *testing.T) {
	h, messages, _, logs := newTestHandlers()
	logs.appendErr = apperrors.ErrDatabase
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"messageid":"msg-1","chatid":"5511999998888@c.us","text":"oi"}`)
	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	assert.NoError(t, err, "log append is best effort")
	assert.Len(t, messages.saved, 1)
}

func TestHandleMessageEvent_InboundTriggersAutoReply(t *testing.T) {
	responder := &fakeResponder{}
	h := NewHandlers(&fakeMessageRepo{}, &fakeLeadRepo{}, &fakeWebhookLogRepo{}, responder)
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"messageid":"msg-1","chatid":"5511999998888@c.us","text":"oi","isfromme":false}`)
	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"5511999998888@c.us"}, responder.replied)
}

func TestHandleMessageEvent_OwnMessageSkipsAutoReply(t *testing.T) {
	responder := &fakeResponder{}
	h := NewHandlers(&fakeMessageRepo{}, &fakeLeadRepo{}, &fakeWebhookLogRepo{}, responder)
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"messageid":"msg-2","chatid":"5511999998888@c.us","text":"respondido","isfromme":true}`)
	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	require.NoError(t, err)
	assert.Empty(t, responder.replied)
}

func TestHandleMessageEvent_AutoReplyFailureDoesNotFail(t *testing.T) {
	responder := &fakeResponder{err: apperrors.ErrProvider}
	messages := &fakeMessageRepo{}
	h := NewHandlers(messages, &fakeLeadRepo{}, &fakeWebhookLogRepo{}, responder)
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"messageid":"msg-3","chatid":"5511999998888@c.us","text":"oi"}`)
	err := h.HandleMessageEvent(testCtx(t), model.V1WebhookMessages, metadata, payload)
	assert.NoError(t, err, "the message is stored either way")
	assert.Len(t, messages.saved, 1)
}

func TestHandleLeadEvent_NormalizesAndSaves(t *testing.T) {
	h, _, leads, _ := newTestHandlers()
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	payload := []byte(`{"id":"5511999998888","name":"Maria","stage":"negotiation","lastMessage":"oi"}`)
	err := h.HandleLeadEvent(testCtx(t), model.V1WebhookLeads, metadata, payload)
	require.NoError(t, err)

	require.Len(t, leads.saved, 1)
	saved := leads.saved[0]
	assert.Equal(t, "5511999998888@c.us", saved.ID, "bare numbers get the individual suffix")
	assert.Equal(t, "5511999998888", saved.Phone, "phone derived from normalized id when absent")
	assert.Equal(t, "acme", saved.CompanyID)
}

func TestHandleLeadEvent_MissingIDIsFatal(t *testing.T) {
	h, _, leads, _ := newTestHandlers()
	metadata := &model.MessageMetadata{CompanyID: "acme"}

	err := h.HandleLeadEvent(testCtx(t), model.V1WebhookLeads, metadata, []byte(`{"name":"sem id"}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
	assert.Empty(t, leads.saved)
}
