package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func newChatService() (*ChatService, *fakeMessageRepo, *fakeLeadRepo, *fakeSettingsRepo, *fakeSender) {
	svc, messages, leads, settings, sender, _ := newChatServiceWithDrafter()
	return svc, messages, leads, settings, sender
}

func newChatServiceWithDrafter() (*ChatService, *fakeMessageRepo, *fakeLeadRepo, *fakeSettingsRepo, *fakeSender, *fakeDrafter) {
	messages := &fakeMessageRepo{}
	contracts := newFakeContractRepo()
	leads := newFakeLeadRepo()
	settings := &fakeSettingsRepo{settings: model.Settings{
		ZapiInstanceID: "inst", ZapiToken: "tok", ZapiClientToken: "ct",
	}}
	sender := newFakeSender()
	drafter := &fakeDrafter{reply: "Olá, como posso ajudar?"}
	return NewChatService(messages, contracts, leads, settings, sender, drafter), messages, leads, settings, sender, drafter
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender := newChatService()

	err := svc.SendMessage(ctx, "5511999998888", "Olá!")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "5511999998888", sender.sent[0].chatID)

	stored, err := messages.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "5511999998888@c.us", stored[0].ChatID)
	assert.True(t, stored[0].IsFromMe)
	assert.Equal(t, model.AttendanceHuman, stored[0].AttendanceMode)
	assert.Equal(t, "company_test", stored[0].CompanyID)
}

func TestChatService_SendMessage_EmptyText(t *testing.T) {
	ctx := testCtx(t)
	svc, _, _, _, sender := newChatService()

	err := svc.SendMessage(ctx, "5511999998888", "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Zero(t, sender.sentCount())
}

func TestChatService_SendMessage_ProviderFailure(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender := newChatService()
	sender.failFor["5511999998888"] = errors.New("z-api unavailable")

	err := svc.SendMessage(ctx, "5511999998888", "Olá!")
	require.Error(t, err)

	stored, _ := messages.FindAll(ctx)
	assert.Empty(t, stored)
}

func TestChatService_SendMessage_LocalSaveFailureIsSwallowed(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, _ := newChatService()
	messages.saveErr = errors.New("disk full")

	err := svc.SendMessage(ctx, "5511999998888", "Olá!")
	assert.NoError(t, err)
}

func TestChatService_Conversations(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, leads, _, _ := newChatService()

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "oi", Timestamp: base},
		{MessageID: "m2", ChatID: "5511999998888", Text: "tudo bem?", Timestamp: base.Add(time.Minute)},
	}
	leads.leads["5511999998888@c.us"] = model.Lead{ID: "5511999998888@c.us", Name: "Maria"}

	convos, err := svc.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convos, 1)
	assert.Equal(t, "5511999998888@c.us", convos[0].ID)
	assert.Equal(t, "Maria", convos[0].Name)
	assert.Len(t, convos[0].Messages, 2)
	assert.Equal(t, "tudo bem?", convos[0].LastMessage)
}

func TestChatService_SetAttendanceMode(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, _ := newChatService()

	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", AttendanceMode: model.AttendanceBot},
		{MessageID: "m2", ChatID: "5511999998888", AttendanceMode: model.AttendanceBot},
		{MessageID: "m3", ChatID: "5511777776666@c.us", AttendanceMode: model.AttendanceBot},
	}

	err := svc.SetAttendanceMode(ctx, "5511999998888", model.AttendanceHuman)
	require.NoError(t, err)

	stored, _ := messages.FindAll(ctx)
	assert.Equal(t, model.AttendanceHuman, stored[0].AttendanceMode)
	assert.Equal(t, model.AttendanceHuman, stored[1].AttendanceMode)
	assert.Equal(t, model.AttendanceBot, stored[2].AttendanceMode)
}

func TestChatService_SetAttendanceMode_InvalidMode(t *testing.T) {
	ctx := testCtx(t)
	svc, _, _, _, _ := newChatService()

	err := svc.SetAttendanceMode(ctx, "5511999998888", "paused")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestChatService_SetAttendanceMode_UnknownChat(t *testing.T) {
	ctx := testCtx(t)
	svc, _, _, _, _ := newChatService()

	err := svc.SetAttendanceMode(ctx, "5511999998888", model.AttendanceBot)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChatService_MaybeAutoReply_BotMode(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, leads, _, sender, _ := newChatServiceWithDrafter()

	leads.leads["5511999998888@c.us"] = model.Lead{ID: "5511999998888@c.us", Name: "Maria"}
	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "Oi!", AttendanceMode: model.AttendanceBot},
	}

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "5511999998888@c.us", sender.sent[0].chatID)
	assert.Equal(t, "Olá, como posso ajudar?", sender.sent[0].text)

	// The local echo keeps the thread in bot mode
	stored, _ := messages.FindAll(ctx)
	require.Len(t, stored, 2)
	assert.True(t, stored[1].IsFromMe)
	assert.Equal(t, model.AttendanceBot, stored[1].AttendanceMode)
}

func TestChatService_MaybeAutoReply_UnsetModeDefaultsToBot(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender, _ := newChatServiceWithDrafter()

	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "Oi!"},
	}

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.NoError(t, err)
	assert.Equal(t, 1, sender.sentCount())
}

func TestChatService_MaybeAutoReply_HumanModeSkips(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender, _ := newChatServiceWithDrafter()

	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "Oi!", AttendanceMode: model.AttendanceHuman},
	}

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.NoError(t, err)
	assert.Zero(t, sender.sentCount())
}

func TestChatService_MaybeAutoReply_LastFromMeSkips(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender, _ := newChatServiceWithDrafter()

	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "Oi!", AttendanceMode: model.AttendanceBot},
		{MessageID: "m2", ChatID: "5511999998888@c.us", Text: "Olá!", IsFromMe: true, AttendanceMode: model.AttendanceBot},
	}

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.NoError(t, err)
	assert.Zero(t, sender.sentCount())
}

func TestChatService_MaybeAutoReply_UnknownChatSkips(t *testing.T) {
	ctx := testCtx(t)
	svc, _, _, _, sender, _ := newChatServiceWithDrafter()

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.NoError(t, err)
	assert.Zero(t, sender.sentCount())
}

func TestChatService_MaybeAutoReply_DrafterFailure(t *testing.T) {
	ctx := testCtx(t)
	svc, messages, _, _, sender, drafter := newChatServiceWithDrafter()
	drafter.err = errors.New("model unavailable")

	messages.messages = []model.RawChatMessage{
		{MessageID: "m1", ChatID: "5511999998888@c.us", Text: "Oi!", AttendanceMode: model.AttendanceBot},
	}

	err := svc.MaybeAutoReply(ctx, "5511999998888@c.us")
	require.Error(t, err)
	assert.Zero(t, sender.sentCount())
}
