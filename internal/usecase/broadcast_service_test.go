package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/config"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func testBroadcastConfig() config.BroadcastWorkerPoolConfig {
	return config.BroadcastWorkerPoolConfig{
		PoolSize:     1,
		QueueSize:    8,
		MessageDelay: time.Millisecond,
		MaxBlock:     time.Second,
		ExpiryTime:   time.Minute,
	}
}

func newBroadcastService(t *testing.T) (*BroadcastService, *fakeSender, *fakeDrafter) {
	t.Helper()
	settings := &fakeSettingsRepo{settings: model.Settings{
		ZapiInstanceID: "inst", ZapiToken: "tok", ZapiClientToken: "ct",
	}}
	sender := newFakeSender()
	drafter := &fakeDrafter{campaign: "Aproveite a promoção!"}

	svc, err := NewBroadcastService(testBroadcastConfig(), settings, sender, drafter)
	require.NoError(t, err)
	t.Cleanup(svc.Stop)
	return svc, sender, drafter
}

func waitForDone(t *testing.T, svc *BroadcastService, id string) BroadcastStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := svc.Status(id)
		require.NoError(t, err)
		if status.Done {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("broadcast did not finish in time")
	return BroadcastStatus{}
}

func TestBroadcastService_Start(t *testing.T) {
	ctx := testCtx(t)
	svc, sender, _ := newBroadcastService(t)

	id, err := svc.Start(ctx, "Olá, temos novidades!", []string{"a@c.us", "b@c.us", "c@c.us"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	status := waitForDone(t, svc, id)
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 3, status.Sent)
	assert.Zero(t, status.Failed)
	assert.Empty(t, status.Failures)
	assert.Equal(t, 3, sender.sentCount())
}

func TestBroadcastService_Start_ContinuesPastFailures(t *testing.T) {
	ctx := testCtx(t)
	svc, sender, _ := newBroadcastService(t)
	sender.failFor["b@c.us"] = errors.New("number not on whatsapp")

	id, err := svc.Start(ctx, "Olá!", []string{"a@c.us", "b@c.us", "c@c.us"})
	require.NoError(t, err)

	status := waitForDone(t, svc, id)
	assert.Equal(t, 2, status.Sent)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, []string{"b@c.us"}, status.Failures)
	assert.Equal(t, 2, sender.sentCount())
}

func TestBroadcastService_Start_Validation(t *testing.T) {
	ctx := testCtx(t)
	svc, _, _ := newBroadcastService(t)

	_, err := svc.Start(ctx, "", []string{"a@c.us"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Start(ctx, "Olá!", nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestBroadcastService_Status_Unknown(t *testing.T) {
	svc, _, _ := newBroadcastService(t)

	_, err := svc.Status("nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBroadcastService_SettingsFailureFailsWholeRun(t *testing.T) {
	ctx := testCtx(t)
	settings := &fakeSettingsRepo{getErr: errors.New("db down")}
	sender := newFakeSender()
	svc, err := NewBroadcastService(testBroadcastConfig(), settings, sender, &fakeDrafter{})
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	id, err := svc.Start(ctx, "Olá!", []string{"a@c.us", "b@c.us"})
	require.NoError(t, err)

	status := waitForDone(t, svc, id)
	assert.Equal(t, 2, status.Failed)
	assert.Zero(t, status.Sent)
	assert.Zero(t, sender.sentCount())
}

func TestBroadcastService_GenerateMessage(t *testing.T) {
	ctx := testCtx(t)
	svc, _, drafter := newBroadcastService(t)

	text, err := svc.GenerateMessage(ctx, "Promo de Verão", "vender pacotes de fotos")
	require.NoError(t, err)
	assert.Equal(t, "Aproveite a promoção!", text)

	_, err = svc.GenerateMessage(ctx, "Promo", "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	drafter.err = errors.New("model overloaded")
	_, err = svc.GenerateMessage(ctx, "Promo", "vender")
	require.Error(t, err)
}
