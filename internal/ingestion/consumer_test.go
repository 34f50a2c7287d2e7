package ingestion

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
)

func TestDetermineAckNakAction(t *testing.T) {
	baseDelay := 1 * time.Second
	maxDelay := 30 * time.Second
	maxDeliver := 5

	retryable := apperrors.NewRetryable(errors.New("db down"), "save failed")
	fatal := apperrors.NewFatal(errors.New("bad payload"), "unmarshal failed")

	tests := []struct {
		name         string
		err          error
		numDelivered uint64
		wantAction   AckNakAction
		wantDelay    time.Duration
	}{
		{
			name:       "success acks",
			err:        nil,
			wantAction: ActionAck,
		},
		{
			name:         "retryable first attempt naks with base delay",
			err:          retryable,
			numDelivered: 1,
			wantAction:   ActionNakDelay,
			wantDelay:    baseDelay,
		},
		{
			name:         "retryable backs off exponentially",
			err:          retryable,
			numDelivered: 3,
			wantAction:   ActionNakDelay,
			wantDelay:    4 * time.Second,
		},
		{
			name:         "retryable fourth attempt keeps doubling",
			err:          retryable,
			numDelivered: 4,
			wantAction:   ActionNakDelay,
			wantDelay:    8 * time.Second,
		},
		{
			name:         "retries exhausted terminates",
			err:          retryable,
			numDelivered: 5,
			wantAction:   ActionTerm,
		},
		{
			name:         "fatal error terminates immediately",
			err:          fatal,
			numDelivered: 1,
			wantAction:   ActionTerm,
		},
		{
			name:         "plain error treated as fatal",
			err:          errors.New("unwrapped"),
			numDelivered: 1,
			wantAction:   ActionTerm,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			metadata := &nats.MsgMetadata{NumDelivered: tc.numDelivered}
			action, delay := determineAckNakAction(tc.err, metadata, maxDeliver, baseDelay, maxDelay)
			assert.Equal(t, tc.wantAction, action)
			assert.Equal(t, tc.wantDelay, delay)
		})
	}
}

func TestDetermineAckNakAction_DelayCap(t *testing.T) {
	retryable := apperrors.NewRetryable(errors.New("db down"), "save failed")
	metadata := &nats.MsgMetadata{NumDelivered: 9}

	action, delay := determineAckNakAction(retryable, metadata, 20, 1*time.Second, 30*time.Second)
	assert.Equal(t, ActionNakDelay, action)
	assert.Equal(t, 30*time.Second, delay, "delay should be capped")
}

func TestModifySubjects(t *testing.T) {
	streamSubjects, consumerSubjects := modifySubjects([]string{"v1.webhook.messages", "v1.webhook.leads"}, "acme")

	assert.Equal(t, []string{"v1.webhook.messages.*", "v1.webhook.leads.*"}, streamSubjects)
	assert.Equal(t, []string{"v1.webhook.messages.acme", "v1.webhook.leads.acme"}, consumerSubjects)
}
