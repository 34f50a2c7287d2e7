package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/config"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/jetstream"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// AckNakAction represents the decision made after processing a message
type AckNakAction int

const (
	ActionAck      AckNakAction = iota // processed successfully, ACK it
	ActionNakDelay                     // retryable error, NAK with backoff delay
	ActionTerm                         // fatal error or retries exhausted, TERM it
)

// determineAckNakAction decides the fate of a message based on the
// processing error and delivery metadata. It returns the action and the
// NAK delay when one applies.
func determineAckNakAction(
	processingErr error,
	metadata *nats.MsgMetadata,
	maxDeliver int,
	nakBaseDelay time.Duration,
	nakMaxDelay time.Duration,
) (action AckNakAction, delay time.Duration) {

	if processingErr == nil {
		return ActionAck, 0
	}

	isRetryable := apperrors.IsRetryable(processingErr)
	numDelivered := metadata.NumDelivered

	if numDelivered >= uint64(maxDeliver) || !isRetryable {
		return ActionTerm, 0
	}

	attempt := numDelivered
	delay = nakBaseDelay
	if attempt > 1 {
		delay = nakBaseDelay * (1 << (attempt - 1))
	}
	if delay > nakMaxDelay {
		delay = nakMaxDelay
	}
	return ActionNakDelay, delay
}

// RealtimeConsumer subscribes to the webhook event stream and feeds
// events through the router
type RealtimeConsumer struct {
	client    jetstream.ClientInterface
	router    *Router
	cfg       config.ConsumerNatsConfig
	companyID string
	sub       *nats.Subscription
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRealtimeConsumer creates a consumer for the webhook event stream
func NewRealtimeConsumer(client jetstream.ClientInterface, router *Router, cfg config.ConsumerNatsConfig, companyID string) *RealtimeConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	loggerWithTenant := logger.Log.With(zap.String("company_id", companyID))
	ctx = logger.WithLogger(ctx, loggerWithTenant)
	ctx = tenant.WithCompanyID(ctx, companyID)

	return &RealtimeConsumer{
		client:    client,
		router:    router,
		cfg:       cfg,
		companyID: companyID,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func modifySubjects(subjects []string, companyID string) (streamSubjects, consumerSubjects []string) {
	// Stream subjects carry a wildcard company token, consumer subjects
	// are pinned to this tenant
	for _, subject := range subjects {
		streamSubjects = append(streamSubjects, fmt.Sprintf("%s.*", subject))
		consumerSubjects = append(consumerSubjects, fmt.Sprintf("%s.%s", subject, companyID))
	}
	return streamSubjects, consumerSubjects
}

// Setup ensures the stream and durable consumer exist
func (c *RealtimeConsumer) Setup() error {
	log := logger.FromContext(c.ctx)
	log.Info("Setting up RealtimeConsumer...", zap.String("stream", c.cfg.Stream), zap.String("consumer", c.cfg.Consumer))

	maxAgeRetention := time.Duration(c.cfg.MaxAge*24) * time.Hour
	streamSubjects, consumerSubjects := modifySubjects(c.cfg.SubjectList, c.companyID)

	streamCfg := &nats.StreamConfig{
		Name:      c.cfg.Stream,
		Subjects:  streamSubjects,
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    maxAgeRetention,
	}

	if err := c.client.SetupStream(c.ctx, streamCfg); err != nil {
		return fmt.Errorf("failed to setup realtime stream '%s': %w", c.cfg.Stream, err)
	}

	consumerCfg := &nats.ConsumerConfig{
		Durable:        c.cfg.Consumer,
		DeliverGroup:   c.cfg.QueueGroup,
		FilterSubjects: consumerSubjects,
		AckPolicy:      nats.AckExplicitPolicy,
		DeliverSubject: nats.NewInbox(),
		MaxDeliver:     c.cfg.MaxDeliver,
		AckWait:        30 * time.Second,
		MaxAckPending:  1000,
		ReplayPolicy:   nats.ReplayInstantPolicy,
		DeliverPolicy:  nats.DeliverAllPolicy,
	}

	if err := c.client.SetupConsumer(c.ctx, c.cfg.Stream, consumerCfg); err != nil {
		return fmt.Errorf("failed to setup realtime consumer '%s' for stream '%s': %w", c.cfg.Consumer, c.cfg.Stream, err)
	}

	log.Info("RealtimeConsumer setup complete")
	return nil
}

// Start subscribes to the stream
func (c *RealtimeConsumer) Start() error {
	log := logger.FromContext(c.ctx)
	log.Info("Starting RealtimeConsumer subscription...", zap.String("stream", c.cfg.Stream), zap.String("consumer", c.cfg.Consumer))

	sub, err := c.client.Subscribe("v1.webhook.>", c.cfg.Consumer, c.cfg.QueueGroup, c.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe realtime consumer '%s': %w", c.cfg.Consumer, err)
	}
	c.sub = sub
	log.Info("RealtimeConsumer subscribed successfully")
	return nil
}

// Stop drains the subscription and cancels the consumer context
func (c *RealtimeConsumer) Stop() {
	log := logger.FromContext(c.ctx)
	log.Info("Stopping RealtimeConsumer...", zap.String("stream", c.cfg.Stream), zap.String("consumer", c.cfg.Consumer))
	if c.sub != nil {
		if err := c.sub.Drain(); err != nil {
			log.Error("Error draining realtime subscription", zap.Error(err))
		}
	}
	if c.cancel != nil {
		c.cancel()
	}
	log.Info("RealtimeConsumer stopped")
}

// handleMessage is the message callback: route, then ack, NAK with
// delay, or terminate based on the outcome
func (c *RealtimeConsumer) handleMessage(msg *nats.Msg) {
	startTime := utils.Now()

	eventTypeStr := msg.Subject
	if et, ok := model.MapToBaseEventType(msg.Subject); ok {
		eventTypeStr = string(et)
	}

	defer func() {
		observer.ObserveEventProcessingDuration(eventTypeStr, c.companyID, time.Since(startTime))

		if r := recover(); r != nil {
			log := logger.FromContext(c.ctx)
			log.Error("[panic] Recovered from panic in message handler",
				zap.Any("panic", r),
				zap.String("subject", msg.Subject),
				zap.Duration("duration", time.Since(startTime)),
				zap.Stack("stack"),
			)
			observer.IncEventsFailed(eventTypeStr, c.companyID)
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error("Failed to NAK message after panic", zap.Error(nakErr))
			}
		}
	}()

	msgCtx := c.ctx
	log := logger.FromContext(msgCtx)

	var msgID string
	if msg.Header != nil {
		msgID = msg.Header.Get("Nats-Msg-Id")
	}

	metadata, err := msg.Metadata()
	if err != nil {
		log.Error("Failed to read message metadata", zap.Error(err))
		if nakErr := msg.Nak(); nakErr != nil {
			log.Error("Failed to NAK message", zap.Error(nakErr))
		}
		return
	}
	if msgID == "" {
		msgID = fmt.Sprintf("msg-%d", metadata.Sequence.Stream)
	}

	internalMetadata := &model.MessageMetadata{
		StreamSequence:   metadata.Sequence.Stream,
		ConsumerSequence: metadata.Sequence.Consumer,
		NumDelivered:     metadata.NumDelivered,
		NumPending:       metadata.NumPending,
		Timestamp:        metadata.Timestamp,
		Stream:           metadata.Stream,
		Consumer:         metadata.Consumer,
		MessageID:        msgID,
		MessageSubject:   msg.Subject,
		CompanyID:        c.companyID,
	}

	observer.IncEventsReceived(eventTypeStr, c.companyID)

	msgCtx = logger.WithLogger(msgCtx, log.With(
		zap.String("nats_message_id", msgID),
		zap.Uint64("stream_sequence", internalMetadata.StreamSequence),
		zap.String("subject", msg.Subject),
	))

	processingErr := c.router.Route(msgCtx, internalMetadata, msg.Data)

	enhancedLog := logger.FromContext(msgCtx)
	action, nakDelay := determineAckNakAction(processingErr, metadata, c.cfg.MaxDeliver, c.cfg.NakBaseDelay, c.cfg.NakMaxDelay)

	switch action {
	case ActionAck:
		enhancedLog.Info("Successfully processed message", zap.Duration("duration", time.Since(startTime)))
		observer.IncEventsProcessed(eventTypeStr, c.companyID)
		if ackErr := msg.Ack(); ackErr != nil {
			enhancedLog.Error("Failed to ACK message after successful processing", zap.Error(ackErr))
		}

	case ActionNakDelay:
		enhancedLog.Info("NAKing message with delay for redelivery",
			zap.Error(processingErr),
			zap.Uint64("num_delivered", metadata.NumDelivered),
			zap.Int("max_deliver", c.cfg.MaxDeliver),
			zap.Duration("nak_delay", nakDelay),
		)
		observer.IncEventsFailed(eventTypeStr, c.companyID)
		if nakErr := msg.NakWithDelay(nakDelay); nakErr != nil {
			enhancedLog.Error("Failed to NAK message with delay", zap.Error(nakErr))
		}

	case ActionTerm:
		reason := "max delivery attempts reached"
		if !apperrors.IsRetryable(processingErr) {
			reason = "fatal error encountered"
		}
		enhancedLog.Warn("Terminating message: "+reason,
			zap.Error(processingErr),
			zap.Uint64("num_delivered", metadata.NumDelivered),
			zap.Int("max_deliver", c.cfg.MaxDeliver),
		)
		observer.IncEventsFailed(eventTypeStr, c.companyID)
		if termErr := msg.Term(); termErr != nil {
			enhancedLog.Error("Failed to TERM message", zap.Error(termErr))
		}
	}
}
