package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/ai"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/config"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/whatsapp"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

// BroadcastStatus is the live progress of one campaign run.
type BroadcastStatus struct {
	ID         string    `json:"id"`
	Total      int       `json:"total"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Done       bool      `json:"done"`
	Failures   []string  `json:"failures"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// BroadcastService runs bulk sends through a single-worker pool so
// messages leave one at a time, with a pause between sends to stay
// under provider rate limits. Individual failures are recorded and the
// run continues; nothing is retried.
type BroadcastService struct {
	pool     *ants.PoolWithFunc
	settings storage.SettingsRepo
	sender   whatsapp.Sender
	drafter  ai.Drafter
	cfg      config.BroadcastWorkerPoolConfig

	mu   sync.RWMutex
	runs map[string]*BroadcastStatus
}

type broadcastJob struct {
	ctx        context.Context
	id         string
	message    string
	contactIDs []string
}

// NewBroadcastService creates the broadcast service and its worker pool.
func NewBroadcastService(cfg config.BroadcastWorkerPoolConfig, settings storage.SettingsRepo, sender whatsapp.Sender, drafter ai.Drafter) (*BroadcastService, error) {
	s := &BroadcastService{
		settings: settings,
		sender:   sender,
		drafter:  drafter,
		cfg:      cfg,
		runs:     make(map[string]*BroadcastStatus),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		job, ok := i.(broadcastJob)
		if !ok {
			logger.Log.Error("Invalid broadcast job type received", zap.Any("data", i))
			return
		}
		s.run(job)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(err interface{}) {
			logger.Log.Error("Panic recovered in broadcast worker", zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create broadcast worker pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

// Stop releases the worker pool.
func (s *BroadcastService) Stop() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// GenerateMessage drafts a campaign body from its name and goal.
func (s *BroadcastService) GenerateMessage(ctx context.Context, campaignName, goal string) (string, error) {
	if goal == "" {
		return "", fmt.Errorf("%w: campaign goal is required", apperrors.ErrBadRequest)
	}
	return s.drafter.DraftCampaign(ctx, campaignName, goal)
}

// Start queues a campaign and returns its run id. The run proceeds in
// the background; progress is available through Status.
func (s *BroadcastService) Start(ctx context.Context, message string, contactIDs []string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("%w: message is required", apperrors.ErrBadRequest)
	}
	if len(contactIDs) == 0 {
		return "", fmt.Errorf("%w: at least one contact is required", apperrors.ErrBadRequest)
	}

	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	id := uuid.NewString()
	status := &BroadcastStatus{
		ID:        id,
		Total:     len(contactIDs),
		Failures:  []string{},
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.runs[id] = status
	s.mu.Unlock()

	// The request context dies with the HTTP call; the job carries its
	// own context with the tenant and logger re-attached
	jobCtx := tenant.WithCompanyID(context.Background(), companyID)
	jobCtx = logger.WithLogger(jobCtx, logger.FromContext(ctx).With(zap.String("broadcast_id", id)))

	err = s.pool.Invoke(broadcastJob{
		ctx:        jobCtx,
		id:         id,
		message:    message,
		contactIDs: contactIDs,
	})
	if err != nil {
		s.mu.Lock()
		delete(s.runs, id)
		s.mu.Unlock()
		if errors.Is(err, ants.ErrPoolOverload) {
			return "", apperrors.NewRetryable(err, "broadcast pool overload")
		}
		return "", fmt.Errorf("failed to queue broadcast: %w", err)
	}

	observer.SetBroadcastQueueLength(s.pool.Waiting())
	return id, nil
}

// Status returns a snapshot of one run's progress.
func (s *BroadcastService) Status(id string) (BroadcastStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.runs[id]
	if !ok {
		return BroadcastStatus{}, fmt.Errorf("%w: broadcast %s not found", apperrors.ErrNotFound, id)
	}

	snapshot := *status
	snapshot.Failures = append([]string{}, status.Failures...)
	return snapshot, nil
}

func (s *BroadcastService) run(job broadcastJob) {
	log := logger.FromContext(job.ctx)
	companyID, _ := tenant.FromContext(job.ctx)

	settings, err := s.settings.Get(job.ctx)
	if err != nil {
		log.Error("Broadcast aborted, failed to load settings", zap.Error(err))
		s.finish(job.id, func(st *BroadcastStatus) {
			st.Failed = st.Total
			for _, contactID := range job.contactIDs {
				st.Failures = append(st.Failures, contactID)
			}
		})
		return
	}
	creds := whatsapp.Credentials{
		InstanceID:  settings.ZapiInstanceID,
		Token:       settings.ZapiToken,
		ClientToken: settings.ZapiClientToken,
	}

	log.Info("Broadcast started", zap.Int("total", len(job.contactIDs)))

	for i, contactID := range job.contactIDs {
		sendStart := time.Now()
		err := s.sender.SendText(job.ctx, creds, contactID, job.message)
		observer.ObserveBroadcastSendDuration(companyID, time.Since(sendStart))

		s.mu.Lock()
		if st, ok := s.runs[job.id]; ok {
			if err != nil {
				st.Failed++
				st.Failures = append(st.Failures, contactID)
			} else {
				st.Sent++
			}
		}
		s.mu.Unlock()

		if err != nil {
			observer.IncBroadcastMessage(companyID, "failed")
			log.Warn("Broadcast send failed, continuing", zap.String("contact_id", contactID), zap.Error(err))
		} else {
			observer.IncBroadcastMessage(companyID, "sent")
		}

		if i < len(job.contactIDs)-1 {
			time.Sleep(s.cfg.MessageDelay)
		}
	}

	s.finish(job.id, nil)
	log.Info("Broadcast finished")
}

func (s *BroadcastService) finish(id string, mutate func(*BroadcastStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.runs[id]
	if !ok {
		return
	}
	if mutate != nil {
		mutate(st)
	}
	st.Done = true
	st.FinishedAt = time.Now()
}
