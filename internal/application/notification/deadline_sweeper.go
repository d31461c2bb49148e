package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
)

// Notifier is the slice of the notification service the sweeper needs
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, rfpID *uuid.UUID, notifType notification.Type, title, body string) error
}

// deadlineBand maps a lookahead window to the reminder it produces.
// Ordered most urgent first: an RFP gets exactly one bid-deadline
// reminder per sweep, the tightest band that matches.
type deadlineBand struct {
	window    time.Duration
	notifType notification.Type
	label     string
}

var deadlineBands = []deadlineBand{
	{24 * time.Hour, notification.TypeDeadline24h, "24 hours"},
	{72 * time.Hour, notification.TypeDeadline72h, "3 days"},
	{7 * 24 * time.Hour, notification.TypeDeadline7d, "7 days"},
}

// SweepStats summarizes one sweep run
type SweepStats struct {
	Scanned      int       `json:"scanned"`
	Created      int       `json:"created"`
	Deduplicated int       `json:"deduplicated"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// DeadlineSweeper periodically scans open RFPs with approaching deadlines
// and produces reminder notifications for everyone involved: the posting
// user and every contractor with a live bid request.
type DeadlineSweeper struct {
	rfpRepo     marketplace.RfpRepository
	bidRepo     marketplace.BidRequestRepository
	notifRepo   notification.Repository
	notifier    Notifier
	interval    time.Duration
	lookahead   time.Duration
	dedupWindow time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time
}

// NewDeadlineSweeper creates a sweeper. Zero durations get the standard
// hourly interval, 7 day lookahead and 2 hour dedup window.
func NewDeadlineSweeper(
	rfpRepo marketplace.RfpRepository,
	bidRepo marketplace.BidRequestRepository,
	notifRepo notification.Repository,
	notifier Notifier,
	interval, lookahead, dedupWindow time.Duration,
	logger *zap.Logger,
) *DeadlineSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if lookahead <= 0 {
		lookahead = 7 * 24 * time.Hour
	}
	if dedupWindow <= 0 {
		dedupWindow = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineSweeper{
		rfpRepo:     rfpRepo,
		bidRepo:     bidRepo,
		notifRepo:   notifRepo,
		notifier:    notifier,
		interval:    interval,
		lookahead:   lookahead,
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// Start launches the background sweep loop. The first sweep runs right
// away, then once per interval. Calling Start on a running sweeper is a
// logged no-op.
func (s *DeadlineSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.logger.Warn("deadline sweeper already running, ignoring start")
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(runCtx, s.done)
	s.logger.Info("deadline sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("lookahead", s.lookahead))
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish
func (s *DeadlineSweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("deadline sweeper stopped")
}

func (s *DeadlineSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("deadline sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep. One failing RFP never aborts the rest.
func (s *DeadlineSweeper) RunOnce(ctx context.Context) (*SweepStats, error) {
	now := s.now()
	stats := &SweepStats{ProcessedAt: now}

	rfps, err := s.rfpRepo.FindOpenWithDeadlineBefore(ctx, now.Add(s.lookahead))
	if err != nil {
		return nil, fmt.Errorf("find rfps with approaching deadlines: %w", err)
	}
	stats.Scanned = len(rfps)
	if len(rfps) == 0 {
		s.logger.Debug("no approaching deadlines")
		return stats, nil
	}

	for _, rfp := range rfps {
		if err := s.sweepRfp(ctx, rfp, now, stats); err != nil {
			s.logger.Error("failed to sweep rfp",
				zap.String("rfp_id", rfp.ID.String()),
				zap.Error(err))
			stats.Failed++
		}
	}

	s.logger.Info("deadline sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("created", stats.Created),
		zap.Int("deduplicated", stats.Deduplicated),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

func (s *DeadlineSweeper) sweepRfp(ctx context.Context, rfp *marketplace.Rfp, now time.Time, stats *SweepStats) error {
	recipients, err := s.recipients(ctx, rfp)
	if err != nil {
		return err
	}

	// tightest matching band wins, the wider ones stay quiet
	for _, band := range deadlineBands {
		if !rfp.DeadlineWithin(now, band.window) {
			continue
		}
		title := fmt.Sprintf("Bids on %q are due in %s", rfp.Title, band.label)
		s.fanOut(ctx, rfp, recipients, band.notifType, title, now, stats)
		break
	}

	// the auxiliary reminders fire independently of the bid deadline
	if rfp.QADeadlineWithin(now, 24*time.Hour) {
		title := fmt.Sprintf("Questions on %q close in 24 hours", rfp.Title)
		s.fanOut(ctx, rfp, recipients, notification.TypeQADeadline24h, title, now, stats)
	}
	if rfp.SiteVisitWithin(now, 24*time.Hour) {
		title := fmt.Sprintf("Site visit for %q is within 24 hours", rfp.Title)
		s.fanOut(ctx, rfp, recipients, notification.TypeSiteVisit24h, title, now, stats)
	}
	return nil
}

// recipients returns the poster plus every contractor with a live bid request
func (s *DeadlineSweeper) recipients(ctx context.Context, rfp *marketplace.Rfp) ([]uuid.UUID, error) {
	requests, err := s.bidRepo.FindByRfp(ctx, rfp.ID)
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{rfp.CreatedBy: true}
	recipients := []uuid.UUID{rfp.CreatedBy}
	for _, request := range requests {
		if request.Status == marketplace.BidRequestStatusWithdrawn {
			continue
		}
		if !seen[request.ContractorID] {
			seen[request.ContractorID] = true
			recipients = append(recipients, request.ContractorID)
		}
	}
	return recipients, nil
}

func (s *DeadlineSweeper) fanOut(ctx context.Context, rfp *marketplace.Rfp, recipients []uuid.UUID, notifType notification.Type, title string, now time.Time, stats *SweepStats) {
	cutoff := now.Add(-s.dedupWindow)
	for _, userID := range recipients {
		exists, err := s.notifRepo.ExistsRecent(ctx, userID, rfp.ID, notifType, cutoff)
		if err != nil {
			s.logger.Error("dedup check failed",
				zap.String("rfp_id", rfp.ID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			stats.Failed++
			continue
		}
		if exists {
			stats.Deduplicated++
			continue
		}
		rfpID := rfp.ID
		if err := s.notifier.Notify(ctx, userID, &rfpID, notifType, title, rfp.Title); err != nil {
			s.logger.Error("failed to create reminder",
				zap.String("rfp_id", rfp.ID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Created++
	}
}
