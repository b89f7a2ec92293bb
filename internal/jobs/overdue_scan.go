package jobs

import (
	"context"
	"fmt"
	"time"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/metrics"
	"library-rental-backend/internal/repository"
	"library-rental-backend/internal/service"
)

const (
	OverdueScanJobName = "overdue-scan"
	NoOverdueMessage   = "No overdue borrowings today"
)

const DefaultSendTimeout = 30 * time.Second

// OverdueScanConfig is the scanner's explicit configuration.
type OverdueScanConfig struct {
	// Destination is handed to the sink with every message: a chat id or an email address.
	Destination string
	// SendTimeout bounds each delivery on its own; zero means DefaultSendTimeout.
	SendTimeout time.Duration
}

// OverdueScanner reports active borrowings whose expected return date has passed.
// It only reads the ledger.
type OverdueScanner struct {
	cfg        OverdueScanConfig
	borrowings repository.BorrowingRepository
	sink       service.NotificationSink
	now        func() time.Time
	metrics    metrics.MetricsCollector
}

type ScannerOption func(*OverdueScanner)

func WithScannerClock(now func() time.Time) ScannerOption {
	return func(s *OverdueScanner) { s.now = now }
}

func WithScannerMetrics(m metrics.MetricsCollector) ScannerOption {
	return func(s *OverdueScanner) { s.metrics = m }
}

func NewOverdueScanner(cfg OverdueScanConfig, borrowings repository.BorrowingRepository, sink service.NotificationSink, opts ...ScannerOption) *OverdueScanner {
	s := &OverdueScanner{
		cfg:        cfg,
		borrowings: borrowings,
		sink:       sink,
		now:        time.Now,
		metrics:    metrics.Nop{},
	}
	if s.cfg.SendTimeout <= 0 {
		s.cfg.SendTimeout = DefaultSendTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OverdueScanner) Name() string { return OverdueScanJobName }

// OverdueMessage is the text sent for one overdue borrowing.
func OverdueMessage(o domain.OverdueBorrowing) string {
	return fmt.Sprintf("%s has an overdue book %s. Expected return was %s",
		o.UserEmail, o.BookTitle, o.ExpectedReturn.Format(domain.DateLayout))
}

// Run sends one notification per overdue borrowing, or a single NoOverdueMessage when there are
// none. A failed delivery is logged and the remaining messages are still sent; only a failure to
// read the ledger is returned.
func (s *OverdueScanner) Run(ctx context.Context) error {
	log := logger.WithJob(OverdueScanJobName)
	today := domain.TruncateToDate(s.now())

	overdue, err := s.borrowings.ListOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("list overdue borrowings: %w", err)
	}
	log.Info("Overdue borrowings found", "count", len(overdue), "today", today.Format(domain.DateLayout))

	if len(overdue) == 0 {
		s.deliver(ctx, NoOverdueMessage)
		s.metrics.RecordOverdueScan()
		return nil
	}

	failed := 0
	for _, o := range overdue {
		if !s.deliver(ctx, OverdueMessage(o), "borrowingID", o.BorrowingID, "userID", o.UserID) {
			failed++
		}
	}
	if failed > 0 {
		log.Warn("Some overdue notifications were not delivered", "failed", failed, "total", len(overdue))
	}
	s.metrics.RecordOverdueScan()
	return nil
}

// deliver gives every message its own deadline, detached from the run's, so a slow send cannot
// starve the ones after it.
func (s *OverdueScanner) deliver(ctx context.Context, message string, logArgs ...any) bool {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SendTimeout)
	defer cancel()

	if err := s.sink.Send(sendCtx, s.cfg.Destination, message); err != nil {
		logger.WithJob(OverdueScanJobName).Error("Failed to send overdue notification",
			append(logArgs, "error", err)...)
		s.metrics.RecordOverdueNotification(metrics.ResultFailed)
		return false
	}
	s.metrics.RecordOverdueNotification(metrics.ResultDelivered)
	return true
}
