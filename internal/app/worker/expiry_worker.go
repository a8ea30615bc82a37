package worker

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"tle_userdb/internal/common"
	"tle_userdb/internal/platform/logging"
	"tle_userdb/internal/platform/metrics"
)

// Expirer is the part of DuelService the sweep needs.
type Expirer interface {
	Expire(ctx context.Context, now time.Time, ttl time.Duration) (int64, error)
}

// Reconnector re-establishes the database session after a connectivity failure.
type Reconnector interface {
	Reconnect(ctx context.Context) error
}

// ExpiryWorker periodically moves stale PENDING duels to EXPIRED.
type ExpiryWorker struct {
	expirer   Expirer
	session   Reconnector
	interval  time.Duration
	ttl       time.Duration
	now       func() time.Time
	scheduler gocron.Scheduler
	log       *logrus.Entry
}

func NewExpiryWorker(expirer Expirer, session Reconnector, interval, ttl time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		expirer:  expirer,
		session:  session,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		log:      logging.For("expiry_worker"),
	}
}

// Start schedules the sweep. Runs never overlap; a slow run pushes the next
// one back instead of queueing it.
func (w *ExpiryWorker) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return common.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.Sweep, ctx),
		gocron.WithName("duel-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return common.Errorf("schedule expiry sweep: %w", err)
	}
	s.Start()
	w.scheduler = s
	w.log.WithFields(logrus.Fields{"interval": w.interval, "ttl": w.ttl}).Info("Expiry worker started")
	return nil
}

func (w *ExpiryWorker) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	w.log.Info("Expiry worker stopping...")
	return w.scheduler.Shutdown()
}

// Sweep runs one expiry pass. A connectivity failure triggers a reconnect so
// the next pass starts on a fresh session.
func (w *ExpiryWorker) Sweep(ctx context.Context) error {
	n, err := w.expirer.Expire(ctx, w.now(), w.ttl)
	if err != nil {
		metrics.ExpirySweeps.WithLabelValues(metrics.ResultError).Inc()
		w.log.WithError(err).Error("Expiry sweep failed")
		if errors.Is(err, common.ErrConnectivity) && w.session != nil {
			if rerr := w.session.Reconnect(ctx); rerr != nil {
				w.log.WithError(rerr).Error("Reconnect after sweep failure failed")
			} else {
				w.log.Warn("Database session re-established")
			}
		}
		return err
	}
	metrics.ExpirySweeps.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ExpiredDuels.Add(float64(n))
	if n > 0 {
		w.log.WithField("expired", n).Info("Expired pending duels")
	}
	return nil
}
