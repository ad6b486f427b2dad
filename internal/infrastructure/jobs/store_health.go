package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/metrics"
	"go.uber.org/zap"
)

// StoreProber is satisfied by the active store (postgres handle or mongo connector)
type StoreProber interface {
	Ping(ctx context.Context) error
}

// StoreHealthJob probes the active store on a fixed interval and keeps the last outcome
type StoreHealthJob struct {
	store    StoreProber
	name     string
	interval time.Duration
	timeout  time.Duration
	stop     chan struct{}
	stopOnce sync.Once

	healthy   atomic.Bool
	checkedAt atomic.Int64
}

func NewStoreHealthJob(store StoreProber, name string, interval, timeout time.Duration) *StoreHealthJob {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	j := &StoreHealthJob{
		store:    store,
		name:     name,
		interval: interval,
		timeout:  timeout,
		stop:     make(chan struct{}),
	}
	j.healthy.Store(true)
	return j
}

func (j *StoreHealthJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting store health job", zap.String("store", j.name), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Store health job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Store health job stopped")
			return
		case <-ticker.C:
			j.probe(ctx)
		}
	}
}

func (j *StoreHealthJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// Healthy reports the outcome of the most recent probe
func (j *StoreHealthJob) Healthy() bool {
	return j.healthy.Load()
}

// CheckedAt is the time of the most recent probe, zero before the first one
func (j *StoreHealthJob) CheckedAt() time.Time {
	ns := j.checkedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func (j *StoreHealthJob) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	err := j.store.Ping(probeCtx)
	ok := err == nil
	was := j.healthy.Swap(ok)
	j.checkedAt.Store(time.Now().UnixNano())
	metrics.SetStoreHealthy(ok)

	switch {
	case !ok && was:
		logger.Error(ctx, "Store became unavailable", zap.String("store", j.name), zap.Error(err))
	case ok && !was:
		logger.Info(ctx, "Store recovered", zap.String("store", j.name))
	case !ok:
		logger.Debug(ctx, "Store still unavailable", zap.String("store", j.name), zap.Error(err))
	}
}
