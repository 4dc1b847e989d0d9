package service

import (
	"context"
	"time"

	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RelayLockKey = "spot:relay"

type RelayerOptions struct {
	Interval  time.Duration
	BatchSize int
	MaxRetry  int
	LockTTL   time.Duration
}

// SpotRelayer 把 spot_outbox 中的审核通过记录投递给 Spot Catalog，至少一次
type SpotRelayer struct {
	outbox  repository.OutboxRepository
	locker  repository.Locker
	catalog SpotCatalog
	opt     RelayerOptions
	metrics *pkg.Metrics
	log     zerolog.Logger
}

func NewSpotRelayer(repos *repository.Repositories, catalog SpotCatalog, opt RelayerOptions, metrics *pkg.Metrics, log zerolog.Logger) *SpotRelayer {
	if opt.Interval <= 0 {
		opt.Interval = 2 * time.Second
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = 50
	}
	if opt.MaxRetry <= 0 {
		opt.MaxRetry = 5
	}
	if opt.LockTTL <= 0 {
		opt.LockTTL = opt.Interval * 5
	}
	return &SpotRelayer{
		outbox:  repos.Outbox,
		locker:  repos.Locker,
		catalog: catalog,
		opt:     opt,
		metrics: metrics,
		log:     log,
	}
}

// Run outbox启动器，ctx 结束时返回
func (r *SpotRelayer) Run(ctx context.Context) error {
	t := time.NewTicker(r.opt.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 多实例部署时只有拿到锁的实例投递
func (r *SpotRelayer) drainOnce(ctx context.Context) int {
	token := uuid.NewString()
	ok, err := r.locker.Acquire(ctx, RelayLockKey, token, r.opt.LockTTL)
	if err != nil {
		r.log.Warn().Err(err).Msg("relay: acquire lock")
		return 0
	}
	if !ok {
		return 0
	}
	defer func() {
		if err := r.locker.Release(context.WithoutCancel(ctx), RelayLockKey, token); err != nil {
			r.log.Warn().Err(err).Msg("relay: release lock")
		}
	}()

	rows, err := r.outbox.ListPending(ctx, r.opt.BatchSize, r.opt.MaxRetry)
	if err != nil {
		r.log.Error().Err(err).Msg("relay: outbox query")
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.catalog.Publish(ctx, ob.SubmissionID, []byte(ob.Payload)); err != nil {
			r.metrics.IncSpotRelayed("failed")
			r.log.Warn().Err(err).Uint64("submission_id", ob.SubmissionID).Int("retry", ob.Retry+1).Msg("relay: publish")
			if err = r.outbox.MarkFailed(ctx, ob.ID); err != nil {
				r.log.Error().Err(err).Uint64("outbox_id", ob.ID).Msg("relay: mark failed")
			}
			continue
		}
		if err = r.outbox.MarkSent(ctx, ob.ID); err != nil {
			r.log.Error().Err(err).Uint64("outbox_id", ob.ID).Msg("relay: mark sent")
			continue
		}
		r.metrics.IncSpotRelayed("sent")
		sent++
	}
	return sent
}

// LogSpotCatalog 未启用 Kafka 时使用，只打印
type LogSpotCatalog struct {
	Log zerolog.Logger
}

func (c LogSpotCatalog) Publish(_ context.Context, submissionID uint64, payload []byte) error {
	c.Log.Info().Uint64("submission_id", submissionID).RawJSON("spot", payload).Msg("spot approved")
	return nil
}

var _ SpotCatalog = LogSpotCatalog{}
var _ SpotCatalog = (*pkg.SpotProducer)(nil)
var _ Notifier = (*pkg.Mailer)(nil)
