package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

const MIRROR_JOB_NAME = "mirror-sync"

type Syncer interface {
	Sync(ctx context.Context, batchSize int) (int, error)
}

// MirrorScheduler runs Syncer.Sync on a fixed interval. A run that is still
// going when the next tick fires is rescheduled, never overlapped.
type MirrorScheduler struct {
	scheduler gocron.Scheduler
}

func NewMirrorScheduler(ctx context.Context, syncer Syncer, interval time.Duration, batchSize int) (*MirrorScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s", interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			RunMirrorOnce(ctx, syncer, batchSize)
		}),
		gocron.WithName(MIRROR_JOB_NAME),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to register %s job: %w", MIRROR_JOB_NAME, err)
	}

	return &MirrorScheduler{scheduler: s}, nil
}

func (m *MirrorScheduler) Start() {
	m.scheduler.Start()
}

func (m *MirrorScheduler) Stop() error {
	return m.scheduler.Shutdown()
}

// RunMirrorOnce logs instead of returning so it can serve as a job body.
func RunMirrorOnce(ctx context.Context, syncer Syncer, batchSize int) int {
	logger := log.WithField("caller", "workers.RunMirrorOnce")

	n, err := syncer.Sync(ctx, batchSize)
	if err != nil {
		logger.WithError(err).WithField("mirrored", n).Error("Mirror run stopped")
		return n
	}
	logger.WithField("mirrored", n).Info("Mirror run finished")
	return n
}
