package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher refreshes market data for every user and recomputes their positions.
// service.TransactionService implements it.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// RefreshJob is the nightly market data refresh.
type RefreshJob struct {
	refresher Refresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshJob creates a refresh job whose runs are cut off after timeout.
// A non-positive timeout means no limit.
func NewRefreshJob(refresher Refresher, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "market_data_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "market_data_refresh"
}

// Run refreshes every user once.
func (j *RefreshJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := j.refresher.RefreshAll(ctx); err != nil {
		return err
	}
	j.log.Info().Dur("duration", time.Since(start)).Msg("market data refresh finished")
	return nil
}
