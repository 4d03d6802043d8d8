package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
)

// UsageCleanupJob prunes daily usage counters older than the retention
// window. Counters only gate the current UTC day; old rows are audit trail
// and can go after retentionDays.
type UsageCleanupJob struct {
	usage         *repo.UsageRepo
	retentionDays int
}

func NewUsageCleanupJob(usage *repo.UsageRepo, retentionDays int) *UsageCleanupJob {
	return &UsageCleanupJob{usage: usage, retentionDays: retentionDays}
}

func (j *UsageCleanupJob) Name() string {
	return "usage_cleanup"
}

func (j *UsageCleanupJob) Run(ctx context.Context) error {
	if j.usage == nil {
		return nil
	}
	retention := j.retentionDays
	if retention <= 0 {
		retention = 90
	}
	cutoff := timeutil.UTCDay(time.Now().UTC().AddDate(0, 0, -retention))
	deleted, err := j.usage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("usage rows pruned",
			zap.String("cutoff", cutoff), zap.Int64("deleted", deleted))
	}
	return nil
}
