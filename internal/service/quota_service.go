package service

import (
	"context"
	"fmt"

	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// QuotaStatus reports where a user stands against their resolved daily
// limit. Limit is QuotaUnbounded for users with no ceiling.
type QuotaStatus struct {
	Allowed bool `json:"allowed"`
	Used    int  `json:"used"`
	Limit   int  `json:"limit"`
}

// QuotaExceededError carries the counts for the 429 payload.
type QuotaExceededError struct {
	Used  int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota exceeded: used %d of %d", e.Used, e.Limit)
}

// QuotaService counts successful prompts per user per UTC day. Days roll
// over at midnight UTC for every user regardless of client timezone.
type QuotaService struct {
	perms *PermissionService
	usage *repo.UsageRepo
}

func NewQuotaService(perms *PermissionService, usage *repo.UsageRepo) *QuotaService {
	return &QuotaService{perms: perms, usage: usage}
}

// Check resolves the user's effective limit and compares it with today's
// usage. It never mutates the counter.
func (s *QuotaService) Check(ctx context.Context, userID string) (QuotaStatus, error) {
	caps, _, err := s.perms.Effective(ctx, userID)
	if err != nil {
		return QuotaStatus{}, err
	}
	if caps.DailyQuota == QuotaUnbounded {
		return QuotaStatus{Allowed: true, Used: 0, Limit: QuotaUnbounded}, nil
	}
	used, err := s.usage.GetCount(ctx, userID, timeutil.TodayUTC())
	if err != nil {
		return QuotaStatus{}, err
	}
	return QuotaStatus{Allowed: quotaAllows(used, caps.DailyQuota), Used: used, Limit: caps.DailyQuota}, nil
}

// RecordUsage increments today's counter. Called only after a model reply
// was produced; failed prompts never consume quota. Best-effort: a counter
// write failure is logged and never turns a delivered reply into an error.
func (s *QuotaService) RecordUsage(ctx context.Context, userID string) {
	if err := s.usage.Increment(ctx, userID, timeutil.TodayUTC()); err != nil {
		logutil.GetLogger(ctx).Error("record usage failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func quotaAllows(used, limit int) bool {
	if limit == QuotaUnbounded {
		return true
	}
	return used < limit
}
