package scheduling

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/domain"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// AvailabilityResolver asks the directory who is free in a window. It keeps no cache.
type AvailabilityResolver struct {
	directory StaffDirectory
	logger    *zap.Logger
}

// NewAvailabilityResolver constructs a resolver over the directory.
func NewAvailabilityResolver(directory StaffDirectory, logger *zap.Logger) *AvailabilityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityResolver{directory: directory, logger: logger}
}

// Resolve returns the free staff IDs for the window on date, de-duplicated in directory order.
// A failed lookup yields an empty set together with a DIRECTORY_UNAVAILABLE error.
func (r *AvailabilityResolver) Resolve(ctx context.Context, date string, window domain.TimeWindow) ([]string, error) {
	ids, err := r.directory.GetAvailableStaff(ctx, date, window.StartClock(), window.EndClock())
	if err != nil {
		r.logger.Warn("availability lookup failed",
			zap.String("date", date),
			zap.String("window", window.String()),
			zap.Error(err))
		return []string{}, apperrors.NewDirectoryUnavailable(err)
	}

	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}
