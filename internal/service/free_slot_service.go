package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
)

const (
	freeSlotsCachePrefix  = "free-slots"
	freeSlotsCachePattern = freeSlotsCachePrefix + ":*"
	// Kept outside freeSlotsCachePattern so invalidation never resets it.
	freeSlotsGenerationKey = "free-slots-generation"
)

type facultyLister interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error)
}

type substitutionRangeReader interface {
	ListInRange(ctx context.Context, start, end time.Time) ([]models.FacultySubstitution, error)
}

// FreeSlotConfig bounds free-slot queries.
type FreeSlotConfig struct {
	MaxRangeDays int
	CacheTTL     time.Duration
}

// FreeSlotService answers "when is each faculty free" for a date range.
type FreeSlotService struct {
	faculty       facultyLister
	batches       batchScheduleReader
	substitutions substitutionRangeReader
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           FreeSlotConfig
}

// NewFreeSlotService constructs a FreeSlotService.
func NewFreeSlotService(faculty facultyLister, batches batchScheduleReader, substitutions substitutionRangeReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg FreeSlotConfig) *FreeSlotService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 92
	}
	return &FreeSlotService{
		faculty:       faculty,
		batches:       batches,
		substitutions: substitutions,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// FreeSlots computes free windows per faculty per day. Results are cached
// until the next schedule write.
func (s *FreeSlotService) FreeSlots(ctx context.Context, query dto.FreeSlotsQuery) ([]scheduling.FacultyFreeSlots, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid free slot query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.cfg.MaxRangeDays {
		return nil, invalid(fmt.Sprintf("date range must not exceed %d days", s.cfg.MaxRangeDays))
	}

	gen, cacheable := s.cache.Generation(ctx, freeSlotsGenerationKey)
	key := cacheKey(freeSlotsCachePrefix, strconv.FormatInt(gen, 10), scheduling.FormatDate(start), scheduling.FormatDate(end), query.FacultyID, query.SkillID)
	if cacheable {
		var cached []scheduling.FacultyFreeSlots
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	faculty, err := s.faculty.List(ctx, models.FacultyFilter{ID: query.FacultyID, SkillID: query.SkillID})
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	batches, err := s.batches.ListSchedules(ctx, models.BatchFilter{EndOnOrFrom: &start, StartBefore: &end})
	if err != nil {
		return nil, internalError(err, "failed to load batches")
	}
	subs, err := s.substitutions.ListInRange(ctx, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}

	began := time.Now()
	result := scheduling.ComputeFreeSlots(scheduling.FreeSlotInput{
		Faculty:       faculty,
		Batches:       batches,
		Substitutions: subs,
		StartDate:     start,
		EndDate:       end,
		FacultyID:     query.FacultyID,
		SkillID:       query.SkillID,
	})
	s.metrics.ObserveFreeSlotComputation(time.Since(began))

	// A write that landed while computing makes result stale; keep it out of the cache.
	if now, ok := s.cache.Generation(ctx, freeSlotsGenerationKey); cacheable && ok && now == gen {
		_ = s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	}
	return result, nil
}

// invalidateFreeSlots retires cached free-slot results after a schedule write.
// The generation bump stops in-flight reads from storing what they loaded
// before the write; the pattern delete only reclaims memory. Failures are
// logged by the cache service and never fail the write.
func invalidateFreeSlots(ctx context.Context, cache *CacheService) {
	_ = cache.Bump(ctx, freeSlotsGenerationKey)
	_ = cache.Invalidate(ctx, freeSlotsCachePattern)
}
