package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/DeMaestro5/Khronos-api-sub001/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// optimalTimesTTL bounds how stale a cached optimal-times response can get.
const optimalTimesTTL = 15 * time.Minute

// Service is the scheduling facade the HTTP layer talks to.
type Service interface {
	// ScheduleContent normalizes the request and creates the full event
	// tree for the content item.
	ScheduleContent(ctx context.Context, content ContentRef, req ScheduleRequest, userID uuid.UUID) (*CreateResult, error)
	// RescheduleContent is a full teardown and recreation: there is no
	// incremental diff path for the child set.
	RescheduleContent(ctx context.Context, content ContentRef, req ScheduleRequest, userID uuid.UUID) (*CreateResult, error)
	// UpdateSchedule applies top-level field changes to the master event
	// only, leaving children untouched.
	UpdateSchedule(ctx context.Context, contentID uuid.UUID, req ScheduleRequest) (*CalendarEvent, error)
	// ArchiveContent cancels the content's events in place, or deletes
	// them when deleteEvents is set. Returns the number of affected
	// entries.
	ArchiveContent(ctx context.Context, contentID uuid.UUID, deleteEvents bool) (int, error)
	RemoveEventsForContent(ctx context.Context, contentID uuid.UUID) error
	GetEventsForContent(ctx context.Context, contentID uuid.UUID) ([]CalendarEvent, error)
	// ListUserEvents returns the user's events overlapping the window.
	// Filtering happens in memory; the store has no range query.
	ListUserEvents(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]CalendarEvent, error)
	FindOptimalTimes(ctx context.Context, userID uuid.UUID, req OptimalTimeRequest) (*OptimalTimeResult, error)
}

type service struct {
	repo    Repository
	factory *Factory
	scorer  *Scorer
	redis   *cache.RedisClient
	logger  *zap.Logger
}

// NewService creates the scheduling service. The redis client may be nil in
// tests; caching is then skipped.
func NewService(repo Repository, scoringConfig ScoringConfig, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		factory: NewFactory(repo, logger),
		scorer:  NewScorer(repo, scoringConfig, logger),
		redis:   redis,
		logger:  logger,
	}
}

func (s *service) ScheduleContent(ctx context.Context, content ContentRef, req ScheduleRequest, userID uuid.UUID) (*CreateResult, error) {
	spec, err := NormalizeSchedule(req)
	if err != nil {
		return nil, err
	}

	result, err := s.factory.CreateEventsForContent(ctx, content, spec, userID)
	if err != nil {
		return nil, err
	}

	if failed := result.FailedChildren(); failed > 0 {
		s.logger.Warn("event tree created with partial children",
			zap.String("content_id", content.ID.String()),
			zap.Int("failed_children", failed))
	} else {
		s.logger.Info("event tree created",
			zap.String("content_id", content.ID.String()),
			zap.Int("events", len(result.Events())))
	}
	return result, nil
}

func (s *service) RescheduleContent(ctx context.Context, content ContentRef, req ScheduleRequest, userID uuid.UUID) (*CreateResult, error) {
	// Validate before tearing the old tree down.
	if _, err := NormalizeSchedule(req); err != nil {
		return nil, err
	}
	if err := s.factory.RemoveEventsForContent(ctx, content.ID); err != nil {
		return nil, fmt.Errorf("remove existing events for content %s: %w", content.ID, err)
	}
	return s.ScheduleContent(ctx, content, req, userID)
}

func (s *service) UpdateSchedule(ctx context.Context, contentID uuid.UUID, req ScheduleRequest) (*CalendarEvent, error) {
	spec, err := NormalizeSchedule(req)
	if err != nil {
		return nil, err
	}
	return s.factory.UpdateEventsForContent(ctx, contentID, spec)
}

func (s *service) ArchiveContent(ctx context.Context, contentID uuid.UUID, deleteEvents bool) (int, error) {
	events, err := s.repo.FindByContentID(ctx, contentID)
	if err != nil {
		return 0, err
	}

	if deleteEvents {
		if err := s.repo.RemoveByContentID(ctx, contentID); err != nil {
			return 0, err
		}
		return len(events), nil
	}

	cancelled := 0
	for i := range events {
		if events[i].Status == EventStatusCancelled {
			continue
		}
		events[i].Status = EventStatusCancelled
		if _, err := s.repo.Update(ctx, &events[i]); err != nil {
			s.logger.Error("failed to cancel event during archive",
				zap.String("event_id", events[i].ID.String()),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *service) RemoveEventsForContent(ctx context.Context, contentID uuid.UUID) error {
	return s.factory.RemoveEventsForContent(ctx, contentID)
}

func (s *service) GetEventsForContent(ctx context.Context, contentID uuid.UUID) ([]CalendarEvent, error) {
	return s.repo.FindByContentID(ctx, contentID)
}

func (s *service) ListUserEvents(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]CalendarEvent, error) {
	events, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() {
		return events, nil
	}

	filtered := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		if !end.IsZero() && e.StartDate.After(end) {
			continue
		}
		if !start.IsZero() && e.EndDate.Before(start) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

func (s *service) FindOptimalTimes(ctx context.Context, userID uuid.UUID, req OptimalTimeRequest) (*OptimalTimeResult, error) {
	key := optimalTimesCacheKey(userID, req)

	if s.redis != nil {
		var cached OptimalTimeResult
		if err := s.redis.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := s.scorer.FindOptimalTimes(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, key, result, optimalTimesTTL); err != nil {
			s.logger.Error("failed to cache optimal times", zap.Error(err))
		}
	}
	return result, nil
}

func optimalTimesCacheKey(userID uuid.UUID, req OptimalTimeRequest) string {
	h := fnv.New64a()
	if payload, err := json.Marshal(req); err == nil {
		h.Write(payload)
	}
	return fmt.Sprintf("optimal:%s:%x", userID, h.Sum64())
}
