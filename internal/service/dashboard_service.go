package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/wellness/internal/analytics"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/internal/repository"
	"github.com/limbo/wellness/pkg/entity"
	"github.com/limbo/wellness/pkg/metrics"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const DefaultDashboardTTL = 5 * time.Minute

type cachedOverview struct {
	day      analytics.DayKey
	overview *Overview
}

// DashboardService reads record snapshots from the store and runs the
// analytics over them. Overviews are cached per user for the current day.
type DashboardService struct {
	repo  repository.RecordsRepositoryI
	goals repository.GoalsRepositoryI
	clock Clock
	cache *cache.Cache

	// generations count invalidations per user. An overview built from a
	// snapshot older than the latest invalidation is not cached.
	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

// NewDashboardService builds the service. A nil goalsRepo means every user
// has the default goals.
func NewDashboardService(recordsRepo repository.RecordsRepositoryI, goalsRepo repository.GoalsRepositoryI, clock Clock, ttl time.Duration) *DashboardService {
	if recordsRepo == nil {
		log.Fatal("provided nil recordsRepo")
	}
	if clock == nil {
		clock = NewClock(time.UTC)
	}
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	InitValidator()
	return &DashboardService{
		repo:        recordsRepo,
		goals:       goalsRepo,
		clock:       clock,
		cache:       cache.New(ttl, 2*ttl),
		generations: make(map[uuid.UUID]uint64),
	}
}

func (ds *DashboardService) Streak(ctx context.Context, uid uuid.UUID) (StreakSummary, error) {
	moods, err := ds.fetch(ctx, uid, entity.KindMood)
	if err != nil {
		return StreakSummary{}, err
	}
	return streakOf(moods, ds.clock()), nil
}

func (ds *DashboardService) Weekly(ctx context.Context, uid uuid.UUID) ([]analytics.DailyBucket, error) {
	moods, err := ds.fetch(ctx, uid, entity.KindMood)
	if err != nil {
		return nil, err
	}
	exercises, err := ds.fetch(ctx, uid, entity.KindExercise)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeWeeklySummary(moods, exercises, ds.clock()), nil
}

func (ds *DashboardService) Badges(ctx context.Context, uid uuid.UUID) ([]Badge, error) {
	snap, err := ds.snapshot(ctx, uid)
	if err != nil {
		return nil, err
	}
	return badgesOf(snap.totals()), nil
}

func (ds *DashboardService) MoodDistribution(ctx context.Context, uid uuid.UUID) ([]analytics.MoodCount, error) {
	moods, err := ds.fetch(ctx, uid, entity.KindMood)
	if err != nil {
		return nil, err
	}
	return analytics.MoodDistribution(moods), nil
}

func (ds *DashboardService) Overview(ctx context.Context, uid uuid.UUID) (*Overview, error) {
	today := ds.clock()
	day := analytics.KeyOf(today, today.Location())
	if cached, found := ds.cache.Get(uid.String()); found {
		if c, ok := cached.(cachedOverview); ok && c.day == day {
			metrics.RecordCacheHit()
			return c.overview, nil
		}
	}
	metrics.RecordCacheMiss()

	gen := ds.generation(uid)
	snap, err := ds.snapshot(ctx, uid)
	if err != nil {
		return nil, err
	}
	goals, err := ds.Goals(ctx, uid)
	if err != nil {
		return nil, err
	}
	totals := snap.totals()
	overview := &Overview{
		Date:             day,
		Totals:           totals,
		WeeklyGoals:      goals,
		Goals:            analytics.GoalProgress(totals, goals),
		WellnessScore:    analytics.WellnessScore(totals),
		Streak:           streakOf(snap.moods, today),
		Weekly:           analytics.ComputeWeeklySummary(snap.moods, snap.exercises, today),
		MoodDistribution: analytics.MoodDistribution(snap.moods),
		Badges:           badgesOf(totals),
	}
	ds.mu.Lock()
	if ds.generations[uid] == gen {
		ds.cache.Set(uid.String(), cachedOverview{day: day, overview: overview}, cache.DefaultExpiration)
	}
	ds.mu.Unlock()
	return overview, nil
}

func (ds *DashboardService) Goals(ctx context.Context, uid uuid.UUID) (entity.WeeklyGoals, error) {
	if ds.goals == nil {
		return analytics.DefaultGoals(), nil
	}
	goals, found, err := ds.goals.Get(ctx, uid)
	if err != nil {
		return entity.WeeklyGoals{}, fmt.Errorf("fetching goals error: %w", err)
	}
	if !found {
		return analytics.DefaultGoals(), nil
	}
	return goals, nil
}

func (ds *DashboardService) UpdateGoals(ctx context.Context, uid uuid.UUID, req *GoalsRequest) (entity.WeeklyGoals, error) {
	if ds.goals == nil {
		return entity.WeeklyGoals{}, errors.New("goals storage is not configured")
	}
	if err := validateStruct(req); err != nil {
		return entity.WeeklyGoals{}, err
	}
	goals := entity.WeeklyGoals{
		ExerciseMinutes: req.ExerciseMinutes,
		MoodCheckIns:    req.MoodCheckIns,
	}
	err := ds.goals.Set(ctx, uid, goals)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserNotFound), errors.Is(err, errorvalues.ErrValidation):
			return entity.WeeklyGoals{}, err
		}
		return entity.WeeklyGoals{}, errors.New("goals repository error: " + err.Error())
	}
	ds.Invalidate(uid)
	return goals, nil
}

func (ds *DashboardService) Invalidate(uid uuid.UUID) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.generations[uid]++
	ds.cache.Delete(uid.String())
}

func (ds *DashboardService) generation(uid uuid.UUID) uint64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.generations[uid]
}

type recordSnapshot struct {
	moods     []entity.MetricRecord
	exercises []entity.MetricRecord
	sleeps    []entity.MetricRecord
}

func (s *recordSnapshot) totals() analytics.Totals {
	return analytics.Totals{
		ActivityMinutes: analytics.TotalActivity(s.exercises),
		MoodCheckIns:    analytics.MoodCheckIns(s.moods),
		SleepScore:      analytics.SleepScore(s.sleeps),
	}
}

// snapshot fetches the three kinds the dashboard is built from concurrently.
func (ds *DashboardService) snapshot(ctx context.Context, uid uuid.UUID) (*recordSnapshot, error) {
	var snap recordSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.moods, err = ds.fetch(gctx, uid, entity.KindMood)
		return err
	})
	g.Go(func() (err error) {
		snap.exercises, err = ds.fetch(gctx, uid, entity.KindExercise)
		return err
	})
	g.Go(func() (err error) {
		snap.sleeps, err = ds.fetch(gctx, uid, entity.KindSleep)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (ds *DashboardService) fetch(ctx context.Context, uid uuid.UUID, kind entity.RecordKind) ([]entity.MetricRecord, error) {
	records, err := ds.repo.ListByKind(ctx, uid, kind)
	if err != nil {
		return nil, fmt.Errorf("fetching %s records error: %w", kind, err)
	}
	return records, nil
}

func streakOf(moods []entity.MetricRecord, today time.Time) StreakSummary {
	return StreakSummary{
		Current: analytics.ComputeStreak(moods, today),
		Longest: analytics.LongestStreak(moods, today.Location()),
	}
}

func badgesOf(totals analytics.Totals) []Badge {
	ids := analytics.EvaluateBadges(totals)
	badges := make([]Badge, 0, len(ids))
	for _, id := range ids {
		badges = append(badges, Badge{ID: id, Title: analytics.BadgeTitle(id)})
	}
	return badges
}
