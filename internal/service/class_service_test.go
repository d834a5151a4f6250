package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type classRepoStub struct {
	class   *models.Class
	updates map[string]interface{}
	agenda  []models.ClassDetail
}

func (s *classRepoStub) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	if s.class == nil || s.class.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.class
	return &copied, nil
}

func (s *classRepoStub) FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	class, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ClassDetail{Class: *class, GroupName: "Group A"}, nil
}

func (s *classRepoStub) ListByLevelWeek(ctx context.Context, levelID int64, week int) ([]models.ClassDetail, error) {
	return s.agenda, nil
}

func (s *classRepoStub) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	if s.class == nil || s.class.ID != id {
		return sql.ErrNoRows
	}
	s.updates = updates
	if v, ok := updates["topic"]; ok {
		s.class.Topic = v.(string)
	}
	if v, ok := updates["status"]; ok {
		s.class.Status = v.(string)
	}
	if v, ok := updates["end_time"]; ok {
		if v == nil {
			s.class.EndTime = nil
		} else {
			value := v.(string)
			s.class.EndTime = &value
		}
	}
	if v, ok := updates["date"]; ok {
		s.class.Date = v.(time.Time)
	}
	s.class.ManualOverride = true
	return nil
}

type cacheStub struct {
	values      map[string][]byte
	gets        int
	sets        int
	invalidated int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.invalidated++
	s.values = map[string][]byte{}
	return nil
}

func scheduledClass() *models.Class {
	end := "10:30"
	return &models.Class{
		ID:         42,
		GroupID:    7,
		WeekNumber: 1,
		Date:       date(2024, 9, 2),
		StartTime:  "09:00",
		EndTime:    &end,
		Topic:      "Fractions",
		Status:     models.ClassStatusScheduled,
	}
}

func newClassServiceFixture(repo *classRepoStub, cache *cacheStub) *ClassService {
	cfg := ClassServiceConfig{CacheEnabled: cache != nil, CacheTTL: time.Minute}
	var agendaCacheImpl agendaCache
	if cache != nil {
		agendaCacheImpl = cache
	}
	return NewClassService(repo, levelReaderStub{level: mondayLevel()}, agendaCacheImpl, cfg, nil, nil)
}

func TestClassUpdateRejectsEmptyPatch(t *testing.T) {
	svc := newClassServiceFixture(&classRepoStub{class: scheduledClass()}, nil)

	_, err := svc.Update(context.Background(), 42, dto.ClassUpdate{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassUpdateUnknownClass(t *testing.T) {
	svc := newClassServiceFixture(&classRepoStub{class: scheduledClass()}, nil)

	topic := "Decimals"
	_, err := svc.Update(context.Background(), 999, dto.ClassUpdate{Topic: &topic})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassUpdateMarksRescheduled(t *testing.T) {
	repo := &classRepoStub{class: scheduledClass()}
	svc := newClassServiceFixture(repo, nil)

	newDate := "2024-09-03"
	resp, err := svc.Update(context.Background(), 42, dto.ClassUpdate{Date: &newDate})
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusRescheduled, resp.Status)
	assert.True(t, resp.ManualOverride)
	assert.Equal(t, "2024-09-03", resp.Date)
}

func TestClassUpdateExplicitStatusWins(t *testing.T) {
	repo := &classRepoStub{class: scheduledClass()}
	svc := newClassServiceFixture(repo, nil)

	newDate := "2024-09-03"
	status := models.ClassStatusCancelled
	resp, err := svc.Update(context.Background(), 42, dto.ClassUpdate{Date: &newDate, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusCancelled, resp.Status)
}

func TestClassUpdateEndTimeTriState(t *testing.T) {
	repo := &classRepoStub{class: scheduledClass()}
	svc := newClassServiceFixture(repo, nil)

	// Explicit null clears the stored value.
	resp, err := svc.Update(context.Background(), 42, dto.ClassUpdate{
		EndTime: dto.OptionalString{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, models.ClassStatusRescheduled, resp.Status)

	// An absent key leaves it untouched.
	topic := "Ratios"
	resp, err = svc.Update(context.Background(), 42, dto.ClassUpdate{Topic: &topic})
	require.NoError(t, err)
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, "Ratios", resp.Topic)
}

func TestClassUpdateNoChangeAvoidsWrite(t *testing.T) {
	repo := &classRepoStub{class: scheduledClass()}
	svc := newClassServiceFixture(repo, nil)

	sameTopic := "Fractions"
	resp, err := svc.Update(context.Background(), 42, dto.ClassUpdate{Topic: &sameTopic})
	require.NoError(t, err)
	assert.Nil(t, repo.updates)
	assert.Equal(t, models.ClassStatusScheduled, resp.Status)
	assert.False(t, resp.ManualOverride)
}

func TestAgendaValidation(t *testing.T) {
	svc := newClassServiceFixture(&classRepoStub{}, nil)

	_, err := svc.Agenda(context.Background(), 1, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAgendaServedFromCache(t *testing.T) {
	repo := &classRepoStub{agenda: []models.ClassDetail{
		{Class: *scheduledClass(), GroupName: "Group A"},
	}}
	cache := newCacheStub()
	svc := newClassServiceFixture(repo, cache)

	first, err := svc.Agenda(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, first.Classes, 1)
	assert.Equal(t, 1, cache.sets)

	repo.agenda = nil // a cache hit must not touch the repository
	second, err := svc.Agenda(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, second.Classes, 1)
	assert.Equal(t, 2, cache.gets)
}

func TestClassUpdateInvalidatesAgendaCache(t *testing.T) {
	repo := &classRepoStub{class: scheduledClass()}
	cache := newCacheStub()
	svc := newClassServiceFixture(repo, cache)

	topic := "Decimals"
	_, err := svc.Update(context.Background(), 42, dto.ClassUpdate{Topic: &topic})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)
}
