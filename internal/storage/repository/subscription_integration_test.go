package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

func TestStorage_FindCurrentSubscription(t *testing.T) {
	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		wantStatus models.SubscriptionStatus
		wantNil    bool
		setup      func(t *testing.T, factory *TestDataFactory, userUID string)
	}{
		{
			name:       "returns latest record when several exist",
			wantStatus: models.StatusActive,
			setup: func(t *testing.T, factory *TestDataFactory, userUID string) {
				trialEnd := startDate.AddDate(0, 0, 14)
				factory.CreateSubscription(t, userUID, nil, models.StatusCancelled,
					startDate, nil, &trialEnd, nil, startDate)
				endDate := startDate.AddDate(0, 1, 0)
				planID := factory.CreatePlan(t, "monthly", "Monthly", 49900, 30, true)
				factory.CreateSubscription(t, userUID, &planID, models.StatusActive,
					startDate, &endDate, nil, nil, startDate.AddDate(0, 0, 3))
			},
		},
		{
			name:    "no records for user",
			wantNil: true,
			setup:   func(_ *testing.T, _ *TestDataFactory, _ string) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			userUID := uuid.New().String()
			factory := NewTestDataFactory(storage)
			tt.setup(t, factory, userUID)

			got, err := storage.FindCurrentSubscription(context.Background(), userUID)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantStatus, got.Status)
			}
		})
	}
}

func TestStorage_SupersedeAndCreate(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)

	userUID := uuid.New().String()
	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := startDate.AddDate(0, 0, 14)
	oldID := factory.CreateSubscription(t, userUID, nil, models.StatusTrial,
		startDate, nil, &trialEnd, nil, startDate)

	planID := factory.CreatePlan(t, "monthly", "Monthly", 49900, 30, true)
	endDate := startDate.AddDate(0, 0, 30)
	graceEnd := endDate.AddDate(0, 0, 7)
	newID, err := storage.SupersedeAndCreate(context.Background(), models.SubscriptionRecord{
		UserUID:        userUID,
		PlanID:         &planID,
		Status:         models.StatusActive,
		StartDate:      startDate,
		EndDate:        &endDate,
		GracePeriodEnd: &graceEnd,
		CreatedAt:      startDate,
	})
	require.NoError(t, err)
	require.NotZero(t, newID)

	// Старая запись вытеснена, новая действует
	verification.VerifySubscriptionStatus(t, oldID, models.StatusCancelled)
	verification.VerifySubscriptionStatus(t, newID, models.StatusActive)
	verification.VerifyGracePeriodFrozen(t, newID, graceEnd)
}

func TestStorage_MarkExpired(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)

	userUID := uuid.New().String()
	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := startDate.AddDate(0, 0, 14)
	id := factory.CreateSubscription(t, userUID, nil, models.StatusTrial,
		startDate, nil, &trialEnd, nil, startDate)

	n, err := storage.MarkExpired(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	verification.VerifySubscriptionStatus(t, id, models.StatusExpired)

	// Повторный вызов ничего не меняет
	n, err = storage.MarkExpired(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	verification.VerifySubscriptionStatus(t, id, models.StatusExpired)
}

func TestStorage_FreezeGracePeriod(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)

	userUID := uuid.New().String()
	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 0, 30)
	id := factory.CreateSubscription(t, userUID, nil, models.StatusActive,
		startDate, &endDate, nil, nil, startDate)

	graceEnd := endDate.AddDate(0, 0, 7)
	n, err := storage.FreezeGracePeriod(context.Background(), id, graceEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	verification.VerifyGracePeriodFrozen(t, id, graceEnd)

	// Повторная заморозка с другим значением не перезаписывает границу
	otherGraceEnd := endDate.AddDate(0, 0, 3)
	n, err = storage.FreezeGracePeriod(context.Background(), id, otherGraceEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	verification.VerifyGracePeriodFrozen(t, id, graceEnd)
}

func TestStorage_ListExpiredTrialsAndLapsedActive(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	startDate := now.AddDate(0, -1, 0)

	expiredTrialEnd := now.AddDate(0, 0, -2)
	liveTrialEnd := now.AddDate(0, 0, 5)
	expiredTrialID := factory.CreateSubscription(t, uuid.New().String(), nil, models.StatusTrial,
		startDate, nil, &expiredTrialEnd, nil, startDate)
	factory.CreateSubscription(t, uuid.New().String(), nil, models.StatusTrial,
		startDate, nil, &liveTrialEnd, nil, startDate)

	planID := factory.CreatePlan(t, "monthly", "Monthly", 49900, 30, true)
	lapsedEnd := now.AddDate(0, 0, -1)
	liveEnd := now.AddDate(0, 0, 20)
	lapsedActiveID := factory.CreateSubscription(t, uuid.New().String(), &planID, models.StatusActive,
		startDate, &lapsedEnd, nil, nil, startDate)
	factory.CreateSubscription(t, uuid.New().String(), &planID, models.StatusActive,
		startDate, &liveEnd, nil, nil, startDate)

	trials, err := storage.ListExpiredTrials(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, expiredTrialID, trials[0].ID)

	lapsed, err := storage.ListLapsedActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, lapsedActiveID, lapsed[0].ID)
}

func TestStorage_Settings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateSetting(t, "trial_days", "14")

	value, found, err := storage.GetSetting(context.Background(), "trial_days")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "14", value)

	_, found, err = storage.GetSetting(context.Background(), "unknown_key")
	require.NoError(t, err)
	assert.False(t, found)

	err = storage.UpsertSetting(context.Background(), "trial_days", "30")
	require.NoError(t, err)

	value, found, err = storage.GetSetting(context.Background(), "trial_days")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "30", value)
}

func TestStorage_FindActivePlanByID(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	activeID := factory.CreatePlan(t, "monthly", "Monthly", 49900, 30, true)
	retiredID := factory.CreatePlan(t, "legacy", "Legacy", 9900, 30, false)

	plan, err := storage.FindActivePlanByID(context.Background(), activeID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "monthly", plan.Name)
	assert.Equal(t, 49900, plan.Price)
	assert.Equal(t, 30, plan.DurationDays)

	plan, err = storage.FindActivePlanByID(context.Background(), retiredID)
	require.NoError(t, err)
	assert.Nil(t, plan)

	plans, err := storage.ListActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "monthly", plans[0].Name)
}
