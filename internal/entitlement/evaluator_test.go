package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluate_NoRecord(t *testing.T) {
	policy := models.DefaultPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	st := Evaluate(nil, policy, now)

	assert.Equal(t, models.StateExpired, st.State)
	assert.False(t, st.HasSubscription)
	assert.False(t, st.IsActive)
	assert.False(t, st.IsInTrial)
	assert.False(t, st.IsInGracePeriod)
	assert.False(t, st.IsAccessDenied)
	assert.False(t, st.SignInRestricted)
	assert.Nil(t, st.GracePeriodEnd)
	assert.Equal(t, policy.Limits, st.Limits)
}

func TestEvaluate_TrialWindow(t *testing.T) {
	policy := models.DefaultPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		trialEnd      time.Time
		wantInTrial   bool
		wantRemaining int
	}{
		{
			name:          "trial ends in one day",
			trialEnd:      now.Add(24 * time.Hour),
			wantInTrial:   true,
			wantRemaining: 1,
		},
		{
			name:          "trial ends in one hour rounds up to a day",
			trialEnd:      now.Add(time.Hour),
			wantInTrial:   true,
			wantRemaining: 1,
		},
		{
			name:          "trial ends in ten and a half days",
			trialEnd:      now.Add(10*24*time.Hour + 12*time.Hour),
			wantInTrial:   true,
			wantRemaining: 11,
		},
		{
			name:        "trial expired one second ago",
			trialEnd:    now.Add(-time.Second),
			wantInTrial: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.SubscriptionRecord{
				UserUID:   "user-1",
				Status:    models.StatusTrial,
				StartDate: now.AddDate(0, 0, -3),
				TrialEnd:  timePtr(tt.trialEnd),
				CreatedAt: now.AddDate(0, 0, -3),
			}

			st := Evaluate(rec, policy, now)

			assert.Equal(t, tt.wantInTrial, st.IsInTrial)
			assert.Equal(t, tt.wantInTrial, st.IsActive)
			assert.Equal(t, tt.wantRemaining, st.RemainingTrialDays)
			if tt.wantInTrial {
				assert.Equal(t, models.StateTrial, st.State)
			} else {
				assert.Equal(t, models.StateExpired, st.State)
			}
		})
	}
}

func TestEvaluate_ActiveWindow(t *testing.T) {
	policy := models.DefaultPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active with future end date", func(t *testing.T) {
		end := now.AddDate(0, 0, 10)
		rec := &models.SubscriptionRecord{
			Status:  models.StatusActive,
			EndDate: timePtr(end),
		}

		st := Evaluate(rec, policy, now)

		assert.Equal(t, models.StateActive, st.State)
		assert.True(t, st.IsActive)
		require.NotNil(t, st.DaysUntilExpiry)
		assert.Equal(t, 10, *st.DaysUntilExpiry)
	})

	t.Run("active without end date means no fixed expiry", func(t *testing.T) {
		rec := &models.SubscriptionRecord{Status: models.StatusActive}

		st := Evaluate(rec, policy, now)

		assert.Equal(t, models.StateActive, st.State)
		assert.True(t, st.IsActive)
		assert.Nil(t, st.DaysUntilExpiry)
	})

	t.Run("cancelled record with future end date gets no access", func(t *testing.T) {
		end := now.AddDate(0, 0, 10)
		rec := &models.SubscriptionRecord{
			Status:  models.StatusCancelled,
			EndDate: timePtr(end),
		}

		st := Evaluate(rec, policy, now)

		assert.Equal(t, models.StateExpired, st.State)
		assert.False(t, st.IsActive)
	})
}

func TestEvaluate_GracePeriod(t *testing.T) {
	policy := models.DefaultPolicy()
	policy.GracePeriodDays = 7

	t.Run("one day past expiry is inside grace", func(t *testing.T) {
		end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		now := end.AddDate(0, 0, 1)
		rec := &models.SubscriptionRecord{
			Status:  models.StatusActive,
			EndDate: timePtr(end),
		}

		st := Evaluate(rec, policy, now)

		assert.Equal(t, models.StateGracePeriod, st.State)
		assert.True(t, st.IsInGracePeriod)
		assert.False(t, st.IsActive)
		require.NotNil(t, st.DaysSinceExpiry)
		assert.Equal(t, 1, *st.DaysSinceExpiry)
		require.NotNil(t, st.GracePeriodEnd)
		assert.Equal(t, end.AddDate(0, 0, 7), *st.GracePeriodEnd)
	})

	t.Run("frozen grace end beats current policy length", func(t *testing.T) {
		end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		frozen := end.AddDate(0, 0, 7)
		rec := &models.SubscriptionRecord{
			Status:         models.StatusExpired,
			EndDate:        timePtr(end),
			GracePeriodEnd: timePtr(frozen),
		}

		// Admin shrinks the grace length after the window was frozen.
		shrunk := policy
		shrunk.GracePeriodDays = 1

		now := end.AddDate(0, 0, 5)
		st := Evaluate(rec, shrunk, now)

		assert.True(t, st.IsInGracePeriod, "frozen window must keep the user inside grace")
		require.NotNil(t, st.GracePeriodEnd)
		assert.Equal(t, frozen, *st.GracePeriodEnd)
	})

	t.Run("past grace with restriction disabled is plain expired", func(t *testing.T) {
		end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		now := end.AddDate(0, 0, 8)
		rec := &models.SubscriptionRecord{
			Status:  models.StatusActive,
			EndDate: timePtr(end),
		}

		st := Evaluate(rec, policy, now)

		assert.Equal(t, models.StateExpired, st.State)
		assert.False(t, st.IsInGracePeriod)
		assert.False(t, st.IsAccessDenied)
		assert.False(t, st.SignInRestricted)
	})
}

func TestEvaluate_SignInRestriction(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := models.DefaultPolicy()
	policy.GracePeriodDays = 7
	policy.SignInRestrictionEnabled = true
	policy.SignInRestrictionDays = 30

	rec := &models.SubscriptionRecord{
		Status:  models.StatusActive,
		EndDate: timePtr(end),
	}

	tests := []struct {
		name           string
		now            time.Time
		wantRestricted bool
		wantDenied     bool
	}{
		{
			name:           "inside restriction window",
			now:            end.AddDate(0, 0, 8),
			wantRestricted: true,
		},
		{
			name:           "last moment of restriction window",
			now:            end.AddDate(0, 0, 7+30),
			wantRestricted: true,
		},
		{
			name:       "past grace plus full restriction window",
			now:        end.AddDate(0, 0, 7+31),
			wantDenied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(rec, policy, tt.now)

			assert.Equal(t, models.StateExpired, st.State)
			assert.Equal(t, tt.wantRestricted, st.SignInRestricted)
			assert.Equal(t, tt.wantDenied, st.IsAccessDenied)
		})
	}

	t.Run("restriction disabled never sets either flag", func(t *testing.T) {
		off := policy
		off.SignInRestrictionEnabled = false

		st := Evaluate(rec, off, end.AddDate(0, 5, 0))

		assert.False(t, st.SignInRestricted)
		assert.False(t, st.IsAccessDenied)
	})
}

func TestEvaluate_ExpiredTrialWithoutEndDate(t *testing.T) {
	// Пробный период истёк, EndDate никогда не назначался: опорной даты
	// для льготного периода и окна ограничения нет, доступ закрывается сразу.
	policy := models.DefaultPolicy()
	policy.SignInRestrictionEnabled = true

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := &models.SubscriptionRecord{
		Status:   models.StatusTrial,
		TrialEnd: timePtr(now.AddDate(0, -2, 0)),
	}

	st := Evaluate(rec, policy, now)

	assert.Equal(t, models.StateExpired, st.State)
	assert.False(t, st.IsInGracePeriod)
	assert.False(t, st.SignInRestricted)
	assert.False(t, st.IsAccessDenied)
	assert.Nil(t, st.GracePeriodEnd)
	assert.Nil(t, st.DaysSinceExpiry)
}

func TestEvaluate_Deterministic(t *testing.T) {
	policy := models.DefaultPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &models.SubscriptionRecord{
		Status:  models.StatusActive,
		EndDate: timePtr(now.AddDate(0, 0, -2)),
	}

	first := Evaluate(rec, policy, now)
	second := Evaluate(rec, policy, now)

	assert.Equal(t, first, second)
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, ceilDays(-time.Hour))
	assert.Equal(t, 0, ceilDays(0))
	assert.Equal(t, 1, ceilDays(time.Second))
	assert.Equal(t, 1, ceilDays(24*time.Hour))
	assert.Equal(t, 2, ceilDays(24*time.Hour+time.Minute))
}
