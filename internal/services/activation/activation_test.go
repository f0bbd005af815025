package activation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) SupersedeAndCreate(ctx context.Context, rec models.SubscriptionRecord) (int, error) {
	args := m.Called(ctx, rec)
	return args.Int(0), args.Error(1)
}

type PlanRepoMock struct{ mock.Mock }

func (m *PlanRepoMock) FindActivePlanByID(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

type PolicyMock struct{ mock.Mock }

func (m *PolicyMock) Load(ctx context.Context) (models.PolicyConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.PolicyConfig), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_Activate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	plan := &models.Plan{ID: 3, Name: "monthly", DurationDays: 30, IsActive: true}
	policy := models.DefaultPolicy()
	policy.GracePeriodDays = 7

	tests := []struct {
		name       string
		planID     int
		setupMocks func(subs *SubsRepoMock, plans *PlanRepoMock, pol *PolicyMock)
		wantErr    error
	}{
		{
			name:   "success activation freezes grace period at creation",
			planID: 3,
			setupMocks: func(subs *SubsRepoMock, plans *PlanRepoMock, pol *PolicyMock) {
				plans.On("FindActivePlanByID", mock.Anything, 3).Return(plan, nil).Once()
				pol.On("Load", mock.Anything).Return(policy, nil).Once()
				subs.On("SupersedeAndCreate", mock.Anything, mock.MatchedBy(func(rec models.SubscriptionRecord) bool {
					wantEnd := now.AddDate(0, 0, 30)
					wantGrace := wantEnd.AddDate(0, 0, 7)
					return rec.UserUID == "user-1" &&
						rec.Status == models.StatusActive &&
						rec.PlanID != nil && *rec.PlanID == 3 &&
						rec.StartDate.Equal(now) &&
						rec.EndDate != nil && rec.EndDate.Equal(wantEnd) &&
						rec.GracePeriodEnd != nil && rec.GracePeriodEnd.Equal(wantGrace) &&
						rec.TrialEnd == nil
				})).Return(42, nil).Once()
			},
		},
		{
			name:   "unknown plan",
			planID: 99,
			setupMocks: func(_ *SubsRepoMock, plans *PlanRepoMock, _ *PolicyMock) {
				plans.On("FindActivePlanByID", mock.Anything, 99).Return(nil, nil).Once()
			},
			wantErr: ErrPlanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsRepoMock)
			plans := new(PlanRepoMock)
			pol := new(PolicyMock)
			tt.setupMocks(subs, plans, pol)

			svc := New(subs, plans, pol, newNoopLogger())
			svc.now = func() time.Time { return now }

			rec, err := svc.Activate(context.Background(), "user-1", tt.planID)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 42, rec.ID)
			}

			subs.AssertExpectations(t)
			plans.AssertExpectations(t)
			pol.AssertExpectations(t)
		})
	}
}

func TestService_Activate_RepositoryError(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	plan := &models.Plan{ID: 3, Name: "monthly", DurationDays: 30, IsActive: true}

	subs := new(SubsRepoMock)
	plans := new(PlanRepoMock)
	pol := new(PolicyMock)
	plans.On("FindActivePlanByID", mock.Anything, 3).Return(plan, nil).Once()
	pol.On("Load", mock.Anything).Return(models.DefaultPolicy(), nil).Once()
	subs.On("SupersedeAndCreate", mock.Anything, mock.Anything).Return(0, errors.New("tx failed")).Once()

	svc := New(subs, plans, pol, newNoopLogger())
	svc.now = func() time.Time { return now }

	_, err := svc.Activate(context.Background(), "user-1", 3)
	assert.Error(t, err)
}
