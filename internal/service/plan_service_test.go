package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
)

func newPlanFixture() (*fakePlanRepo, *fakeInvestmentRepo, PlanService) {
	planRepo := newFakePlanRepo()
	invRepo := newFakeInvestmentRepo()
	return planRepo, invRepo, NewPlanService(planRepo, invRepo)
}

func TestCreatePlanValidation(t *testing.T) {
	_, _, svc := newPlanFixture()

	cases := []struct {
		name string
		plan models.Plan
	}{
		{"missing name", models.Plan{Price: 100, DailyProfitRate: 0.01, DurationDays: 30}},
		{"zero price", models.Plan{Name: "A", DailyProfitRate: 0.01, DurationDays: 30}},
		{"rate above one", models.Plan{Name: "A", Price: 100, DailyProfitRate: 1.5, DurationDays: 30}},
		{"negative rate", models.Plan{Name: "A", Price: 100, DailyProfitRate: -0.1, DurationDays: 30}},
		{"zero duration", models.Plan{Name: "A", Price: 100, DailyProfitRate: 0.01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := tc.plan
			assert.ErrorIs(t, svc.CreatePlan(&plan), apperrors.ErrValidation)
		})
	}
}

func TestCreatePlanDuplicateName(t *testing.T) {
	_, _, svc := newPlanFixture()

	plan := &models.Plan{Name: "Silver", Price: 300, DailyProfitRate: 0.02, DurationDays: 30, IsActive: true}
	require.NoError(t, svc.CreatePlan(plan))

	dup := &models.Plan{Name: "Silver", Price: 400, DailyProfitRate: 0.03, DurationDays: 60}
	assert.ErrorIs(t, svc.CreatePlan(dup), apperrors.ErrStateConflict)
}

func TestGetPlansActiveOnly(t *testing.T) {
	planRepo, _, svc := newPlanFixture()
	planRepo.add(&models.Plan{Name: "Live", Price: 100, DailyProfitRate: 0.01, DurationDays: 30, IsActive: true})
	planRepo.add(&models.Plan{Name: "Retired", Price: 100, DailyProfitRate: 0.01, DurationDays: 30, IsActive: false})

	active, err := svc.GetPlans(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Live", active[0].Name)

	all, err := svc.GetPlans(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdatePlanKeepsDuration(t *testing.T) {
	planRepo, _, svc := newPlanFixture()
	plan := planRepo.add(&models.Plan{Name: "Silver", Price: 300, DailyProfitRate: 0.02, DurationDays: 30, IsActive: true})

	update := &models.Plan{ID: plan.ID, Name: "Silver", Price: 350, DailyProfitRate: 0.025, IsActive: true}
	require.NoError(t, svc.UpdatePlan(update))

	stored, _ := planRepo.GetPlanByID(plan.ID)
	assert.Equal(t, 350.0, stored.Price)
	assert.Equal(t, 30, stored.DurationDays)
}

func TestDeletePlanBlockedByActiveInvestments(t *testing.T) {
	planRepo, invRepo, svc := newPlanFixture()
	plan := planRepo.add(&models.Plan{Name: "Silver", Price: 300, DailyProfitRate: 0.02, DurationDays: 30, IsActive: true})
	invRepo.add(&models.Investment{
		PlanID:  plan.ID,
		Amount:  300,
		EndDate: time.Now().AddDate(0, 0, 10),
		Status:  models.InvestmentStatusActive,
	})

	assert.ErrorIs(t, svc.DeletePlan(plan.ID), apperrors.ErrStateConflict)

	stored, _ := planRepo.GetPlanByID(plan.ID)
	assert.NotNil(t, stored)
}

func TestDeletePlanWithoutActiveInvestments(t *testing.T) {
	planRepo, invRepo, svc := newPlanFixture()
	plan := planRepo.add(&models.Plan{Name: "Silver", Price: 300, DailyProfitRate: 0.02, DurationDays: 30, IsActive: true})
	invRepo.add(&models.Investment{
		PlanID: plan.ID,
		Amount: 300,
		Status: models.InvestmentStatusCompleted,
	})

	require.NoError(t, svc.DeletePlan(plan.ID))

	stored, _ := planRepo.GetPlanByID(plan.ID)
	assert.Nil(t, stored)
}
