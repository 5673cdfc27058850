package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/models"
)

type settlementFixture struct {
	userRepo     *fakeUserRepo
	invRepo      *fakeInvestmentRepo
	settingsRepo *fakeSettingsRepo
	commissions  *fakeCommissionRepo
	service      *settlementService
}

func newSettlementFixture(now time.Time) *settlementFixture {
	f := &settlementFixture{
		userRepo:     newFakeUserRepo(),
		invRepo:      newFakeInvestmentRepo(),
		settingsRepo: newFakeSettingsRepo(),
		commissions:  newFakeCommissionRepo(),
	}
	log := testLogger()
	wallet := NewWalletService(f.userRepo)
	commissionSvc := NewCommissionService(f.userRepo, f.commissions, wallet, log, testMetrics())
	svc := NewSettlementService(f.invRepo, f.userRepo, f.settingsRepo, wallet, commissionSvc, log, testMetrics())
	f.service = svc.(*settlementService)
	f.service.now = func() time.Time { return now }
	return f
}

func (f *settlementFixture) addActiveInvestment(userID primitive.ObjectID, amount, rate float64, end time.Time, lastCredit *time.Time) *models.Investment {
	return f.invRepo.add(&models.Investment{
		UserID:             userID,
		Amount:             amount,
		DailyProfitRate:    rate,
		StartDate:          end.AddDate(0, 0, -30),
		EndDate:            end,
		LastProfitCreditAt: lastCredit,
		Status:             models.InvestmentStatusActive,
	})
}

func TestSettlementCreditsDailyProfit(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	user := f.userRepo.add(&models.User{Balance: 100, Status: models.UserStatusActive})
	yesterday := now.AddDate(0, 0, -1)
	inv := f.addActiveInvestment(user.ID, 200, 0.01, now.AddDate(0, 0, 10), &yesterday)

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Completed)

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 102.0, got.Balance)

	stored, _ := f.invRepo.GetInvestmentByID(inv.ID)
	assert.Equal(t, 2.0, stored.CurrentProfit)
	require.NotNil(t, stored.LastProfitCreditAt)
	assert.Equal(t, now, *stored.LastProfitCreditAt)
}

func TestSettlementIsIdempotentWithinADay(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	user := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusActive})
	f.addActiveInvestment(user.ID, 200, 0.01, now.AddDate(0, 0, 10), nil)

	_, err := f.service.Run()
	require.NoError(t, err)

	// Second trigger of the same day: nothing is eligible anymore.
	second, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 2.0, got.Balance)
}

func TestSettlementCreditsAgainNextDay(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(day1)
	user := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusActive})
	f.addActiveInvestment(user.ID, 200, 0.01, day1.AddDate(0, 0, 10), nil)

	_, err := f.service.Run()
	require.NoError(t, err)

	f.service.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 4.0, got.Balance)
}

func TestSettlementPaysCommissionOnProfitNotPrincipal(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	inviter := f.userRepo.add(&models.User{Status: models.UserStatusActive, ReferralCode: "TEAM01"})
	user := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusActive, InvitedBy: "TEAM01"})
	f.addActiveInvestment(user.ID, 200, 0.01, now.AddDate(0, 0, 10), nil)
	f.settingsRepo.settings.CommissionOnDailyProfit = 0.10

	_, err := f.service.Run()
	require.NoError(t, err)

	// Profit is 2.00; the inviter earns 10% of that, not of the 200.
	got, _ := f.userRepo.GetUserByID(inviter.ID)
	assert.Equal(t, 0.2, got.Bonus)
}

func TestSettlementCompletesExpiredWithoutProfit(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	user := f.userRepo.add(&models.User{Balance: 100, Status: models.UserStatusActive})
	yesterday := now.AddDate(0, 0, -1)
	inv := f.addActiveInvestment(user.ID, 200, 0.01, now.Add(-time.Hour), &yesterday)
	f.userRepo.users[user.ID].ActiveInvestmentIDs = []primitive.ObjectID{inv.ID}

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Completed)

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 100.0, got.Balance)
	assert.Empty(t, got.ActiveInvestmentIDs)

	stored, _ := f.invRepo.GetInvestmentByID(inv.ID)
	assert.Equal(t, models.InvestmentStatusCompleted, stored.Status)
}

func TestSettlementSkipsBlockedUsers(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	user := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusBlocked})
	inv := f.addActiveInvestment(user.ID, 200, 0.01, now.AddDate(0, 0, 10), nil)

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.service.metrics.InvestmentsSkipped))

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 0.0, got.Balance)

	// The marker is untouched; unblocking makes the investment eligible
	// again on the next run.
	stored, _ := f.invRepo.GetInvestmentByID(inv.ID)
	assert.Nil(t, stored.LastProfitCreditAt)
}

func TestSettlementZeroRateInvestmentSettlesAsNoOp(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	inviter := f.userRepo.add(&models.User{Status: models.UserStatusActive, ReferralCode: "TEAM01"})
	user := f.userRepo.add(&models.User{Balance: 50, Status: models.UserStatusActive, InvitedBy: "TEAM01"})
	inv := f.addActiveInvestment(user.ID, 200, 0, now.AddDate(0, 0, 10), nil)
	f.settingsRepo.settings.CommissionOnDailyProfit = 0.10

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)

	// The day is consumed but no money moves, for the owner or the
	// inviter.
	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 50.0, got.Balance)
	invGot, _ := f.userRepo.GetUserByID(inviter.ID)
	assert.Equal(t, 0.0, invGot.Bonus)

	stored, _ := f.invRepo.GetInvestmentByID(inv.ID)
	require.NotNil(t, stored.LastProfitCreditAt)
	assert.Equal(t, now, *stored.LastProfitCreditAt)

	// Same-day re-run finds nothing eligible instead of retrying.
	second, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.service.metrics.InvestmentsFailed))
}

func TestSettlementReleasesClaimWhenCreditFails(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	user := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusActive})
	yesterday := now.AddDate(0, 0, -1)
	inv := f.addActiveInvestment(user.ID, 200, 0.01, now.AddDate(0, 0, 10), &yesterday)
	f.userRepo.balanceErr = errors.New("write failed")

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)

	stored, _ := f.invRepo.GetInvestmentByID(inv.ID)
	assert.Equal(t, 0.0, stored.CurrentProfit)
	require.NotNil(t, stored.LastProfitCreditAt)
	assert.Equal(t, yesterday, *stored.LastProfitCreditAt)

	// The next run picks it up again.
	second, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)

	got, _ := f.userRepo.GetUserByID(user.ID)
	assert.Equal(t, 2.0, got.Balance)
}

func TestSettlementFailureDoesNotStopTheBatch(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newSettlementFixture(now)
	healthy := f.userRepo.add(&models.User{Balance: 0, Status: models.UserStatusActive})
	f.addActiveInvestment(healthy.ID, 100, 0.01, now.AddDate(0, 0, 10), nil)
	// Orphaned investment: its owner does not exist.
	f.addActiveInvestment(primitive.NewObjectID(), 100, 0.01, now.AddDate(0, 0, 10), nil)

	summary, err := f.service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)

	got, _ := f.userRepo.GetUserByID(healthy.ID)
	assert.Equal(t, 1.0, got.Balance)
}
