package service

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/metrics"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

func testLogger() *logger.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logger.Logger{Logger: log}
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWith(prometheus.NewRegistry(), "test")
}

// fakeUserRepo keeps users in a map and mirrors the store's conditional
// balance updates, including the non-negativity guard.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User

	balanceErr error // forced failure for the next AdjustBalance
	bonusErr   error // forced failure for the next AdjustBonus
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) SaveUser(user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetUserByID(id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByPhone(phone string) (*models.User, error) {
	for _, user := range r.users {
		if user.PhoneNumber == phone {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByReferralCode(code string) (*models.User, error) {
	for _, user := range r.users {
		if user.ReferralCode == code {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByVisitorID(visitorID string) (*models.User, error) {
	for _, user := range r.users {
		if user.VisitorID == visitorID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetAllUsers(page, limit int64) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, int64(len(r.users)), nil
}

func (r *fakeUserRepo) GetUsersInvitedBy(code string, page, limit int64) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range r.users {
		if user.InvitedBy == code {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) UpdateStatus(id primitive.ObjectID, status models.UserStatus) error {
	user, ok := r.users[id]
	if !ok {
		return apperrors.NotFoundf("user %s", id.Hex())
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) AdjustBalance(id primitive.ObjectID, delta float64) error {
	if r.balanceErr != nil {
		err := r.balanceErr
		r.balanceErr = nil
		return err
	}
	user, ok := r.users[id]
	if !ok {
		return apperrors.NotFoundf("user %s", id.Hex())
	}
	if user.Balance+delta < 0 {
		return apperrors.ErrInsufficientFunds
	}
	user.Balance += delta
	return nil
}

func (r *fakeUserRepo) AdjustBonus(id primitive.ObjectID, delta float64) error {
	if r.bonusErr != nil {
		err := r.bonusErr
		r.bonusErr = nil
		return err
	}
	user, ok := r.users[id]
	if !ok {
		return apperrors.NotFoundf("user %s", id.Hex())
	}
	if user.Bonus+delta < 0 {
		return apperrors.ErrInsufficientFunds
	}
	user.Bonus += delta
	return nil
}

func (r *fakeUserRepo) AddActiveInvestment(userID, investmentID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.NotFoundf("user %s", userID.Hex())
	}
	user.ActiveInvestmentIDs = append(user.ActiveInvestmentIDs, investmentID)
	return nil
}

func (r *fakeUserRepo) RemoveActiveInvestment(userID, investmentID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.NotFoundf("user %s", userID.Hex())
	}
	kept := user.ActiveInvestmentIDs[:0]
	for _, id := range user.ActiveInvestmentIDs {
		if id != investmentID {
			kept = append(kept, id)
		}
	}
	user.ActiveInvestmentIDs = kept
	return nil
}

func (r *fakeUserRepo) AppendDeposit(userID, depositID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.NotFoundf("user %s", userID.Hex())
	}
	user.DepositIDs = append(user.DepositIDs, depositID)
	return nil
}

func (r *fakeUserRepo) AppendWithdrawal(userID, withdrawalID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.NotFoundf("user %s", userID.Hex())
	}
	user.WithdrawalIDs = append(user.WithdrawalIDs, withdrawalID)
	return nil
}

// fakeInvestmentRepo mirrors the conditional claim semantics: reads hand
// out copies, so a claim never mutates a previously fetched snapshot.
type fakeInvestmentRepo struct {
	investments map[primitive.ObjectID]*models.Investment

	saveErr  error
	claimErr error
}

func newFakeInvestmentRepo() *fakeInvestmentRepo {
	return &fakeInvestmentRepo{investments: make(map[primitive.ObjectID]*models.Investment)}
}

func (r *fakeInvestmentRepo) add(inv *models.Investment) *models.Investment {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	r.investments[inv.ID] = inv
	return inv
}

func (r *fakeInvestmentRepo) SaveInvestment(inv *models.Investment) error {
	if r.saveErr != nil {
		err := r.saveErr
		r.saveErr = nil
		return err
	}
	r.add(inv)
	return nil
}

func (r *fakeInvestmentRepo) GetInvestmentByID(id primitive.ObjectID) (*models.Investment, error) {
	inv, ok := r.investments[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInvestmentRepo) GetInvestmentsByUserID(userID primitive.ObjectID) ([]*models.Investment, error) {
	var out []*models.Investment
	for _, inv := range r.investments {
		if inv.UserID == userID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInvestmentRepo) GetActiveInvestmentByUserID(userID primitive.ObjectID) (*models.Investment, error) {
	for _, inv := range r.investments {
		if inv.UserID == userID && inv.Status == models.InvestmentStatusActive {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeInvestmentRepo) CountActiveByPlanID(planID primitive.ObjectID) (int64, error) {
	var n int64
	for _, inv := range r.investments {
		if inv.PlanID == planID && inv.Status == models.InvestmentStatusActive {
			n++
		}
	}
	return n, nil
}

func eligibleToday(inv *models.Investment, startOfDay time.Time) bool {
	if inv.Status != models.InvestmentStatusActive {
		return false
	}
	return inv.LastProfitCreditAt == nil || inv.LastProfitCreditAt.Before(startOfDay)
}

func (r *fakeInvestmentRepo) FindEligible(startOfDay time.Time) ([]*models.Investment, error) {
	var out []*models.Investment
	for _, inv := range r.investments {
		if eligibleToday(inv, startOfDay) {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInvestmentRepo) ClaimDailyProfit(id primitive.ObjectID, startOfDay, now time.Time, profit float64) (bool, error) {
	if r.claimErr != nil {
		err := r.claimErr
		r.claimErr = nil
		return false, err
	}
	inv, ok := r.investments[id]
	if !ok || !eligibleToday(inv, startOfDay) {
		return false, nil
	}
	at := now
	inv.LastProfitCreditAt = &at
	inv.CurrentProfit += profit
	return true, nil
}

func (r *fakeInvestmentRepo) ReleaseDailyProfit(id primitive.ObjectID, previous *time.Time, profit float64) error {
	inv, ok := r.investments[id]
	if !ok {
		return nil
	}
	inv.LastProfitCreditAt = previous
	inv.CurrentProfit -= profit
	return nil
}

func (r *fakeInvestmentRepo) Complete(id primitive.ObjectID) (bool, error) {
	inv, ok := r.investments[id]
	if !ok || inv.Status != models.InvestmentStatusActive {
		return false, nil
	}
	inv.Status = models.InvestmentStatusCompleted
	return true, nil
}

func (r *fakeInvestmentRepo) ApplyPlanChange(id primitive.ObjectID, change repository.PlanChange, now time.Time) error {
	inv, ok := r.investments[id]
	if !ok {
		return apperrors.NotFoundf("investment %s", id.Hex())
	}
	at := now
	inv.PlanID = change.PlanID
	inv.Amount = change.Amount
	inv.DailyProfitRate = change.DailyProfitRate
	inv.EndDate = change.EndDate
	inv.LastProfitCreditAt = &at
	return nil
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*models.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*models.Plan)}
}

func (r *fakePlanRepo) add(plan *models.Plan) *models.Plan {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	r.plans[plan.ID] = plan
	return plan
}

func (r *fakePlanRepo) SavePlan(plan *models.Plan) error {
	r.add(plan)
	return nil
}

func (r *fakePlanRepo) GetPlanByID(id primitive.ObjectID) (*models.Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	copied := *plan
	return &copied, nil
}

func (r *fakePlanRepo) GetPlanByName(name string) (*models.Plan, error) {
	for _, plan := range r.plans {
		if plan.Name == name {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetAllPlans(activeOnly bool) ([]*models.Plan, error) {
	var out []*models.Plan
	for _, plan := range r.plans {
		if activeOnly && !plan.IsActive {
			continue
		}
		copied := *plan
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakePlanRepo) UpdatePlan(plan *models.Plan) error {
	existing, ok := r.plans[plan.ID]
	if !ok {
		return apperrors.NotFoundf("plan %s", plan.ID.Hex())
	}
	existing.Name = plan.Name
	existing.Price = plan.Price
	existing.DailyProfitRate = plan.DailyProfitRate
	existing.IsActive = plan.IsActive
	return nil
}

func (r *fakePlanRepo) DeletePlan(id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return apperrors.NotFoundf("plan %s", id.Hex())
	}
	delete(r.plans, id)
	return nil
}

type fakeDepositRepo struct {
	deposits map[primitive.ObjectID]*models.Deposit
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{deposits: make(map[primitive.ObjectID]*models.Deposit)}
}

func (r *fakeDepositRepo) add(deposit *models.Deposit) *models.Deposit {
	if deposit.ID.IsZero() {
		deposit.ID = primitive.NewObjectID()
	}
	r.deposits[deposit.ID] = deposit
	return deposit
}

func (r *fakeDepositRepo) SaveDeposit(deposit *models.Deposit) error {
	deposit.Status = models.RequestStatusPending
	deposit.RequestDate = time.Now()
	r.add(deposit)
	return nil
}

func (r *fakeDepositRepo) GetDepositByID(id primitive.ObjectID) (*models.Deposit, error) {
	deposit, ok := r.deposits[id]
	if !ok {
		return nil, nil
	}
	copied := *deposit
	return &copied, nil
}

func (r *fakeDepositRepo) GetDepositsByUserID(userID primitive.ObjectID) ([]*models.Deposit, error) {
	var out []*models.Deposit
	for _, deposit := range r.deposits {
		if deposit.UserID == userID {
			copied := *deposit
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDepositRepo) GetAllDeposits(status models.RequestStatus, page, limit int64) ([]*models.Deposit, int64, error) {
	var out []*models.Deposit
	for _, deposit := range r.deposits {
		if status != "" && deposit.Status != status {
			continue
		}
		copied := *deposit
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDepositRepo) MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
	deposit, ok := r.deposits[id]
	if !ok || deposit.Status != models.RequestStatusPending {
		return false, nil
	}
	deposit.Status = status
	deposit.ReviewDate = &at
	deposit.AdminID = &adminID
	deposit.AdminNote = note
	return true, nil
}

func (r *fakeDepositRepo) RevertReview(id primitive.ObjectID) error {
	deposit, ok := r.deposits[id]
	if !ok {
		return nil
	}
	deposit.Status = models.RequestStatusPending
	deposit.ReviewDate = nil
	deposit.AdminID = nil
	deposit.AdminNote = ""
	return nil
}

func (r *fakeDepositRepo) CountApprovedByUserID(userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, deposit := range r.deposits {
		if deposit.UserID == userID && deposit.Status == models.RequestStatusApproved {
			n++
		}
	}
	return n, nil
}

type fakeWithdrawalRepo struct {
	withdrawals map[primitive.ObjectID]*models.Withdrawal

	saveErr error
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{withdrawals: make(map[primitive.ObjectID]*models.Withdrawal)}
}

func (r *fakeWithdrawalRepo) add(withdrawal *models.Withdrawal) *models.Withdrawal {
	if withdrawal.ID.IsZero() {
		withdrawal.ID = primitive.NewObjectID()
	}
	r.withdrawals[withdrawal.ID] = withdrawal
	return withdrawal
}

func (r *fakeWithdrawalRepo) SaveWithdrawal(withdrawal *models.Withdrawal) error {
	if r.saveErr != nil {
		err := r.saveErr
		r.saveErr = nil
		return err
	}
	withdrawal.Status = models.RequestStatusPending
	withdrawal.RequestDate = time.Now()
	r.add(withdrawal)
	return nil
}

func (r *fakeWithdrawalRepo) GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error) {
	withdrawal, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	copied := *withdrawal
	return &copied, nil
}

func (r *fakeWithdrawalRepo) GetWithdrawalsByUserID(userID primitive.ObjectID) ([]*models.Withdrawal, error) {
	var out []*models.Withdrawal
	for _, withdrawal := range r.withdrawals {
		if withdrawal.UserID == userID {
			copied := *withdrawal
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) GetAllWithdrawals(status models.RequestStatus, page, limit int64) ([]*models.Withdrawal, int64, error) {
	var out []*models.Withdrawal
	for _, withdrawal := range r.withdrawals {
		if status != "" && withdrawal.Status != status {
			continue
		}
		copied := *withdrawal
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawalRepo) MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
	withdrawal, ok := r.withdrawals[id]
	if !ok || withdrawal.Status != models.RequestStatusPending {
		return false, nil
	}
	withdrawal.Status = status
	withdrawal.ReviewDate = &at
	withdrawal.AdminID = &adminID
	withdrawal.AdminNote = note
	return true, nil
}

func (r *fakeWithdrawalRepo) RevertReview(id primitive.ObjectID) error {
	withdrawal, ok := r.withdrawals[id]
	if !ok {
		return nil
	}
	withdrawal.Status = models.RequestStatusPending
	withdrawal.ReviewDate = nil
	withdrawal.AdminID = nil
	withdrawal.AdminNote = ""
	return nil
}

type fakeSettingsRepo struct {
	settings *models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: models.DefaultSettings()}
}

func (r *fakeSettingsRepo) GetSettings() (*models.Settings, error) {
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) UpdateSettings(settings *models.Settings) error {
	copied := *settings
	r.settings = &copied
	return nil
}

type fakeCommissionRepo struct {
	commissions []*models.Commission
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{}
}

func (r *fakeCommissionRepo) SaveCommission(commission *models.Commission) error {
	if commission.ID.IsZero() {
		commission.ID = primitive.NewObjectID()
	}
	commission.CreatedAt = time.Now()
	r.commissions = append(r.commissions, commission)
	return nil
}

func (r *fakeCommissionRepo) GetCommissionsByInviterID(inviterID primitive.ObjectID, page, limit int64) ([]*models.Commission, int64, error) {
	var out []*models.Commission
	for _, commission := range r.commissions {
		if commission.InviterID == inviterID {
			out = append(out, commission)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCommissionRepo) SumByInviterID(inviterID primitive.ObjectID) (float64, error) {
	var sum float64
	for _, commission := range r.commissions {
		if commission.InviterID == inviterID {
			sum += commission.Amount
		}
	}
	return sum, nil
}
