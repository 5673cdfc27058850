package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// InvestmentService runs the investment lifecycle under the single-slot
// policy: a user holds at most one active investment and moves to a
// bigger plan through Upgrade.
type InvestmentService interface {
	Activate(userID, planID primitive.ObjectID) (*models.Investment, error)
	Upgrade(userID, newPlanID primitive.ObjectID) (*models.Investment, error)
	GetUserInvestments(userID primitive.ObjectID) ([]*models.Investment, error)
}

type investmentService struct {
	userRepo     repository.UserRepository
	planRepo     repository.PlanRepository
	invRepo      repository.InvestmentRepository
	settingsRepo repository.SettingsRepository
	wallet       WalletService
	commissions  CommissionService
	log          *logger.Logger
	locks        *userLocks
	now          func() time.Time
}

func NewInvestmentService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	invRepo repository.InvestmentRepository,
	settingsRepo repository.SettingsRepository,
	wallet WalletService,
	commissions CommissionService,
	log *logger.Logger,
) InvestmentService {
	return &investmentService{
		userRepo:     userRepo,
		planRepo:     planRepo,
		invRepo:      invRepo,
		settingsRepo: settingsRepo,
		wallet:       wallet,
		commissions:  commissions,
		log:          log,
		locks:        newUserLocks(),
		now:          time.Now,
	}
}

func (s *investmentService) Activate(userID, planID primitive.ObjectID) (*models.Investment, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFoundf("user %s", userID.Hex())
	}
	if user.IsBlocked() {
		return nil, apperrors.ErrUnauthorized
	}

	plan, err := s.planRepo.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFoundf("plan %s", planID.Hex())
	}
	if !plan.IsActive {
		return nil, apperrors.Conflictf("plan %s is not active", plan.Name)
	}

	existing, err := s.invRepo.GetActiveInvestmentByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflictf("user already has an active investment")
	}

	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}

	if err := s.wallet.Debit(userID, plan.Price); err != nil {
		return nil, err
	}

	now := s.now()
	investment := &models.Investment{
		UserID:             userID,
		PlanID:             plan.ID,
		Amount:             plan.Price,
		DailyProfitRate:    plan.DailyProfitRate,
		StartDate:          now,
		EndDate:            now.AddDate(0, 0, plan.DurationDays),
		LastProfitCreditAt: &now,
		Status:             models.InvestmentStatusActive,
	}
	if err := s.invRepo.SaveInvestment(investment); err != nil {
		// The debit half already landed; put it back before failing.
		if refundErr := s.wallet.Credit(userID, plan.Price); refundErr != nil {
			s.log.WithUserID(userID.Hex()).WithError(refundErr).Error("failed to refund activation debit")
		}
		return nil, err
	}

	if err := s.userRepo.AddActiveInvestment(userID, investment.ID); err != nil {
		s.log.WithUserID(userID.Hex()).WithError(err).Warn("failed to append active investment reference")
	}

	if err := s.commissions.PayActivationCommission(user, plan.Price, settings); err != nil {
		s.log.WithUserID(userID.Hex()).WithError(err).Warn("activation commission failed")
	}

	return investment, nil
}

func (s *investmentService) Upgrade(userID, newPlanID primitive.ObjectID) (*models.Investment, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFoundf("user %s", userID.Hex())
	}
	if user.IsBlocked() {
		return nil, apperrors.ErrUnauthorized
	}

	current, err := s.invRepo.GetActiveInvestmentByUserID(userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.Conflictf("no active investment to upgrade")
	}

	plan, err := s.planRepo.GetPlanByID(newPlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFoundf("plan %s", newPlanID.Hex())
	}
	if !plan.IsActive {
		return nil, apperrors.Conflictf("plan %s is not active", plan.Name)
	}
	if plan.Price <= current.Amount {
		return nil, apperrors.Conflictf("new plan must cost more than the current investment")
	}

	difference := plan.Price - current.Amount
	if err := s.wallet.Debit(userID, difference); err != nil {
		return nil, err
	}

	now := s.now()
	change := repository.PlanChange{
		PlanID:          plan.ID,
		Amount:          plan.Price,
		DailyProfitRate: plan.DailyProfitRate,
		EndDate:         now.AddDate(0, 0, plan.DurationDays),
	}
	if err := s.invRepo.ApplyPlanChange(current.ID, change, now); err != nil {
		if refundErr := s.wallet.Credit(userID, difference); refundErr != nil {
			s.log.WithUserID(userID.Hex()).WithError(refundErr).Error("failed to refund upgrade debit")
		}
		return nil, err
	}

	current.PlanID = plan.ID
	current.Amount = plan.Price
	current.DailyProfitRate = plan.DailyProfitRate
	current.EndDate = change.EndDate
	current.LastProfitCreditAt = &now
	return current, nil
}

func (s *investmentService) GetUserInvestments(userID primitive.ObjectID) ([]*models.Investment, error) {
	return s.invRepo.GetInvestmentsByUserID(userID)
}
