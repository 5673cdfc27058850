package service

import (
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/metrics"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// CommissionService pays single-level referral commissions into the
// inviter's bonus balance. The inviter is resolved by referral code on
// every call; a payout is silently skipped when the inviter is missing,
// blocked, or resolves to the earning user itself.
type CommissionService interface {
	PayActivationCommission(user *models.User, price float64, settings *models.Settings) error
	PayDailyProfitCommission(user *models.User, dailyProfit float64, settings *models.Settings) error
	PayInviteBonus(user *models.User, settings *models.Settings) error
}

type commissionService struct {
	userRepo       repository.UserRepository
	commissionRepo repository.CommissionRepository
	wallet         WalletService
	log            *logger.Logger
	metrics        *metrics.Metrics
}

func NewCommissionService(userRepo repository.UserRepository, commissionRepo repository.CommissionRepository, wallet WalletService, log *logger.Logger, m *metrics.Metrics) CommissionService {
	return &commissionService{
		userRepo:       userRepo,
		commissionRepo: commissionRepo,
		wallet:         wallet,
		log:            log,
		metrics:        m,
	}
}

func (s *commissionService) PayActivationCommission(user *models.User, price float64, settings *models.Settings) error {
	if settings.CommissionOnActivation <= 0 {
		return nil
	}
	return s.pay(user, price*settings.CommissionOnActivation, models.CommissionKindActivation)
}

func (s *commissionService) PayDailyProfitCommission(user *models.User, dailyProfit float64, settings *models.Settings) error {
	if settings.CommissionOnDailyProfit <= 0 {
		return nil
	}
	// The commission base is the credited profit, never the principal.
	return s.pay(user, dailyProfit*settings.CommissionOnDailyProfit, models.CommissionKindDailyProfit)
}

func (s *commissionService) PayInviteBonus(user *models.User, settings *models.Settings) error {
	if !settings.PromotionEnabled || settings.InviteBonusAmount <= 0 {
		return nil
	}
	return s.pay(user, settings.InviteBonusAmount, models.CommissionKindInviteBonus)
}

func (s *commissionService) pay(user *models.User, amount float64, kind models.CommissionKind) error {
	if amount <= 0 {
		return nil
	}

	inviter, err := s.resolveInviter(user)
	if err != nil {
		return err
	}
	if inviter == nil {
		return nil
	}

	if err := s.wallet.CreditBonus(inviter.ID, amount); err != nil {
		return err
	}

	record := &models.Commission{
		InviterID:    inviter.ID,
		SourceUserID: user.ID,
		Kind:         kind,
		Amount:       amount,
	}
	if err := s.commissionRepo.SaveCommission(record); err != nil {
		// The bonus is already credited; a missing history row is not
		// worth reversing it over.
		s.log.WithUserID(inviter.ID.Hex()).WithError(err).Warn("failed to record commission")
	}

	s.metrics.CommissionsPaid.WithLabelValues(string(kind)).Inc()
	return nil
}

// resolveInviter looks up the inviter fresh each time; the inviter's
// status may have changed since the invitee registered.
func (s *commissionService) resolveInviter(user *models.User) (*models.User, error) {
	if user.InvitedBy == "" {
		return nil, nil
	}

	inviter, err := s.userRepo.GetUserByReferralCode(user.InvitedBy)
	if err != nil {
		return nil, err
	}
	if inviter == nil || inviter.IsBlocked() {
		return nil, nil
	}
	if inviter.ID == user.ID {
		return nil, nil
	}
	return inviter, nil
}
