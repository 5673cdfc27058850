package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

type DepositService interface {
	RequestDeposit(userID primitive.ObjectID, amount float64, paymentChannel, receiptImage string) (*models.Deposit, error)
	ReviewDeposit(adminID, depositID primitive.ObjectID, approve bool, note string) (*models.Deposit, error)
	GetUserDeposits(userID primitive.ObjectID) ([]*models.Deposit, error)
	GetAllDeposits(status models.RequestStatus, page, limit int64) ([]*models.Deposit, int64, error)
}

type depositService struct {
	depositRepo  repository.DepositRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	wallet       WalletService
	commissions  CommissionService
	log          *logger.Logger
	now          func() time.Time
}

func NewDepositService(
	depositRepo repository.DepositRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	wallet WalletService,
	commissions CommissionService,
	log *logger.Logger,
) DepositService {
	return &depositService{
		depositRepo:  depositRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		wallet:       wallet,
		commissions:  commissions,
		log:          log,
		now:          time.Now,
	}
}

func (s *depositService) RequestDeposit(userID primitive.ObjectID, amount float64, paymentChannel, receiptImage string) (*models.Deposit, error) {
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

	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.Validationf("deposit amount must be positive")
	}
	if amount < settings.MinDepositAmount {
		return nil, apperrors.Validationf("minimum deposit is %.2f", settings.MinDepositAmount)
	}

	deposit := &models.Deposit{
		UserID:         userID,
		Amount:         amount,
		PaymentChannel: paymentChannel,
		ReceiptImage:   receiptImage,
	}
	if err := s.depositRepo.SaveDeposit(deposit); err != nil {
		return nil, err
	}

	if err := s.userRepo.AppendDeposit(userID, deposit.ID); err != nil {
		s.log.WithUserID(userID.Hex()).WithError(err).Warn("failed to append deposit reference")
	}

	return deposit, nil
}

func (s *depositService) ReviewDeposit(adminID, depositID primitive.ObjectID, approve bool, note string) (*models.Deposit, error) {
	deposit, err := s.depositRepo.GetDepositByID(depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, apperrors.NotFoundf("deposit %s", depositID.Hex())
	}

	status := models.RequestStatusRejected
	if approve {
		status = models.RequestStatusApproved
	}

	// The conditional transition is the double-review guard: only one
	// reviewer ever moves a deposit out of pending.
	now := s.now()
	claimed, err := s.depositRepo.MarkReviewed(depositID, status, adminID, note, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.Conflictf("deposit already reviewed")
	}

	deposit.Status = status
	deposit.ReviewDate = &now
	deposit.AdminID = &adminID
	deposit.AdminNote = note

	if !approve {
		return deposit, nil
	}

	if err := s.wallet.Credit(deposit.UserID, deposit.Amount); err != nil {
		// Roll the review back so the approval can be retried; an approved
		// deposit without its credit is the worst partial state.
		if revErr := s.depositRepo.RevertReview(depositID); revErr != nil {
			s.log.WithUserID(deposit.UserID.Hex()).WithError(revErr).Error("failed to revert deposit review")
		}
		return nil, err
	}

	s.maybePayInviteBonus(deposit)

	return deposit, nil
}

// maybePayInviteBonus pays the promotion bonus to the inviter when this
// approval is the user's first qualifying deposit.
func (s *depositService) maybePayInviteBonus(deposit *models.Deposit) {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		s.log.WithError(err).Warn("failed to load settings for invite bonus")
		return
	}
	if !settings.PromotionEnabled || deposit.Amount < settings.InviteBonusMinDeposit {
		return
	}

	approved, err := s.depositRepo.CountApprovedByUserID(deposit.UserID)
	if err != nil {
		s.log.WithUserID(deposit.UserID.Hex()).WithError(err).Warn("failed to count approved deposits")
		return
	}
	if approved != 1 {
		return
	}

	user, err := s.userRepo.GetUserByID(deposit.UserID)
	if err != nil || user == nil {
		return
	}

	if err := s.commissions.PayInviteBonus(user, settings); err != nil {
		s.log.WithUserID(user.ID.Hex()).WithError(err).Warn("invite bonus payout failed")
	}
}

func (s *depositService) GetUserDeposits(userID primitive.ObjectID) ([]*models.Deposit, error) {
	return s.depositRepo.GetDepositsByUserID(userID)
}

func (s *depositService) GetAllDeposits(status models.RequestStatus, page, limit int64) ([]*models.Deposit, int64, error) {
	return s.depositRepo.GetAllDeposits(status, page, limit)
}
