package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// WithdrawalService debits the requested amount up front; approval only
// confirms the payout, rejection refunds exactly what was debited.
type WithdrawalService interface {
	RequestWithdrawal(userID primitive.ObjectID, amount float64, cardNumber, accountName string) (*models.Withdrawal, error)
	ReviewWithdrawal(adminID, withdrawalID primitive.ObjectID, approve bool, note string) (*models.Withdrawal, error)
	GetUserWithdrawals(userID primitive.ObjectID) ([]*models.Withdrawal, error)
	GetAllWithdrawals(status models.RequestStatus, page, limit int64) ([]*models.Withdrawal, int64, error)
}

type withdrawalService struct {
	withdrawalRepo repository.WithdrawalRepository
	userRepo       repository.UserRepository
	settingsRepo   repository.SettingsRepository
	wallet         WalletService
	log            *logger.Logger
	now            func() time.Time
}

func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	wallet WalletService,
	log *logger.Logger,
) WithdrawalService {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		settingsRepo:   settingsRepo,
		wallet:         wallet,
		log:            log,
		now:            time.Now,
	}
}

func (s *withdrawalService) RequestWithdrawal(userID primitive.ObjectID, amount float64, cardNumber, accountName string) (*models.Withdrawal, error) {
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
		return nil, apperrors.Validationf("withdrawal amount must be positive")
	}
	if amount < settings.MinWithdrawalAmount {
		return nil, apperrors.Validationf("minimum withdrawal is %.2f", settings.MinWithdrawalAmount)
	}
	if settings.MaxWithdrawalAmount > 0 && amount > settings.MaxWithdrawalAmount {
		return nil, apperrors.Validationf("maximum withdrawal is %.2f", settings.MaxWithdrawalAmount)
	}

	hour := s.now().Hour()
	if hour < settings.WithdrawalOpenHour || hour >= settings.WithdrawalCloseHour {
		return nil, apperrors.Validationf("withdrawals are accepted between %02d:00 and %02d:00",
			settings.WithdrawalOpenHour, settings.WithdrawalCloseHour)
	}

	if err := s.wallet.Debit(userID, amount); err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		UserID:      userID,
		Amount:      amount,
		CardNumber:  cardNumber,
		AccountName: accountName,
	}
	if err := s.withdrawalRepo.SaveWithdrawal(withdrawal); err != nil {
		// Funds were already taken; give them back before reporting.
		if refundErr := s.wallet.Credit(userID, amount); refundErr != nil {
			s.log.WithUserID(userID.Hex()).WithError(refundErr).Error("failed to refund withdrawal debit")
		}
		return nil, err
	}

	if err := s.userRepo.AppendWithdrawal(userID, withdrawal.ID); err != nil {
		s.log.WithUserID(userID.Hex()).WithError(err).Warn("failed to append withdrawal reference")
	}

	return withdrawal, nil
}

func (s *withdrawalService) ReviewWithdrawal(adminID, withdrawalID primitive.ObjectID, approve bool, note string) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, apperrors.NotFoundf("withdrawal %s", withdrawalID.Hex())
	}

	status := models.RequestStatusRejected
	if approve {
		status = models.RequestStatusApproved
	}

	now := s.now()
	claimed, err := s.withdrawalRepo.MarkReviewed(withdrawalID, status, adminID, note, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.Conflictf("withdrawal already reviewed")
	}

	withdrawal.Status = status
	withdrawal.ReviewDate = &now
	withdrawal.AdminID = &adminID
	withdrawal.AdminNote = note

	if approve {
		// The amount left the balance at request time; nothing to move.
		return withdrawal, nil
	}

	if err := s.wallet.Credit(withdrawal.UserID, withdrawal.Amount); err != nil {
		if revErr := s.withdrawalRepo.RevertReview(withdrawalID); revErr != nil {
			s.log.WithUserID(withdrawal.UserID.Hex()).WithError(revErr).Error("failed to revert withdrawal review")
		}
		return nil, err
	}

	return withdrawal, nil
}

func (s *withdrawalService) GetUserWithdrawals(userID primitive.ObjectID) ([]*models.Withdrawal, error) {
	return s.withdrawalRepo.GetWithdrawalsByUserID(userID)
}

func (s *withdrawalService) GetAllWithdrawals(status models.RequestStatus, page, limit int64) ([]*models.Withdrawal, int64, error) {
	return s.withdrawalRepo.GetAllWithdrawals(status, page, limit)
}
