package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// WalletService is the only path allowed to change a user's spendable
// balance or commission balance. Every mutation is a single conditional
// document update, so two operations racing on the same user serialize at
// the store and neither field can go negative.
type WalletService interface {
	Credit(userID primitive.ObjectID, amount float64) error
	Debit(userID primitive.ObjectID, amount float64) error
	CreditBonus(userID primitive.ObjectID, amount float64) error
}

type walletService struct {
	userRepo repository.UserRepository
}

func NewWalletService(userRepo repository.UserRepository) WalletService {
	return &walletService{userRepo: userRepo}
}

func (s *walletService) Credit(userID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return apperrors.Validationf("credit amount must be positive")
	}
	return s.userRepo.AdjustBalance(userID, amount)
}

func (s *walletService) Debit(userID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return apperrors.Validationf("debit amount must be positive")
	}
	return s.userRepo.AdjustBalance(userID, -amount)
}

func (s *walletService) CreditBonus(userID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return apperrors.Validationf("bonus amount must be positive")
	}
	return s.userRepo.AdjustBonus(userID, amount)
}
