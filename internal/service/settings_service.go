package service

import (
	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

type SettingsService interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(settings *models.Settings) error
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) GetSettings() (*models.Settings, error) {
	return s.settingsRepo.GetSettings()
}

func (s *settingsService) UpdateSettings(settings *models.Settings) error {
	if settings.CommissionOnActivation < 0 || settings.CommissionOnActivation > 1 {
		return apperrors.Validationf("activation commission rate must be between 0 and 1")
	}
	if settings.CommissionOnDailyProfit < 0 || settings.CommissionOnDailyProfit > 1 {
		return apperrors.Validationf("daily profit commission rate must be between 0 and 1")
	}
	if settings.MinDepositAmount < 0 || settings.MinWithdrawalAmount < 0 || settings.MaxWithdrawalAmount < 0 {
		return apperrors.Validationf("amount limits cannot be negative")
	}
	if settings.MaxWithdrawalAmount > 0 && settings.MaxWithdrawalAmount < settings.MinWithdrawalAmount {
		return apperrors.Validationf("maximum withdrawal cannot be below the minimum")
	}
	if settings.WithdrawalOpenHour < 0 || settings.WithdrawalOpenHour > 23 ||
		settings.WithdrawalCloseHour < 0 || settings.WithdrawalCloseHour > 24 ||
		settings.WithdrawalCloseHour <= settings.WithdrawalOpenHour {
		return apperrors.Validationf("invalid withdrawal hour window")
	}
	return s.settingsRepo.UpdateSettings(settings)
}
