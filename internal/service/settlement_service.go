package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/metrics"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// SettlementSummary reports one settlement run.
type SettlementSummary struct {
	Processed int       `json:"processed"`
	Completed int       `json:"completed"`
	Skipped   int       `json:"skipped"`
	RanAt     time.Time `json:"ran_at"`
}

// SettlementService credits each active investment's daily profit at most
// once per calendar day and retires investments past their end date.
// Re-running within the same day is a no-op for anything already
// credited: eligibility, and the claim that consumes it, both live in the
// last_profit_credit_at predicate.
type SettlementService interface {
	Run() (*SettlementSummary, error)
}

type settlementService struct {
	invRepo      repository.InvestmentRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	wallet       WalletService
	commissions  CommissionService
	log          *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewSettlementService(
	invRepo repository.InvestmentRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	wallet WalletService,
	commissions CommissionService,
	log *logger.Logger,
	m *metrics.Metrics,
) SettlementService {
	return &settlementService{
		invRepo:      invRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		wallet:       wallet,
		commissions:  commissions,
		log:          log,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *settlementService) Run() (*SettlementSummary, error) {
	started := s.now()
	s.metrics.SettlementRuns.Inc()
	defer func() {
		s.metrics.SettlementRunDuration.Observe(time.Since(started).Seconds())
	}()

	// Rates may have been changed by an admin since the last run.
	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		return nil, err
	}

	startOfToday := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, started.Location())

	eligible, err := s.invRepo.FindEligible(startOfToday)
	if err != nil {
		return nil, err
	}

	summary := &SettlementSummary{RanAt: started}
	for _, inv := range eligible {
		switch s.settleOne(inv, settings, startOfToday) {
		case settleCredited:
			summary.Processed++
		case settleCompleted:
			summary.Completed++
		default:
			summary.Skipped++
		}
	}

	s.log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"completed": summary.Completed,
		"skipped":   summary.Skipped,
	}).Info("settlement run finished")

	return summary, nil
}

type settleOutcome int

const (
	settleSkipped settleOutcome = iota
	settleCredited
	settleCompleted
)

// settleOne is an independent unit of work: whatever happens here must
// not keep the rest of the batch from running. A failure leaves
// last_profit_credit_at untouched, so the investment is simply picked up
// again by the next run.
func (s *settlementService) settleOne(inv *models.Investment, settings *models.Settings, startOfToday time.Time) settleOutcome {
	entry := s.log.WithInvestmentID(inv.ID.Hex())

	user, err := s.userRepo.GetUserByID(inv.UserID)
	if err != nil {
		entry.WithError(err).Error("failed to resolve investment owner")
		s.metrics.InvestmentsFailed.Inc()
		return settleSkipped
	}
	if user == nil || user.IsBlocked() {
		// Blocked or vanished accounts accrue nothing.
		s.metrics.InvestmentsSkipped.Inc()
		return settleSkipped
	}

	now := s.now()

	// Expiry precedes profit credit, so the terminal day yields no
	// trailing profit.
	if !inv.EndDate.After(now) {
		completed, err := s.invRepo.Complete(inv.ID)
		if err != nil {
			entry.WithError(err).Error("failed to complete investment")
			s.metrics.InvestmentsFailed.Inc()
			return settleSkipped
		}
		if !completed {
			return settleSkipped
		}
		if err := s.userRepo.RemoveActiveInvestment(user.ID, inv.ID); err != nil {
			entry.WithError(err).Warn("failed to remove completed investment from active list")
		}
		s.metrics.InvestmentsCompleted.Inc()
		return settleCompleted
	}

	// Simple interest: the rate applies to the principal, never to
	// accrued profit.
	dailyProfit := inv.Amount * inv.DailyProfitRate

	claimed, err := s.invRepo.ClaimDailyProfit(inv.ID, startOfToday, now, dailyProfit)
	if err != nil {
		entry.WithError(err).Error("failed to claim daily profit")
		s.metrics.InvestmentsFailed.Inc()
		return settleSkipped
	}
	if !claimed {
		// A concurrent run credited this investment first.
		s.metrics.InvestmentsSkipped.Inc()
		return settleSkipped
	}

	if dailyProfit == 0 {
		// A zero-rate plan still consumes its day; there is nothing
		// to move, so the wallet and commission stay untouched.
		s.metrics.InvestmentsCredited.Inc()
		return settleCredited
	}

	if err := s.wallet.Credit(user.ID, dailyProfit); err != nil {
		entry.WithError(err).Error("failed to credit daily profit; releasing claim")
		if relErr := s.invRepo.ReleaseDailyProfit(inv.ID, inv.LastProfitCreditAt, dailyProfit); relErr != nil {
			entry.WithError(relErr).Error("failed to release profit claim")
		}
		s.metrics.InvestmentsFailed.Inc()
		return settleSkipped
	}

	s.metrics.InvestmentsCredited.Inc()

	if err := s.commissions.PayDailyProfitCommission(user, dailyProfit, settings); err != nil {
		// The principal credit stands; the commission alone failed.
		entry.WithError(err).Warn("daily profit commission failed")
	}

	return settleCredited
}
