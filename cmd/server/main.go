package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stratuminvest/stratum-backend/internal/api"
	"github.com/stratuminvest/stratum-backend/internal/config"
	"github.com/stratuminvest/stratum-backend/internal/logger"
	"github.com/stratuminvest/stratum-backend/internal/metrics"
	"github.com/stratuminvest/stratum-backend/internal/middleware"
	"github.com/stratuminvest/stratum-backend/internal/repository"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

// @title Stratum Invest API
// @version 1.0
// @description Investment platform backend: plans, deposits, withdrawals, daily profit settlement and referral commissions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New("stratum-backend")
	appMetrics := metrics.New("stratum_backend")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	if err := repository.EnsureIndexes(client, cfg.MongoDB); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	userRepo := repository.NewUserRepository(client, cfg.MongoDB, "users")
	planRepo := repository.NewPlanRepository(client, cfg.MongoDB, "plans")
	invRepo := repository.NewInvestmentRepository(client, cfg.MongoDB, "investments")
	depositRepo := repository.NewDepositRepository(client, cfg.MongoDB, "deposits")
	withdrawalRepo := repository.NewWithdrawalRepository(client, cfg.MongoDB, "withdrawals")
	settingsRepo := repository.NewSettingsRepository(client, cfg.MongoDB, "settings")
	commissionRepo := repository.NewCommissionRepository(client, cfg.MongoDB, "commissions")
	logRepo := repository.NewLogRepository(client, cfg.MongoDB, "logs")

	if err := config.EnsureAdminUser(userRepo, cfg.AdminPhone, cfg.AdminPass); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	walletService := service.NewWalletService(userRepo)
	commissionService := service.NewCommissionService(userRepo, commissionRepo, walletService, appLog, appMetrics)
	userService := service.NewUserService(userRepo, commissionRepo)
	planService := service.NewPlanService(planRepo, invRepo)
	investmentService := service.NewInvestmentService(userRepo, planRepo, invRepo, settingsRepo, walletService, commissionService, appLog)
	depositService := service.NewDepositService(depositRepo, userRepo, settingsRepo, walletService, commissionService, appLog)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, userRepo, settingsRepo, walletService, appLog)
	settingsService := service.NewSettingsService(settingsRepo)
	settlementService := service.NewSettlementService(invRepo, userRepo, settingsRepo, walletService, commissionService, appLog, appMetrics)
	logService := service.NewLogService(logRepo)

	if cfg.RunScheduler {
		scheduler := service.NewScheduler(settlementService, appLog, cfg.SettlementHour)
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(appLog))

	api.SetupRoutes(r, cfg, api.Services{
		User:       userService,
		Plan:       planService,
		Investment: investmentService,
		Deposit:    depositService,
		Withdrawal: withdrawalService,
		Settings:   settingsService,
		Settlement: settlementService,
		Log:        logService,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Swagger UI available at http://localhost:%d/swagger/index.html", cfg.Port)

	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
