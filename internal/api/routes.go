package api

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/stratuminvest/stratum-backend/internal/config"
	"github.com/stratuminvest/stratum-backend/internal/middleware"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type Services struct {
	User       service.UserService
	Plan       service.PlanService
	Investment service.InvestmentService
	Deposit    service.DepositService
	Withdrawal service.WithdrawalService
	Settings   service.SettingsService
	Settlement service.SettlementService
	Log        service.LogService
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	userHandler := NewUserHandler(svc.User, svc.Log, cfg)
	planHandler := NewPlanHandler(svc.Plan, svc.Log)
	investmentHandler := NewInvestmentHandler(svc.Investment, svc.Log)
	depositHandler := NewDepositHandler(svc.Deposit, svc.Log)
	withdrawalHandler := NewWithdrawalHandler(svc.Withdrawal, svc.Log)
	adminHandler := NewAdminHandler(svc.Settings, svc.Settlement, svc.Log)

	if wd, err := os.Getwd(); err == nil {
		swaggerJSONPath := filepath.Join(wd, "docs", "swagger.json")
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))
		r.GET("/docs/swagger.json", func(c *gin.Context) {
			c.File(swaggerJSONPath)
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users/register", userHandler.Register)
		v1.POST("/users/login", userHandler.Login)
		v1.GET("/plans", planHandler.GetPlans)

		user := v1.Group("/").Use(middleware.UserAuthMiddleware(cfg, svc.User))
		{
			user.GET("/users/me", userHandler.GetProfile)
			user.GET("/users/team", userHandler.GetTeam)
			user.POST("/investments/activate", investmentHandler.Activate)
			user.POST("/investments/upgrade", investmentHandler.Upgrade)
			user.GET("/investments", investmentHandler.GetInvestments)
			user.POST("/deposits", depositHandler.RequestDeposit)
			user.GET("/deposits", depositHandler.GetDeposits)
			user.POST("/withdrawals", withdrawalHandler.RequestWithdrawal)
			user.GET("/withdrawals", withdrawalHandler.GetWithdrawals)
		}

		admin := v1.Group("/admin").Use(middleware.AdminAuthMiddleware(cfg))
		{
			admin.GET("/users", userHandler.GetAllUsers)
			admin.PUT("/users/status", userHandler.UpdateUserStatus)
			admin.GET("/plans", planHandler.GetAllPlans)
			admin.POST("/plans", planHandler.CreatePlan)
			admin.PUT("/plans/:id", planHandler.UpdatePlan)
			admin.DELETE("/plans/:id", planHandler.DeletePlan)
			admin.GET("/deposits", depositHandler.GetAllDeposits)
			admin.PUT("/deposits/:id/review", depositHandler.ReviewDeposit)
			admin.GET("/withdrawals", withdrawalHandler.GetAllWithdrawals)
			admin.PUT("/withdrawals/:id/review", withdrawalHandler.ReviewWithdrawal)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.POST("/settlement/run", adminHandler.RunSettlement)
			admin.GET("/logs", adminHandler.GetLogs)
		}
	}
}
