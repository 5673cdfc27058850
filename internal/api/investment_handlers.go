package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/service"
)

type ActivateRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type InvestmentHandler struct {
	investmentService service.InvestmentService
	logService        service.LogService
}

func NewInvestmentHandler(investmentService service.InvestmentService, logService service.LogService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, logService: logService}
}

// @Summary Activate an investment plan
// @Description Debits the plan price from the balance and opens the investment
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activation body ActivateRequest true "Plan to activate"
// @Success 201 {object} models.Investment
// @Failure 400 {object} map[string]string "Insufficient balance"
// @Failure 409 {object} map[string]string "An investment is already active"
// @Router /investments/activate [post]
func (h *InvestmentHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	investment, err := h.investmentService.Activate(userID, planID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"investment_id": investment.ID.Hex(),
		"plan_id":       req.PlanID,
		"amount":        investment.Amount,
	}
	if err := h.logService.LogAction(userID, "ActivateInvestment", "Investment activated", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusCreated, investment)
}

// @Summary Upgrade the active investment
// @Description Moves the active investment to a more expensive plan, debiting the price difference
// @Tags Investments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upgrade body ActivateRequest true "Plan to upgrade to"
// @Success 200 {object} models.Investment
// @Failure 409 {object} map[string]string "Target plan is not an upgrade"
// @Router /investments/upgrade [post]
func (h *InvestmentHandler) Upgrade(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	investment, err := h.investmentService.Upgrade(userID, planID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"investment_id": investment.ID.Hex(),
		"plan_id":       req.PlanID,
	}
	if err := h.logService.LogAction(userID, "UpgradeInvestment", "Investment upgraded", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, investment)
}

// @Summary List own investments
// @Tags Investments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Investment
// @Router /investments [get]
func (h *InvestmentHandler) GetInvestments(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	investments, err := h.investmentService.GetUserInvestments(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve investments"})
		return
	}
	c.JSON(http.StatusOK, investments)
}
