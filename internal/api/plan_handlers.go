package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type PlanRequest struct {
	Name            string  `json:"name" binding:"required"`
	Price           float64 `json:"price" binding:"required"`
	DailyProfitRate float64 `json:"daily_profit_rate" binding:"required"`
	DurationDays    int     `json:"duration_days" binding:"required"`
	IsActive        bool    `json:"is_active"`
}

type PlanUpdateRequest struct {
	Name            string  `json:"name" binding:"required"`
	Price           float64 `json:"price" binding:"required"`
	DailyProfitRate float64 `json:"daily_profit_rate" binding:"required"`
	IsActive        bool    `json:"is_active"`
}

type PlanHandler struct {
	planService service.PlanService
	logService  service.LogService
}

func NewPlanHandler(planService service.PlanService, logService service.LogService) *PlanHandler {
	return &PlanHandler{planService: planService, logService: logService}
}

// @Summary List investment plans
// @Description Returns plans currently open for activation
// @Tags Plans
// @Produce json
// @Success 200 {array} models.Plan
// @Router /plans [get]
func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans, err := h.planService.GetPlans(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary List all plans
// @Description Returns every plan including inactive ones (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Plan
// @Router /admin/plans [get]
func (h *PlanHandler) GetAllPlans(c *gin.Context) {
	plans, err := h.planService.GetPlans(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary Create a plan
// @Description Creates a new investment plan (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan data"
// @Success 201 {object} models.Plan
// @Failure 400 {object} map[string]string "Invalid plan data"
// @Failure 409 {object} map[string]string "Plan name already exists"
// @Router /admin/plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	plan := &models.Plan{
		Name:            req.Name,
		Price:           req.Price,
		DailyProfitRate: req.DailyProfitRate,
		DurationDays:    req.DurationDays,
		IsActive:        req.IsActive,
	}
	if err := h.planService.CreatePlan(plan); err != nil {
		abortWithError(c, err)
		return
	}

	adminID, _ := primitive.ObjectIDFromHex(c.GetString("user_id"))
	metadata := map[string]interface{}{
		"plan_id":   plan.ID.Hex(),
		"plan_name": plan.Name,
	}
	if err := h.logService.LogAction(adminID, "CreatePlan", "Plan created", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusCreated, plan)
}

// @Summary Update a plan
// @Description Updates name, price, rate and active flag; duration is immutable (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body PlanUpdateRequest true "Plan data"
// @Success 200 {object} map[string]string "Plan updated"
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /admin/plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var req PlanUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	plan := &models.Plan{
		ID:              planID,
		Name:            req.Name,
		Price:           req.Price,
		DailyProfitRate: req.DailyProfitRate,
		IsActive:        req.IsActive,
	}
	if err := h.planService.UpdatePlan(plan); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Plan updated"})
}

// @Summary Delete a plan
// @Description Removes a plan with no active investments (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} map[string]string "Plan deleted"
// @Failure 409 {object} map[string]string "Plan has active investments"
// @Router /admin/plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	if err := h.planService.DeletePlan(planID); err != nil {
		abortWithError(c, err)
		return
	}

	adminID, _ := primitive.ObjectIDFromHex(c.GetString("user_id"))
	metadata := map[string]interface{}{"plan_id": planID.Hex()}
	if err := h.logService.LogAction(adminID, "DeletePlan", "Plan deleted", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "Plan deleted"})
}
