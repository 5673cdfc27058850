package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type DepositRequest struct {
	Amount         float64 `json:"amount" binding:"required"`
	PaymentChannel string  `json:"payment_channel" binding:"required"`
	ReceiptImage   string  `json:"receipt_image"`
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type DepositHandler struct {
	depositService service.DepositService
	logService     service.LogService
}

func NewDepositHandler(depositService service.DepositService, logService service.LogService) *DepositHandler {
	return &DepositHandler{depositService: depositService, logService: logService}
}

// @Summary Submit a deposit request
// @Description Records a pending deposit awaiting admin review
// @Tags Deposits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param deposit body DepositRequest true "Deposit data"
// @Success 201 {object} models.Deposit
// @Failure 400 {object} map[string]string "Amount below minimum"
// @Router /deposits [post]
func (h *DepositHandler) RequestDeposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	deposit, err := h.depositService.RequestDeposit(userID, req.Amount, req.PaymentChannel, req.ReceiptImage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"deposit_id": deposit.ID.Hex(),
		"amount":     deposit.Amount,
	}
	if err := h.logService.LogAction(userID, "RequestDeposit", "Deposit requested", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusCreated, deposit)
}

// @Summary List own deposits
// @Tags Deposits
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Deposit
// @Router /deposits [get]
func (h *DepositHandler) GetDeposits(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	deposits, err := h.depositService.GetUserDeposits(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deposits"})
		return
	}
	c.JSON(http.StatusOK, deposits)
}

// @Summary List deposit requests
// @Description Retrieves deposits, optionally filtered by status (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {object} map[string]interface{}
// @Router /admin/deposits [get]
func (h *DepositHandler) GetAllDeposits(c *gin.Context) {
	page, limit := pagination(c)
	status := models.RequestStatus(c.Query("status"))

	deposits, total, err := h.depositService.GetAllDeposits(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deposits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits, "total": total})
}

// @Summary Review a deposit
// @Description Approves or rejects a pending deposit; approval credits the balance (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit ID"
// @Param review body ReviewRequest true "Review decision"
// @Success 200 {object} models.Deposit
// @Failure 409 {object} map[string]string "Deposit already reviewed"
// @Router /admin/deposits/{id}/review [put]
func (h *DepositHandler) ReviewDeposit(c *gin.Context) {
	depositID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit ID"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	adminID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	deposit, err := h.depositService.ReviewDeposit(adminID, depositID, req.Approve, req.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"deposit_id": depositID.Hex(),
		"approved":   req.Approve,
	}
	if err := h.logService.LogAction(adminID, "ReviewDeposit", "Deposit reviewed", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, deposit)
}
