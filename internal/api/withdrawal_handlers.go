package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type WithdrawalRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	CardNumber  string  `json:"card_number" binding:"required"`
	AccountName string  `json:"account_name" binding:"required"`
}

type WithdrawalHandler struct {
	withdrawalService service.WithdrawalService
	logService        service.LogService
}

func NewWithdrawalHandler(withdrawalService service.WithdrawalService, logService service.LogService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService, logService: logService}
}

// @Summary Submit a withdrawal request
// @Description Debits the balance immediately and records a pending withdrawal
// @Tags Withdrawals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param withdrawal body WithdrawalRequest true "Withdrawal data"
// @Success 201 {object} models.Withdrawal
// @Failure 400 {object} map[string]string "Insufficient balance or outside withdrawal hours"
// @Router /withdrawals [post]
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	withdrawal, err := h.withdrawalService.RequestWithdrawal(userID, req.Amount, req.CardNumber, req.AccountName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"withdrawal_id": withdrawal.ID.Hex(),
		"amount":        withdrawal.Amount,
	}
	if err := h.logService.LogAction(userID, "RequestWithdrawal", "Withdrawal requested", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusCreated, withdrawal)
}

// @Summary List own withdrawals
// @Tags Withdrawals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Withdrawal
// @Router /withdrawals [get]
func (h *WithdrawalHandler) GetWithdrawals(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	withdrawals, err := h.withdrawalService.GetUserWithdrawals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve withdrawals"})
		return
	}
	c.JSON(http.StatusOK, withdrawals)
}

// @Summary List withdrawal requests
// @Description Retrieves withdrawals, optionally filtered by status (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {object} map[string]interface{}
// @Router /admin/withdrawals [get]
func (h *WithdrawalHandler) GetAllWithdrawals(c *gin.Context) {
	page, limit := pagination(c)
	status := models.RequestStatus(c.Query("status"))

	withdrawals, total, err := h.withdrawalService.GetAllWithdrawals(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals, "total": total})
}

// @Summary Review a withdrawal
// @Description Approves or rejects a pending withdrawal; rejection refunds the balance (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Withdrawal ID"
// @Param review body ReviewRequest true "Review decision"
// @Success 200 {object} models.Withdrawal
// @Failure 409 {object} map[string]string "Withdrawal already reviewed"
// @Router /admin/withdrawals/{id}/review [put]
func (h *WithdrawalHandler) ReviewWithdrawal(c *gin.Context) {
	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal ID"})
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

	withdrawal, err := h.withdrawalService.ReviewWithdrawal(adminID, withdrawalID, req.Approve, req.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"withdrawal_id": withdrawalID.Hex(),
		"approved":      req.Approve,
	}
	if err := h.logService.LogAction(adminID, "ReviewWithdrawal", "Withdrawal reviewed", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, withdrawal)
}
