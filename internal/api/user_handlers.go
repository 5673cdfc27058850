package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/config"
	"github.com/stratuminvest/stratum-backend/internal/middleware"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type RegisterRequest struct {
	PhoneNumber  string `json:"phone_number" binding:"required"`
	FullName     string `json:"full_name"`
	Password     string `json:"password" binding:"required,min=6"`
	VisitorID    string `json:"visitor_id"`
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type UserStatusRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Blocked bool   `json:"blocked"`
}

type UserHandler struct {
	userService service.UserService
	logService  service.LogService
	cfg         *config.Config
}

func NewUserHandler(userService service.UserService, logService service.LogService, cfg *config.Config) *UserHandler {
	return &UserHandler{userService: userService, logService: logService, cfg: cfg}
}

// @Summary Register a new user
// @Description Creates a new user account with an optional inviter referral code
// @Tags Users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "User created"
// @Failure 400 {object} map[string]string "Invalid JSON or referral code"
// @Failure 409 {object} map[string]string "Phone or device already registered"
// @Router /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	user, err := h.userService.Register(service.RegisterInput{
		PhoneNumber:  req.PhoneNumber,
		FullName:     req.FullName,
		Password:     req.Password,
		VisitorID:    req.VisitorID,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	metadata := map[string]interface{}{
		"phone_number": user.PhoneNumber,
		"user_id":      user.ID.Hex(),
	}
	if err := h.logService.LogAction(user.ID, "UserRegister", "User registered", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "User created",
		"user_id": user.ID.Hex(),
		"user":    user,
	})
}

// @Summary Log in
// @Description Authenticates by phone number and password, returns a JWT
// @Tags Users
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Login successful"
// @Failure 400 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Account blocked"
// @Router /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	user, err := h.userService.Authenticate(req.PhoneNumber, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.IsAdmin, h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	metadata := map[string]interface{}{
		"user_id": user.ID.Hex(),
	}
	if err := h.logService.LogAction(user.ID, "UserLogin", "User logged in", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Login successful",
		"token":  token,
		"user":   user,
	})
}

// @Summary Get own profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetUser(c.GetString("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Get own referral team
// @Description Lists direct referrals and total commission earnings
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Team
// @Router /users/team [get]
func (h *UserHandler) GetTeam(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	page, limit := pagination(c)
	team, err := h.userService.GetTeam(userID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// @Summary List users
// @Description Retrieves all users (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	page, limit := pagination(c)
	users, total, err := h.userService.GetAllUsers(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// @Summary Block or unblock a user
// @Description Flips a user's status (admin only); admins cannot be blocked
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status body UserStatusRequest true "Target user and status"
// @Success 200 {object} map[string]string "User status updated"
// @Failure 403 {object} map[string]string "Cannot block an admin"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/status [put]
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	status := models.UserStatusActive
	if req.Blocked {
		status = models.UserStatusBlocked
	}

	if err := h.userService.SetUserStatus(userID, status); err != nil {
		abortWithError(c, err)
		return
	}

	adminID, _ := primitive.ObjectIDFromHex(c.GetString("user_id"))
	metadata := map[string]interface{}{
		"target_user_id": req.UserID,
		"blocked":        req.Blocked,
	}
	if err := h.logService.LogAction(adminID, "UpdateUserStatus", "User status changed", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "User status updated"})
}

func pagination(c *gin.Context) (int64, int64) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
