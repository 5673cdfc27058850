package service

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

type RegisterInput struct {
	PhoneNumber  string
	FullName     string
	Password     string
	VisitorID    string
	ReferralCode string // inviter's code, optional
}

// TeamMember is a direct referral as shown on the team screen.
type TeamMember struct {
	ID               primitive.ObjectID `json:"id"`
	FullName         string             `json:"full_name"`
	PhoneNumber      string             `json:"phone_number"`
	RegistrationDate time.Time          `json:"registration_date"`
}

type Team struct {
	Members       []TeamMember `json:"members"`
	Total         int64        `json:"total"`
	TotalEarnings float64      `json:"total_earnings"`
}

type UserService interface {
	Register(input RegisterInput) (*models.User, error)
	Authenticate(phoneNumber, password string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	GetAllUsers(page, limit int64) ([]*models.User, int64, error)
	SetUserStatus(id primitive.ObjectID, status models.UserStatus) error
	GetTeam(userID primitive.ObjectID, page, limit int64) (*Team, error)
}

type userService struct {
	userRepo       repository.UserRepository
	commissionRepo repository.CommissionRepository
}

func NewUserService(userRepo repository.UserRepository, commissionRepo repository.CommissionRepository) UserService {
	return &userService{userRepo: userRepo, commissionRepo: commissionRepo}
}

func (s *userService) Register(input RegisterInput) (*models.User, error) {
	if input.PhoneNumber == "" || input.Password == "" {
		return nil, apperrors.Validationf("phone number and password are required")
	}

	existing, err := s.userRepo.GetUserByPhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflictf("phone number already registered")
	}

	if input.VisitorID != "" {
		dup, err := s.userRepo.GetUserByVisitorID(input.VisitorID)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, apperrors.Conflictf("an account already exists on this device")
		}
	}

	var invitedBy string
	if input.ReferralCode != "" {
		inviter, err := s.userRepo.GetUserByReferralCode(input.ReferralCode)
		if err != nil {
			return nil, err
		}
		if inviter == nil {
			return nil, apperrors.Validationf("invalid referral code")
		}
		if input.VisitorID != "" && inviter.VisitorID == input.VisitorID {
			return nil, apperrors.Validationf("cannot use a referral code from this device")
		}
		invitedBy = inviter.ReferralCode
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:               primitive.NewObjectID(),
		PhoneNumber:      input.PhoneNumber,
		FullName:         input.FullName,
		Password:         string(hashedPassword),
		VisitorID:        input.VisitorID,
		ReferralCode:     uuid.New().String()[:8],
		InvitedBy:        invitedBy,
		Status:           models.UserStatusActive,
		RegistrationDate: time.Now(),
	}
	if err := s.userRepo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(phoneNumber, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByPhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Validationf("invalid phone number or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Validationf("invalid phone number or password")
	}
	if user.IsBlocked() {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

func (s *userService) GetUser(id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid user ID")
	}
	return s.userRepo.GetUserByID(objID)
}

func (s *userService) GetAllUsers(page, limit int64) ([]*models.User, int64, error) {
	return s.userRepo.GetAllUsers(page, limit)
}

func (s *userService) SetUserStatus(id primitive.ObjectID, status models.UserStatus) error {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NotFoundf("user %s", id.Hex())
	}
	if user.IsAdmin && status == models.UserStatusBlocked {
		return apperrors.ErrUnauthorized
	}
	return s.userRepo.UpdateStatus(id, status)
}

func (s *userService) GetTeam(userID primitive.ObjectID, page, limit int64) (*Team, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFoundf("user %s", userID.Hex())
	}

	invitees, total, err := s.userRepo.GetUsersInvitedBy(user.ReferralCode, page, limit)
	if err != nil {
		return nil, err
	}

	earnings, err := s.commissionRepo.SumByInviterID(userID)
	if err != nil {
		return nil, err
	}

	team := &Team{Total: total, TotalEarnings: earnings, Members: make([]TeamMember, 0, len(invitees))}
	for _, invitee := range invitees {
		team.Members = append(team.Members, TeamMember{
			ID:               invitee.ID,
			FullName:         invitee.FullName,
			PhoneNumber:      maskPhone(invitee.PhoneNumber),
			RegistrationDate: invitee.RegistrationDate,
		})
	}
	return team, nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-2:]
}
