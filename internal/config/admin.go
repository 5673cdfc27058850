package config

import (
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/repository"
)

// EnsureAdminUser creates the bootstrap admin account on first start.
func EnsureAdminUser(userRepo repository.UserRepository, adminPhone, adminPass string) error {
	user, err := userRepo.GetUserByPhone(adminPhone)
	if err != nil {
		return err
	}
	if user != nil {
		log.Println("Admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:               primitive.NewObjectID(),
		PhoneNumber:      adminPhone,
		FullName:         "Administrator",
		Password:         string(hashedPassword),
		ReferralCode:     uuid.New().String()[:8],
		Status:           models.UserStatusActive,
		IsAdmin:          true,
		RegistrationDate: time.Now(),
	}

	if err := userRepo.SaveUser(admin); err != nil {
		return err
	}

	log.Println("Default admin user created")
	return nil
}
