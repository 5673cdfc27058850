package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Address        string
	Port           int
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	AdminPhone     string
	AdminPass      string
	SettlementHour int
	RunScheduler   bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "7000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.New("invalid PORT value")
	}

	address := os.Getenv("ADDRESS")
	if address == "" {
		address = "0.0.0.0"
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "stratum"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "default_jwt_secret"
	}

	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminPhone == "" {
		adminPhone = "0000000000"
	}

	adminPass := os.Getenv("ADMIN_PASS")
	if adminPass == "" {
		adminPass = "admin"
	}

	hourStr := os.Getenv("SETTLEMENT_HOUR")
	if hourStr == "" {
		hourStr = "0"
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return nil, errors.New("invalid SETTLEMENT_HOUR value")
	}

	runScheduler := os.Getenv("RUN_SCHEDULER") == "true"

	return &Config{
		Address:        address,
		Port:           port,
		MongoURI:       mongoURI,
		MongoDB:        mongoDB,
		JWTSecret:      jwtSecret,
		AdminPhone:     adminPhone,
		AdminPass:      adminPass,
		SettlementHour: hour,
		RunScheduler:   runScheduler,
	}, nil
}
