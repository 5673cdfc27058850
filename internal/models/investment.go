package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "ACTIVE"
	InvestmentStatusCompleted InvestmentStatus = "COMPLETED"
	InvestmentStatusCancelled InvestmentStatus = "CANCELLED"
)

type Investment struct {
	ID     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`
	PlanID primitive.ObjectID `json:"plan_id" bson:"plan_id"`

	Amount float64 `json:"amount" bson:"amount"`
	// DailyProfitRate is copied from the plan at activation so later plan
	// edits never change a running investment.
	DailyProfitRate float64 `json:"daily_profit_rate" bson:"daily_profit_rate"`

	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`

	// CurrentProfit only ever grows. LastProfitCreditAt advancing past the
	// start of the current day is what makes settlement idempotent.
	CurrentProfit      float64    `json:"current_profit" bson:"current_profit"`
	LastProfitCreditAt *time.Time `json:"last_profit_credit_at,omitempty" bson:"last_profit_credit_at,omitempty"`

	Status    InvestmentStatus `json:"status" bson:"status"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}
