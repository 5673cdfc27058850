package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a fixed-price investment plan. Users buy it at Price and earn
// Price * DailyProfitRate every settlement day for DurationDays days.
type Plan struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Price           float64            `json:"price" bson:"price"`
	DailyProfitRate float64            `json:"daily_profit_rate" bson:"daily_profit_rate"`
	DurationDays    int                `json:"duration_days" bson:"duration_days"`
	IsActive        bool               `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}
