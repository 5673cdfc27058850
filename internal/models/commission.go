package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommissionKind string

const (
	CommissionKindActivation  CommissionKind = "ACTIVATION"
	CommissionKindDailyProfit CommissionKind = "DAILY_PROFIT"
	CommissionKindInviteBonus CommissionKind = "INVITE_BONUS"
)

// Commission records a single referral payout credited to an inviter's
// bonus balance.
type Commission struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	InviterID    primitive.ObjectID `json:"inviter_id" bson:"inviter_id"`
	SourceUserID primitive.ObjectID `json:"source_user_id" bson:"source_user_id"`
	Kind         CommissionKind     `json:"kind" bson:"kind"`
	Amount       float64            `json:"amount" bson:"amount"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
