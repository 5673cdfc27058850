package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

type User struct {
	ID primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`

	PhoneNumber string `json:"phone_number" bson:"phone_number"`
	FullName    string `json:"full_name" bson:"full_name"`
	Password    string `json:"-" bson:"password"`

	// VisitorID is the device fingerprint captured at registration; it is
	// unique across users and keys the duplicate-account check.
	VisitorID string `json:"visitor_id,omitempty" bson:"visitor_id,omitempty"`

	// Balance is spendable; Bonus accumulates referral commissions only.
	// Both stay >= 0 and are written exclusively through the wallet service.
	Balance float64 `json:"balance" bson:"balance"`
	Bonus   float64 `json:"bonus" bson:"bonus"`

	ReferralCode string `json:"referral_code" bson:"referral_code"`
	// InvitedBy holds the inviter's referral code, not an ID; it is
	// resolved by lookup every time it is needed.
	InvitedBy string `json:"invited_by,omitempty" bson:"invited_by,omitempty"`

	Status  UserStatus `json:"status" bson:"status"`
	IsAdmin bool       `json:"is_admin" bson:"is_admin"`

	ActiveInvestmentIDs []primitive.ObjectID `json:"active_investment_ids" bson:"active_investment_ids"`
	DepositIDs          []primitive.ObjectID `json:"deposit_ids" bson:"deposit_ids"`
	WithdrawalIDs       []primitive.ObjectID `json:"withdrawal_ids" bson:"withdrawal_ids"`

	RegistrationDate time.Time `json:"registration_date" bson:"registration_date"`
}

func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
