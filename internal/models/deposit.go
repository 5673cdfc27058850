package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

type Deposit struct {
	ID     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	Amount         float64 `json:"amount" bson:"amount"`
	PaymentChannel string  `json:"payment_channel,omitempty" bson:"payment_channel,omitempty"`
	ReceiptImage   string  `json:"receipt_image,omitempty" bson:"receipt_image,omitempty"`

	Status      RequestStatus       `json:"status" bson:"status"`
	RequestDate time.Time           `json:"request_date" bson:"request_date"`
	ReviewDate  *time.Time          `json:"review_date,omitempty" bson:"review_date,omitempty"`
	AdminID     *primitive.ObjectID `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	AdminNote   string              `json:"admin_note,omitempty" bson:"admin_note,omitempty"`
}
