package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Withdrawal amounts are debited from the user at request time; rejection
// refunds exactly that amount.
type Withdrawal struct {
	ID     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	Amount      float64 `json:"amount" bson:"amount"`
	CardNumber  string  `json:"card_number,omitempty" bson:"card_number,omitempty"`
	AccountName string  `json:"account_name,omitempty" bson:"account_name,omitempty"`

	Status      RequestStatus       `json:"status" bson:"status"`
	RequestDate time.Time           `json:"request_date" bson:"request_date"`
	ReviewDate  *time.Time          `json:"review_date,omitempty" bson:"review_date,omitempty"`
	AdminID     *primitive.ObjectID `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	AdminNote   string              `json:"admin_note,omitempty" bson:"admin_note,omitempty"`
}
