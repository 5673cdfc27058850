package models

// SettingsKey is the singleton key; the settings collection holds exactly
// one document with this key, upserted with defaults on first read.
const SettingsKey = "global"

type PaymentChannel struct {
	Name          string `json:"name" bson:"name"`
	AccountNumber string `json:"account_number" bson:"account_number"`
	AccountOwner  string `json:"account_owner" bson:"account_owner"`
}

type Settings struct {
	Key string `json:"-" bson:"_id"`

	// Promotion pays InviteBonusAmount to the inviter on the invitee's
	// first approved deposit of at least InviteBonusMinDeposit.
	PromotionEnabled      bool    `json:"promotion_enabled" bson:"promotion_enabled"`
	InviteBonusAmount     float64 `json:"invite_bonus_amount" bson:"invite_bonus_amount"`
	InviteBonusMinDeposit float64 `json:"invite_bonus_min_deposit" bson:"invite_bonus_min_deposit"`

	// Commission rates are fractions in [0,1].
	CommissionOnActivation  float64 `json:"commission_on_activation" bson:"commission_on_activation"`
	CommissionOnDailyProfit float64 `json:"commission_on_daily_profit" bson:"commission_on_daily_profit"`

	MinDepositAmount    float64 `json:"min_deposit_amount" bson:"min_deposit_amount"`
	MinWithdrawalAmount float64 `json:"min_withdrawal_amount" bson:"min_withdrawal_amount"`
	MaxWithdrawalAmount float64 `json:"max_withdrawal_amount" bson:"max_withdrawal_amount"`

	// Withdrawal requests are accepted when the local hour h satisfies
	// WithdrawalOpenHour <= h < WithdrawalCloseHour.
	WithdrawalOpenHour  int `json:"withdrawal_open_hour" bson:"withdrawal_open_hour"`
	WithdrawalCloseHour int `json:"withdrawal_close_hour" bson:"withdrawal_close_hour"`

	PaymentChannels []PaymentChannel `json:"payment_channels" bson:"payment_channels"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Key:                     SettingsKey,
		PromotionEnabled:        false,
		InviteBonusAmount:       0,
		InviteBonusMinDeposit:   0,
		CommissionOnActivation:  0.05,
		CommissionOnDailyProfit: 0.10,
		MinDepositAmount:        10,
		MinWithdrawalAmount:     10,
		MaxWithdrawalAmount:     5000,
		WithdrawalOpenHour:      9,
		WithdrawalCloseHour:     18,
		PaymentChannels:         []PaymentChannel{},
	}
}
