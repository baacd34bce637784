package models

import "time"

// PasswordResetCode is a short-lived 6-digit code mailed to the account's
// address. After the code is verified, Ticket carries the single-use
// capability that authorizes the final reset call; it is cleared the moment
// it is spent.
type PasswordResetCode struct {
	ID              string
	AccountID       string
	Code            string
	Ticket          string
	TicketExpiresAt time.Time
	CreatedAt       time.Time
	ExpiresAt       time.Time
}
