package employees

import "time"

// Employee is the HR profile attached to a user account.
type Employee struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	HiredAt    time.Time `json:"hiredAt"`
}
