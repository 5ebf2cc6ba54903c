package domain

import "time"

// Agent is a support staff member allowed to mutate tickets.
type Agent struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
