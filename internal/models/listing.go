package models

import "time"

type Listing struct {
	ID          string
	EmployerID  string
	Title       string
	Description string
	Location    string
	CreatedAt   time.Time
}
