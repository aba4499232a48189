package models

import "time"

type Zone struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CoordinatorID string    `json:"coordinatorId"`
	CreatedAt     time.Time `json:"createdAt"`
}
