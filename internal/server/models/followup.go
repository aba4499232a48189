package models

import "time"

type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "PENDING"
	FollowUpCompleted FollowUpStatus = "COMPLETED"
)

type FollowUp struct {
	ID         string         `json:"id"`
	MemberID   string         `json:"memberId"`
	AssignedTo string         `json:"assignedTo"`
	Notes      string         `json:"notes,omitempty"`
	Status     FollowUpStatus `json:"status"`
	DueDate    *time.Time     `json:"dueDate,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
