package models

import "time"

type Cell struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeaderID  string    `json:"leaderId"`
	ZoneID    string    `json:"zoneId"`
	CreatedAt time.Time `json:"createdAt"`
}
