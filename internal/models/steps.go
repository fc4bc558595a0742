package models

import "time"

type StepRecord struct {
	UserID   int64     `json:"user_id"`
	Day      time.Time `json:"day"`
	Steps    int       `json:"steps"`
	SyncedAt time.Time `json:"synced_at"`
}

type StepsToday struct {
	UserID        int64  `json:"user_id"`
	Day           string `json:"day"`
	Steps         int    `json:"steps"`
	CounterActive bool   `json:"counter_active"`
}
