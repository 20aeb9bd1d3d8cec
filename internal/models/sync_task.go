package models

import (
	"database/sql"
	"time"
)

// SyncTask — запись очереди синхронизации бронирований в Google Sheets.
type SyncTask struct {
	ID          int64        `json:"id"`
	TaskType    string       `json:"task_type"`
	BookingID   int64        `json:"booking_id"`
	Payload     string       `json:"payload"`
	Status      string       `json:"status"`
	RetryCount  int          `json:"retry_count"`
	LastError   string       `json:"last_error"`
	CreatedAt   time.Time    `json:"created_at"`
	ProcessedAt sql.NullTime `json:"processed_at"`
	NextRetryAt sql.NullTime `json:"next_retry_at"`
}
