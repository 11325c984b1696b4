package models

import "time"

// APILog is one persisted request/response log line. Request bodies are
// masked before they reach this model: password and token material is
// replaced with asterisks by the logging middleware.
type APILog struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	RequestID      string    `json:"request_id" gorm:"index"`
	Method         string    `json:"method"`
	Path           string    `json:"path"`
	QueryParams    string    `json:"query_params"`
	RequestBody    string    `json:"request_body"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS float64   `json:"response_time_ms"`
	UserID         *int64    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the database table name for the APILog model.
func (APILog) TableName() string {
	return "api_logs"
}
