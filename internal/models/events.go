package models

import "time"

// Event types published to the sale event stream
const (
	EventTypeSaleCompleted = "sale.completed"
)

// BaseEvent contains common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleItemData describes one sold line inside a sale event.
type SaleItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// SaleCompletedEvent is published after a checkout commits. Consumers must
// treat it as a notification only; the ledger row is the source of truth.
type SaleCompletedEvent struct {
	BaseEvent
	TransactionID string         `json:"transaction_id"`
	UserID        string         `json:"user_id"`
	TotalPrice    int64          `json:"total_price"`
	Items         []SaleItemData `json:"items"`
}
