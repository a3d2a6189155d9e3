package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerCreated EventType = "customer_created"
	EventCustomerUpdated EventType = "customer_updated"
	EventCustomerDeleted EventType = "customer_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	CustomerID int64       `json:"customer_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

// CustomerSnapshotPayload carries the persisted state after a create or update.
// LastPurchaseDate is an ISO local date-time without offset.
type CustomerSnapshotPayload struct {
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	AnnualSpend      decimal.Decimal `json:"annual_spend"`
	LastPurchaseDate *string         `json:"last_purchase_date,omitempty"`
}
