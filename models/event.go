package models

import "time"

// EventType enumerates the tracked storefront interactions. The set is
// closed: anything else is rejected at the API boundary.
type EventType string

const (
	EventTypeScan          EventType = "scan"
	EventTypeViewProduct   EventType = "view_product"
	EventTypeWhatsAppClick EventType = "whatsapp_click"
	EventTypeViewShop      EventType = "view_shop"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeScan, EventTypeViewProduct, EventTypeWhatsAppClick, EventTypeViewShop:
		return true
	default:
		return false
	}
}

// AnalyticsEvent is one immutable engagement record. Rows are append-only:
// nothing in this service ever updates or deletes them.
type AnalyticsEvent struct {
	EventID   string    `json:"eventId"`
	SellerID  int64     `json:"sellerId"`
	ProductID string    `json:"productId,omitempty"`
	EventType EventType `json:"eventType"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventFilter is the typed query passed to the event log adapter.
// Zero-valued fields are not applied.
type EventFilter struct {
	SellerID  int64
	Types     []EventType
	ProductID string
	From      *time.Time
	To        *time.Time
}

// TrackRequest is the body of the public tracking endpoint.
type TrackRequest struct {
	EventType EventType `json:"eventType" binding:"required"`
	ProductID string    `json:"productId"`
}
