package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/topmuch/qrsell-sub000/analytics"
	"github.com/topmuch/qrsell-sub000/live"
	"github.com/topmuch/qrsell-sub000/metrics"
	"github.com/topmuch/qrsell-sub000/models"
	"github.com/topmuch/qrsell-sub000/store"
)

// AnalyticsHandlers covers both sides of the event log: the public
// storefront endpoints that append engagement events, and the seller
// endpoints that aggregate them into stats, dashboards and CSV exports.
type AnalyticsHandlers struct {
	EventStore  *store.EventStore
	SellerStore *store.SellerStore
	Coordinator *live.Coordinator
}

func NewAnalyticsHandlers(eventStore *store.EventStore, sellerStore *store.SellerStore, coordinator *live.Coordinator) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		EventStore:  eventStore,
		SellerStore: sellerStore,
		Coordinator: coordinator,
	}
}

// TrackEvent appends one engagement event for a shop. Recording is
// best-effort: a failed write is logged and counted, and the storefront
// still gets a success response, because tracking must never break the
// interaction it observes.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	seller, ok := h.sellerForSlug(c)
	if !ok {
		return
	}

	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.EventType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown event type '%s'", req.EventType)})
		return
	}

	h.recordEvent(c, seller.ID, req.EventType, req.ProductID)
	c.Status(http.StatusAccepted)
}

// WhatsAppRedirect records an outbound-contact click and redirects to the
// seller's WhatsApp deep link. The redirect proceeds regardless of whether
// the write succeeded.
func (h *AnalyticsHandlers) WhatsAppRedirect(c *gin.Context) {
	seller, ok := h.sellerForSlug(c)
	if !ok {
		return
	}
	if seller.WhatsAppNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shop has no WhatsApp contact"})
		return
	}

	productID := c.Query("product")
	h.recordEvent(c, seller.ID, models.EventTypeWhatsAppClick, productID)

	deepLink := "https://wa.me/" + seller.WhatsAppNumber
	if text := c.Query("text"); text != "" {
		deepLink += "?text=" + url.QueryEscape(text)
	}
	c.Redirect(http.StatusFound, deepLink)
}

// GetPublicLiveState is the storefront polling endpoint: showcased product,
// offer state and, when the seller opted in, the public scan counter. Offer
// liveness and effective price are computed against the current time on
// every poll.
func (h *AnalyticsHandlers) GetPublicLiveState(c *gin.Context) {
	seller, ok := h.sellerForSlug(c)
	if !ok {
		return
	}

	session, err := h.Coordinator.CurrentSession(c.Request.Context(), seller.ID)
	if err != nil {
		if errors.Is(err, live.ErrNoLiveSession) {
			c.JSON(http.StatusOK, gin.H{"isLive": false})
			return
		}
		log.Printf("Error looking up live session for shop %s: %v", seller.ShopSlug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load live state"})
		return
	}

	now := time.Now().UTC()
	offerActive := live.OfferActiveAt(session, now)

	state := gin.H{
		"isLive":          true,
		"activeProductId": session.ActiveProductID,
		"offerActive":     offerActive,
	}
	if offerActive {
		state["offerType"] = session.FlashOfferType
		state["offerValue"] = session.FlashOfferValue
		state["offerEndsAt"] = session.FlashOfferEndsAt
	}

	// The storefront knows the catalog price; when it sends one along, the
	// response carries the discounted price to display.
	if priceParam := c.Query("price"); priceParam != "" {
		basePrice, err := strconv.ParseFloat(priceParam, 64)
		if err != nil || basePrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'price' parameter"})
			return
		}
		state["effectivePrice"] = live.EffectivePrice(basePrice, session, now)
	}

	if session.ShowPublicCounter && session.LiveStartedAt != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		count, err := h.EventStore.CountEvents(ctx, models.EventFilter{
			SellerID: seller.ID,
			Types:    []models.EventType{models.EventTypeScan},
			From:     session.LiveStartedAt,
		})
		if err != nil {
			log.Printf("Error counting scans for shop %s: %v", seller.ShopSlug, err)
		} else {
			state["scanCount"] = count
		}
	}

	c.JSON(http.StatusOK, state)
}

// GetSessionStats returns the windowed engagement counts for one broadcast.
func (h *AnalyticsHandlers) GetSessionStats(c *gin.Context) {
	sellerID := c.MustGet("seller_id").(int64)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	session, err := h.Coordinator.Session(c.Request.Context(), sellerID, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	events, err := h.listSellerEvents(c, sellerID)
	if err != nil {
		return
	}

	stats := analytics.ComputeSessionStats(session, events, time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"stats":     stats,
	})
}

// GetDashboard aggregates every broadcast of the seller into dashboard
// totals, optionally narrowed to one calendar date (?date=YYYY-MM-DD).
func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	sellerID := c.MustGet("seller_id").(int64)

	dateFilter, ok := parseDateFilter(c)
	if !ok {
		return
	}

	report, ok := h.buildReport(c, sellerID, dateFilter)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCSV streams the per-session breakdown as a CSV download. The
// filename embeds the export date.
func (h *AnalyticsHandlers) ExportCSV(c *gin.Context) {
	sellerID := c.MustGet("seller_id").(int64)

	dateFilter, ok := parseDateFilter(c)
	if !ok {
		return
	}

	report, ok := h.buildReport(c, sellerID, dateFilter)
	if !ok {
		return
	}

	filename := analytics.CSVFilename("live-report", time.Now().UTC())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := analytics.WriteCSV(c.Writer, report.Breakdown); err != nil {
		log.Printf("Error writing CSV export for seller %d: %v", sellerID, err)
	}
}

func (h *AnalyticsHandlers) buildReport(c *gin.Context, sellerID int64, dateFilter *time.Time) (analytics.Report, bool) {
	sessions, err := h.Coordinator.SessionHistory(c.Request.Context(), sellerID)
	if err != nil {
		log.Printf("Error listing sessions for seller %d: %v", sellerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session history"})
		return analytics.Report{}, false
	}

	events, err := h.listSellerEvents(c, sellerID)
	if err != nil {
		return analytics.Report{}, false
	}

	return analytics.Aggregate(sessions, events, dateFilter, time.Now().UTC()), true
}

func (h *AnalyticsHandlers) listSellerEvents(c *gin.Context, sellerID int64) ([]models.AnalyticsEvent, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	events, err := h.EventStore.ListEvents(ctx, models.EventFilter{SellerID: sellerID})
	if err != nil {
		log.Printf("Error listing engagement events for seller %d: %v", sellerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load engagement events"})
		return nil, err
	}
	return events, nil
}

// recordEvent appends one event, swallowing failures. Dropped writes show
// up only in the log and the dropped-events counter.
func (h *AnalyticsHandlers) recordEvent(c *gin.Context, sellerID int64, eventType models.EventType, productID string) {
	event := models.AnalyticsEvent{
		EventID:   uuid.New().String(),
		SellerID:  sellerID,
		ProductID: productID,
		EventType: eventType,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.EventStore.InsertEvents(ctx, []models.AnalyticsEvent{event}); err != nil {
		metrics.EngagementEventsDroppedTotal.Inc()
		log.Printf("Dropped engagement event %s (%s) for seller %d: %v", event.EventID, eventType, sellerID, err)
		return
	}
	metrics.EngagementEventsTotal.WithLabelValues(string(eventType)).Inc()
}

func (h *AnalyticsHandlers) sellerForSlug(c *gin.Context) (*models.Seller, bool) {
	slug := c.Param("slug")
	seller, err := h.SellerStore.GetSellerBySlug(c.Request.Context(), slug)
	if err != nil {
		if err.Error() == fmt.Sprintf("shop '%s' not found", slug) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
		} else {
			log.Printf("Error looking up shop %s: %v", slug, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shop"})
		}
		return nil, false
	}
	return seller, true
}

func parseDateFilter(c *gin.Context) (*time.Time, bool) {
	dateParam := c.Query("date")
	if dateParam == "" {
		return nil, true
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date' parameter. Use YYYY-MM-DD"})
		return nil, false
	}
	return &date, true
}
