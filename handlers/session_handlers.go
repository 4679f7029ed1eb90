package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/topmuch/qrsell-sub000/live"
	"github.com/topmuch/qrsell-sub000/metrics"
	"github.com/topmuch/qrsell-sub000/models"
)

// SessionHandlers exposes the live-session state machine to the seller
// dashboard. Every mutation is a single read-modify-write; concurrent
// writers race under last-write-wins, which is accepted for one seller on
// one device.
type SessionHandlers struct {
	Coordinator *live.Coordinator
}

func NewSessionHandlers(coordinator *live.Coordinator) *SessionHandlers {
	return &SessionHandlers{Coordinator: coordinator}
}

func (h *SessionHandlers) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	seller := &models.Seller{
		ID:       c.MustGet("seller_id").(int64),
		ShopSlug: c.MustGet("shop_slug").(string),
	}

	session, err := h.Coordinator.StartSession(c.Request.Context(), seller, req.ProductIDs, req.ShowPublicCounter)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	metrics.SessionTransitionsTotal.WithLabelValues("start").Inc()
	log.Printf("Seller %d went live: session=%d, products=%d", seller.ID, session.ID, len(session.PreloadedProducts))
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandlers) SwitchProduct(c *gin.Context) {
	var req models.SwitchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sellerID := c.MustGet("seller_id").(int64)
	session, err := h.Coordinator.CurrentSession(c.Request.Context(), sellerID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	if err := h.Coordinator.SwitchProduct(c.Request.Context(), session, req.ProductID); err != nil {
		respondSessionError(c, err)
		return
	}

	metrics.SessionTransitionsTotal.WithLabelValues("switch").Inc()
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandlers) ActivateFlashOffer(c *gin.Context) {
	var req models.ActivateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sellerID := c.MustGet("seller_id").(int64)
	session, err := h.Coordinator.CurrentSession(c.Request.Context(), sellerID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	if err := h.Coordinator.ActivateFlashOffer(c.Request.Context(), session, req.OfferType, req.Value, req.DurationMinutes); err != nil {
		respondSessionError(c, err)
		return
	}

	metrics.SessionTransitionsTotal.WithLabelValues("offer").Inc()
	log.Printf("Seller %d activated flash offer on session %d: %s %.2f for %dm", sellerID, session.ID, req.OfferType, req.Value, req.DurationMinutes)
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandlers) StopSession(c *gin.Context) {
	sellerID := c.MustGet("seller_id").(int64)
	session, err := h.Coordinator.CurrentSession(c.Request.Context(), sellerID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	if err := h.Coordinator.StopSession(c.Request.Context(), session); err != nil {
		respondSessionError(c, err)
		return
	}

	metrics.SessionTransitionsTotal.WithLabelValues("stop").Inc()
	log.Printf("Seller %d stopped session %d", sellerID, session.ID)
	c.JSON(http.StatusOK, session)
}

// GetCurrentSession is the dashboard's polling endpoint. Offer liveness is
// recomputed here against the current time, never read from the flag alone.
func (h *SessionHandlers) GetCurrentSession(c *gin.Context) {
	sellerID := c.MustGet("seller_id").(int64)
	session, err := h.Coordinator.CurrentSession(c.Request.Context(), sellerID)
	if err != nil {
		if errors.Is(err, live.ErrNoLiveSession) {
			c.JSON(http.StatusOK, gin.H{"isLive": false})
			return
		}
		respondSessionError(c, err)
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"isLive":      true,
		"session":     session,
		"offerActive": live.OfferActiveAt(session, now),
	})
}

// respondSessionError maps rejected-operation outcomes to user-facing
// responses. Store failures fall through as 500s, untouched.
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, live.ErrInvalidProductCount),
		errors.Is(err, live.ErrDuplicateProducts),
		errors.Is(err, live.ErrInvalidProductID),
		errors.Is(err, live.ErrInvalidOffer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, live.ErrProductNotPreloaded),
		errors.Is(err, live.ErrNoLiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, live.ErrSessionNotLive),
		errors.Is(err, live.ErrOfferAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Session operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session operation failed"})
	}
}
