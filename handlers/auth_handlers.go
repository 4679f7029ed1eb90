package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/topmuch/qrsell-sub000/models"
	"github.com/topmuch/qrsell-sub000/store"
	"github.com/topmuch/qrsell-sub000/utils"
)

type AuthHandlers struct {
	SellerStore *store.SellerStore
}

func NewAuthHandlers(sellerStore *store.SellerStore) *AuthHandlers {
	return &AuthHandlers{SellerStore: sellerStore}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// Check if the seller's email already exists in the database.
	_, err := h.SellerStore.GetSellerByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Seller with this email already exists"})
		return
	}
	if err.Error() != fmt.Sprintf("seller with email '%s' not found", req.Email) {
		log.Printf("ERROR: Database error during signup email check: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check seller existence"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	seller, err := h.SellerStore.CreateSeller(c.Request.Context(), req.Email, hashedPassword, req.ShopSlug, req.WhatsAppNumber)
	if err != nil {
		log.Printf("ERROR: Failed to create seller in DB for email %s: %v", req.Email, err)
		switch err.Error() {
		case fmt.Sprintf("seller with email '%s' already exists", req.Email):
			c.JSON(http.StatusConflict, gin.H{"error": "Seller with this email already exists"})
		case fmt.Sprintf("shop slug '%s' is already taken", req.ShopSlug):
			c.JSON(http.StatusConflict, gin.H{"error": "Shop slug is already taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register seller"})
		}
		return
	}

	log.Printf("Seller registered: ID=%d, Email=%s, Shop=%s", seller.ID, seller.Email, seller.ShopSlug)
	c.JSON(http.StatusCreated, gin.H{"message": "Seller registered successfully", "shop_slug": seller.ShopSlug})
}

// Login handles seller authentication and JWT token creation.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	seller, err := h.SellerStore.GetSellerByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Printf("Login failed for email %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	err = bcrypt.CompareHashAndPassword(seller.HashedPassword, []byte(req.Password))
	if err != nil {
		log.Printf("Login failed for email %s: password mismatch", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := utils.GenerateJWT(seller)
	if err != nil {
		log.Printf("ERROR: Failed to generate JWT for seller %d: %v", seller.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		"jwt_token",
		tokenString,
		int(24*time.Hour/time.Second),
		"/",
		"",
		false,
		true,
	)

	log.Printf("Seller logged in: ID=%d, Email=%s. JWT issued.", seller.ID, seller.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"shop_slug": seller.ShopSlug,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(
		"jwt_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
