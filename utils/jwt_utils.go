package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/topmuch/qrsell-sub000/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carry the authenticated seller's identity. Standard fields come
// from jwt.RegisteredClaims.
type Claims struct {
	SellerID int64  `json:"seller_id"`
	Email    string `json:"email"`
	ShopSlug string `json:"shop_slug"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte(os.Getenv("JWT_SECRET_KEY"))

// GenerateJWT generates a new JWT token for a given seller.
func GenerateJWT(seller *models.Seller) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &Claims{
		SellerID: seller.ID,
		Email:    seller.Email,
		ShopSlug: seller.ShopSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "qrsell-api",
			Subject:   fmt.Sprintf("%d", seller.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT parses and validates a JWT token string.
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}
