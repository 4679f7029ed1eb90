package middleware

import (
	"log"
	"net/http"

	"github.com/topmuch/qrsell-sub000/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired guards seller endpoints. The JWT is read from the auth
// cookie, falling back to a Bearer header for non-browser clients.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("jwt_token")
		if err != nil {
			tokenString = c.GetHeader("Authorization")
			if tokenString == "" {
				log.Println("AuthRequired: No JWT token found in cookie or header")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			log.Printf("AuthRequired: Invalid JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set("seller_id", claims.SellerID)
		c.Set("seller_email", claims.Email)
		c.Set("shop_slug", claims.ShopSlug)

		c.Next()
	}
}
