/**
 * @description
 * This file contains custom middleware for the HTTP router. Middlewares are used
 * to process requests before they reach the final handler, perfect for tasks like
 * authentication, logging, or adding context to a request.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: JWT parsing and validation.
 */

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TellerIDContextKey is a custom type for the context key to avoid collisions.
type TellerIDContextKey string

const tellerIDKey TellerIDContextKey = "tellerID"

// TellerAuthMiddleware creates a middleware that validates the teller session
// JWT issued by the branch gateway. Tokens are signed with HMAC-SHA256 and
// carry the teller's UUID in the 'sub' claim.
func TellerAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Extract the token from "Bearer <token>"
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// Parse and validate the JWT token
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})

			if err != nil {
				http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			if !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			// The 'sub' claim carries the teller's UUID.
			subject, ok := claims["sub"].(string)
			if !ok {
				http.Error(w, "Teller ID not found in token", http.StatusUnauthorized)
				return
			}

			tellerID, err := uuid.Parse(subject)
			if err != nil {
				http.Error(w, "Teller ID is not a valid UUID", http.StatusUnauthorized)
				return
			}

			// Add the teller ID to the request context
			ctx := context.WithValue(r.Context(), tellerIDKey, tellerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTellerID retrieves the authenticated teller's ID from the request context.
// Handlers should use this function to get the acting teller's ID.
func GetTellerID(ctx context.Context) (uuid.UUID, bool) {
	tellerID, ok := ctx.Value(tellerIDKey).(uuid.UUID)
	return tellerID, ok
}
