package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/jwt"
)

const userIDKey = "user_id"

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// bearer extracts the token. ok is false when the header is present but
// not of the Bearer form.
func bearer(c *gin.Context) (token string, present, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, false
	}
	return strings.TrimSpace(parts[1]), true, true
}

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearer(c)
		switch {
		case !present:
			abortUnauthorized(c, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		case !ok:
			abortUnauthorized(c, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// ReadOnlyOrAuth lets anonymous callers through on safe methods and
// requires a valid token on everything else. A token sent on a safe method
// is still honoured.
func ReadOnlyOrAuth(tokens TokenValidator) gin.HandlerFunc {
	required := JWTAuth(tokens)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			required(c)
			return
		}

		if token, present, ok := bearer(c); present && ok {
			if claims, err := tokens.ValidateToken(token); err == nil {
				c.Set(userIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

type listingOwnerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

// OwnershipChecker guards listing writes to the listing's operator.
type OwnershipChecker struct {
	listings listingOwnerReader
}

func NewOwnershipChecker(listings listingOwnerReader) *OwnershipChecker {
	return &OwnershipChecker{listings: listings}
}

// CheckListingOwnership expects the listing ID in URL param "id".
func (oc *OwnershipChecker) CheckListingOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abortUnauthorized(c, "UNAUTHORIZED", "Authentication required")
			return
		}

		listingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   gin.H{"code": "NOT_FOUND", "message": "Listing not found"},
			})
			return
		}

		listing, err := oc.listings.GetByID(c.Request.Context(), listingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   gin.H{"code": "NOT_FOUND", "message": "Listing not found"},
				})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "Internal server error"},
			})
			return
		}

		if listing.OperatorID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "You don't operate this listing"},
			})
			return
		}

		c.Next()
	}
}
