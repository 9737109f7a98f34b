package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/repair-desk/internal/apierror"
	"github.com/ukydev/repair-desk/internal/auth"
	"github.com/ukydev/repair-desk/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Operation names consulted against the permission table
const (
	OpJobsList       = "jobs.list"
	OpJobsGet        = "jobs.get"
	OpJobsCreate     = "jobs.create"
	OpJobsUpdate     = "jobs.update"
	OpJobsDelete     = "jobs.delete"
	OpJobsAssign     = "jobs.assign"
	OpJobsByCustomer = "jobs.byCustomer"
	OpJobsByStatus   = "jobs.byStatus"
	OpUsersList      = "users.list"
	OpUsersCreate    = "users.create"
)

// permissions is the single auditable role matrix: operation -> allowed
// roles. An operation absent from the table denies every role.
var permissions = map[string][]models.Role{
	OpJobsList:       {models.RoleAdmin, models.RoleManager, models.RoleTechnician, models.RoleCoordinator},
	OpJobsGet:        {models.RoleAdmin, models.RoleManager, models.RoleTechnician, models.RoleCoordinator},
	OpJobsCreate:     {models.RoleAdmin, models.RoleManager, models.RoleTechnician, models.RoleCoordinator},
	OpJobsUpdate:     {models.RoleAdmin, models.RoleManager, models.RoleCoordinator},
	OpJobsDelete:     {models.RoleManager},
	OpJobsAssign:     {models.RoleAdmin, models.RoleManager},
	OpJobsByCustomer: {models.RoleAdmin, models.RoleManager, models.RoleTechnician},
	OpJobsByStatus:   {models.RoleAdmin, models.RoleManager, models.RoleTechnician},
	OpUsersList:      {models.RoleAdmin, models.RoleManager},
	OpUsersCreate:    {models.RoleAdmin, models.RoleManager},
}

// RoleAllowed reports whether the role may perform the named operation
func RoleAllowed(op string, role models.Role) bool {
	for _, allowed := range permissions[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates JWT tokens and adds user context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for certain endpoints
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			apierror.Write(w, apierror.Unauthorized("Authentication required"))
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			apierror.Write(w, apierror.Unauthorized("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize checks the caller's role against the permission table entry
// for the named operation.
func (m *AuthMiddleware) Authorize(op string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(UserContextKey).(*models.Claims)
			if !ok {
				apierror.Write(w, apierror.Unauthorized("Authentication required"))
				return
			}

			if !RoleAllowed(op, claims.Role) {
				apierror.Write(w, apierror.Forbidden("You do not have permission to access this resource"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// shouldSkipAuth determines if authentication should be skipped for a given path
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/auth/login",
		"/auth/register",
		"/health",
		"/ws",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]int64 // IP -> timestamps
	mu       sync.RWMutex
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
	}
}

// RateLimit applies rate limiting based on IP address
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			now := time.Now().Unix()
			windowStart := now - int64(windowSeconds)

			m.mu.Lock()

			if timestamps, exists := m.requests[clientIP]; exists {
				var validTimestamps []int64
				for _, ts := range timestamps {
					if ts >= windowStart {
						validTimestamps = append(validTimestamps, ts)
					}
				}
				m.requests[clientIP] = validTimestamps
			}

			if len(m.requests[clientIP]) >= maxRequests {
				m.mu.Unlock()
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			m.requests[clientIP] = append(m.requests[clientIP], now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
