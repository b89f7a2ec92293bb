// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityStaff                       // Access token of a staff member required
)

// EndpointSecurityConfig maps "METHOD route-template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Books - public catalog
	"GET /api/v1/books":      SecurityPublic,
	"GET /api/v1/books/{id}": SecurityPublic,

	// Books - catalog administration
	"POST /api/v1/books":        SecurityStaff,
	"PUT /api/v1/books/{id}":    SecurityStaff,
	"DELETE /api/v1/books/{id}": SecurityStaff,

	// Borrowings - Access Protected
	"GET /api/v1/borrowings":               SecurityAccess,
	"GET /api/v1/borrowings/{id}":          SecurityAccess,
	"POST /api/v1/borrowings":              SecurityAccess,
	"POST /api/v1/borrowings/{id}/return": SecurityAccess,

	// Users
	"GET /api/v1/users/me":   SecurityAccess,
	"PATCH /api/v1/users/me": SecurityAccess,

	// Notification delivery log
	"GET /api/v1/notifications": SecurityStaff,

	"GET /healthz": SecurityPublic,
}

// GetSecurityLevel returns the security level for a method and route template
func GetSecurityLevel(method, route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+route]; exists {
		return level
	}
	// Default to access for unknown endpoints
	return SecurityAccess
}
