package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/activekidz/roster-resolution/internal/handler"    // import the handlers that implement business logic
	"github.com/activekidz/roster-resolution/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle staff registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle staff login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out using a refresh token.  Logout does
	// not require JWT authentication; the handler accepts a JSON body with a
	// `refresh_token` or an Authorization header and invalidates accordingly.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Both STAFF and ADMIN may use the common protected endpoints.  The
	// middleware will reject requests with missing or unknown roles.
	auth.Use(middleware.RequireRole("ADMIN", "STAFF"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler so clients can
	// call either /v1/auth/logout or /v1/logout to terminate a session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterRoster registers the roster administration endpoints under
// /v1/admin.  Every route requires a valid access token with the STAFF or
// ADMIN role; the destructive cleanup endpoint is ADMIN-only.  The extra
// middlewares (response cache, rate limiting) are applied by the caller on
// the Echo instance so read endpoints here pick them up automatically.
func RegisterRoster(e *echo.Echo, r *handler.RosterHandler, jwtSecret string) {
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN", "STAFF"))

	// Batch resolution over all (filtered) orders.
	admin.POST("/roster/build", r.Build)
	// Targeted re-resolution of named orders in one transaction.
	admin.POST("/roster/rebuild", r.Rebuild)
	// Dry run: report what a build would do without writing.
	admin.GET("/roster/preview", r.Preview)
	// Read-only consistency check over the persisted roster.
	admin.GET("/roster/integrity", r.Integrity)
	// Seed one placeholder entry per variant of a catalog entry.
	admin.POST("/roster/placeholders/:entryID", r.SeedPlaceholders)
	// Resolve a single order on demand.
	admin.POST("/orders/:id/resolve", r.ResolveOrder)
	// Manual attendee assignment on a line item.
	admin.POST("/order-items/:id/assign", r.Assign)

	// Orphan removal deletes rows, so it is gated to ADMIN alone.
	cleanup := e.Group("/v1/admin/roster/cleanup")
	cleanup.Use(middleware.JWTAuth(jwtSecret))
	cleanup.Use(middleware.RequireRole("ADMIN"))
	cleanup.POST("", r.Cleanup)
}
