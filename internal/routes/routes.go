package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/poolmate/poolmate-backend/internal/config"
	"github.com/poolmate/poolmate-backend/internal/handlers"
	"github.com/poolmate/poolmate-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	rideHandler *handlers.RideHandler,
	requestHandler *handlers.RequestHandler,
	safetyHandler *handlers.SafetyHandler,
	chatHandler *handlers.ChatHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/verify-email", authHandler.VerifyEmail)

	// Protected routes (JWT required) - apply middleware per group
	// so public routes stay unaffected
	jwt := middleware.JWTProtected(cfg)
	api.Get("/auth/me", jwt, authHandler.Me)
	api.Post("/auth/logout", jwt, authHandler.Logout)
	api.Delete("/auth/account", jwt, authHandler.DeleteAccount)

	// Rides
	rides := api.Group("/rides", jwt)
	rides.Get("/", rideHandler.List)
	rides.Post("/", rideHandler.Create)
	rides.Post("/search", rideHandler.Search)
	rides.Get("/joined", requestHandler.JoinedRides)
	rides.Get("/:id", rideHandler.Get)
	rides.Patch("/:id/seats", rideHandler.UpdateSeats)
	rides.Delete("/:id", rideHandler.Delete)

	// Requests, nested under the ride they target
	rides.Post("/:id/requests", requestHandler.Submit)
	rides.Get("/:id/requests", requestHandler.ListForRide)
	rides.Get("/:id/requests/mine", requestHandler.MyRequest)
	rides.Post("/:id/requests/:requestId/approve", requestHandler.Approve)
	rides.Post("/:id/requests/:requestId/reject", requestHandler.Reject)
	rides.Delete("/:id/requests/:requestId", requestHandler.Withdraw)
	rides.Delete("/:id/requests/:requestId/rider", requestHandler.Remove)

	// Rider-side request views
	api.Get("/requests/pending", jwt, requestHandler.ListPending)
	api.Get("/requests/active", jwt, requestHandler.HasActivePending)

	// Ride chat
	rides.Get("/:id/messages", chatHandler.List)
	rides.Post("/:id/messages", chatHandler.Send)

	// Safety: blocks, hides, reports
	api.Post("/blocks", jwt, safetyHandler.BlockUser)
	api.Delete("/blocks/:userId", jwt, safetyHandler.UnblockUser)
	api.Get("/blocks", jwt, safetyHandler.ListBlocked)
	rides.Post("/:id/report", safetyHandler.ReportRide)
	rides.Post("/:id/messages/:messageId/report", safetyHandler.ReportMessage)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", safetyHandler.ListReports)
	admin.Put("/moderation/reports/:id", safetyHandler.ActionReport)
}
