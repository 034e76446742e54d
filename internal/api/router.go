package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vilaverde/guest-portal-backend/internal/auth"
	"github.com/vilaverde/guest-portal-backend/internal/availability"
	avHttp "github.com/vilaverde/guest-portal-backend/internal/availability/http"
	"github.com/vilaverde/guest-portal-backend/internal/booking"
	bookingHttp "github.com/vilaverde/guest-portal-backend/internal/booking/http"
	"github.com/vilaverde/guest-portal-backend/internal/override"
	overrideHttp "github.com/vilaverde/guest-portal-backend/internal/override/http"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
	structureHttp "github.com/vilaverde/guest-portal-backend/internal/structure/http"
)

// Config carries the services and settings the router assembles.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	PhotoMaxMB   int

	StructureService    structure.Service
	OverrideService     override.Service
	BookingService      booking.Service
	AvailabilityService availability.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsCfg.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	staffMiddleware := RequireStaff()

	structureHandler := structureHttp.NewHandler(cfg.StructureService, cfg.PhotoMaxMB)
	overrideHandler := overrideHttp.NewHandler(cfg.OverrideService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	availabilityHandler := avHttp.NewHandler(cfg.AvailabilityService)

	v1 := r.Group("/v1")
	{
		structureHttp.RegisterRoutes(v1, structureHandler, authMiddleware, staffMiddleware)
		overrideHttp.RegisterRoutes(v1, overrideHandler, authMiddleware, staffMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, staffMiddleware)
		avHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware)
	}

	return r
}
