package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vilaverde/guest-portal-backend/internal/api"
	"github.com/vilaverde/guest-portal-backend/internal/auth"
	"github.com/vilaverde/guest-portal-backend/internal/availability"
	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/event"
	"github.com/vilaverde/guest-portal-backend/internal/override"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/storage"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction     bool
	ProdOrigins      string
	DBPool           *pgxpool.Pool
	JWTSecret        string
	JWTTTL           time.Duration
	StoragePath      string
	PhotoMaxMB       int
	PropertyLocation *time.Location
	Logger           *zap.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	loc := cfg.PropertyLocation
	if loc == nil {
		loc = time.UTC
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	files, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	events := event.NewLogPublisher(log)

	// Structure catalog
	structureRepo := structure.NewPgxRepository(cfg.DBPool)
	structureService := structure.NewService(structureRepo, files)

	// Daily overrides
	overrideRepo := override.NewPgxRepository(cfg.DBPool)
	overrideService := override.NewService(overrideRepo, structureService)

	// Booking ledger
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, structureService, events, loc)

	// Availability read surface
	availabilityService := availability.NewService(structureService, bookingService, overrideService, loc)

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		PhotoMaxMB:          cfg.PhotoMaxMB,
		StructureService:    structureService,
		OverrideService:     overrideService,
		BookingService:      bookingService,
		AvailabilityService: availabilityService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
