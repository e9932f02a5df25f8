// Package app wires stores, services and HTTP routes into a runnable router.
package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"photostudio/internal/config"
	"photostudio/internal/middleware"
	"photostudio/internal/modules/booking"
	"photostudio/internal/modules/bookingconfig"
	"photostudio/internal/modules/pricing"
	"photostudio/internal/modules/staff"
	jwtsvc "photostudio/internal/pkg/jwt"
	"photostudio/internal/repository"
)

type App struct {
	Router   *gin.Engine
	JWT      *jwtsvc.Service
	Bookings *booking.Service
	Configs  *bookingconfig.Service
	Staff    *staff.Service
}

// New builds the application on a migrated database. The booking config
// singleton is created with defaults if it does not exist yet.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) (*App, error) {
	bookingRepo := repository.NewBookingRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	configRepo := repository.NewBookingConfigRepository(db)
	tx := repository.NewTransactor(db)

	configService := bookingconfig.NewService(configRepo, log.WithField("module", "bookingconfig"))
	if _, err := configService.EnsureDefault(ctx); err != nil {
		return nil, err
	}

	prices := pricing.DefaultTable()
	validator := booking.NewValidator(prices,
		booking.WithLocation(cfg.Location),
		booking.WithStrictLocations(cfg.StrictLocations),
	)
	bookingService := booking.NewService(
		bookingRepo,
		staffRepo,
		configService,
		tx,
		validator,
		prices,
		staff.NewMatcher(cfg.StaffMatchMode, cfg.Location),
		log.WithField("module", "booking"),
	)
	staffService := staff.NewService(staffRepo, cfg.Location, log.WithField("module", "staff"))

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	r := gin.New()
	r.Use(middleware.CORS(cfg.CORSOrigins...), middleware.RequestID(), middleware.ErrorLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(j))
	admin := v1.Group("")
	admin.Use(middleware.AdminOnly())

	booking.NewHandler(bookingService).RegisterRoutes(v1, admin)
	bookingconfig.NewHandler(configService).RegisterRoutes(v1, admin)
	staff.NewHandler(staffService).RegisterRoutes(admin)

	return &App{
		Router:   r,
		JWT:      j,
		Bookings: bookingService,
		Configs:  configService,
		Staff:    staffService,
	}, nil
}
