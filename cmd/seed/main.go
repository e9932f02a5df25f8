package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"photostudio/internal/config"
	"photostudio/internal/database"
	"photostudio/internal/middleware"
	"photostudio/internal/modules/bookingconfig"
	"photostudio/internal/modules/staff"
	jwtsvc "photostudio/internal/pkg/jwt"
	"photostudio/internal/repository"
)

var roster = []staff.CreateStaffRequest{
	{Name: "Nimal Perera", Email: "nimal@studio.lk", Phone: "0771234567", Specialization: "Weddings"},
	{Name: "Kasuni Silva", Email: "kasuni@studio.lk", Phone: "0712345678", Specialization: "Portraits"},
	{Name: "Ruwan Fernando", Email: "ruwan@studio.lk", Phone: "0759876543", Specialization: "Events"},
}

func main() {
	days := flag.Int("days", 14, "number of daily availability slots to create per staff member")
	clientID := flag.String("client", "client-1", "subject of the printed client token")
	flag.Parse()

	log := logrus.New()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.IsProdLike() {
		log.Fatal("refusing to seed a prod-like environment")
	}

	if err := seed(context.Background(), cfg, log, *days); err != nil {
		log.WithError(err).Fatal("seed failed")
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, t := range []struct{ sub, role string }{{*clientID, "client"}, {"admin-1", middleware.RoleAdmin}} {
		token, err := j.GenerateToken(t.sub, t.role)
		if err != nil {
			log.WithError(err).Fatal("issue token")
		}
		fmt.Printf("%s token (%s): %s\n", t.role, t.sub, token)
	}
}

func seed(ctx context.Context, cfg *config.Config, log *logrus.Logger, days int) error {
	db, err := database.ConnectWithLogger(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	configs := bookingconfig.NewService(repository.NewBookingConfigRepository(db), log)
	if _, err := configs.EnsureDefault(ctx); err != nil {
		return err
	}

	staffService := staff.NewService(repository.NewStaffRepository(db), cfg.Location, log)
	today := time.Now().In(cfg.Location)
	dates := make([]string, 0, days)
	for i := 1; i <= days; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format("2006-01-02"))
	}

	for _, req := range roster {
		member, err := staffService.Create(ctx, req)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			continue
		}
		if _, err := staffService.AddSlots(ctx, member.ID, dates); err != nil {
			return err
		}
	}

	log.WithField("staff", len(roster)).Info("seed completed")
	return nil
}
