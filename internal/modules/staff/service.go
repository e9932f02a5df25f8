package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"photostudio/internal/domain"
	"photostudio/internal/repository"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("staff member not found")
)

type Repository interface {
	Create(ctx context.Context, s *domain.Staff) error
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
	AppendSlots(ctx context.Context, staffID string, slots []domain.AvailabilitySlot) error
}

// Service manages the staff roster. Availability and assignment changes go
// through the booking service only.
type Service struct {
	repo Repository
	loc  *time.Location
	log  logrus.FieldLogger
}

func NewService(repo Repository, loc *time.Location, log logrus.FieldLogger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, log: log}
}

func (s *Service) Create(ctx context.Context, req CreateStaffRequest) (*domain.Staff, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	member := &domain.Staff{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Available:      true,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}

	s.log.WithField("staff_id", member.ID).Info("staff member created")
	return member, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Staff, error) {
	member, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	return member, nil
}

// AddSlots appends free availability slots, one per date (YYYY-MM-DD), in
// the given order.
func (s *Service) AddSlots(ctx context.Context, id string, dates []string) (*domain.Staff, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: at least one date is required", ErrValidation)
	}

	slots := make([]domain.AvailabilitySlot, 0, len(dates))
	for _, raw := range dates {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, raw)
		}
		slots = append(slots, domain.AvailabilitySlot{
			ID:        uuid.NewString(),
			Date:      d,
			Available: true,
		})
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.AppendSlots(ctx, id, slots); err != nil {
		return nil, fmt.Errorf("append slots: %w", err)
	}

	s.log.WithFields(logrus.Fields{"staff_id": id, "slots": len(slots)}).Info("availability slots added")
	return s.Get(ctx, id)
}
