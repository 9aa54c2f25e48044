package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/careconnect/careconnect-api/internal/platform/auth"
	"github.com/careconnect/careconnect-api/pkg/timefmt"
)

var (
	ErrNotFound         = errors.New("patient profile not found")
	ErrStoreUnavailable = errors.New("patient store unavailable")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the profile of the calling patient.
func (s *Service) GetProfile(ctx context.Context, actor auth.Actor) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return p, nil
}

// UpdateProfile creates or replaces the calling patient's profile. The id
// always comes from the actor, never from the payload.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, p *Patient) error {
	p.ID = actor.ID

	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if p.DateOfBirth != "" {
		if _, err := timefmt.ParseCanonicalDate(p.DateOfBirth); err != nil {
			return fmt.Errorf("date_of_birth must be YYYY-MM-DD")
		}
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
