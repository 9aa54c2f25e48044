package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterDoctor adds a doctor to the directory. New doctors start
// unapproved; an administrator flips the approval flag separately.
func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if strings.TrimSpace(d.Specialization) == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.ConsultationFee <= 0 {
		return fmt.Errorf("consultation_fee must be positive")
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return storeErr(err)
	}
	return nil
}

// GetDoctor returns a doctor by id regardless of eligibility; callers that
// need the booking rule check Eligible themselves.
func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	return d, nil
}

// ListDoctors returns the patient-facing catalog: eligible doctors only.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	items, total, err := s.repo.List(ctx, true, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

// ListAllDoctors returns every doctor including unapproved and inactive
// ones, for administrative screens.
func (s *Service) ListAllDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	items, total, err := s.repo.List(ctx, false, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

func (s *Service) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	if err := s.repo.SetApproval(ctx, id, approved); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return storeErr(err)
	}
	return nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
