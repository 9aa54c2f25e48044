package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/domain/directory"
	"github.com/careconnect/careconnect-api/internal/platform/auth"
)

// DirectoryService is the slice of the doctor directory this package
// consumes.
type DirectoryService interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

type Service struct {
	repo      Repository
	directory DirectoryService
	now       func() time.Time
}

func NewService(repo Repository, dir DirectoryService) *Service {
	return &Service{repo: repo, directory: dir, now: time.Now}
}

// Create validates a consultation request and stores a new pending booking
// owned by the calling patient. On validation failure nothing is created.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req *CreateRequest) (*Booking, error) {
	if actor.Role != auth.RolePatient {
		return nil, ErrForbidden
	}

	v, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		PatientID:             actor.ID,
		DoctorID:              v.doctorID,
		AppointmentType:       v.appointmentType,
		AppointmentDate:       v.date,
		AppointmentTime:       v.timeOfDay,
		FullName:              strings.TrimSpace(req.FullName),
		Email:                 strings.TrimSpace(req.Email),
		PhoneNumber:           strings.TrimSpace(req.PhoneNumber),
		DateOfBirth:           strings.TrimSpace(req.DateOfBirth),
		ReasonForConsultation: strings.TrimSpace(req.ReasonForConsultation),
		CurrentMedications:    req.CurrentMedications,
		KnownAllergies:        req.KnownAllergies,
		Status:                StatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, &ValidationError{Reasons: []string{reasonSlotTaken}}
		}
		return nil, storeErr(err)
	}
	return b, nil
}

// Get returns a booking visible to the caller: the owning patient, the
// owning doctor, or an administrator.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Booking, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && actor.ID != b.PatientID && actor.ID != b.DoctorID {
		return nil, ErrForbidden
	}
	return b, nil
}

// Respond is the doctor's answer to a pending booking: confirm or reject,
// with an optional free-text message. A meeting link is stored only when a
// videocall booking is confirmed.
func (s *Service) Respond(ctx context.Context, actor auth.Actor, id uuid.UUID, target Status, response, meetingLink string) (*Booking, error) {
	if target != StatusConfirmed && target != StatusRejected {
		return nil, &ValidationError{Reasons: []string{"status must be confirmed or rejected"}}
	}

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleDoctor || actor.ID != b.DoctorID {
		return nil, ErrForbidden
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	b.Status = target
	if response != "" {
		b.DoctorResponse = &response
	}
	if target == StatusConfirmed && b.AppointmentType == TypeVideoCall && meetingLink != "" {
		b.MeetingLink = &meetingLink
	}

	return s.commit(ctx, b, StatusPending)
}

// Complete marks a confirmed consultation as held.
func (s *Service) Complete(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Booking, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleDoctor || actor.ID != b.DoctorID {
		return nil, ErrForbidden
	}
	if b.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	b.Status = StatusCompleted
	return s.commit(ctx, b, StatusConfirmed)
}

// Cancel withdraws a still-pending booking. Only the owning patient may
// cancel; confirmed bookings cannot be cancelled, only completed or left to
// the doctor.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*Booking, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RolePatient || actor.ID != b.PatientID {
		return nil, ErrForbidden
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	b.Status = StatusCancelled
	if reason != "" {
		b.CancellationReason = &reason
	}
	return s.commit(ctx, b, StatusPending)
}

// ListForPatient returns the caller's own bookings, optionally restricted
// to one status. Never another patient's bookings.
func (s *Service) ListForPatient(ctx context.Context, actor auth.Actor, filter *Status, limit, offset int) ([]*Booking, int, error) {
	if err := checkFilter(filter); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.ListByPatient(ctx, actor.ID, filter, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

// ListForDoctor returns bookings addressed to the calling doctor.
func (s *Service) ListForDoctor(ctx context.Context, actor auth.Actor, filter *Status, limit, offset int) ([]*Booking, int, error) {
	if err := checkFilter(filter); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.ListByDoctor(ctx, actor.ID, filter, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

// StatusCounts derives per-status badge counts from the caller's owned set.
// Computed per call, never stored, so it cannot drift.
func (s *Service) StatusCounts(ctx context.Context, actor auth.Actor) (map[Status]int, error) {
	var (
		counts map[Status]int
		err    error
	)
	switch actor.Role {
	case auth.RolePatient:
		counts, err = s.repo.CountByStatusForPatient(ctx, actor.ID)
	case auth.RoleDoctor:
		counts, err = s.repo.CountByStatusForDoctor(ctx, actor.ID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, storeErr(err)
	}

	// Every status appears, zero-valued when absent, so clients can render
	// all badges without nil checks.
	for _, st := range []Status{StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	return b, nil
}

// commit writes the transition with a compare-and-set on the from-status.
// A lost race re-reads the booking to distinguish deletion from a
// concurrent transition.
func (s *Service) commit(ctx context.Context, b *Booking, from Status) (*Booking, error) {
	ok, err := s.repo.Transition(ctx, b, from)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		if _, err := s.repo.GetByID(ctx, b.ID); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInvalidTransition
	}
	return b, nil
}

func checkFilter(filter *Status) error {
	if filter != nil && !filter.Valid() {
		return &ValidationError{Reasons: []string{"status filter must be one of pending, confirmed, rejected, completed, cancelled"}}
	}
	return nil
}
