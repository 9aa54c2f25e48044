package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/domain/directory"
	"github.com/careconnect/careconnect-api/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*Booking
	seq       int
	fail      error
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func clone(b *Booking) *Booking {
	c := *b
	return &c
}

func (m *mockRepo) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	b.ID = uuid.New()
	m.seq++
	b.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = clone(b)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (m *mockRepo) Transition(_ context.Context, b *Booking, from Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	stored, ok := m.bookings[b.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = b.Status
	stored.DoctorResponse = b.DoctorResponse
	stored.MeetingLink = b.MeetingLink
	stored.CancellationReason = b.CancellationReason
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error) {
	return m.list(func(b *Booking) bool { return b.PatientID == patientID }, status, limit, offset)
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error) {
	return m.list(func(b *Booking) bool { return b.DoctorID == doctorID }, status, limit, offset)
}

func (m *mockRepo) list(owned func(*Booking) bool, status *Status, limit, offset int) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, 0, m.fail
	}
	var result []*Booking
	for _, b := range m.bookings {
		if !owned(b) {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		result = append(result, clone(b))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	total := len(result)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return result[offset:end], total, nil
}

func (m *mockRepo) CountByStatusForPatient(_ context.Context, patientID uuid.UUID) (map[Status]int, error) {
	return m.countByStatus(func(b *Booking) bool { return b.PatientID == patientID })
}

func (m *mockRepo) CountByStatusForDoctor(_ context.Context, doctorID uuid.UUID) (map[Status]int, error) {
	return m.countByStatus(func(b *Booking) bool { return b.DoctorID == doctorID })
}

func (m *mockRepo) countByStatus(owned func(*Booking) bool) (map[Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	counts := make(map[Status]int)
	for _, b := range m.bookings {
		if owned(b) {
			counts[b.Status]++
		}
	}
	return counts, nil
}

func (m *mockRepo) SlotTaken(_ context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for _, b := range m.bookings {
		if b.DoctorID == doctorID && b.AppointmentDate == date && b.AppointmentTime == timeOfDay &&
			b.Status != StatusRejected && b.Status != StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

// -- Mock Directory --

type mockDirectory struct {
	doctors map[uuid.UUID]*directory.Doctor
	fail    error
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{doctors: make(map[uuid.UUID]*directory.Doctor)}
}

func (m *mockDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*directory.Doctor, error) {
	if m.fail != nil {
		return nil, fmt.Errorf("%w: %v", directory.ErrStoreUnavailable, m.fail)
	}
	d, ok := m.doctors[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return d, nil
}

func (m *mockDirectory) add(approved, active bool) uuid.UUID {
	id := uuid.New()
	m.doctors[id] = &directory.Doctor{
		ID:              id,
		FullName:        "Dr. Test",
		Specialization:  "Cardiology",
		ConsultationFee: 150,
		IsApproved:      approved,
		IsActive:        active,
	}
	return id
}

// -- Fixtures --

var testNow = time.Date(2026, time.March, 1, 10, 30, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *mockDirectory, uuid.UUID) {
	repo := newMockRepo()
	dir := newMockDirectory()
	doctorID := dir.add(true, true)
	svc := NewService(repo, dir)
	svc.now = func() time.Time { return testNow }
	return svc, repo, dir, doctorID
}

func validRequest(doctorID uuid.UUID) *CreateRequest {
	return &CreateRequest{
		DoctorID:              doctorID.String(),
		AppointmentType:       "videocall",
		AppointmentDate:       "2026-03-02", // tomorrow relative to testNow
		AppointmentTime:       "09:00",
		FullName:              "Priya Nair",
		Email:                 "priya@example.com",
		PhoneNumber:           "+91-9876543210",
		DateOfBirth:           "1992-06-15",
		ReasonForConsultation: "Recurring chest pain",
	}
}

func patient() auth.Actor { return auth.Actor{ID: uuid.New(), Role: auth.RolePatient} }

func doctorActor(id uuid.UUID) auth.Actor { return auth.Actor{ID: id, Role: auth.RoleDoctor} }

func mustCreate(t *testing.T, svc *Service, actor auth.Actor, req *CreateRequest) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return b
}

func validationReasons(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Reasons
}

// -- Creation --

func TestCreate_Pending(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	p := patient()

	b := mustCreate(t, svc, p, validRequest(doctorID))

	if b.Status != StatusPending {
		t.Errorf("expected status pending, got %s", b.Status)
	}
	if b.PatientID != p.ID {
		t.Errorf("expected patient id from actor, got %s", b.PatientID)
	}
	if b.DoctorID != doctorID {
		t.Errorf("expected doctor id %s, got %s", doctorID, b.DoctorID)
	}
	if b.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if _, ok := repo.bookings[b.ID]; !ok {
		t.Error("expected booking to be persisted")
	}
}

func TestCreate_DateInvariant(t *testing.T) {
	svc, repo, _, doctorID := newTestService()

	tests := []struct {
		name string
		date string
	}{
		{"today", "2026-03-01"},
		{"yesterday", "2026-02-28"},
		{"last year", "2025-03-02"},
		{"malformed", "02/03/2026"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(doctorID)
			req.AppointmentDate = tt.date

			_, err := svc.Create(context.Background(), patient(), req)
			reasons := validationReasons(t, err)
			if len(reasons) == 0 {
				t.Fatal("expected a date-related reason")
			}
			if len(repo.bookings) != 0 {
				t.Error("expected no booking to be created")
			}
		})
	}
}

func TestCreate_TimeNormalization(t *testing.T) {
	svc, _, _, doctorID := newTestService()

	req := validRequest(doctorID)
	req.AppointmentTime = "9:00 AM"

	b := mustCreate(t, svc, patient(), req)
	if b.AppointmentTime != "09:00" {
		t.Errorf("expected canonical time 09:00, got %s", b.AppointmentTime)
	}
}

func TestCreate_CollectsAllReasons(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), patient(), &CreateRequest{})
	reasons := validationReasons(t, err)

	// doctor, date, time, type, and all five intake fields
	if len(reasons) < 9 {
		t.Fatalf("expected every check to report, got %d reasons: %v", len(reasons), reasons)
	}
	if reasons[0] != "doctor_id is required" {
		t.Errorf("expected doctor reason first, got %q", reasons[0])
	}
	if err.Error() != reasons[0] {
		t.Errorf("expected Error() to surface the first reason, got %q", err.Error())
	}
}

func TestCreate_DoctorEligibility(t *testing.T) {
	svc, _, dir, _ := newTestService()

	unapproved := dir.add(false, true)
	inactive := dir.add(true, false)

	for name, id := range map[string]uuid.UUID{
		"unapproved": unapproved,
		"inactive":   inactive,
		"unknown":    uuid.New(),
	} {
		t.Run(name, func(t *testing.T) {
			req := validRequest(id)
			if _, err := svc.Create(context.Background(), patient(), req); err == nil {
				t.Error("expected validation error")
			} else {
				validationReasons(t, err)
			}
		})
	}
}

func TestCreate_EmailShape(t *testing.T) {
	svc, _, _, doctorID := newTestService()

	for _, email := range []string{"plain", "a@b", "a b@c.com", "@d.com", "a@.com"} {
		req := validRequest(doctorID)
		req.Email = email
		if _, err := svc.Create(context.Background(), patient(), req); err == nil {
			t.Errorf("email %q: expected validation error", email)
		}
	}
}

func TestCreate_SlotCollision(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	mustCreate(t, svc, patient(), validRequest(doctorID))

	_, err := svc.Create(context.Background(), patient(), validRequest(doctorID))
	reasons := validationReasons(t, err)
	if len(reasons) != 1 {
		t.Fatalf("expected only the slot reason, got %v", reasons)
	}
}

func TestCreate_SlotRaceSurfacesAsValidation(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	// The slot looks free at check time but the insert loses to a
	// concurrent booking hitting the unique index.
	repo.createErr = ErrSlotTaken

	_, err := svc.Create(context.Background(), patient(), validRequest(doctorID))
	reasons := validationReasons(t, err)
	if len(reasons) != 1 || reasons[0] != reasonSlotTaken {
		t.Fatalf("expected only the slot reason, got %v", reasons)
	}
	if errors.Is(err, ErrStoreUnavailable) {
		t.Error("expected the lost race not to read as a store outage")
	}
	if len(repo.bookings) != 0 {
		t.Errorf("expected no booking stored, got %d", len(repo.bookings))
	}
}

func TestCreate_RejectedSlotIsReusable(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusRejected, "fully booked", ""); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	if _, err := svc.Create(context.Background(), patient(), validRequest(doctorID)); err != nil {
		t.Errorf("expected rejected slot to be bookable again, got %v", err)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	repo.fail = errors.New("connection refused")

	_, err := svc.Create(context.Background(), patient(), validRequest(doctorID))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCreate_DirectoryOutageIsNotValidation(t *testing.T) {
	svc, _, dir, doctorID := newTestService()
	dir.fail = errors.New("timeout")

	_, err := svc.Create(context.Background(), patient(), validRequest(doctorID))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Error("directory outage must not surface as a validation error")
	}
}

func TestCreate_RequiresPatientRole(t *testing.T) {
	svc, _, _, doctorID := newTestService()

	_, err := svc.Create(context.Background(), doctorActor(doctorID), validRequest(doctorID))
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// -- Respond --

func TestRespond_ConfirmVideocall(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	got, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "See you then", "https://meet.example.com/abc")
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
	if got.DoctorResponse == nil || *got.DoctorResponse != "See you then" {
		t.Errorf("expected doctor response to be stored, got %v", got.DoctorResponse)
	}
	if got.MeetingLink == nil || *got.MeetingLink != "https://meet.example.com/abc" {
		t.Errorf("expected meeting link to be stored, got %v", got.MeetingLink)
	}
}

func TestRespond_ConfirmInPersonIgnoresMeetingLink(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	req := validRequest(doctorID)
	req.AppointmentType = "inperson"
	b := mustCreate(t, svc, patient(), req)

	got, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "Come to clinic 4", "https://meet.example.com/abc")
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if got.MeetingLink != nil {
		t.Errorf("expected no meeting link for in-person booking, got %v", *got.MeetingLink)
	}
}

func TestRespond_Reject(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	got, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusRejected, "Fully booked that day", "https://meet.example.com/abc")
	if err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if got.Status != StatusRejected {
		t.Errorf("expected rejected, got %s", got.Status)
	}
	if got.MeetingLink != nil {
		t.Error("expected no meeting link on rejection")
	}
}

func TestRespond_WrongDoctor(t *testing.T) {
	svc, repo, dir, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	other := dir.add(true, true)
	_, err := svc.Respond(context.Background(), doctorActor(other), b.ID, StatusConfirmed, "", "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.bookings[b.ID].Status != StatusPending {
		t.Error("expected booking to be unchanged")
	}
}

func TestRespond_PatientCannotRespond(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p := patient()
	b := mustCreate(t, svc, p, validRequest(doctorID))

	_, err := svc.Respond(context.Background(), p, b.ID, StatusConfirmed, "", "")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestRespond_NotFound(t *testing.T) {
	svc, _, _, doctorID := newTestService()

	_, err := svc.Respond(context.Background(), doctorActor(doctorID), uuid.New(), StatusConfirmed, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRespond_InvalidTargetStatus(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	for _, target := range []Status{StatusPending, StatusCompleted, StatusCancelled, Status("bogus")} {
		if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, target, "", ""); err == nil {
			t.Errorf("target %q: expected error", target)
		} else {
			validationReasons(t, err)
		}
	}
}

// -- Complete --

func TestComplete_FromConfirmed(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "", ""); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	got, err := svc.Complete(context.Background(), doctorActor(doctorID), b.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
}

func TestComplete_PendingIsInvalid(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	_, err := svc.Complete(context.Background(), doctorActor(doctorID), b.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.bookings[b.ID].Status != StatusPending {
		t.Error("expected booking to be unchanged")
	}
}

// -- Cancel --

func TestCancel_Pending(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p := patient()
	b := mustCreate(t, svc, p, validRequest(doctorID))

	got, err := svc.Cancel(context.Background(), p, b.ID, "found another doctor")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
	if got.CancellationReason == nil || *got.CancellationReason != "found another doctor" {
		t.Errorf("expected cancellation reason to be stored, got %v", got.CancellationReason)
	}
}

func TestCancel_WrongPatient(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))

	_, err := svc.Cancel(context.Background(), patient(), b.ID, "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.bookings[b.ID].Status != StatusPending {
		t.Error("expected booking to be unchanged")
	}
}

func TestCancel_ConfirmedIsInvalid(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p := patient()
	b := mustCreate(t, svc, p, validRequest(doctorID))

	if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "", ""); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), p, b.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

// -- Terminal states --

func TestTerminalStateClosure(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	p := patient()

	setup := map[string]func(t *testing.T) *Booking{
		"rejected": func(t *testing.T) *Booking {
			b := mustCreate(t, svc, p, validRequest(doctorID))
			if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusRejected, "", ""); err != nil {
				t.Fatalf("setup: %v", err)
			}
			return b
		},
		"completed": func(t *testing.T) *Booking {
			req := validRequest(doctorID)
			req.AppointmentTime = "10:00"
			b := mustCreate(t, svc, p, req)
			if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "", ""); err != nil {
				t.Fatalf("setup: %v", err)
			}
			if _, err := svc.Complete(context.Background(), doctorActor(doctorID), b.ID); err != nil {
				t.Fatalf("setup: %v", err)
			}
			return b
		},
		"cancelled": func(t *testing.T) *Booking {
			req := validRequest(doctorID)
			req.AppointmentTime = "11:00"
			b := mustCreate(t, svc, p, req)
			if _, err := svc.Cancel(context.Background(), p, b.ID, ""); err != nil {
				t.Fatalf("setup: %v", err)
			}
			return b
		},
	}

	for name, build := range setup {
		t.Run(name, func(t *testing.T) {
			b := build(t)
			final := repo.bookings[b.ID].Status

			if _, err := svc.Respond(context.Background(), doctorActor(doctorID), b.ID, StatusConfirmed, "", ""); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("respond: expected ErrInvalidTransition, got %v", err)
			}
			if _, err := svc.Complete(context.Background(), doctorActor(doctorID), b.ID); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("complete: expected ErrInvalidTransition, got %v", err)
			}
			if _, err := svc.Cancel(context.Background(), p, b.ID, ""); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("cancel: expected ErrInvalidTransition, got %v", err)
			}
			if repo.bookings[b.ID].Status != final {
				t.Errorf("terminal booking mutated: %s -> %s", final, repo.bookings[b.ID].Status)
			}
		})
	}
}

// -- Query facade --

func TestList_RoleIsolation(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p1, p2 := patient(), patient()

	b := mustCreate(t, svc, p1, validRequest(doctorID))

	items, total, err := svc.ListForPatient(context.Background(), p2, nil, 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected no bookings for other patient, got %d", len(items))
	}

	items, _, err = svc.ListForPatient(context.Background(), p1, nil, 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient error: %v", err)
	}
	if len(items) != 1 || items[0].ID != b.ID {
		t.Errorf("expected owner to see the booking")
	}
}

func TestList_StatusFilterAndCounts(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p := patient()
	d := doctorActor(doctorID)

	times := []string{"09:00", "10:00", "11:00"}
	var bookings []*Booking
	for _, tm := range times {
		req := validRequest(doctorID)
		req.AppointmentTime = tm
		bookings = append(bookings, mustCreate(t, svc, p, req))
	}
	if _, err := svc.Respond(context.Background(), d, bookings[0].ID, StatusConfirmed, "", ""); err != nil {
		t.Fatalf("Respond error: %v", err)
	}

	pendingFilter := StatusPending
	items, total, err := svc.ListForDoctor(context.Background(), d, &pendingFilter, 20, 0)
	if err != nil {
		t.Fatalf("ListForDoctor error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 pending bookings, got %d", total)
	}
	for _, b := range items {
		if b.Status != StatusPending {
			t.Errorf("filtered list contains status %s", b.Status)
		}
	}

	counts, err := svc.StatusCounts(context.Background(), d)
	if err != nil {
		t.Fatalf("StatusCounts error: %v", err)
	}
	if counts[StatusPending] != len(items) {
		t.Errorf("derived pending count %d != filtered subset length %d", counts[StatusPending], len(items))
	}
	if counts[StatusConfirmed] != 1 {
		t.Errorf("expected 1 confirmed, got %d", counts[StatusConfirmed])
	}
	if counts[StatusRejected] != 0 || counts[StatusCompleted] != 0 || counts[StatusCancelled] != 0 {
		t.Error("expected zero-valued entries for absent statuses")
	}
}

func TestList_InvalidFilter(t *testing.T) {
	svc, _, _, _ := newTestService()
	bad := Status("archived")

	if _, _, err := svc.ListForPatient(context.Background(), patient(), &bad, 20, 0); err == nil {
		t.Error("expected validation error for unknown status filter")
	}
}

func TestList_IdempotentRead(t *testing.T) {
	svc, _, _, doctorID := newTestService()
	p := patient()

	for _, tm := range []string{"09:00", "10:00", "11:00"} {
		req := validRequest(doctorID)
		req.AppointmentTime = tm
		mustCreate(t, svc, p, req)
	}

	first, _, err := svc.ListForPatient(context.Background(), p, nil, 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient error: %v", err)
	}
	second, _, err := svc.ListForPatient(context.Background(), p, nil, 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

// -- Concurrency --

func TestRespond_ConcurrentAtomicity(t *testing.T) {
	svc, repo, _, doctorID := newTestService()
	b := mustCreate(t, svc, patient(), validRequest(doctorID))
	d := doctorActor(doctorID)

	var wg sync.WaitGroup
	results := make([]error, 2)
	targets := []Status{StatusConfirmed, StatusRejected}

	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Respond(context.Background(), d, b.ID, targets[i], "", "")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidTransition):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("expected exactly one winner, got %d successes and %d conflicts", successes, conflicts)
	}

	final := repo.bookings[b.ID].Status
	if final != StatusConfirmed && final != StatusRejected {
		t.Errorf("expected a terminal decision, got %s", final)
	}
}

// -- Enum helpers --

func TestStatusHelpers(t *testing.T) {
	if Status("bogus").Valid() {
		t.Error("expected bogus status to be invalid")
	}
	if !StatusRejected.Terminal() || !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("expected rejected, completed, cancelled to be terminal")
	}
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Error("expected pending and confirmed to be non-terminal")
	}
	if StatusPending.Label() != "Pending" {
		t.Errorf("unexpected label %q", StatusPending.Label())
	}
	if !TypeVideoCall.Valid() || !TypeInPerson.Valid() || AppointmentType("phone").Valid() {
		t.Error("appointment type validity mismatch")
	}
}
