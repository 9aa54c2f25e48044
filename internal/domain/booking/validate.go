package booking

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/domain/directory"
	"github.com/careconnect/careconnect-api/pkg/timefmt"
)

// CreateRequest is the wire shape of a patient's consultation request. The
// time field accepts both the canonical 24-hour form and the 12-hour form
// produced by the booking form.
type CreateRequest struct {
	DoctorID              string  `json:"doctor_id"`
	AppointmentType       string  `json:"appointment_type"`
	AppointmentDate       string  `json:"appointment_date"`
	AppointmentTime       string  `json:"appointment_time"`
	FullName              string  `json:"full_name"`
	Email                 string  `json:"email"`
	PhoneNumber           string  `json:"phone_number"`
	DateOfBirth           string  `json:"date_of_birth"`
	ReasonForConsultation string  `json:"reason_for_consultation"`
	CurrentMedications    *string `json:"current_medications,omitempty"`
	KnownAllergies        *string `json:"known_allergies,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// reasonSlotTaken is shared between the pre-insert check and the unique
// index fallback so both paths read the same to the client.
const reasonSlotTaken = "the selected slot is already booked for this doctor"

// validated holds the normalized fields produced by a successful validation
// pass, ready to be copied onto a new Booking.
type validated struct {
	doctorID        uuid.UUID
	appointmentType AppointmentType
	date            string
	timeOfDay       string
}

// validate runs every check and collects all failures so the caller can
// show every problem at once. Directory or store outages abort with
// ErrStoreUnavailable instead of masquerading as input errors.
func (s *Service) validate(ctx context.Context, req *CreateRequest) (*validated, error) {
	var reasons []string
	v := &validated{}

	// 1. Doctor resolves and is eligible.
	doctorOK := false
	if strings.TrimSpace(req.DoctorID) == "" {
		reasons = append(reasons, "doctor_id is required")
	} else if id, err := uuid.Parse(req.DoctorID); err != nil {
		reasons = append(reasons, "doctor_id is not a valid id")
	} else {
		d, err := s.directory.GetDoctor(ctx, id)
		switch {
		case errors.Is(err, directory.ErrNotFound):
			reasons = append(reasons, "doctor not found")
		case err != nil:
			return nil, storeErr(err)
		case !d.Eligible():
			reasons = append(reasons, "doctor is not accepting bookings")
		default:
			v.doctorID = id
			doctorOK = true
		}
	}

	// 2. Date parses and is strictly in the future (date-only comparison).
	dateOK := false
	if strings.TrimSpace(req.AppointmentDate) == "" {
		reasons = append(reasons, "appointment_date is required")
	} else if d, err := timefmt.ParseCanonicalDate(req.AppointmentDate); err != nil {
		reasons = append(reasons, "appointment_date must be a valid YYYY-MM-DD date")
	} else {
		today, _ := timefmt.ParseCanonicalDate(timefmt.CanonicalDate(s.now()))
		if !d.After(today) {
			reasons = append(reasons, "appointment_date must be later than today")
		} else {
			v.date = timefmt.CanonicalDate(d)
			dateOK = true
		}
	}

	// 3. Time normalizes to the canonical 24-hour form.
	timeOK := false
	if strings.TrimSpace(req.AppointmentTime) == "" {
		reasons = append(reasons, "appointment_time is required")
	} else if t, err := timefmt.To24Hour(req.AppointmentTime); err != nil {
		reasons = append(reasons, "appointment_time must be a valid time of day")
	} else {
		v.timeOfDay = t
		timeOK = true
	}

	if at := AppointmentType(req.AppointmentType); !at.Valid() {
		reasons = append(reasons, "appointment_type must be videocall or inperson")
	} else {
		v.appointmentType = at
	}

	// 4. Required intake fields, non-blank after trimming.
	required := []struct {
		value string
		name  string
	}{
		{req.FullName, "full_name"},
		{req.Email, "email"},
		{req.PhoneNumber, "phone_number"},
		{req.DateOfBirth, "date_of_birth"},
		{req.ReasonForConsultation, "reason_for_consultation"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			reasons = append(reasons, f.name+" is required")
		}
	}

	// 5. Email shape.
	if strings.TrimSpace(req.Email) != "" && !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		reasons = append(reasons, "email must be a valid address")
	}

	// 6. Slot collision, only meaningful once doctor, date and time parsed.
	if doctorOK && dateOK && timeOK {
		taken, err := s.repo.SlotTaken(ctx, v.doctorID, v.date, v.timeOfDay)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			reasons = append(reasons, reasonSlotTaken)
		}
	}

	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}
	return v, nil
}
