package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const bookingCols = `id, patient_id, doctor_id, appointment_type, appointment_date,
	appointment_time, full_name, email, phone_number, date_of_birth,
	reason_for_consultation, current_medications, known_allergies,
	status, doctor_response, meeting_link, cancellation_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientID, &b.DoctorID, &b.AppointmentType, &b.AppointmentDate,
		&b.AppointmentTime, &b.FullName, &b.Email, &b.PhoneNumber, &b.DateOfBirth,
		&b.ReasonForConsultation, &b.CurrentMedications, &b.KnownAllergies,
		&b.Status, &b.DoctorResponse, &b.MeetingLink, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (id, patient_id, doctor_id, appointment_type, appointment_date,
			appointment_time, full_name, email, phone_number, date_of_birth,
			reason_for_consultation, current_medications, known_allergies, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		b.ID, b.PatientID, b.DoctorID, b.AppointmentType, b.AppointmentDate,
		b.AppointmentTime, b.FullName, b.Email, b.PhoneNumber, b.DateOfBirth,
		b.ReasonForConsultation, b.CurrentMedications, b.KnownAllergies, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	// A create racing another INSERT past the pre-insert slot check lands
	// on the partial unique index instead.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_bookings_slot" {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
}

func (r *repoPG) Transition(ctx context.Context, b *Booking, from Status) (bool, error) {
	// Compare-and-set on the from-status: under two concurrent transitions
	// exactly one UPDATE matches a row.
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $3, doctor_response = $4, meeting_link = $5,
			cancellation_reason = $6, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		b.ID, from, b.Status, b.DoctorResponse, b.MeetingLink, b.CancellationReason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, `patient_id`, patientID, status, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, status, limit, offset)
}

func (r *repoPG) list(ctx context.Context, ownerCol string, ownerID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error) {
	where := ` WHERE ` + ownerCol + ` = $1`
	args := []interface{}{ownerID}
	if status != nil {
		where += ` AND status = $2`
		args = append(args, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingCols + ` FROM bookings` + where +
		fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountByStatusForPatient(ctx context.Context, patientID uuid.UUID) (map[Status]int, error) {
	return r.countByStatus(ctx, `patient_id`, patientID)
}

func (r *repoPG) CountByStatusForDoctor(ctx context.Context, doctorID uuid.UUID) (map[Status]int, error) {
	return r.countByStatus(ctx, `doctor_id`, doctorID)
}

func (r *repoPG) countByStatus(ctx context.Context, ownerCol string, ownerID uuid.UUID) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM bookings WHERE `+ownerCol+` = $1 GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			  AND status NOT IN ('rejected','cancelled'))`,
		doctorID, date, timeOfDay).Scan(&taken)
	return taken, err
}
