package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, full_name, email, phone_number, date_of_birth, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.Email, &p.PhoneNumber, &p.DateOfBirth, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Upsert(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, full_name, email, phone_number, date_of_birth)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			date_of_birth = EXCLUDED.date_of_birth,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		p.ID, p.FullName, p.Email, p.PhoneNumber, p.DateOfBirth,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}
