package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartagri/portal/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the portal tables when they do not exist yet. The
// statements are idempotent so startup can run this unconditionally.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
    CREATE TABLE IF NOT EXISTS users (
      id            TEXT PRIMARY KEY,
      name          TEXT NOT NULL,
      email         TEXT NOT NULL UNIQUE,
      password_hash TEXT NOT NULL,
      role          TEXT NOT NULL,
      created_at    TIMESTAMPTZ NOT NULL,
      updated_at    TIMESTAMPTZ NOT NULL
    );
    CREATE TABLE IF NOT EXISTS power_requests (
      id             TEXT PRIMARY KEY,
      farmer_id      TEXT NOT NULL REFERENCES users(id),
      farmer_name    TEXT NOT NULL,
      area           TEXT NOT NULL,
      power_required DOUBLE PRECISION NOT NULL,
      purpose        TEXT NOT NULL,
      status         TEXT NOT NULL,
      created_at     TIMESTAMPTZ NOT NULL,
      updated_at     TIMESTAMPTZ NOT NULL
    );
    CREATE INDEX IF NOT EXISTS power_requests_farmer_idx ON power_requests (farmer_id, created_at DESC);
  `)
	return err
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
    INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
    SELECT id, name, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE email = $1
  `, email)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
    SELECT id, name, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE id = $1
  `, userID)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) CreateRequest(ctx context.Context, request model.PowerRequest) error {
	_, err := s.pool.Exec(ctx, `
    INSERT INTO power_requests (id, farmer_id, farmer_name, area, power_required, purpose, status, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
  `, request.ID, request.FarmerID, request.FarmerName, request.Area, request.PowerRequired, request.Purpose, request.Status, request.CreatedAt, request.UpdatedAt)
	return err
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (model.PowerRequest, error) {
	row := s.pool.QueryRow(ctx, `
    SELECT id, farmer_id, farmer_name, area, power_required, purpose, status, created_at, updated_at
    FROM power_requests
    WHERE id = $1
  `, requestID)
	return scanRequest(row)
}

func (s *Store) ListRequestsByFarmer(ctx context.Context, farmerID string) ([]model.PowerRequest, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, farmer_id, farmer_name, area, power_required, purpose, status, created_at, updated_at
    FROM power_requests
    WHERE farmer_id = $1
    ORDER BY created_at DESC
  `, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListRequests(ctx context.Context) ([]model.PowerRequest, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, farmer_id, farmer_name, area, power_required, purpose, status, created_at, updated_at
    FROM power_requests
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) UpdateRequestStatus(ctx context.Context, requestID, status string, updatedAt time.Time) (model.PowerRequest, error) {
	row := s.pool.QueryRow(ctx, `
    UPDATE power_requests
    SET status = $1, updated_at = $2
    WHERE id = $3
    RETURNING id, farmer_id, farmer_name, area, power_required, purpose, status, created_at, updated_at
  `, status, updatedAt, requestID)
	return scanRequest(row)
}

func (s *Store) DeleteRequest(ctx context.Context, requestID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM power_requests WHERE id = $1`, requestID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanRequest(row pgx.Row) (model.PowerRequest, error) {
	var request model.PowerRequest
	err := row.Scan(
		&request.ID,
		&request.FarmerID,
		&request.FarmerName,
		&request.Area,
		&request.PowerRequired,
		&request.Purpose,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	return request, err
}

func collectRequests(rows pgx.Rows) ([]model.PowerRequest, error) {
	requests := []model.PowerRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
