package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mandi/internal/domain"
)

// FarmRepository

func (db *DB) CreateFarm(ctx context.Context, farm domain.Farm) (string, error) {
	id := uuid.New().String()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO farms (id, name, owner_id, address)
		VALUES ($1, $2, $3, $4)
	`, id, farm.Name, farm.OwnerID, farm.Address)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (db *DB) GetFarm(ctx context.Context, farmID string) (domain.Farm, error) {
	var farm domain.Farm
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, owner_id, address, certification_score, created_at, updated_at
		FROM farms WHERE id = $1
	`, farmID).Scan(&farm.ID, &farm.Name, &farm.OwnerID, &farm.Address,
		&farm.CertificationScore, &farm.CreatedAt, &farm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return farm, ErrNotFound
	}
	return farm, err
}

func (db *DB) ListFarmsRanked(ctx context.Context) ([]domain.Farm, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, owner_id, address, certification_score, created_at, updated_at
		FROM farms
		ORDER BY certification_score DESC, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farms []domain.Farm
	for rows.Next() {
		var farm domain.Farm
		if err := rows.Scan(&farm.ID, &farm.Name, &farm.OwnerID, &farm.Address,
			&farm.CertificationScore, &farm.CreatedAt, &farm.UpdatedAt); err != nil {
			return nil, err
		}
		farms = append(farms, farm)
	}
	return farms, rows.Err()
}
