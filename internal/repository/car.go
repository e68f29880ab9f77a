package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carstash/carstash-go/internal/model"
)

var ErrCarNotFound = errors.New("car not found")

// CarRepository handles car listing persistence. Every query is
// predicated on owner_id; there is no unscoped access path.
type CarRepository struct {
	db *sql.DB
}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

const carColumns = `id, owner_id, title, description, tags, images, created_at, updated_at`

// Create inserts a new car and sets the generated ID on the car struct.
// OwnerID must already be stamped from the authenticated caller.
func (r *CarRepository) Create(ctx context.Context, car *model.Car) error {
	tags, images, err := encodeLists(car)
	if err != nil {
		return err
	}

	query := `INSERT INTO cars (owner_id, title, description, tags, images) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, car.OwnerID, car.Title, car.Description, tags, images)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	car.ID = id
	return nil
}

// GetByID retrieves a car matching both id and owner. An existing car
// owned by a different caller is indistinguishable from a missing one.
func (r *CarRepository) GetByID(ctx context.Context, ownerID, id int64) (*model.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = ? AND owner_id = ?`

	car, err := scanCar(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	return car, nil
}

// ListByOwner retrieves every car owned by the given caller.
func (r *CarRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE owner_id = ?`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []model.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *car)
	}

	return cars, rows.Err()
}

// Update replaces the mutable columns of a car scoped by owner. The
// owner_id column is never written; ownership cannot be reassigned.
func (r *CarRepository) Update(ctx context.Context, car *model.Car) error {
	tags, images, err := encodeLists(car)
	if err != nil {
		return err
	}

	query := `UPDATE cars SET title = ?, description = ?, tags = ?, images = ? WHERE id = ? AND owner_id = ?`

	_, err = r.db.ExecContext(ctx, query, car.Title, car.Description, tags, images, car.ID, car.OwnerID)
	return err
}

// Delete removes the car matching both id and owner. Deleting a car
// that does not exist (or is not the caller's) is not an error.
func (r *CarRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query := `DELETE FROM cars WHERE id = ? AND owner_id = ?`

	_, err := r.db.ExecContext(ctx, query, id, ownerID)
	return err
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCar(s scanner) (*model.Car, error) {
	car := &model.Car{}
	var tags, images []byte

	err := s.Scan(
		&car.ID, &car.OwnerID, &car.Title, &car.Description,
		&tags, &images, &car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &car.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags column: %w", err)
	}
	if err := json.Unmarshal(images, &car.Images); err != nil {
		return nil, fmt.Errorf("decoding images column: %w", err)
	}

	return car, nil
}

// encodeLists marshals the tag and image lists for their JSON columns.
// Nil slices are stored as empty arrays so reads never produce null.
func encodeLists(car *model.Car) ([]byte, []byte, error) {
	if car.Tags == nil {
		car.Tags = []string{}
	}
	if car.Images == nil {
		car.Images = []string{}
	}

	tags, err := json.Marshal(car.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tags column: %w", err)
	}
	images, err := json.Marshal(car.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding images column: %w", err)
	}

	return tags, images, nil
}
