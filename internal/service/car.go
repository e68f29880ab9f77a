package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/carstash/carstash-go/internal/model"
	"github.com/carstash/carstash-go/internal/repository"
	"github.com/carstash/carstash-go/internal/storage"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrTagsRequired        = errors.New("tags field is required")
	ErrTooManyImages       = errors.New("too many image files")
	ErrCarNotFound         = errors.New("car not found")
)

// UploadedFile is one image file received with a create or update call.
type UploadedFile struct {
	Name string
	Data io.Reader
	Size int64
}

// CarService handles car listing business logic. Every operation takes
// the authenticated caller's user ID and never touches records owned
// by anyone else.
type CarService struct {
	repo      *repository.CarRepository
	store     storage.ObjectStore
	maxImages int
}

// NewCarService creates a new CarService. maxImages caps the number of
// files accepted per create or update call.
func NewCarService(repo *repository.CarRepository, store storage.ObjectStore, maxImages int) *CarService {
	return &CarService{
		repo:      repo,
		store:     store,
		maxImages: maxImages,
	}
}

// Create builds a new car listing owned by the caller. Uploaded files
// are stored first and their URLs recorded on the listing. Files
// already uploaded are not removed if the insert fails afterwards.
func (s *CarService) Create(ctx context.Context, ownerID int64, req model.CreateCarRequest, files []UploadedFile) (*model.Car, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if req.Tags == nil {
		return nil, ErrTagsRequired
	}

	images, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	car := &model.Car{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Images:      images,
	}

	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}

	return car, nil
}

// List returns every car owned by the caller, in store-native order.
func (s *CarService) List(ctx context.Context, ownerID int64) ([]model.Car, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Search returns the caller's cars whose title, description, or any
// tag contains keyword, case-insensitively. An empty keyword matches
// everything, so search without a keyword degenerates to List.
func (s *CarService) Search(ctx context.Context, ownerID int64, keyword string) ([]model.Car, error) {
	cars, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	var matched []model.Car
	for _, car := range cars {
		if matchesKeyword(&car, needle) {
			matched = append(matched, car)
		}
	}

	return matched, nil
}

// Detail fetches one of the caller's cars by id. A car owned by a
// different caller yields the same ErrCarNotFound as a missing one.
func (s *CarService) Detail(ctx context.Context, ownerID, id int64) (*model.Car, error) {
	car, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return car, nil
}

// Update replaces the provided fields on one of the caller's cars.
// Omitted (nil) fields keep their stored values; the image list is
// replaced only when new files were uploaded. Ownership never changes.
func (s *CarService) Update(ctx context.Context, ownerID, id int64, req model.UpdateCarRequest, files []UploadedFile) (*model.Car, error) {
	car, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		car.Title = *req.Title
	}
	if req.Description != nil {
		car.Description = *req.Description
	}
	if req.Tags != nil {
		car.Tags = req.Tags
	}

	if len(files) > 0 {
		images, err := s.uploadAll(ctx, files)
		if err != nil {
			return nil, err
		}
		car.Images = images
	}

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, err
	}

	return car, nil
}

// Delete removes one of the caller's cars. Deleting an id that does
// not exist, or that belongs to someone else, still reports success;
// a retried delete is never an error.
func (s *CarService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *CarService) uploadAll(ctx context.Context, files []UploadedFile) ([]string, error) {
	if len(files) > s.maxImages {
		return nil, ErrTooManyImages
	}

	images := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.store.Upload(ctx, f.Name, f.Data, f.Size)
		if err != nil {
			return nil, fmt.Errorf("storing image %q: %w", f.Name, err)
		}
		images = append(images, url)
	}

	return images, nil
}

func matchesKeyword(car *model.Car, needle string) bool {
	if strings.Contains(strings.ToLower(car.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(car.Description), needle) {
		return true
	}
	for _, tag := range car.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
