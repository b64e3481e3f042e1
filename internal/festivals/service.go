package festivals

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrInvalidInput indicates a rejected festival payload.
var ErrInvalidInput = errors.New("festivals: invalid input")

// Service handles festival business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListFestivals returns all festivals.
func (s *Service) ListFestivals(ctx context.Context) ([]Festival, error) {
	return s.repo.ListFestivals(ctx)
}

// GetFestival returns a single festival.
func (s *Service) GetFestival(ctx context.Context, id int64) (*Festival, error) {
	return s.repo.GetFestival(ctx, id)
}

// FestivalInput collects editable festival fields.
type FestivalInput struct {
	Name        string
	Year        int
	Location    string
	Description string
	StartsOn    time.Time
	EndsOn      time.Time
}

func (in *FestivalInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("festivals: name required")
	}
	if in.Year < 1900 || in.Year > 2200 {
		return errors.New("festivals: year out of range")
	}
	if !in.EndsOn.IsZero() && in.EndsOn.Before(in.StartsOn) {
		return errors.New("festivals: ends before it starts")
	}
	return nil
}

// CreateFestival inserts a new draft festival owned by the actor.
func (s *Service) CreateFestival(ctx context.Context, actorID int64, input FestivalInput) (int64, error) {
	if err := input.validate(); err != nil {
		return 0, errors.Join(ErrInvalidInput, err)
	}
	return s.repo.CreateFestival(ctx, &Festival{
		Name:        strings.TrimSpace(input.Name),
		Year:        input.Year,
		Location:    strings.TrimSpace(input.Location),
		Description: input.Description,
		Status:      StatusDraft,
		StartsOn:    input.StartsOn,
		EndsOn:      input.EndsOn,
		CreatedBy:   actorID,
	})
}

// UpdateFestival rewrites the editable fields of an existing festival.
func (s *Service) UpdateFestival(ctx context.Context, id int64, input FestivalInput) error {
	if err := input.validate(); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return s.repo.UpdateFestival(ctx, &Festival{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Year:        input.Year,
		Location:    strings.TrimSpace(input.Location),
		Description: input.Description,
		StartsOn:    input.StartsOn,
		EndsOn:      input.EndsOn,
	})
}

// Publish makes the festival publicly visible.
func (s *Service) Publish(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, StatusPublished)
}

// Unpublish returns the festival to draft.
func (s *Service) Unpublish(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, StatusDraft)
}

// Delete removes the festival record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteFestival(ctx, id)
}
