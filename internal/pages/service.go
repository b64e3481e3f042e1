package pages

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidInput indicates a rejected page payload.
var ErrInvalidInput = errors.New("pages: invalid input")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service handles page business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPages(ctx context.Context) ([]Page, error) {
	return s.repo.ListPages(ctx)
}

func (s *Service) GetPage(ctx context.Context, id int64) (*Page, error) {
	return s.repo.GetPage(ctx, id)
}

// PageInput collects editable page fields.
type PageInput struct {
	Slug  string
	Title string
	Body  string
}

func (in *PageInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("pages: title required")
	}
	if !slugPattern.MatchString(in.Slug) {
		return errors.New("pages: slug must be lowercase words separated by hyphens")
	}
	return nil
}

// CreatePage inserts a new draft page owned by the actor.
func (s *Service) CreatePage(ctx context.Context, actorID int64, input PageInput) (int64, error) {
	if err := input.validate(); err != nil {
		return 0, errors.Join(ErrInvalidInput, err)
	}
	return s.repo.CreatePage(ctx, &Page{
		Slug:      input.Slug,
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Status:    StatusDraft,
		CreatedBy: actorID,
	})
}

// UpdatePage rewrites the editable fields.
func (s *Service) UpdatePage(ctx context.Context, id int64, input PageInput) error {
	if err := input.validate(); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return s.repo.UpdatePage(ctx, &Page{
		ID:    id,
		Slug:  input.Slug,
		Title: strings.TrimSpace(input.Title),
		Body:  input.Body,
	})
}

// Publish makes the page publicly visible.
func (s *Service) Publish(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, StatusPublished)
}

// Delete removes the page.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeletePage(ctx, id)
}
