package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marquee-cms/marquee/internal/shared"
)

type stubRepo struct {
	pages  map[int64]*Page
	nextID int64
}

func newStubRepo(pages ...*Page) *stubRepo {
	repo := &stubRepo{pages: make(map[int64]*Page), nextID: 100}
	for _, p := range pages {
		repo.pages[p.ID] = p
	}
	return repo
}

func (s *stubRepo) ListPages(_ context.Context) ([]Page, error) {
	out := make([]Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) GetPage(_ context.Context, id int64) (*Page, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) CreatePage(_ context.Context, p *Page) (int64, error) {
	for _, existing := range s.pages {
		if existing.Slug == p.Slug {
			return 0, ErrSlugTaken
		}
	}
	s.nextID++
	p.ID = s.nextID
	s.pages[p.ID] = p
	return p.ID, nil
}

func (s *stubRepo) UpdatePage(_ context.Context, p *Page) error {
	existing, ok := s.pages[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = existing.Status
	s.pages[p.ID] = p
	return nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	p, ok := s.pages[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *stubRepo) DeletePage(_ context.Context, id int64) error {
	if _, ok := s.pages[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.pages, id)
	return nil
}

func TestCreatePage(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	id, err := svc.CreatePage(context.Background(), 3, PageInput{
		Slug:  "festival-history",
		Title: "Festival History",
		Body:  "Founded in 1998.",
	})
	require.NoError(t, err)

	p := repo.pages[id]
	require.Equal(t, StatusDraft, p.Status)
	require.Equal(t, int64(3), p.CreatedBy)
}

func TestCreatePageSlugValidation(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	for _, slug := range []string{"", "Bad Slug", "UPPER", "double--dash", "-leading", "trailing-"} {
		_, err := svc.CreatePage(context.Background(), 3, PageInput{Slug: slug, Title: "T"})
		require.ErrorIs(t, err, ErrInvalidInput, slug)
	}
}

func TestCreatePageTitleRequired(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, err := svc.CreatePage(context.Background(), 3, PageInput{Slug: "tickets", Title: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePageDuplicateSlug(t *testing.T) {
	repo := newStubRepo(&Page{ID: 1, Slug: "tickets", Title: "Tickets"})
	svc := NewService(repo)

	_, err := svc.CreatePage(context.Background(), 3, PageInput{Slug: "tickets", Title: "Tickets Again"})
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdatePagePreservesStatus(t *testing.T) {
	repo := newStubRepo(&Page{ID: 1, Slug: "tickets", Title: "Tickets", Status: StatusPublished})
	svc := NewService(repo)

	require.NoError(t, svc.UpdatePage(context.Background(), 1, PageInput{Slug: "tickets", Title: "Ticket Info"}))
	require.Equal(t, StatusPublished, repo.pages[1].Status)
	require.Equal(t, "Ticket Info", repo.pages[1].Title)
}

func TestPublishAndDelete(t *testing.T) {
	repo := newStubRepo(&Page{ID: 1, Slug: "tickets", Title: "Tickets", Status: StatusDraft})
	svc := NewService(repo)

	require.NoError(t, svc.Publish(context.Background(), 1))
	require.Equal(t, StatusPublished, repo.pages[1].Status)

	require.NoError(t, svc.Delete(context.Background(), 1))
	require.ErrorIs(t, svc.Delete(context.Background(), 1), shared.ErrNotFound)
}
