package festivals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marquee-cms/marquee/internal/shared"
)

type stubRepo struct {
	festivals map[int64]*Festival
	nextID    int64
}

func newStubRepo(festivals ...*Festival) *stubRepo {
	repo := &stubRepo{festivals: make(map[int64]*Festival), nextID: 100}
	for _, f := range festivals {
		repo.festivals[f.ID] = f
	}
	return repo
}

func (s *stubRepo) ListFestivals(_ context.Context) ([]Festival, error) {
	out := make([]Festival, 0, len(s.festivals))
	for _, f := range s.festivals {
		out = append(out, *f)
	}
	return out, nil
}

func (s *stubRepo) GetFestival(_ context.Context, id int64) (*Festival, error) {
	f, ok := s.festivals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return f, nil
}

func (s *stubRepo) CreateFestival(_ context.Context, f *Festival) (int64, error) {
	s.nextID++
	f.ID = s.nextID
	s.festivals[f.ID] = f
	return f.ID, nil
}

func (s *stubRepo) UpdateFestival(_ context.Context, f *Festival) error {
	existing, ok := s.festivals[f.ID]
	if !ok {
		return shared.ErrNotFound
	}
	f.Status = existing.Status
	f.CreatedBy = existing.CreatedBy
	s.festivals[f.ID] = f
	return nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	f, ok := s.festivals[id]
	if !ok {
		return shared.ErrNotFound
	}
	f.Status = status
	return nil
}

func (s *stubRepo) DeleteFestival(_ context.Context, id int64) error {
	if _, ok := s.festivals[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.festivals, id)
	return nil
}

func validInput() FestivalInput {
	return FestivalInput{
		Name:     "Harbor Lights Film Festival",
		Year:     2026,
		Location: "Portsmouth",
		StartsOn: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateFestivalStartsAsDraft(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	id, err := svc.CreateFestival(context.Background(), 7, validInput())
	require.NoError(t, err)

	f := repo.festivals[id]
	require.Equal(t, StatusDraft, f.Status)
	require.Equal(t, int64(7), f.CreatedBy)
	require.Equal(t, "Harbor Lights Film Festival", f.Name)
}

func TestCreateFestivalValidation(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	cases := []struct {
		name  string
		input func(FestivalInput) FestivalInput
	}{
		{"empty name", func(in FestivalInput) FestivalInput { in.Name = "  "; return in }},
		{"year too small", func(in FestivalInput) FestivalInput { in.Year = 1800; return in }},
		{"year too large", func(in FestivalInput) FestivalInput { in.Year = 2300; return in }},
		{"ends before start", func(in FestivalInput) FestivalInput {
			in.EndsOn = in.StartsOn.AddDate(0, 0, -1)
			return in
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateFestival(context.Background(), 7, tc.input(validInput()))
			require.ErrorIs(t, err, ErrInvalidInput)
			require.Empty(t, repo.festivals)
		})
	}
}

func TestCreateFestivalOpenEndedDates(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	in := validInput()
	in.StartsOn = time.Time{}
	in.EndsOn = time.Time{}
	_, err := svc.CreateFestival(context.Background(), 7, in)
	require.NoError(t, err)
}

func TestUpdateFestival(t *testing.T) {
	repo := newStubRepo(&Festival{ID: 5, Name: "Old Name", Year: 2025, Status: StatusPublished, CreatedBy: 3})
	svc := NewService(repo)

	in := validInput()
	require.NoError(t, svc.UpdateFestival(context.Background(), 5, in))

	f := repo.festivals[5]
	require.Equal(t, in.Name, f.Name)
	// Status and ownership survive an edit.
	require.Equal(t, StatusPublished, f.Status)
	require.Equal(t, int64(3), f.CreatedBy)
}

func TestPublishLifecycle(t *testing.T) {
	repo := newStubRepo(&Festival{ID: 5, Name: "F", Year: 2026, Status: StatusDraft})
	svc := NewService(repo)

	require.NoError(t, svc.Publish(context.Background(), 5))
	require.Equal(t, StatusPublished, repo.festivals[5].Status)

	require.NoError(t, svc.Unpublish(context.Background(), 5))
	require.Equal(t, StatusDraft, repo.festivals[5].Status)
}

func TestDeleteFestival(t *testing.T) {
	repo := newStubRepo(&Festival{ID: 5, Name: "F", Year: 2026})
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), 5))
	require.ErrorIs(t, svc.Delete(context.Background(), 5), shared.ErrNotFound)
}
