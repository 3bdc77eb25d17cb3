package unit_tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"releaseradar/internal/llm/client"
	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/services"
	"releaseradar/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekly(title string, class models.Classification) models.WeeklyEntry {
	return models.WeeklyEntry{Change: models.ChangeRecord{Title: title, Classification: class}}
}

func TestCategorize_EveryEntryInExactlyOneBucket(t *testing.T) {
	in := []models.WeeklyEntry{
		weekly("a", models.ClassFeature),
		weekly("b", models.ClassFix),
		weekly("c", models.ClassFeature),
		weekly("d", models.Classification("chore")),
		weekly("e", models.ClassDocs),
		weekly("f", models.ClassImprovement),
		weekly("g", models.ClassOther),
	}
	out := services.Categorize(in)

	counts := out.Counts()
	assert.Equal(t, len(in), counts.Total)
	assert.Equal(t, 2, counts.Features)
	assert.Equal(t, 1, counts.Fixes)
	assert.Equal(t, 1, counts.Improvements)
	assert.Equal(t, 1, counts.Docs)
	assert.Equal(t, 2, counts.Other)

	assert.Equal(t, "a", out.Features[0].Change.Title)
	assert.Equal(t, "c", out.Features[1].Change.Title)
	assert.Equal(t, "d", out.Other[0].Change.Title)
	assert.Equal(t, "g", out.Other[1].Change.Title)

	assert.Equal(t, out, services.Categorize(in))
}

func TestCategorize_EmptyInputHasEmptyBuckets(t *testing.T) {
	out := services.Categorize(nil)
	assert.NotNil(t, out.Features)
	assert.NotNil(t, out.Other)
	assert.Equal(t, 0, out.Counts().Total)
}

type notesFixture struct {
	reviews *mocks.ReviewChangeRepositoryMock
	tickets *mocks.TicketChangeRepositoryMock
	entries *mocks.ReleaseEntryRepositoryMock
	notes   *mocks.ReleaseNoteRepositoryMock
	writer  *mocks.DigestWriterMock
	saved   *models.ReleaseNote
	window  [2]time.Time
}

func newNotesFixture() *notesFixture {
	f := &notesFixture{
		entries: &mocks.ReleaseEntryRepositoryMock{},
		notes:   &mocks.ReleaseNoteRepositoryMock{},
		writer:  &mocks.DigestWriterMock{},
	}
	f.reviews = &mocks.ReviewChangeRepositoryMock{
		ListApprovedBetweenFunc: func(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
			f.window = [2]time.Time{start, end}
			return nil, nil
		},
	}
	f.tickets = &mocks.TicketChangeRepositoryMock{}
	f.notes.UpsertFunc = func(ctx context.Context, note *models.ReleaseNote) error {
		note.ID = "note-1"
		f.saved = note
		return nil
	}
	return f
}

func (f *notesFixture) service() services.ReleaseNotesService {
	return services.NewReleaseNotesService(
		services.NewChangeService(f.reviews, f.tickets),
		f.entries,
		f.notes,
		f.writer,
		fastPolicy(),
		0,
		time.UTC,
	)
}

func TestReleaseNotes_GenerateStoresWeeklyDigest(t *testing.T) {
	f := newNotesFixture()
	f.reviews.ListApprovedBetweenFunc = func(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
		f.window = [2]time.Time{start, end}
		return []models.ReviewChange{*approvedReview("rev-1", 42)}, nil
	}
	f.tickets.ListApprovedBetweenFunc = func(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
		return []models.TicketChange{*approvedTicket("tk-1", "ENG-1")}, nil
	}
	f.entries.ListByChangesFunc = func(ctx context.Context, reviewIDs, ticketIDs []string) ([]models.ReleaseEntry, error) {
		assert.Equal(t, []string{"rev-1"}, reviewIDs)
		assert.Equal(t, []string{"tk-1"}, ticketIDs)
		return []models.ReleaseEntry{{
			ReviewChangeID:  strPtr("rev-1"),
			DocPagesUpdated: []models.DocPageUpdate{{Path: "app/docs/auth/page.md", URL: "https://docs.test/docs/auth"}},
		}}, nil
	}
	var req client.DigestRequest
	f.writer.WriteFunc = func(ctx context.Context, r client.DigestRequest) (client.Digest, error) {
		req = r
		return client.Digest{Subject: "This week", EmailCopy: "Body"}, nil
	}

	note, err := f.service().Generate(context.Background(), "2025-01-15")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-13", note.WeekStarting)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), f.window[0])
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), f.window[1])
	assert.Equal(t, 2, note.Counts.Total)
	assert.Equal(t, 1, note.Counts.Features)
	assert.Equal(t, 1, note.Counts.Improvements)
	assert.Equal(t, "This week", note.Subject)
	assert.Same(t, note, f.saved)

	assert.Equal(t, "Jan 13, 2025", req.WeekStart)
	assert.Equal(t, "Jan 19, 2025", req.WeekEnd)
	require.Len(t, req.Sections, 4)
	assert.Equal(t, "Features", req.Sections[0].Name)
	require.Len(t, req.Sections[0].Items, 1)
	assert.Equal(t, []string{"https://docs.test/docs/auth"}, req.Sections[0].Items[0].DocLinks)
}

func TestReleaseNotes_GenerateWithoutEntries(t *testing.T) {
	f := newNotesFixture()
	called := false
	f.writer.WriteFunc = func(ctx context.Context, r client.DigestRequest) (client.Digest, error) {
		called = true
		return client.Digest{}, nil
	}

	_, err := f.service().Generate(context.Background(), "2025-01-13")
	assert.True(t, errors.Is(err, services.ErrNoReleaseEntries))
	assert.False(t, called)
	assert.Nil(t, f.saved)
}

func TestReleaseNotes_SentWeekIsNeverRegenerated(t *testing.T) {
	f := newNotesFixture()
	sent := time.Now()
	f.notes.FindByWeekFunc = func(ctx context.Context, week string) (*models.ReleaseNote, error) {
		return &models.ReleaseNote{ID: "note-1", WeekStarting: week, SentAt: &sent}, nil
	}
	f.writer.WriteFunc = func(ctx context.Context, r client.DigestRequest) (client.Digest, error) {
		t.Fatal("digest should not be generated for a sent week")
		return client.Digest{}, nil
	}

	_, err := f.service().Generate(context.Background(), "2025-01-13")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteSent))
	assert.Nil(t, f.saved)
}

func TestReleaseNotes_SentBetweenCheckAndUpsert(t *testing.T) {
	f := newNotesFixture()
	f.tickets.ListApprovedBetweenFunc = func(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
		return []models.TicketChange{*approvedTicket("tk-1", "ENG-1")}, nil
	}
	f.notes.UpsertFunc = func(ctx context.Context, note *models.ReleaseNote) error {
		return repositories.ErrAlreadySent
	}

	_, err := f.service().Generate(context.Background(), "2025-01-13")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteSent))
}

func TestReleaseNotes_GeneratorFailureSurfaces(t *testing.T) {
	f := newNotesFixture()
	f.tickets.ListApprovedBetweenFunc = func(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
		return []models.TicketChange{*approvedTicket("tk-1", "ENG-1")}, nil
	}
	attempts := 0
	f.writer.WriteFunc = func(ctx context.Context, r client.DigestRequest) (client.Digest, error) {
		attempts++
		return client.Digest{}, client.ErrMalformedOutput
	}

	_, err := f.service().Generate(context.Background(), "2025-01-13")
	assert.True(t, errors.Is(err, client.ErrMalformedOutput))
	assert.Equal(t, 3, attempts)
	assert.Nil(t, f.saved)
}

func TestReleaseNotes_InvalidWeek(t *testing.T) {
	_, err := newNotesFixture().service().Generate(context.Background(), "last week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid week")
}

func TestReleaseNotes_ListClampsLimit(t *testing.T) {
	f := newNotesFixture()
	var gotLimit, gotOffset int
	f.notes.ListFunc = func(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}
	svc := f.service()

	_, err := svc.List(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)

	_, _ = svc.List(context.Background(), 500, 10)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 10, gotOffset)

	_, _ = svc.List(context.Background(), 50, 0)
	assert.Equal(t, 50, gotLimit)
}

func TestReleaseNotes_GetAndMarkSentMissing(t *testing.T) {
	f := newNotesFixture()
	f.notes.MarkSentFunc = func(ctx context.Context, id string, at time.Time) error {
		return repositories.ErrNotFound
	}
	svc := f.service()

	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteMissing))
	_, err = svc.GetByWeek(context.Background(), "2025-01-13")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteMissing))
	_, err = svc.MarkSent(context.Background(), "nope")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteMissing))
}

func TestReleaseNotes_MarkSentTwice(t *testing.T) {
	f := newNotesFixture()
	f.notes.MarkSentFunc = func(ctx context.Context, id string, at time.Time) error {
		return repositories.ErrAlreadySent
	}

	_, err := f.service().MarkSent(context.Background(), "note-1")
	assert.True(t, errors.Is(err, services.ErrReleaseNoteSent))
}
