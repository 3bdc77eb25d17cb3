package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"releaseradar/internal/events"
	"releaseradar/internal/llm/client"
	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/retry"
	"releaseradar/internal/utils"
)

var (
	ErrNoReleaseEntries   = errors.New("no release entries found for this week")
	ErrReleaseNoteSent    = errors.New("release note for this week was already sent")
	ErrReleaseNoteMissing = errors.New("release note not found")
	ErrInvalidWeek        = errors.New("invalid week")
)

// Categorize buckets entries by their stored classification, keeping input
// order within each bucket. Unknown classifications land in Other.
func Categorize(entries []models.WeeklyEntry) models.CategorizedReleases {
	out := models.CategorizedReleases{
		Features:     []models.WeeklyEntry{},
		Fixes:        []models.WeeklyEntry{},
		Improvements: []models.WeeklyEntry{},
		Docs:         []models.WeeklyEntry{},
		Other:        []models.WeeklyEntry{},
	}
	for _, e := range entries {
		switch e.Change.Classification {
		case models.ClassFeature:
			out.Features = append(out.Features, e)
		case models.ClassFix:
			out.Fixes = append(out.Fixes, e)
		case models.ClassImprovement:
			out.Improvements = append(out.Improvements, e)
		case models.ClassDocs:
			out.Docs = append(out.Docs, e)
		default:
			out.Other = append(out.Other, e)
		}
	}
	return out
}

// DigestWriter drafts the weekly email.
type DigestWriter interface {
	Write(ctx context.Context, req client.DigestRequest) (client.Digest, error)
}

type ReleaseNotesService interface {
	Generate(ctx context.Context, week string) (*models.ReleaseNote, error)
	Get(ctx context.Context, id string) (*models.ReleaseNote, error)
	GetByWeek(ctx context.Context, week string) (*models.ReleaseNote, error)
	List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error)
	MarkSent(ctx context.Context, id string) (*models.ReleaseNote, error)
}

type releaseNotesService struct {
	changes ChangeService
	entries repositories.ReleaseEntryRepository
	notes   repositories.ReleaseNoteRepository
	writer  DigestWriter
	remote  remoteCaller
	loc     *time.Location
	now     func() time.Time
}

func NewReleaseNotesService(
	changes ChangeService,
	entries repositories.ReleaseEntryRepository,
	notes repositories.ReleaseNoteRepository,
	writer DigestWriter,
	policy retry.Policy,
	callTimeout time.Duration,
	loc *time.Location,
) ReleaseNotesService {
	if loc == nil {
		loc = time.UTC
	}
	return &releaseNotesService{
		changes: changes,
		entries: entries,
		notes:   notes,
		writer:  writer,
		remote:  newRemoteCaller(policy, callTimeout),
		loc:     loc,
		now:     time.Now,
	}
}

// Generate builds and stores the digest for the week containing week
// (YYYY-MM-DD). An empty week means the current one.
func (s *releaseNotesService) Generate(ctx context.Context, week string) (*models.ReleaseNote, error) {
	start, err := s.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	key := utils.WeekKey(start)
	ctx = events.WithRun(ctx, "release-notes-"+key)

	if existing, err := s.notes.FindByWeek(ctx, key); err == nil && existing.SentAt != nil {
		return nil, fmt.Errorf("week %s: %w", key, ErrReleaseNoteSent)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	weekly, err := s.fetchWeek(ctx, start)
	if err != nil {
		return nil, err
	}
	log.Printf("[release-notes] week %s: %d entries", key, len(weekly))
	if len(weekly) == 0 {
		return nil, fmt.Errorf("week %s: %w", key, ErrNoReleaseEntries)
	}

	categorized := Categorize(weekly)
	counts := categorized.Counts()
	events.Emit(ctx, events.ReleaseNotes, events.NewInfo("Categorized weekly changes").
		With("week", key).
		With("total", fmt.Sprint(counts.Total)))

	weekRange := utils.FormatWeekRange(start)
	weekStart, weekEnd, _ := strings.Cut(weekRange, " - ")
	req := client.DigestRequest{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Sections: []client.DigestSection{
			digestSection("Features", categorized.Features),
			digestSection("Fixes", categorized.Fixes),
			digestSection("Improvements", categorized.Improvements),
			digestSection("Documentation", categorized.Docs),
		},
	}
	digest, err := callValue(ctx, s.remote, "write release notes", func(ctx context.Context) (client.Digest, error) {
		return s.writer.Write(ctx, req)
	})
	if err != nil {
		events.Emit(ctx, events.ReleaseNotes, events.NewError("Release notes generation failed").With("error", err.Error()))
		return nil, fmt.Errorf("generate release notes: %w", err)
	}

	note := &models.ReleaseNote{
		WeekStarting: key,
		Counts:       counts,
		Categorized:  categorized,
		Subject:      digest.Subject,
		EmailCopy:    digest.EmailCopy,
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		if errors.Is(err, repositories.ErrAlreadySent) {
			return nil, fmt.Errorf("week %s: %w", key, ErrReleaseNoteSent)
		}
		return nil, fmt.Errorf("save release notes: %w", err)
	}
	events.Emit(ctx, events.ReleaseNotes, events.NewSuccess("Release notes saved").With("week", key))
	return note, nil
}

func (s *releaseNotesService) resolveWeek(week string) (time.Time, error) {
	if strings.TrimSpace(week) == "" {
		return utils.WeekStart(s.now().In(s.loc)), nil
	}
	start, err := utils.ParseWeekKey(strings.TrimSpace(week), s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidWeek, week, err)
	}
	return start, nil
}

// fetchWeek loads the week's approved changes and attaches the doc pages
// recorded for them.
func (s *releaseNotesService) fetchWeek(ctx context.Context, start time.Time) ([]models.WeeklyEntry, error) {
	from, to := utils.WeekRange(start)
	changes, err := s.changes.ListApprovedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var reviewIDs, ticketIDs []string
	for _, c := range changes {
		if c.SourceType == models.SourceReview {
			reviewIDs = append(reviewIDs, c.SourceID)
		} else {
			ticketIDs = append(ticketIDs, c.SourceID)
		}
	}
	recorded, err := s.entries.ListByChanges(ctx, reviewIDs, ticketIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch release entries: %w", err)
	}
	pages := make(map[string][]models.DocPageUpdate)
	for _, e := range recorded {
		switch {
		case e.ReviewChangeID != nil:
			k := string(models.SourceReview) + ":" + *e.ReviewChangeID
			pages[k] = append(pages[k], e.DocPagesUpdated...)
		case e.TicketChangeID != nil:
			k := string(models.SourceTicket) + ":" + *e.TicketChangeID
			pages[k] = append(pages[k], e.DocPagesUpdated...)
		}
	}

	out := make([]models.WeeklyEntry, 0, len(changes))
	for _, c := range changes {
		out = append(out, models.WeeklyEntry{
			Change:   c,
			DocPages: pages[string(c.SourceType)+":"+c.SourceID],
		})
	}
	return out, nil
}

func digestSection(name string, entries []models.WeeklyEntry) client.DigestSection {
	sec := client.DigestSection{Name: name}
	for _, e := range entries {
		sec.Items = append(sec.Items, client.DigestItem{
			Title:    e.Change.Title,
			Summary:  e.Change.Summary,
			DocLinks: e.DocLinks(),
		})
	}
	return sec
}

func (s *releaseNotesService) Get(ctx context.Context, id string) (*models.ReleaseNote, error) {
	note, err := s.notes.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrReleaseNoteMissing
	}
	return note, err
}

func (s *releaseNotesService) GetByWeek(ctx context.Context, week string) (*models.ReleaseNote, error) {
	start, err := s.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	note, err := s.notes.FindByWeek(ctx, utils.WeekKey(start))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrReleaseNoteMissing
	}
	return note, err
}

func (s *releaseNotesService) List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.notes.List(ctx, limit, offset)
}

func (s *releaseNotesService) MarkSent(ctx context.Context, id string) (*models.ReleaseNote, error) {
	err := s.notes.MarkSent(ctx, id, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrReleaseNoteMissing
	case errors.Is(err, repositories.ErrAlreadySent):
		return nil, ErrReleaseNoteSent
	case err != nil:
		return nil, err
	}
	return s.notes.FindByID(ctx, id)
}
