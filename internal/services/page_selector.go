package services

import (
	"strings"

	"releaseradar/internal/models"
)

// DefaultDocPage is updated when a change suggests no pages.
const DefaultDocPage = "app/docs/api/page.md"

// PageSelector decides which documentation pages an update run touches.
type PageSelector struct {
	defaultPage string
}

func NewPageSelector(defaultPage string) *PageSelector {
	if strings.TrimSpace(defaultPage) == "" {
		defaultPage = DefaultDocPage
	}
	return &PageSelector{defaultPage: defaultPage}
}

// Select returns a copy of the change's suggested pages, or the default page
// when there are none.
func (s *PageSelector) Select(change *models.ChangeRecord) []string {
	if change == nil || len(change.SuggestedPages) == 0 {
		return []string{s.defaultPage}
	}
	out := make([]string, len(change.SuggestedPages))
	copy(out, change.SuggestedPages)
	return out
}
