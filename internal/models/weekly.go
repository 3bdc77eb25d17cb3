package models

// WeeklyEntry is one approved change considered for a weekly release note.
type WeeklyEntry struct {
	Change   ChangeRecord    `json:"change"`
	DocPages []DocPageUpdate `json:"docPages,omitempty"`
}

// DocLinks returns the public URLs of the pages updated for this entry.
func (e WeeklyEntry) DocLinks() []string {
	links := make([]string, 0, len(e.DocPages))
	for _, p := range e.DocPages {
		if p.URL != "" {
			links = append(links, p.URL)
		}
	}
	return links
}

// CategorizedReleases buckets weekly entries by classification.
type CategorizedReleases struct {
	Features     []WeeklyEntry `json:"features"`
	Fixes        []WeeklyEntry `json:"fixes"`
	Improvements []WeeklyEntry `json:"improvements"`
	Docs         []WeeklyEntry `json:"docs"`
	Other        []WeeklyEntry `json:"other"`
}

// Counts summarizes the bucket sizes.
func (c CategorizedReleases) Counts() ReleaseNoteCounts {
	counts := ReleaseNoteCounts{
		Features:     len(c.Features),
		Fixes:        len(c.Fixes),
		Improvements: len(c.Improvements),
		Docs:         len(c.Docs),
		Other:        len(c.Other),
	}
	counts.Total = counts.Features + counts.Fixes + counts.Improvements + counts.Docs + counts.Other
	return counts
}
