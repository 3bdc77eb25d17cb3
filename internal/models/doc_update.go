package models

// Change kinds recorded for updated pages.
const (
	ChangeKindUpdated = "updated"
	ChangeKindAdded   = "added"
)

// UpdatedPage is a documentation file committed during an update run.
type UpdatedPage struct {
	Path       string `json:"path"`
	ChangeKind string `json:"changeKind"`
	Rationale  string `json:"rationale,omitempty"`
}

// PageFailure records why a page was skipped.
type PageFailure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// BranchOutcome captures what the mutation step left on the documentation repository.
type BranchOutcome struct {
	Branch     string        `json:"branch"`
	BaseBranch string        `json:"baseBranch"`
	Updated    []UpdatedPage `json:"updated"`
	Failed     []PageFailure `json:"-"`
}

// Paths lists updated page paths in processing order.
func (o *BranchOutcome) Paths() []string {
	if o == nil {
		return nil
	}
	paths := make([]string, 0, len(o.Updated))
	for _, p := range o.Updated {
		paths = append(paths, p.Path)
	}
	return paths
}

// ReviewRequest is the pull request opened on the documentation repository.
type ReviewRequest struct {
	URL    string `json:"url"`
	Number int    `json:"number"`
}

// DocUpdateResult is returned to whoever triggered a documentation update.
type DocUpdateResult struct {
	RunID        string   `json:"runId"`
	DocPRURL     string   `json:"docPrUrl"`
	DocPRNumber  int      `json:"docPrNumber"`
	FilesUpdated []string `json:"filesUpdated"`
	BranchName   string   `json:"branchName"`
}
