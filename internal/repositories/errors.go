package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus means a conditional update matched no row in the expected state.
	ErrStaleStatus = errors.New("record is not in the expected status")
	ErrAlreadySent = errors.New("release note already sent")
)

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// searchScope matches query case-insensitively against title and both
// summaries. An empty status matches every status.
func searchScope(query, status string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(llm_summary) LIKE ? ESCAPE '\' OR LOWER(COALESCE(edited_summary, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}
}
