package bookmark

import (
	"time"

	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

const (
	fieldTitle       = "title"
	fieldURL         = "url"
	fieldCategory    = "category"
	fieldDescription = "description"
	fieldCreatedAt   = "created_at"
	fieldPinned      = "pinned"
)

func buildHashFields(b *dombm.Bookmark) map[string]string {
	pinned := "0"
	if b.Pinned() {
		pinned = "1"
	}
	return map[string]string{
		fieldTitle:       b.Title(),
		fieldURL:         b.URL(),
		fieldCategory:    b.Category(),
		fieldDescription: b.Description(),
		fieldCreatedAt:   b.CreatedAt().UTC().Format(time.RFC3339Nano),
		fieldPinned:      pinned,
	}
}

func parseHashFields(id string, m map[string]string) dombm.Bookmark {
	createdAt, err := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	if err != nil {
		createdAt = time.Time{}
	}
	return dombm.Reconstruct(
		id,
		m[fieldTitle],
		m[fieldURL],
		m[fieldCategory],
		m[fieldDescription],
		createdAt,
		m[fieldPinned] == "1",
	)
}
