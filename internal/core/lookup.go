package core

import (
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// LookupByID finds a record by its toast id.
// Returns nil if not found.
func LookupByID(records []model.Record, id model.ID) *model.Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// LookupByToken finds a record by its ULID token.
func LookupByToken(records []model.Record, token string) *model.Record {
	for i := range records {
		if strings.EqualFold(records[i].Token, token) {
			return &records[i]
		}
	}
	return nil
}

// LookupByIndex finds a record by its 1-based position in the slice.
// Returns nil if index is out of bounds.
func LookupByIndex(records []model.Record, index int) *model.Record {
	idx := index - 1
	if idx < 0 || idx >= len(records) {
		return nil
	}
	return &records[idx]
}

// Search finds records whose heading or body contains term, ignoring case.
func Search(records []model.Record, term string) []model.Record {
	if term == "" {
		return records
	}

	term = strings.ToLower(term)
	var result []model.Record

	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Content.Heading), term) ||
			strings.Contains(strings.ToLower(r.Content.Body), term) {
			result = append(result, r)
		}
	}

	return result
}
