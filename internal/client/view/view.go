// Package view turns the cached note list into what a list screen shows:
// ordered, filtered and revealed one page at a time. Everything here is pure
// and never mutates its input.
package view

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// Sort returns a copy of notes ordered pinned first, then starred, then by
// question number compared numerically where the strings hold digits
// ("2" before "10"). Notes that compare equal keep their input order.
func Sort(notes []models.Note) []models.Note {
	out := slices.Clone(notes)

	// A collator is not safe for concurrent use; build one per call.
	col := collate.New(language.Und, collate.Numeric)

	slices.SortStableFunc(out, func(a, b models.Note) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		if a.IsStarred != b.IsStarred {
			if a.IsStarred {
				return -1
			}
			return 1
		}
		return col.CompareString(a.QuestionNo, b.QuestionNo)
	})
	return out
}

// Filter returns the notes whose question number, question text, answer,
// author, college or year contains query, ignoring case. An empty or blank
// query returns notes unchanged; otherwise the query is matched as typed,
// surrounding spaces included.
func Filter(notes []models.Note, query string) []models.Note {
	if strings.TrimSpace(query) == "" {
		return notes
	}

	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if matches(fold, n, needle) {
			out = append(out, n)
		}
	}
	return out
}

func matches(fold cases.Caser, n models.Note, needle string) bool {
	for _, field := range []string{n.QuestionNo, n.QuestionText, n.Answer, n.Author, n.College, n.Year} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// Paginate returns the first limit notes and whether more remain.
func Paginate(notes []models.Note, limit int) ([]models.Note, bool) {
	if limit < 0 {
		limit = 0
	}
	if limit >= len(notes) {
		return notes, false
	}
	return notes[:limit], true
}
