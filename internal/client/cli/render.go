package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/view"
)

func flags(n models.Note) string {
	var b strings.Builder
	if n.IsPinned {
		b.WriteString("P")
	} else {
		b.WriteString(" ")
	}
	if n.IsStarred {
		b.WriteString("*")
	} else {
		b.WriteString(" ")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func writePage(w io.Writer, p view.Page, query string) {
	if p.Matched == 0 {
		if query != "" {
			fmt.Fprintf(w, "No notes match %q\n", query)
		} else {
			fmt.Fprintln(w, "No notes yet. Use 'create' to add one.")
		}
		return
	}

	for _, n := range p.Items {
		fmt.Fprintf(w, "%s %6s  Q%-6s %s  (%d likes)\n", flags(n), n.ID, n.QuestionNo, firstLine(n.QuestionText), n.LikeCount)
	}
	if query != "" {
		fmt.Fprintf(w, "%d of %d notes match %q\n", p.Matched, p.Total, query)
	}
	if p.HasMore {
		fmt.Fprintf(w, "Load more (%d remaining)\n", p.Remaining)
	}
}

func writeNote(w io.Writer, n models.Note, liked bool) {
	fmt.Fprintf(w, "Note %s  Q%s %s\n", n.ID, n.QuestionNo, flags(n))
	if n.QuestionText != "" {
		fmt.Fprintf(w, "Question: %s\n", n.QuestionText)
	}
	fmt.Fprintf(w, "Answer:\n%s\n", n.Answer)
	fmt.Fprintf(w, "By %s, %s %s\n", orDash(n.Author), orDash(n.College), n.Year)

	likes := fmt.Sprintf("%d likes", n.LikeCount)
	if liked {
		likes += " (you liked this)"
	}
	fmt.Fprintln(w, likes)
}

// maxSourceWidth bounds how much of an embedded photo is printed.
const maxSourceWidth = 48

func writeProfile(w io.Writer, p models.UserProfile, src string) {
	fmt.Fprintf(w, "Name:    %s\n", p.Name)
	fmt.Fprintf(w, "College: %s\n", p.College)
	if p.Photo != nil {
		if len(src) > maxSourceWidth {
			src = src[:maxSourceWidth] + "…"
		}
		fmt.Fprintf(w, "Photo:   %s (%s, %d bytes)\n", src, p.Photo.MimeType, len(p.Photo.Data))
	}
}

func writeStatus[T any](w io.Writer, e cache.Entry[T]) {
	switch {
	case e.Status == cache.StatusFetching && e.HasValue:
		fmt.Fprintln(w, "(refreshing…)")
	case e.Status == cache.StatusError && e.HasValue:
		fmt.Fprintln(w, "(showing saved data, refresh failed)")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
