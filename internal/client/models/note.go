// Package models defines the entities the client reads from and writes to
// the remote notes service. They are read replicas: the service owns them.
package models

import (
	"strconv"
	"strings"
)

// NoteID identifies a note. It is assigned by the service and never changes.
type NoteID uint64

func (id NoteID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseNoteID parses the decimal form produced by NoteID.String.
func ParseNoteID(s string) (NoteID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return NoteID(v), nil
}

// Note is a shared question/answer record.
type Note struct {
	ID           NoteID `json:"id,string"`
	Author       string `json:"author"`
	College      string `json:"college"`
	Year         string `json:"year"`
	QuestionNo   string `json:"questionNo"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`
	LikeCount    uint64 `json:"likeCount,string"`
	IsStarred    bool   `json:"isStarred"`
	IsPinned     bool   `json:"isPinned"`
	Owner        string `json:"owner"`
}

// NoteFields are the writable attributes of a note, as sent on create and update.
type NoteFields struct {
	Author       string `json:"author"`
	Year         string `json:"year"`
	College      string `json:"college"`
	QuestionNo   string `json:"questionNo"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`
	IsStarred    bool   `json:"isStarred"`
	IsPinned     bool   `json:"isPinned"`
}

// Fields returns the writable part of n.
func (n Note) Fields() NoteFields {
	return NoteFields{
		Author:       n.Author,
		Year:         n.Year,
		College:      n.College,
		QuestionNo:   n.QuestionNo,
		QuestionText: n.QuestionText,
		Answer:       n.Answer,
		IsStarred:    n.IsStarred,
		IsPinned:     n.IsPinned,
	}
}

// Trimmed returns f with surrounding whitespace removed from its text fields.
func (f NoteFields) Trimmed() NoteFields {
	f.Author = strings.TrimSpace(f.Author)
	f.Year = strings.TrimSpace(f.Year)
	f.College = strings.TrimSpace(f.College)
	f.QuestionNo = strings.TrimSpace(f.QuestionNo)
	f.QuestionText = strings.TrimSpace(f.QuestionText)
	f.Answer = strings.TrimSpace(f.Answer)
	return f
}

// NoteLiker attributes a like to a user. Produced by the service only.
type NoteLiker struct {
	Identity string `json:"principal"`
	Name     string `json:"name"`
	College  string `json:"college"`
}
