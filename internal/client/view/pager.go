package view

import (
	"sync"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

const (
	DefaultPageSize = 20
)

// Page is one rendering of the list.
type Page struct {
	Items     []models.Note
	Total     int // notes before filtering
	Matched   int // notes after filtering
	HasMore   bool
	Remaining int
}

// Pager remembers how much of the list has been revealed. Changing the
// query resets it to the first page.
type Pager struct {
	mu       sync.Mutex
	step     int
	revealed int
	query    string
}

// NewPager creates a Pager revealing pageSize notes at a time.
// Non-positive sizes fall back to DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{step: pageSize, revealed: pageSize}
}

// SetQuery changes the filter query.
func (p *Pager) SetQuery(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if q != p.query {
		p.query = q
		p.revealed = p.step
	}
}

func (p *Pager) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// More reveals one more page.
func (p *Pager) More() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revealed += p.step
}

// Reset clears the query and goes back to the first page.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = ""
	p.revealed = p.step
}

// Render runs the whole pipeline over notes.
func (p *Pager) Render(notes []models.Note) Page {
	p.mu.Lock()
	query, limit := p.query, p.revealed
	p.mu.Unlock()

	matched := Filter(Sort(notes), query)
	items, more := Paginate(matched, limit)
	return Page{
		Items:     items,
		Total:     len(notes),
		Matched:   len(matched),
		HasMore:   more,
		Remaining: len(matched) - len(items),
	}
}
