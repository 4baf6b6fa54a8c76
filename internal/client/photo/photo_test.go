package photo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		photo   models.ProfilePhoto
		wantErr bool
	}{
		{"png", models.ProfilePhoto{Data: pngHeader, MimeType: "image/png"}, false},
		{"jpg alias", models.ProfilePhoto{Data: []byte{1}, MimeType: "image/jpg"}, false},
		{"webp with params", models.ProfilePhoto{Data: []byte{1}, MimeType: "image/webp; q=1"}, false},
		{"upper case", models.ProfilePhoto{Data: []byte{1}, MimeType: "IMAGE/GIF"}, false},
		{"svg rejected", models.ProfilePhoto{Data: []byte("<svg/>"), MimeType: "image/svg+xml"}, true},
		{"pdf rejected", models.ProfilePhoto{Data: []byte{1}, MimeType: "application/pdf"}, true},
		{"empty rejected", models.ProfilePhoto{MimeType: "image/png"}, true},
		{"exactly max", models.ProfilePhoto{Data: make([]byte, MaxSize), MimeType: "image/jpeg"}, false},
		{"over max", models.ProfilePhoto{Data: make([]byte, MaxSize+1), MimeType: "image/jpeg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.photo)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFromReader_SniffsType(t *testing.T) {
	p, err := FromReader(bytes.NewReader(pngHeader), "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MimeType)
	assert.Equal(t, pngHeader, p.Data)
}

func TestFromReader_TooLarge(t *testing.T) {
	_, err := FromReader(bytes.NewReader(make([]byte, MaxSize+10)), "image/png")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, common.Describe(err), "5MB")
}

func TestFromReader_RejectsText(t *testing.T) {
	_, err := FromReader(strings.NewReader("hello"), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.PNG")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	p, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MimeType)

	_, err = FromFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrValidation)
}

func TestDataURL(t *testing.T) {
	got := DataURL(models.ProfilePhoto{Data: []byte("hi"), MimeType: "image/gif"})
	assert.Equal(t, "data:image/gif;base64,aGk=", got)
}

func TestManager_ReleaseExactlyOnce(t *testing.T) {
	m := NewManager()
	p := models.ProfilePhoto{Data: pngHeader, MimeType: "image/png"}

	h1 := m.Acquire(p)
	h2 := m.Acquire(p)
	assert.NotEqual(t, h1, h2)
	assert.True(t, IsHandle(h1))
	assert.Equal(t, 2, m.Live())

	got, ok := m.Open(h1)
	require.True(t, ok)
	assert.Equal(t, p, got)

	m.Release(h1)
	m.Release(h1)
	assert.Equal(t, 1, m.Live())
	_, ok = m.Open(h1)
	assert.False(t, ok)

	// Data URLs and empty strings are not handles.
	m.Release(DataURL(p))
	m.Release("")
	assert.Equal(t, 1, m.Live())

	m.Release(h2)
	assert.Zero(t, m.Live())
}

func TestBinding_NoLeaks(t *testing.T) {
	m := NewManager()
	b := m.Bind()
	p := &models.ProfilePhoto{Data: pngHeader, MimeType: "image/png"}

	first := b.Set(p)
	second := b.Set(p)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, b.Current())
	assert.Equal(t, 1, m.Live(), "superseded handle is released")

	assert.Empty(t, b.Set(nil))
	assert.Zero(t, m.Live())

	b.Set(p)
	b.Close()
	b.Close()
	assert.Zero(t, m.Live())
}

func TestBinding_EmbedNeedsNoHandle(t *testing.T) {
	m := NewManager()
	b := m.Bind()
	p := &models.ProfilePhoto{Data: pngHeader, MimeType: "image/png"}

	b.Set(p)
	require.Equal(t, 1, m.Live())

	src := b.Embed(p)
	assert.Equal(t, DataURL(*p), src)
	assert.False(t, IsHandle(src))
	assert.Zero(t, m.Live(), "switching to an embedded photo releases the handle")

	b.Set(p)
	assert.Equal(t, 1, m.Live(), "replacing an embedded photo releases nothing")

	assert.Empty(t, b.Embed(nil))
	assert.Zero(t, m.Live())
	b.Close()
}

func TestManager_Concurrent(t *testing.T) {
	m := NewManager()
	p := models.ProfilePhoto{Data: pngHeader, MimeType: "image/png"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := m.Bind()
			b.Set(&p)
			b.Set(&p)
			b.Close()
		}()
	}
	wg.Wait()

	assert.Zero(t, m.Live())
}
