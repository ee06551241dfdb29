package pdf

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoPDF_Transcript(t *testing.T) {
	g := New("")
	out, err := g.Transcript(Transcript{
		Title: "Conversation conv_1",
		Meta:  []string{"Chatbot: shop", "Visitor: v_1"},
		Entries: []Entry{
			{Author: "visitor", At: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), Body: "price of the phone?"},
			{Author: "assistant", Body: strings.Repeat("long answer ", 200)},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
	assert.Greater(t, len(out), 500)
}

func TestGoPDF_EmptyTranscript(t *testing.T) {
	out, err := New("").Transcript(Transcript{Title: "empty"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestGoPDF_MissingFont(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.ttf")).Transcript(Transcript{Title: "x"})
	assert.Error(t, err)
}
