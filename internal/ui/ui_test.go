package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateConfirmationCodes tests the GenConfirmationCode function
func TestGenerateConfirmationCodes(t *testing.T) {

	for i := range 100 {
		code := GenConfirmationCode()

		if len(code) < 5 || len(code) > 8 {
			t.Errorf("Generated code length out of bounds: got %d, want between 5 and 8", len(code))
		}
		for _, c := range code {
			if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
				t.Errorf("Generated code contains invalid character: %q", c)
			}
		}

		if i%10 == 0 {
			t.Logf("Sample generated code: %s", code)
		}
	}
}

func typeString(m ConfirmModel, s string) ConfirmModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(ConfirmModel)
	}
	return m
}

func press(m ConfirmModel, k tea.KeyType) (ConfirmModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(ConfirmModel), cmd
}

func TestConfirmWithCorrectCode(t *testing.T) {
	m := NewConfirmModel("foo", "bar", []string{"/data/a.csv"})

	m = typeString(m, m.code)
	m, cmd := press(m, tea.KeyEnter)

	assert.True(t, m.Confirmed())
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}

func TestConfirmWrongCodeResets(t *testing.T) {
	m := NewConfirmModel("foo", "bar", []string{"/data/a.csv"})
	m.code = "ABCDE"

	m = typeString(m, "ABCDX")
	m, cmd := press(m, tea.KeyEnter)

	assert.False(t, m.Confirmed())
	assert.Nil(t, cmd)
	assert.Empty(t, m.input)
	assert.Contains(t, m.View(), "Incorrect code")
}

func TestConfirmInputHandling(t *testing.T) {
	m := NewConfirmModel("foo", "bar", nil)
	m.code = "AB12"

	// Non alphanumeric input is ignored and input is capped at code length.
	m = typeString(m, "A-B!1299")
	assert.Equal(t, "AB12", m.input)

	m, _ = press(m, tea.KeyBackspace)
	assert.Equal(t, "AB1", m.input)
}

func TestConfirmCancel(t *testing.T) {
	m := NewConfirmModel("foo", "bar", []string{"/data/a.csv"})

	m, cmd := press(m, tea.KeyEsc)
	assert.False(t, m.Confirmed())
	require.NotNil(t, cmd)
}

func TestConfirmViewListsFiles(t *testing.T) {
	files := make([]string, 0, 12)
	for range 12 {
		files = append(files, "/data/file.csv")
	}
	m := NewConfirmModel("foo", "bar", files)

	view := m.View()
	assert.Contains(t, view, "12 file(s)")
	assert.Contains(t, view, "and 4 more")
	assert.Equal(t, maxListed, strings.Count(view, "/data/file.csv"))
	assert.Contains(t, view, m.code)
}
