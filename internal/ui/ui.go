package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jdefrancesco/dskSwap/internal/dsklog"
	"github.com/jdefrancesco/dskSwap/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles using Lip Gloss
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2).
			Width(70)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// maxListed caps how many file names the dialog shows.
const maxListed = 8

// ConfirmModel asks the user to type a random code before files are
// overwritten in place.
type ConfirmModel struct {
	pattern     string
	replacement string
	files       []string
	code        string
	input       string
	errMsg      string
	confirmed   bool
	done        bool
}

// NewConfirmModel returns a dialog for overwriting files.
func NewConfirmModel(pattern, replacement string, files []string) ConfirmModel {
	return ConfirmModel{
		pattern:     pattern,
		replacement: replacement,
		files:       files,
		code:        GenConfirmationCode(),
	}
}

// Confirmed reports whether the user typed the right code.
func (m ConfirmModel) Confirmed() bool { return m.confirmed }

// Init is called when the program starts
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "ctrl+c":
		m.done = true
		return m, tea.Quit

	case "enter":
		if m.input == m.code {
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		}
		m.errMsg = "Incorrect code. Try again."
		m.input = ""

	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		// Add character to input if it's alphanumeric and within length
		s := key.String()
		if len(s) == 1 && len(m.input) < len(m.code) && isAlnum(s[0]) {
			m.input += s
		}
	}

	return m, nil
}

// View renders the dialog.
func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dskSwap: Overwrite files in place"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Replace %q with %q in %d file(s):\n", m.pattern, m.replacement, len(m.files)))
	for i, f := range m.files {
		if i == maxListed {
			b.WriteString(fileStyle.Render(fmt.Sprintf("  ... and %d more", len(m.files)-maxListed)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fileStyle.Render("  " + utils.TruncatePath(f, 60)))
		b.WriteString("\n")
	}

	b.WriteString("\nType the confirmation code below to continue:\n\n")
	b.WriteString(codeStyle.Render(m.code))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Code: %s\n", m.input))

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("[enter=confirm, esc=cancel]"))

	return dialogStyle.Render(b.String())
}

// Confirm shows the dialog and blocks until the user confirms or cancels.
func Confirm(pattern, replacement string, files []string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(pattern, replacement, files))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation dialog failed: %w", err)
	}

	m, ok := final.(ConfirmModel)
	confirmed := ok && m.Confirmed()
	dsklog.Dlogger.Infof("Overwrite of %d files confirmed=%t", len(files), confirmed)
	return confirmed, nil
}

func isAlnum(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

// GenConfirmationCode generates a random alphanumeric confirmation code
// user will need to type to confirm overwriting files.
func GenConfirmationCode() string {

	const kAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// #nosec G404 -- used intentionally. Not being used for crypto just UX.
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	length := r.Intn(4) + 5 // Random length between 5 and 8
	code := make([]byte, length)

	for i := range code {
		code[i] = kAlnum[r.Intn(len(kAlnum))]
	}

	return string(code)

}
