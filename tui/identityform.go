// Package tui holds the interactive terminal views of the command line.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tonhe/flocheck/internal/identity"
	"github.com/tonhe/flocheck/tui/keys"
	"github.com/tonhe/flocheck/tui/styles"
)

// ErrCancelled is returned when the user leaves the form without saving.
var ErrCancelled = errors.New("cancelled")

const none = "None"

const (
	fieldName = iota
	fieldVersion
	fieldComm
	fieldUser
	fieldAuthProt
	fieldAuthPass
	fieldPrivProt
	fieldPrivPass
	fieldCount
)

var (
	snmpVersions  = []string{identity.Version1, identity.Version2c, identity.Version3}
	authProtocols = append([]string{none}, identity.AuthProtocols...)
	privProtocols = append([]string{none}, identity.PrivProtocols...)
)

// IdentityForm is a bubbletea model that collects one SNMP identity.
type IdentityForm struct {
	fields  []textinput.Model
	focus   int
	version string
	auth    string
	priv    string

	err       string
	result    *identity.Identity
	cancelled bool
	sty       *styles.Styles
}

// NewIdentityForm returns an empty form defaulting to SNMP v2c.
func NewIdentityForm() IdentityForm {
	f := IdentityForm{
		fields:  make([]textinput.Model, fieldCount),
		version: identity.Version2c,
		auth:    none,
		priv:    none,
		sty:     styles.Default,
	}
	placeholders := [fieldCount]string{
		fieldName:     "identity name",
		fieldComm:     "community string",
		fieldUser:     "SNMPv3 username",
		fieldAuthPass: "auth password",
		fieldPrivPass: "priv password",
	}
	for i := range f.fields {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 128
		in.Width = 30
		switch i {
		case fieldComm, fieldAuthPass, fieldPrivPass:
			in.EchoMode = textinput.EchoPassword
		}
		f.fields[i] = in
	}
	f.fields[fieldName].CharLimit = 64
	f.fields[fieldName].Focus()
	return f
}

// RunIdentityForm runs the form on the given terminal streams.
func RunIdentityForm(in io.Reader, out io.Writer) (*identity.Identity, error) {
	final, err := tea.NewProgram(NewIdentityForm(), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, err
	}
	form := final.(IdentityForm)
	if form.cancelled || form.result == nil {
		return nil, ErrCancelled
	}
	return form.result, nil
}

// Identity returns the submitted identity, or nil.
func (f IdentityForm) Identity() *identity.Identity { return f.result }

// Cancelled reports whether the form was abandoned.
func (f IdentityForm) Cancelled() bool { return f.cancelled }

func (f IdentityForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f IdentityForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateActiveInput(msg)
	}

	current := f.currentField()
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Cancel):
		f.cancelled = true
		return f, tea.Quit
	case key.Matches(km, keys.DefaultKeyMap.Submit):
		return f.submit()
	case key.Matches(km, keys.DefaultKeyMap.Next):
		f.focusField(f.focus + 1)
		return f, nil
	case key.Matches(km, keys.DefaultKeyMap.Prev):
		f.focusField(f.focus - 1)
		return f, nil
	case isCycleField(current):
		if key.Matches(km, keys.DefaultKeyMap.Cycle) {
			f.cycle(current, km.String() != "left")
		}
		return f, nil
	}
	return f.updateActiveInput(msg)
}

func (f IdentityForm) View() string {
	var b strings.Builder
	b.WriteString("\n  " + f.sty.Title.Render("New Identity") + "\n\n")
	if f.err != "" {
		b.WriteString("  " + f.sty.Error.Render(f.err) + "\n\n")
	}

	for vi, idx := range f.visibleFields() {
		focused := vi == f.focus
		indicator := "  "
		label := f.sty.FormLabel
		if focused {
			indicator = f.sty.Indicator.Render("> ")
			label = f.sty.FormLabelActive
		}
		b.WriteString("  " + indicator + label.Render(fmt.Sprintf("%-18s", fieldLabel(idx)+":")))

		if isCycleField(idx) {
			val := f.sty.FormValue
			hint := ""
			if focused {
				val = f.sty.FormValueActive
				hint = f.sty.Help.Render("  (space to cycle)")
			}
			b.WriteString(val.Render(f.cycleValue(idx)) + hint + "\n")
			continue
		}
		b.WriteString(f.fields[idx].View() + "\n")
	}

	b.WriteString("\n  " + f.sty.Help.Render(fmt.Sprintf("%s/%s navigate  %s save  %s cancel",
		f.sty.Key.Render("[tab]"),
		f.sty.Key.Render("[shift+tab]"),
		f.sty.Key.Render("[enter]"),
		f.sty.Key.Render("[esc]"),
	)) + "\n")
	return b.String()
}

// visibleFields returns the field indices shown for the selected version.
func (f IdentityForm) visibleFields() []int {
	fields := []int{fieldName, fieldVersion}
	if f.version != identity.Version3 {
		return append(fields, fieldComm)
	}
	fields = append(fields, fieldUser, fieldAuthProt)
	if f.auth != none {
		fields = append(fields, fieldAuthPass)
	}
	fields = append(fields, fieldPrivProt)
	if f.priv != none {
		fields = append(fields, fieldPrivPass)
	}
	return fields
}

func (f IdentityForm) currentField() int {
	visible := f.visibleFields()
	if f.focus < 0 || f.focus >= len(visible) {
		return fieldName
	}
	return visible[f.focus]
}

func (f *IdentityForm) focusField(visIdx int) {
	visible := f.visibleFields()
	visIdx = max(0, min(visIdx, len(visible)-1))
	f.focus = visIdx
	for i := range f.fields {
		f.fields[i].Blur()
	}
	if idx := visible[visIdx]; !isCycleField(idx) {
		f.fields[idx].Focus()
	}
}

func (f *IdentityForm) cycle(idx int, forward bool) {
	switch idx {
	case fieldVersion:
		f.version = next(snmpVersions, f.version, forward)
	case fieldAuthProt:
		f.auth = next(authProtocols, f.auth, forward)
	case fieldPrivProt:
		f.priv = next(privProtocols, f.priv, forward)
	}
}

func (f IdentityForm) cycleValue(idx int) string {
	switch idx {
	case fieldVersion:
		return f.version
	case fieldAuthProt:
		return f.auth
	default:
		return f.priv
	}
}

func (f IdentityForm) updateActiveInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	idx := f.currentField()
	if isCycleField(idx) {
		return f, nil
	}
	var cmd tea.Cmd
	f.fields[idx], cmd = f.fields[idx].Update(msg)
	return f, cmd
}

// submit validates the collected identity and quits on success.
func (f IdentityForm) submit() (tea.Model, tea.Cmd) {
	id := &identity.Identity{
		Name:    strings.TrimSpace(f.fields[fieldName].Value()),
		Version: f.version,
	}
	if f.version != identity.Version3 {
		id.Community = f.fields[fieldComm].Value()
	} else {
		id.Username = strings.TrimSpace(f.fields[fieldUser].Value())
		if f.auth != none {
			id.AuthProto = f.auth
			id.AuthPass = f.fields[fieldAuthPass].Value()
		}
		if f.priv != none {
			id.PrivProto = f.priv
			id.PrivPass = f.fields[fieldPrivPass].Value()
		}
	}

	if err := id.Validate(); err != nil {
		f.err = err.Error()
		return f, nil
	}
	f.err = ""
	f.result = id
	return f, tea.Quit
}

func isCycleField(idx int) bool {
	return idx == fieldVersion || idx == fieldAuthProt || idx == fieldPrivProt
}

func next(options []string, cur string, forward bool) string {
	i := 0
	for j, o := range options {
		if o == cur {
			i = j
			break
		}
	}
	if forward {
		i = (i + 1) % len(options)
	} else {
		i = (i - 1 + len(options)) % len(options)
	}
	return options[i]
}

func fieldLabel(idx int) string {
	switch idx {
	case fieldName:
		return "Name"
	case fieldVersion:
		return "SNMP Version"
	case fieldComm:
		return "Community"
	case fieldUser:
		return "Username"
	case fieldAuthProt:
		return "Auth Protocol"
	case fieldAuthPass:
		return "Auth Password"
	case fieldPrivProt:
		return "Priv Protocol"
	case fieldPrivPass:
		return "Priv Password"
	}
	return "Unknown"
}
