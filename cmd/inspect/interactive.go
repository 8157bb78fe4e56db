package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	handletable "github.com/wippyai/handle-table"
	"github.com/wippyai/handle-table/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	err      error
	tbl      *table.Table
	scenario string
	result   string
	ops      []opInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	loaded   bool
}

type opInfo struct {
	name   string
	desc   string
	params []paramInfo
}

type paramInfo struct {
	name        string
	placeholder string
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

func tableOps() []opInfo {
	return []opInfo{
		{
			name: "allocate",
			desc: "take a slot from the free list",
			params: []paramInfo{
				{name: "type", placeholder: "1..255"},
				{name: "object", placeholder: "any text"},
				{name: "visible", placeholder: "true/false"},
			},
		},
		{
			name: "assign",
			desc: "place an object at an exact handle",
			params: []paramInfo{
				{name: "handle", placeholder: "0x40000000"},
				{name: "type", placeholder: "1..255"},
				{name: "object", placeholder: "any text"},
			},
		},
		{
			name: "free",
			desc: "release a handle's slot",
			params: []paramInfo{
				{name: "handle", placeholder: "0x40000000"},
				{name: "type", placeholder: "0 = any"},
			},
		},
		{
			name:   "mark",
			desc:   "soft-destroy an entry",
			params: []paramInfo{{name: "handle", placeholder: "0x40000000"}},
		},
		{
			name:   "unmark",
			desc:   "publish an entry again",
			params: []paramInfo{{name: "handle", placeholder: "0x40000000"}},
		},
		{
			name: "lookup",
			desc: "resolve a handle to its object",
			params: []paramInfo{
				{name: "handle", placeholder: "0x40000000"},
				{name: "type", placeholder: "0 = any"},
			},
		},
		{
			name: "browse",
			desc: "list live entries",
		},
		{
			name: "stats",
			desc: "occupancy and free list endpoints",
		},
	}
}

func newInspectModel(scenarioFile string, opts table.Options) *inspectModel {
	return &inspectModel{
		tbl:      table.New(opts),
		scenario: scenarioFile,
		ops:      tableOps(),
		state:    stateSelectOp,
	}
}

type loadedMsg struct {
	err   error
	trace string
}

type opResultMsg struct {
	err    error
	result string
}

func (m *inspectModel) Init() tea.Cmd {
	if m.scenario == "" {
		m.loaded = true
		return nil
	}
	return m.loadScenario
}

// loadScenario replays the scenario file into the model's table so the
// session starts from its final state.
func (m *inspectModel) loadScenario() tea.Msg {
	sc, err := loadScenario(m.scenario)
	if err != nil {
		return loadedMsg{err: err}
	}

	var trace strings.Builder
	r := newReplayer(m.tbl, &trace)
	if err := r.run(sc); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{trace: trace.String()}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.executeOp
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.executeOp

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loaded = true
		if msg.trace != "" {
			m.result = "Replayed " + m.scenario + ":\n\n" + msg.trace
			m.state = stateShowResult
		}

	case opResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *inspectModel) prepareInputs() {
	op := m.ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.params))
	for i, p := range op.params {
		ti := textinput.New()
		ti.Placeholder = p.placeholder
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *inspectModel) executeOp() tea.Msg {
	op := m.ops[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = strings.TrimSpace(input.Value())
	}

	switch op.name {
	case "allocate":
		typ, err := parseType(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		visible := args[2] != "false" && args[2] != "0"
		h, err := m.tbl.AllocateSafe(args[1], typ, visible)
		if err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{result: "allocated " + h.String()}

	case "assign":
		h, err := parseHandle(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		typ, err := parseType(args[1])
		if err != nil {
			return opResultMsg{err: err}
		}
		if err := m.tbl.AssignSafe(args[2], typ, h); err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{result: "assigned " + h.String()}

	case "free":
		h, err := parseHandle(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		typ, err := parseType(args[1])
		if err != nil {
			return opResultMsg{err: err}
		}
		if err := m.tbl.FreeSafe(typ, h); err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{result: "freed " + h.String()}

	case "mark":
		h, err := parseHandle(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		m.tbl.Lock(table.Exclusive)
		ok := m.tbl.MarkDestroyed(h)
		m.tbl.Unlock(table.Exclusive)
		if !ok {
			return opResultMsg{err: fmt.Errorf("%s did not validate", h)}
		}
		return opResultMsg{result: "marked " + h.String()}

	case "unmark":
		h, err := parseHandle(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		m.tbl.Lock(table.Exclusive)
		m.tbl.UnmarkDestroyed(h)
		m.tbl.Unlock(table.Exclusive)
		return opResultMsg{result: "unmarked " + h.String()}

	case "lookup":
		h, err := parseHandle(args[0])
		if err != nil {
			return opResultMsg{err: err}
		}
		typ, err := parseType(args[1])
		if err != nil {
			return opResultMsg{err: err}
		}
		m.tbl.Lock(table.Shared)
		var obj any
		var ok bool
		if typ == handletable.TypeAny {
			obj, ok = m.tbl.Object(h)
		} else {
			obj, ok = m.tbl.ObjectByType(h, typ)
		}
		m.tbl.Unlock(table.Shared)
		if !ok {
			return opResultMsg{result: "miss: " + h.String() + " does not resolve"}
		}
		return opResultMsg{result: fmt.Sprintf("%s -> %v", h, obj)}

	case "browse":
		return opResultMsg{result: m.browse()}

	case "stats":
		m.tbl.Lock(table.Shared)
		s := m.tbl.Stats()
		m.tbl.Unlock(table.Shared)
		return opResultMsg{result: fmt.Sprintf(
			"size       %d\nused       %d\nfree       %d\nfree head  %s\nfree tail  %s",
			s.Size, s.UsedCount, s.FreeCount, formatIndex(s.FreeHead), formatIndex(s.FreeTail))}
	}

	return opResultMsg{err: fmt.Errorf("unknown op %q", op.name)}
}

// browse lists the first liveEntryLimit occupied slots.
const liveEntryLimit = 50

func (m *inspectModel) browse() string {
	var b strings.Builder
	count := 0
	m.tbl.Lock(table.Shared)
	m.tbl.Each(0, func(index uint32, h handletable.Handle, typ handletable.Type, object any) bool {
		fmt.Fprintf(&b, "%6d  %s  type=%-3d  %v\n", index, h, typ, object)
		count++
		return count < liveEntryLimit
	})
	total := m.tbl.Len()
	m.tbl.Unlock(table.Shared)

	if count == 0 {
		return "no live entries"
	}
	if total > count {
		fmt.Fprintf(&b, "... and %d more\n", total-count)
	}
	return b.String()
}

func parseHandle(s string) (handletable.Handle, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad handle %q", s)
	}
	return handletable.Handle(v), nil
}

func parseType(s string) (handletable.Type, error) {
	if s == "" {
		return handletable.TypeAny, nil
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad type %q", s)
	}
	return handletable.Type(v), nil
}

func formatIndex(i uint32) string {
	if i == table.InvalidIndex {
		return "-"
	}
	return strconv.FormatUint(uint64(i), 10)
}

func (m *inspectModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if !m.loaded {
		return "Replaying scenario..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Handle Table Inspector"))
	if m.scenario != "" {
		b.WriteString(" ")
		b.WriteString(m.scenario)
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, op := range m.ops {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatOp(op)))
			} else {
				b.WriteString(cursor + m.formatOp(op))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.statsLine())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArgs:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Running %s\n\n", opStyle.Render(op.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(m.statsLine())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *inspectModel) formatOp(op opInfo) string {
	var params []string
	for _, p := range op.params {
		params = append(params, p.name)
	}
	line := opStyle.Render(op.name) + "(" + strings.Join(params, ", ") + ")"
	return line + "  " + helpStyle.Render(op.desc)
}

func (m *inspectModel) statsLine() string {
	m.tbl.Lock(table.Shared)
	s := m.tbl.Stats()
	m.tbl.Unlock(table.Shared)
	return handleStyle.Render(fmt.Sprintf("table: size=%d used=%d free=%d", s.Size, s.UsedCount, s.FreeCount))
}

func runInteractive(scenarioFile string, opts table.Options) error {
	p := tea.NewProgram(newInspectModel(scenarioFile, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
