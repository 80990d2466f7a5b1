// Package setupui is the selection screen: pick the roots, qualities and
// inversions to drill, the quiz mode, then start.
package setupui

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/config"
	"github.com/rapidmidiex/rmxchords/keymap"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/rmxerr"
	"github.com/rapidmidiex/rmxchords/score"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/rapidmidiex/rmxchords/styles"
	"golang.org/x/term"
)

var (
	docStyle = styles.DocStyle
)

const (
	// Chords listed under "weakest".
	weakestLimit = 5
	// Answers a chord needs before it is ranked.
	weakestMinAttempts = 3
)

type (
	// StartQuizMsg asks the root model to open a quiz over Selection.
	StartQuizMsg struct {
		Selection quiz.Selection
		Mode      quiz.Mode
		Choices   int
	}

	// ShowHistoryMsg asks the root model for the answer history.
	ShowHistoryMsg struct{}

	weakestMsg struct {
		stats  []store.KeyStats
		totals store.Totals
	}

	itemKind int

	// item is one toggleable row of the table.
	item struct {
		kind      itemKind
		root      pitch.Class
		quality   chord.Quality
		inversion int
	}

	Model struct {
		items   []item
		on      []bool
		table   table.Model
		help    help.Model
		mode    quiz.Mode
		cfg     config.QuizConfig
		history *store.Store
		weakest []store.KeyStats
		totals  store.Totals
		err     error
	}
)

const (
	rootItem itemKind = iota
	qualityItem
	inversionItem
)

func (k itemKind) String() string {
	switch k {
	case rootItem:
		return "Root"
	case qualityItem:
		return "Quality"
	default:
		return "Position"
	}
}

// New starts from the configured selection. history may be nil.
func New(cfg config.QuizConfig, history *store.Store) Model {
	m := Model{
		help:    help.New(),
		cfg:     cfg,
		history: history,
	}
	for _, r := range pitch.Classes() {
		m.items = append(m.items, item{kind: rootItem, root: r})
	}
	for _, q := range chord.ListQualities() {
		m.items = append(m.items, item{kind: qualityItem, quality: q})
	}
	for k := 0; k < 4; k++ {
		m.items = append(m.items, item{kind: inversionItem, inversion: k})
	}
	m.on = make([]bool, len(m.items))

	if mode, err := quiz.ParseMode(cfg.Mode); err == nil {
		m.mode = mode
	} else {
		m.err = err
	}
	sel, err := cfg.Selection()
	if err != nil {
		m.err = err
	}
	for i, it := range m.items {
		switch it.kind {
		case rootItem:
			m.on[i] = slices.Contains(sel.Roots, it.root)
		case qualityItem:
			m.on[i] = slices.Contains(sel.Qualities, it.quality)
		case inversionItem:
			m.on[i] = slices.Contains(sel.Inversions, it.inversion)
		}
	}

	m.table = makeSelectionTable(m)
	return m
}

// Init loads the weakest chords from the answer history.
func (m Model) Init() tea.Cmd {
	return m.loadWeakest()
}

// Refresh reloads the history summary, ie. after a quiz.
func (m Model) Refresh() tea.Cmd {
	return m.loadWeakest()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width - 10)
	case rmxerr.ErrMsg:
		m.err = msg
	case weakestMsg:
		m.weakest = msg.stats
		m.totals = msg.totals
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.Toggle):
			// Space pages the table down; keep it for toggling.
			m.toggle(m.table.Cursor())
			return m, nil
		case key.Matches(msg, keymap.DefaultMapping.Mode):
			m.mode = m.mode.Next()
			return m, nil
		case key.Matches(msg, keymap.DefaultMapping.Start):
			sel, err := m.Selection()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, startQuiz(sel, m.mode, m.cfg.Choices)
		case key.Matches(msg, keymap.DefaultMapping.History):
			return m, showHistory
		}
	}

	newTable, tCmd := m.table.Update(msg)
	m.table = newTable
	return m, tCmd
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	doc.WriteString(styles.Prompt.Render("Chord voicing drill") + "\n")

	// Selection table
	{
		t := styles.BaseStyle.Render(m.table.View())
		doc.WriteString(t + "\n")
		doc.WriteString(fmt.Sprintf("Mode: %s   Choices: %d   Octave: %d   Keyboard: %s-%s\n",
			styles.BoldStyle.Render(m.mode.String()), m.cfg.Choices, m.cfg.BaseOctave, m.cfg.WindowLow, m.cfg.WindowHigh))
	}

	// Weakest chords
	if len(m.weakest) > 0 {
		doc.WriteString("\n" + styles.BoldStyle.Render("Weakest chords") + "\n")
		for _, ks := range m.weakest {
			doc.WriteString(fmt.Sprintf("  %-40s %d/%d  %s\n",
				ks.Key, ks.Correct, ks.Attempts, score.FormatDuration(ks.AvgElapsed)))
		}
	}
	if m.totals.Answered > 0 {
		doc.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d answers over %d sessions, %d correct",
			m.totals.Answered, m.totals.Sessions, m.totals.Correct)) + "\n")
	}

	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()) + "\n")
	}

	// Help menu
	{
		doc.WriteString(styles.HelpMenu.Render(m.help.View(keymap.SetupHelp{Mapping: keymap.DefaultMapping})))
	}

	if physicalWidth > 0 {
		docStyle = styles.DocStyle.MaxWidth(physicalWidth)
	}
	return docStyle.Render(doc.String())
}

// Selection builds the quiz selection from the ticked rows and validates it.
func (m Model) Selection() (quiz.Selection, error) {
	base, err := m.cfg.Selection()
	if err != nil {
		return quiz.Selection{}, err
	}
	sel := quiz.Selection{BaseOctave: base.BaseOctave, Window: base.Window}
	for i, it := range m.items {
		if !m.on[i] {
			continue
		}
		switch it.kind {
		case rootItem:
			sel.Roots = append(sel.Roots, it.root)
		case qualityItem:
			sel.Qualities = append(sel.Qualities, it.quality)
		case inversionItem:
			sel.Inversions = append(sel.Inversions, it.inversion)
		}
	}
	if err := sel.Validate(); err != nil {
		return quiz.Selection{}, err
	}
	return sel, nil
}

// Mode is the quiz mode that Start will use.
func (m Model) Mode() quiz.Mode {
	return m.mode
}

func (m *Model) toggle(i int) {
	if i < 0 || i >= len(m.items) {
		return
	}
	on := slices.Clone(m.on)
	on[i] = !on[i]
	m.on = on
	m.table.SetRows(m.rows())
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, len(m.items))
	for i, it := range m.items {
		mark := "[ ]"
		if m.on[i] {
			mark = "[x]"
		}
		var label string
		switch it.kind {
		case rootItem:
			label = chord.RootName(it.root)
		case qualityItem:
			label = it.quality.String()
		case inversionItem:
			label = chord.Key{Inversion: it.inversion}.Position()
		}
		rows[i] = table.Row{mark, it.kind.String(), label}
	}
	return rows
}

func makeSelectionTable(m Model) table.Model {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Group", Width: 10},
		{Title: "Value", Width: 28},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.rows()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Commands
func startQuiz(sel quiz.Selection, mode quiz.Mode, choices int) tea.Cmd {
	return func() tea.Msg {
		return StartQuizMsg{Selection: sel, Mode: mode, Choices: choices}
	}
}

func showHistory() tea.Msg {
	return ShowHistoryMsg{}
}

func (m Model) loadWeakest() tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stats, err := history.WeakestChords(ctx, weakestLimit, weakestMinAttempts)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("weakest chords: %w", err)}
		}
		totals, err := history.Totals(ctx)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("history totals: %w", err)}
		}
		return weakestMsg{stats: stats, totals: totals}
	}
}
