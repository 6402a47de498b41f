package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Config configures a REPL session.
type Config struct {
	// Env evaluates every expression entered. Assignments persist in it for
	// the whole session.
	Env *lang.Env
	// Scope is passed to every evaluation.
	Scope any
	// Vars lists the variables for :vars and name completion. Nil disables
	// both.
	Vars func(context.Context) (*lang.Object, error)
	// History is the history file. Empty keeps history in memory.
	History string
	Logger  log.Logger
}

// editDoneMsg is sent when the external editor exits successfully.
type editDoneMsg struct{ source string }

// editErrorMsg is sent when the external editor could not be run.
type editErrorMsg struct{ err error }

const prompt = "➜ "

const helpMessage = `
Enter an expression to evaluate it. Assignments (x := 1) persist for the
session. Lines starting with ':' are commands:

  :help         Print this help
  :vars         List variables
  :fmt EXPR     Print EXPR in canonical form
  :edit [EXPR]  Edit EXPR (default: the last expression) in $EDITOR
  :clear        Clear screen
  :quit         Exit

Keys:
  Tab / Shift-Tab     Cycle through completions
  Enter               Accept the selected completion, or evaluate
  Esc                 Cancel completion, or clear the line
  Up / Down           Walk history
  Shift-Up / -Down    Walk history entries of the current kind only
  Ctrl-C / Ctrl-D     Exit on an empty line
`

// inputMode distinguishes expressions from ':' commands.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func modeOf(input string) inputMode {
	if strings.HasPrefix(strings.TrimSpace(input), ":") {
		return modeCtrl
	}

	return modeEval
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	cfg        Config
	input      textinput.Model
	history    *History
	historyIdx int
	vars       []string      // variable names offered for completion
	matches    fuzzy.Matches // current fuzzy match results
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	suggIdx    int           // selected candidate index
	tabActive  bool          // whether user is tab-cycling
	preTabText string        // input text before tab-cycling began
	preTabPos  int           // cursor position before tab-cycling began
	last       string        // last evaluated expression
	width      int           // terminal width for ellipsization
	quitting   bool
}

// Run starts an interactive session and blocks until the user exits or ctx
// is cancelled.
func Run(ctx context.Context, cfg Config) (err error) {
	if cfg.Env == nil {
		return ErrNoEnv
	}

	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded",
			slog.String("path", cfg.History),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("history_len", history.Len()),
	)

	_, err = tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		cfg:        cfg,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}

	m.refreshVars()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil

	case editDoneMsg:
		m.setInput(msg.source)

		return m, nil

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("edit: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint renders the line below the input.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		return hintStyle.Render("Type an expression, or :help")
	}

	if modeOf(input) == modeEval && !m.tabActive {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if sig, params := signatureOf(m.cfg.Env, call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, m.isFunction)
}

func (m model) isFunction(name string) bool {
	_, ok := m.cfg.Env.Function(name)

	return ok
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.historyIdx = m.history.Len()
		m.setInput("")

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			// Lock in the current candidate without executing.
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.walkHistory(-1, false), nil

	case tea.KeyDown:
		return m.walkHistory(1, false), nil

	case tea.KeyShiftUp:
		return m.walkHistory(-1, true), nil

	case tea.KeyShiftDown:
		return m.walkHistory(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabPos)
			m.refreshMatches(false)

			return m, nil
		}

		m.historyIdx = m.history.Len()
		m.setInput("")

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		var cmd tea.Cmd

		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Backspace, delete, cursor movement and the like.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the completion selection by step, starting a tab cycle if
// none is active. A single candidate completes immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabPos = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word in the input with replacement and
// moves the cursor after it.
func (m *model) replaceWord(replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// setInput replaces the whole input line and recomputes completions.
func (m *model) setInput(s string) {
	m.tabActive = false
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	m.refreshMatches(false)
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true and the typed word already equals the only
// candidate, the completion is dismissed.
func (m *model) refreshMatches(autoConfirm bool) {
	if modeOf(m.input.Value()) == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(prompt)
	} else {
		m.input.Prompt = promptStyle.Render(prompt)
	}

	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if autoConfirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

// refreshVars reloads the variable names offered for completion.
func (m *model) refreshVars() {
	if m.cfg.Vars == nil {
		return
	}

	vars, err := m.cfg.Vars(m.ctxFunc())
	if err != nil {
		m.cfg.Logger.DebugContext(m.ctxFunc(), "repl vars", slog.Any("error", err))

		return
	}

	m.vars = vars.Keys()
}

// walkHistory moves through history by step. With sameMode set, entries of
// the other mode are skipped. Walking past the newest entry clears the line.
func (m model) walkHistory(step int, sameMode bool) model {
	mode := modeOf(m.input.Value())

	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != mode {
			continue
		}

		m.historyIdx = i
		m.setInput(entry.Line)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := modeOf(input)

	if err := m.history.Add(input, mode); err != nil {
		m.cfg.Logger.DebugContext(m.ctxFunc(), "repl history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
	m.setInput("")

	if mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(input))

	out, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	m.last = input
	m.refreshVars()

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate runs input in the session environment and returns the display
// form of the result.
func (m model) evaluate(input string) (string, error) {
	ctx := m.ctxFunc()

	v, err := m.cfg.Env.EvaluateString(ctx, input, m.cfg.Scope)

	m.cfg.Logger.TraceContext(ctx, "repl eval",
		slog.String("input", input),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return "", err
	}

	return display(v), nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(prompt) + inputStyle.Render(input))

	m.cfg.Logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case ":q", ":quit", ":exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case ":h", ":help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case ":v", ":vars":
		return m, tea.Sequence(echo, tea.Println(m.varsView()))

	case ":c", ":clear":
		return m, tea.ClearScreen

	case ":f", ":fmt":
		out, err := formatSource(m.ctxFunc(), arg)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))

	case ":e", ":edit":
		source := arg
		if source == "" {
			source = m.last
		}

		edit := newEditCommand(m.ctxFunc(), m.cfg.Logger, source)

		return m, tea.Exec(edit, func(err error) tea.Msg {
			if err != nil {
				return editErrorMsg{err: err}
			}

			return editDoneMsg{source: edit.result}
		})
	}

	return m, tea.Sequence(echo,
		tea.Println(errorStyle.Render("unknown command "+name+" (try :help)")))
}

// varsView lists the session variables, one per line.
func (m model) varsView() string {
	if m.cfg.Vars == nil {
		return hintStyle.Render("  (no variables)")
	}

	vars, err := m.cfg.Vars(m.ctxFunc())
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	if vars.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for i, name := range vars.Keys() {
		if i > 0 {
			b.WriteString("\n")
		}

		v, _ := vars.Get(name)
		b.WriteString("  " + name + " " + hintStyle.Render("= "+display(v)))
	}

	return b.String()
}

// formatSource returns source in canonical form.
func formatSource(ctx context.Context, source string) (string, error) {
	node, err := lang.ParseString(ctx, source)
	if err != nil {
		return "", err
	}

	return lang.Format(node), nil
}

// display renders a value the way it would be written in an expression:
// strings quoted, arrays and objects as JSON.
func display(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return lang.Quote(t)
	case float64:
		return lang.FormatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	}

	var b strings.Builder

	if err := lang.WriteJSON(context.Background(), &b, v, 0); err != nil {
		return lang.ToString(v)
	}

	return strings.TrimSuffix(b.String(), "\n")
}
