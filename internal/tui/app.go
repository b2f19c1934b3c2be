// Package tui provides the interactive Bubble Tea viewer for a projection.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/config"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/source"
	"github.com/theirongolddev/proforma/internal/tui/components"
	"github.com/theirongolddev/proforma/internal/tui/theme"
	"github.com/theirongolddev/proforma/internal/workbook"
)

// ProjectionLoadedMsg is sent when the inputs have been read and projected.
type ProjectionLoadedMsg struct {
	Inputs   engine.Inputs
	Result   *engine.Result
	Err      error
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	path     string
	opts     engine.Options
	inputs   engine.Inputs
	result   *engine.Result
	err      error
	loaded   bool
	loadTime time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a viewer for the inputs at path, or the default inputs
// when path is empty. When no config file exists the setup form runs first.
func NewApp(path string, opts engine.Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		path:    path,
		opts:    opts,
		spinner: sp,
	}
	if !config.Exists() {
		cfg, _ := config.Load()
		a.needSetup = true
		a.setupVals = ValuesFromConfig(cfg)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadProjectionCmd(a.path, a.opts),
		a.spinner.Tick,
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.clampScroll()
		return a, nil

	case ProjectionLoadedMsg:
		a.inputs = msg.Inputs
		a.result = msg.Result
		a.err = msg.Err
		a.loadTime = msg.LoadTime
		a.loaded = true
		a.clampScroll()
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			break
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-3)
		case tea.MouseButtonWheelDown:
			a.scrollBy(3)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			a.loaded = false
			return a, tea.Batch(loadProjectionCmd(a.path, a.opts), a.spinner.Tick)
		case "left", "shift+tab":
			a.switchTab((a.activeTab + len(components.Tabs) - 1) % len(components.Tabs))
		case "right", "tab":
			a.switchTab((a.activeTab + 1) % len(components.Tabs))
		case "j", "down":
			a.scrollBy(1)
		case "k", "up":
			a.scrollBy(-1)
		case "ctrl+d", "pgdown":
			a.scrollBy(a.contentHeight() / 2)
		case "ctrl+u", "pgup":
			a.scrollBy(-a.contentHeight() / 2)
		case "g":
			a.scroll = 0
		case "G":
			a.scroll = a.maxScroll()
		default:
			if len(msg.Runes) == 1 {
				if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
					a.switchTab(idx)
				}
			}
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if cfg, err := a.setupVals.Save(); err == nil {
			theme.SetActive(cfg.Appearance.Theme)
			if opts, err := cfg.Options(); err == nil && opts != a.opts {
				a.opts = opts
				a.needSetup, a.setupForm = false, nil
				a.loaded = false
				return a, tea.Batch(loadProjectionCmd(a.path, a.opts), a.spinner.Tick)
			}
		}
		a.needSetup, a.setupForm = false, nil
		return a, nil
	case huh.StateAborted:
		a.needSetup, a.setupForm = false, nil
		return a, nil
	}
	return a, cmd
}

func (a *App) switchTab(idx int) {
	a.activeTab = idx
	a.scroll = 0
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentHeight is the number of rows between the tab bar and status bar.
func (a App) contentHeight() int {
	return max(a.height-2, minContentHeight)
}

func (a App) maxScroll() int {
	if !a.loaded || a.width == 0 {
		return 0
	}
	lines := strings.Count(a.renderTab(a.contentWidth()), "\n") + 1
	return max(lines-a.contentHeight(), 0)
}

func (a *App) scrollBy(n int) {
	a.scroll += n
	a.clampScroll()
}

func (a *App) clampScroll() {
	a.scroll = max(0, min(a.scroll, a.maxScroll()))
}

// Status is the host-facing outcome line: "Success!" or "ERROR: ...".
func (a App) Status() string {
	if a.err != nil {
		return workbook.ErrorStatus(a.err)
	}
	return workbook.StatusSuccess
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  proforma needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(a.spinner.View() + " " +
			lipgloss.NewStyle().Foreground(t.TextPrimary).Render("Projecting "+a.sourceName()) + "\n" +
			lipgloss.NewStyle().Foreground(t.TextMuted).Render(a.opts.String()))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	bindings := [][2]string{
		{"o f h s i", "switch tab"},
		{"←/→ tab", "previous / next tab"},
		{"j/k ↑/↓", "scroll"},
		{"ctrl+d/u", "half page"},
		{"g/G", "top / bottom"},
		{"r", "reload inputs"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, kb := range bindings {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-12s", kb[0])))
		b.WriteString(descStyle.Render(kb[1]))
		b.WriteString("\n")
	}
	card := components.ContentCard("Keys", strings.TrimRight(b.String(), "\n"), 44)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	w := a.width
	cw := a.contentWidth()
	h := a.contentHeight()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.Status(),
		fmt.Sprintf("%s · %s · %.2fs", a.sourceName(), a.opts.String(), a.loadTime.Seconds()))

	lines := strings.Split(a.renderTab(cw), "\n")
	start := min(a.scroll, len(lines))
	end := min(start+h, len(lines))
	content := padHeight(strings.Join(lines[start:end], "\n"), h)
	content = lipgloss.PlaceHorizontal(w, lipgloss.Center, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) renderTab(cw int) string {
	if a.err != nil && a.activeTab != tabInputs {
		return a.renderError(cw)
	}
	switch a.activeTab {
	case tabOverview:
		return a.renderOverviewTab(cw)
	case tabFunnel:
		return renderSeriesTab(a.result.FunnelTable(), cw)
	case tabHeadcount:
		return renderSeriesTab(a.result.HeadcountTable(), cw)
	case tabStatement:
		return renderSeriesTab(a.result.StatementTable(), cw)
	case tabInputs:
		return a.renderInputsTab(cw)
	}
	return ""
}

const (
	tabOverview = iota
	tabFunnel
	tabHeadcount
	tabStatement
	tabInputs
)

func (a App) sourceName() string {
	if a.path == "" {
		return "defaults"
	}
	return filepath.Base(a.path)
}

// loadProjectionCmd reads the inputs and projects them off the UI goroutine.
func loadProjectionCmd(path string, opts engine.Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		in := engine.DefaultInputs()
		if path != "" {
			var err error
			in, err = source.Read(path)
			if err != nil {
				return ProjectionLoadedMsg{Err: err, LoadTime: time.Since(start)}
			}
		}

		r, err := engine.Project(in, opts)
		return ProjectionLoadedMsg{
			Inputs:   in,
			Result:   r,
			Err:      err,
			LoadTime: time.Since(start),
		}
	}
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

func padHeight(s string, h int) string {
	lines := strings.Count(s, "\n") + 1
	if lines >= h {
		return s
	}
	return s + strings.Repeat("\n", h-lines)
}
