package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	pkgerrors "github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/gather"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// feedStats counts query outcomes for one feed.
type feedStats struct {
	queued   int
	inFlight int
	resolved int
	empty    int
	failed   int
}

type stateMsg struct {
	source string
	state  gather.State
}

type doneMsg struct {
	records []feed.SourcedInfo
	err     error
}

type tickMsg time.Time

// gatherModel is the bubbletea model for the live gather display: one
// line per feed with query counters, updated from driver state events.
type gatherModel struct {
	root    string
	order   []string
	stats   map[string]*feedStats
	frame   int
	done    bool
	err     error
	records []feed.SourcedInfo
	cancel  context.CancelFunc
}

func newGatherModel(root string, sources []*feed.Source, cancel context.CancelFunc) gatherModel {
	order := make([]string, len(sources))
	stats := make(map[string]*feedStats, len(sources))
	for i, src := range sources {
		order[i] = src.Name
		stats[src.Name] = &feedStats{}
	}
	return gatherModel{root: root, order: order, stats: stats, cancel: cancel}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m gatherModel) Init() tea.Cmd {
	return tick()
}

func (m gatherModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, nil
		}
	case stateMsg:
		s, ok := m.stats[msg.source]
		if !ok {
			return m, nil
		}
		switch msg.state {
		case gather.StateQueued:
			s.queued++
		case gather.StateInFlight:
			s.queued--
			s.inFlight++
		case gather.StateResolved:
			s.inFlight--
			s.resolved++
		case gather.StateEmpty:
			s.inFlight--
			s.empty++
		case gather.StateFailed:
			s.inFlight--
			s.failed++
		}
		return m, nil
	case doneMsg:
		m.done = true
		m.records = msg.records
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m gatherModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	b.WriteString(styleIconSpinner.Render(frame) + " " + StyleTitle.Render("Gathering "+m.root) + "\n")

	for _, name := range m.order {
		s := m.stats[name]
		line := fmt.Sprintf("  %-20s %3d resolved  %3d empty  %3d failed  %3d in flight",
			name, s.resolved, s.empty, s.failed, s.inFlight+s.queued)
		if s.failed > 0 {
			b.WriteString(StyleWarning.Render(line) + "\n")
		} else {
			b.WriteString(StyleValue.Render(line) + "\n")
		}
	}

	b.WriteString(StyleDim.Render("  q to abort") + "\n")
	return b.String()
}

// gatherInteractive runs a gather with the live display. Key q aborts
// the run via context cancellation.
func (c *CLI) gatherInteractive(ctx context.Context, root feed.Identity, target framework.Framework, sources []*feed.Source, reg feed.ProviderRegistry, gopts gather.Options) ([]feed.SourcedInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newGatherModel(root.String(), sources, cancel), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	gopts.OnState = func(source, id string, state gather.State) {
		p.Send(stateMsg{source: source, state: state})
	}

	go func() {
		records, err := gather.Gather(ctx, root, target, sources, reg, gopts)
		p.Send(doneMsg{records: records, err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(gatherModel); ok && m.done {
		return m.records, m.err
	}
	if runErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeCancelled, runErr, "gather display aborted")
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeCancelled, "gather display aborted")
}
