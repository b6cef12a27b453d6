// Command queue runs a small demonstration pipeline (one selector-resolution
// step per capability tier, each run through the executor) and renders its
// progress with a bubbletea TUI, the way codeNERD's chat TUI renders
// long-running shard activity with bubbles/spinner and lipgloss. The
// original queue tool's persistent job-queue semantics are out of scope
// per spec.md §1 (no persistent server process); this wrapper exercises
// the executor and telemetry against one foreground run.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"llmpipe/appconfig"
	"llmpipe/cache"
	"llmpipe/pipeline"
	"llmpipe/selector"
)

var (
	tierStyle = lipgloss.NewStyle().Bold(true)
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tierResult struct {
	tier string
	err  error
}

type model struct {
	spinner  spinner.Model
	tiers    []string
	results  []tierResult
	progress int
	done     bool
	resultCh chan tierResult
}

type tierDoneMsg tierResult
type allDoneMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForResult(m.resultCh))
}

func waitForResult(ch chan tierResult) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return allDoneMsg{}
		}
		return tierDoneMsg(r)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tierDoneMsg:
		m.results = append(m.results, tierResult(msg))
		m.progress++
		return m, waitForResult(m.resultCh)
	case allDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	s := tierStyle.Render(fmt.Sprintf("resolving %d capability tiers\n\n", len(m.tiers)))
	for _, r := range m.results {
		if r.err != nil {
			s += failStyle.Render(fmt.Sprintf("  x %s: %v\n", r.tier, r.err))
		} else {
			s += doneStyle.Render(fmt.Sprintf("  v %s\n", r.tier))
		}
	}
	if !m.done {
		s += fmt.Sprintf("  %s resolving...\n", m.spinner.View())
	}
	return s
}

// runTiers resolves each capability tier through the pipeline executor,
// one Func step and one Executor.Run per tier, streaming results to ch as
// they complete.
func runTiers(ctx context.Context, tiers []string, tierOf map[string]selector.Capability, ch chan<- tierResult) {
	defer close(ch)

	state := pipeline.NewState()
	exec := pipeline.NewExecutor(nil)

	for _, name := range tiers {
		tier := tierOf[name]
		step := &pipeline.Func{
			FuncName: name,
			Fn: func(ctx context.Context, s *pipeline.PipelineState) error {
				_, err := selector.Resolve(tier)
				return err
			},
		}
		_, err := exec.Run(ctx, step, state)
		ch <- tierResult{tier: name, err: err}
		time.Sleep(120 * time.Millisecond) // pacing so the TUI is legible, not a rate limit
	}
}

// watchCatalogOnce exercises cache.WatchCatalog for one event or until ctx
// is done, printing a notice if the catalog changes during the run. It is
// best-effort: a watch-setup failure is silently ignored,
// since catalog-change notification is a convenience, not core to queue's
// job.
func watchCatalogOnce(ctx context.Context) {
	cfg, err := appconfig.Load(os.Getenv("LLMPIPE_CONFIG"))
	if err != nil {
		return
	}
	catalogPath, err := cfg.CatalogPathOrDefault()
	if err != nil {
		return
	}
	store, err := cache.New(cfg.ArtifactDirOrDefault(), catalogPath)
	if err != nil {
		return
	}
	events, stop, err := cache.WatchCatalog(store)
	if err != nil {
		return
	}
	defer stop()

	select {
	case <-events:
		fmt.Fprintln(os.Stderr, "catalog changed during run")
	case <-ctx.Done():
	}
}

func main() {
	if os.Getenv("LLMPIPE_QUEUE_WATCH_CATALOG") == "1" {
		watchCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		go watchCatalogOnce(watchCtx)
	}

	tierOf := map[string]selector.Capability{
		"fast-cheap": selector.FastCheap,
		"fast":       selector.Fast,
		"normal":     selector.Normal,
		"smart":      selector.Smart,
	}
	tiers := []string{"fast-cheap", "fast", "normal", "smart"}

	ch := make(chan tierResult)
	go runTiers(context.Background(), tiers, tierOf, ch)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{spinner: sp, tiers: tiers, resultCh: ch}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
