// Package ui renders live scan progress in the terminal.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupesweep/dupesweep/internal/progress"
	"github.com/dupesweep/dupesweep/internal/ui/styles"
	"github.com/dupesweep/dupesweep/pkg/utils"
)

// ScanViewModel shows live progress for a running scan. Ctrl+C cancels
// the scan context; the scan flushes partial results and finishes on
// its own.
type ScanViewModel struct {
	spinner    spinner.Model
	updates    <-chan progress.Update
	cancel     context.CancelFunc
	latest     *progress.Update
	totalFiles int
	scanning   bool
	err        error
}

// ScanDoneMsg signals that the scan goroutine has returned
type ScanDoneMsg struct {
	Err error
}

type progressMsg progress.Update

// NewScanViewModel creates a scan view fed by a progress subscription.
// totalFiles sizes the progress bar and may be zero when unknown.
func NewScanViewModel(updates <-chan progress.Update, cancel context.CancelFunc, totalFiles int) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return &ScanViewModel{
		spinner:    s,
		updates:    updates,
		cancel:     cancel,
		totalFiles: totalFiles,
		scanning:   true,
	}
}

// Init initializes the scan view
func (m *ScanViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.cancel()
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		u := progress.Update(msg)
		m.latest = &u
		return m, m.waitForUpdate()

	case ScanDoneMsg:
		m.scanning = false
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🔍 Scanning for Duplicates"))
	b.WriteString("\n\n")

	if !m.scanning {
		if m.err != nil {
			b.WriteString(styles.ErrorStyle.Render("✗ Scan failed: " + m.err.Error()))
		} else if m.latest != nil && m.latest.Phase == progress.PhaseCancelled {
			b.WriteString(styles.DimStyle.Render("Scan cancelled, partial results saved"))
		} else {
			b.WriteString(styles.SuccessStyle.Render("✓ Scan Complete!"))
		}
		b.WriteString("\n")
		return b.String()
	}

	u := m.latest
	elapsed := time.Duration(0)
	if u != nil {
		elapsed = time.Since(u.StartTime).Round(time.Second)
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" " + phaseLabel(u) + " ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", elapsed)))
	b.WriteString("\n\n")

	if u != nil && u.CurrentPath != "" {
		b.WriteString(styles.DimStyle.Render("Current: "))
		b.WriteString(styles.FilePathStyle.Render(truncatePath(u.CurrentPath, 60)))
		b.WriteString("\n\n")
	}

	if u != nil {
		b.WriteString(fmt.Sprintf("  Files hashed: %s  Dirs: %s  Data: %s\n",
			styles.BoldStyle.Render(fmt.Sprintf("%d", u.FilesHashed)),
			styles.BoldStyle.Render(fmt.Sprintf("%d", u.DirsHashed)),
			styles.FileSizeStyle.Render(utils.FormatBytes(u.BytesHashed)),
		))
		if u.Errors > 0 {
			b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("  Skipped: %d\n", u.Errors)))
		}
		if m.totalFiles > 0 {
			b.WriteString("\n  " + styles.ProgressBar(u.FilesHashed, m.totalFiles, 40) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to cancel"))
	b.WriteString("\n")

	return b.String()
}

func (m *ScanViewModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return progressMsg(u)
	}
}

func phaseLabel(u *progress.Update) string {
	if u == nil {
		return "Starting..."
	}
	switch u.Phase {
	case progress.PhaseCollecting:
		return "Collecting files..."
	case progress.PhaseQuickHashing:
		return "Pre-filtering large files..."
	case progress.PhaseHashing, progress.PhaseFullHashing:
		return "Hashing..."
	case progress.PhaseDirHashing:
		return "Hashing directories..."
	case progress.PhaseFlushing:
		return "Saving index..."
	default:
		return "Scanning..."
	}
}

// RunScan drives a scan under the progress view. The scan runs in its
// own goroutine; the view owns the terminal until it finishes or is
// cancelled.
func RunScan(ctx context.Context, reporter *progress.Reporter, totalFiles int, scan func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := reporter.Subscribe()
	defer reporter.Unsubscribe(updates)

	model := NewScanViewModel(updates, cancel, totalFiles)
	prog := tea.NewProgram(model)

	go func() {
		err := scan(ctx)
		prog.Send(ScanDoneMsg{Err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*ScanViewModel); ok {
		return m.err
	}
	return nil
}

// Helper function to truncate paths
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
