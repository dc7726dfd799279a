package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/pipeline"
)

const (
	progressWidth = 30
	recentSlides  = 5
)

var (
	progressFull  = lipgloss.NewStyle().Foreground(colorCyan)
	progressEmpty = lipgloss.NewStyle().Foreground(colorDim)
)

// slideDoneMsg reports one finished slide to the batch model.
type slideDoneMsg struct{ result pipeline.SlideResult }

// batchDoneMsg ends the batch model.
type batchDoneMsg struct {
	result *pipeline.BatchResult
	err    error
}

type tickMsg time.Time

// BatchModel is the bubbletea model showing carousel rendering progress.
type BatchModel struct {
	Total    int
	Done     int
	Cached   int
	Failed   int
	Recent   []pipeline.SlideResult
	Result   *pipeline.BatchResult
	Err      error
	Quitting bool

	frame int
	start time.Time
}

// NewBatchModel creates a progress model for total slides.
func NewBatchModel(total int) BatchModel {
	return BatchModel{Total: total, start: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m BatchModel) Init() tea.Cmd {
	return tick()
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case slideDoneMsg:
		m.Done++
		switch {
		case msg.result.Err != nil:
			m.Failed++
		case msg.result.Cached:
			m.Cached++
		}
		m.Recent = append(m.Recent, msg.result)
		if len(m.Recent) > recentSlides {
			m.Recent = m.Recent[len(m.Recent)-recentSlides:]
		}
	case batchDoneMsg:
		m.Result, m.Err = msg.result, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m BatchModel) View() string {
	if m.Result != nil || m.Quitting {
		return ""
	}
	var b strings.Builder

	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	b.WriteString(styleIconSpinner.Render(frame) + " " + StyleTitle.Render("Rendering carousel") + "\n\n")
	b.WriteString("  " + progressBar(m.Done, m.Total) + " ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%d/%d", m.Done, m.Total)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", time.Since(m.start).Round(100*time.Millisecond))))
	b.WriteString("\n\n")

	for _, r := range m.Recent {
		switch {
		case r.Err != nil:
			b.WriteString("  " + styleIconError.Render(iconError) + " " + r.ID + " " + StyleDim.Render(errors.UserMessage(r.Err)))
		default:
			b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " " + r.ID + " " + cacheLabel(r.Cached))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + StyleDim.Render("q to cancel"))
	return b.String()
}

// progressBar draws a fixed-width bar for done out of total.
func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(progressWidth, done*progressWidth/total)
	}
	return progressFull.Render(strings.Repeat("█", filled)) +
		progressEmpty.Render(strings.Repeat("░", progressWidth-filled))
}
