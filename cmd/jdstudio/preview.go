package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/reveal"
)

// revealTickMsg carries the prefix revealed so far.
type revealTickMsg struct {
	gen    int
	prefix string
}

// revealDoneMsg signals that the whole text has been revealed.
type revealDoneMsg struct {
	gen int
}

// revealErrMsg conveys a failure to start a reveal.
type revealErrMsg struct {
	err error
}

// revealController drives a Revealer from the terminal UI. The UI goroutine only posts to the
// loop; cancel is only touched on the loop.
type revealController struct {
	loop     *reveal.Loop
	revealer *reveal.Revealer
	cancel   reveal.CancelFunc
	send     func(tea.Msg)
}

func newRevealController(loop *reveal.Loop, send func(tea.Msg)) *revealController {
	return &revealController{loop: loop, revealer: reveal.New(loop), send: send}
}

// start begins a reveal tagged gen, replacing any reveal in progress.
func (c *revealController) start(gen int, text string, interval time.Duration) {
	c.loop.Post(func() {
		cancel, err := c.revealer.Start(text, interval,
			func(prefix string) { c.send(revealTickMsg{gen: gen, prefix: prefix}) },
			func() { c.send(revealDoneMsg{gen: gen}) },
		)
		if err != nil {
			c.send(revealErrMsg{err: err})
			return
		}
		c.cancel = cancel
	})
}

// stop cancels the reveal in progress, if any.
func (c *revealController) stop() {
	c.loop.Post(func() {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	})
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	bodyStyle    = lipgloss.NewStyle()
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// previewModel is the terminal typing preview. While typing it shows the growing prefix; once
// complete it shows the formatted blocks.
type previewModel struct {
	ctl      *revealController
	raw      string
	role     string
	text     string
	total    int
	interval time.Duration

	gen       int
	prefix    string
	done      bool
	cancelled bool
	blocks    []jdtext.Block
	width     int
	err       error
}

func newPreviewModel(ctl *revealController, raw, role string, interval time.Duration) previewModel {
	text := jdtext.RevealText(raw, role)
	return previewModel{
		ctl:      ctl,
		raw:      raw,
		role:     role,
		text:     text,
		total:    utf8.RuneCountInString(text),
		interval: interval,
		gen:      1,
	}
}

func (m previewModel) Init() tea.Cmd {
	m.ctl.start(m.gen, m.text, m.interval)
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case revealTickMsg:
		if msg.gen == m.gen {
			m.prefix = msg.prefix
		}
		return m, nil
	case revealDoneMsg:
		if msg.gen == m.gen {
			m.done = true
			m.prefix = m.text
			m.blocks = jdtext.Format(m.raw, m.role)
		}
		return m, nil
	case revealErrMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.ctl.stop()
			m.cancelled = !m.done
			return m, tea.Quit
		case "r":
			m.gen++
			m.prefix = ""
			m.done = false
			m.blocks = nil
			m.ctl.start(m.gen, m.text, m.interval)
			return m, nil
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var sb strings.Builder

	title := m.role
	if title == "" {
		title = "Job description"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	case m.done:
		sb.WriteString(m.renderBlocks())
	default:
		sb.WriteString(bodyStyle.Render(m.prefix))
		sb.WriteString(cursorStyle.Render("▌"))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	sb.WriteString("\n")
	return sb.String()
}

func (m previewModel) renderBlocks() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		style := bodyStyle
		if block.Kind == jdtext.KindHeading {
			style = headingStyle
		}
		sb.WriteString(style.Width(width).Render(block.Text))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m previewModel) renderFooter() string {
	shown := utf8.RuneCountInString(m.prefix)
	status := fmt.Sprintf("%d/%d", shown, m.total)
	if m.done {
		status = "done"
	}
	return footerStyle.Render("r=restart • q=quit • " + status)
}
