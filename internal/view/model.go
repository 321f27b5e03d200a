// Package view is the terminal front end of the viewer: a Bubble Tea model
// that draws the synchronized store as a scrolling strip of cards and turns
// keys and wheel gestures into syncer actions.
package view

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/gesture"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/store"
	"go.klb.dev/clipview/internal/syncer"
)

const (
	fps = 60
	// wheelStep is how far one wheel notch moves, in cells.
	wheelStep = 3
)

// languageCycle is what the language key steps through.
var languageCycle = append([]string{classify.RawText}, classify.DefaultCandidates...)

// Actions is the part of the syncer the view drives. *syncer.Syncer
// implements it.
type Actions interface {
	Store() *store.Store
	Signals() <-chan syncer.Signal
	Status() syncer.Status
	Reload()

	TogglePin(ctx context.Context, id int64) syncer.PinResult
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	UnpinAll(ctx context.Context) (bool, error)
	SetLanguage(ctx context.Context, id int64, language string) error
	Copy(ctx context.Context, id int64) error
	Open(ctx context.Context, id int64) error
	OpenSettings(ctx context.Context) error
}

type (
	signalMsg syncer.Signal
	changeMsg struct{}
	frameMsg  time.Time
	doneMsg   struct {
		notice string
		err    error
		// copied marks a finished copy, which may close the viewer.
		copied bool
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	actions  Actions
	selector *render.Selector
	viewport *gesture.Viewport
	bar      progress.Model
	help     help.Model

	width, height int
	cards         []render.Card
	selected      int
	status        syncer.Status

	notice      string
	noticeErr   bool
	confirmWipe bool
	animating   bool
}

// New returns a model over a. Actions run under ctx.
func New(ctx context.Context, a Actions, sel *render.Selector) Model {
	m := Model{
		ctx:      ctx,
		actions:  a,
		selector: sel,
		viewport: gesture.NewViewport(fps),
		bar:      progress.New(progress.WithGradient("#7D56F4", "#AD8CFF"), progress.WithoutPercentage()),
		help:     help.New(),
		status:   a.Status(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenForSignal(), m.listenForChange())
}

func (m Model) listenForSignal() tea.Cmd {
	ch := m.actions.Signals()
	return func() tea.Msg {
		select {
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			return signalMsg(sig)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) listenForChange() tea.Cmd {
	ch := m.actions.Store().Changes()
	return func() tea.Msg {
		select {
		case <-ch:
			return changeMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-4))
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case signalMsg:
		cmd := m.handleSignal(syncer.Signal(msg))
		return m, tea.Batch(m.listenForSignal(), cmd)

	case changeMsg:
		m.refresh()
		return m, m.listenForChange()

	case frameMsg:
		if m.viewport.Step() {
			return m, frame()
		}
		m.animating = false
		return m, nil

	case doneMsg:
		if msg.copied && msg.err == nil && m.status.Settings.AutoHide {
			return m, tea.Quit
		}
		switch {
		case msg.err != nil:
			m.setNotice(msg.err.Error(), true)
		case msg.notice != "":
			m.setNotice(msg.notice, false)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleSignal(sig syncer.Signal) tea.Cmd {
	switch sig.Kind {
	case syncer.SignalState:
		m.status.State = sig.State
		m.status.Err = sig.Err
		if sig.State == syncer.StateReady {
			m.refresh()
		}
	case syncer.SignalProgress:
		m.status.Progress = sig.Progress
	case syncer.SignalSettings:
		m.status.Settings = sig.Settings
		m.relayout()
	case syncer.SignalResetScroll:
		m.selected = 0
		m.viewport.Reset(sig.Smooth)
		return m.animate()
	case syncer.SignalNotice:
		m.setNotice(sig.Notice, sig.Err != nil)
	case syncer.SignalPin:
		if sig.Pin.Committed {
			m.setNotice(pinNotice(sig.Pin.Pinned), false)
		}
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	wipe := m.confirmWipe
	m.confirmWipe = false

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Reload):
		m.setNotice("reloading", false)
		m.actions.Reload()
		return m, nil
	case key.Matches(msg, keys.Settings):
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{err: m.actions.OpenSettings(ctx)}
		})
	case key.Matches(msg, keys.UnpinAll):
		return m, m.run(func(ctx context.Context) doneMsg {
			changed, err := m.actions.UnpinAll(ctx)
			if err == nil && !changed {
				return doneMsg{notice: "nothing pinned"}
			}
			return doneMsg{err: err}
		})
	case key.Matches(msg, keys.DeleteAll):
		if !wipe {
			m.confirmWipe = true
			m.setNotice("press D again to delete every entry", true)
			return m, nil
		}
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{notice: "history cleared", err: m.actions.DeleteAll(ctx)}
		})
	}

	if len(m.cards) == 0 {
		return m, nil
	}
	card := m.cards[m.selected]
	id := card.ID

	switch {
	case key.Matches(msg, keys.Prev):
		m.selectIndex(m.selected - 1)
	case key.Matches(msg, keys.Next):
		m.selectIndex(m.selected + 1)
	case key.Matches(msg, keys.First):
		m.selectIndex(0)
	case key.Matches(msg, keys.Last):
		m.selectIndex(len(m.cards) - 1)
	case key.Matches(msg, keys.Copy):
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{notice: "copied", err: m.actions.Copy(ctx, id), copied: true}
		})
	case key.Matches(msg, keys.Pin):
		return m, m.run(func(ctx context.Context) doneMsg {
			res := m.actions.TogglePin(ctx, id)
			if !res.Committed {
				return doneMsg{err: res.Err}
			}
			return doneMsg{}
		})
	case key.Matches(msg, keys.Delete):
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{notice: "deleted", err: m.actions.Delete(ctx, id)}
		})
	case key.Matches(msg, keys.Open):
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{err: m.actions.Open(ctx, id)}
		})
	case key.Matches(msg, keys.Language):
		if card.Mode != classify.ModePlain && card.Mode != classify.ModeHighlighted {
			m.setNotice("only text entries have a language", true)
			return m, nil
		}
		next := nextLanguage(cardLanguage(card))
		return m, m.run(func(ctx context.Context) doneMsg {
			return doneMsg{notice: "language: " + next, err: m.actions.SetLanguage(ctx, id, next)}
		})
	}
	return m, m.animate()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	var w gesture.Wheel
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		w.DY = -wheelStep
	case tea.MouseButtonWheelDown:
		w.DY = wheelStep
	case tea.MouseButtonWheelLeft:
		w.DX = -wheelStep
	case tea.MouseButtonWheelRight:
		w.DX = wheelStep
	default:
		return m, nil
	}
	// Terminals without horizontal wheels report shift+wheel instead.
	if msg.Shift {
		w.DX, w.DY = w.DY, w.DX
	}
	o := m.status.Settings.Orientation
	// A stacked list only follows the vertical delta; let sideways wheels
	// scroll it as well.
	if o == gesture.Vertical && w.DY == 0 {
		w.DX, w.DY = 0, w.DX
	}

	in, ok := gesture.Translate(w, o, m.status.Settings.Scroll)
	if !ok {
		return m, nil
	}
	m.viewport.Apply(in)
	m.followViewport()
	return m, m.animate()
}

// run executes fn off the update loop.
func (m Model) run(fn func(ctx context.Context) doneMsg) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return fn(ctx) }
}

// animate starts the frame ticker when a smooth scroll is pending and none
// is running.
func (m *Model) animate() tea.Cmd {
	if m.animating || !m.viewport.Animating() {
		return nil
	}
	m.animating = true
	return frame()
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice, m.noticeErr = s, isErr
}

// refresh rebuilds the cards from the store, keeping the selected entry when
// it still exists.
func (m *Model) refresh() {
	var keep int64 = -1
	if m.selected < len(m.cards) {
		keep = m.cards[m.selected].ID
	}
	m.cards = m.selector.Cards(m.actions.Store().Snapshot())
	m.selected = min(m.selected, max(0, len(m.cards)-1))
	for i, c := range m.cards {
		if c.ID == keep {
			m.selected = i
			break
		}
	}
	m.relayout()
}

func (m *Model) relayout() {
	m.viewport.SetExtent(float64(max(0, len(m.cards)-m.perScreen())) * m.unit())
}

func (m *Model) horizontal() bool {
	return m.status.Settings.Orientation == gesture.Horizontal
}

// unit is the scroll distance of one card.
func (m *Model) unit() float64 {
	if m.horizontal() {
		return cardWidth
	}
	return cardHeight
}

func (m *Model) bodyHeight() int {
	return max(cardHeight, m.height-2)
}

// perScreen is how many cards fit at once.
func (m *Model) perScreen() int {
	if m.horizontal() {
		return max(1, m.width/cardWidth)
	}
	return max(1, m.bodyHeight()/cardHeight)
}

func (m *Model) firstVisible() int {
	return int(math.Floor(m.viewport.Offset()/m.unit() + 1e-9))
}

func (m *Model) selectIndex(i int) {
	if len(m.cards) == 0 {
		return
	}
	m.selected = max(0, min(len(m.cards)-1, i))
	first := int(m.viewport.Target() / m.unit())
	per := m.perScreen()
	smooth := m.status.Settings.Scroll.Smooth
	switch {
	case m.selected < first:
		m.viewport.ScrollTo(float64(m.selected)*m.unit(), smooth)
	case m.selected >= first+per:
		m.viewport.ScrollTo(float64(m.selected-per+1)*m.unit(), smooth)
	}
}

// followViewport keeps the selection on screen after a wheel scroll.
func (m *Model) followViewport() {
	first := int(m.viewport.Target() / m.unit())
	last := first + m.perScreen() - 1
	m.selected = max(first, min(last, m.selected))
	m.selected = min(m.selected, max(0, len(m.cards)-1))
}

func nextLanguage(current string) string {
	for i, l := range languageCycle {
		if strings.EqualFold(l, current) {
			return languageCycle[(i+1)%len(languageCycle)]
		}
	}
	return languageCycle[0]
}

func pinNotice(pinned bool) string {
	if pinned {
		return "pinned"
	}
	return "unpinned"
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.status.State != syncer.StateReady {
		return m.loadingView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.titleView(), m.cardsView(), m.footerView())
}

func (m Model) loadingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("clipview"))
	b.WriteString("\n\n")
	if m.status.State == syncer.StateFailed {
		msg := "loading failed"
		if m.status.Err != nil {
			msg += ": " + m.status.Err.Error()
		}
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("press r to retry, q to quit"))
		return b.String()
	}
	fmt.Fprintf(&b, "Loading clipboard history %3d%%\n", m.status.Progress)
	b.WriteString(m.bar.ViewAs(float64(m.status.Progress) / 100))
	return b.String()
}

func (m Model) titleView() string {
	info := fmt.Sprintf("%s · %s", english.Plural(len(m.cards), "entry", "entries"), m.status.Settings.Position)
	if n := len(m.actions.Store().PinnedIDs()); n > 0 {
		info += fmt.Sprintf(" · %d pinned", n)
	}
	title := titleStyle.Render("clipview")
	gap := max(1, m.width-lipgloss.Width(title)-lipgloss.Width(info))
	return title + strings.Repeat(" ", gap) + statusStyle.Render(info)
}

func (m Model) cardsView() string {
	if len(m.cards) == 0 {
		return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
			statusStyle.Render("Clipboard history is empty"))
	}

	first := min(m.firstVisible(), len(m.cards)-1)
	last := min(len(m.cards), first+m.perScreen())
	var out []string
	for i := first; i < last; i++ {
		if m.horizontal() {
			out = append(out, renderCard(m.cards[i], cardWidth, cardHeight, i == m.selected))
		} else {
			out = append(out, renderCard(m.cards[i], m.width, cardHeight, i == m.selected))
		}
	}
	var body string
	if m.horizontal() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, out...)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, out...)
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).MaxWidth(m.width).Render(body)
}

func (m Model) footerView() string {
	if m.notice != "" {
		if m.noticeErr {
			return errorStyle.Render(m.notice)
		}
		return noticeStyle.Render(m.notice)
	}
	return m.help.View(keys)
}
