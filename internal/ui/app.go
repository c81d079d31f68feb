package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
)

const flashDuration = 3 * time.Second

// Pane identifies one of the two book lists.
type Pane int

const (
	PaneAvailable Pane = iota
	PaneBorrowed
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Clients   *state.ClientStore
	Books     *state.BooksStore
	Directory []library.Client
	ThemeName string
	PrefsPath string
	Logger    *logger.Logger

	// DirectoryUpdates, when set, delivers refreshed client lists.
	DirectoryUpdates <-chan []library.Client
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	clients   *state.ClientStore
	books     *state.BooksStore
	directory []library.Client
	prefsPath string
	log       *logger.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	focus    Pane
	cursor   [2]int
	showHelp bool

	// Flash message shown in the status line until it expires
	flash    string
	flashSeq int

	// Data state
	client    library.Client
	hasClient bool
	view      state.View
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = defaultThemeName
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	m := Model{
		ctx:       ctx,
		clients:   opts.Clients,
		books:     opts.Books,
		directory: append([]library.Client(nil), opts.Directory...),
		prefsPath: prefsPath,
		log:       log,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
	}
	m.sync()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	// Stores may have settled between New and the program starting.
	return func() tea.Msg { return booksChangedMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case clientChangedMsg, booksChangedMsg:
		m.sync()
		return m, nil

	case directoryMsg:
		m.directory = append([]library.Client(nil), msg...)
		return m, nil

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextClient):
		return m.selectClient(m.clientIndex() + 1)

	case key.Matches(msg, m.keys.PrevClient):
		idx := m.clientIndex()
		if idx < 0 {
			idx = len(m.directory)
		}
		return m.selectClient(idx - 1)

	case key.Matches(msg, m.keys.PickClient):
		n := int(msg.Runes[0] - '1')
		if n >= len(m.directory) {
			return m, nil
		}
		return m.selectClient(n)

	case key.Matches(msg, m.keys.ClearClient):
		m.clients.Set(nil)
		m.sync()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.view.Status == state.StatusFailed && m.hasClient {
			m.books.Reload(m.ctx, m.client.ID)
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneAvailable {
			m.focus = PaneBorrowed
		} else {
			m.focus = PaneAvailable
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor[m.focus] = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.cursor[m.focus] = max(len(m.paneBooks(m.focus))-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if m.focus == PaneBorrowed {
			return m.returnSelected()
		}
		return m.borrowSelected()

	case key.Matches(msg, m.keys.Return):
		return m.returnSelected()
	}

	return m, nil
}

// selectClient makes directory[idx] current, wrapping around the ends.
func (m Model) selectClient(idx int) (tea.Model, tea.Cmd) {
	if len(m.directory) == 0 {
		return m, nil
	}
	idx = (idx%len(m.directory) + len(m.directory)) % len(m.directory)
	c := m.directory[idx]
	m.clients.Set(&c)
	m.cursor = [2]int{}
	m.sync()
	m.savePrefs()
	return m, nil
}

func (m Model) borrowSelected() (tea.Model, tea.Cmd) {
	book, ok := m.selected(PaneAvailable)
	if !ok {
		return m, nil
	}
	if m.books.Borrow(book) {
		m.sync()
		return m, nil
	}
	m.sync()
	if m.view.LimitReached() {
		return m.setFlash(fmt.Sprintf("Borrow limit reached (%d)", library.BorrowLimit))
	}
	return m.setFlash("Cannot borrow " + book.Title)
}

func (m Model) returnSelected() (tea.Model, tea.Cmd) {
	book, ok := m.selected(PaneBorrowed)
	if !ok {
		return m, nil
	}
	if !m.books.Return(book) {
		m.sync()
		return m.setFlash("Cannot return " + book.Title)
	}
	m.sync()
	return m, nil
}

func (m Model) setFlash(text string) (tea.Model, tea.Cmd) {
	m.flashSeq++
	m.flash = text
	seq := m.flashSeq
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// sync refreshes the cached store state and clamps the cursors.
func (m *Model) sync() {
	if m.clients != nil {
		m.client, m.hasClient = m.clients.Get()
	}
	if m.books != nil {
		m.view = m.books.View()
	}
	for _, p := range []Pane{PaneAvailable, PaneBorrowed} {
		n := len(m.paneBooks(p))
		if m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.paneBooks(m.focus))
	if n == 0 {
		m.cursor[m.focus] = 0
		return
	}
	m.cursor[m.focus] = min(max(m.cursor[m.focus]+delta, 0), n-1)
}

func (m Model) paneBooks(p Pane) []library.Book {
	if p == PaneBorrowed {
		return m.view.Borrowed
	}
	return m.view.Available
}

func (m Model) selected(p Pane) (library.Book, bool) {
	books := m.paneBooks(p)
	idx := m.cursor[p]
	if idx < 0 || idx >= len(books) {
		return library.Book{}, false
	}
	return books[idx], true
}

func (m Model) clientIndex() int {
	if !m.hasClient {
		return -1
	}
	for i, c := range m.directory {
		if c.ID == m.client.ID {
			return i
		}
	}
	return -1
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.hasClient {
		p.LastClient = m.client.ID
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs")
	}
}

// Messages

type clientChangedMsg struct{}

type booksChangedMsg struct{}

type flashExpiredMsg struct{ seq int }

type directoryMsg []library.Client

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Clients == nil || opts.Books == nil {
		return fmt.Errorf("ui requires client and books stores")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	var p *tea.Program
	ready := make(chan struct{})
	notify := func(msg tea.Msg) func() {
		return func() {
			go func() {
				<-ready
				p.Send(msg)
			}()
		}
	}

	// Subscribe before New reads the stores so no change falls in between.
	// Store notifications can fire from inside Update; Send must not block it.
	unsubClients := opts.Clients.Subscribe(notify(clientChangedMsg{}))
	defer unsubClients()
	unsubBooks := opts.Books.Subscribe(notify(booksChangedMsg{}))
	defer unsubBooks()

	m := New(opts)
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	close(ready)

	if opts.DirectoryUpdates != nil {
		go func() {
			for list := range opts.DirectoryUpdates {
				p.Send(directoryMsg(list))
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
