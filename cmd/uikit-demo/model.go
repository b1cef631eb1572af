package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/uikit/pkg/builder"
	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/config"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/scene"
	"github.com/go-drift/uikit/pkg/sizing"
	"github.com/go-drift/uikit/pkg/state"
	"github.com/go-drift/uikit/pkg/textcell"
)

const (
	splashDelay        = 800 * time.Millisecond
	navigationDuration = 150 * time.Millisecond
	statusRows         = 2
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	fadingStyle  = lipgloss.NewStyle().Faint(true)
)

var subjects = []string{
	"Lunch?",
	"Quarterly planning notes and the follow-ups we agreed on in the review",
	"Build is green again",
	"Re: Re: Re: the parking situation, which has now become a long thread",
	"Invoice #4512",
	"Welcome aboard",
	"Design review moved to Thursday afternoon because of the offsite",
	"ping",
}

type splashDoneMsg struct{}

type configChangedMsg struct{ change config.Change }

// message is one row of the demo inbox.
type message struct {
	ID      int
	Subject string
}

// screen is a scene controller the demo can draw.
type screen interface {
	view(m *model, width, height int) string
}

type splashScreen struct{}

type listScreen struct{}

type helpScreen struct{}

// model drives a collection of messages in two sections. The inbox section
// always shows; the archive section disappears when it is empty.
type model struct {
	cfg      *config.Resolved
	logger   *slog.Logger
	level    *slog.LevelVar
	traits   string
	cache    *sizing.Cache
	target   *terminalTarget
	host     *terminalHost
	scene    *scene.MainScene
	coll     *collection.Collection
	inbox    *state.Observable[[]message]
	archive  *state.Observable[[]message]
	style    textcell.Style
	cursor   collection.IndexPath
	rng      *rand.Rand
	nextID   int
	selected int
	status   string
	err      error
	width    int
	height   int
}

func newModel(cfg *config.Resolved, logger *slog.Logger, level *slog.LevelVar, traits string) *model {
	m := &model{
		cfg:      cfg,
		logger:   logger,
		level:    level,
		traits:   traits,
		cache:    sizing.NewCache(),
		host:     newTerminalHost(),
		inbox:    state.NewObservable[[]message](nil),
		archive:  state.NewObservable[[]message](nil),
		rng:      rand.New(rand.NewPCG(1, 2)),
		selected: -1,
		width:    80,
		height:   24,
	}
	m.style = textcell.Style{Face: cellFace{}, Padding: densityPadding(readDensity(traits)), MaxLines: 3}
	for range 5 {
		m.inbox.Update(func(list []message) []message { return append(list, m.newMessage()) })
	}

	m.target = newTerminalTarget(m.width, m.height-statusRows, cfg.Layout)
	folders := []folder{
		{id: "inbox", title: "Inbox", messages: m.inbox},
		{id: "archive", title: "Archive", messages: m.archive},
	}
	m.coll = collection.New(builder.ForEach(folders, m.folderSection),
		collection.WithCache(m.cache),
		collection.WithLogger(logger),
		collection.WithMinimumLineSpacing(func(id collection.Identifier) (float64, bool) {
			return 0, id == "archive"
		}),
		collection.OnSelect(func(at collection.IndexPath) {
			if id, ok := m.coll.ItemIdentifier(at).(int); ok {
				m.selected = id
				m.status = fmt.Sprintf("opened #%d", id)
			}
		}),
	)

	m.scene = scene.New(m.host, scene.Splash,
		scene.WithLogger(logger),
		scene.WithTransitionDuration(cfg.TransitionDuration),
	).
		Splash(func() scene.Controller { return splashScreen{} }).
		Main(func() scene.Controller { return listScreen{} })
	m.scene.Initialize()
	return m
}

func (m *model) newMessage() message {
	m.nextID++
	return message{ID: m.nextID, Subject: subjects[m.rng.IntN(len(subjects))]}
}

// folder is one section of the list.
type folder struct {
	id       string
	title    string
	messages *state.Observable[[]message]
}

func (m *model) folderSection(_ int, f folder) []collection.SectionNode {
	title := textcell.NewHeader(f.id+"-title", f.title, textcell.Style{Face: cellFace{}})
	body := builder.Build(
		builder.Maybe[collection.BodyNode](title, f.title != ""),
		builder.Of[collection.BodyNode](collection.NewItemMap(f.messages, m.row)),
	)
	return builder.Of[collection.SectionNode](collection.NewSection(f.id, body...))
}

func (m *model) row(_ int, msg message) []collection.BodyNode {
	return []collection.BodyNode{textcell.NewItem(msg.ID, fmt.Sprintf("#%d %s", msg.ID, msg.Subject), m.style)}
}

func (m *model) Init() tea.Cmd {
	return tea.Tick(splashDelay, func(time.Time) tea.Msg { return splashDoneMsg{} })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.target.resize(m.width, max(0, m.height-statusRows))
		// Sizes are cached per identity, not per width.
		m.cache.ClearAll()

	case splashDoneMsg:
		m.scene.Switch(scene.Main, scene.AnimationFade, func(scene.Controller) {
			m.coll.Attach(m.target)
		}, func() {
			m.status = "ready"
		})

	case hostDoneMsg:
		m.host.complete(msg.id)

	case batchSettledMsg:
		m.target.settle()

	case configChangedMsg:
		m.applyConfig(msg.change)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	return m, tea.Batch(cmd, m.target.settleCmd(), m.host.drain())
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "?":
		if _, ok := m.host.top().(helpScreen); !ok {
			m.host.Push(helpScreen{}, true, nil)
		}
		return nil
	case "esc":
		m.host.Pop(true, nil)
		return nil
	}
	if _, ok := m.host.top().(listScreen); !ok || !m.coll.Attached() {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		if m.hasCursor() {
			m.coll.DidSelect(m.cursor)
		}
	case "a":
		m.inbox.Update(func(list []message) []message {
			return append([]message{m.newMessage()}, list...)
		})
		m.status = "added"
	case "d":
		m.mutateSelected(func(list []message, i int) []message {
			return slices.Delete(slices.Clone(list), i, i+1)
		})
		m.status = "deleted"
	case "e":
		m.mutateSelected(func(list []message, i int) []message {
			list = slices.Clone(list)
			list[i].Subject = subjects[m.rng.IntN(len(subjects))]
			return list
		})
		m.status = "edited"
	case "s":
		m.inbox.Update(func(list []message) []message {
			list = slices.Clone(list)
			m.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
			return list
		})
		m.status = "shuffled"
	case "r":
		m.inbox.Update(func(list []message) []message {
			if len(list) < 2 {
				return list
			}
			return append(slices.Clone(list[1:]), list[0])
		})
		m.status = "rotated"
	case "x":
		m.toggleArchive()
	}
	m.clampCursor()
	return nil
}

// source returns the observable behind section.
func (m *model) source(section int) *state.Observable[[]message] {
	if m.coll.SectionIdentifier(section) == "archive" {
		return m.archive
	}
	return m.inbox
}

func (m *model) mutateSelected(fn func([]message, int) []message) {
	if !m.hasCursor() {
		return
	}
	src := m.source(m.cursor.Section)
	item := m.cursor.Item
	src.Update(func(list []message) []message {
		if item >= len(list) {
			return list
		}
		return fn(list, item)
	})
}

// toggleArchive moves the selected message between sections. The two
// updates arrive as separate reload requests.
func (m *model) toggleArchive() {
	if !m.hasCursor() {
		return
	}
	from, to := m.inbox, m.archive
	if m.source(m.cursor.Section) == m.archive {
		from, to = m.archive, m.inbox
	}
	list := from.Value()
	if m.cursor.Item >= len(list) {
		return
	}
	msg := list[m.cursor.Item]
	from.Set(slices.Delete(slices.Clone(list), m.cursor.Item, m.cursor.Item+1))
	to.Update(func(list []message) []message { return append([]message{msg}, list...) })
	m.status = fmt.Sprintf("moved #%d", msg.ID)
}

func (m *model) hasCursor() bool {
	return m.cursor.Section < m.coll.NumberOfSections() && m.cursor.Item < m.coll.NumberOfItems(m.cursor.Section)
}

func (m *model) moveCursor(delta int) {
	var paths []collection.IndexPath
	for s := 0; s < m.coll.NumberOfSections(); s++ {
		for i := 0; i < m.coll.NumberOfItems(s); i++ {
			paths = append(paths, collection.IndexPath{Section: s, Item: i})
		}
	}
	if len(paths) == 0 {
		return
	}
	at := slices.Index(paths, m.cursor)
	m.cursor = paths[min(max(at+delta, 0), len(paths)-1)]
	m.coll.ScrollToItem(m.cursor, collection.ScrollNone, geometry.Point{}, false)
}

func (m *model) clampCursor() {
	if m.hasCursor() {
		return
	}
	sections := m.coll.NumberOfSections()
	if sections == 0 {
		m.cursor = collection.IndexPath{}
		return
	}
	s := min(m.cursor.Section, sections-1)
	m.cursor = collection.IndexPath{Section: s, Item: max(0, m.coll.NumberOfItems(s)-1)}
}

// applyConfig takes a reloaded uikit.yaml or trait file. Anything that
// affects layout invalidates every measured size.
func (m *model) applyConfig(change config.Change) {
	if change.Err != nil {
		m.err = change.Err
		return
	}
	m.err = nil
	m.cfg = change.Config
	m.level.Set(m.cfg.LogLevel)
	m.target.layout = m.cfg.Layout
	m.style.Padding = densityPadding(readDensity(m.traits))
	m.cache.ClearAll()
	m.coll.ReloadData()
	m.status = "reloaded " + shortPath(change.Path)
	m.logger.Info("configuration reloaded", "paths", change.Paths)
}

func (m *model) View() string {
	body := m.height - statusRows
	var content string
	if s, ok := m.host.top().(screen); ok {
		content = s.view(m, m.width, body)
	} else {
		content = fmt.Sprint(m.host.top())
	}
	if t := m.host.active; t != nil && t.to == m.host.top() {
		content = fadingStyle.Render(content)
	}
	content = lipgloss.NewStyle().Height(body).MaxHeight(body).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, content, m.statusLine())
}

func (m *model) statusLine() string {
	keys := statusStyle.Render("a add  d delete  e edit  s shuffle  r rotate  x archive  ? help  q quit")
	info := fmt.Sprintf("%s · %s · %s · batches %d · cached %d",
		m.cfg.AppName, m.scene.CurrentScreen().Value(), m.coll.Phase(), m.target.batches, m.cache.Len())
	if m.err != nil {
		info = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		info += " · " + m.status
	}
	return lipgloss.JoinVertical(lipgloss.Left, info, keys)
}

func (splashScreen) view(m *model, width, height int) string {
	title := titleStyle.Render("uikit")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, title)
}

func (helpScreen) view(m *model, width, height int) string {
	return strings.Join([]string{
		titleStyle.Render("Keys"),
		"",
		"j/k, arrows  move the cursor",
		"enter        open a message",
		"a            add a message to the inbox",
		"d            delete the selected message",
		"e            give the selected message a new subject",
		"s            shuffle the inbox",
		"r            rotate the inbox by one",
		"x            archive or unarchive the selected message",
		"",
		"Edit " + config.FileName + " while running to change the layout.",
		"esc          back",
	}, "\n")
}

// view lays the sections out top to bottom and clips to the content offset.
func (listScreen) view(m *model, width, height int) string {
	var rows []string
	ds := m.coll
	for s := 0; s < ds.NumberOfSections(); s++ {
		inset := ds.SectionInset(s)
		rows = append(rows, blankRows(int(inset.Top))...)
		if header, ok := ds.SupplementaryView(collection.ElementHeader, s).(*textcell.Label); ok {
			rows = append(rows, renderLabel(header, ds.HeaderSize(s), inset, headerStyle)...)
		}
		for i := 0; i < ds.NumberOfItems(s); i++ {
			at := collection.IndexPath{Section: s, Item: i}
			cell, ok := ds.CellForItem(at).(*textcell.Label)
			if !ok {
				continue
			}
			style := lipgloss.NewStyle()
			if m.target.changed[ds.ItemIdentifier(at)] {
				style = changedStyle
			}
			if at == m.cursor {
				style = cursorStyle
			}
			rows = append(rows, renderLabel(cell, ds.SizeForItem(at), inset, style)...)
			if i < ds.NumberOfItems(s)-1 {
				rows = append(rows, blankRows(int(ds.MinimumLineSpacing(s)))...)
			}
		}
		rows = append(rows, blankRows(int(inset.Bottom))...)
	}

	top := min(int(m.target.ContentOffset().Y), len(rows))
	rows = rows[top:]
	if len(rows) > height {
		rows = rows[:height]
	}
	return strings.Join(rows, "\n")
}

// renderLabel draws l into size, one terminal row per line.
func renderLabel(l *textcell.Label, size geometry.Size, inset geometry.EdgeInsets, style lipgloss.Style) []string {
	h := int(size.Height)
	if h <= 0 || size.Width <= 0 {
		return nil
	}
	lines := l.Lines(size.Width - l.Padding.Horizontal())
	rows := blankRows(int(l.Padding.Top))
	for _, line := range lines {
		rows = append(rows, strings.Repeat(" ", int(l.Padding.Left))+line)
	}
	for len(rows) < h {
		rows = append(rows, "")
	}
	rows = rows[:h]

	left := strings.Repeat(" ", int(inset.Left))
	for i, row := range rows {
		rows[i] = left + style.Width(int(size.Width)).MaxWidth(int(size.Width)).Render(row)
	}
	return rows
}

func blankRows(n int) []string {
	if n <= 0 {
		return nil
	}
	return make([]string, n)
}

// readDensity reads the horizontal cell padding from the trait file. A
// missing or malformed file means 1.
func readDensity(path string) int {
	if path == "" {
		return 1
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 1
	}
	return n
}

func densityPadding(n int) geometry.EdgeInsets {
	return geometry.EdgeInsets{Left: float64(n), Right: float64(n)}
}

func shortPath(path string) string {
	if i := strings.LastIndexByte(path, os.PathSeparator); i >= 0 {
		return path[i+1:]
	}
	return path
}
