package tui

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/jetsetter/internal/model"
	"github.com/idilsaglam/jetsetter/internal/store/jsonstore"
	"github.com/idilsaglam/jetsetter/internal/store/packing"
	"github.com/idilsaglam/jetsetter/internal/ui"
)

// Options for Run.
type Options struct {
	StateFile string // saved on quit when the list changed; empty disables
}

type pane int

const (
	paneUnpacked pane = iota
	panePacked
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeFilter
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.Title }

// views holds the latest value of each store subscription.
type views struct {
	items, packed, unpacked []model.Item
}

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	active bool // only the focused pane shows a cursor
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.Title
	if it.Packed {
		box = successStyle.Render(boxChecked)
		text = packedStyle.Render(text)
	}
	prefix := "  "
	if d.active && index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// Model is the packing list screen: two panes fed by store subscriptions,
// plus an inline input for adding items and for the filter.
type Model struct {
	store       *packing.Store
	views       *views
	unsubscribe []func()

	lists [2]list.Model
	focus pane

	mode     mode
	input    textinput.Model
	inputErr string

	keys keyMap
	help help.Model

	width, height int
	changed       bool
	synced        uint64 // store version last copied into the panes
}

// New builds the model and subscribes it to store. Call Close when done.
func New(store *packing.Store) Model {
	m := Model{
		store: store,
		views: &views{},
		keys:  defaultKeys(),
		help:  help.New(),
	}
	v := m.views
	m.unsubscribe = []func(){
		store.Subscribe(packing.ViewItems, func(items []model.Item) { v.items = items }),
		store.Subscribe(packing.ViewPacked, func(items []model.Item) { v.packed = items }),
		store.Subscribe(packing.ViewUnpacked, func(items []model.Item) { v.unpacked = items }),
	}

	m.lists[paneUnpacked] = newPane("Unpacked Items", itemDelegate{active: true})
	m.lists[panePacked] = newPane("Packed Items", itemDelegate{})

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.CharLimit = 200

	m.resize(80, 24)
	m.sync()
	return m
}

func newPane(title string, d itemDelegate) list.Model {
	l := list.New(nil, d, 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("item", "items")
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = helpStyle
	return l
}

// Close drops the store subscriptions.
func (m Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
}

// Changed reports whether the item list was modified (filter edits don't count).
func (m Model) Changed() bool { return m.changed }

// Run starts the Bubble Tea program and saves the list on quit when it changed.
func Run(store *packing.Store, opt Options) error {
	m := New(store)
	defer m.Close()

	log.Printf("tui: starting with %d items", len(store.All()))
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	log.Printf("tui: exited")

	fm, ok := finalModel.(Model)
	if !ok || !fm.changed || opt.StateFile == "" {
		return nil
	}
	if err := jsonstore.Save(opt.StateFile, store.All()); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	log.Printf("tui: saved %d items to %s", len(store.All()), opt.StateFile)
	ui.OK("saved")
	return nil
}

// Update and View implement Bubble Tea's Model on Model
func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// the store may have been changed outside this model
	var pending tea.Cmd
	if m.synced != m.store.Version() {
		pending = m.sync()
	}
	next, cmd := m.update(msg)
	return next, tea.Batch(pending, cmd)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(ws.Width, ws.Height)
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeAdd:
		return m.updateAdd(msg)
	case modeFilter:
		return m.updateFilter(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(km, m.keys.Switch):
		m.setFocus(1 - m.focus)
		return m, nil

	case key.Matches(km, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			m.store.Toggle(it.ID)
			m.changed = true
		}
		return m, m.sync()

	case key.Matches(km, m.keys.Remove):
		if it, ok := m.selected(); ok {
			m.store.Remove(it.ID)
			m.changed = true
		}
		return m, m.sync()

	case key.Matches(km, m.keys.PackAll):
		m.store.MarkAllPacked()
		m.changed = true
		return m, m.sync()

	case key.Matches(km, m.keys.UnpackAll):
		m.store.MarkAllAsUnpacked()
		m.changed = true
		return m, m.sync()

	case key.Matches(km, m.keys.RemoveAll):
		m.store.RemoveAll()
		m.changed = true
		return m, m.sync()

	case key.Matches(km, m.keys.Add):
		m.mode = modeAdd
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "New item title..."
		return m, m.input.Focus()

	case key.Matches(km, m.keys.Filter):
		m.mode = modeFilter
		m.inputErr = ""
		m.input.SetValue(m.store.Filter())
		m.input.CursorEnd()
		m.input.Placeholder = "Filter by title..."
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.lists[m.focus], cmd = m.lists[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Confirm):
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			m.store.Add(title)
			m.changed = true
			m.closeInput()
			return m, m.sync()
		case key.Matches(km, m.keys.Cancel):
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateFilter pushes every edit to the store so the panes narrow as you type.
func (m Model) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Confirm):
			m.closeInput()
			return m, nil
		case key.Matches(km, m.keys.Cancel):
			m.closeInput()
			m.store.SetFilter("")
			return m, m.sync()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.store.Filter() {
		m.store.SetFilter(m.input.Value())
		return m, tea.Batch(cmd, m.sync())
	}
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	m.lists[paneUnpacked].SetDelegate(itemDelegate{active: p == paneUnpacked})
	m.lists[panePacked].SetDelegate(itemDelegate{active: p == panePacked})
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.lists[m.focus].SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.Item, true
}

// sync copies the latest view snapshots into the panes.
func (m *Model) sync() tea.Cmd {
	m.synced = m.store.Version()
	cmds := []tea.Cmd{
		m.lists[paneUnpacked].SetItems(toListItems(m.views.unpacked)),
		m.lists[panePacked].SetItems(toListItems(m.views.packed)),
	}
	for i := range m.lists {
		if n := len(m.lists[i].Items()); n > 0 && m.lists[i].Index() >= n {
			m.lists[i].Select(n - 1)
		}
	}
	return tea.Batch(cmds...)
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{Item: it})
	}
	return out
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	paneW := (w - 10) / 2
	if paneW < 20 {
		paneW = 20
	}
	paneH := h - 12
	if paneH < 3 {
		paneH = 3
	}
	for i := range m.lists {
		m.lists[i].SetSize(paneW, paneH)
	}
	m.help.Width = w - 4
}

func (m Model) header() string {
	v := m.views
	h := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Jetsetter"),
		successStyle.Render("✔"), len(v.packed),
		pendingStyle.Render("•"), len(v.unpacked),
		accentStyle.Render("Total"), len(v.items),
	)
	if f := m.store.Filter(); f != "" {
		h += "  " + mutedStyle.Render("[Filter: "+f+"]")
	}
	return h
}

func (m Model) View() string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle(m.focus == paneUnpacked).Render(m.lists[paneUnpacked].View()),
		" ",
		paneStyle(m.focus == panePacked).Render(m.lists[panePacked].View()),
	)

	content := m.header() + "\n\n" + panes
	if m.mode != modeBrowse {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		title := "Add new item"
		if m.mode == modeFilter {
			title = "Filter items"
		}
		if m.inputErr != "" {
			title += "  " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.input.View())
	}
	content += "\n" + helpStyle.Render(m.help.View(m.keys))
	return panelString(content)
}
