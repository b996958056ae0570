package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/config"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	pickTicket   string
	pickMode     string
	pickLimit    int
	pickCategory string
)

// pickCmd represents the pick command
var pickCmd = &cobra.Command{
	Use:   "pick [term]",
	Short: "Interactively select media to attach or detach",
	Long: `Launch a full-screen picker for one ticket.

The picker shows two lists: new search results and media already attached to
the ticket. Check entries and press Enter to attach (new) or detach (existing).

Keyboard Shortcuts:
  Navigation:
    ↑/k ↓/j     Move
    Tab         Switch between new and attached
    g / G       Top / bottom

  Selection:
    Space       Toggle entry
    X           Toggle entry and everything since the last toggle
    a           Select all, or deselect all when everything is selected
    A           Deselect all
    i           Invert selection
    Shift+Click Range toggle with the mouse

  Search:
    /           New search term
    u / f       Search by uploader / by file name prefix
    m           Load more results

  Actions:
    Enter       Attach or detach the selection
    o           Open the description page
    ?           Toggle help
    q           Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	pickCmd.Flags().StringVarP(&pickTicket, "ticket", "t", "", "Ticket id (required)")
	addSearchFlags(pickCmd, &pickMode, &pickLimit, &pickCategory)
	pickCmd.MarkFlagRequired("ticket")
}

func runPick(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	q, err := buildQuery(ctx, pickMode, args, pickLimit, pickCategory)
	if err != nil {
		return err
	}

	// Restored when switching back to uploader mode
	profileTerm, err := profileService.DefaultTerm(ctx, domain.ModeByUploader, appConfig.MediawikiUsername)
	if err != nil {
		appLog.Debug().Err(err).Msg("no profile username for uploader mode")
	}

	m := newPickModel(ctx, pickDeps{
		tracker: trackerClient,
		media:   mediaRepo,
		thumbs:  thumbnailService,
		submit:  submissionService,
		workers: appConfig.DetachWorkers,
	}, pickTicket, q, profileTerm)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if err := config.Watch(ctx, configPath(), func(cfg *config.Config, err error) {
		p.Send(configReloadedMsg{cfg: cfg, err: err})
	}); err != nil {
		appLog.Debug().Err(err).Msg("config watch disabled")
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running picker: %w", err)
	}
	return nil
}

// Picker modes
type viewMode int

const (
	modeList viewMode = iota
	modeTerm
	modeHelp
)

type pane int

const (
	paneNew pane = iota
	paneExisting
)

func (p pane) String() string {
	if p == paneExisting {
		return "Attached"
	}
	return "New"
}

// listTop is the first screen row of the list, used to map mouse clicks
const listTop = 3

// checkboxCols is the width of the cursor marker plus the checkbox
const checkboxCols = 6

// mediaList is one rendered list of cards with checkbox state
type mediaList struct {
	cards      []services.Card
	checked    []bool
	cursor     int
	offset     int
	lastChange string
}

func (l *mediaList) Len() int {
	return len(l.cards)
}

func (l *mediaList) Checked(i int) bool {
	return l.checked[i]
}

func (l *mediaList) SetChecked(i int, checked bool) {
	l.checked[i] = checked
}

// Changed records thumbnail toggles for the status line
func (l *mediaList) Changed(i int, checked bool) {
	verb := "Unselected"
	if checked {
		verb = "Selected"
	}
	l.lastChange = verb + " " + l.cards[i].Item.Title()
}

func (l *mediaList) set(cards []services.Card) {
	l.cards = cards
	l.checked = make([]bool, len(cards))
	l.cursor = 0
	l.offset = 0
}

func (l *mediaList) appendCards(cards []services.Card) {
	l.cards = append(l.cards, cards...)
	l.checked = append(l.checked, make([]bool, len(cards))...)
}

func (l *mediaList) current() (services.Card, bool) {
	if l.cursor < 0 || l.cursor >= len(l.cards) {
		return services.Card{}, false
	}
	return l.cards[l.cursor], true
}

// notice is a service message waiting to be shown
type notice struct {
	level   ports.Level
	message string
}

// bufferedNotifier collects service messages while a command runs so they
// reach the model together with the command's result
type bufferedNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *bufferedNotifier) Notify(level ports.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{level: level, message: message})
}

func (n *bufferedNotifier) drain() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.notices
	n.notices = nil
	return out
}

type pickDeps struct {
	tracker ports.TrackerBackend
	media   ports.MediaRepository
	thumbs  *services.ThumbnailService
	submit  *services.SubmissionService
	workers int
}

// Picker model
type pickModel struct {
	ctx      context.Context
	ticketID string
	deps     pickDeps
	notifier *bufferedNotifier
	browse   *services.BrowseService

	query       domain.SearchQuery
	profileTerm string
	hasMore     bool

	lists       [2]*mediaList
	controllers [2]*services.SelectionController
	active      pane

	mode      viewMode
	termInput textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	loading   bool

	width         int
	height        int
	ready         bool
	message       string // Status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time
}

// Key bindings
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Toggle     key.Binding
	RangeClick key.Binding
	ToggleAll  key.Binding
	Deselect   key.Binding
	Invert     key.Binding
	LoadMore   key.Binding
	SwitchPane key.Binding
	Term       key.Binding
	ByUploader key.Binding
	ByPrefix   key.Binding
	Submit     key.Binding
	Open       key.Binding
	Help       key.Binding
	Quit       key.Binding
	Escape     key.Binding
	Confirm    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.RangeClick, k.ToggleAll, k.SwitchPane, k.Submit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.SwitchPane},
		{k.Toggle, k.RangeClick, k.ToggleAll, k.Deselect, k.Invert},
		{k.Term, k.ByUploader, k.ByPrefix, k.LoadMore},
		{k.Submit, k.Open, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	RangeClick: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "toggle range"),
	),
	ToggleAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all/none"),
	),
	Deselect: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "deselect all"),
	),
	Invert: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "invert"),
	),
	LoadMore: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "load more"),
	),
	SwitchPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "new/attached"),
	),
	Term: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "new term"),
	),
	ByUploader: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "by uploader"),
	),
	ByPrefix: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "by file name"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "attach/detach"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open page"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
}

func newPickModel(ctx context.Context, deps pickDeps, ticketID string, q domain.SearchQuery, profileTerm string) pickModel {
	notifier := &bufferedNotifier{}
	search := services.NewSearchService(deps.media, notifier)

	ti := textinput.New()
	ti.Placeholder = q.Mode.Label()
	ti.CharLimit = 255
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.StylePrimary

	m := pickModel{
		ctx:         ctx,
		ticketID:    ticketID,
		deps:        deps,
		notifier:    notifier,
		browse:      services.NewBrowseService(deps.tracker, search, deps.thumbs),
		query:       q,
		profileTerm: profileTerm,
		termInput:   ti,
		spinner:     sp,
		help:        help.New(),
		keys:        keys,
		loading:     true,
	}
	for p := range m.lists {
		m.lists[p] = &mediaList{}
		m.controllers[p] = services.NewSelectionController(m.lists[p], m.lists[p])
	}
	return m
}

func (m pickModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload())
}

// Messages

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

// ticketLoadedMsg carries a full refresh of both lists
type ticketLoadedMsg struct {
	existing []services.Card
	results  []services.Card
	hasMore  bool
	notices  []notice
	err      error
}

// moreLoadedMsg carries the cards of one appended page
type moreLoadedMsg struct {
	cards   []services.Card
	hasMore bool
	notices []notice
	err     error
}

type attachDoneMsg struct {
	resp *services.AttachResponse
	err  error
}

type detachDoneMsg struct {
	report *services.DetachReport
	err    error
}

type configReloadedMsg struct {
	cfg *config.Config
	err error
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeTerm:
			return m.updateTerm(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateList(msg)
		}

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		return m.setStatus(msg.message, msg.style)

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case ticketLoadedMsg:
		m.loading = false
		m.controllers[paneNew].Reset()
		m.controllers[paneExisting].Reset()
		if msg.existing != nil {
			m.lists[paneExisting].set(msg.existing)
		}
		if msg.err != nil {
			m.lists[paneNew].set(nil)
			m.hasMore = false
			if len(msg.notices) > 0 {
				return m.showNotices(msg.notices)
			}
			return m.setStatus(msg.err.Error(), ui.StyleError)
		}
		m.lists[paneNew].set(msg.results)
		m.hasMore = msg.hasMore
		return m.showNotices(msg.notices)

	case moreLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if len(msg.notices) > 0 {
				return m.showNotices(msg.notices)
			}
			return m.setStatus(msg.err.Error(), ui.StyleError)
		}
		m.lists[paneNew].appendCards(msg.cards)
		m.hasMore = msg.hasMore
		if len(msg.notices) > 0 {
			return m.showNotices(msg.notices)
		}
		return m.setStatus(fmt.Sprintf("Loaded %d more", len(msg.cards)), ui.StyleInfo)

	case attachDoneMsg:
		m.loading = false
		if msg.err != nil {
			return m.setStatus(msg.err.Error(), ui.StyleError)
		}
		if msg.resp.Error != nil {
			return m.setStatus("Attach failed: "+msg.resp.Error.Error(), ui.StyleError)
		}
		m.loading = true
		next, cmd := m.setStatus(fmt.Sprintf("Attached %d files", msg.resp.Count), ui.StyleSuccess)
		return next, tea.Batch(cmd, m.reload())

	case detachDoneMsg:
		m.loading = false
		if msg.err != nil {
			return m.setStatus(msg.err.Error(), ui.StyleError)
		}
		m.loading = true
		style := ui.StyleSuccess
		text := fmt.Sprintf("Detached %d files", msg.report.Succeeded)
		if msg.report.Failed > 0 {
			style = ui.StyleError
			text = fmt.Sprintf("Detached %d of %d; %d failed", msg.report.Succeeded, msg.report.Total, msg.report.Failed)
		}
		next, cmd := m.setStatus(text, style)
		return next, tea.Batch(cmd, m.reload())

	case configReloadedMsg:
		if msg.err != nil {
			return m.setStatus("Config reload failed: "+msg.err.Error(), ui.StyleError)
		}
		appConfig = msg.cfg
		m.query.Limit = msg.cfg.SearchLimit
		m.query.Category = msg.cfg.Category
		m.deps.workers = msg.cfg.DetachWorkers
		ui.SetTheme(msg.cfg.ColorTheme)
		return m.setStatus("Config reloaded", ui.StyleInfo)
	}

	return m, nil
}

func (m pickModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.lists[m.active]
	ctrl := m.controllers[m.active]

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if list.cursor > 0 {
			list.cursor--
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Down):
		if list.cursor < list.Len()-1 {
			list.cursor++
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Top):
		list.cursor = 0
		list.offset = 0

	case key.Matches(msg, m.keys.Bottom):
		if list.Len() > 0 {
			list.cursor = list.Len() - 1
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Toggle):
		ctrl.SetModifier(false)
		ctrl.Click(list.cursor)

	case key.Matches(msg, m.keys.RangeClick):
		ctrl.SetModifier(true)
		ctrl.Click(list.cursor)
		ctrl.SetModifier(false)

	case key.Matches(msg, m.keys.ToggleAll):
		ctrl.ToggleAll()

	case key.Matches(msg, m.keys.Deselect):
		ctrl.DeselectAll()

	case key.Matches(msg, m.keys.Invert):
		ctrl.InvertAll()

	case key.Matches(msg, m.keys.SwitchPane):
		if m.active == paneNew {
			m.active = paneExisting
		} else {
			m.active = paneNew
		}

	case key.Matches(msg, m.keys.LoadMore):
		if m.loading || m.active != paneNew {
			return m, nil
		}
		if !m.hasMore {
			return m.setStatus("No more results", ui.StyleMuted)
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadMore())

	case key.Matches(msg, m.keys.Term):
		if m.loading {
			return m, nil
		}
		return m.startTermInput()

	case key.Matches(msg, m.keys.ByUploader):
		if m.loading {
			return m, nil
		}
		m.query.Mode = domain.ModeByUploader
		m.query.Term = m.profileTerm
		m.termInput.Placeholder = m.query.Mode.Label()
		if m.query.Term == "" {
			return m.startTermInput()
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.reload())

	case key.Matches(msg, m.keys.ByPrefix):
		if m.loading {
			return m, nil
		}
		m.query.Mode = domain.ModeByFilenamePrefix
		m.query.Term = ""
		m.termInput.Placeholder = m.query.Mode.Label()
		return m.startTermInput()

	case key.Matches(msg, m.keys.Submit):
		if m.loading {
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.Open):
		if card, ok := list.current(); ok && card.Item.DescriptionURL != "" {
			return m, openPage(card.Item.DescriptionURL)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
		m.mode = modeHelp
	}

	return m, nil
}

func (m pickModel) updateTerm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.termInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if m.loading {
			return m.setStatus("Still loading, try again in a moment", ui.StyleWarning)
		}
		term := strings.TrimSpace(m.termInput.Value())
		m.mode = modeList
		m.termInput.Blur()
		if term == "" {
			return m.setStatus("Enter a "+strings.ToLower(m.query.Mode.Label()), ui.StyleWarning)
		}
		m.query.Term = term
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.reload())
	}

	var cmd tea.Cmd
	m.termInput, cmd = m.termInput.Update(msg)
	return m, cmd
}

func (m pickModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.help.ShowAll = false
		m.mode = modeList
	}
	return m, nil
}

// updateMouse maps a left click on a row to a checkbox or thumbnail click.
// Shift held is the range modifier.
func (m pickModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeList || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	list := m.lists[m.active]
	ctrl := m.controllers[m.active]

	row := msg.Y - listTop
	if row < 0 || row >= m.listHeight() {
		return m, nil
	}
	i := list.offset + row
	if i >= list.Len() {
		return m, nil
	}

	list.cursor = i
	ctrl.SetModifier(msg.Shift)
	defer ctrl.SetModifier(false)

	if msg.X < checkboxCols {
		ctrl.Click(i)
		return m, nil
	}

	ctrl.ThumbnailClick(i)
	if list.lastChange != "" {
		return m.setStatus(list.lastChange, ui.StyleMuted)
	}
	return m, nil
}

func (m pickModel) startTermInput() (tea.Model, tea.Cmd) {
	m.mode = modeTerm
	m.termInput.SetValue(m.query.Term)
	m.termInput.CursorEnd()
	m.termInput.Focus()
	return m, textinput.Blink
}

// submit attaches the checked new results or detaches the checked attachments
func (m pickModel) submit() (tea.Model, tea.Cmd) {
	list := m.lists[m.active]
	checked := m.controllers[m.active].CheckedIndices()
	if len(checked) == 0 {
		return m.setStatus("Nothing selected", ui.StyleWarning)
	}

	m.loading = true
	ctx := m.ctx
	ticketID := m.ticketID
	submit := m.deps.submit

	if m.active == paneNew {
		names := make([]string, 0, len(checked))
		for _, i := range checked {
			names = append(names, list.cards[i].Item.Key())
		}
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			resp, err := submit.Attach(ctx, services.AttachRequest{TicketID: ticketID, Names: names})
			return attachDoneMsg{resp: resp, err: err}
		})
	}

	urls := make([]string, 0, len(checked))
	for _, i := range checked {
		urls = append(urls, list.cards[i].APIURL)
	}
	workers := m.deps.workers
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		report, err := submit.Detach(ctx, services.DetachRequest{TicketID: ticketID, APIURLs: urls, MaxWorkers: workers})
		return detachDoneMsg{report: report, err: err}
	})
}

// reload refetches the ticket's attachments and reruns the current search
func (m pickModel) reload() tea.Cmd {
	ctx := m.ctx
	browse := m.browse
	notifier := m.notifier
	ticketID := m.ticketID
	q := m.query
	q.Continue = ""

	return func() tea.Msg {
		if _, err := browse.LoadTicket(ctx, ticketID); err != nil {
			return ticketLoadedMsg{err: err}
		}
		existing := browse.ExistingCards(ctx)

		if q.Term == "" {
			return ticketLoadedMsg{existing: existing, notices: notifier.drain()}
		}

		results, err := browse.Search(ctx, q)
		if err != nil {
			return ticketLoadedMsg{existing: existing, notices: notifier.drain(), err: err}
		}
		return ticketLoadedMsg{
			existing: existing,
			results:  browse.Cards(ctx, results.Items),
			hasMore:  results.CanLoadMore(),
			notices:  notifier.drain(),
		}
	}
}

// loadMore appends the next page of the current search
func (m pickModel) loadMore() tea.Cmd {
	ctx := m.ctx
	browse := m.browse
	notifier := m.notifier

	return func() tea.Msg {
		page, err := browse.LoadMore(ctx)
		if err != nil {
			return moreLoadedMsg{notices: notifier.drain(), err: err}
		}
		return moreLoadedMsg{
			cards:   browse.Cards(ctx, page.Items),
			hasMore: browse.Results().CanLoadMore(),
			notices: notifier.drain(),
		}
	}
}

func openPage(target string) tea.Cmd {
	return func() tea.Msg {
		if err := OpenFile(target); err != nil {
			return statusMsg{message: err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: "Opened " + target, style: ui.StyleSuccess}
	}
}

func (m pickModel) setStatus(text string, style lipgloss.Style) (tea.Model, tea.Cmd) {
	m.message = text
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(3 * time.Second)
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// showNotices surfaces the most severe service message
func (m pickModel) showNotices(notices []notice) (tea.Model, tea.Cmd) {
	if len(notices) == 0 {
		return m, nil
	}
	top := notices[0]
	for _, n := range notices[1:] {
		if n.level > top.level {
			top = n
		}
	}
	style := ui.StyleInfo
	switch top.level {
	case ports.LevelDanger:
		style = ui.StyleError
	case ports.LevelWarning:
		style = ui.StyleWarning
	}
	return m.setStatus(top.message, style)
}

func (m pickModel) listHeight() int {
	h := m.height - listTop - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (m *pickModel) adjustViewport() {
	list := m.lists[m.active]
	h := m.listHeight()
	if list.cursor >= list.offset+h {
		list.offset = list.cursor - h + 1
	}
	if list.cursor < list.offset {
		list.offset = list.cursor
	}
}

// View

func (m pickModel) View() string {
	if !m.ready {
		return "\n  Loading picker..."
	}
	if m.mode == modeHelp {
		return m.viewHelp()
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderTermLine())
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")
	s.WriteString(m.renderList())
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m pickModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statsStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	title := titleStyle.Render(fmt.Sprintf("%s Ticket %s", ui.IconTicket, m.ticketID))
	stats := statsStyle.Render(fmt.Sprintf("%d new  %d attached", m.lists[paneNew].Len(), m.lists[paneExisting].Len()))

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(stats)
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacer), stats)
}

func (m pickModel) renderTermLine() string {
	label := ui.StyleMuted.Render(m.query.Mode.Label() + ": ")
	if m.mode == modeTerm {
		return " " + label + m.termInput.View()
	}
	term := m.query.Term
	if term == "" {
		term = ui.StyleMuted.Render("Press / to search...")
	}
	line := " " + label + term
	if m.query.Category != "" {
		line += ui.StyleAccent.Render("  [" + m.query.Category + "]")
	}
	return line
}

func (m pickModel) renderTabs() string {
	var tabs []string
	for p := paneNew; p <= paneExisting; p++ {
		label := fmt.Sprintf(" %s (%d) ", p, m.lists[p].Len())
		if p == m.active {
			tabs = append(tabs, ui.StyleCursor.Render("▸"+label))
		} else {
			tabs = append(tabs, ui.StyleMuted.Render(" "+label))
		}
	}
	all := ui.FormatCheckbox(m.lists[m.active].Len() > 0 && m.controllers[m.active].AllChecked()) + " all"
	return strings.Join(tabs, " ") + "   " + all
}

func (m pickModel) renderList() string {
	var s strings.Builder
	list := m.lists[m.active]
	h := m.listHeight()

	if list.Len() == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(1, 4)
		text := "No new media found."
		if m.active == paneExisting {
			text = "Nothing attached to this ticket yet."
		}
		if m.loading {
			text = "Loading..."
		}
		s.WriteString(emptyStyle.Render(text))
		s.WriteString(strings.Repeat("\n", h-2))
		return s.String()
	}

	end := list.offset + h
	if end > list.Len() {
		end = list.Len()
	}
	for i := list.offset; i < end; i++ {
		s.WriteString(m.renderRow(list, i))
		s.WriteString("\n")
	}
	for i := end - list.offset; i < h; i++ {
		s.WriteString("\n")
	}
	return s.String()
}

func (m pickModel) renderRow(list *mediaList, i int) string {
	card := list.cards[i]

	cursor := "  "
	titleStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
	if i == list.cursor {
		cursor = ui.StyleCursor.Render("▶ ")
		titleStyle = ui.StylePrimary
	}

	titleWidth := m.width - 60
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := ui.Truncate(card.Item.Title(), titleWidth)

	thumbWidth := m.width - checkboxCols - titleWidth - 16
	if thumbWidth < 10 {
		thumbWidth = 10
	}

	return fmt.Sprintf("%s%s %s  %s  %s",
		cursor,
		ui.FormatCheckbox(list.checked[i]),
		padRight(titleStyle.Render(title), titleWidth),
		ui.StyleMuted.Render(fmt.Sprintf("%11s", formatDimensions(card.Item.Width, card.Item.Height))),
		ui.StyleSubtle.Render(ui.Truncate(card.ThumbURL, thumbWidth)),
	)
}

func (m pickModel) renderFooter() string {
	var statusLine string
	switch {
	case m.loading:
		statusLine = m.spinner.View() + ui.StyleMuted.Render(" Loading...")
	case m.message != "" && time.Now().Before(m.messageExpiry):
		statusLine = m.messageStyle.Render(m.message)
	default:
		checked := len(m.controllers[m.active].CheckedIndices())
		text := fmt.Sprintf("%d selected", checked)
		if m.active == paneNew && m.hasMore {
			text += "  more available (m)"
		}
		statusLine = ui.StyleMuted.Render(text)
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		statusLine,
		m.help.View(m.keys),
	))
}

func (m pickModel) viewHelp() string {
	helpStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2)

	content := ui.StyleTitle.Render("Picker Shortcuts") + "\n\n" +
		m.help.View(m.keys) + "\n\n" +
		ui.StyleMuted.Render("Shift+click toggles every entry between the last toggle and the clicked one.") + "\n" +
		ui.StyleMuted.Render("Press ? or esc to return")

	return helpStyle.Render(content)
}

func padRight(s string, width int) string {
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}
