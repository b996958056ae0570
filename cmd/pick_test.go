package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports/mocks"
	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/config"
)

const testExistingURL = "https://tracker.example.org/api/tracker/mediainfo/7/"

func testItem(name string) domain.MediaItem {
	return domain.MediaItem{
		CanonicalTitle: "File:" + name,
		Name:           name,
		URL:            "https://upload.wikimedia.org/wikipedia/commons/a/ab/" + name,
		DescriptionURL: "https://commons.wikimedia.org/wiki/File:" + name,
		Width:          800,
		Height:         600,
	}
}

func testPage(cont string, names ...string) *domain.ImageList {
	list := &domain.ImageList{Continue: cont}
	for _, n := range names {
		list.Items = append(list.Items, testItem(n))
	}
	return list
}

type pickFixture struct {
	tracker *mocks.MockTrackerBackend
	media   *mocks.MockMediaRepository
}

// newTestPicker builds a sized picker for ticket 42 and runs its initial load
func newTestPicker(t *testing.T, pages ...*domain.ImageList) (pickModel, pickFixture) {
	t.Helper()

	tracker := mocks.NewMockTrackerBackend()
	tracker.AttachedByID["42"] = []domain.AttachedMedia{
		{APIURL: testExistingURL, CanonicalTitle: "File:Old.jpg", ThumbURL: "https://thumbs.example.org/old.jpg"},
	}
	media := mocks.NewMockMediaRepository(pages...)

	deps := pickDeps{
		tracker: tracker,
		media:   media,
		thumbs:  services.NewThumbnailService(media, 200, zerolog.Nop()),
		submit:  services.NewSubmissionService(tracker, "https://tracker.example.org"),
		workers: 2,
	}
	q := domain.SearchQuery{Mode: domain.ModeByUploader, Term: "Alice", Limit: 25}

	m := newPickModel(context.Background(), deps, "42", q, "Alice")
	m = feed(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = feed(t, m, m.reload()())
	return m, pickFixture{tracker: tracker, media: media}
}

func feed(t *testing.T, m pickModel, msg tea.Msg) pickModel {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(pickModel)
}

func press(t *testing.T, m pickModel, keys ...string) pickModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = feed(t, m, msg)
	}
	return m
}

// collect runs cmd and any batched children, returning the messages that are
// not spinner ticks. It must not be used on commands holding a tea.Tick.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func checkedOf(l *mediaList) []int {
	var out []int
	for i := range l.checked {
		if l.checked[i] {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPickModelInitialLoad(t *testing.T) {
	m, _ := newTestPicker(t, testPage("next", "A.jpg", "B.jpg", "Old.jpg", "C.jpg"))

	if m.loading {
		t.Error("Expected loading to be false after the initial load")
	}
	if got := m.lists[paneNew].Len(); got != 3 {
		t.Errorf("Expected 3 new results with the attached file hidden, got %d", got)
	}
	if got := m.lists[paneExisting].Len(); got != 1 {
		t.Errorf("Expected 1 attached record, got %d", got)
	}
	if !m.hasMore {
		t.Error("Expected hasMore with a continuation token")
	}
	if m.lists[paneExisting].cards[0].ThumbURL != "https://thumbs.example.org/old.jpg" {
		t.Errorf("Expected stored thumbnail for attached record, got %q", m.lists[paneExisting].cards[0].ThumbURL)
	}
}

func TestPickToggleAndRangeKeys(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg", "B.jpg", "C.jpg", "D.jpg", "E.jpg"))

	m = press(t, m, "space", "down", "down", "down", "X")

	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0, 1, 2, 3}) {
		t.Errorf("Expected range 0..3 checked, got %v", got)
	}

	// Plain toggle does not extend the range
	m = press(t, m, "down", "space")
	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("Expected only entry 4 added, got %v", got)
	}
}

func TestPickBulkKeys(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg", "B.jpg", "C.jpg"))

	m = press(t, m, "a")
	if !m.controllers[paneNew].AllChecked() {
		t.Error("Expected 'a' to select all")
	}

	m = press(t, m, "a")
	if len(checkedOf(m.lists[paneNew])) != 0 {
		t.Error("Expected second 'a' to deselect all")
	}

	m = press(t, m, "space", "i")
	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{1, 2}) {
		t.Errorf("Expected inverted selection [1 2], got %v", got)
	}

	m = press(t, m, "A")
	if len(checkedOf(m.lists[paneNew])) != 0 {
		t.Error("Expected 'A' to deselect all")
	}
}

func TestPickListsHaveSeparateSelections(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg", "B.jpg"))

	m = press(t, m, "space", "tab", "space")

	if m.active != paneExisting {
		t.Fatalf("Expected attached pane active, got %v", m.active)
	}
	if got := checkedOf(m.lists[paneExisting]); !equalInts(got, []int{0}) {
		t.Errorf("Expected attached entry 0 checked, got %v", got)
	}
	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0}) {
		t.Errorf("Expected new selection untouched, got %v", got)
	}

	// A range on the attached list must not reach into the new list
	if prev, ok := m.controllers[paneNew].Previous(); !ok || prev != 0 {
		t.Errorf("Expected new list to keep its own previous index, got %d %v", prev, ok)
	}
}

func TestPickAttachSubmitsCheckedNames(t *testing.T) {
	m, fx := newTestPicker(t, testPage("", "A.jpg", "B.jpg", "C.jpg"))

	m = press(t, m, "space", "down", "down", "space")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(pickModel)

	if !m.loading {
		t.Error("Expected loading while attaching")
	}

	var done *attachDoneMsg
	for _, msg := range collect(cmd) {
		if d, ok := msg.(attachDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("Expected an attachDoneMsg")
	}
	if done.resp.Outcome != domain.OutcomeSuccess {
		t.Errorf("Expected success outcome, got %q", done.resp.Outcome)
	}

	if len(fx.tracker.Attached) != 1 {
		t.Fatalf("Expected one batch, got %d", len(fx.tracker.Attached))
	}
	batch := fx.tracker.Attached[0]
	if len(batch) != 2 || batch[0].Name != "File:A.jpg" || batch[1].Name != "File:C.jpg" {
		t.Errorf("Unexpected batch: %+v", batch)
	}
	if batch[0].Ticket != "/api/tracker/tickets/42/" {
		t.Errorf("Expected ticket reference, got %q", batch[0].Ticket)
	}

	m = feed(t, m, *done)
	if !strings.Contains(m.message, "Attached 2") {
		t.Errorf("Expected attach status, got %q", m.message)
	}
}

func TestPickDetachUsesRecordURLs(t *testing.T) {
	m, fx := newTestPicker(t, testPage("", "A.jpg"))

	m = press(t, m, "tab", "space")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	var done *detachDoneMsg
	for _, msg := range collect(cmd) {
		if d, ok := msg.(detachDoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatal("Expected a detachDoneMsg")
	}
	if len(fx.tracker.Detached) != 1 || fx.tracker.Detached[0] != testExistingURL {
		t.Errorf("Expected detach of %s, got %v", testExistingURL, fx.tracker.Detached)
	}
	if done.report.Succeeded != 1 {
		t.Errorf("Expected 1 success, got %d", done.report.Succeeded)
	}
}

func TestPickSubmitWithoutSelection(t *testing.T) {
	m, fx := newTestPicker(t, testPage("", "A.jpg"))

	m = press(t, m, "enter")

	if m.message != "Nothing selected" {
		t.Errorf("Expected 'Nothing selected', got %q", m.message)
	}
	if m.loading {
		t.Error("Expected no request for an empty selection")
	}
	if len(fx.tracker.Attached) != 0 {
		t.Error("Expected no attach call")
	}
}

func TestPickLoadMore(t *testing.T) {
	m, fx := newTestPicker(t,
		testPage("next", "A.jpg", "B.jpg"),
		testPage("", "C.jpg"),
	)

	m = press(t, m, "space")
	m = press(t, m, "m")
	if !m.loading {
		t.Fatal("Expected loading after 'm'")
	}

	// A second request while one is in flight is ignored
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if cmd != nil {
		t.Error("Expected 'm' to be ignored while loading")
	}

	m = feed(t, m, m.loadMore()())

	if got := m.lists[paneNew].Len(); got != 3 {
		t.Errorf("Expected 3 results after load more, got %d", got)
	}
	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0}) {
		t.Errorf("Expected selection preserved across load more, got %v", got)
	}
	if m.hasMore {
		t.Error("Expected no more pages")
	}
	if len(fx.media.Calls) != 2 || fx.media.Calls[1].Get("aicontinue") != "next" {
		t.Errorf("Expected the second call to continue from 'next', got %v", fx.media.Calls)
	}

	m = press(t, m, "m")
	if m.message != "No more results" {
		t.Errorf("Expected 'No more results', got %q", m.message)
	}
}

func TestPickNewSearchIgnoredWhileLoading(t *testing.T) {
	m, _ := newTestPicker(t,
		testPage("next", "A.jpg", "B.jpg"),
		testPage("", "C.jpg"),
	)

	m = press(t, m, "m")
	pending := m.loadMore()

	m = press(t, m, "/")
	if m.mode != modeList {
		t.Error("Expected '/' to be ignored while loading")
	}

	// A term typed before the fetch started cannot be submitted until it ends
	m.mode = modeTerm
	m.termInput.SetValue("Zed")
	m.termInput.Focus()
	m = press(t, m, "enter")
	if m.query.Term != "Alice" {
		t.Errorf("Expected term unchanged while loading, got %q", m.query.Term)
	}
	if m.mode != modeTerm {
		t.Error("Expected term input to stay open while loading")
	}
	if !strings.HasPrefix(m.message, "Still loading") {
		t.Errorf("Expected a still-loading warning, got %q", m.message)
	}

	m = feed(t, m, pending())
	if m.loading {
		t.Error("Expected loading to end after the page arrived")
	}
	if got := m.lists[paneNew].Len(); got != 3 {
		t.Errorf("Expected 3 results after load more, got %d", got)
	}

	m = press(t, m, "enter")
	if m.query.Term != "Zed" || !m.loading {
		t.Errorf("Expected search for 'Zed' once idle, got term %q loading %v", m.query.Term, m.loading)
	}
}

func TestPickModeSwitch(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg"))

	m = press(t, m, "f")
	if m.query.Mode != domain.ModeByFilenamePrefix {
		t.Errorf("Expected filename mode, got %q", m.query.Mode)
	}
	if m.mode != modeTerm {
		t.Fatal("Expected term input after switching to filename mode")
	}
	if m.termInput.Value() != "" {
		t.Errorf("Expected cleared term, got %q", m.termInput.Value())
	}

	m = press(t, m, "P", "r", "a", "enter")
	if m.query.Term != "Pra" {
		t.Errorf("Expected term 'Pra', got %q", m.query.Term)
	}
	if !m.loading {
		t.Error("Expected a search to start")
	}

	m.loading = false
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	m = updated.(pickModel)
	if m.query.Mode != domain.ModeByUploader || m.query.Term != "Alice" {
		t.Errorf("Expected uploader mode with profile username, got %q %q", m.query.Mode, m.query.Term)
	}
}

func TestPickTermEscape(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg"))

	m = press(t, m, "/", "x", "esc")

	if m.mode != modeList {
		t.Error("Expected list mode after esc")
	}
	if m.query.Term != "Alice" {
		t.Errorf("Expected term unchanged, got %q", m.query.Term)
	}
}

func TestPickMouseShiftClick(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg", "B.jpg", "C.jpg", "D.jpg"))

	click := func(row int, x int, shift bool) tea.MouseMsg {
		return tea.MouseMsg{
			X:      x,
			Y:      listTop + row,
			Shift:  shift,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonLeft,
		}
	}

	m = feed(t, m, click(0, 2, false))
	m = feed(t, m, click(3, 2, true))

	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0, 1, 2, 3}) {
		t.Errorf("Expected shift+click range 0..3, got %v", got)
	}
	if m.controllers[paneNew].ModifierHeld() {
		t.Error("Expected modifier released after the click")
	}

	// Clicking the card body toggles through the thumbnail
	m = feed(t, m, click(1, 40, false))
	if m.lists[paneNew].checked[1] {
		t.Error("Expected entry 1 unchecked by thumbnail click")
	}
	if !strings.Contains(m.message, "Unselected File:B.jpg") {
		t.Errorf("Expected thumbnail change in status, got %q", m.message)
	}

	// Rows outside the list are ignored
	m = feed(t, m, click(-2, 2, false))
	if got := checkedOf(m.lists[paneNew]); !equalInts(got, []int{0, 2, 3}) {
		t.Errorf("Expected header click ignored, got %v", got)
	}
}

func TestPickShowsSearchNotices(t *testing.T) {
	m, _ := newTestPicker(t, testPage(""))

	if m.message != services.MsgNoUploads {
		t.Errorf("Expected no-uploads notice, got %q", m.message)
	}
}

func TestPickRemoteErrorNotice(t *testing.T) {
	m, _ := newTestPicker(t, &domain.ImageList{APIError: &domain.APIError{Code: "baduser", Info: "Invalid user"}})

	if !strings.HasPrefix(m.message, services.MsgRemoteError) {
		t.Errorf("Expected remote error notice, got %q", m.message)
	}
	if m.lists[paneNew].Len() != 0 {
		t.Error("Expected no results on remote error")
	}
}

func TestPickSearchTransportError(t *testing.T) {
	m, fx := newTestPicker(t, testPage("next", "A.jpg", "B.jpg"))
	if m.lists[paneNew].Len() != 2 {
		t.Fatalf("Expected 2 results before the failure, got %d", m.lists[paneNew].Len())
	}

	fx.media.ListErr = errors.New("connection reset")
	m = feed(t, m, m.reload()())

	if m.message != services.MsgUnknownSearch {
		t.Errorf("Expected transport error notice, got %q", m.message)
	}
	if m.lists[paneNew].Len() != 0 {
		t.Error("Expected stale results cleared after a failed search")
	}
	if m.hasMore {
		t.Error("Expected load more disabled after a failed search")
	}
	if m.lists[paneExisting].Len() != 1 {
		t.Error("Expected existing attachments kept")
	}
}

func TestPickConfigReload(t *testing.T) {
	saved := appConfig
	t.Cleanup(func() { appConfig = saved })

	m, _ := newTestPicker(t, testPage("", "A.jpg"))

	cfg := config.DefaultConfig()
	cfg.SearchLimit = 50
	cfg.Category = "Animals"
	cfg.DetachWorkers = 1
	m = feed(t, m, configReloadedMsg{cfg: cfg})

	if m.query.Limit != 50 || m.query.Category != "Animals" {
		t.Errorf("Expected query updated from config, got %+v", m.query)
	}
	if m.deps.workers != 1 {
		t.Errorf("Expected workers=1, got %d", m.deps.workers)
	}
	if m.message != "Config reloaded" {
		t.Errorf("Expected reload status, got %q", m.message)
	}
}

func TestPickView(t *testing.T) {
	m, _ := newTestPicker(t, testPage("next", "A.jpg", "B.jpg"))
	m = press(t, m, "a")

	view := m.View()

	for _, want := range []string{"Ticket 42", "File:A.jpg", "File:B.jpg", "New (2)", "Attached (1)"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestPickHelpToggle(t *testing.T) {
	m, _ := newTestPicker(t, testPage("", "A.jpg"))

	m = press(t, m, "?")
	if m.mode != modeHelp {
		t.Fatal("Expected help mode")
	}
	if !strings.Contains(m.View(), "Picker Shortcuts") {
		t.Error("Expected help view")
	}

	m = press(t, m, "?")
	if m.mode != modeList {
		t.Error("Expected list mode after closing help")
	}
}

func TestBufferedNotifierDrain(t *testing.T) {
	n := &bufferedNotifier{}
	n.Notify(0, "one")
	n.Notify(2, "two")

	got := n.drain()
	if len(got) != 2 || got[1].message != "two" {
		t.Errorf("Unexpected notices: %+v", got)
	}
	if len(n.drain()) != 0 {
		t.Error("Expected drain to empty the buffer")
	}
}
