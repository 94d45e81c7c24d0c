package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gartstein/companydir/pkg/client"
	"go.uber.org/zap"
)

// Industries are the choices offered by the form. Blank leaves the server
// default in place.
var Industries = []string{
	"Technology",
	"Finance",
	"Healthcare",
	"Education",
	"E-Commerce",
	"Transportation",
	"Other",
}

// API is the subset of the gateway client the dashboard calls.
type API interface {
	List(ctx context.Context, opts client.ListOptions) ([]client.Company, error)
	Create(ctx context.Context, in client.CompanyInput) (*client.Company, error)
	Update(ctx context.Context, id string, in client.CompanyInput) (*client.Company, error)
	Delete(ctx context.Context, id string) error
}

type focusArea int

const (
	focusTable focusArea = iota
	focusSearch
	focusForm
)

const (
	fieldName = iota
	fieldLocation
	fieldSize
	fieldFounded
	fieldIndustry
	fieldCount
)

type (
	loadedMsg  struct{ records []client.Company }
	createdMsg struct{ company client.Company }
	updatedMsg struct{ company client.Company }
	deletedMsg struct{ id string }
	errMsg     struct {
		op  string
		err error
	}
)

// Option configures a Model.
type Option func(*Model)

// WithSearchDelay overrides the search debounce period.
func WithSearchDelay(d time.Duration) Option {
	return func(m *Model) { m.debouncer = NewDebouncer(d) }
}

// WithRequestTimeout bounds each API call.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

// Model is the Bubble Tea model of the dashboard.
type Model struct {
	api       API
	logger    *zap.Logger
	state     *State
	debouncer *Debouncer
	timeout   time.Duration

	table    table.Model
	search   textinput.Model
	inputs   []textinput.Model
	industry int // index into Industries, -1 for blank

	focus  focusArea
	field  int
	status string
	err    string
	width  int
	styles Styles
}

// NewModel creates a dashboard bound to api.
func NewModel(api API, logger *zap.Logger, opts ...Option) Model {
	search := textinput.New()
	search.Placeholder = "Search by name, industry or location"
	search.Prompt = "/ "
	search.CharLimit = 100

	placeholders := []string{"Company name", "City, Country", "Employees", "Year"}
	inputs := make([]textinput.Model, fieldIndustry)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 100
		inputs[i] = in
	}
	inputs[fieldSize].CharLimit = 9
	inputs[fieldFounded].CharLimit = 4

	t := table.New(
		table.WithColumns(tableColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := Model{
		api:       api,
		logger:    logger.Named("dashboard"),
		state:     NewState(),
		debouncer: NewDebouncer(DefaultSearchDelay),
		timeout:   10 * time.Second,
		table:     t,
		search:    search,
		inputs:    inputs,
		industry:  -1,
		styles:    DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Industry", Width: 14},
		{Title: "Location", Width: 20},
		{Title: "Size", Width: 8},
		{Title: "Founded", Width: 8},
		{Title: "Edit", Width: 5},
	}
}

// State exposes the underlying dashboard state.
func (m Model) State() *State { return m.state }

// Init fetches the full list.
func (m Model) Init() tea.Cmd {
	return m.load("")
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width - 4)
		return m, nil

	case loadedMsg:
		m.state.Loaded(msg.records)
		m.refreshTable()
		m.err = ""
		m.status = fmt.Sprintf("%d companies", len(msg.records))
		return m, nil

	case createdMsg:
		m.state.AppliedCreate(msg.company)
		m.refreshTable()
		if m.state.Edit().Mode == Idle {
			m.resetForm()
		}
		m.status = fmt.Sprintf("Created %s", msg.company.Name)
		return m, nil

	case updatedMsg:
		m.state.AppliedUpdate(msg.company)
		m.refreshTable()
		if m.state.Edit().Mode == Idle {
			m.resetForm()
			m.focusOn(focusTable)
		}
		m.status = fmt.Sprintf("Updated %s", msg.company.Name)
		return m, nil

	case deletedMsg:
		m.state.AppliedDelete(msg.id)
		m.refreshTable()
		if m.state.Edit().Mode == Idle && m.focus == focusForm {
			m.resetForm()
			m.focusOn(focusTable)
		}
		m.status = "Company deleted"
		return m, nil

	case errMsg:
		m.logger.Error("request failed", zap.String("op", msg.op), zap.Error(msg.err))
		m.err = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
		return m, nil

	case searchTickMsg:
		if !m.debouncer.Ready(msg) {
			return m, nil
		}
		return m, m.load(msg.query)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusForm:
			return m.updateForm(msg)
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		cmd := m.focusOn(focusSearch)
		return m, cmd
	case "n", "tab":
		if m.state.Edit().Mode == Editing {
			cmd := m.focusOn(focusForm)
			return m, cmd
		}
		m.resetForm()
		cmd := m.focusOn(focusForm)
		return m, cmd
	case "e", "enter":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.state.StartEdit(rec.ID); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.loadDraft(m.state.Draft())
		m.refreshTable()
		cmd := m.focusOn(focusForm)
		return m, cmd
	case "d":
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.remove(rec.ID)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		cmd := m.focusOn(focusTable)
		return m, cmd
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debouncer.Trigger(strings.TrimSpace(m.search.Value())))
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state.Cancel()
		m.resetForm()
		m.refreshTable()
		cmd := m.focusOn(focusTable)
		return m, cmd
	case "tab", "down":
		m.field = (m.field + 1) % fieldCount
		cmd := m.focusField()
		return m, cmd
	case "shift+tab", "up":
		m.field = (m.field + fieldCount - 1) % fieldCount
		cmd := m.focusField()
		return m, cmd
	case "enter", "ctrl+s":
		cmd := m.submit()
		return m, cmd
	}

	if m.field == fieldIndustry {
		switch msg.String() {
		case "left", "h":
			m.industry--
			if m.industry < -1 {
				m.industry = len(Industries) - 1
			}
		case "right", "l", " ":
			m.industry++
			if m.industry >= len(Industries) {
				m.industry = -1
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

// submit creates in Idle and updates in Editing.
func (m *Model) submit() tea.Cmd {
	m.state.SetDraft(m.draft())
	in, err := m.state.Input()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.err = ""

	edit := m.state.Edit()
	api, timeout := m.api, m.timeout
	if edit.Mode == Editing {
		id := edit.ID
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			c, err := api.Update(ctx, id, in)
			if err != nil {
				return errMsg{op: "update", err: err}
			}
			return updatedMsg{company: *c}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		c, err := api.Create(ctx, in)
		if err != nil {
			return errMsg{op: "create", err: err}
		}
		return createdMsg{company: *c}
	}
}

func (m Model) load(query string) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		records, err := api.List(ctx, client.ListOptions{Search: query})
		if err != nil {
			return errMsg{op: "load", err: err}
		}
		return loadedMsg{records: records}
	}
}

func (m Model) remove(id string) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := api.Delete(ctx, id); err != nil {
			return errMsg{op: "delete", err: err}
		}
		return deletedMsg{id: id}
	}
}

func (m Model) selected() (client.Company, bool) {
	records := m.state.Records()
	i := m.table.Cursor()
	if i < 0 || i >= len(records) {
		return client.Company{}, false
	}
	return records[i], true
}

func (m *Model) focusOn(area focusArea) tea.Cmd {
	m.focus = area
	m.search.Blur()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.table.Blur()

	switch area {
	case focusSearch:
		return m.search.Focus()
	case focusForm:
		return m.focusField()
	default:
		m.table.Focus()
		return nil
	}
}

func (m *Model) focusField() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if m.field < len(m.inputs) {
		return m.inputs[m.field].Focus()
	}
	return nil
}

func (m *Model) draft() Draft {
	d := Draft{
		Name:     m.inputs[fieldName].Value(),
		Location: m.inputs[fieldLocation].Value(),
		Size:     m.inputs[fieldSize].Value(),
		Founded:  m.inputs[fieldFounded].Value(),
	}
	if m.industry >= 0 {
		d.Industry = Industries[m.industry]
	}
	return d
}

func (m *Model) loadDraft(d Draft) {
	m.inputs[fieldName].SetValue(d.Name)
	m.inputs[fieldLocation].SetValue(d.Location)
	m.inputs[fieldSize].SetValue(d.Size)
	m.inputs[fieldFounded].SetValue(d.Founded)
	m.industry = -1
	for i, name := range Industries {
		if name == d.Industry {
			m.industry = i
		}
	}
	m.field = fieldName
}

func (m *Model) resetForm() {
	m.loadDraft(Draft{})
	m.state.SetDraft(Draft{})
}

func (m *Model) refreshTable() {
	records := m.state.Records()
	rows := make([]table.Row, 0, len(records))
	for _, c := range records {
		edit := "e"
		if !m.state.CanEdit(c.ID) {
			edit = "-"
		}
		rows = append(rows, table.Row{
			c.Name,
			c.Industry,
			c.Location,
			optionalInt(c.Size),
			optionalInt(c.Founded),
			edit,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// View renders the dashboard.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Company Directory"))
	sb.WriteString("\n\n")

	searchPanel := m.styles.Panel
	if m.focus == focusSearch {
		searchPanel = m.styles.ActivePanel
	}
	sb.WriteString(searchPanel.Render(m.search.View()))
	sb.WriteString("\n")

	tablePanel := m.styles.Panel
	if m.focus == focusTable {
		tablePanel = m.styles.ActivePanel
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		tablePanel.Render(m.table.View()),
		" ",
		m.formView(),
	))
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString(m.styles.Error.Render(m.err))
	} else {
		sb.WriteString(m.styles.Status.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render(m.helpText()))
	return sb.String()
}

func (m Model) formView() string {
	title := "New company"
	if edit := m.state.Edit(); edit.Mode == Editing {
		title = "Edit company"
	}

	labels := []string{"Name", "Location", "Size", "Founded"}
	lines := []string{m.styles.Title.Render(title), ""}
	for i, in := range m.inputs {
		lines = append(lines, m.styles.Label.Render(labels[i])+in.View())
	}

	industry := "(default)"
	if m.industry >= 0 {
		industry = Industries[m.industry]
	}
	marker := "  "
	if m.focus == focusForm && m.field == fieldIndustry {
		marker = "> "
	}
	lines = append(lines, m.styles.Label.Render("Industry")+marker+"< "+industry+" >")

	panel := m.styles.Panel
	if m.focus == focusForm {
		panel = m.styles.ActivePanel
	}
	return panel.Render(strings.Join(lines, "\n"))
}

func (m Model) helpText() string {
	switch m.focus {
	case focusSearch:
		return "type to search • enter/esc: back to list"
	case focusForm:
		return "tab: next field • ←/→: industry • enter: save • esc: cancel"
	default:
		return "/: search • n: new • e: edit • d: delete • q: quit"
	}
}
