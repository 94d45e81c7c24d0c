// Package dashboard holds the client-side state of the company directory
// dashboard and the terminal UI that drives it.
package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gartstein/companydir/pkg/client"
)

var (
	ErrEditInProgress = errors.New("another record is being edited")
	ErrUnknownRecord  = errors.New("record not in list")
	ErrClearNumber    = errors.New("size and founded cannot be cleared once set")
)

// Mode is the form's edit mode.
type Mode int

const (
	Idle Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "idle"
}

// EditState is Idle, or Editing a single record by id.
type EditState struct {
	Mode Mode
	ID   string
}

// Draft mirrors the form fields as typed. Numbers stay strings until Input.
type Draft struct {
	Name     string
	Location string
	Size     string
	Founded  string
	Industry string
}

// DraftFrom fills a draft from an existing record.
func DraftFrom(c client.Company) Draft {
	d := Draft{
		Name:     c.Name,
		Location: c.Location,
		Industry: c.Industry,
	}
	if c.Size != nil {
		d.Size = strconv.Itoa(*c.Size)
	}
	if c.Founded != nil {
		d.Founded = strconv.Itoa(*c.Founded)
	}
	return d
}

// Input converts the draft to a create body. Blank fields are left out.
func (d Draft) Input() (client.CompanyInput, error) {
	var in client.CompanyInput
	if v := strings.TrimSpace(d.Name); v != "" {
		in.Name = &v
	}
	if v := strings.TrimSpace(d.Location); v != "" {
		in.Location = &v
	}
	return d.withOptional(in)
}

// UpdateInput converts the draft to an update body. Name and location are
// always sent, even when blank.
func (d Draft) UpdateInput() (client.CompanyInput, error) {
	name := strings.TrimSpace(d.Name)
	location := strings.TrimSpace(d.Location)
	return d.withOptional(client.CompanyInput{Name: &name, Location: &location})
}

func (d Draft) withOptional(in client.CompanyInput) (client.CompanyInput, error) {
	if v := strings.TrimSpace(d.Industry); v != "" {
		in.Industry = &v
	}

	var err error
	if in.Size, err = parseOptionalInt("size", d.Size); err != nil {
		return client.CompanyInput{}, err
	}
	if in.Founded, err = parseOptionalInt("founded", d.Founded); err != nil {
		return client.CompanyInput{}, err
	}
	return in, nil
}

func parseOptionalInt(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field)
	}
	return &v, nil
}

// State is the dashboard's record list, form draft and edit state. It does
// no I/O; callers apply API results through the Applied* methods.
type State struct {
	records []client.Company
	draft   Draft
	edit    EditState
}

// NewState returns an empty Idle state.
func NewState() *State {
	return &State{}
}

// Records returns the current list.
func (s *State) Records() []client.Company {
	out := make([]client.Company, len(s.records))
	copy(out, s.records)
	return out
}

func (s *State) Edit() EditState { return s.edit }

func (s *State) Draft() Draft { return s.draft }

// SetDraft replaces the form contents.
func (s *State) SetDraft(d Draft) { s.draft = d }

// Input builds the request body for the current mode: a create body in
// Idle, an update body in Editing. The API treats a missing number as
// unchanged, so blanking a size or founded year that the record has is
// rejected here rather than sent as a no-op.
func (s *State) Input() (client.CompanyInput, error) {
	if s.edit.Mode != Editing {
		return s.draft.Input()
	}
	in, err := s.draft.UpdateInput()
	if err != nil {
		return client.CompanyInput{}, err
	}
	if i := s.indexOf(s.edit.ID); i >= 0 {
		current := s.records[i]
		if (current.Size != nil && in.Size == nil) || (current.Founded != nil && in.Founded == nil) {
			return client.CompanyInput{}, ErrClearNumber
		}
	}
	return in, nil
}

// CanEdit reports whether the edit control for id is enabled. While a
// record is being edited only that record's control stays enabled.
func (s *State) CanEdit(id string) bool {
	return s.edit.Mode == Idle || s.edit.ID == id
}

// StartEdit moves to Editing(id) and loads the record into the draft.
func (s *State) StartEdit(id string) error {
	if !s.CanEdit(id) {
		return ErrEditInProgress
	}
	i := s.indexOf(id)
	if i < 0 {
		return ErrUnknownRecord
	}
	s.edit = EditState{Mode: Editing, ID: id}
	s.draft = DraftFrom(s.records[i])
	return nil
}

// Cancel returns to Idle and clears the draft.
func (s *State) Cancel() {
	s.edit = EditState{}
	s.draft = Draft{}
}

// Loaded replaces the record list with a fetch result.
func (s *State) Loaded(records []client.Company) {
	s.records = append([]client.Company(nil), records...)
}

// AppliedCreate appends a newly created record and clears the draft.
func (s *State) AppliedCreate(c client.Company) {
	s.records = append(s.records, c)
	if s.edit.Mode == Idle {
		s.draft = Draft{}
	}
}

// AppliedUpdate replaces the matching record and returns to Idle.
func (s *State) AppliedUpdate(c client.Company) {
	if i := s.indexOf(c.ID); i >= 0 {
		s.records[i] = c
	}
	if s.edit.ID == c.ID {
		s.Cancel()
	}
}

// AppliedDelete removes the record. Deleting the record under edit returns
// to Idle.
func (s *State) AppliedDelete(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.records = append(s.records[:i], s.records[i+1:]...)
	}
	if s.edit.Mode == Editing && s.edit.ID == id {
		s.Cancel()
	}
}

func (s *State) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
