package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/stayadmin/homestay-editor/pkg/editor"
)

// Main menu entries after the form sections
const (
	menuSaveDraft = "Save draft"
	menuSubmit    = "Submit"
	menuQuit      = "Quit"
)

var statusOptions = []string{editor.StatusDraft, editor.StatusPublished, editor.StatusArchived}

type section struct {
	name string
	run  func(ctx context.Context) error
}

// Session walks an admin through one editor.Controller
type Session struct {
	ctrl     *editor.Controller
	driver   Driver
	logger   logrus.FieldLogger
	sections []section
}

// NewSession creates a terminal session for ctrl
func NewSession(ctrl *editor.Controller, driver Driver, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Session{ctrl: ctrl, driver: driver, logger: logger}
	s.sections = []section{
		{"Basics", s.editBasics},
		{"Location", s.editLocation},
		{"Pricing & capacity", s.editPricing},
		{"Media", s.editMedia},
		{"Tags & SEO", s.editTags},
		{"Contact & visibility", s.editContact},
		{"Rooms", s.editRooms},
		{"Availability", s.editAvailability},
		{"Preview", s.preview},
	}
	return s
}

// Run shows the main menu until the homestay is submitted or the user quits.
// It returns the submit result, or nil when the user left without submitting.
// The local draft is flushed whenever the session ends without a submit.
func (s *Session) Run(ctx context.Context) (*editor.SubmitResult, error) {
	s.ctrl.Mount(ctx)
	if s.ctrl.Restored() {
		if err := s.info(ctx, "Restored your unsaved draft."); err != nil {
			return nil, err
		}
	}

	options := make([]string, 0, len(s.sections)+3)
	for _, sec := range s.sections {
		options = append(options, sec.name)
	}
	options = append(options, menuSaveDraft, menuSubmit, menuQuit)

	for {
		if err := s.info(ctx, StatusLine(s.ctrl)); err != nil {
			return nil, s.leave(err)
		}

		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:  "Edit section",
			Options:  options,
			PageSize: len(options),
		})
		if err != nil {
			return nil, s.leave(err)
		}
		if idx < 0 || idx >= len(options) {
			continue
		}

		if idx < len(s.sections) {
			if err := s.sections[idx].run(ctx); err != nil {
				return nil, s.leave(err)
			}
			continue
		}

		switch options[idx] {
		case menuSaveDraft:
			s.ctrl.SaveDraft()
			if err := s.info(ctx, "Draft saved."); err != nil {
				return nil, s.leave(err)
			}
		case menuSubmit:
			result, err := s.submit(ctx)
			if err != nil {
				return nil, s.leave(err)
			}
			if result != nil {
				return result, nil
			}
		case menuQuit:
			return nil, s.leave(nil)
		}
	}
}

// leave flushes the draft so nothing typed is lost
func (s *Session) leave(err error) error {
	s.ctrl.SaveDraft()
	return err
}

func (s *Session) submit(ctx context.Context) (*editor.SubmitResult, error) {
	if !s.ctrl.CanSubmit() {
		msg := "A save is already in progress."
		if s.ctrl.SlugStatus() == editor.SlugConflict {
			msg = "Slug is already used by another homestay. Change it before submitting."
		}
		return nil, s.info(ctx, msg)
	}

	result, err := s.ctrl.Submit(ctx)
	if err != nil {
		var submitErr *editor.SubmitError
		if errors.As(err, &submitErr) {
			return nil, s.info(ctx, "Error: "+submitErr.Message)
		}
		if errors.Is(err, editor.ErrSubmitBlocked) {
			return nil, s.info(ctx, "Submit is not possible right now.")
		}
		return nil, err
	}

	msg := fmt.Sprintf("Saved homestay %q. Continue at %s", result.Entity.Slug, result.RedirectTo)
	return result, s.info(ctx, msg)
}

func (s *Session) editBasics(ctx context.Context) error {
	if err := s.askString(ctx, editor.Title, "Title", nil); err != nil {
		return err
	}
	if err := s.askString(ctx, editor.Slug, "Slug", nil); err != nil {
		return err
	}
	if err := s.askString(ctx, editor.Summary, "Summary", nil); err != nil {
		return err
	}
	return s.askText(ctx, editor.Description, "Description")
}

func (s *Session) editLocation(ctx context.Context) error {
	for _, f := range []struct {
		field editor.Field[string]
		label string
	}{
		{editor.Address, "Address"},
		{editor.City, "City"},
		{editor.Province, "Province"},
		{editor.Country, "Country"},
	} {
		if err := s.askString(ctx, f.field, f.label, nil); err != nil {
			return err
		}
	}
	if err := s.askFloat(ctx, editor.Latitude, "Latitude"); err != nil {
		return err
	}
	return s.askFloat(ctx, editor.Longitude, "Longitude")
}

func (s *Session) editPricing(ctx context.Context) error {
	if err := s.askFloat(ctx, editor.BasePrice, "Base price per night"); err != nil {
		return err
	}
	if err := s.askString(ctx, editor.Currency, "Currency", validateCurrency); err != nil {
		return err
	}
	for _, f := range []struct {
		field editor.Field[int]
		label string
	}{
		{editor.MaxGuests, "Max guests"},
		{editor.Bedrooms, "Bedrooms"},
		{editor.Bathrooms, "Bathrooms"},
	} {
		if err := s.askInt(ctx, f.field, f.label); err != nil {
			return err
		}
	}
	if err := s.askString(ctx, editor.CheckInTime, "Check-in time", nil); err != nil {
		return err
	}
	return s.askString(ctx, editor.CheckOutTime, "Check-out time", nil)
}

func (s *Session) editMedia(ctx context.Context) error {
	if err := s.askString(ctx, editor.HeroImageURL, "Hero image URL", nil); err != nil {
		return err
	}
	return s.editList(ctx, editor.GalleryURLs, "Gallery URLs")
}

func (s *Session) editTags(ctx context.Context) error {
	if err := s.editList(ctx, editor.Amenities, "Amenities"); err != nil {
		return err
	}
	if err := s.editList(ctx, editor.Tags, "Tags"); err != nil {
		return err
	}
	if err := s.editList(ctx, editor.Keywords, "Keywords"); err != nil {
		return err
	}
	if err := s.askString(ctx, editor.SEOTitle, "SEO title", nil); err != nil {
		return err
	}
	return s.askString(ctx, editor.SEODescription, "SEO description", nil)
}

func (s *Session) editContact(ctx context.Context) error {
	if err := s.askString(ctx, editor.ContactPhone, "Contact phone", nil); err != nil {
		return err
	}
	if err := s.askString(ctx, editor.ContactEmail, "Contact email", nil); err != nil {
		return err
	}

	current := editor.Status.Get(s.ctrl.Form())
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Status",
		Options:      statusOptions,
		DefaultIndex: indexOf(statusOptions, current),
	})
	if err != nil {
		return err
	}
	if idx >= 0 && statusOptions[idx] != current {
		s.ctrl.SetField(editor.Status.Value(statusOptions[idx]))
	}

	if err := s.askBool(ctx, editor.IsFeatured, "Featured"); err != nil {
		return err
	}
	return s.askBool(ctx, editor.IsActive, "Active")
}

func (s *Session) preview(ctx context.Context) error {
	out, err := yaml.Marshal(s.ctrl.Payload())
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	return s.info(ctx, strings.TrimRight(string(out), "\n"))
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, msg)
}

// askString prompts for a string field and writes it back only when changed,
// so accepting a derived slug does not mark it as edited
func (s *Session) askString(ctx context.Context, f editor.Field[string], label string, validate func(string) error) error {
	current := f.Get(s.ctrl.Form())
	value, err := s.driver.Input(ctx, InputConfig{Message: label, Default: current, Validator: validate})
	if err != nil {
		return err
	}
	if value != current {
		s.ctrl.SetField(f.Value(value))
	}
	return nil
}

func (s *Session) askText(ctx context.Context, f editor.Field[string], label string) error {
	current := f.Get(s.ctrl.Form())
	value, err := s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current})
	if err != nil {
		return err
	}
	if value != current {
		s.ctrl.SetField(f.Value(value))
	}
	return nil
}

func (s *Session) askFloat(ctx context.Context, f editor.Field[float64], label string) error {
	current := f.Get(s.ctrl.Form())
	raw, err := s.driver.Input(ctx, InputConfig{
		Message:   label,
		Default:   formatFloat(current),
		Help:      "Leave empty to omit",
		Validator: validateFloat,
	})
	if err != nil {
		return err
	}
	value, err := parseFloat(raw)
	if err != nil {
		return s.info(ctx, fmt.Sprintf("Invalid %s: %v", strings.ToLower(label), err))
	}
	if value != current {
		s.ctrl.SetField(f.Value(value))
	}
	return nil
}

func (s *Session) askInt(ctx context.Context, f editor.Field[int], label string) error {
	current := f.Get(s.ctrl.Form())
	raw, err := s.driver.Input(ctx, InputConfig{
		Message:   label,
		Default:   formatInt(current),
		Help:      "Leave empty to omit",
		Validator: validateInt,
	})
	if err != nil {
		return err
	}
	value, err := parseInt(raw)
	if err != nil {
		return s.info(ctx, fmt.Sprintf("Invalid %s: %v", strings.ToLower(label), err))
	}
	if value != current {
		s.ctrl.SetField(f.Value(value))
	}
	return nil
}

func (s *Session) askBool(ctx context.Context, f editor.Field[bool], label string) error {
	current := f.Get(s.ctrl.Form())
	value, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current})
	if err != nil {
		return err
	}
	if value != current {
		s.ctrl.SetField(f.Value(value))
	}
	return nil
}

// editList adds and removes entries of a list field until the user is done
func (s *Session) editList(ctx context.Context, f editor.ListField, label string) error {
	for {
		items := f.Get(s.ctrl.Form())
		summary := "(empty)"
		if len(items) > 0 {
			summary = strings.Join(items, ", ")
		}
		if err := s.info(ctx, fmt.Sprintf("%s: %s", label, summary)); err != nil {
			return err
		}

		options := []string{"Add", "Done"}
		if len(items) > 0 {
			options = []string{"Add", "Remove", "Done"}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: options})
		if err != nil {
			return err
		}
		if idx < 0 {
			continue
		}

		switch options[idx] {
		case "Add":
			value, err := s.driver.Input(ctx, InputConfig{Message: "Add to " + strings.ToLower(label)})
			if err != nil {
				return err
			}
			if !s.ctrl.AddToList(f, value) {
				if err := s.info(ctx, "Nothing added: the value is empty or already listed."); err != nil {
					return err
				}
			}
		case "Remove":
			pick, err := s.driver.Select(ctx, SelectConfig{Message: "Remove from " + strings.ToLower(label), Options: items})
			if err != nil {
				return err
			}
			if pick >= 0 {
				s.ctrl.RemoveFromList(f, items[pick])
			}
		default:
			return nil
		}
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return v, nil
}

func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	return v, nil
}

func validateFloat(raw string) error {
	_, err := parseFloat(raw)
	return err
}

func validateInt(raw string) error {
	_, err := parseInt(raw)
	return err
}

func validateCurrency(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" && len(raw) != 3 {
		return errors.New("use a three letter currency code")
	}
	return nil
}

// splitList parses a comma separated answer into trimmed, non-blank entries
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
