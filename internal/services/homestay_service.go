package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/database"
	"github.com/stayadmin/homestay-editor/internal/models"
	"github.com/stayadmin/homestay-editor/pkg/editor"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
	"github.com/stayadmin/homestay-editor/pkg/slug"
	"github.com/stayadmin/homestay-editor/pkg/validator"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	// longest range a single request may block
	maxBlockDays = editor.MaxBlockDays
)

// ErrSlugTaken is returned when another homestay already uses the slug
var ErrSlugTaken = errors.New("slug is already used by another homestay")

// ValidationError describes an invalid homestay payload
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// HomestayStore is the persistence the homestay service needs
type HomestayStore interface {
	Search(query string, limit int) ([]models.Homestay, error)
	GetByID(id uuid.UUID) (*models.Homestay, error)
	SlugExists(slug string, excludeID uuid.UUID) (bool, error)
	Create(h *models.Homestay) error
	Update(h *models.Homestay) error
	Delete(id uuid.UUID) error
}

// HomestayService handles homestay business logic
type HomestayService struct {
	store     HomestayStore
	publisher EventPublisher
	sanitizer *bluemonday.Policy
	phones    *validator.PhoneValidator
	logger    *logrus.Logger
	now       func() time.Time
}

// NewHomestayService creates a new homestay service
func NewHomestayService(store HomestayStore, publisher EventPublisher, logger *logrus.Logger) *HomestayService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &HomestayService{
		store:     store,
		publisher: publisher,
		sanitizer: bluemonday.UGCPolicy(),
		phones:    validator.NewPhoneValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Search finds homestays by slug, title or city
func (s *HomestayService) Search(query string, limit int) ([]models.Homestay, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.store.Search(query, limit)
}

// Get returns one homestay with rooms and availability
func (s *HomestayService) Get(id string) (*models.Homestay, error) {
	homestayID, err := uuid.Parse(id)
	if err != nil {
		return nil, database.ErrHomestayNotFound
	}
	return s.store.GetByID(homestayID)
}

// Create validates and stores a new homestay
func (s *HomestayService) Create(ctx context.Context, payload homestayapi.Payload) (*models.Homestay, error) {
	h, err := s.fromPayload(payload)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(h.Slug, uuid.Nil); err != nil {
		return nil, err
	}

	h.ID = uuid.New()
	if err := s.store.Create(h); err != nil {
		return nil, s.translate(err)
	}

	s.logger.WithFields(logrus.Fields{
		"homestay_id": h.ID,
		"slug":        h.Slug,
		"rooms":       len(h.Rooms),
		"blocked":     len(h.Availability),
	}).Info("Homestay created")

	s.publish(ctx, HomestayEvent{
		Type:       EventHomestaySaved,
		Action:     "created",
		HomestayID: h.ID.String(),
		Slug:       h.Slug,
		Status:     h.Status,
	})

	return s.store.GetByID(h.ID)
}

// Update validates and replaces an existing homestay
func (s *HomestayService) Update(ctx context.Context, id string, payload homestayapi.Payload) (*models.Homestay, error) {
	homestayID, err := uuid.Parse(id)
	if err != nil {
		return nil, database.ErrHomestayNotFound
	}
	h, err := s.fromPayload(payload)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(h.Slug, homestayID); err != nil {
		return nil, err
	}

	h.ID = homestayID
	if err := s.store.Update(h); err != nil {
		return nil, s.translate(err)
	}

	s.logger.WithFields(logrus.Fields{
		"homestay_id": h.ID,
		"slug":        h.Slug,
	}).Info("Homestay updated")

	s.publish(ctx, HomestayEvent{
		Type:       EventHomestaySaved,
		Action:     "updated",
		HomestayID: h.ID.String(),
		Slug:       h.Slug,
		Status:     h.Status,
	})

	return s.store.GetByID(h.ID)
}

// Delete removes a homestay
func (s *HomestayService) Delete(ctx context.Context, id string) error {
	homestayID, err := uuid.Parse(id)
	if err != nil {
		return database.ErrHomestayNotFound
	}
	if err := s.store.Delete(homestayID); err != nil {
		return err
	}

	s.logger.WithField("homestay_id", homestayID).Info("Homestay deleted")
	s.publish(ctx, HomestayEvent{Type: EventHomestayDeleted, HomestayID: homestayID.String()})
	return nil
}

func (s *HomestayService) ensureSlugFree(value string, self uuid.UUID) error {
	taken, err := s.store.SlugExists(value, self)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *HomestayService) translate(err error) error {
	if errors.Is(err, database.ErrDuplicateSlug) {
		return ErrSlugTaken
	}
	return err
}

// publish never fails the request; the write has already been committed
func (s *HomestayService) publish(ctx context.Context, event HomestayEvent) {
	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":       event.Type,
			"homestay_id": event.HomestayID,
		}).Warn("Failed to publish homestay event")
	}
}

// fromPayload validates a request body and converts it to a model.
// Each availability range is expanded to one manual BLOCKED row per date.
func (s *HomestayService) fromPayload(p homestayapi.Payload) (*models.Homestay, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	homestaySlug := strings.TrimSpace(p.Slug)
	if homestaySlug == "" {
		return nil, &ValidationError{Field: "slug", Message: "is required"}
	}
	if !slug.Valid(homestaySlug) {
		return nil, &ValidationError{Field: "slug", Message: "must contain only lowercase letters, digits and single hyphens"}
	}

	status := strings.TrimSpace(p.Status)
	if status == "" {
		status = models.HomestayStatusDraft
	}
	if !models.IsValidHomestayStatus(status) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return nil, &ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return nil, &ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
	}
	if p.BasePrice != nil && *p.BasePrice < 0 {
		return nil, &ValidationError{Field: "basePrice", Message: "must not be negative"}
	}
	for field, v := range map[string]*int{"maxGuests": p.MaxGuests, "bedrooms": p.Bedrooms, "bathrooms": p.Bathrooms} {
		if v != nil && *v < 0 {
			return nil, &ValidationError{Field: field, Message: "must not be negative"}
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, &ValidationError{Field: "currency", Message: "must be a 3-letter code"}
	}
	email := strings.TrimSpace(p.ContactEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, &ValidationError{Field: "contactEmail", Message: "is not a valid email address"}
		}
	}
	phone := strings.TrimSpace(p.ContactPhone)
	if phone != "" {
		sanitized, err := s.phones.Validate(phone)
		if err != nil {
			return nil, &ValidationError{Field: "contactPhone", Message: err.Error()}
		}
		phone = sanitized
	}

	h := &models.Homestay{
		Title:          title,
		Slug:           homestaySlug,
		Summary:        strings.TrimSpace(p.Summary),
		Description:    strings.TrimSpace(s.sanitizer.Sanitize(p.Description)),
		Address:        strings.TrimSpace(p.Address),
		City:           strings.TrimSpace(p.City),
		Province:       strings.TrimSpace(p.Province),
		Country:        strings.TrimSpace(p.Country),
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		BasePrice:      p.BasePrice,
		Currency:       currency,
		MaxGuests:      p.MaxGuests,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		CheckInTime:    orDefault(p.CheckInTime, "14:00"),
		CheckOutTime:   orDefault(p.CheckOutTime, "12:00"),
		HeroImageURL:   strings.TrimSpace(p.HeroImageURL),
		GalleryURLs:    models.TextArray(cleanList(p.GalleryURLs)),
		Amenities:      models.TextArray(cleanList(p.Amenities)),
		Tags:           models.TextArray(cleanList(p.Tags)),
		Keywords:       models.TextArray(cleanList(p.Keywords)),
		SEOTitle:       strings.TrimSpace(p.SEOTitle),
		SEODescription: strings.TrimSpace(p.SEODescription),
		ContactPhone:   phone,
		ContactEmail:   email,
		Status:         status,
		IsFeatured:     p.IsFeatured,
		IsActive:       p.IsActive,
	}

	rooms, err := roomsFromPayload(p.Rooms)
	if err != nil {
		return nil, err
	}
	h.Rooms = rooms

	days, err := expandAvailability(p.Availability)
	if err != nil {
		return nil, err
	}
	h.Availability = days

	return h, nil
}

func roomsFromPayload(rooms []homestayapi.RoomPayload) ([]models.HomestayRoom, error) {
	out := make([]models.HomestayRoom, 0, len(rooms))
	seen := make(map[string]bool, len(rooms))
	for i, r := range rooms {
		room := models.HomestayRoom{
			Name:        strings.TrimSpace(r.Name),
			Description: strings.TrimSpace(r.Description),
			RoomType:    strings.TrimSpace(r.RoomType),
			MaxGuests:   derefInt(r.MaxGuests),
			BedCount:    derefInt(r.BedCount),
			BasePrice:   derefFloat(r.BasePrice),
			Quantity:    derefInt(r.Quantity),
			Amenities:   models.TextArray(cleanList(r.Amenities)),
			ImageURLs:   models.TextArray(cleanList(r.ImageURLs)),
			IsActive:    r.IsActive,
		}
		if room.Quantity <= 0 {
			room.Quantity = 1
		}
		if room.MaxGuests < 0 || room.BedCount < 0 || room.BasePrice < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("rooms[%d]", i), Message: "numbers must not be negative"}
		}

		room.Slug = strings.TrimSpace(r.Slug)
		if room.Slug == "" || !slug.Valid(room.Slug) {
			room.Slug = slug.ForRoom(room.Name, i)
		}
		if seen[room.Slug] {
			return nil, &ValidationError{Field: fmt.Sprintf("rooms[%d].slug", i), Message: fmt.Sprintf("duplicate room slug %q", room.Slug)}
		}
		seen[room.Slug] = true

		if r.ID != nil && *r.ID != "" {
			id, err := uuid.Parse(*r.ID)
			if err != nil {
				return nil, &ValidationError{Field: fmt.Sprintf("rooms[%d].id", i), Message: "is not a valid id"}
			}
			room.ID = id
		}
		out = append(out, room)
	}
	return out, nil
}

// expandAvailability turns ranges into per-date rows; overlapping ranges keep the first note
func expandAvailability(ranges []homestayapi.AvailabilityRange) ([]models.AvailabilityDay, error) {
	days := []models.AvailabilityDay{}
	seen := make(map[string]bool)
	for i, r := range ranges {
		n, ok := editor.BlockDays(r.StartDate, r.EndDate)
		if !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("availability[%d]", i), Message: "startDate and endDate must be YYYY-MM-DD with startDate <= endDate"}
		}
		if n > maxBlockDays {
			return nil, &ValidationError{Field: fmt.Sprintf("availability[%d]", i), Message: fmt.Sprintf("range is longer than %d days", maxBlockDays)}
		}
		dates, _ := editor.ExpandBlock(r.StartDate, r.EndDate)
		notes := strings.TrimSpace(r.Notes)
		for _, d := range dates {
			if seen[d] {
				continue
			}
			seen[d] = true
			days = append(days, models.AvailabilityDay{
				Date:   d,
				Status: models.AvailabilityStatusBlocked,
				Source: models.AvailabilitySourceManual,
				Notes:  notes,
			})
		}
	}
	return days, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
