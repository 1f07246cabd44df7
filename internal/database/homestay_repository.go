package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayadmin/homestay-editor/internal/models"
)

var (
	// ErrHomestayNotFound is returned when no homestay has the requested id
	ErrHomestayNotFound = errors.New("homestay not found")
	// ErrDuplicateSlug is returned when the slug unique index rejects a write
	ErrDuplicateSlug = errors.New("homestay slug already exists")
)

const uniqueViolation = "23505"

// TruncateHomestaysSQL empties every homestay table. Development use only.
const TruncateHomestaysSQL = `TRUNCATE TABLE homestay_availability, homestay_rooms, homestays RESTART IDENTITY CASCADE`

const homestayColumns = `
	id, title, slug, summary, description,
	address, city, province, country, latitude, longitude,
	base_price, currency, max_guests, bedrooms, bathrooms, check_in_time, check_out_time,
	hero_image_url, gallery_urls, amenities, tags, keywords, seo_title, seo_description,
	contact_phone, contact_email, status, is_featured, is_active, created_at, updated_at`

const roomColumns = `
	id, homestay_id, slug, name, description, room_type, max_guests, bed_count,
	base_price, quantity, amenities, image_urls, is_active, position, created_at, updated_at`

// HomestayRepository handles database operations for homestays, their rooms
// and per-date availability
type HomestayRepository struct {
	db *sqlx.DB
}

// NewHomestayRepository creates a new homestay repository
func NewHomestayRepository(db *sqlx.DB) *HomestayRepository {
	return &HomestayRepository{db: db}
}

// Search finds homestays whose slug, title or city contains query.
// An empty query lists the most recently updated homestays.
func (r *HomestayRepository) Search(query string, limit int) ([]models.Homestay, error) {
	homestays := []models.Homestay{}
	query = strings.TrimSpace(query)

	var err error
	if query == "" {
		err = r.db.Select(&homestays, `
			SELECT `+homestayColumns+`
			FROM homestays
			ORDER BY updated_at DESC
			LIMIT $1
		`, limit)
	} else {
		pattern := "%" + escapeLike(query) + "%"
		err = r.db.Select(&homestays, `
			SELECT `+homestayColumns+`
			FROM homestays
			WHERE slug ILIKE $1 OR title ILIKE $1 OR city ILIKE $1
			ORDER BY (slug = $2) DESC, updated_at DESC
			LIMIT $3
		`, pattern, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search homestays: %w", err)
	}
	return homestays, nil
}

// GetByID retrieves a homestay with its rooms and availability rows
func (r *HomestayRepository) GetByID(id uuid.UUID) (*models.Homestay, error) {
	var homestay models.Homestay
	err := r.db.Get(&homestay, `SELECT `+homestayColumns+` FROM homestays WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrHomestayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get homestay: %w", err)
	}

	homestay.Rooms = []models.HomestayRoom{}
	err = r.db.Select(&homestay.Rooms, `
		SELECT `+roomColumns+`
		FROM homestay_rooms
		WHERE homestay_id = $1
		ORDER BY position, created_at
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get homestay rooms: %w", err)
	}

	homestay.Availability = []models.AvailabilityDay{}
	err = r.db.Select(&homestay.Availability, `
		SELECT homestay_id, to_char(date, 'YYYY-MM-DD') AS date, status, source, notes
		FROM homestay_availability
		WHERE homestay_id = $1
		ORDER BY date
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get homestay availability: %w", err)
	}

	return &homestay, nil
}

// SlugExists reports whether another homestay already uses slug
func (r *HomestayRepository) SlugExists(slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM homestays WHERE slug = $1 AND id <> $2)`, slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// Create inserts a homestay with its rooms and manual availability rows
func (r *HomestayRepository) Create(h *models.Homestay) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	err = tx.QueryRowx(`
		INSERT INTO homestays (
			id, title, slug, summary, description,
			address, city, province, country, latitude, longitude,
			base_price, currency, max_guests, bedrooms, bathrooms, check_in_time, check_out_time,
			hero_image_url, gallery_urls, amenities, tags, keywords, seo_title, seo_description,
			contact_phone, contact_email, status, is_featured, is_active, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`, homestayArgs(h)...).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return translateWriteError("failed to create homestay", err)
	}

	if err := insertRooms(tx, h.ID, h.Rooms); err != nil {
		return err
	}
	if err := insertAvailability(tx, h.ID, h.Availability); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit homestay: %w", err)
	}
	return nil
}

// Update replaces a homestay, its rooms and its manual availability rows.
// Rooms keep their id when the request carries it; booking rows are untouched.
func (r *HomestayRepository) Update(h *models.Homestay) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowx(`
		UPDATE homestays SET
			title = $2, slug = $3, summary = $4, description = $5,
			address = $6, city = $7, province = $8, country = $9, latitude = $10, longitude = $11,
			base_price = $12, currency = $13, max_guests = $14, bedrooms = $15, bathrooms = $16,
			check_in_time = $17, check_out_time = $18,
			hero_image_url = $19, gallery_urls = $20, amenities = $21, tags = $22, keywords = $23,
			seo_title = $24, seo_description = $25, contact_phone = $26, contact_email = $27,
			status = $28, is_featured = $29, is_active = $30, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, homestayArgs(h)...).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrHomestayNotFound
	}
	if err != nil {
		return translateWriteError("failed to update homestay", err)
	}

	keep := make([]string, 0, len(h.Rooms))
	for _, room := range h.Rooms {
		if room.ID != uuid.Nil {
			keep = append(keep, room.ID.String())
		}
	}
	_, err = tx.Exec(`
		DELETE FROM homestay_rooms
		WHERE homestay_id = $1 AND NOT (id::text = ANY($2))
	`, h.ID, pq.StringArray(keep))
	if err != nil {
		return fmt.Errorf("failed to remove homestay rooms: %w", err)
	}
	if err := insertRooms(tx, h.ID, h.Rooms); err != nil {
		return err
	}

	_, err = tx.Exec(`
		DELETE FROM homestay_availability
		WHERE homestay_id = $1 AND source = $2
	`, h.ID, models.AvailabilitySourceManual)
	if err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}
	if err := insertAvailability(tx, h.ID, h.Availability); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit homestay: %w", err)
	}
	return nil
}

// Delete removes a homestay; rooms and availability cascade
func (r *HomestayRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM homestays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete homestay: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete homestay: %w", err)
	}
	if rows == 0 {
		return ErrHomestayNotFound
	}
	return nil
}

// PurgeAvailabilityBefore deletes availability rows dated before cutoff
func (r *HomestayRepository) PurgeAvailabilityBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM homestay_availability WHERE date < $1`, cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to purge availability: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge availability: %w", err)
	}
	return rows, nil
}

func homestayArgs(h *models.Homestay) []interface{} {
	return []interface{}{
		h.ID, h.Title, h.Slug, h.Summary, h.Description,
		h.Address, h.City, h.Province, h.Country, h.Latitude, h.Longitude,
		h.BasePrice, h.Currency, h.MaxGuests, h.Bedrooms, h.Bathrooms, h.CheckInTime, h.CheckOutTime,
		h.HeroImageURL, h.GalleryURLs, h.Amenities, h.Tags, h.Keywords, h.SEOTitle, h.SEODescription,
		h.ContactPhone, h.ContactEmail, h.Status, h.IsFeatured, h.IsActive,
	}
}

// insertRooms upserts rooms in order, assigning ids and positions
func insertRooms(tx *sqlx.Tx, homestayID uuid.UUID, rooms []models.HomestayRoom) error {
	for i := range rooms {
		room := &rooms[i]
		if room.ID == uuid.Nil {
			room.ID = uuid.New()
		}
		room.HomestayID = homestayID
		room.Position = i + 1

		err := tx.QueryRowx(`
			INSERT INTO homestay_rooms (
				id, homestay_id, slug, name, description, room_type, max_guests, bed_count,
				base_price, quantity, amenities, image_urls, is_active, position, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
			ON CONFLICT (id) DO UPDATE SET
				slug = EXCLUDED.slug, name = EXCLUDED.name, description = EXCLUDED.description,
				room_type = EXCLUDED.room_type, max_guests = EXCLUDED.max_guests,
				bed_count = EXCLUDED.bed_count, base_price = EXCLUDED.base_price,
				quantity = EXCLUDED.quantity, amenities = EXCLUDED.amenities,
				image_urls = EXCLUDED.image_urls, is_active = EXCLUDED.is_active,
				position = EXCLUDED.position, updated_at = NOW()
			WHERE homestay_rooms.homestay_id = EXCLUDED.homestay_id
			RETURNING created_at, updated_at
		`,
			room.ID, homestayID, room.Slug, room.Name, room.Description, room.RoomType,
			room.MaxGuests, room.BedCount, room.BasePrice, room.Quantity,
			room.Amenities, room.ImageURLs, room.IsActive, room.Position,
		).Scan(&room.CreatedAt, &room.UpdatedAt)
		if err == sql.ErrNoRows {
			return fmt.Errorf("room %s belongs to another homestay", room.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to save room %q: %w", room.Name, err)
		}
	}
	return nil
}

// insertAvailability writes per-date rows; dates held by bookings are skipped
func insertAvailability(tx *sqlx.Tx, homestayID uuid.UUID, days []models.AvailabilityDay) error {
	for i := range days {
		day := &days[i]
		day.HomestayID = homestayID
		_, err := tx.Exec(`
			INSERT INTO homestay_availability (homestay_id, date, status, source, notes)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (homestay_id, date) DO NOTHING
		`, homestayID, day.Date, day.Status, day.Source, day.Notes)
		if err != nil {
			return fmt.Errorf("failed to save availability for %s: %w", day.Date, err)
		}
	}
	return nil
}

func translateWriteError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateSlug
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
