package models

import (
	"time"

	"github.com/google/uuid"
)

// Homestay represents a listed homestay property
type Homestay struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Summary     string    `db:"summary" json:"summary"`
	Description string    `db:"description" json:"description"`

	// Location
	Address   string   `db:"address" json:"address"`
	City      string   `db:"city" json:"city"`
	Province  string   `db:"province" json:"province"`
	Country   string   `db:"country" json:"country"`
	Latitude  *float64 `db:"latitude" json:"latitude"`
	Longitude *float64 `db:"longitude" json:"longitude"`

	// Pricing & capacity
	BasePrice    *float64 `db:"base_price" json:"basePrice"`
	Currency     string   `db:"currency" json:"currency"`
	MaxGuests    *int     `db:"max_guests" json:"maxGuests"`
	Bedrooms     *int     `db:"bedrooms" json:"bedrooms"`
	Bathrooms    *int     `db:"bathrooms" json:"bathrooms"`
	CheckInTime  string   `db:"check_in_time" json:"checkInTime"`
	CheckOutTime string   `db:"check_out_time" json:"checkOutTime"`

	// Media & discovery
	HeroImageURL   string    `db:"hero_image_url" json:"heroImageUrl"`
	GalleryURLs    TextArray `db:"gallery_urls" json:"galleryUrls"`
	Amenities      TextArray `db:"amenities" json:"amenities"`
	Tags           TextArray `db:"tags" json:"tags"`
	Keywords       TextArray `db:"keywords" json:"keywords"`
	SEOTitle       string    `db:"seo_title" json:"seoTitle"`
	SEODescription string    `db:"seo_description" json:"seoDescription"`

	// Contact
	ContactPhone string `db:"contact_phone" json:"contactPhone"`
	ContactEmail string `db:"contact_email" json:"contactEmail"`

	// Metadata
	Status     string    `db:"status" json:"status"` // draft, published, archived
	IsFeatured bool      `db:"is_featured" json:"isFeatured"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`

	Rooms        []HomestayRoom    `db:"-" json:"rooms"`
	Availability []AvailabilityDay `db:"-" json:"availability"`
}

// HomestayRoom represents a bookable room of a homestay
type HomestayRoom struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HomestayID  uuid.UUID `db:"homestay_id" json:"homestayId"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	RoomType    string    `db:"room_type" json:"roomType"`
	MaxGuests   int       `db:"max_guests" json:"maxGuests"`
	BedCount    int       `db:"bed_count" json:"bedCount"`
	BasePrice   float64   `db:"base_price" json:"basePrice"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Amenities   TextArray `db:"amenities" json:"amenities"`
	ImageURLs   TextArray `db:"image_urls" json:"imageUrls"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// AvailabilityDay is one per-date availability row. Date is YYYY-MM-DD.
type AvailabilityDay struct {
	HomestayID uuid.UUID `db:"homestay_id" json:"-"`
	Date       string    `db:"date" json:"date"`
	Status     string    `db:"status" json:"status"`
	Source     string    `db:"source" json:"source"`
	Notes      string    `db:"notes" json:"notes"`
}

// Homestay status constants
const (
	HomestayStatusDraft     = "draft"
	HomestayStatusPublished = "published"
	HomestayStatusArchived  = "archived"
)

// Availability constants
const (
	AvailabilityStatusBlocked = "BLOCKED"
	AvailabilitySourceManual  = "manual"
	AvailabilitySourceBooking = "booking"
)

// IsValidHomestayStatus reports whether status is a known homestay status
func IsValidHomestayStatus(status string) bool {
	switch status {
	case HomestayStatusDraft, HomestayStatusPublished, HomestayStatusArchived:
		return true
	}
	return false
}
