package homestayapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Homestay is the entity record returned by the admin API
type Homestay struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Summary        string            `json:"summary"`
	Description    string            `json:"description"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	Province       string            `json:"province"`
	Country        string            `json:"country"`
	Latitude       *float64          `json:"latitude"`
	Longitude      *float64          `json:"longitude"`
	BasePrice      *float64          `json:"basePrice"`
	Currency       string            `json:"currency"`
	MaxGuests      *int              `json:"maxGuests"`
	Bedrooms       *int              `json:"bedrooms"`
	Bathrooms      *int              `json:"bathrooms"`
	CheckInTime    string            `json:"checkInTime"`
	CheckOutTime   string            `json:"checkOutTime"`
	Status         string            `json:"status"`
	HeroImageURL   string            `json:"heroImageUrl"`
	GalleryURLs    StringList        `json:"galleryUrls"`
	Amenities      StringList        `json:"amenities"`
	Tags           StringList        `json:"tags"`
	Keywords       StringList        `json:"keywords"`
	SEOTitle       string            `json:"seoTitle"`
	SEODescription string            `json:"seoDescription"`
	ContactPhone   string            `json:"contactPhone"`
	ContactEmail   string            `json:"contactEmail"`
	IsFeatured     bool              `json:"isFeatured"`
	IsActive       bool              `json:"isActive"`
	Rooms          []Room            `json:"rooms"`
	Availability   []AvailabilityDay `json:"availability"`
}

// Room is a bookable room nested in a homestay
type Room struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	RoomType    string     `json:"roomType"`
	MaxGuests   int        `json:"maxGuests"`
	BedCount    int        `json:"bedCount"`
	BasePrice   float64    `json:"basePrice"`
	Quantity    int        `json:"quantity"`
	Amenities   StringList `json:"amenities"`
	ImageURLs   StringList `json:"imageUrls"`
	IsActive    bool       `json:"isActive"`
	Position    int        `json:"position"`
}

// AvailabilityDay is one per-date availability row
type AvailabilityDay struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

// Payload is the create/update request body
type Payload struct {
	Title          string              `json:"title" yaml:"title"`
	Slug           string              `json:"slug" yaml:"slug"`
	Summary        string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description    string              `json:"description,omitempty" yaml:"description,omitempty"`
	Address        string              `json:"address,omitempty" yaml:"address,omitempty"`
	City           string              `json:"city,omitempty" yaml:"city,omitempty"`
	Province       string              `json:"province,omitempty" yaml:"province,omitempty"`
	Country        string              `json:"country,omitempty" yaml:"country,omitempty"`
	Latitude       *float64            `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude      *float64            `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	BasePrice      *float64            `json:"basePrice,omitempty" yaml:"basePrice,omitempty"`
	Currency       string              `json:"currency,omitempty" yaml:"currency,omitempty"`
	MaxGuests      *int                `json:"maxGuests,omitempty" yaml:"maxGuests,omitempty"`
	Bedrooms       *int                `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms      *int                `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	CheckInTime    string              `json:"checkInTime,omitempty" yaml:"checkInTime,omitempty"`
	CheckOutTime   string              `json:"checkOutTime,omitempty" yaml:"checkOutTime,omitempty"`
	Status         string              `json:"status" yaml:"status"`
	HeroImageURL   string              `json:"heroImageUrl,omitempty" yaml:"heroImageUrl,omitempty"`
	GalleryURLs    []string            `json:"galleryUrls,omitempty" yaml:"galleryUrls,omitempty"`
	Amenities      []string            `json:"amenities,omitempty" yaml:"amenities,omitempty"`
	Tags           []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Keywords       []string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	SEOTitle       string              `json:"seoTitle,omitempty" yaml:"seoTitle,omitempty"`
	SEODescription string              `json:"seoDescription,omitempty" yaml:"seoDescription,omitempty"`
	ContactPhone   string              `json:"contactPhone,omitempty" yaml:"contactPhone,omitempty"`
	ContactEmail   string              `json:"contactEmail,omitempty" yaml:"contactEmail,omitempty"`
	IsFeatured     bool                `json:"isFeatured" yaml:"isFeatured"`
	IsActive       bool                `json:"isActive" yaml:"isActive"`
	Rooms          []RoomPayload       `json:"rooms,omitempty" yaml:"rooms,omitempty"`
	Availability   []AvailabilityRange `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// RoomPayload is one room in a create/update request
type RoomPayload struct {
	ID          *string  `json:"id,omitempty" yaml:"id,omitempty"`
	Slug        string   `json:"slug" yaml:"slug"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	RoomType    string   `json:"roomType,omitempty" yaml:"roomType,omitempty"`
	MaxGuests   *int     `json:"maxGuests,omitempty" yaml:"maxGuests,omitempty"`
	BedCount    *int     `json:"bedCount,omitempty" yaml:"bedCount,omitempty"`
	BasePrice   *float64 `json:"basePrice,omitempty" yaml:"basePrice,omitempty"`
	Quantity    *int     `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Amenities   []string `json:"amenities,omitempty" yaml:"amenities,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty" yaml:"imageUrls,omitempty"`
	IsActive    bool     `json:"isActive" yaml:"isActive"`
}

// AvailabilityRange is a blocked date range in a create/update request
type AvailabilityRange struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	Notes     string `json:"notes" yaml:"notes"`
}

// StringList decodes the loose shapes the API has used for URL and tag lists
// into one ordered []string:
//
//	["a","b"]                    plain array
//	[{"url":"a"},{"src":"b"}]    array of objects
//	{"0":"a","1":"b"}            index-keyed object
//	"[\"a\",\"b\"]"              JSON encoded as a string
//	"a, b"                       comma separated string
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	items, err := decodeStringList(data)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Strings returns the list as a non-nil []string
func (l StringList) Strings() []string {
	if l == nil {
		return []string{}
	}
	return append([]string(nil), l...)
}

func decodeStringList(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}, nil
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid list: %w", err)
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := listItem(item); ok {
				out = append(out, s)
			}
		}
		return out, nil

	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid list object: %w", err)
		}
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := listItem(raw[k]); ok {
				out = append(out, s)
			}
		}
		return out, nil

	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("invalid list string: %w", err)
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			if nested, err := decodeStringList([]byte(s)); err == nil {
				return nested, nil
			}
		}
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported list shape: %s", string(trimmed))
}

func listItem(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"url", "src", "value"} {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
	}
	return "", false
}

// lessKey orders numeric keys numerically and everything else lexically
func lessKey(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	if aErr == nil {
		return true
	}
	if bErr == nil {
		return false
	}
	return a < b
}
