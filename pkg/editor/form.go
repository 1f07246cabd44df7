package editor

// FormState is the in-progress representation of one homestay.
// Every field has a usable default; see DefaultForm.
type FormState struct {
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Summary        string   `json:"summary"`
	Description    string   `json:"description"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Province       string   `json:"province"`
	Country        string   `json:"country"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	BasePrice      float64  `json:"basePrice"`
	Currency       string   `json:"currency"`
	MaxGuests      int      `json:"maxGuests"`
	Bedrooms       int      `json:"bedrooms"`
	Bathrooms      int      `json:"bathrooms"`
	CheckInTime    string   `json:"checkInTime"`
	CheckOutTime   string   `json:"checkOutTime"`
	Status         string   `json:"status"`
	HeroImageURL   string   `json:"heroImageUrl"`
	GalleryURLs    []string `json:"galleryUrls"`
	Amenities      []string `json:"amenities"`
	Tags           []string `json:"tags"`
	Keywords       []string `json:"keywords"`
	SEOTitle       string   `json:"seoTitle"`
	SEODescription string   `json:"seoDescription"`
	ContactPhone   string   `json:"contactPhone"`
	ContactEmail   string   `json:"contactEmail"`
	IsFeatured     bool     `json:"isFeatured"`
	IsActive       bool     `json:"isActive"`
}

// Homestay publication states
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// DefaultForm returns a fully populated empty form
func DefaultForm() FormState {
	return FormState{
		Currency:     "USD",
		CheckInTime:  "14:00",
		CheckOutTime: "12:00",
		Status:       StatusDraft,
		GalleryURLs:  []string{},
		Amenities:    []string{},
		Tags:         []string{},
		Keywords:     []string{},
		IsActive:     true,
	}
}

// Clone returns a deep copy of the form
func (f FormState) Clone() FormState {
	out := f
	out.GalleryURLs = cloneStrings(f.GalleryURLs)
	out.Amenities = cloneStrings(f.Amenities)
	out.Tags = cloneStrings(f.Tags)
	out.Keywords = cloneStrings(f.Keywords)
	return out
}

// fillDefaults restores the defaults a decoded or replaced form may lack
func (f *FormState) fillDefaults() {
	f.fillLists()
	if f.Status == "" {
		f.Status = StatusDraft
	}
}

// fillLists keeps every list field non-nil
func (f *FormState) fillLists() {
	if f.GalleryURLs == nil {
		f.GalleryURLs = []string{}
	}
	if f.Amenities == nil {
		f.Amenities = []string{}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Keywords == nil {
		f.Keywords = []string{}
	}
}

// FieldValue is a pending assignment of one form field
type FieldValue struct {
	key   string
	apply func(*FormState)
}

// Key returns the JSON name of the field being assigned
func (v FieldValue) Key() string {
	return v.key
}

// Field describes one typed field of FormState
type Field[T any] struct {
	key string
	ref func(*FormState) *T
}

// ListField is a field holding an ordered set of strings
type ListField = Field[[]string]

// Key returns the JSON name of the field
func (f Field[T]) Key() string {
	return f.key
}

// Get reads the field from a form
func (f Field[T]) Get(form FormState) T {
	return *f.ref(&form)
}

// Value builds an assignment of v to the field
func (f Field[T]) Value(v T) FieldValue {
	if list, ok := any(v).([]string); ok {
		copied := cloneStrings(list)
		v = any(copied).(T)
	}
	return FieldValue{
		key:   f.key,
		apply: func(form *FormState) { *f.ref(form) = v },
	}
}

// Form fields
var (
	Title          = Field[string]{"title", func(f *FormState) *string { return &f.Title }}
	Slug           = Field[string]{"slug", func(f *FormState) *string { return &f.Slug }}
	Summary        = Field[string]{"summary", func(f *FormState) *string { return &f.Summary }}
	Description    = Field[string]{"description", func(f *FormState) *string { return &f.Description }}
	Address        = Field[string]{"address", func(f *FormState) *string { return &f.Address }}
	City           = Field[string]{"city", func(f *FormState) *string { return &f.City }}
	Province       = Field[string]{"province", func(f *FormState) *string { return &f.Province }}
	Country        = Field[string]{"country", func(f *FormState) *string { return &f.Country }}
	Latitude       = Field[float64]{"latitude", func(f *FormState) *float64 { return &f.Latitude }}
	Longitude      = Field[float64]{"longitude", func(f *FormState) *float64 { return &f.Longitude }}
	BasePrice      = Field[float64]{"basePrice", func(f *FormState) *float64 { return &f.BasePrice }}
	Currency       = Field[string]{"currency", func(f *FormState) *string { return &f.Currency }}
	MaxGuests      = Field[int]{"maxGuests", func(f *FormState) *int { return &f.MaxGuests }}
	Bedrooms       = Field[int]{"bedrooms", func(f *FormState) *int { return &f.Bedrooms }}
	Bathrooms      = Field[int]{"bathrooms", func(f *FormState) *int { return &f.Bathrooms }}
	CheckInTime    = Field[string]{"checkInTime", func(f *FormState) *string { return &f.CheckInTime }}
	CheckOutTime   = Field[string]{"checkOutTime", func(f *FormState) *string { return &f.CheckOutTime }}
	Status         = Field[string]{"status", func(f *FormState) *string { return &f.Status }}
	HeroImageURL   = Field[string]{"heroImageUrl", func(f *FormState) *string { return &f.HeroImageURL }}
	GalleryURLs    = ListField{"galleryUrls", func(f *FormState) *[]string { return &f.GalleryURLs }}
	Amenities      = ListField{"amenities", func(f *FormState) *[]string { return &f.Amenities }}
	Tags           = ListField{"tags", func(f *FormState) *[]string { return &f.Tags }}
	Keywords       = ListField{"keywords", func(f *FormState) *[]string { return &f.Keywords }}
	SEOTitle       = Field[string]{"seoTitle", func(f *FormState) *string { return &f.SEOTitle }}
	SEODescription = Field[string]{"seoDescription", func(f *FormState) *string { return &f.SEODescription }}
	ContactPhone   = Field[string]{"contactPhone", func(f *FormState) *string { return &f.ContactPhone }}
	ContactEmail   = Field[string]{"contactEmail", func(f *FormState) *string { return &f.ContactEmail }}
	IsFeatured     = Field[bool]{"isFeatured", func(f *FormState) *bool { return &f.IsFeatured }}
	IsActive       = Field[bool]{"isActive", func(f *FormState) *bool { return &f.IsActive }}
)

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}
