package editor

import (
	"strings"

	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
	"github.com/stayadmin/homestay-editor/pkg/slug"
)

// BuildPayload converts the form and its collections into a request body.
// Empty strings, zero numbers and empty lists are left out; title, slug,
// status and the boolean flags are always sent. Room slugs are derived
// afresh from the room name and position.
func BuildPayload(form FormState, rooms []RoomDraft, blocks []AvailabilityBlock) homestayapi.Payload {
	p := homestayapi.Payload{
		Title:          strings.TrimSpace(form.Title),
		Slug:           strings.TrimSpace(form.Slug),
		Summary:        strings.TrimSpace(form.Summary),
		Description:    strings.TrimSpace(form.Description),
		Address:        strings.TrimSpace(form.Address),
		City:           strings.TrimSpace(form.City),
		Province:       strings.TrimSpace(form.Province),
		Country:        strings.TrimSpace(form.Country),
		Latitude:       optFloat(form.Latitude),
		Longitude:      optFloat(form.Longitude),
		BasePrice:      optFloat(form.BasePrice),
		Currency:       strings.TrimSpace(form.Currency),
		MaxGuests:      optInt(form.MaxGuests),
		Bedrooms:       optInt(form.Bedrooms),
		Bathrooms:      optInt(form.Bathrooms),
		CheckInTime:    strings.TrimSpace(form.CheckInTime),
		CheckOutTime:   strings.TrimSpace(form.CheckOutTime),
		Status:         strings.TrimSpace(form.Status),
		HeroImageURL:   strings.TrimSpace(form.HeroImageURL),
		GalleryURLs:    optList(form.GalleryURLs),
		Amenities:      optList(form.Amenities),
		Tags:           optList(form.Tags),
		Keywords:       optList(form.Keywords),
		SEOTitle:       strings.TrimSpace(form.SEOTitle),
		SEODescription: strings.TrimSpace(form.SEODescription),
		ContactPhone:   strings.TrimSpace(form.ContactPhone),
		ContactEmail:   strings.TrimSpace(form.ContactEmail),
		IsFeatured:     form.IsFeatured,
		IsActive:       form.IsActive,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}

	if len(rooms) > 0 {
		p.Rooms = make([]homestayapi.RoomPayload, 0, len(rooms))
		for i, r := range rooms {
			p.Rooms = append(p.Rooms, buildRoomPayload(r, i))
		}
	}

	if len(blocks) > 0 {
		p.Availability = make([]homestayapi.AvailabilityRange, 0, len(blocks))
		for _, b := range blocks {
			p.Availability = append(p.Availability, homestayapi.AvailabilityRange{
				StartDate: b.StartDate,
				EndDate:   b.EndDate,
				Notes:     strings.TrimSpace(b.Notes),
			})
		}
	}

	return p
}

func buildRoomPayload(r RoomDraft, index int) homestayapi.RoomPayload {
	name := strings.TrimSpace(r.Name)
	rp := homestayapi.RoomPayload{
		Slug:        slug.ForRoom(name, index),
		Name:        name,
		Description: strings.TrimSpace(r.Description),
		RoomType:    strings.TrimSpace(r.RoomType),
		MaxGuests:   optInt(r.MaxGuests),
		BedCount:    optInt(r.BedCount),
		BasePrice:   optFloat(r.BasePrice),
		Quantity:    optInt(r.Quantity),
		Amenities:   optList(r.Amenities),
		ImageURLs:   optList(r.ImageURLs),
		IsActive:    r.IsActive,
	}
	if r.ID != nil && *r.ID != "" {
		id := *r.ID
		rp.ID = &id
	}
	return rp
}

func optFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func optList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
