package editor

import (
	"sort"

	"github.com/google/uuid"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

// FormFromHomestay maps a server entity onto a form, keeping defaults for
// anything the server left empty.
func FormFromHomestay(h homestayapi.Homestay) FormState {
	form := DefaultForm()
	form.Title = h.Title
	form.Slug = h.Slug
	form.Summary = h.Summary
	form.Description = h.Description
	form.Address = h.Address
	form.City = h.City
	form.Province = h.Province
	form.Country = h.Country
	form.Latitude = derefFloat(h.Latitude)
	form.Longitude = derefFloat(h.Longitude)
	form.BasePrice = derefFloat(h.BasePrice)
	if h.Currency != "" {
		form.Currency = h.Currency
	}
	form.MaxGuests = derefInt(h.MaxGuests)
	form.Bedrooms = derefInt(h.Bedrooms)
	form.Bathrooms = derefInt(h.Bathrooms)
	if h.CheckInTime != "" {
		form.CheckInTime = h.CheckInTime
	}
	if h.CheckOutTime != "" {
		form.CheckOutTime = h.CheckOutTime
	}
	if h.Status != "" {
		form.Status = h.Status
	}
	form.HeroImageURL = h.HeroImageURL
	form.GalleryURLs = h.GalleryURLs.Strings()
	form.Amenities = h.Amenities.Strings()
	form.Tags = h.Tags.Strings()
	form.Keywords = h.Keywords.Strings()
	form.SEOTitle = h.SEOTitle
	form.SEODescription = h.SEODescription
	form.ContactPhone = h.ContactPhone
	form.ContactEmail = h.ContactEmail
	form.IsFeatured = h.IsFeatured
	form.IsActive = h.IsActive
	return form
}

// RoomsFromHomestay maps server rooms to drafts ordered by position.
// Each draft gets a new client id; the server id is kept.
func RoomsFromHomestay(h homestayapi.Homestay) []RoomDraft {
	rooms := make([]homestayapi.Room, len(h.Rooms))
	copy(rooms, h.Rooms)
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].Position < rooms[j].Position })

	out := make([]RoomDraft, 0, len(rooms))
	for _, r := range rooms {
		draft := RoomDraft{
			ClientID:    uuid.NewString(),
			Name:        r.Name,
			Description: r.Description,
			RoomType:    r.RoomType,
			MaxGuests:   r.MaxGuests,
			BedCount:    r.BedCount,
			BasePrice:   r.BasePrice,
			Quantity:    r.Quantity,
			Amenities:   r.Amenities.Strings(),
			ImageURLs:   r.ImageURLs.Strings(),
			IsActive:    r.IsActive,
		}
		if r.ID != "" {
			id := r.ID
			draft.ID = &id
		}
		out = append(out, draft)
	}
	return out
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
