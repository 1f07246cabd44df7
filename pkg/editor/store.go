package editor

import (
	"strings"

	"github.com/google/uuid"
)

// RoomDraft is one room row under edit. ClientID is assigned once on the
// client and never changes; ID stays nil until the server has stored the room.
type RoomDraft struct {
	ClientID    string   `json:"clientId"`
	ID          *string  `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RoomType    string   `json:"roomType"`
	MaxGuests   int      `json:"maxGuests"`
	BedCount    int      `json:"bedCount"`
	BasePrice   float64  `json:"basePrice"`
	Quantity    int      `json:"quantity"`
	Amenities   []string `json:"amenities"`
	ImageURLs   []string `json:"imageUrls"`
	IsActive    bool     `json:"isActive"`
}

// NewRoomDraft returns an empty active room with a fresh client id
func NewRoomDraft() RoomDraft {
	return RoomDraft{
		ClientID:  uuid.NewString(),
		Quantity:  1,
		Amenities: []string{},
		ImageURLs: []string{},
		IsActive:  true,
	}
}

func (r RoomDraft) clone() RoomDraft {
	out := r
	if r.ID != nil {
		id := *r.ID
		out.ID = &id
	}
	out.Amenities = cloneStrings(r.Amenities)
	out.ImageURLs = cloneStrings(r.ImageURLs)
	return out
}

// AvailabilityBlock is a contiguous blocked date range (inclusive, YYYY-MM-DD)
type AvailabilityBlock struct {
	ClientID  string `json:"clientId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

// Store holds the form, its rooms and availability blocks.
// It performs no validation and is not safe for concurrent use.
type Store struct {
	form   FormState
	rooms  []RoomDraft
	blocks []AvailabilityBlock
}

// NewStore creates a store holding DefaultForm
func NewStore() *Store {
	return &Store{
		form:   DefaultForm(),
		rooms:  []RoomDraft{},
		blocks: []AvailabilityBlock{},
	}
}

// Form returns a copy of the current form
func (s *Store) Form() FormState {
	return s.form.Clone()
}

// Rooms returns a copy of the room rows
func (s *Store) Rooms() []RoomDraft {
	out := make([]RoomDraft, len(s.rooms))
	for i, r := range s.rooms {
		out[i] = r.clone()
	}
	return out
}

// Blocks returns a copy of the availability blocks
func (s *Store) Blocks() []AvailabilityBlock {
	return append([]AvailabilityBlock{}, s.blocks...)
}

// SetField replaces one field with exactly the given value. Lists stay
// non-nil; an empty status is kept and defaulted when the payload is built.
func (s *Store) SetField(v FieldValue) {
	if v.apply == nil {
		return
	}
	v.apply(&s.form)
	s.form.fillLists()
}

// AddToList appends value to a list field unless it is blank or already present.
// The value is trimmed before comparison.
func (s *Store) AddToList(f ListField, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	list := f.ref(&s.form)
	for _, existing := range *list {
		if existing == value {
			return false
		}
	}
	*list = append(cloneStrings(*list), value)
	return true
}

// RemoveFromList drops every element exactly equal to value. No trimming is applied.
func (s *Store) RemoveFromList(f ListField, value string) bool {
	list := f.ref(&s.form)
	kept := make([]string, 0, len(*list))
	for _, existing := range *list {
		if existing != value {
			kept = append(kept, existing)
		}
	}
	removed := len(kept) != len(*list)
	*list = kept
	return removed
}

// AddRoom appends a room, assigning a client id if it has none
func (s *Store) AddRoom(room RoomDraft) string {
	room = room.clone()
	if room.ClientID == "" {
		room.ClientID = uuid.NewString()
	}
	s.rooms = append(s.rooms, room)
	return room.ClientID
}

// UpdateRoom applies fn to the room with clientID. ClientID cannot be changed by fn.
func (s *Store) UpdateRoom(clientID string, fn func(*RoomDraft)) bool {
	for i := range s.rooms {
		if s.rooms[i].ClientID == clientID {
			fn(&s.rooms[i])
			s.rooms[i].ClientID = clientID
			return true
		}
	}
	return false
}

// RemoveRoom drops the room with clientID
func (s *Store) RemoveRoom(clientID string) bool {
	for i := range s.rooms {
		if s.rooms[i].ClientID == clientID {
			s.rooms = append(s.rooms[:i:i], s.rooms[i+1:]...)
			return true
		}
	}
	return false
}

// AddBlock appends an availability block, assigning a client id if it has none
func (s *Store) AddBlock(block AvailabilityBlock) string {
	if block.ClientID == "" {
		block.ClientID = uuid.NewString()
	}
	s.blocks = append(s.blocks, block)
	return block.ClientID
}

// UpdateBlock applies fn to the block with clientID
func (s *Store) UpdateBlock(clientID string, fn func(*AvailabilityBlock)) bool {
	for i := range s.blocks {
		if s.blocks[i].ClientID == clientID {
			fn(&s.blocks[i])
			s.blocks[i].ClientID = clientID
			return true
		}
	}
	return false
}

// RemoveBlock drops the block with clientID
func (s *Store) RemoveBlock(clientID string) bool {
	for i := range s.blocks {
		if s.blocks[i].ClientID == clientID {
			s.blocks = append(s.blocks[:i:i], s.blocks[i+1:]...)
			return true
		}
	}
	return false
}

// replace swaps in a complete state, used by draft restore and server merge
func (s *Store) replace(form FormState, rooms []RoomDraft, blocks []AvailabilityBlock) {
	form.fillDefaults()
	s.form = form.Clone()
	s.rooms = make([]RoomDraft, 0, len(rooms))
	for _, r := range rooms {
		r = r.clone()
		if r.ClientID == "" {
			r.ClientID = uuid.NewString()
		}
		s.rooms = append(s.rooms, r)
	}
	s.blocks = make([]AvailabilityBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.ClientID == "" {
			b.ClientID = uuid.NewString()
		}
		s.blocks = append(s.blocks, b)
	}
}
