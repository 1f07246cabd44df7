package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetFieldLastWriteWins(t *testing.T) {
	s := NewStore()

	s.SetField(Title.Value("First"))
	s.SetField(City.Value("Hue"))
	s.SetField(Title.Value("Second"))
	s.SetField(MaxGuests.Value(4))
	s.SetField(Title.Value("Third"))
	s.SetField(MaxGuests.Value(6))

	form := s.Form()
	assert.Equal(t, "Third", form.Title)
	assert.Equal(t, "Hue", form.City)
	assert.Equal(t, 6, form.MaxGuests)
	assert.Equal(t, "USD", form.Currency, "untouched fields keep defaults")
}

func TestStore_SetFieldCopiesLists(t *testing.T) {
	s := NewStore()
	tags := []string{"beach"}
	s.SetField(Tags.Value(tags))
	tags[0] = "mountain"

	assert.Equal(t, []string{"beach"}, s.Form().Tags)
}

func TestStore_SetFieldNilListStaysEmpty(t *testing.T) {
	s := NewStore()
	s.SetField(Amenities.Value(nil))

	assert.NotNil(t, s.Form().Amenities)
	assert.Empty(t, s.Form().Amenities)
}

func TestStore_SetFieldKeepsEmptyStatus(t *testing.T) {
	s := NewStore()
	s.SetField(Status.Value(StatusPublished))
	s.SetField(Status.Value(""))

	assert.Equal(t, "", s.Form().Status)

	p := BuildPayload(s.Form(), s.Rooms(), s.Blocks())
	assert.Equal(t, StatusDraft, p.Status)
}

func TestStore_AddToList(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		value   string
		want    []string
		added   bool
	}{
		{"appends trimmed value", []string{}, "  wifi ", []string{"wifi"}, true},
		{"ignores blank value", []string{"wifi"}, "   ", []string{"wifi"}, false},
		{"ignores duplicate", []string{"wifi"}, "wifi", []string{"wifi"}, false},
		{"duplicate after trim", []string{"wifi"}, " wifi", []string{"wifi"}, false},
		{"keeps order", []string{"wifi"}, "pool", []string{"wifi", "pool"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.SetField(Amenities.Value(tt.initial))

			added := s.AddToList(Amenities, tt.value)

			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.want, s.Form().Amenities)
		})
	}
}

func TestStore_RemoveFromListIsExact(t *testing.T) {
	s := NewStore()
	s.SetField(Tags.Value([]string{"family", "pets", "family"}))

	assert.False(t, s.RemoveFromList(Tags, " family"))
	assert.Equal(t, []string{"family", "pets", "family"}, s.Form().Tags)

	assert.True(t, s.RemoveFromList(Tags, "family"))
	assert.Equal(t, []string{"pets"}, s.Form().Tags)
}

func TestStore_Rooms(t *testing.T) {
	s := NewStore()

	first := s.AddRoom(NewRoomDraft())
	second := s.AddRoom(RoomDraft{Name: "Attic"})
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	assert.True(t, s.UpdateRoom(first, func(r *RoomDraft) { r.Name = "Garden suite" }))
	assert.False(t, s.UpdateRoom("missing", func(r *RoomDraft) { r.Name = "x" }))

	rooms := s.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "Garden suite", rooms[0].Name)
	assert.Equal(t, first, rooms[0].ClientID, "client id survives updates")

	assert.True(t, s.RemoveRoom(first))
	assert.False(t, s.RemoveRoom(first))
	rooms = s.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "Attic", rooms[0].Name)
}

func TestStore_RoomsReturnsCopies(t *testing.T) {
	s := NewStore()
	id := s.AddRoom(RoomDraft{Name: "Loft", Amenities: []string{"desk"}})

	rooms := s.Rooms()
	rooms[0].Amenities[0] = "changed"

	assert.Equal(t, []string{"desk"}, s.Rooms()[0].Amenities)
	assert.Equal(t, id, s.Rooms()[0].ClientID)
}

func TestStore_Blocks(t *testing.T) {
	s := NewStore()

	id := s.AddBlock(AvailabilityBlock{StartDate: "2025-03-01", EndDate: "2025-03-02"})
	assert.True(t, s.UpdateBlock(id, func(b *AvailabilityBlock) { b.Notes = "Repainting" }))

	blocks := s.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, "Repainting", blocks[0].Notes)

	assert.True(t, s.RemoveBlock(id))
	assert.Empty(t, s.Blocks())
}
