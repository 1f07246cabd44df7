package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/stayadmin/homestay-editor/pkg/editor"
)

const (
	actionEdit   = "Edit"
	actionRemove = "Remove"
	actionBack   = "Back"
)

func (s *Session) editRooms(ctx context.Context) error {
	for {
		rooms := s.ctrl.Rooms()
		options := make([]string, 0, len(rooms)+2)
		for i, r := range rooms {
			options = append(options, roomLabel(i, r))
		}
		options = append(options, "Add room", actionBack)

		idx, err := s.driver.Select(ctx, SelectConfig{Message: "Rooms", Options: options})
		if err != nil {
			return err
		}
		switch {
		case idx < 0:
			continue
		case idx < len(rooms):
			if err := s.roomActions(ctx, rooms[idx].ClientID); err != nil {
				return err
			}
		case options[idx] == "Add room":
			id := s.ctrl.AddRoom(editor.NewRoomDraft())
			if err := s.editRoom(ctx, id); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Session) roomActions(ctx context.Context, clientID string) error {
	options := []string{actionEdit, actionRemove, actionBack}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Room", Options: options})
	if err != nil || idx < 0 {
		return err
	}
	switch options[idx] {
	case actionEdit:
		return s.editRoom(ctx, clientID)
	case actionRemove:
		s.ctrl.RemoveRoom(clientID)
	}
	return nil
}

// editRoom prompts every room field and applies them in one update
func (s *Session) editRoom(ctx context.Context, clientID string) error {
	room, ok := findRoom(s.ctrl.Rooms(), clientID)
	if !ok {
		return nil
	}

	name, err := s.driver.Input(ctx, InputConfig{Message: "Room name", Default: room.Name})
	if err != nil {
		return err
	}
	roomType, err := s.driver.Input(ctx, InputConfig{Message: "Room type", Default: room.RoomType})
	if err != nil {
		return err
	}
	description, err := s.driver.Input(ctx, InputConfig{Message: "Room description", Default: room.Description})
	if err != nil {
		return err
	}

	maxGuests, err := s.inputInt(ctx, "Max guests", room.MaxGuests)
	if err != nil {
		return err
	}
	bedCount, err := s.inputInt(ctx, "Beds", room.BedCount)
	if err != nil {
		return err
	}
	quantity, err := s.inputInt(ctx, "Quantity", room.Quantity)
	if err != nil {
		return err
	}
	basePrice, err := s.inputFloat(ctx, "Room price per night", room.BasePrice)
	if err != nil {
		return err
	}

	amenities, err := s.driver.Input(ctx, InputConfig{
		Message: "Room amenities",
		Default: strings.Join(room.Amenities, ", "),
		Help:    "Comma separated",
	})
	if err != nil {
		return err
	}
	images, err := s.driver.Input(ctx, InputConfig{
		Message: "Room image URLs",
		Default: strings.Join(room.ImageURLs, ", "),
		Help:    "Comma separated",
	})
	if err != nil {
		return err
	}
	active, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Room is active", Default: room.IsActive})
	if err != nil {
		return err
	}

	s.ctrl.UpdateRoom(clientID, func(r *editor.RoomDraft) {
		r.Name = name
		r.RoomType = roomType
		r.Description = description
		r.MaxGuests = maxGuests
		r.BedCount = bedCount
		r.Quantity = quantity
		r.BasePrice = basePrice
		r.Amenities = splitList(amenities)
		r.ImageURLs = splitList(images)
		r.IsActive = active
	})
	return nil
}

func (s *Session) inputInt(ctx context.Context, label string, current int) (int, error) {
	raw, err := s.driver.Input(ctx, InputConfig{Message: label, Default: formatInt(current), Validator: validateInt})
	if err != nil {
		return 0, err
	}
	v, err := parseInt(raw)
	if err != nil {
		return current, s.info(ctx, fmt.Sprintf("Invalid %s: %v", strings.ToLower(label), err))
	}
	return v, nil
}

func (s *Session) inputFloat(ctx context.Context, label string, current float64) (float64, error) {
	raw, err := s.driver.Input(ctx, InputConfig{Message: label, Default: formatFloat(current), Validator: validateFloat})
	if err != nil {
		return 0, err
	}
	v, err := parseFloat(raw)
	if err != nil {
		return current, s.info(ctx, fmt.Sprintf("Invalid %s: %v", strings.ToLower(label), err))
	}
	return v, nil
}

func findRoom(rooms []editor.RoomDraft, clientID string) (editor.RoomDraft, bool) {
	for _, r := range rooms {
		if r.ClientID == clientID {
			return r, true
		}
	}
	return editor.RoomDraft{}, false
}

func roomLabel(i int, r editor.RoomDraft) string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Untitled room"
	}
	label := fmt.Sprintf("%d. %s", i+1, name)
	if r.RoomType != "" {
		label += " (" + r.RoomType + ")"
	}
	if r.Quantity > 1 {
		label += fmt.Sprintf(" x%d", r.Quantity)
	}
	if !r.IsActive {
		label += " [inactive]"
	}
	return label
}
