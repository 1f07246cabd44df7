package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stayadmin/homestay-editor/pkg/editor"
)

const dateLayout = "2006-01-02"

func (s *Session) editAvailability(ctx context.Context) error {
	for {
		blocks := s.ctrl.Blocks()
		options := make([]string, 0, len(blocks)+2)
		for _, b := range blocks {
			options = append(options, blockLabel(b))
		}
		options = append(options, "Block dates", actionBack)

		idx, err := s.driver.Select(ctx, SelectConfig{Message: "Blocked dates", Options: options})
		if err != nil {
			return err
		}
		switch {
		case idx < 0:
			continue
		case idx < len(blocks):
			if err := s.blockActions(ctx, blocks[idx]); err != nil {
				return err
			}
		case options[idx] == "Block dates":
			block, err := s.askBlock(ctx, editor.AvailabilityBlock{})
			if err != nil {
				return err
			}
			s.ctrl.AddBlock(block)
		default:
			return nil
		}
	}
}

func (s *Session) blockActions(ctx context.Context, block editor.AvailabilityBlock) error {
	options := []string{actionEdit, actionRemove, actionBack}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: blockLabel(block), Options: options})
	if err != nil || idx < 0 {
		return err
	}
	switch options[idx] {
	case actionEdit:
		updated, err := s.askBlock(ctx, block)
		if err != nil {
			return err
		}
		s.ctrl.UpdateBlock(block.ClientID, func(b *editor.AvailabilityBlock) {
			b.StartDate = updated.StartDate
			b.EndDate = updated.EndDate
			b.Notes = updated.Notes
		})
	case actionRemove:
		s.ctrl.RemoveBlock(block.ClientID)
	}
	return nil
}

func (s *Session) askBlock(ctx context.Context, current editor.AvailabilityBlock) (editor.AvailabilityBlock, error) {
	start, err := s.driver.Input(ctx, InputConfig{
		Message:   "First blocked date",
		Default:   current.StartDate,
		Help:      "YYYY-MM-DD",
		Validator: validateDate,
	})
	if err != nil {
		return current, err
	}
	start = strings.TrimSpace(start)

	end := current.EndDate
	if end == "" {
		end = start
	}
	end, err = s.driver.Input(ctx, InputConfig{
		Message: "Last blocked date",
		Default: end,
		Help:    "YYYY-MM-DD, inclusive",
		Validator: func(raw string) error {
			if err := validateDate(raw); err != nil {
				return err
			}
			days, ok := editor.BlockDays(start, strings.TrimSpace(raw))
			if !ok {
				return errors.New("must not be before the first date")
			}
			if days > editor.MaxBlockDays {
				return fmt.Errorf("a block may cover at most %d days", editor.MaxBlockDays)
			}
			return nil
		},
	})
	if err != nil {
		return current, err
	}

	notes, err := s.driver.Input(ctx, InputConfig{Message: "Notes", Default: current.Notes})
	if err != nil {
		return current, err
	}

	current.StartDate = start
	current.EndDate = strings.TrimSpace(end)
	current.Notes = notes
	return current, nil
}

func validateDate(raw string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(raw)); err != nil {
		return errors.New("use the YYYY-MM-DD format")
	}
	return nil
}

func blockLabel(b editor.AvailabilityBlock) string {
	label := b.StartDate
	if b.EndDate != "" && b.EndDate != b.StartDate {
		label = fmt.Sprintf("%s to %s", b.StartDate, b.EndDate)
	}
	if notes := strings.TrimSpace(b.Notes); notes != "" {
		label += ": " + notes
	}
	return label
}
