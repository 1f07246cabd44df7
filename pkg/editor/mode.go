package editor

// Mode selects between creating a new homestay and editing an existing one.
// It is either CreateMode or EditMode.
type Mode interface {
	isMode()
}

// CreateMode edits an unsaved homestay
type CreateMode struct{}

// EditMode edits a persisted homestay
type EditMode struct {
	ID           string
	OriginalSlug string
}

func (CreateMode) isMode() {}
func (EditMode) isMode()   {}

const (
	createDraftKey     = "admin.homestays.new.draft"
	editDraftKeyPrefix = "admin.homestays.edit."
)

// DraftKey returns the draft storage key for a mode
func DraftKey(mode Mode) string {
	if m, ok := mode.(EditMode); ok {
		return editDraftKeyPrefix + m.ID
	}
	return createDraftKey
}

// editingID returns the id of the entity under edit, or "" when creating
func editingID(mode Mode) string {
	if m, ok := mode.(EditMode); ok {
		return m.ID
	}
	return ""
}

func isEdit(mode Mode) bool {
	_, ok := mode.(EditMode)
	return ok
}
