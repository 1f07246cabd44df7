package prompt

import (
	"fmt"
	"strings"

	"github.com/stayadmin/homestay-editor/pkg/editor"
)

// StatusLine summarizes the session state shown above the main menu
func StatusLine(ctrl *editor.Controller) string {
	form := ctrl.Form()

	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = "Untitled homestay"
	}

	parts := []string{modeLabel(ctrl.Mode()) + ": " + title}
	if form.Slug != "" {
		parts = append(parts, "slug "+form.Slug+slugSuffix(ctrl.SlugStatus()))
	}
	parts = append(parts, fmt.Sprintf("%d rooms", len(ctrl.Rooms())))
	parts = append(parts, fmt.Sprintf("%d blocked ranges", len(ctrl.Blocks())))

	switch {
	case ctrl.Saving():
		parts = append(parts, "Saving...")
	case ctrl.LastError() != "":
		parts = append(parts, "Error: "+ctrl.LastError())
	case ctrl.ShowSaved():
		parts = append(parts, "Draft saved")
	}
	return strings.Join(parts, " | ")
}

func modeLabel(mode editor.Mode) string {
	if m, ok := mode.(editor.EditMode); ok {
		return "Editing " + m.ID
	}
	return "New homestay"
}

func slugSuffix(status editor.SlugStatus) string {
	switch status {
	case editor.SlugChecking:
		return " (checking...)"
	case editor.SlugAvailable:
		return " (available)"
	case editor.SlugConflict:
		return " (already taken)"
	default:
		return ""
	}
}
