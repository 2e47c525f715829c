package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for ad and profile fields.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 10_000
	maxNoteLen        = 1_000
	maxCompanyNameLen = 200
	maxAboutLen       = 5_000
	maxDisplayNameLen = 100
)

// phonePattern accepts E.164-style numbers: optional +, 7-15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// validatePhone checks a phone number and returns it in canonical form
// (leading + added if missing), or "" if invalid.
func validatePhone(raw string) string {
	p := strings.TrimSpace(raw)
	if !phonePattern.MatchString(p) {
		return ""
	}
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	return p
}

// validateAd checks ad form inputs and returns the first error found.
func validateAd(title, description string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	return ""
}

// validateNote checks an optional moderation note.
func validateNote(note string) string {
	if utf8.RuneCountInString(note) > maxNoteLen {
		return "Note is too long (max 1,000 characters)."
	}
	return ""
}

// validateDisplayName checks an account's display name.
func validateDisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	return ""
}
