package turnnode

import "strings"

const idPreviewLen = 8

// idPreview shortens an opaque identifier for human-readable step details.
// Previews are display-only and never used for matching.
func idPreview(id string) string {
	trimmed := strings.TrimSpace(id)
	if len(trimmed) <= idPreviewLen {
		return trimmed
	}
	return trimmed[:idPreviewLen]
}

// cardLast4 is the only part of a card number allowed into traces or logs.
func cardLast4(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
