package adminauth

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats a phone number as E.164 for the signup payload.
// The wizard validator only requires the loose dial-pattern shape, so
// numbers that do not parse as a valid number for the region are sent as
// the user typed them.
func NormalizePhone(raw, region string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	num, err := phonenumbers.Parse(trimmed, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return trimmed
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
