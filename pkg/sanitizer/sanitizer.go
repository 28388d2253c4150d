package sanitizer

import (
	"net/mail"
	"strings"
	"unicode"

	"tradedesk/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every run of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail lowercases the address and strips a display name, so
// "Ana <ANA@Example.com>" becomes "ana@example.com". Unparsable input is
// only trimmed and lowercased.
func NormalizeEmail(email string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string {
			if addr, err := mail.ParseAddress(s); err == nil {
				return addr.Address
			}
			return s
		},
		strings.ToLower,
	}
	return p.Apply(email)
}

func NormalizeClock(clock string) string {
	return strings.TrimSpace(clock)
}

func NormalizeMeetingType(t model.MeetingType) model.MeetingType {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
		func(s string) string { return strings.NewReplacer("-", "_", " ", "_").Replace(s) },
	}
	return model.MeetingType(p.Apply(string(t)))
}

func SanitizeBookingRequest(req *model.BookingRequest) {
	req.ConsultantID = strings.ToLower(strings.TrimSpace(req.ConsultantID))
	req.ClientName = NormalizeName(req.ClientName)
	req.ClientEmail = NormalizeEmail(req.ClientEmail)
	req.ClientCompany = NormalizeName(req.ClientCompany)
	req.MeetingDate = strings.TrimSpace(req.MeetingDate)
	req.StartTime = NormalizeClock(req.StartTime)
	req.EndTime = NormalizeClock(req.EndTime)
	req.MeetingType = NormalizeMeetingType(req.MeetingType)
}
