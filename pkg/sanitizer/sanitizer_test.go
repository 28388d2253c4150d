package sanitizer

import (
	"testing"

	"tradedesk/pkg/model"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Ana Lima  ", want: "Ana Lima"},
		{name: "multiple spaces between words", input: "Ana    Lima", want: "Ana Lima"},
		{name: "tabs and newlines", input: "Ana\t\nLima", want: "Ana Lima"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Co™ ", want: "Café & Co™"},
		{name: "hebrew characters", input: " יוסי  כהן ", want: "יוסי כהן"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got := TrimAndNormalize(TrimAndNormalize(tt.input)); got != tt.want {
				t.Errorf("TrimAndNormalize is not idempotent for %q: %q", tt.input, got)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Ana@Example.COM", want: "ana@example.com"},
		{name: "trims", input: "  ana@example.com ", want: "ana@example.com"},
		{name: "strips display name", input: "Ana <ANA@example.com>", want: "ana@example.com"},
		{name: "garbage passes through lowercased", input: " Not An Email ", want: "not an email"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMeetingType(t *testing.T) {
	tests := []struct {
		input model.MeetingType
		want  model.MeetingType
	}{
		{input: " Video ", want: model.MeetingTypeVideo},
		{input: "in-person", want: model.MeetingTypeInPerson},
		{input: "In Person", want: model.MeetingTypeInPerson},
		{input: "phone", want: model.MeetingTypePhone},
	}

	for _, tt := range tests {
		if got := NormalizeMeetingType(tt.input); got != tt.want {
			t.Errorf("NormalizeMeetingType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeBookingRequest(t *testing.T) {
	req := &model.BookingRequest{
		ConsultantID:  " 65F0C0FFEE0000000000AB12 ",
		ClientName:    "  Ana   Lima ",
		ClientEmail:   "ANA@Example.com",
		ClientCompany: " Acme  Ltd ",
		MeetingDate:   " 2025-03-12",
		StartTime:     "10:00 ",
		EndTime:       " 11:00",
		MeetingType:   "In-Person",
	}

	SanitizeBookingRequest(req)

	want := model.BookingRequest{
		ConsultantID:  "65f0c0ffee0000000000ab12",
		ClientName:    "Ana Lima",
		ClientEmail:   "ana@example.com",
		ClientCompany: "Acme Ltd",
		MeetingDate:   "2025-03-12",
		StartTime:     "10:00",
		EndTime:       "11:00",
		MeetingType:   model.MeetingTypeInPerson,
	}
	if *req != want {
		t.Errorf("SanitizeBookingRequest() = %+v, want %+v", *req, want)
	}
}
