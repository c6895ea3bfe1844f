package logging

import (
	"log/slog"
	"testing"
)

func TestRedactString_Passport(t *testing.T) {
	redactor := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single letter prefix",
			input: "passport X1234567 on file",
			want:  "passport X******* on file",
		},
		{
			name:  "two letter prefix",
			input: "GB123456789",
			want:  "GB*******",
		},
		{
			name:  "minimum digits",
			input: "A123456",
			want:  "A*******",
		},
		{
			name:  "too few digits untouched",
			input: "A12345",
			want:  "A12345",
		},
		{
			name:  "lowercase prefix untouched",
			input: "x1234567",
			want:  "x1234567",
		},
		{
			name:  "embedded in sentence",
			input: "applicant holds P9876543 issued 2021",
			want:  "applicant holds P******* issued 2021",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactString_Email(t *testing.T) {
	redactor := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple email",
			input: "contact user@example.com today",
			want:  "contact u***@example.com today",
		},
		{
			name:  "dotted local part",
			input: "pat.doe@example.org",
			want:  "p***@example.org",
		},
		{
			name:  "plus tag",
			input: "a+tag@mail.example.co.uk",
			want:  "a***@mail.example.co.uk",
		},
		{
			name:  "no email untouched",
			input: "nothing to see here",
			want:  "nothing to see here",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactAttr_SensitiveKeys(t *testing.T) {
	redactor := NewRedactor()

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{
			name: "passport key masked entirely",
			attr: slog.String("passport_number", "X1234567"),
			want: "***",
		},
		{
			name: "email key masked entirely",
			attr: slog.String("applicant_email", "user@example.com"),
			want: "***",
		},
		{
			name: "national id masked",
			attr: slog.String("national_id", "8412039981"),
			want: "***",
		},
		{
			name: "date of birth masked",
			attr: slog.String("date_of_birth", "1990-03-14"),
			want: "***",
		},
		{
			name: "phone masked",
			attr: slog.String("phone", "+44 20 7946 0958"),
			want: "***",
		},
		{
			name: "non-sensitive key pattern scanned",
			attr: slog.String("note", "passport X1234567"),
			want: "passport X*******",
		},
		{
			name: "plain key untouched",
			attr: slog.String("outcome", "likely"),
			want: "likely",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactor.RedactAttr(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("RedactAttr(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactAttr_NonStringValues(t *testing.T) {
	redactor := NewRedactor()

	attr := redactor.RedactAttr(slog.Int("requirements_total", 12))
	if attr.Value.Kind() != slog.KindInt64 || attr.Value.Int64() != 12 {
		t.Errorf("non-string value changed: %v", attr)
	}

	// Sensitive key masks regardless of value kind.
	attr = redactor.RedactAttr(slog.Int("phone", 2079460958))
	if attr.Value.String() != "***" {
		t.Errorf("sensitive int value not masked: %v", attr)
	}
}

func TestRedactAttr_Group(t *testing.T) {
	redactor := NewRedactor()

	attr := redactor.RedactAttr(slog.Group("applicant",
		slog.String("passport", "X1234567"),
		slog.String("name", "Pat Doe"),
	))

	if attr.Value.Kind() != slog.KindGroup {
		t.Fatalf("group attr changed kind: %v", attr.Value.Kind())
	}

	members := attr.Value.Group()
	if len(members) != 2 {
		t.Fatalf("got %d group members, want 2", len(members))
	}
	if members[0].Value.String() != "***" {
		t.Errorf("group passport not masked: %v", members[0])
	}
	if members[1].Value.String() != "Pat Doe" {
		t.Errorf("group name changed: %v", members[1])
	}
}

func TestMaskPassport(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"X1234567", "X*******"},
		{"GB123456789", "GB*******"},
		{"1234567", "***"},
		{"ABCDEFG", "***"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MaskPassport(tt.input); got != tt.want {
				t.Errorf("MaskPassport(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "u***@example.com"},
		{"a@b.co", "a***@b.co"},
		{"@example.com", "***@example.com"},
		{"not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MaskEmail(tt.input); got != tt.want {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
