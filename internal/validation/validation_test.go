package validation

import "testing"

func TestIsValidCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{
			name:   "valid example 1",
			number: "79927398713",
			valid:  true,
		},
		{
			name:   "valid example 2",
			number: "4539578763621486",
			valid:  true,
		},
		{
			name:   "invalid checksum",
			number: "79927398710",
			valid:  false,
		},
		{
			name:   "contains letters",
			number: "1234a67890",
			valid:  false,
		},
		{
			name:   "empty string",
			number: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidCardNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidCardNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "phone with separators",
			input: "+7 (999) 111-22-44",
			want:  "79991112244",
		},
		{
			name:  "card with spaces",
			input: "5536 9137 1111 2222",
			want:  "5536913711112222",
		},
		{
			name:  "no digits",
			input: "abc",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digits(tt.input)
			if got != tt.want {
				t.Fatalf("Digits(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already normalized",
			input: "+79991112244",
			want:  "+79991112244",
		},
		{
			name:  "with separators",
			input: "8 (999) 111-22-44",
			want:  "+89991112244",
		},
		{
			name:  "no digits kept as is",
			input: "---",
			want:  "---",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhoneE164(tt.input)
			if got != tt.want {
				t.Fatalf("NormalizePhoneE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
