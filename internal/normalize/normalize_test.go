package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "international prefix rewritten",
			input:    "+33612345678",
			expected: "0612345678",
		},
		{
			name:     "already normalized passes through",
			input:    "0612345678",
			expected: "0612345678",
		},
		{
			name:     "other country code untouched",
			input:    "+49151234567",
			expected: "+49151234567",
		},
		{
			name:     "prefix only in the middle is not rewritten",
			input:    "06+3312345",
			expected: "06+3312345",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "bare prefix",
			input:    "+33",
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PhoneNumber(tt.input))
		})
	}
}

func TestPhoneNumberIdempotent(t *testing.T) {
	once := PhoneNumber("+33612345678")
	assert.Equal(t, once, PhoneNumber(once))
}

func TestForDisplay(t *testing.T) {
	assert.Equal(t, "061 234 567 8", ForDisplay("0612345678"))
	assert.Equal(t, "", ForDisplay(""))
	assert.Equal(t, "06", ForDisplay("06"))
}
