package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmailAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid address", "alice@example.com", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"missing at sign", "alice.example.com", true},
		{"missing dot", "alice@example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmailAddress(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber("+15551234567"))
	assert.Error(t, ValidatePhoneNumber(""))
	assert.Error(t, ValidatePhoneNumber("   "))
}
