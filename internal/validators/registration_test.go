package validators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motmatch/mot-marketplace/internal/validators"
)

func TestNormalizeRegistration(t *testing.T) {
	assert.Equal(t, "AB12CDE", validators.NormalizeRegistration("ab12 cde"))
	assert.Equal(t, "AB12CDE", validators.NormalizeRegistration("  AB12CDE  "))
	assert.Equal(t, "A1", validators.NormalizeRegistration("a 1"))
}

func TestIsRegistrationValid(t *testing.T) {
	valid := []string{
		"AB12 CDE", // current style
		"ab12cde",
		"A123 BCD", // prefix
		"ABC 123D", // suffix
		"1234 AB",  // dateless
		"AB 1234",
	}
	for _, reg := range valid {
		assert.True(t, validators.IsRegistrationValid(reg), "expected %q to be valid", reg)
	}

	invalid := []string{
		"",
		"NOT A REG",
		"AB12CDEF9", // too long
		"12 34 56",
		"AB-12-CDE",
	}
	for _, reg := range invalid {
		assert.False(t, validators.IsRegistrationValid(reg), "expected %q to be invalid", reg)
	}
}
