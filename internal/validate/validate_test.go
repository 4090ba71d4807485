package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckEmail(t *testing.T) {
	cases := map[string]error{
		"ada@example.com":         nil,
		"ada.lovelace+x@mail.org": nil,
		"":                        ErrEmailRequired,
		"   ":                     ErrEmailRequired,
		"ada":                     ErrInvalidEmail,
		"ada@localhost":           ErrInvalidEmail,
		"Ada <ada@example.com>":   ErrInvalidEmail,
		" ada@example.com":        ErrInvalidEmail,
	}
	for in, want := range cases {
		assert.ErrorIs(t, CheckEmail(in), want, "input %q", in)
		assert.Equal(t, want == nil, Email(in), "input %q", in)
	}
}

func TestCheckPassword(t *testing.T) {
	cases := map[string]error{
		"s3cretpass":             nil,
		"":                       ErrPasswordRequired,
		"a1":                     ErrPasswordTooShort,
		"onlyletters":            ErrPasswordTooWeak,
		"1234567890":             ErrPasswordTooWeak,
		strings.Repeat("a1", 40): ErrPasswordTooLong,
	}
	for in, want := range cases {
		assert.ErrorIs(t, CheckPassword(in), want, "input %q", in)
		assert.Equal(t, want == nil, Password(in), "input %q", in)
	}
}

func TestCheckDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"Ada", nil},
		{"  Ada Lovelace  ", nil},
		{strings.Repeat("é", MaxDisplayNameLength), nil},
		{"", ErrDisplayNameRequired},
		{"   ", ErrDisplayNameRequired},
		{strings.Repeat("é", MaxDisplayNameLength+1), ErrDisplayNameTooLong},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, CheckDisplayName(tc.in), tc.want, "input %q", tc.in)
		assert.Equal(t, tc.want == nil, DisplayName(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
