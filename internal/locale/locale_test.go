package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResolveTag(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   language.Tag
	}{
		{"missing header falls back to German", "", language.German},
		{"exact match", "ja", language.Japanese},
		{"region subtag", "id-ID", language.Indonesian},
		{"quality list", "de-DE,de;q=0.9,en;q=0.8", language.German},
		{"unknown language falls back to English", "fr", language.English},
		{"garbage header falls back to English", ";;;", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTag(tt.header))
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	en := c.Resolve("en")
	assert.Equal(t, "User successfully created.", en.Auth("register.success"))
	assert.Equal(t, "User not found", en.User("fetch.not_found"))

	de := c.Resolve("de")
	assert.Equal(t, "Benutzer nicht gefunden", de.User("fetch.not_found"))
	assert.Equal(t, "Das Passwort muss mindestens 8 Zeichen lang sein", de.Validation("password.too_short"))

	ja := c.Resolve("ja")
	assert.NotEqual(t, en.Auth("login.success"), ja.Auth("login.success"))
}

func TestCatalogFallsBackToEnglishThenKey(t *testing.T) {
	c := MustLoad()

	de := c.For(language.German)
	// a key present only in English still resolves
	assert.NotEmpty(t, de.Auth("register.success"))
	// an unknown key resolves to itself
	assert.Equal(t, "no.such.key", de.Auth("no.such.key"))
}
