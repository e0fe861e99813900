// Package locale resolves the Accept-Language header to a message catalog.
//
// Catalogs are JSON files embedded per language and namespace
// (locales/<lang>/<namespace>.json). The core never branches on locale;
// handlers look up presentation messages here.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

// Namespaces of message catalogs.
const (
	NamespaceAuth       = "auth"
	NamespaceUser       = "user"
	NamespaceValidation = "validation"
)

// English first: unknown language tags match it with low confidence.
var supported = []language.Tag{
	language.English,
	language.German,
	language.Indonesian,
	language.Japanese,
}

var matcher = language.NewMatcher(supported)

//go:embed locales/*/*.json
var catalogFS embed.FS

// Catalog holds every loaded language.
type Catalog struct {
	// lang -> namespace -> key -> message
	byLang map[string]map[string]map[string]string
}

// Messages is the catalog view for one resolved language, falling back to
// English and finally to the key itself for missing entries.
type Messages struct {
	lang    string
	catalog *Catalog
}

// Load parses all embedded catalog files.
func Load() (*Catalog, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no message catalogs embedded")
	}

	c := &Catalog{byLang: make(map[string]map[string]map[string]string)}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", p, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", p, err)
		}

		lang := path.Base(path.Dir(p))
		ns := strings.TrimSuffix(path.Base(p), ".json")
		if c.byLang[lang] == nil {
			c.byLang[lang] = make(map[string]map[string]string)
		}
		c.byLang[lang][ns] = messages
	}
	return c, nil
}

// MustLoad loads the embedded catalogs or panics. Catalogs are compiled in,
// so a failure here is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// ResolveTag picks the best supported language for an Accept-Language
// header. An absent header selects German (historical default); a present
// but unknown language falls back to English.
func ResolveTag(header string) language.Tag {
	if strings.TrimSpace(header) == "" {
		return language.German
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Resolve returns the Messages view for an Accept-Language header.
func (c *Catalog) Resolve(header string) *Messages {
	return c.For(ResolveTag(header))
}

// For returns the Messages view for a resolved tag.
func (c *Catalog) For(tag language.Tag) *Messages {
	return &Messages{lang: tag.String(), catalog: c}
}

// Lang returns the language code of this view.
func (m *Messages) Lang() string { return m.lang }

// Auth looks up a message in the auth namespace.
func (m *Messages) Auth(key string) string { return m.get(NamespaceAuth, key) }

// User looks up a message in the user namespace.
func (m *Messages) User(key string) string { return m.get(NamespaceUser, key) }

// Validation looks up a message in the validation namespace.
func (m *Messages) Validation(key string) string { return m.get(NamespaceValidation, key) }

func (m *Messages) get(namespace, key string) string {
	if msg, ok := m.catalog.lookup(m.lang, namespace, key); ok {
		return msg
	}
	if msg, ok := m.catalog.lookup("en", namespace, key); ok {
		return msg
	}
	return key
}

func (c *Catalog) lookup(lang, namespace, key string) (string, bool) {
	ns, ok := c.byLang[lang]
	if !ok {
		return "", false
	}
	messages, ok := ns[namespace]
	if !ok {
		return "", false
	}
	msg, ok := messages[key]
	return msg, ok
}
