// Package i18n renders user-facing error messages from embedded locale catalogs.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedFS embed.FS

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

var (
	loadOnce sync.Once
	loadErr  error
	catalogs map[string]*Catalog
)

// GetCatalog returns the catalog for the given locale, falling back to
// en-US when the locale is unknown or the catalogs failed to load.
func GetCatalog(locale string) *Catalog {
	loadOnce.Do(loadEmbedded)

	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	if c, ok := catalogs[requested]; ok {
		return c
	}
	if c, ok := catalogs[BaseLocale]; ok {
		return c
	}
	return &Catalog{locale: requested, messages: map[string]string{}}
}

// LoadErr reports whether the embedded catalogs failed to parse.
func LoadErr() error {
	loadOnce.Do(loadEmbedded)
	return loadErr
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Falls back to the code itself when no template is defined. Templates are
// always executed, even with empty metadata, so output stays consistent.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	parsed, err := template.New(code).Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// loadEmbedded parses every embedded catalog file and registers its messages
// with x/text so message.Printer lookups resolve per locale.
func loadEmbedded() {
	catalogs = map[string]*Catalog{}

	paths, err := fs.Glob(embeddedFS, "locales/*.yaml")
	if err != nil || len(paths) == 0 {
		loadErr = fmt.Errorf("no locale catalogs embedded")
		return
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := fs.ReadFile(embeddedFS, path)
		if err != nil {
			loadErr = fmt.Errorf("read catalog %s: %w", path, err)
			return
		}
		locale, messages, err := parseCatalog(string(data))
		if err != nil {
			loadErr = fmt.Errorf("parse catalog %s: %w", path, err)
			return
		}
		catalogs[locale] = &Catalog{locale: locale, messages: messages}

		tag, err := language.Parse(locale)
		if err != nil {
			loadErr = fmt.Errorf("parse locale tag %q: %w", locale, err)
			return
		}
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			message.SetString(tag, key, messages[key])
		}
	}
}

// parseCatalog reads the minimal catalog format: a `locale:` header followed
// by a `messages:` block of `KEY: "value"` lines. Comments and blank lines
// are skipped.
func parseCatalog(data string) (string, map[string]string, error) {
	locale := ""
	messages := map[string]string{}
	inMessages := false

	for _, rawLine := range strings.Split(data, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "locale:"):
			locale = unquote(strings.TrimSpace(strings.TrimPrefix(line, "locale:")))
		case line == "messages:":
			inMessages = true
		default:
			if !inMessages {
				return "", nil, fmt.Errorf("unexpected line %q", line)
			}
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				return "", nil, fmt.Errorf("malformed message entry %q", line)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return "", nil, fmt.Errorf("blank message key in %q", line)
			}
			messages[key] = unquote(strings.TrimSpace(value))
		}
	}

	if locale == "" {
		return "", nil, fmt.Errorf("missing locale header")
	}
	if len(messages) == 0 {
		return "", nil, fmt.Errorf("catalog has no messages")
	}
	return locale, messages, nil
}

func unquote(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}
