// Package i18n is the localization lookup service: message keys resolved to
// strings for a locale, backed by embedded YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a requested locale is not supported.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Translator resolves message keys for the supported locales.
type Translator struct {
	builder  *catalog.Builder
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// New loads the embedded catalogs.
func New() (*Translator, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads every locales/*.yaml file in fsys. The default locale
// must be present.
func LoadFromFS(fsys fs.FS) (*Translator, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale catalogs found")
	}
	sort.Strings(paths)

	t := &Translator{
		builder:  catalog.NewBuilder(catalog.Fallback(language.Make(DefaultLocale))),
		messages: make(map[string]map[string]string),
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := t.add(path, file); err != nil {
			return nil, err
		}
	}

	if _, ok := t.messages[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %s is not defined in catalogs", DefaultLocale)
	}
	if err := t.fillGaps(); err != nil {
		return nil, err
	}

	// The default locale leads so the matcher falls back to it.
	sort.SliceStable(t.tags, func(i, j int) bool {
		return t.tags[i].String() == DefaultLocale && t.tags[j].String() != DefaultLocale
	})
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

func (t *Translator) add(path string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", path)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale %q: %w", path, locale, err)
	}
	if _, exists := t.messages[tag.String()]; exists {
		return fmt.Errorf("catalog %s: locale %q defined twice", path, locale)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if err := t.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: set %q: %w", path, key, err)
		}
		messages[key] = value
	}

	t.messages[tag.String()] = messages
	t.tags = append(t.tags, tag)
	return nil
}

// fillGaps copies default-locale messages into every other locale's catalog
// entry that lacks them, so formatted lookups never print the bare key.
func (t *Translator) fillGaps() error {
	defaults := t.messages[DefaultLocale]
	for _, tag := range t.tags {
		locale := tag.String()
		if locale == DefaultLocale {
			continue
		}
		for key, value := range defaults {
			if _, ok := t.messages[locale][key]; ok {
				continue
			}
			if err := t.builder.SetString(tag, key, value); err != nil {
				return fmt.Errorf("locale %s: fill %q: %w", locale, key, err)
			}
		}
	}
	return nil
}

// Normalize returns the supported locale closest to locale.
func (t *Translator) Normalize(locale string) string {
	return t.match(locale).String()
}

// Lookup returns the message for key in locale, falling back to the default
// locale and finally to the key itself.
func (t *Translator) Lookup(locale, key string) string {
	if msg, ok := t.messages[t.match(locale).String()][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Translate formats the message for key with args. Missing keys fall back
// the same way Lookup does.
func (t *Translator) Translate(locale, key string, args ...any) string {
	p := message.NewPrinter(t.match(locale), message.Catalog(t.builder))
	return p.Sprintf(key, args...)
}

// Messages returns a copy of the full message map for the closest supported
// locale, with default-locale entries filling any gaps.
func (t *Translator) Messages(locale string) map[string]string {
	matched := t.match(locale).String()

	out := make(map[string]string, len(t.messages[DefaultLocale]))
	for k, v := range t.messages[DefaultLocale] {
		out[k] = v
	}
	for k, v := range t.messages[matched] {
		out[k] = v
	}
	return out
}

// Supported returns the supported locales, default first.
func (t *Translator) Supported() []string {
	out := make([]string, len(t.tags))
	for i, tag := range t.tags {
		out[i] = tag.String()
	}
	return out
}

func (t *Translator) match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return t.tags[0]
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return t.tags[0]
	}
	_, index, confidence := t.matcher.Match(tag)
	if confidence == language.No {
		return t.tags[0]
	}
	return t.tags[index]
}
