package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const (
	LangZH = "zh"
	LangEN = "en"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	supported       []string
}

// NewEmbeddedManager loads the locales compiled into the binary.
func NewEmbeddedManager(defaultLanguage string) (*Manager, error) {
	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return NewManager(defaultLanguage, locales)
}

// NewManager loads every *.json file at the root of locales.
func NewManager(defaultLanguage string, locales fs.FS) (*Manager, error) {
	manager := &Manager{
		locales: map[string]map[string]string{},
	}

	entries, err := fs.ReadDir(locales, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		language := strings.TrimSuffix(strings.ToLower(entry.Name()), path.Ext(entry.Name()))
		content, err := fs.ReadFile(locales, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}

		manager.locales[language] = messages
		manager.supported = append(manager.supported, language)
	}

	if len(manager.supported) == 0 {
		return nil, fmt.Errorf("no locales found")
	}
	if _, ok := manager.locales[LangZH]; !ok {
		return nil, fmt.Errorf("required locale %q missing", LangZH)
	}

	sort.Strings(manager.supported)
	manager.defaultLanguage = LangZH
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	result := make([]string, len(manager.supported))
	copy(result, manager.supported)
	return result
}

func (manager *Manager) NormalizeLanguage(raw string) string {
	normalized := normalizeLanguageTag(raw)
	if normalized == "" {
		return manager.defaultLanguage
	}
	if manager.isSupported(normalized) {
		return normalized
	}
	return manager.defaultLanguage
}

func (manager *Manager) DetectFromAcceptLanguage(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		token = strings.TrimSpace(strings.Split(token, ";")[0])
		normalized := normalizeLanguageTag(token)
		if manager.isSupported(normalized) {
			return normalized
		}
	}
	return manager.defaultLanguage
}

func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.lookup(manager.NormalizeLanguage(language), key); ok {
		return value
	}
	if value, ok := manager.lookup(manager.defaultLanguage, key); ok {
		return value
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	if len(args) == 0 {
		return manager.Translate(language, key)
	}
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

// Translator binds language for callers that only know message keys.
func (manager *Manager) Translator(language string) func(key string, args ...any) string {
	language = manager.NormalizeLanguage(language)
	return func(key string, args ...any) string {
		return manager.Translatef(language, key, args...)
	}
}

func (manager *Manager) lookup(language string, key string) (string, bool) {
	value, ok := manager.locales[language][key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (manager *Manager) isSupported(language string) bool {
	if language == "" {
		return false
	}
	_, ok := manager.locales[language]
	return ok
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	if language == "" {
		return ""
	}
	language = strings.ReplaceAll(language, "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	return language
}
