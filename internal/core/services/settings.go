package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Config keys for settings storage.
const (
	keyCachePath          = "cache.path"
	keyCacheBackend       = "cache.backend"
	keyCacheKey           = "cache.key"
	keyRecognitionMode    = "recognition.mode"
	keyRecognitionDPI     = "recognition.dpi"
	keyRecognitionLangs   = "recognition.languages"
	keyRecognitionEngines = "recognition.engines"
	keyTextLayerEngines   = "textlayer.engines"
	keyNormaliseAlphabet  = "normalise.alphabet"
	keyNormaliseRepair    = "normalise.repair"
	keySearchWorkers      = "search.workers"
	keySearchTimeout      = "search.timeout"
	keySearchExtensions   = "search.extensions"
	keySearchRetryFailed  = "search.retry_failed"
	keyOutputURLPrefix    = "output.url_prefix"
	keyToolPrefix         = "tools."
)

// settingKind describes how a config value is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindDuration
	kindList
	kindIntList
)

// setting binds a config key to a Settings field.
type setting struct {
	kind  settingKind
	apply func(s *domain.Settings, v any)
}

var settingKeys = map[string]setting{
	keyCachePath: {kindString, func(s *domain.Settings, v any) { s.CachePath = v.(string) }},
	keyCacheBackend: {kindString, func(s *domain.Settings, v any) {
		s.CacheBackend = domain.CacheBackend(v.(string))
	}},
	keyCacheKey: {kindString, func(s *domain.Settings, v any) { s.KeyMode = domain.KeyMode(v.(string)) }},
	keyRecognitionMode: {kindString, func(s *domain.Settings, v any) {
		s.RecognitionMode = domain.RecognitionMode(v.(string))
	}},
	keyRecognitionDPI:     {kindIntList, func(s *domain.Settings, v any) { s.DPIs = v.([]int) }},
	keyRecognitionLangs:   {kindList, func(s *domain.Settings, v any) { s.Languages = SplitLanguages(v.([]string)) }},
	keyRecognitionEngines: {kindList, func(s *domain.Settings, v any) { s.OCREngines = v.([]string) }},
	keyTextLayerEngines:   {kindList, func(s *domain.Settings, v any) { s.TextEngines = v.([]string) }},
	keyNormaliseAlphabet:  {kindString, func(s *domain.Settings, v any) { s.Alphabet = v.(string) }},
	keyNormaliseRepair:    {kindList, func(s *domain.Settings, v any) { s.Repair = v.([]string) }},
	keySearchWorkers:      {kindInt, func(s *domain.Settings, v any) { s.Workers = v.(int) }},
	keySearchTimeout:      {kindDuration, func(s *domain.Settings, v any) { s.Timeout = v.(time.Duration) }},
	keySearchExtensions:   {kindList, func(s *domain.Settings, v any) { s.Extensions = v.([]string) }},
	keySearchRetryFailed:  {kindBool, func(s *domain.Settings, v any) { s.RetryFailed = v.(bool) }},
	keyOutputURLPrefix:    {kindString, func(s *domain.Settings, v any) { s.URLPrefix = v.(string) }},
}

// lookup returns the binding for a key, including tools.<name> keys.
func lookup(key string) (setting, bool) {
	if st, ok := settingKeys[key]; ok {
		return st, true
	}
	if name, ok := strings.CutPrefix(key, keyToolPrefix); ok && name != "" {
		return setting{kindString, func(s *domain.Settings, v any) {
			if s.Tools == nil {
				s.Tools = make(map[string]string)
			}
			s.Tools[name] = v.(string)
		}}, true
	}
	return setting{}, false
}

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService resolves the effective configuration from defaults and
// the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Keys returns every supported config key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys)+4)
	for key := range settingKeys {
		keys = append(keys, key)
	}
	for name := range domain.DefaultSettings().Tools {
		keys = append(keys, keyToolPrefix+name)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the defaults overridden by stored values.
// Stored values of the wrong type are reported as errors; unknown keys
// are ignored with a warning so older or newer files still load.
func (s *SettingsService) Get() (domain.Settings, error) {
	settings := domain.DefaultSettings()
	for _, key := range s.configStore.Keys() {
		st, ok := lookup(key)
		if !ok {
			logger.Warn("config %s: unknown key ignored", key)
			continue
		}
		raw, _ := s.configStore.Get(key)
		value, err := parseValue(st.kind, raw)
		if err != nil {
			return settings, fmt.Errorf("config %s: %w", key, err)
		}
		st.apply(&settings, value)
	}
	return settings, nil
}

// Load applies overrides, keyed like the config file and given as text,
// on top of Get and validates the result. Command-line flags arrive here.
func (s *SettingsService) Load(overrides map[string]string) (domain.Settings, error) {
	settings, err := s.Get()
	if err != nil {
		return settings, err
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		st, ok := lookup(key)
		if !ok {
			return settings, fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
		}
		value, err := parseValue(st.kind, overrides[key])
		if err != nil {
			return settings, fmt.Errorf("%s: %w", key, err)
		}
		st.apply(&settings, value)
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Set parses, validates and stores a single value given as text.
func (s *SettingsService) Set(key, raw string) error {
	st, ok := lookup(key)
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	value, err := parseValue(st.kind, raw)
	if err != nil {
		return fmt.Errorf("config %s: %w", key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	st.apply(&settings, value)
	if err := settings.Validate(); err != nil {
		return err
	}

	if d, ok := value.(time.Duration); ok {
		return s.configStore.Set(key, d.String())
	}
	return s.configStore.Set(key, value)
}

// Unset removes a stored value so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := lookup(key); !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// SplitLanguages expands "rus+eng" style entries into separate languages.
func SplitLanguages(values []string) []string {
	var langs []string
	for _, v := range values {
		for _, lang := range strings.Split(v, "+") {
			if lang = strings.TrimSpace(lang); lang != "" {
				langs = append(langs, lang)
			}
		}
	}
	return langs
}

// ParseDPIs parses a comma-separated resolution list such as "100,300".
func ParseDPIs(raw string) ([]int, error) {
	v, err := parseValue(kindIntList, raw)
	if err != nil {
		return nil, err
	}
	return v.([]int), nil
}

// parseValue converts a stored TOML value or command-line text to the
// Go type of a setting kind.
func parseValue(kind settingKind, raw any) (any, error) {
	switch kind {
	case kindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	case kindInt:
		return toInt(raw)
	case kindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
	case kindDuration:
		switch v := raw.(type) {
		case string:
			return time.ParseDuration(v)
		case int64:
			return time.Duration(v) * time.Second, nil
		case int:
			return time.Duration(v) * time.Second, nil
		}
	case kindList:
		return toStrings(raw)
	case kindIntList:
		items, err := toList(raw)
		if err != nil {
			return nil, err
		}
		ints := make([]int, 0, len(items))
		for _, item := range items {
			n, err := toInt(item)
			if err != nil {
				return nil, err
			}
			ints = append(ints, n.(int))
		}
		return ints, nil
	}
	return nil, fmt.Errorf("%w: unexpected value %v (%T)", domain.ErrInvalidInput, raw, raw)
}

func toInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: unexpected value %v (%T)", domain.ErrInvalidInput, raw, raw)
}

// toList accepts TOML arrays, Go slices and comma-separated text.
func toList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case []int:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case []int64:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case string:
		var out []any
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unexpected value %v (%T)", domain.ErrInvalidInput, raw, raw)
}

func toStrings(raw any) (any, error) {
	items, err := toList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected text, got %v", domain.ErrInvalidInput, item)
		}
		out = append(out, str)
	}
	return out, nil
}
