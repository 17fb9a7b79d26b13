package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/db"
	"github.com/hpungsan/tally/internal/errors"
)

// settingsKey is the row holding the settings blob.
const settingsKey = "app"

// Settings is the user-facing preferences blob. The calculator core never
// reads it; surfaces use it for currency formatting and theming.
type Settings struct {
	Currency        calc.Currency `json:"currency"`
	ThemeMode       string        `json:"theme_mode"`
	AccentColor     string        `json:"accent_color"`
	HapticFeedback  bool          `json:"haptic_feedback"`
	HapticIntensity string        `json:"haptic_intensity"`
}

var (
	themeModes        = []string{"light", "dark"}
	hapticIntensities = []string{"soft", "medium", "intense"}
	accentColorRegex  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// DefaultSettings returns the settings used before any are saved.
func DefaultSettings() Settings {
	return Settings{
		Currency:        calc.DefaultCurrency,
		ThemeMode:       "light",
		AccentColor:     "#ff9f0a",
		HapticFeedback:  true,
		HapticIntensity: "medium",
	}
}

// Validate checks every field against its allowed values.
func (s Settings) Validate() error {
	if _, ok := calc.ParseCurrency(string(s.Currency)); !ok {
		return errors.NewInvalidSettings("currency", string(s.Currency), currencyCodes())
	}
	if !slices.Contains(themeModes, s.ThemeMode) {
		return errors.NewInvalidSettings("theme_mode", s.ThemeMode, themeModes)
	}
	if !accentColorRegex.MatchString(s.AccentColor) {
		return errors.NewInvalidSettings("accent_color", s.AccentColor, []string{"#rrggbb"})
	}
	if !slices.Contains(hapticIntensities, s.HapticIntensity) {
		return errors.NewInvalidSettings("haptic_intensity", s.HapticIntensity, hapticIntensities)
	}
	return nil
}

// SettingsPatch holds the fields an UpdateSettings call changes. Nil fields
// keep their stored value.
type SettingsPatch struct {
	Currency        *string `json:"currency,omitempty"`
	ThemeMode       *string `json:"theme_mode,omitempty"`
	AccentColor     *string `json:"accent_color,omitempty"`
	HapticFeedback  *bool   `json:"haptic_feedback,omitempty"`
	HapticIntensity *string `json:"haptic_intensity,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.Currency == nil && p.ThemeMode == nil && p.AccentColor == nil &&
		p.HapticFeedback == nil && p.HapticIntensity == nil
}

func (p SettingsPatch) apply(s Settings) Settings {
	if p.Currency != nil {
		s.Currency = calc.Currency(strings.ToUpper(strings.TrimSpace(*p.Currency)))
	}
	if p.ThemeMode != nil {
		s.ThemeMode = strings.ToLower(strings.TrimSpace(*p.ThemeMode))
	}
	if p.AccentColor != nil {
		s.AccentColor = strings.ToLower(strings.TrimSpace(*p.AccentColor))
	}
	if p.HapticFeedback != nil {
		s.HapticFeedback = *p.HapticFeedback
	}
	if p.HapticIntensity != nil {
		s.HapticIntensity = strings.ToLower(strings.TrimSpace(*p.HapticIntensity))
	}
	return s
}

// GetSettings returns the stored settings over the defaults.
func GetSettings(ctx context.Context, database *sql.DB) (*Settings, error) {
	s := DefaultSettings()

	blob, ok, err := db.GetSetting(ctx, database, settingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &s, nil
	}
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// UpdateSettings validates and stores a partial update, returning the result.
func UpdateSettings(ctx context.Context, database *sql.DB, patch SettingsPatch) (*Settings, error) {
	if patch.Empty() {
		return nil, errors.NewInvalidRequest("no settings to update")
	}

	current, err := GetSettings(ctx, database)
	if err != nil {
		return nil, err
	}

	next := patch.apply(*current)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	blob, err := json.Marshal(next)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.PutSetting(ctx, database, settingsKey, string(blob), time.Now().UnixMilli()); err != nil {
		return nil, err
	}
	return &next, nil
}

func currencyCodes() []string {
	codes := make([]string, len(calc.Currencies))
	for i, c := range calc.Currencies {
		codes[i] = string(c)
	}
	return codes
}
