// Package config holds the backend application settings served through
// get_config_value. They live in the [app] table of clipview.toml and can be
// overridden with CLIPVIEW_APP_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/gesture"
)

// Table is the config file table the settings are read from.
const Table = "app"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// App is the complete settings set.
type App struct {
	WindowPosition          string  `mapstructure:"window_position" json:"window_position"`
	WindowPrimaryFactor     float64 `mapstructure:"window_primary_factor" json:"window_primary_factor"`
	WindowSecondarySize     int     `mapstructure:"window_secondary_size" json:"window_secondary_size"`
	WindowPaddingX          int     `mapstructure:"window_padding_x" json:"window_padding_x"`
	WindowPaddingY          int     `mapstructure:"window_padding_y" json:"window_padding_y"`
	WindowAnimationDuration int     `mapstructure:"window_animation_duration" json:"window_animation_duration"`
	WindowSteps             int     `mapstructure:"window_steps" json:"window_steps"`
	EaseFactor              float64 `mapstructure:"ease_factor" json:"ease_factor"`
	RewriteHistoryOnCopy    bool    `mapstructure:"window_rewrite_history_on_copy" json:"window_rewrite_history_on_copy"`
	AutoHideOnCopy          bool    `mapstructure:"auto_hide_on_copy" json:"auto_hide_on_copy"`
	AutoPasteOnCopy         bool    `mapstructure:"auto_paste_on_copy" json:"auto_paste_on_copy"`
	MaxDisplayedCharacters  int     `mapstructure:"max_displayed_characters" json:"max_displayed_characters"`
	ResetScrollOnShow       bool    `mapstructure:"reset_scroll_on_show" json:"reset_scroll_on_show"`
	ScrollFactor            float64 `mapstructure:"scroll_factor" json:"scroll_factor"`
	SmoothScroll            bool    `mapstructure:"smooth_scroll" json:"smooth_scroll"`
}

// Default returns the settings used when nothing is configured.
func Default() App {
	return App{
		WindowPosition:          string(gesture.PositionBottom),
		WindowPrimaryFactor:     0.98,
		WindowSecondarySize:     250,
		WindowPaddingX:          0,
		WindowPaddingY:          50,
		WindowAnimationDuration: 100,
		WindowSteps:             30,
		EaseFactor:              1,
		AutoHideOnCopy:          true,
		MaxDisplayedCharacters:  250,
		ResetScrollOnShow:       true,
		ScrollFactor:            1.0,
	}
}

// Load reads the [app] table of v on top of the defaults.
func Load(v *viper.Viper) (App, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}
	if err := v.UnmarshalKey(Table, &cfg); err != nil {
		return cfg, fmt.Errorf("config: [%s]: %w", Table, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (a *App) normalize() {
	if p := gesture.ParsePosition(a.WindowPosition); string(p) != a.WindowPosition {
		slog.Warn("normalized window_position", "value", a.WindowPosition, "using", p)
		a.WindowPosition = string(p)
	}
	if a.MaxDisplayedCharacters <= 0 {
		a.MaxDisplayedCharacters = Default().MaxDisplayedCharacters
	}
	if a.ScrollFactor <= 0 {
		a.ScrollFactor = Default().ScrollFactor
	}
}

// JSON returns the whole configuration as a JSON object.
func (a App) JSON() string {
	b, err := json.Marshal(a)
	if err != nil {
		// App holds only scalars.
		panic(err)
	}
	return string(b)
}

// Value returns the string form of property. An empty or unknown property
// yields the JSON of the whole configuration.
func (a App) Value(property string) string {
	switch strings.TrimSpace(property) {
	case "window_position":
		return a.WindowPosition
	case "window_primary_factor":
		return formatFloat(a.WindowPrimaryFactor)
	case "window_secondary_size":
		return strconv.Itoa(a.WindowSecondarySize)
	case "window_padding_x":
		return strconv.Itoa(a.WindowPaddingX)
	case "window_padding_y":
		return strconv.Itoa(a.WindowPaddingY)
	case "window_animation_duration":
		return strconv.Itoa(a.WindowAnimationDuration)
	case "window_steps":
		return strconv.Itoa(a.WindowSteps)
	case "ease_factor":
		return formatFloat(a.EaseFactor)
	case "window_rewrite_history_on_copy":
		return strconv.FormatBool(a.RewriteHistoryOnCopy)
	case "auto_hide_on_copy":
		return strconv.FormatBool(a.AutoHideOnCopy)
	case "auto_paste_on_copy":
		return strconv.FormatBool(a.AutoPasteOnCopy)
	case "max_displayed_characters":
		return strconv.Itoa(a.MaxDisplayedCharacters)
	case "reset_scroll_on_show":
		return strconv.FormatBool(a.ResetScrollOnShow)
	case "scroll_factor":
		return formatFloat(a.ScrollFactor)
	case "smooth_scroll":
		return strconv.FormatBool(a.SmoothScroll)
	default:
		return a.JSON()
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
