package layout

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned when settings hold an unknown enum value.
var ErrInvalidSettings = errors.New("invalid layout settings")

// NavTheme is the color scheme of the sider and top menu.
type NavTheme string

const (
	ThemeDark  NavTheme = "dark"
	ThemeLight NavTheme = "light"
)

// Mode places the navigation menu.
type Mode string

const (
	// ModeSideMenu shows the menu in the sider.
	ModeSideMenu Mode = "sidemenu"
	// ModeTopMenu shows the menu in the header.
	ModeTopMenu Mode = "topmenu"
	// ModeBoth shows a header above a sider menu.
	ModeBoth Mode = "both"
)

// ContentWidth controls the width of the content grid.
type ContentWidth string

const (
	WidthFluid ContentWidth = "Fluid"
	WidthFixed ContentWidth = "Fixed"
)

// DefaultSiderWidth is the sider width in pixels when none is configured.
const DefaultSiderWidth = 256

// Settings are the effective layout settings of a shell.
type Settings struct {
	NavTheme        NavTheme     `json:"navTheme"        yaml:"navTheme"`
	Layout          Mode         `json:"layout"          yaml:"layout"`
	ContentWidth    ContentWidth `json:"contentWidth"    yaml:"contentWidth"`
	FixedHeader     bool         `json:"fixedHeader"     yaml:"fixedHeader"`
	AutoHideHeader  bool         `json:"autoHideHeader"  yaml:"autoHideHeader"`
	FixSiderbar     bool         `json:"fixSiderbar"     yaml:"fixSiderbar"`
	ColorWeak       bool         `json:"colorWeak"       yaml:"colorWeak"`
	PrimaryColor    string       `json:"primaryColor"    yaml:"primaryColor"`
	Title           string       `json:"title"           yaml:"title"`
	Logo            string       `json:"logo"            yaml:"logo"`
	SiderWidth      int          `json:"siderWidth"      yaml:"siderWidth"`
	MenuHeader      bool         `json:"menuHeader"      yaml:"menuHeader"`
	CollapsedButton bool         `json:"collapsedButton" yaml:"collapsedButton"`
}

// DefaultSettings returns the caller defaults used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		NavTheme:        ThemeDark,
		Layout:          ModeSideMenu,
		ContentWidth:    WidthFluid,
		PrimaryColor:    "#1890FF",
		Title:           "Navshell",
		Logo:            "/static/logo.svg",
		SiderWidth:      DefaultSiderWidth,
		MenuHeader:      true,
		CollapsedButton: true,
	}
}

// Validate checks the enum fields and the sider width.
func (s Settings) Validate() error {
	var errs []string

	switch s.NavTheme {
	case ThemeDark, ThemeLight:
	default:
		errs = append(errs, fmt.Sprintf("navTheme %q", s.NavTheme))
	}

	switch s.Layout {
	case ModeSideMenu, ModeTopMenu, ModeBoth:
	default:
		errs = append(errs, fmt.Sprintf("layout %q", s.Layout))
	}

	switch s.ContentWidth {
	case WidthFluid, WidthFixed:
	default:
		errs = append(errs, fmt.Sprintf("contentWidth %q", s.ContentWidth))
	}

	if s.SiderWidth <= 0 {
		errs = append(errs, fmt.Sprintf("siderWidth %d", s.SiderWidth))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(errs, ", "))
	}
	return nil
}

// Overrides is a partial Settings; nil fields leave the lower layer untouched.
type Overrides struct {
	NavTheme        *NavTheme     `json:"navTheme,omitempty"        yaml:"navTheme,omitempty"`
	Layout          *Mode         `json:"layout,omitempty"          yaml:"layout,omitempty"`
	ContentWidth    *ContentWidth `json:"contentWidth,omitempty"    yaml:"contentWidth,omitempty"`
	FixedHeader     *bool         `json:"fixedHeader,omitempty"     yaml:"fixedHeader,omitempty"`
	AutoHideHeader  *bool         `json:"autoHideHeader,omitempty"  yaml:"autoHideHeader,omitempty"`
	FixSiderbar     *bool         `json:"fixSiderbar,omitempty"     yaml:"fixSiderbar,omitempty"`
	ColorWeak       *bool         `json:"colorWeak,omitempty"       yaml:"colorWeak,omitempty"`
	PrimaryColor    *string       `json:"primaryColor,omitempty"    yaml:"primaryColor,omitempty"`
	Title           *string       `json:"title,omitempty"           yaml:"title,omitempty"`
	Logo            *string       `json:"logo,omitempty"            yaml:"logo,omitempty"`
	SiderWidth      *int          `json:"siderWidth,omitempty"      yaml:"siderWidth,omitempty"`
	MenuHeader      *bool         `json:"menuHeader,omitempty"      yaml:"menuHeader,omitempty"`
	CollapsedButton *bool         `json:"collapsedButton,omitempty" yaml:"collapsedButton,omitempty"`
}

// Apply returns s with every non-nil override field set.
func (o *Overrides) Apply(s Settings) Settings {
	if o == nil {
		return s
	}
	set(&s.NavTheme, o.NavTheme)
	set(&s.Layout, o.Layout)
	set(&s.ContentWidth, o.ContentWidth)
	set(&s.FixedHeader, o.FixedHeader)
	set(&s.AutoHideHeader, o.AutoHideHeader)
	set(&s.FixSiderbar, o.FixSiderbar)
	set(&s.ColorWeak, o.ColorWeak)
	set(&s.PrimaryColor, o.PrimaryColor)
	set(&s.Title, o.Title)
	set(&s.Logo, o.Logo)
	set(&s.SiderWidth, o.SiderWidth)
	set(&s.MenuHeader, o.MenuHeader)
	set(&s.CollapsedButton, o.CollapsedButton)
	return s
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Resolve layers settings, lowest precedence first:
// caller defaults, settings-drawer overrides, per-call overrides.
// The result is validated.
func Resolve(defaults Settings, drawer, call *Overrides) (Settings, error) {
	s := call.Apply(drawer.Apply(defaults))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads a YAML settings file on top of DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return ParseSettings(data)
}

// ParseSettings decodes YAML settings on top of DefaultSettings and validates them.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}
