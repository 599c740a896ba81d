package director

import (
	"github.com/ivlev/scrollsite/internal/effects"
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/renderer"
)

// Scene is the choreography of one page: the elements it lays out and the
// timelines bound to them.
type Scene struct {
	Version   string          `yaml:"version" json:"version"`
	Page      string          `yaml:"page" json:"page"`
	Viewport  layout.Viewport `yaml:"viewport" json:"viewport"`
	Height    float64         `yaml:"height" json:"height"` // document height in px
	Elements  []ElementSpec   `yaml:"elements" json:"elements"`
	Timelines []TimelineSpec  `yaml:"timelines" json:"timelines"`
}

// ElementSpec is an element of the page with its laid-out box.
type ElementSpec struct {
	ID           string      `yaml:"id" json:"id"`
	Rect         layout.Rect `yaml:"rect" json:"rect"`
	ContentWidth float64     `yaml:"content_width,omitempty" json:"contentWidth,omitempty"`
}

// TriggerSpec is the textual form of a trigger.
type TriggerSpec struct {
	Target string `yaml:"target" json:"target"`
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end,omitempty" json:"end,omitempty"`
	Mode   string `yaml:"mode,omitempty" json:"mode,omitempty"` // scrub | toggle
	Once   bool   `yaml:"once,omitempty" json:"once,omitempty"`
}

// ThemeSpec is a theme with colours as names or hex strings.
type ThemeSpec struct {
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Background string `yaml:"background" json:"background"`
	Foreground string `yaml:"foreground,omitempty" json:"foreground,omitempty"`
}

// StaggerSpec spreads bindings without an explicit order.
type StaggerSpec struct {
	Each float64 `yaml:"each" json:"each"`
	Span float64 `yaml:"span,omitempty" json:"span,omitempty"`
}

// TimelineSpec groups bindings under one trigger.
type TimelineSpec struct {
	Name     string               `yaml:"name" json:"name"`
	Trigger  TriggerSpec          `yaml:"trigger" json:"trigger"`
	Duration float64              `yaml:"duration,omitempty" json:"duration,omitempty"` // seconds, toggle only
	Actions  string               `yaml:"actions,omitempty" json:"actions,omitempty"`
	Autoplay bool                 `yaml:"autoplay,omitempty" json:"autoplay,omitempty"`
	Stagger  *StaggerSpec         `yaml:"stagger,omitempty" json:"stagger,omitempty"`
	Themes   map[string]ThemeSpec `yaml:"themes,omitempty" json:"themes,omitempty"` // enter, leave, enterBack, leaveBack
	Bindings []BindingSpec        `yaml:"bindings" json:"bindings"`
}

// BindingSpec is one animated target inside a timeline.
type BindingSpec struct {
	Name   string    `yaml:"name,omitempty" json:"name,omitempty"`
	Target string    `yaml:"target" json:"target"`
	Ease   string    `yaml:"ease,omitempty" json:"ease,omitempty"`
	Order  *float64  `yaml:"order,omitempty" json:"order,omitempty"`
	Span   float64   `yaml:"span,omitempty" json:"span,omitempty"`
	Props  PropsSpec `yaml:"props" json:"props"`
}

// PropsSpec lists the properties a binding animates. Unset entries are not
// written.
type PropsSpec struct {
	Translate  *TranslateSpec  `yaml:"translate,omitempty" json:"translate,omitempty"`
	Scale      *ScaleSpec      `yaml:"scale,omitempty" json:"scale,omitempty"`
	Rotate     *RangeSpec      `yaml:"rotate,omitempty" json:"rotate,omitempty"`
	Opacity    *RangeSpec      `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	Clip       *ClipSpec       `yaml:"clip,omitempty" json:"clip,omitempty"`
	Background *ColorSpec      `yaml:"background,omitempty" json:"background,omitempty"`
	Color      *ColorSpec      `yaml:"color,omitempty" json:"color,omitempty"`
	Pin        *PinSpec        `yaml:"pin,omitempty" json:"pin,omitempty"`
	Keyframes  []KeyframesSpec `yaml:"keyframes,omitempty" json:"keyframes,omitempty"`
}

// RangeSpec is a scalar from/to pair.
type RangeSpec struct {
	From float64 `yaml:"from" json:"from"`
	To   float64 `yaml:"to" json:"to"`
}

// TranslateSpec moves along x and y; unit is "px" (default) or "%".
type TranslateSpec struct {
	From effects.Vec2 `yaml:"from" json:"from"`
	To   effects.Vec2 `yaml:"to" json:"to"`
	Unit string       `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// ScaleSpec scales per axis; Uniform, when set, overrides both axes.
type ScaleSpec struct {
	From      effects.Vec2 `yaml:"from" json:"from"`
	To        effects.Vec2 `yaml:"to" json:"to"`
	Uniform   *RangeSpec   `yaml:"uniform,omitempty" json:"uniform,omitempty"`
	AllowZero bool         `yaml:"allow_zero,omitempty" json:"allowZero,omitempty"`
}

// ClipSpec animates an inset clip.
type ClipSpec struct {
	From renderer.Inset `yaml:"from" json:"from"`
	To   renderer.Inset `yaml:"to" json:"to"`
}

// ColorSpec blends between two colours; Space is "lab" (default) or "rgb".
type ColorSpec struct {
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
	Space string `yaml:"space,omitempty" json:"space,omitempty"`
}

// PinSpec slides the named track element by its horizontal overflow.
type PinSpec struct {
	Track string `yaml:"track" json:"track"`
}

// KeyframesSpec drives one channel through several stops.
type KeyframesSpec struct {
	Channel string         `yaml:"channel" json:"channel"`
	Stops   []effects.Stop `yaml:"stops" json:"stops"`
}
