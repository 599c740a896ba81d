package director

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/ivlev/scrollsite/internal/effects"
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/progress"
	"github.com/ivlev/scrollsite/internal/renderer"
)

// TargetFactory returns the style sink for a binding target id.
type TargetFactory func(id string) renderer.Target

// Page is a compiled scene, ready to be mounted on a tracker.
type Page struct {
	Scene     *Scene
	Elements  map[string]*layout.Box
	Recorders map[string]*renderer.Recorder
	Timelines []*Compiled
}

// Compiled pairs a timeline with the trigger that drives it.
type Compiled struct {
	Timeline *Timeline
	Trigger  progress.Trigger
	Autoplay bool
}

// Compile validates sc and builds its timelines. With a nil factory every
// binding target gets a Recorder, collected in Page.Recorders.
func Compile(sc *Scene, targets TargetFactory) (*Page, error) {
	if sc == nil {
		return nil, fmt.Errorf("compile: nil scene")
	}
	page := &Page{
		Scene:     sc,
		Elements:  make(map[string]*layout.Box, len(sc.Elements)),
		Recorders: make(map[string]*renderer.Recorder),
	}
	if targets == nil {
		targets = func(id string) renderer.Target {
			r, ok := page.Recorders[id]
			if !ok {
				r = &renderer.Recorder{Name: id}
				page.Recorders[id] = r
			}
			return r
		}
	}

	for _, el := range sc.Elements {
		if el.ID == "" {
			return nil, fmt.Errorf("scene %s: element without id", sc.Page)
		}
		if _, dup := page.Elements[el.ID]; dup {
			return nil, fmt.Errorf("scene %s: duplicate element %q", sc.Page, el.ID)
		}
		box := layout.NewBox(el.ID, el.Rect)
		if el.ContentWidth > 0 {
			box.SetContentWidth(el.ContentWidth)
		}
		page.Elements[el.ID] = box
	}

	for i := range sc.Timelines {
		c, err := compileTimeline(page, &sc.Timelines[i], targets)
		if err != nil {
			return nil, fmt.Errorf("scene %s: timeline %q: %w", sc.Page, sc.Timelines[i].Name, err)
		}
		page.Timelines = append(page.Timelines, c)
	}
	return page, nil
}

func compileTimeline(page *Page, ts *TimelineSpec, targets TargetFactory) (*Compiled, error) {
	trig, err := compileTrigger(page, ts.Trigger)
	if err != nil {
		return nil, err
	}

	tl := NewTimeline(ts.Name, trig.Mode)
	tl.Once = trig.Once
	if ts.Duration > 0 {
		tl.Duration = time.Duration(ts.Duration * float64(time.Second))
	}
	if tl.Actions, err = ParseToggleActions(ts.Actions); err != nil {
		return nil, err
	}
	if len(ts.Themes) > 0 {
		tl.Themes = make(map[progress.Event]Theme, len(ts.Themes))
		for name, spec := range ts.Themes {
			ev, err := parseEvent(name)
			if err != nil {
				return nil, err
			}
			th, err := compileTheme(spec)
			if err != nil {
				return nil, fmt.Errorf("theme %s: %w", name, err)
			}
			tl.Themes[ev] = th
		}
	}

	staggered := 0
	for i, bs := range ts.Bindings {
		b, err := compileBinding(page, bs, targets)
		if err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, bs.Target, err)
		}
		order, span := 0.0, bs.Span
		switch {
		case bs.Order != nil:
			order = *bs.Order
		case ts.Stagger != nil:
			order = float64(staggered) * ts.Stagger.Each
			staggered++
			if span == 0 {
				span = ts.Stagger.Span
			}
		}
		tl.Add(b, order, span)
		if bs.Props.Pin != nil {
			trig.Watch = append(trig.Watch, page.Elements[bs.Props.Pin.Track])
		}
	}

	return &Compiled{Timeline: tl, Trigger: trig, Autoplay: ts.Autoplay}, nil
}

func compileTrigger(page *Page, ts TriggerSpec) (progress.Trigger, error) {
	box, ok := page.Elements[ts.Target]
	if !ok {
		return progress.Trigger{}, fmt.Errorf("trigger target %q is not an element", ts.Target)
	}
	start, err := progress.ParseBoundary(defaultString(ts.Start, "top bottom"))
	if err != nil {
		return progress.Trigger{}, fmt.Errorf("trigger start: %w", err)
	}
	trig := progress.Trigger{Target: box, Start: start, Once: ts.Once}

	switch progress.Mode(strings.ToLower(ts.Mode)) {
	case "", progress.ModeScrub:
		trig.Mode = progress.ModeScrub
	case progress.ModeToggle:
		trig.Mode = progress.ModeToggle
	default:
		return progress.Trigger{}, fmt.Errorf("unknown trigger mode %q", ts.Mode)
	}

	if ts.End != "" {
		end, err := progress.ParseBoundary(ts.End)
		if err != nil {
			return progress.Trigger{}, fmt.Errorf("trigger end: %w", err)
		}
		trig.End = &end
	} else if trig.Mode == progress.ModeScrub {
		end := progress.MustBoundary("bottom top")
		trig.End = &end
	}
	return trig, nil
}

func compileBinding(page *Page, bs BindingSpec, targets TargetFactory) (*effects.Binding, error) {
	if bs.Target == "" {
		return nil, fmt.Errorf("binding without target")
	}
	ease, err := effects.Ease(bs.Ease)
	if err != nil {
		return nil, err
	}

	var props []effects.Property
	p := bs.Props
	if p.Translate != nil {
		unit := renderer.UnitPx
		switch p.Translate.Unit {
		case "", "px":
		case "%", "percent":
			unit = renderer.UnitPercent
		default:
			return nil, fmt.Errorf("translate: unknown unit %q", p.Translate.Unit)
		}
		props = append(props, effects.Translate{From: p.Translate.From, To: p.Translate.To, Unit: unit})
	}
	if p.Scale != nil {
		from, to := p.Scale.From, p.Scale.To
		if u := p.Scale.Uniform; u != nil {
			from, to = effects.Vec2{X: u.From, Y: u.From}, effects.Vec2{X: u.To, Y: u.To}
		}
		sc, err := effects.NewScale(from, to, p.Scale.AllowZero)
		if err != nil {
			return nil, err
		}
		props = append(props, sc)
	}
	if p.Rotate != nil {
		props = append(props, effects.Rotate{From: p.Rotate.From, To: p.Rotate.To})
	}
	if p.Opacity != nil {
		props = append(props, effects.Opacity{From: p.Opacity.From, To: p.Opacity.To})
	}
	if p.Clip != nil {
		props = append(props, effects.Clip{From: p.Clip.From, To: p.Clip.To})
	}
	if p.Background != nil {
		c, err := compileColor(*p.Background, false)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		props = append(props, c)
	}
	if p.Color != nil {
		c, err := compileColor(*p.Color, true)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		props = append(props, c)
	}
	if p.Pin != nil {
		track, ok := page.Elements[p.Pin.Track]
		if !ok {
			return nil, fmt.Errorf("pin track %q is not an element", p.Pin.Track)
		}
		props = append(props, effects.NewPin(track, page.Scene.Viewport))
	}
	for _, ks := range p.Keyframes {
		k, err := effects.NewKeyframes(effects.Channel(ks.Channel), ks.Stops)
		if err != nil {
			return nil, err
		}
		props = append(props, k)
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("no properties")
	}

	name := bs.Name
	if name == "" {
		name = bs.Target
	}
	return effects.NewBinding(name, targets(bs.Target), ease, props...), nil
}

func compileColor(cs ColorSpec, foreground bool) (effects.Color, error) {
	from, err := ParseColor(cs.From)
	if err != nil {
		return effects.Color{}, err
	}
	to, err := ParseColor(cs.To)
	if err != nil {
		return effects.Color{}, err
	}
	space := effects.SpaceLab
	switch strings.ToLower(cs.Space) {
	case "", "lab":
	case "rgb":
		space = effects.SpaceRGB
	default:
		return effects.Color{}, fmt.Errorf("unknown colour space %q", cs.Space)
	}
	return effects.Color{From: from, To: to, Space: space, Foreground: foreground}, nil
}

func compileTheme(ts ThemeSpec) (Theme, error) {
	bg, err := ParseColor(ts.Background)
	if err != nil {
		return Theme{}, err
	}
	fg := colorful.Color{}
	if ts.Foreground != "" {
		if fg, err = ParseColor(ts.Foreground); err != nil {
			return Theme{}, err
		}
	}
	return Theme{Name: ts.Name, Background: bg, Foreground: fg}, nil
}

// ParseColor accepts CSS colour names ("white", "rebeccapurple") and hex
// strings ("#050505", "#fff").
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		cc, _ := colorful.MakeColor(c)
		return cc, nil
	}
	if len(s) == 4 && strings.HasPrefix(s, "#") {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return c, nil
}

func parseEvent(name string) (progress.Event, error) {
	switch strings.ToLower(name) {
	case "enter", "onenter":
		return progress.EventEnter, nil
	case "leave", "onleave":
		return progress.EventLeave, nil
	case "enterback", "onenterback":
		return progress.EventEnterBack, nil
	case "leaveback", "onleaveback":
		return progress.EventLeaveBack, nil
	}
	return 0, fmt.Errorf("unknown crossing %q", name)
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
