package director

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/scrollsite/internal/progress"
	"github.com/ivlev/scrollsite/internal/renderer"
	"github.com/ivlev/scrollsite/internal/scroll"
	"github.com/ivlev/scrollsite/internal/viewport"
)

const testScene = `
version: "1.0"
page: works
viewport: {width: 1280, height: 800}
height: 6000
elements:
  - id: gallery
    rect: {x: 0, y: 1000, w: 1280, h: 800}
  - id: track
    rect: {x: 0, y: 1000, w: 1280, h: 800}
    content_width: 4480
  - id: manifesto
    rect: {x: 0, y: 3000, w: 1280, h: 600}
timelines:
  - name: gallery-pin
    trigger: {target: gallery, start: "top top", end: "+=3200"}
    themes:
      enter: {name: dark, background: "#050505", foreground: white}
      leaveBack: {name: light, background: "#f9fafb", foreground: black}
    bindings:
      - target: track
        props:
          pin: {track: track}
  - name: manifesto-words
    trigger: {target: manifesto, start: "top 80%", end: "bottom 20%"}
    stagger: {each: 0.1, span: 0.5}
    bindings:
      - target: word-1
        props: {opacity: {from: 0.1, to: 1}}
      - target: word-2
        props: {opacity: {from: 0.1, to: 1}}
      - target: word-3
        ease: power2.out
        props:
          opacity: {from: 0.1, to: 1}
          translate: {from: {x: 0, y: 20}, to: {x: 0, y: 0}}
  - name: cards
    trigger: {target: manifesto, start: "top 75%", mode: toggle}
    duration: 0.5
    actions: "play none none reverse"
    bindings:
      - target: card
        props:
          clip: {from: {right: 1}, to: {}}
          background: {from: white, to: "#000"}
`

func TestCompileScene(t *testing.T) {
	sc, err := ParseScene([]byte(testScene))
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	page, err := Compile(sc, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(page.Timelines) != 3 {
		t.Fatalf("Expected 3 timelines, got %d", len(page.Timelines))
	}

	pin := page.Timelines[0]
	if pin.Trigger.End == nil || !pin.Trigger.End.Relative {
		t.Errorf("pin end should be relative, got %+v", pin.Trigger.End)
	}
	if len(pin.Timeline.Themes) != 2 {
		t.Errorf("Expected 2 themes, got %d", len(pin.Timeline.Themes))
	}

	words := page.Timelines[1].Timeline.Entries()
	for i, want := range []float64{0, 0.1, 0.2} {
		if math.Abs(words[i].Order-want) > 1e-12 || words[i].Span != 0.5 {
			t.Errorf("word %d: order %v span %v", i, words[i].Order, words[i].Span)
		}
	}

	cards := page.Timelines[2]
	if cards.Trigger.Mode != progress.ModeToggle || cards.Trigger.End != nil {
		t.Errorf("cards trigger %+v", cards.Trigger)
	}
	if cards.Timeline.Duration.Seconds() != 0.5 {
		t.Errorf("cards duration %v", cards.Timeline.Duration)
	}

	for _, id := range []string{"track", "word-1", "word-2", "word-3", "card"} {
		if _, ok := page.Recorders[id]; !ok {
			t.Errorf("missing recorder for %s", id)
		}
	}
}

func TestCompiledPinUsesContentWidth(t *testing.T) {
	sc, _ := ParseScene([]byte(testScene))
	page, err := Compile(sc, nil)
	if err != nil {
		t.Fatal(err)
	}

	page.Timelines[0].Timeline.Update(viewport.Update{Progress: 1})
	last, ok := page.Recorders["track"].Last()
	if !ok {
		t.Fatal("no write to track")
	}
	if last.TranslateX != -3200 {
		t.Errorf("TranslateX = %v, want -3200", last.TranslateX)
	}
	if !last.Has(renderer.FieldTranslate) {
		t.Error("translate not marked as set")
	}
}

func TestCompiledPinFollowsTrackGrowth(t *testing.T) {
	sc, _ := ParseScene([]byte(testScene))
	page, err := Compile(sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	pin := page.Timelines[0]
	if len(pin.Trigger.Watch) != 1 {
		t.Fatalf("pin trigger watches %d elements, want 1", len(pin.Trigger.Watch))
	}

	tr := viewport.New(nil, sc.Viewport, 0)
	tr.Register(pin.Trigger, pin.Timeline.Update)
	tr.OnFrame(scroll.State{Position: 4200}, time.Millisecond)
	if last, _ := page.Recorders["track"].Last(); last.TranslateX != -3200 {
		t.Fatalf("TranslateX = %v, want -3200", last.TranslateX)
	}

	// Images in the track loaded and widened it without moving the section.
	page.Elements["track"].SetContentWidth(5480)
	tr.OnFrame(scroll.State{Position: 4200}, 2*time.Millisecond)
	if last, _ := page.Recorders["track"].Last(); last.TranslateX != -4200 {
		t.Errorf("TranslateX after growth = %v, want -4200", last.TranslateX)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := map[string]string{
		"unknown target": `
page: x
timelines:
  - name: a
    trigger: {target: nope, start: "top top"}
    bindings: [{target: a, props: {opacity: {from: 0, to: 1}}}]`,
		"bad ease": `
page: x
elements: [{id: a, rect: {h: 100}}]
timelines:
  - name: a
    trigger: {target: a}
    bindings: [{target: a, ease: wobble.out, props: {opacity: {from: 0, to: 1}}}]`,
		"zero scale": `
page: x
elements: [{id: a, rect: {h: 100}}]
timelines:
  - name: a
    trigger: {target: a}
    bindings: [{target: a, props: {scale: {uniform: {from: 0, to: 1}}}}]`,
		"bad colour": `
page: x
elements: [{id: a, rect: {h: 100}}]
timelines:
  - name: a
    trigger: {target: a}
    bindings: [{target: a, props: {color: {from: notacolour, to: white}}}]`,
		"no props": `
page: x
elements: [{id: a, rect: {h: 100}}]
timelines:
  - name: a
    trigger: {target: a}
    bindings: [{target: a}]`,
		"bad theme event": `
page: x
elements: [{id: a, rect: {h: 100}}]
timelines:
  - name: a
    trigger: {target: a}
    themes: {onHover: {background: white}}
    bindings: [{target: a, props: {opacity: {from: 0, to: 1}}}]`,
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			sc, err := ParseScene([]byte(src))
			if err != nil {
				t.Fatalf("ParseScene failed: %v", err)
			}
			if _, err := Compile(sc, nil); err == nil {
				t.Error("expected compile error")
			}
		})
	}
}

func TestParseSceneRejectsUnknownFields(t *testing.T) {
	_, err := ParseScene([]byte("page: x\ntimeline: []\n"))
	if err == nil || !strings.Contains(err.Error(), "timeline") {
		t.Errorf("expected unknown field error, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]string{
		"white":   "#ffffff",
		"#050505": "#050505",
		"#fff":    "#ffffff",
		"Black":   "#000000",
	}
	for in, want := range tests {
		c, err := ParseColor(in)
		if err != nil {
			t.Errorf("%s: %v", in, err)
			continue
		}
		if c.Hex() != want {
			t.Errorf("%s = %s, want %s", in, c.Hex(), want)
		}
	}
}
