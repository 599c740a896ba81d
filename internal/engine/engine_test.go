package engine

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ivlev/scrollsite/internal/config"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/renderer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const homeScene = `
page: home
viewport: {width: 1280, height: 800}
height: 4000
elements:
  - id: hero
    rect: {y: 0, h: 800, w: 1280}
  - id: about
    rect: {y: 1600, h: 800, w: 1280}
timelines:
  - name: hero-parallax
    trigger: {target: hero, start: "top top", end: "bottom top"}
    bindings:
      - target: hero-title
        props:
          translate: {from: {y: 0}, to: {y: -200}}
          opacity: {from: 1, to: 0}
  - name: about-reveal
    trigger: {target: about, start: "top 80%", mode: toggle}
    duration: 0.3
    themes:
      enter: {name: dark, background: "#050505", foreground: white}
      leaveBack: {name: light, background: "#f9fafb", foreground: black}
    bindings:
      - target: about-card
        props:
          clip: {from: {right: 1}, to: {}}
`

func compileHome(t *testing.T) *director.Page {
	t.Helper()
	sc, err := director.ParseScene([]byte(homeScene))
	require.NoError(t, err)
	page, err := director.Compile(sc, nil)
	require.NoError(t, err)
	return page
}

func testScroll() config.ScrollConfig {
	return config.DefaultConfig().Scroll
}

func TestMountAndScopeCleanup(t *testing.T) {
	stage := NewStage(testScroll(), zaptest.NewLogger(t), nil)
	defer stage.Stop()

	page := compileHome(t)
	scope := stage.Mount(page)
	assert.Equal(t, 2, stage.Tracker.Len())
	assert.Equal(t, 2, scope.Len())

	title := page.Recorders["hero-title"]
	writes := len(title.Writes)
	require.Positive(t, writes, "registration delivers a first update")

	scope.Close()
	scope.Close()
	assert.Equal(t, 0, stage.Tracker.Len())

	stage.Scroll.ScrollTo(400, true)
	stage.Step(16 * time.Millisecond)
	stage.Step(32 * time.Millisecond)
	assert.Len(t, title.Writes, writes, "no writes after unmount")
}

func TestStageDrivesTimelines(t *testing.T) {
	stage := NewStage(testScroll(), zaptest.NewLogger(t), nil)
	defer stage.Stop()

	page := compileHome(t)
	var themes []string
	stage.Theme.Subscribe(func(th director.Theme) { themes = append(themes, th.Name) })

	scope := stage.Mount(page)
	defer scope.Close()

	stage.Scroll.ScrollTo(400, true)
	stage.Step(16 * time.Millisecond)
	last, ok := page.Recorders["hero-title"].Last()
	require.True(t, ok)
	assert.InDelta(t, -100, last.TranslateY, 1e-9)
	assert.InDelta(t, 0.5, last.Opacity, 1e-9)

	// Cross the about section start (1600 - 640) and let the reveal play.
	stage.Scroll.ScrollTo(1000, true)
	for i := 2; i < 40; i++ {
		stage.Step(time.Duration(i) * 16 * time.Millisecond)
	}
	card, _ := page.Recorders["about-card"].Last()
	assert.Equal(t, renderer.Inset{}, card.Clip)
	assert.Equal(t, []string{"dark"}, themes)

	stage.Scroll.ScrollTo(0, true)
	stage.Step(time.Second)
	assert.Equal(t, []string{"dark", "light"}, themes)
}

const onceScene = `
page: once
viewport: {width: 1280, height: 800}
height: 4000
elements:
  - id: badge
    rect: {y: 1600, h: 400, w: 1280}
timelines:
  - name: badge-in
    trigger: {target: badge, start: "top 80%", mode: toggle, once: true}
    duration: 0.2
    bindings:
      - target: badge
        props:
          opacity: {from: 0, to: 1}
`

func TestOnceToggleSurvivesScrollBack(t *testing.T) {
	stage := NewStage(testScroll(), zaptest.NewLogger(t), nil)
	defer stage.Stop()

	sc, err := director.ParseScene([]byte(onceScene))
	require.NoError(t, err)
	page, err := director.Compile(sc, nil)
	require.NoError(t, err)
	scope := stage.Mount(page)
	defer scope.Close()

	stage.Scroll.ScrollTo(2000, true)
	for i := 1; i < 40; i++ {
		stage.Step(time.Duration(i) * 16 * time.Millisecond)
	}
	tl := page.Timelines[0].Timeline
	last, _ := page.Recorders["badge"].Last()
	require.Equal(t, director.StateEntered, tl.State())
	require.Equal(t, 1.0, last.Opacity)

	stage.Scroll.ScrollTo(0, true)
	for i := 40; i < 80; i++ {
		stage.Step(time.Duration(i) * 16 * time.Millisecond)
	}
	last, _ = page.Recorders["badge"].Last()
	assert.Equal(t, director.StateEntered, tl.State())
	assert.Equal(t, 1.0, last.Opacity)
}

func TestPostFromOtherGoroutines(t *testing.T) {
	stage := NewStage(testScroll(), nil, nil)

	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, stage.Post(func() { count++ }))
		}()
	}
	wg.Wait()

	stage.Step(16 * time.Millisecond)
	assert.Equal(t, 10, count)

	stage.Stop()
	assert.ErrorIs(t, stage.Post(func() {}), ErrStopped)
}

func TestPostQueueFull(t *testing.T) {
	stage := NewStage(testScroll(), nil, nil)
	defer stage.Stop()
	for i := 0; i < postQueue; i++ {
		require.NoError(t, stage.Post(func() {}))
	}
	assert.ErrorIs(t, stage.Post(func() {}), ErrQueueFull)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testScroll()
	cfg.FPS = 200
	stage := NewStage(cfg, zaptest.NewLogger(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stage.Run(ctx) }()

	ticked := make(chan struct{})
	require.NoError(t, stage.Post(func() { close(ticked) }))
	select {
	case <-ticked:
	case <-time.After(5 * time.Second):
		t.Fatal("frame loop did not run")
	}

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, stage.Post(func() {}), ErrStopped)
}

func TestScope(t *testing.T) {
	s := NewScope()
	var order []int
	s.Track(func() { order = append(order, 1) })
	s.Track(func() { order = append(order, 2) })
	s.Close()
	assert.Equal(t, []int{2, 1}, order)

	s.Track(func() { order = append(order, 3) })
	assert.Equal(t, []int{2, 1, 3}, order, "track on a closed scope runs at once")
}

func TestFollowerLagsThenSettles(t *testing.T) {
	rec := &renderer.Recorder{}
	f := NewFollower(rec, 60, 8, 1)
	f.OffsetX, f.OffsetY = -10, -10

	stage := NewStage(testScroll(), nil, nil)
	defer stage.Stop()
	remove := stage.Follow(f)

	f.Pointer(100, 100)
	stage.Step(16 * time.Millisecond)
	first, _ := rec.Last()
	assert.Equal(t, 90.0, first.TranslateX)
	assert.Equal(t, 1.0, first.Opacity)

	f.Pointer(300, 100)
	stage.Step(32 * time.Millisecond)
	x, _ := f.Position()
	assert.Greater(t, x, 100.0)
	assert.Less(t, x, 300.0, "follower lags behind the pointer")

	for i := 3; i < 600; i++ {
		stage.Step(time.Duration(i) * 16 * time.Millisecond)
	}
	assert.True(t, f.Settled())

	f.Leave()
	stage.Step(10 * time.Second)
	last, _ := rec.Last()
	assert.True(t, last.Has(renderer.FieldOpacity))
	assert.Equal(t, 0.0, last.Opacity)

	remove()
	n := len(rec.Writes)
	stage.Step(11 * time.Second)
	assert.Len(t, rec.Writes, n)
}

func TestSimulate(t *testing.T) {
	var out bytes.Buffer
	page := compileHome(t)

	r, err := Simulate(context.Background(), page, config.SimulationParams{Duration: 1, Verbose: true}, testScroll(), &out, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "home", r.Page)
	assert.InDelta(t, 3200.0, r.Position, 1e-6)
	assert.Positive(t, r.Writes)
	assert.Equal(t, []string{"dark"}, r.Themes)
	assert.Contains(t, r.Final["hero-title"], "opacity: 0")
	assert.Contains(t, out.String(), "[+++] home")
	assert.Contains(t, out.String(), "hero-title")
}

func TestSimulateAll(t *testing.T) {
	pages := []*director.Page{compileHome(t), compileHome(t), compileHome(t)}

	var out bytes.Buffer
	reports, err := SimulateAll(context.Background(), pages, config.SimulationParams{Duration: 0.5}, testScroll(), 2, &out, nil)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, 3, strings.Count(out.String(), "[>] Ready:"))
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simulate(ctx, compileHome(t), config.SimulationParams{}, testScroll(), &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
