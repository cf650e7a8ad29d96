// mapglow-demo renders a synthetic field of animated point features in
// the terminal. Click a feature to toggle its animation, hover to play it
// while the pointer rests on it, press 'r' to reset all, '+'/'-' to change
// global speed, 'l' to toggle LOD, Escape to quit. Performance warnings
// beep.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/geo/r2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/mapglow"
	"github.com/lixenwraith/mapglow/feature"
	"github.com/lixenwraith/mapglow/interact"
	"github.com/lixenwraith/mapglow/metrics"
)

const (
	layerName     = "demo"
	gridSpacing   = 4
	frameBudgetMs = 16.7
	effectPeriod  = 2.0
)

// pointerSource adapts hit-tested mouse events to interact.PointerSource
type pointerSource struct {
	click      map[string][]func(interact.PointerEvent)
	hoverEnter map[string][]func(interact.PointerEvent)
	hoverLeave map[string][]func()
}

func newPointerSource() *pointerSource {
	return &pointerSource{
		click:      make(map[string][]func(interact.PointerEvent)),
		hoverEnter: make(map[string][]func(interact.PointerEvent)),
		hoverLeave: make(map[string][]func()),
	}
}

func (p *pointerSource) OnClick(layer string, fn func(interact.PointerEvent)) func() {
	p.click[layer] = append(p.click[layer], fn)
	idx := len(p.click[layer]) - 1
	return func() { p.click[layer][idx] = nil }
}

func (p *pointerSource) OnHoverEnter(layer string, fn func(interact.PointerEvent)) func() {
	p.hoverEnter[layer] = append(p.hoverEnter[layer], fn)
	idx := len(p.hoverEnter[layer]) - 1
	return func() { p.hoverEnter[layer][idx] = nil }
}

func (p *pointerSource) OnHoverLeave(layer string, fn func()) func() {
	p.hoverLeave[layer] = append(p.hoverLeave[layer], fn)
	idx := len(p.hoverLeave[layer]) - 1
	return func() { p.hoverLeave[layer][idx] = nil }
}

func (p *pointerSource) emitClick(layer string, ev interact.PointerEvent) {
	for _, fn := range p.click[layer] {
		if fn != nil {
			fn(ev)
		}
	}
}

func (p *pointerSource) emitHoverEnter(layer string, ev interact.PointerEvent) {
	for _, fn := range p.hoverEnter[layer] {
		if fn != nil {
			fn(ev)
		}
	}
}

func (p *pointerSource) emitHoverLeave(layer string) {
	for _, fn := range p.hoverLeave[layer] {
		if fn != nil {
			fn()
		}
	}
}

type cell struct {
	x, y int
	id   string
}

type demo struct {
	screen        tcell.Screen
	width, height int

	runtime  *mapglow.Runtime
	instance *mapglow.Instance
	source   *pointerSource
	handler  *interact.Handler

	cells     []cell
	hoveredID string
	audioInit bool
	zoom      float64
}

func newDemo() (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	d := &demo{screen: screen, zoom: 12}
	d.width, d.height = screen.Size()

	if err := d.initAudio(); err != nil {
		// Non-fatal, demo can run without sound
		log.Printf("Audio initialization failed: %v", err)
	}

	if err := d.initRuntime(); err != nil {
		screen.Fini()
		return nil, err
	}
	return d, nil
}

func (d *demo) initAudio() error {
	sampleRate := beep.SampleRate(44100)
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		d.audioInit = true
	}
	return err
}

func (d *demo) playTone(freq float64, dur time.Duration) {
	if !d.audioInit {
		return
	}
	sampleRate := beep.SampleRate(44100)
	sine, _ := generators.SineTone(sampleRate, freq)
	speaker.Play(beep.Take(sampleRate.N(dur), sine))
}

func (d *demo) initRuntime() error {
	resolver := feature.IDResolver{Property: "id"}
	rt, err := mapglow.NewRuntime(mapglow.RuntimeOptions{Resolver: resolver})
	if err != nil {
		return err
	}
	d.runtime = rt

	rt.Metrics.OnWarning(func(w metrics.Warning) {
		d.playTone(220, 80*time.Millisecond)
		log.Printf("[%s] %s (%s)", w.Type, w.Message, w.Suggestion)
	})

	features := d.buildFeatures()
	def := &mapglow.EffectDefinition{
		Name:     "pulse",
		Defaults: map[string]any{"timeOffset": []any{"hash", "id"}, "period": effectPeriod, "initialState": "playing"},
	}
	in, _, err := rt.Register(layerName, def, nil, features, d.zoom)
	if err != nil {
		return err
	}
	d.instance = in

	d.source = newPointerSource()
	d.handler = interact.NewHandler(layerName, d.source, in.States, resolver, interact.Config{
		ClickAction: interact.ActionToggle,
		HoverAction: interact.ActionPlay,
	}, nil)

	rt.Loop.Start()
	return nil
}

// buildFeatures lays point features on a grid covering the screen
func (d *demo) buildFeatures() []feature.Feature {
	var features []feature.Feature
	d.cells = d.cells[:0]
	n := 0
	for y := 2; y < d.height-1; y += gridSpacing / 2 {
		for x := 2; x < d.width-1; x += gridSpacing {
			id := fmt.Sprintf("f-%d", n)
			n++
			features = append(features, feature.Feature{
				ID:         id,
				Properties: map[string]any{"id": id},
				Geometry: feature.Geometry{
					Kind:  feature.KindPoint,
					Parts: [][]r2.Point{{{X: float64(x), Y: float64(y)}}},
				},
			})
			d.cells = append(d.cells, cell{x: x, y: y, id: id})
		}
	}
	return features
}

func (d *demo) featureAt(x, y int) (string, bool) {
	for _, c := range d.cells {
		if c.x == x && c.y == y {
			return c.id, true
		}
	}
	return "", false
}

func (d *demo) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	id, hit := d.featureAt(x, y)

	if hit && id != d.hoveredID {
		if d.hoveredID != "" {
			d.source.emitHoverLeave(layerName)
		}
		d.hoveredID = id
		d.source.emitHoverEnter(layerName, interact.PointerEvent{
			FeatureID:  id,
			Properties: map[string]any{"id": id},
		})
	} else if !hit && d.hoveredID != "" {
		d.hoveredID = ""
		d.source.emitHoverLeave(layerName)
	}

	if ev.Buttons()&tcell.Button1 != 0 && hit {
		d.source.emitClick(layerName, interact.PointerEvent{
			FeatureID:  id,
			Properties: map[string]any{"id": id},
		})
		d.playTone(880, 50*time.Millisecond)
	}
}

func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				d.instance.States.ResetAll()
			case 'p':
				d.instance.States.PlayAll()
			case '+', '=':
				d.runtime.Loop.SetGlobalSpeed(d.runtime.Loop.GlobalSpeed() + 0.25)
			case '-':
				d.runtime.Loop.SetGlobalSpeed(d.runtime.Loop.GlobalSpeed() - 0.25)
			case 'l':
				d.runtime.LOD.SetEnabled(!d.runtime.LOD.Enabled())
			}
		}
	case *tcell.EventMouse:
		d.handleMouse(ev)
	case *tcell.EventResize:
		d.width, d.height = d.screen.Size()
	}
	return true
}

func (d *demo) draw() {
	d.screen.Clear()

	globalTime := d.runtime.Loop.Time()
	isPlaying, localTime := d.instance.States.GenerateBufferData(1)
	offsets := d.instance.Offsets

	for i, c := range d.cells {
		if i >= len(isPlaying) {
			break
		}
		t := localTime[i]
		if isPlaying[i] > 0 {
			t = globalTime
		}
		phase := math.Mod(t+offsets[i], effectPeriod) / effectPeriod
		intensity := int32(64 + 191*(0.5+0.5*math.Sin(phase*2*math.Pi)))

		color := tcell.NewRGBColor(0, intensity, intensity/2)
		glyph := '●'
		if isPlaying[i] == 0 {
			glyph = '○'
		}
		d.screen.SetContent(c.x, c.y, glyph, nil, tcell.StyleDefault.Foreground(color))
	}
	d.instance.States.ClearDirty()

	d.drawStatus()
	d.screen.Show()
}

func (d *demo) drawStatus() {
	snap := d.runtime.Metrics.Snapshot()
	status := fmt.Sprintf(" %d features | %.1f FPS avg | %.1f ms peak | %d dropped | speed %.2fx ",
		snap.FeaturesRendered, snap.AverageFPS, snap.PeakFrameTime, snap.DroppedFrames,
		d.runtime.Loop.GlobalSpeed())
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	for i, r := range status {
		if i >= d.width {
			break
		}
		d.screen.SetContent(i, 0, r, nil, style)
	}
}

func (d *demo) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- d.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return
			}
		case <-ticker.C:
			d.runtime.Frame(frameBudgetMs)
			d.draw()
		}
	}
}

func (d *demo) cleanup() {
	d.handler.Dispose()
	d.runtime.Loop.Stop()
	if d.audioInit {
		speaker.Close()
	}
	d.screen.Fini()
}

func main() {
	d, err := newDemo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer d.cleanup()

	d.run()
}
