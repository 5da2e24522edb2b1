package script

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/physics"
	"github.com/milk9111/physcene/prefabs"
	"github.com/milk9111/physcene/scene"
)

var ErrNoScript = errors.New("script: no script loaded")

// The script defines init, update and on_event at top level. Missing hooks
// get an empty default so the dispatcher always resolves.
const dispatchScript = `
if __phase == "init" {
	init(__scene, __state)
} else if __phase == "update" {
	update(__scene, __state, __dt)
} else if __phase == "event" {
	on_event(__scene, __state, __event)
}
`

var hooks = []struct {
	name     string
	fallback string
}{
	{"init", "init := func(scene, state) {}"},
	{"update", "update := func(scene, state, dt) {}"},
	{"on_event", "on_event := func(scene, state, ev) {}"},
}

// PrototypeLoader resolves a prefab name to a body prototype.
type PrototypeLoader func(name string) (component.BodyPrototype, error)

type Options struct {
	Loader PrototypeLoader
	Logger *log.Logger
}

// Runtime runs one tengo script against a Scene. Contact and deferred events
// raised during a step are buffered and handed to on_event on the next
// Update, before update itself runs.
type Runtime struct {
	scene  *scene.Scene
	logger *log.Logger
	loader PrototypeLoader

	path     string
	source   []byte
	compiled *tengo.Compiled
	engine   *tengo.ImmutableMap
	state    *tengo.Map

	initialized bool
	protos      map[string]component.BodyPrototype
	events      []tengo.Object

	sub *physics.Subscription
}

func New(sc *scene.Scene, opts Options) *Runtime {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithPrefix("script")
	}
	loader := opts.Loader
	if loader == nil {
		loader = prefabs.LoadBodyPrototype
	}
	rt := &Runtime{
		scene:  sc,
		logger: logger,
		loader: loader,
		state:  newState(),
		protos: make(map[string]component.BodyPrototype),
	}
	rt.engine = rt.buildEngine()
	rt.sub = sc.Subscribe(physics.ContactFuncs{
		OnBegin:       func(c component.Contact) { rt.queue(contactEvent("begin", c)) },
		OnEnd:         func(c component.Contact) { rt.queue(contactEvent("end", c)) },
		OnBeginSensor: func(c component.SensorContact) { rt.queue(sensorEvent("sensor_begin", c)) },
		OnEndSensor:   func(c component.SensorContact) { rt.queue(sensorEvent("sensor_end", c)) },
	})
	sc.OnDeferred(func(a physics.Action) { rt.queue(deferredEvent(a)) })
	return rt
}

func newState() *tengo.Map {
	return &tengo.Map{Value: map[string]tengo.Object{}}
}

// Load reads a script through the prefabs loader and compiles it. State is
// reset and init runs on the next Update.
func (rt *Runtime) Load(path string) error {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return fmt.Errorf("script: load %s: %w", path, err)
	}
	return rt.LoadSource(path, src)
}

// LoadSource compiles src under name. On failure the previous script stays.
func (rt *Runtime) LoadSource(name string, src []byte) error {
	compiled, err := compile(src)
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", name, err)
	}
	rt.path = name
	rt.source = src
	rt.compiled = compiled
	rt.state = newState()
	rt.initialized = false
	rt.events = nil
	rt.logger.Info("script loaded", "script", name)
	return nil
}

// Reload recompiles the current script from its source. State is kept and
// init is not run again. Cached prototypes are dropped so prefab edits apply
// to the next create_body.
func (rt *Runtime) Reload() error {
	if rt.path == "" {
		return ErrNoScript
	}
	src, err := prefabs.LoadScript(rt.path)
	if err != nil {
		// Sources given directly have no file behind them.
		if rt.source == nil {
			return fmt.Errorf("script: reload %s: %w", rt.path, err)
		}
		src = rt.source
	}
	compiled, err := compile(src)
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", rt.path, err)
	}
	rt.compiled = compiled
	rt.source = src
	rt.InvalidatePrototypes()
	rt.logger.Info("script reloaded", "script", rt.path)
	return nil
}

// InvalidatePrototypes empties the prefab cache.
func (rt *Runtime) InvalidatePrototypes() {
	clear(rt.protos)
}

func (rt *Runtime) Path() string { return rt.path }

// StateValue returns a top-level entry of the script state as plain Go
// values.
func (rt *Runtime) StateValue(key string) (any, bool) {
	v, ok := rt.state.Value[key]
	if !ok {
		return nil, false
	}
	return objectToAny(v), true
}

// Update runs init once, then on_event for every buffered event, then
// update(dt). The first error stops the call; undelivered events are kept.
func (rt *Runtime) Update(dt float64) error {
	if rt.compiled == nil {
		return ErrNoScript
	}
	if !rt.initialized {
		if err := rt.run("init", nil); err != nil {
			return err
		}
		rt.initialized = true
	}
	for len(rt.events) > 0 {
		ev := rt.events[0]
		rt.events = rt.events[1:]
		if err := rt.run("event", func(c *tengo.Compiled) error { return c.Set("__event", ev) }); err != nil {
			return err
		}
	}
	return rt.run("update", func(c *tengo.Compiled) error { return c.Set("__dt", dt) })
}

// Pending returns the number of events waiting for on_event.
func (rt *Runtime) Pending() int { return len(rt.events) }

// Close stops listening for contacts.
func (rt *Runtime) Close() {
	rt.sub.Close()
	rt.events = nil
}

func (rt *Runtime) queue(ev tengo.Object) {
	rt.events = append(rt.events, ev)
}

// run executes one phase. Go panics raised inside the VM, such as integer
// division by zero, come back as errors.
func (rt *Runtime) run(phase string, set func(*tengo.Compiled) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: %s %s: %v", rt.path, phase, r)
		}
	}()

	c := rt.compiled
	if err := c.Set("__phase", phase); err != nil {
		return err
	}
	if err := c.Set("__scene", rt.engine); err != nil {
		return err
	}
	if err := c.Set("__state", rt.state); err != nil {
		return err
	}
	if set != nil {
		if err := set(c); err != nil {
			return err
		}
	}
	if err := c.Run(); err != nil {
		return fmt.Errorf("script: %s %s: %w", rt.path, phase, err)
	}
	return nil
}

func compile(src []byte) (*tengo.Compiled, error) {
	full := string(src) + "\n"
	for _, h := range hooks {
		if !definesHook(src, h.name) {
			full += h.fallback + "\n"
		}
	}
	full += dispatchScript

	s := tengo.NewScript([]byte(full))
	_ = s.Add("__phase", "")
	_ = s.Add("__scene", map[string]any{})
	_ = s.Add("__state", map[string]any{})
	_ = s.Add("__dt", 0.0)
	_ = s.Add("__event", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return s.Compile()
}

var hookPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, h := range hooks {
		hookPatterns[h.name] = regexp.MustCompile(`(?m)^\s*` + h.name + `\s*:=`)
	}
}

func definesHook(src []byte, name string) bool {
	return hookPatterns[name].Match(src)
}

// Check compiles src without running it.
func Check(src []byte) error {
	_, err := compile(src)
	return err
}
