// Package feature implements named, independently controlled memory
// overrides. A Feature resolves its address through a candidate set of
// pointer chains, then writes its enabled value on a fixed cadence until
// stopped, restoring the disabled value on the way out. Each Feature also
// owns a pair scanner (see Find, Modify, StopModify).
package feature

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gofreeze/chain"
	"gofreeze/process"
	"gofreeze/ticker"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// taskSeparator joins a feature name and a task suffix in the shared
// scheduler. Names may not contain it, so task names never collide.
const taskSeparator = "/"

// Target is what every feature works against: the module base the chains
// start from and the memory they are read and written through.
type Target struct {
	Base   process.ProcessMemoryAddress
	Memory process.MemoryAccess
}

// Definition is the static description of a feature.
type Definition struct {
	Name           string
	Candidates     chain.CandidateSet
	Interval       time.Duration
	Enabled        float64
	Disabled       float64
	Type           ValueType
	PersistAddress bool

	// Pairs configures the pair scanner; nil means DefaultPairConfig.
	Pairs *PairConfig
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	if d.Name == "" {
		return errors.New("feature name is empty")
	}
	if strings.Contains(d.Name, taskSeparator) {
		return fmt.Errorf("feature %s: name must not contain %q", d.Name, taskSeparator)
	}
	if len(d.Candidates) == 0 {
		return fmt.Errorf("feature %s: no candidate chains", d.Name)
	}
	for i, c := range d.Candidates {
		if len(c) == 0 {
			return fmt.Errorf("feature %s: candidate %d: %w", d.Name, i, chain.ErrEmptyChain)
		}
	}
	if d.Interval <= 0 {
		return fmt.Errorf("feature %s: interval must be positive", d.Name)
	}
	if _, err := ParseValueType(string(d.Type)); err != nil {
		return fmt.Errorf("feature %s: %w", d.Name, err)
	}
	if d.Pairs != nil {
		if err := d.Pairs.Validate(); err != nil {
			return fmt.Errorf("feature %s: %w", d.Name, err)
		}
	}
	return nil
}

// State is the lifecycle state of a feature's main task.
type State int

const (
	Idle State = iota
	Resolving
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Running:
		return "running"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a snapshot of a feature.
type Status struct {
	Name            string  `json:"name"`
	State           State   `json:"state"`
	Address         string  `json:"address,omitempty"`
	AddressComputed bool    `json:"address_computed"`
	PersistAddress  bool    `json:"persist_address"`
	Type            string  `json:"type"`
	Interval        string  `json:"interval"`
	Enabled         float64 `json:"enabled"`
	Disabled        float64 `json:"disabled"`
	Resolutions     int     `json:"resolutions"`
	Pairs           int     `json:"pairs"`
	Scanning        bool    `json:"scanning"`
	Modifying       bool    `json:"modifying"`
}

// Feature is one named override. All methods are safe for concurrent use.
type Feature struct {
	def    Definition
	pcfg   PairConfig
	target Target
	sched  ticker.Scheduler
	report Reporter
	log    *logger.Logger

	mu          sync.Mutex
	state       State
	address     process.ProcessMemoryAddress
	computed    bool
	enabled     float64
	resolutions int
	task        ticker.Task
	gen         uint64

	pairScanner
}

// New creates an idle feature.
func New(target Target, sched ticker.Scheduler, report Reporter, def Definition) (*Feature, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if target.Memory == nil {
		return nil, fmt.Errorf("feature %s: no memory access", def.Name)
	}
	if report == nil {
		report = Discard
	}
	if def.Type == "" {
		def.Type = Int32
	}

	pcfg := DefaultPairConfig()
	if def.Pairs != nil {
		pcfg = *def.Pairs
	}

	return &Feature{
		def:     def,
		pcfg:    pcfg,
		target:  target,
		sched:   sched,
		report:  report,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "feature-"+def.Name)),
		enabled: def.Enabled,
	}, nil
}

func (f *Feature) Name() string {
	return f.def.Name
}

func (f *Feature) Definition() Definition {
	return f.def
}

func (f *Feature) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Running reports whether the main write task is active.
func (f *Feature) Running() bool {
	return f.State() == Running
}

// Address returns the cached address and whether one has been computed.
func (f *Feature) Address() (process.ProcessMemoryAddress, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address, f.computed
}

func (f *Feature) EnabledValue() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *Feature) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Status{
		Name:            f.def.Name,
		State:           f.state,
		AddressComputed: f.computed,
		PersistAddress:  f.def.PersistAddress,
		Type:            string(f.def.Type),
		Interval:        f.def.Interval.String(),
		Enabled:         f.enabled,
		Disabled:        f.def.Disabled,
		Resolutions:     f.resolutions,
		Pairs:           len(f.pairs),
		Scanning:        f.scanning,
		Modifying:       f.modifyTask != nil,
	}
	if f.computed {
		s.Address = f.address.ToString()
	}
	return s
}

func (f *Feature) taskName(suffix string) string {
	if suffix == "" {
		return f.def.Name
	}
	return f.def.Name + taskSeparator + suffix
}

// emitLocked stamps and reports e. The caller holds f.mu.
func (f *Feature) emitLocked(e Event) {
	e.Time = time.Now()
	e.Feature = f.def.Name
	f.report.Report(e)
}

// failLocked reports and returns a Failure. The caller holds f.mu.
func (f *Feature) failLocked(kind Kind, addr process.ProcessMemoryAddress, err error) *Failure {
	fail := &Failure{Kind: kind, Feature: f.def.Name, Address: addr, Err: err}

	if kind == KindStateConflict {
		f.log.Infoln(fail.Error())
	} else {
		f.log.Warn(fail.Error())
	}

	f.emitLocked(Event{Type: EventFailed, Kind: kind, Address: addr, Err: err})
	return fail
}

// Start resolves the address if needed, validates it, and begins writing the
// enabled value every interval. It returns nil or a *Failure.
func (f *Feature) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Running {
		return f.failLocked(KindStateConflict, f.address, ErrAlreadyRunning)
	}

	f.state = Resolving

	addr := f.address
	if !f.computed || !f.def.PersistAddress {
		resolved, index, err := chain.Select(f.target.Memory, f.target.Base, f.def.Candidates)
		f.resolutions++
		if err != nil {
			f.state = Idle
			return f.failLocked(KindResolution, 0, err)
		}
		f.log.Debugln("Resolved candidate", index, "to", resolved.ToString())
		addr = resolved
	}

	if err := chain.Validate(f.target.Memory, addr); err != nil {
		// a stale cached address must not be reused
		f.state = Idle
		f.address = 0
		f.computed = false
		return f.failLocked(KindValidation, addr, err)
	}

	f.address = addr
	f.computed = true

	f.gen++
	gen := f.gen

	task, err := f.sched.Every(f.taskName(""), f.def.Interval, func() { f.tick(gen) })
	if err != nil {
		f.state = Idle
		return f.failLocked(KindStateConflict, addr, err)
	}

	f.task = task
	f.state = Running

	f.log.Infoln("Started at", addr.ToString(), "every", f.def.Interval)
	f.emitLocked(Event{Type: EventStarted, Address: addr})

	return nil
}

func (f *Feature) tick(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// a tick from a cancelled run
	if f.gen != gen || f.state != Running {
		return
	}

	if err := f.def.Type.write(f.target.Memory, f.address, f.enabled); err != nil {
		f.failLocked(KindWrite, f.address, err)
		f.stopLocked()
	}
}

// Stop cancels the write task and writes the disabled value once. It is a
// no-op when the feature is not running. A failed restore write is returned
// as a *Failure, but the feature is Idle either way.
func (f *Feature) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Running {
		return nil
	}

	if err := f.stopLocked(); err != nil {
		return err
	}
	return nil
}

// stopLocked tears down a running feature. The caller holds f.mu.
func (f *Feature) stopLocked() *Failure {
	if f.task != nil {
		f.task.Cancel()
		f.task = nil
	}
	f.gen++
	f.state = Idle

	var fail *Failure
	if err := f.def.Type.write(f.target.Memory, f.address, f.def.Disabled); err != nil {
		fail = f.failLocked(KindWrite, f.address, fmt.Errorf("restore disabled value: %w", err))
	}

	f.log.Infoln("Stopped")
	f.emitLocked(Event{Type: EventStopped, Address: f.address})

	return fail
}

// SetEnabledValue changes the value written by the main and modify tasks,
// effective from their next tick.
func (f *Feature) SetEnabledValue(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enabled = v
	f.log.Debugln("Enabled value set to", v)
	f.emitLocked(Event{Type: EventValueChanged, Value: v})
}

// Shutdown stops the main task, the modify task, and any scan in progress.
func (f *Feature) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.state == Running {
		if fail := f.stopLocked(); fail != nil {
			err = fail
		}
	}
	f.stopModifyLocked()
	if f.scanning {
		f.finishScanLocked(nil)
	}
	return err
}
