package feature

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gofreeze/chain"
	"gofreeze/process"
	"gofreeze/ticker"
)

// PairConfig describes the float signature the pair scanner looks for and
// how it walks memory.
type PairConfig struct {
	// StartOffset is added to the resolved base before the first read.
	StartOffset int64
	// Stride separates consecutive candidate positions.
	Stride int64
	// AdjacentOffset locates the second float relative to the first.
	AdjacentOffset int64
	// MaxTries bounds the number of positions examined.
	MaxTries int
	// Tick is the delay between reads.
	Tick time.Duration

	Primary   float64
	Adjacent  float64
	Tolerance float64
}

// DefaultPairConfig matches an entity collision box of 0.6 by 1.8.
func DefaultPairConfig() PairConfig {
	return PairConfig{
		StartOffset:    0x38,
		Stride:         0x20,
		AdjacentOffset: 0x4,
		MaxTries:       50,
		Tick:           100 * time.Millisecond,
		Primary:        0.6,
		Adjacent:       1.8,
		Tolerance:      1e-6,
	}
}

func (c PairConfig) Validate() error {
	if c.Stride <= 0 {
		return errors.New("pair stride must be positive")
	}
	if c.MaxTries <= 0 {
		return errors.New("pair max tries must be positive")
	}
	if c.Tick <= 0 {
		return errors.New("pair tick must be positive")
	}
	if c.Tolerance <= 0 {
		return errors.New("pair tolerance must be positive")
	}
	return nil
}

func (c PairConfig) matches(primary, adjacent float32) bool {
	return math.Abs(float64(primary)-c.Primary) < c.Tolerance &&
		math.Abs(float64(adjacent)-c.Adjacent) < c.Tolerance
}

// Pair is a matched primary address and the address of its adjacent field.
type Pair struct {
	Primary  process.ProcessMemoryAddress `json:"primary"`
	Adjacent process.ProcessMemoryAddress `json:"adjacent"`
}

// PairAction selects one of the pair scanner operations.
type PairAction int

const (
	PairFind PairAction = iota
	PairModify
	PairStop
)

func (a PairAction) String() string {
	switch a {
	case PairFind:
		return "find"
	case PairModify:
		return "modify"
	case PairStop:
		return "stop"
	}
	return fmt.Sprintf("PairAction(%d)", int(a))
}

// ParsePairAction maps "find", "modify", and "stop" to their actions.
func ParsePairAction(s string) (PairAction, error) {
	switch s {
	case "find":
		return PairFind, nil
	case "modify":
		return PairModify, nil
	case "stop":
		return PairStop, nil
	}
	return 0, fmt.Errorf("unknown pair action %q", s)
}

// pairScanner is the pair state of a Feature, guarded by Feature.mu.
type pairScanner struct {
	pairs []Pair

	scanning bool
	scanTask ticker.Task
	scanAddr process.ProcessMemoryAddress
	tries    int
	scanGen  uint64

	modifyTask ticker.Task
	modifyGen  uint64
}

// Apply runs the operation selected by action.
func (f *Feature) Apply(action PairAction) error {
	switch action {
	case PairFind:
		return f.Find()
	case PairModify:
		return f.Modify()
	case PairStop:
		f.StopModify()
		return nil
	}
	return fmt.Errorf("unknown pair action %d", int(action))
}

// Pairs returns a copy of the matched pairs.
func (f *Feature) Pairs() []Pair {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Pair, len(f.pairs))
	copy(out, f.pairs)
	return out
}

// Scanning reports whether a Find is in progress.
func (f *Feature) Scanning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scanning
}

// Modifying reports whether the modify task is active.
func (f *Feature) Modifying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modifyTask != nil
}

// ClearPairs forgets every matched pair. It is rejected during a scan and
// while the modify task is writing them.
func (f *Feature) ClearPairs() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.scanning {
		return f.failLocked(KindStateConflict, 0, ErrScanInProgress)
	}
	if f.modifyTask != nil {
		return f.failLocked(KindStateConflict, 0, ErrModifyActive)
	}

	f.pairs = nil
	f.emitLocked(Event{Type: EventPairsCleared})
	return nil
}

// Find starts a bounded scan from the address of the first candidate chain.
// Each tick reads one position; the scan ends after MaxTries positions or at
// the first failed read. Matches are added to the pair collection.
func (f *Feature) Find() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.scanning {
		return f.failLocked(KindStateConflict, 0, ErrScanInProgress)
	}

	base, err := chain.Resolve(f.target.Memory, f.target.Base, f.def.Candidates[0])
	if err != nil {
		return f.failLocked(KindResolution, 0, err)
	}

	f.scanGen++
	gen := f.scanGen

	task, err := f.sched.Every(f.taskName("find"), f.pcfg.Tick, func() { f.scanTick(gen) })
	if err != nil {
		return f.failLocked(KindStateConflict, 0, err)
	}

	f.scanTask = task
	f.scanning = true
	f.scanAddr = base.Add(f.pcfg.StartOffset)
	f.tries = 0

	f.log.Infoln("Scanning for pairs from", f.scanAddr.ToString())
	f.emitLocked(Event{Type: EventScanStarted, Address: f.scanAddr, Pairs: len(f.pairs)})

	return nil
}

func (f *Feature) scanTick(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.scanGen != gen || !f.scanning {
		return
	}

	mem := f.target.Memory
	cur := f.scanAddr.Add(int64(f.tries) * f.pcfg.Stride)
	adj := cur.Add(f.pcfg.AdjacentOffset)

	primary, err := mem.ReadFLOAT32(cur)
	var adjacent float32
	if err == nil {
		adjacent, err = mem.ReadFLOAT32(adj)
	}
	if err != nil {
		f.finishScanLocked(f.failLocked(KindScanRead, cur, err))
		return
	}

	if f.pcfg.matches(primary, adjacent) && !f.hasPairLocked(cur) &&
		chain.Validate(mem, cur) == nil && chain.Validate(mem, adj) == nil {
		f.pairs = append(f.pairs, Pair{Primary: cur, Adjacent: adj})
		f.log.Debugln("Matched pair at", cur.ToString())
		f.emitLocked(Event{Type: EventPairMatched, Address: cur, Pairs: len(f.pairs)})
	}

	f.tries++
	if f.tries >= f.pcfg.MaxTries {
		f.finishScanLocked(nil)
	}
}

func (f *Feature) hasPairLocked(addr process.ProcessMemoryAddress) bool {
	for _, p := range f.pairs {
		if p.Primary == addr {
			return true
		}
	}
	return false
}

// finishScanLocked ends the scan. The caller holds f.mu.
func (f *Feature) finishScanLocked(fail *Failure) {
	if f.scanTask != nil {
		f.scanTask.Cancel()
		f.scanTask = nil
	}
	f.scanGen++
	f.scanning = false

	e := Event{Type: EventScanFinished, Pairs: len(f.pairs)}
	if fail != nil {
		e.Err = fail
	}

	f.log.Infoln("Scan finished after", f.tries, "tries,", len(f.pairs), "pairs")
	f.emitLocked(e)
}

// Modify starts writing the enabled value, as a float, to both addresses of
// every matched pair each interval. A failed write is reported and the
// remaining pairs are still written.
func (f *Feature) Modify() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.modifyTask != nil {
		return f.failLocked(KindStateConflict, 0, ErrModifyActive)
	}

	if len(f.pairs) == 0 {
		return f.failLocked(KindStateConflict, 0, ErrNoPairs)
	}

	f.modifyGen++
	gen := f.modifyGen

	task, err := f.sched.Every(f.taskName("modify"), f.def.Interval, func() { f.modifyTick(gen) })
	if err != nil {
		return f.failLocked(KindStateConflict, 0, err)
	}

	f.modifyTask = task

	f.log.Infoln("Modifying", len(f.pairs), "pairs")
	f.emitLocked(Event{Type: EventModifyStarted, Pairs: len(f.pairs)})

	return nil
}

func (f *Feature) modifyTick(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.modifyGen != gen || f.modifyTask == nil {
		return
	}

	v := float32(f.enabled)
	for _, p := range f.pairs {
		err := f.target.Memory.WriteFLOAT32(p.Primary, v)
		if err == nil {
			err = f.target.Memory.WriteFLOAT32(p.Adjacent, v)
		}
		if err != nil {
			f.failLocked(KindWrite, p.Primary, err)
		}
	}
}

// StopModify cancels the modify task if present.
func (f *Feature) StopModify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopModifyLocked()
}

func (f *Feature) stopModifyLocked() {
	if f.modifyTask == nil {
		return
	}

	f.modifyTask.Cancel()
	f.modifyTask = nil
	f.modifyGen++

	f.log.Infoln("Modify stopped")
	f.emitLocked(Event{Type: EventModifyStopped, Pairs: len(f.pairs)})
}
