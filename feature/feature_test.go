package feature

import (
	"errors"
	"time"

	"gofreeze/chain"
	"gofreeze/process"
	"gofreeze/process_blob"
	"gofreeze/ticker"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Feature", func() {
	var (
		img   *process_blob.Image
		sched *ticker.Serial
		rec   *recorder
		def   Definition
	)

	target := func() Target {
		return Target{Base: moduleBase, Memory: img}
	}

	build := func() *Feature {
		f, err := New(target(), sched, rec, def)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	readTarget := func() int32 {
		v, err := img.ReadINT32(heapBase + 0x11AC)
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	BeforeEach(func() {
		img = newImage()
		sched = ticker.NewSerial()
		rec = &recorder{}
		def = Definition{
			Name:           "fly",
			Candidates:     chain.CandidateSet{{0x10, 0x20, 0x1AC}},
			Interval:       50 * time.Millisecond,
			Enabled:        1,
			Disabled:       0,
			PersistAddress: true,
		}
	})

	It("should reject an invalid definition", func() {
		def.Candidates = nil
		_, err := New(target(), sched, rec, def)
		Expect(err).To(HaveOccurred())

		def.Candidates = chain.CandidateSet{{}}
		_, err = New(target(), sched, rec, def)
		Expect(err).To(MatchError(chain.ErrEmptyChain))

		def.Candidates = chain.CandidateSet{{0x10, 0x20, 0x1AC}}
		def.Name = "fly/modify"
		_, err = New(target(), sched, rec, def)
		Expect(err).To(HaveOccurred())
	})

	It("should write the enabled value every interval", func() {
		f := build()

		Expect(f.Start()).To(Succeed())
		Expect(f.State()).To(Equal(Running))

		addr, computed := f.Address()
		Expect(computed).To(BeTrue())
		Expect(addr).To(Equal(heapBase + 0x11AC))

		// first write lands one interval after start
		Expect(readTarget()).To(BeZero())
		sched.Advance(50 * time.Millisecond)
		Expect(readTarget()).To(Equal(int32(1)))

		Expect(img.StoreINT32(heapBase+0x11AC, 0)).To(Succeed())
		sched.Advance(50 * time.Millisecond)
		Expect(readTarget()).To(Equal(int32(1)))

		Expect(rec.ofType(EventStarted)).To(HaveLen(1))
	})

	It("should keep one task when started twice", func() {
		f := build()

		Expect(f.Start()).To(Succeed())
		err := f.Start()
		Expect(err).To(MatchError(ErrAlreadyRunning))
		Expect(KindOf(err)).To(Equal(KindStateConflict))

		Expect(sched.Len()).To(Equal(1))
		Expect(sched.Active("fly")).To(BeTrue())

		sched.Advance(50 * time.Millisecond)
		Expect(img.Writes()).To(Equal(1))
	})

	It("should treat stop on a never started feature as a no-op", func() {
		f := build()

		Expect(f.Stop()).To(Succeed())
		Expect(f.State()).To(Equal(Idle))
		Expect(img.Writes()).To(BeZero())
		Expect(rec.events).To(BeEmpty())
	})

	It("should restore the disabled value on stop", func() {
		def.Disabled = 7
		f := build()

		Expect(f.Start()).To(Succeed())
		sched.Advance(100 * time.Millisecond)
		Expect(f.Stop()).To(Succeed())

		Expect(f.State()).To(Equal(Idle))
		Expect(sched.Len()).To(BeZero())
		Expect(readTarget()).To(Equal(int32(7)))

		writes := img.Writes()
		sched.Advance(time.Second)
		Expect(img.Writes()).To(Equal(writes))

		Expect(f.Stop()).To(Succeed())
		Expect(rec.ofType(EventStopped)).To(HaveLen(1))
	})

	It("should stay idle when no candidate resolves", func() {
		def.Candidates = chain.CandidateSet{{0x18, 0x0, 0x4}}
		f := build()

		err := f.Start()
		Expect(err).To(MatchError(chain.ErrNoValidCandidate))
		Expect(KindOf(err)).To(Equal(KindResolution))
		Expect(f.State()).To(Equal(Idle))
		Expect(sched.Len()).To(BeZero())

		failed := rec.ofType(EventFailed)
		Expect(failed).To(HaveLen(1))
		Expect(failed[0].Kind).To(Equal(KindResolution))
	})

	It("should fall through to the next candidate", func() {
		def.Candidates = chain.CandidateSet{
			{0x10, 0x30, 0x0},
			{0x10, 0x20, 0x1AC},
		}
		f := build()

		Expect(f.Start()).To(Succeed())
		addr, _ := f.Address()
		Expect(addr).To(Equal(heapBase + 0x11AC))
	})

	It("should stop itself within one tick when a write fails", func() {
		def.Candidates = chain.CandidateSet{{0x10, 0x28, 0x10}}
		f := build()

		// the read-only page validates but cannot be written
		Expect(f.Start()).To(Succeed())
		Expect(f.Running()).To(BeTrue())

		sched.Advance(50 * time.Millisecond)

		Expect(f.Running()).To(BeFalse())
		Expect(sched.Len()).To(BeZero())

		failed := rec.ofType(EventFailed)
		Expect(failed).NotTo(BeEmpty())
		Expect(failed[0].Kind).To(Equal(KindWrite))
		Expect(errors.Is(failed[0].Err, process.ErrNotWritable)).To(BeTrue())
		Expect(rec.ofType(EventStopped)).To(HaveLen(1))
	})

	It("should reuse a persisted address without resolving again", func() {
		f := build()

		Expect(f.Start()).To(Succeed())
		Expect(f.Stop()).To(Succeed())

		// break the chain; a persisted address must not notice
		Expect(img.StorePointer(heapBase+0x20, 0)).To(Succeed())

		Expect(f.Start()).To(Succeed())
		Expect(f.Status().Resolutions).To(Equal(1))
	})

	It("should resolve again when the address is not persisted", func() {
		def.PersistAddress = false
		f := build()

		Expect(f.Start()).To(Succeed())
		Expect(f.Stop()).To(Succeed())
		Expect(f.Start()).To(Succeed())
		Expect(f.Stop()).To(Succeed())

		Expect(f.Status().Resolutions).To(Equal(2))

		Expect(img.StorePointer(heapBase+0x20, 0)).To(Succeed())
		Expect(KindOf(f.Start())).To(Equal(KindResolution))
	})

	It("should forget a persisted address that no longer validates", func() {
		def.Candidates = chain.CandidateSet{{0x10, 0x28, 0x10}}
		f := build()

		Expect(f.Start()).To(Succeed())
		Expect(f.Stop()).To(MatchError(process.ErrNotWritable))

		// drop every mapping so the cached address no longer validates
		Expect(img.Close()).To(Succeed())

		err := f.Start()
		Expect(KindOf(err)).To(Equal(KindValidation))
		_, computed := f.Address()
		Expect(computed).To(BeFalse())
		Expect(f.Status().Resolutions).To(Equal(1))

		// the next start resolves again
		img = newImage()
		f.target.Memory = img
		Expect(f.Start()).To(Succeed())
		Expect(f.Status().Resolutions).To(Equal(2))
	})

	It("should pick up a new enabled value on the next tick", func() {
		f := build()

		Expect(f.Start()).To(Succeed())
		sched.Advance(50 * time.Millisecond)
		Expect(readTarget()).To(Equal(int32(1)))

		f.SetEnabledValue(3)
		Expect(f.EnabledValue()).To(Equal(3.0))
		sched.Advance(50 * time.Millisecond)
		Expect(readTarget()).To(Equal(int32(3)))

		changed := rec.ofType(EventValueChanged)
		Expect(changed).To(HaveLen(1))
		Expect(changed[0].Value).To(Equal(3.0))
	})

	It("should write floats for float32 features", func() {
		def.Type = Float32
		def.Enabled = 2.5
		f := build()

		Expect(f.Start()).To(Succeed())
		sched.Advance(50 * time.Millisecond)

		v, err := img.ReadFLOAT32(heapBase + 0x11AC)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(float32(2.5)))
	})

	It("should report status", func() {
		f := build()
		Expect(f.Start()).To(Succeed())

		s := f.Status()
		Expect(s.Name).To(Equal("fly"))
		Expect(s.State).To(Equal(Running))
		Expect(s.Address).To(Equal("0x2011AC"))
		Expect(s.Type).To(Equal("int32"))
		Expect(s.Interval).To(Equal("50ms"))
	})

	It("should shut down every task", func() {
		f := build()
		f.pairs = []Pair{{Primary: heapBase + 0x100, Adjacent: heapBase + 0x104}}

		Expect(f.Start()).To(Succeed())
		Expect(f.Modify()).To(Succeed())
		Expect(f.Find()).To(Succeed())
		Expect(sched.Len()).To(Equal(3))

		Expect(f.Shutdown()).To(Succeed())
		Expect(sched.Len()).To(BeZero())
		Expect(f.Running()).To(BeFalse())
		Expect(f.Modifying()).To(BeFalse())
		Expect(f.Scanning()).To(BeFalse())
	})
})
