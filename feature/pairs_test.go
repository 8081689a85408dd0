package feature

import (
	"time"

	"gofreeze/chain"
	"gofreeze/process"
	"gofreeze/process_blob"
	"gofreeze/ticker"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pair scanner", func() {
	var (
		img   *process_blob.Image
		sched *ticker.Serial
		rec   *recorder
		pcfg  PairConfig
		def   Definition
	)

	build := func() *Feature {
		def.Pairs = &pcfg
		f, err := New(Target{Base: moduleBase, Memory: img}, sched, rec, def)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	storePair := func(addr process.ProcessMemoryAddress, primary, adjacent float32) {
		Expect(img.StoreFLOAT32(addr, primary)).To(Succeed())
		Expect(img.StoreFLOAT32(addr+4, adjacent)).To(Succeed())
	}

	// scan position i, counted from the resolved base heapBase
	slot := func(i int) process.ProcessMemoryAddress {
		return heapBase + 0x38 + process.ProcessMemoryAddress(i*0x20)
	}

	BeforeEach(func() {
		img = newImage()
		sched = ticker.NewSerial()
		rec = &recorder{}

		pcfg = DefaultPairConfig()
		pcfg.MaxTries = 10

		def = Definition{
			Name:       "collision_box",
			Candidates: chain.CandidateSet{{0x10, 0x0}},
			Interval:   100 * time.Millisecond,
			Enabled:    5,
			Disabled:   0.6,
			Type:       Float32,
		}

		storePair(slot(1), 0.6, 1.7)
		storePair(slot(3), 0.6, 1.8)
		storePair(slot(5), 0.61, 1.8)
		storePair(slot(7), 1.8, 0.6)
	})

	It("should record exactly one matching pair", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		Expect(f.Scanning()).To(BeTrue())
		Expect(sched.Active("collision_box/find")).To(BeTrue())

		sched.Advance(time.Second)

		Expect(f.Scanning()).To(BeFalse())
		Expect(sched.Len()).To(BeZero())

		want := []Pair{{Primary: slot(3), Adjacent: slot(3) + 4}}
		Expect(cmp.Diff(want, f.Pairs())).To(BeEmpty())

		finished := rec.ofType(EventScanFinished)
		Expect(finished).To(HaveLen(1))
		Expect(finished[0].Pairs).To(Equal(1))
		Expect(finished[0].Err).To(BeNil())
		Expect(rec.ofType(EventPairMatched)).To(HaveLen(1))
	})

	It("should not record duplicates on a repeated scan", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)
		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)

		want := []Pair{{Primary: slot(3), Adjacent: slot(3) + 4}}
		Expect(cmp.Diff(want, f.Pairs())).To(BeEmpty())
	})

	It("should stop after max tries", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		sched.Advance(900 * time.Millisecond)
		Expect(f.Scanning()).To(BeTrue())

		sched.Advance(100 * time.Millisecond)
		Expect(f.Scanning()).To(BeFalse())
	})

	It("should reject a second scan while one is running", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		err := f.Find()
		Expect(err).To(MatchError(ErrScanInProgress))
		Expect(KindOf(err)).To(Equal(KindStateConflict))
		Expect(sched.Len()).To(Equal(1))

		Expect(f.ClearPairs()).To(MatchError(ErrScanInProgress))
	})

	It("should abort when a read fails", func() {
		pcfg.StartOffset = 0x1FFC0
		f := build()

		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)

		Expect(f.Scanning()).To(BeFalse())
		Expect(sched.Len()).To(BeZero())

		failed := rec.ofType(EventFailed)
		Expect(failed).To(HaveLen(1))
		Expect(failed[0].Kind).To(Equal(KindScanRead))
		Expect(failed[0].Address).To(Equal(heapBase + 0x20000))

		finished := rec.ofType(EventScanFinished)
		Expect(finished).To(HaveLen(1))
		Expect(finished[0].Err).To(HaveOccurred())
	})

	It("should not start when the base does not resolve", func() {
		def.Candidates = chain.CandidateSet{{0x18, 0x0}}
		f := build()

		Expect(KindOf(f.Find())).To(Equal(KindResolution))
		Expect(f.Scanning()).To(BeFalse())
		Expect(sched.Len()).To(BeZero())
	})

	It("should not write anything without pairs", func() {
		f := build()

		err := f.Modify()
		Expect(err).To(MatchError(ErrNoPairs))
		Expect(f.Modifying()).To(BeFalse())

		sched.Advance(time.Second)
		Expect(img.Writes()).To(BeZero())
		Expect(sched.Len()).To(BeZero())
	})

	It("should write the enabled value to both addresses of every pair", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)

		f.SetEnabledValue(2.5)
		Expect(f.Modify()).To(Succeed())
		Expect(sched.Active("collision_box/modify")).To(BeTrue())
		Expect(f.Modify()).To(MatchError(ErrModifyActive))

		sched.Advance(100 * time.Millisecond)

		for _, addr := range []process.ProcessMemoryAddress{slot(3), slot(3) + 4} {
			v, err := img.ReadFLOAT32(addr)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(float32(2.5)))
		}

		f.StopModify()
		f.StopModify()
		Expect(f.Modifying()).To(BeFalse())

		writes := img.Writes()
		sched.Advance(time.Second)
		Expect(img.Writes()).To(Equal(writes))
		Expect(rec.ofType(EventModifyStopped)).To(HaveLen(1))
	})

	It("should keep writing other pairs when one fails", func() {
		f := build()
		f.pairs = []Pair{
			{Primary: roBase + 0x10, Adjacent: roBase + 0x14},
			{Primary: heapBase + 0x800, Adjacent: heapBase + 0x804},
		}

		Expect(f.Modify()).To(Succeed())
		sched.Advance(100 * time.Millisecond)

		v, err := img.ReadFLOAT32(heapBase + 0x804)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(float32(5)))

		failed := rec.ofType(EventFailed)
		Expect(failed).To(HaveLen(1))
		Expect(failed[0].Kind).To(Equal(KindWrite))
		Expect(failed[0].Address).To(Equal(roBase + 0x10))
		Expect(f.Modifying()).To(BeTrue())
	})

	It("should dispatch actions", func() {
		f := build()

		Expect(f.Apply(PairFind)).To(Succeed())
		sched.Advance(time.Second)
		Expect(f.Apply(PairModify)).To(Succeed())
		Expect(f.Apply(PairStop)).To(Succeed())
		Expect(f.Modifying()).To(BeFalse())

		Expect(f.ClearPairs()).To(Succeed())
		Expect(f.Pairs()).To(BeEmpty())
	})

	It("should refuse to clear pairs while modifying", func() {
		f := build()

		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)
		Expect(f.Pairs()).To(HaveLen(1))

		Expect(f.Modify()).To(Succeed())
		err := f.ClearPairs()
		Expect(err).To(MatchError(ErrModifyActive))
		Expect(KindOf(err)).To(Equal(KindStateConflict))
		Expect(f.Pairs()).To(HaveLen(1))
		Expect(rec.ofType(EventPairsCleared)).To(BeEmpty())

		sched.Advance(100 * time.Millisecond)
		v, err := img.ReadFLOAT32(slot(3))
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(float32(5)))

		f.StopModify()
		Expect(f.ClearPairs()).To(Succeed())
		Expect(f.Pairs()).To(BeEmpty())

		cleared := rec.ofType(EventPairsCleared)
		Expect(cleared).To(HaveLen(1))
		Expect(cleared[0].Pairs).To(BeZero())
		Expect(cleared[0].Feature).To(Equal("collision_box"))
	})

	It("should not share scheduler tasks with a feature named after its modify task", func() {
		f := build()
		Expect(f.Find()).To(Succeed())
		sched.Advance(time.Second)
		Expect(f.Modify()).To(Succeed())

		other, err := New(Target{Base: moduleBase, Memory: img}, sched, rec, Definition{
			Name:       "collision_box_modify",
			Candidates: chain.CandidateSet{{0x10, 0x20, 0x1AC}},
			Interval:   50 * time.Millisecond,
			Enabled:    1,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(other.Start()).To(Succeed())
		Expect(other.State()).To(Equal(Running))
		Expect(f.Modifying()).To(BeTrue())
		Expect(sched.Active("collision_box/modify")).To(BeTrue())
		Expect(sched.Active("collision_box_modify")).To(BeTrue())
	})
})
