package chain

import (
	"errors"

	"gofreeze/process"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var errUnmapped = errors.New("unmapped")

var _ = Describe("Resolve", func() {
	var (
		mockCtrl *gomock.Controller
		mem      *MockMemoryAccess
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mem = NewMockMemoryAccess(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reject an empty chain", func() {
		_, err := Resolve(mem, 0x1000, nil)
		Expect(err).To(MatchError(ErrEmptyChain))
	})

	It("should add a single offset without dereferencing", func() {
		addr, err := Resolve(mem, 0x1000, OffsetChain{0x20})
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(process.ProcessMemoryAddress(0x1020)))
	})

	It("should dereference every step but the last", func() {
		gomock.InOrder(
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0x5000), nil),
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x5088)).Return(process.ProcessMemoryAddress(0x9000), nil),
		)

		addr, err := Resolve(mem, 0x1000, OffsetChain{0x10, 0x88, 0x1AC})
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(process.ProcessMemoryAddress(0x91AC)))
	})

	It("should apply negative offsets", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1000)).Return(process.ProcessMemoryAddress(0x5000), nil)

		addr, err := Resolve(mem, 0x1010, OffsetChain{-0x10, -0x8})
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(process.ProcessMemoryAddress(0x4FF8)))
	})

	It("should stop at a null pointer without further reads", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0x5000), nil)
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x5008)).Return(process.ProcessMemoryAddress(0), nil)

		_, err := Resolve(mem, 0x1000, OffsetChain{0x10, 0x8, 0x30, 0x40})
		Expect(err).To(MatchError(ErrChainBroken))

		var broken *BrokenError
		Expect(errors.As(err, &broken)).To(BeTrue())
		Expect(broken.Step).To(Equal(1))
		Expect(broken.At).To(Equal(process.ProcessMemoryAddress(0x5008)))
		Expect(broken.Err).To(BeNil())
	})

	It("should report a failed read as a broken chain", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0), errUnmapped)

		_, err := Resolve(mem, 0x1000, OffsetChain{0x10, 0x8})
		Expect(err).To(MatchError(ErrChainBroken))
		Expect(errors.Is(err, errUnmapped)).To(BeTrue())
	})

	It("should trace every hop", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0x5000), nil)
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x5008)).Return(process.ProcessMemoryAddress(0x6000), nil)

		addr, hops, err := Trace(mem, 0x1000, OffsetChain{0x10, 0x8, 0x4})
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(process.ProcessMemoryAddress(0x6004)))
		Expect(hops).To(Equal([]Hop{
			{Step: 0, At: 0x1010, Value: 0x5000},
			{Step: 1, At: 0x5008, Value: 0x6000},
		}))
	})
})

var _ = Describe("Validate", func() {
	var (
		mockCtrl *gomock.Controller
		mem      *MockMemoryAccess
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mem = NewMockMemoryAccess(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should accept a readable address", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x4000)).Return(process.ProcessMemoryAddress(0), nil)
		Expect(Validate(mem, 0x4000)).To(Succeed())
	})

	It("should reject an unreadable address", func() {
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x4000)).Return(process.ProcessMemoryAddress(0), errUnmapped)

		err := Validate(mem, 0x4000)
		Expect(err).To(MatchError(ErrInvalidAddress))
		Expect(errors.Is(err, errUnmapped)).To(BeTrue())
	})

	It("should reject null without reading", func() {
		Expect(Validate(mem, 0)).To(MatchError(ErrInvalidAddress))
	})
})

var _ = Describe("Select", func() {
	var (
		mockCtrl *gomock.Controller
		mem      *MockMemoryAccess
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mem = NewMockMemoryAccess(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pick the first chain that validates", func() {
		set := CandidateSet{
			{0x10, 0x100},
			{0x18, 0x200},
			{0x20, 0x300},
		}

		gomock.InOrder(
			// chain 0 resolves but its target is unreadable
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0x5000), nil),
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x5100)).Return(process.ProcessMemoryAddress(0), errUnmapped),
			// chain 1 resolves and validates
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1018)).Return(process.ProcessMemoryAddress(0x6000), nil),
			mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x6200)).Return(process.ProcessMemoryAddress(0x1), nil),
		)

		addr, index, err := Select(mem, 0x1000, set)
		Expect(err).NotTo(HaveOccurred())
		Expect(index).To(Equal(1))
		Expect(addr).To(Equal(process.ProcessMemoryAddress(0x6200)))
	})

	It("should fail when no chain validates", func() {
		set := CandidateSet{
			{0x10, 0x100},
			{0x18, 0x200},
		}

		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1010)).Return(process.ProcessMemoryAddress(0), nil)
		mem.EXPECT().ReadPOINTER(process.ProcessMemoryAddress(0x1018)).Return(process.ProcessMemoryAddress(0), errUnmapped)

		addr, index, err := Select(mem, 0x1000, set)
		Expect(err).To(MatchError(ErrNoValidCandidate))
		Expect(errors.Is(err, ErrChainBroken)).To(BeTrue())
		Expect(errors.Is(err, errUnmapped)).To(BeTrue())
		Expect(index).To(Equal(-1))
		Expect(addr).To(BeZero())
	})

	It("should fail on an empty set", func() {
		_, _, err := Select(mem, 0x1000, nil)
		Expect(err).To(MatchError(ErrNoValidCandidate))
	})
})

var _ = Describe("OffsetChain", func() {
	It("should print offsets in hex", func() {
		Expect(OffsetChain{0xDFB8A38, -0x10, 0}.String()).To(Equal("[0xDFB8A38 -0x10 0x0]"))
	})
})
