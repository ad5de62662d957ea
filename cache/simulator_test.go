package cache

import (
	"math/rand"

	"github.com/sarchlab/cachesim/hooking"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sliceSource struct {
	addrs []uint64
}

func (s *sliceSource) Next() (uint64, bool) {
	if len(s.addrs) == 0 {
		return 0, false
	}

	addr := s.addrs[0]
	s.addrs = s.addrs[1:]

	return addr, true
}

func randomAddresses(n int) []uint64 {
	r := rand.New(rand.NewSource(42))
	addrs := make([]uint64, n)

	for i := range addrs {
		addrs[i] = uint64(r.Intn(256))
	}

	return addrs
}

var _ = Describe("Simulator", func() {
	Context("direct-mapped", func() {
		var (
			s *Simulator
		)

		BeforeEach(func() {
			s = MakeBuilder().WithNumWays(1).Build("DM")
		})

		It("should start empty", func() {
			for _, line := range s.Lines() {
				Expect(line.IsValid).To(BeFalse())
				Expect(line.Recency).To(BeZero())
			}

			Expect(s.Stats()).To(Equal(Stats{}))
		})

		It("should hit on the second access to the same address", func() {
			Expect(s.Access(5)).To(BeFalse())
			Expect(s.Access(5)).To(BeTrue())

			Expect(s.Stats()).To(Equal(Stats{Hits: 1, Accesses: 2}))
		})

		It("should store the whole address as tag", func() {
			s.Access(0x1234)

			line, ok := s.Line(0x1234 % 32)
			Expect(ok).To(BeTrue())
			Expect(line.IsValid).To(BeTrue())
			Expect(line.Tag).To(Equal(uint64(0x1234)))
		})

		It("should evict addresses with the same residue", func() {
			Expect(s.Access(5)).To(BeFalse())
			Expect(s.Access(37)).To(BeFalse())
			Expect(s.Access(5)).To(BeFalse())
			Expect(s.Access(37)).To(BeFalse())

			line, _ := s.Line(5)
			Expect(line.Tag).To(Equal(uint64(37)))
			Expect(s.Stats().Hits).To(BeZero())
		})

		It("should keep hitting when other slots are used in between", func() {
			s.Access(5)
			s.Access(6)
			s.Access(100)

			Expect(s.Access(5)).To(BeTrue())
		})

		It("should not age lines", func() {
			s.Access(5)
			s.Access(6)

			line, _ := s.Line(5)
			Expect(line.Recency).To(BeZero())
		})
	})

	Context("2-way LRU", func() {
		var (
			s *Simulator
		)

		BeforeEach(func() {
			s = MakeBuilder().WithNumWays(2).WithLRU(true).Build("LRU2")
		})

		It("should keep filling way 0 while the other way is empty", func() {
			Expect(s.Access(0)).To(BeFalse())
			Expect(s.Access(16)).To(BeFalse())

			way0, _ := s.Line(0)
			way1, _ := s.Line(1)
			Expect(way0.Tag).To(Equal(uint64(16)))
			Expect(way1.IsValid).To(BeFalse())
		})

		It("should let each miss evict the previous tag of the set", func() {
			a, b, c := uint64(0), uint64(16), uint64(32)

			Expect(s.Access(a)).To(BeFalse())
			Expect(s.Access(b)).To(BeFalse())
			Expect(s.Access(a)).To(BeFalse())
			Expect(s.Access(c)).To(BeFalse())

			way0, _ := s.Line(0)
			way1, _ := s.Line(1)
			Expect(way0).To(Equal(Line{Tag: c, IsValid: true, Recency: 1}))
			Expect(way1).To(Equal(Line{}))
			Expect(s.Stats()).To(Equal(Stats{Hits: 0, Accesses: 4}))
		})

		It("should evict the least recently used line when empty ways fill first",
			func() {
				s = MakeBuilder().
					WithNumWays(2).
					WithLRU(true).
					WithVictimFinder(NewEmptyFirstVictimFinder()).
					Build("LRU2")
				a, b, c := uint64(0), uint64(16), uint64(32)

				Expect(s.Access(a)).To(BeFalse())
				Expect(s.Access(b)).To(BeFalse())
				Expect(s.Access(a)).To(BeTrue())
				Expect(s.Access(c)).To(BeFalse())

				way0, _ := s.Line(0)
				way1, _ := s.Line(1)
				Expect(way0).To(Equal(Line{Tag: a, IsValid: true, Recency: 2}))
				Expect(way1).To(Equal(Line{Tag: c, IsValid: true, Recency: 1}))
				Expect(s.Stats()).To(Equal(Stats{Hits: 1, Accesses: 4}))

				Expect(s.Access(a)).To(BeTrue())
				Expect(s.Access(b)).To(BeFalse())
			})

		It("should age lines of other sets", func() {
			s.Access(3)
			s.Access(4)

			line, _ := s.Line(6)
			Expect(line.Tag).To(Equal(uint64(3)))
			Expect(line.Recency).To(Equal(uint64(2)))
		})

		It("should reset the recency of the shifted-address line", func() {
			s.Access(4)

			line8, _ := s.Line(8)
			Expect(line8.Recency).To(Equal(uint64(1)))

			s.Access(17)

			line8, _ = s.Line(8)
			line2, _ := s.Line(2)
			Expect(line8.Tag).To(Equal(uint64(4)))
			Expect(line8.Recency).To(BeZero())
			Expect(line2.Tag).To(Equal(uint64(17)))
			Expect(line2.Recency).To(Equal(uint64(1)))
		})

		It("should ignore a reset line beyond the cache", func() {
			Expect(func() { s.Access(60 + 2<<18) }).NotTo(Panic())
			Expect(s.Stats().Accesses).To(Equal(uint64(1)))
		})

		It("should never hold the same tag twice in a set", func() {
			for _, addr := range randomAddresses(2000) {
				s.Access(addr)
			}

			lines := s.Lines()
			for setID := 0; setID < 16; setID++ {
				way0, way1 := lines[setID*2], lines[setID*2+1]
				if way0.IsValid && way1.IsValid {
					Expect(way0.Tag).NotTo(Equal(way1.Tag))
				}
			}
		})
	})

	Context("fully associative LRU", func() {
		It("should only replace way 0 with the default victim finder", func() {
			s := MakeBuilder().WithNumWays(32).WithLRU(true).Build("FA")

			for addr := uint64(0); addr < 32; addr++ {
				Expect(s.Access(addr * 7)).To(BeFalse())
			}

			lines := s.Lines()
			Expect(lines[0]).To(Equal(Line{Tag: 31 * 7, IsValid: true}))
			for _, line := range lines[1:] {
				Expect(line.IsValid).To(BeFalse())
			}
		})

		It("should hold as many distinct addresses as lines when filling empty ways first",
			func() {
				s := MakeBuilder().
					WithNumWays(32).
					WithLRU(true).
					WithVictimFinder(NewEmptyFirstVictimFinder()).
					Build("FA")

				for addr := uint64(0); addr < 32; addr++ {
					Expect(s.Access(addr * 7)).To(BeFalse())
				}

				for _, line := range s.Lines() {
					Expect(line.IsValid).To(BeTrue())
				}
			})
	})

	Context("random", func() {
		var (
			mockCtrl   *gomock.Controller
			randSource *MockRandSource
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			randSource = NewMockRandSource(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should hit when the probe finds the resident line", func() {
			s := MakeBuilder().
				WithNumWays(32).
				WithRandSource(randSource).
				Build("FA")

			randSource.EXPECT().Intn(32).Return(7).Times(32)

			Expect(s.Access(100)).To(BeFalse())
			for i := 1; i < 32; i++ {
				Expect(s.Access(100)).To(BeTrue())
			}

			Expect(s.Stats()).To(Equal(Stats{Hits: 31, Accesses: 32}))
		})

		It("should miss when the probe lands elsewhere", func() {
			s := MakeBuilder().
				WithNumWays(32).
				WithRandSource(randSource).
				Build("FA")

			gomock.InOrder(
				randSource.EXPECT().Intn(32).Return(7),
				randSource.EXPECT().Intn(32).Return(8),
			)

			Expect(s.Access(100)).To(BeFalse())
			Expect(s.Access(100)).To(BeFalse())

			line7, _ := s.Line(7)
			line8, _ := s.Line(8)
			Expect(line7.Tag).To(Equal(uint64(100)))
			Expect(line8.Tag).To(Equal(uint64(100)))
		})

		It("should probe the whole cache regardless of sets", func() {
			s := MakeBuilder().
				WithNumWays(2).
				WithLRU(false).
				WithRandSource(randSource).
				Build("R2")

			randSource.EXPECT().Intn(32).Return(31)

			s.Access(0)

			line, _ := s.Line(31)
			Expect(line).To(Equal(Line{Tag: 0, IsValid: true}))
		})
	})

	It("should not leak state between simulators", func() {
		addrs := randomAddresses(1000)

		for _, config := range []Config{
			{NumLines: 32, NumWays: 1, Seed: 1},
			{NumLines: 32, NumWays: 2, UseLRU: true, Seed: 1},
			{NumLines: 32, NumWays: 4, UseLRU: true, Seed: 1},
			{NumLines: 32, NumWays: 32, Seed: 1},
		} {
			first := MakeBuilder().WithConfig(config).Build("First")
			second := MakeBuilder().WithConfig(config).Build("Second")

			firstStats := first.Run(&sliceSource{addrs: addrs})
			secondStats := second.Run(&sliceSource{addrs: addrs})

			Expect(firstStats).To(Equal(secondStats))
			Expect(firstStats.Hits).To(BeNumerically("<=", firstStats.Accesses))
			Expect(firstStats.Accesses).To(Equal(uint64(len(addrs))))
		}
	})

	It("should report nothing for an empty trace", func() {
		s := MakeBuilder().WithNumWays(4).WithLRU(true).Build("Empty")

		stats := s.Run(&sliceSource{})

		Expect(stats.Accesses).To(BeZero())
		_, ok := stats.HitRate()
		Expect(ok).To(BeFalse())
	})

	It("should panic when built with a partial set", func() {
		Expect(func() { MakeBuilder().WithNumWays(3).Build("Bad") }).
			To(Panic())
	})

	It("should notify hooks after each access", func() {
		s := MakeBuilder().Build("DM")
		events := []AccessEvent{}
		s.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosAccess))
			Expect(ctx.Domain.Name()).To(Equal("DM"))
			events = append(events, ctx.Item.(AccessEvent))
		}))

		s.Access(3)
		s.Access(3)

		Expect(events).To(Equal([]AccessEvent{
			{Seq: 1, Address: 3, Hit: false, LineIndex: 3},
			{Seq: 2, Address: 3, Hit: true, LineIndex: 3},
		}))
	})
})
