package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	DescribeTable("validation",
		func(numLines, numWays int, valid bool) {
			err := Config{NumLines: numLines, NumWays: numWays}.Validate()
			if valid {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(HaveOccurred())
			}
		},
		Entry("direct-mapped", 32, 1, true),
		Entry("2-way", 32, 2, true),
		Entry("fully associative", 32, 32, true),
		Entry("partial set", 32, 3, false),
		Entry("no way", 32, 0, false),
		Entry("more ways than lines", 32, 64, false),
		Entry("no line", 0, 1, false),
	)

	DescribeTable("policy",
		func(numWays int, useLRU bool, policy Policy) {
			config := Config{NumLines: 32, NumWays: numWays, UseLRU: useLRU}
			Expect(config.Policy()).To(Equal(policy))
		},
		Entry("direct-mapped ignores LRU", 1, true, DirectMapped),
		Entry("direct-mapped", 1, false, DirectMapped),
		Entry("lru", 4, true, LRU),
		Entry("random", 4, false, Random),
		Entry("fully associative random", 32, false, Random),
	)

	It("should count sets", func() {
		Expect(Config{NumLines: 32, NumWays: 4}.NumSets()).To(Equal(8))
		Expect(Config{NumLines: 32, NumWays: 32}.IsFullyAssociative()).
			To(BeTrue())
	})

	It("should derive the recency reset line from shifted bits", func() {
		config := Config{NumLines: 32, NumWays: 2}

		Expect(config.recencyResetIndex(4)).To(Equal(2))
		Expect(config.recencyResetIndex(17)).To(Equal(8))
		Expect(config.recencyResetIndex(60 + 1<<18)).To(Equal(31))
		Expect(config.recencyResetIndex(60 + 2<<18)).To(Equal(32))
	})

	It("should always reset line 0 when fully associative", func() {
		config := Config{NumLines: 32, NumWays: 32}

		Expect(config.recencyResetIndex(0xdeadbeef)).To(Equal(0))
	})
})

var _ = Describe("Stats", func() {
	It("should report an undefined hit rate without access", func() {
		rate, ok := Stats{}.HitRate()

		Expect(ok).To(BeFalse())
		Expect(rate).To(Equal(0.0))
	})

	It("should compute the hit rate", func() {
		stats := Stats{Hits: 1, Accesses: 4}
		rate, ok := stats.HitRate()

		Expect(ok).To(BeTrue())
		Expect(rate).To(Equal(25.0))
		Expect(stats.Misses()).To(Equal(uint64(3)))
	})
})
