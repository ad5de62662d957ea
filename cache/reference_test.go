package cache

import (
	"os"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func loadTrace(path string) []uint64 {
	content, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	tokens := strings.Fields(string(content))
	addrs := make([]uint64, 0, len(tokens))

	for _, token := range tokens {
		addr, err := strconv.ParseUint(token, 16, 64)
		Expect(err).NotTo(HaveOccurred())

		addrs = append(addrs, addr)
	}

	return addrs
}

// The expected numbers were produced by the reference simulator on
// testdata/trace.txt.
var _ = Describe("Reference hit counts", func() {
	var (
		addrs []uint64
	)

	BeforeEach(func() {
		addrs = loadTrace("testdata/trace.txt")
		Expect(addrs).To(HaveLen(600))
	})

	DescribeTable("32-line caches",
		func(numWays int, useLRU bool, hits uint64) {
			s := MakeBuilder().
				WithNumWays(numWays).
				WithLRU(useLRU).
				Build("Reference")

			stats := s.Run(&sliceSource{addrs: addrs})

			Expect(stats).To(Equal(Stats{Hits: hits, Accesses: 600}))
		},
		Entry("direct-mapped", 1, false, uint64(84)),
		Entry("2-way LRU", 2, true, uint64(47)),
		Entry("4-way LRU", 4, true, uint64(27)),
	)
})
