// Copyright (c) 2024 Neomantra Corp

package databento_test

import (
	"time"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/vendors/databento"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FileName", func() {
	start := time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

	It("builds the vendor raw-download name", func() {
		name := databento.FileName(databento.GlbxMdp3, mbin.Schema_Mbp1, start, end, []string{"GC.n.0"}, false)
		Expect(name).To(Equal("GLBX.MDP3_mbp-1_GC.n.0_2021-11-01T00:00:00Z_2021-12-01T00:00:00Z.dbn"))
	})

	It("prefixes batch downloads", func() {
		name := databento.FileName(databento.GlbxMdp3, mbin.Schema_Mbp1, start, end, []string{"GC.n.0"}, true)
		Expect(name).To(HavePrefix("batch_"))
	})

	Context("ParseFileName", func() {
		It("is the exact inverse of FileName for a stream download", func() {
			name := databento.FileName(databento.GlbxMdp3, mbin.Schema_Mbp1, start, end, []string{"GC.n.0", "ZM.n.0"}, false)
			parsed, err := databento.ParseFileName(name)
			Expect(err).To(BeNil())
			Expect(parsed.DatasetCode).To(Equal(databento.GlbxMdp3))
			Expect(parsed.Schema).To(Equal(mbin.Schema_Mbp1))
			Expect(parsed.Symbols).To(Equal([]string{"GC.n.0", "ZM.n.0"}))
			Expect(parsed.Start.Equal(start)).To(BeTrue())
			Expect(parsed.End.Equal(end)).To(BeTrue())
			Expect(parsed.Batch).To(BeFalse())
		})

		It("recognizes a batch-prefixed name", func() {
			name := databento.FileName(databento.GlbxMdp3, mbin.Schema_Mbp1, start, end, []string{"GC.n.0"}, true)
			parsed, err := databento.ParseFileName(name)
			Expect(err).To(BeNil())
			Expect(parsed.Batch).To(BeTrue())
		})

		It("errors on a malformed name", func() {
			_, err := databento.ParseFileName("not_enough_parts.dbn")
			Expect(err).To(MatchError(mbin.ErrInvalidMbinFile))
		})
	})
})

var _ = Describe("MbinFileName", func() {
	start := time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

	It("omits the shard prefix for a stream artifact", func() {
		name := databento.MbinFileName([]string{"GC.n.0"}, mbin.Schema_Mbp1, start, end, false, 0)
		Expect(name).To(Equal("GC.n.0_mbp-1_2021-11-01T00:00:00Z_2021-12-01T00:00:00Z.bin"))
	})

	It("prefixes the first batch shard with index 0, not 1", func() {
		name := databento.MbinFileName([]string{"GC.n.0"}, mbin.Schema_Mbp1, start, end, true, 0)
		Expect(name).To(Equal("0_GC.n.0_mbp-1_2021-11-01T00:00:00Z_2021-12-01T00:00:00Z.bin"))
	})

	It("numbers later batch shards sequentially", func() {
		name := databento.MbinFileName([]string{"GC.n.0"}, mbin.Schema_Mbp1, start, end, true, 3)
		Expect(name).To(Equal("3_GC.n.0_mbp-1_2021-11-01T00:00:00Z_2021-12-01T00:00:00Z.bin"))
	})
})
