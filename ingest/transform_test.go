// Copyright (c) 2024 Neomantra Corp

package ingest_test

import (
	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/ingest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildIdMap", func() {
	Context("joining a vendor symbol map against the registry", func() {
		It("maps each vendor id through its ticker to the internal id", func() {
			vendorSymbolMap := mbin.SymbolMap{
				377503: "ZM.n.0",
				393:    "GC.n.0",
			}
			tickerToID := map[string]uint32{
				"ZM.n.0": 20,
				"GC.n.0": 21,
			}
			idMap, err := ingest.BuildIdMap(vendorSymbolMap, tickerToID)
			Expect(err).To(BeNil())
			Expect(idMap).To(Equal(mbin.IdMap{377503: 20, 393: 21}))
		})

		It("errors when a vendor ticker is not registered", func() {
			vendorSymbolMap := mbin.SymbolMap{377503: "ZM.n.0"}
			tickerToID := map[string]uint32{"GC.n.0": 20}
			_, err := ingest.BuildIdMap(vendorSymbolMap, tickerToID)
			Expect(err).ToNot(BeNil())
		})
	})
})
