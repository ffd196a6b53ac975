// Copyright (c) 2024 Neomantra Corp

package mbin_test

import (
	"github.com/midas-systems/mbin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Instrument", func() {
	Context("FullyIngested", func() {
		It("is false for an Equities instrument regardless of watermark", func() {
			instr := mbin.Instrument{
				Dataset:        mbin.Dataset_Equities,
				LastAvailable:  200,
				ExpirationDate: 100,
			}
			Expect(instr.FullyIngested()).To(BeFalse())
		})

		It("is true for a Futures instrument whose watermark passed its expiration", func() {
			instr := mbin.Instrument{
				Dataset:        mbin.Dataset_Futures,
				LastAvailable:  200,
				ExpirationDate: 100,
			}
			Expect(instr.FullyIngested()).To(BeTrue())
		})

		It("is false for a Futures instrument still before its expiration", func() {
			instr := mbin.Instrument{
				Dataset:        mbin.Dataset_Futures,
				LastAvailable:  50,
				ExpirationDate: 100,
			}
			Expect(instr.FullyIngested()).To(BeFalse())
		})
	})
})
