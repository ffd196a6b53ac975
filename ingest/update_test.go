// Copyright (c) 2024 Neomantra Corp

package ingest_test

import (
	"context"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/ingest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeRegistry struct {
	instruments []mbin.Instrument
	updated     []mbin.Instrument
}

func (f *fakeRegistry) ListVendorSymbols(ctx context.Context, vendor mbin.Vendor, dataset mbin.Dataset) ([]mbin.Instrument, error) {
	return f.instruments, nil
}
func (f *fakeRegistry) GetSymbol(ctx context.Context, ticker string, dataset mbin.Dataset) (mbin.Instrument, error) {
	return mbin.Instrument{}, nil
}
func (f *fakeRegistry) CreateSymbol(ctx context.Context, instr mbin.Instrument) (uint32, error) {
	return 0, nil
}
func (f *fakeRegistry) UpdateSymbol(ctx context.Context, instr mbin.Instrument) error {
	f.updated = append(f.updated, instr)
	return nil
}
func (f *fakeRegistry) DeleteSymbol(ctx context.Context, instrumentID uint32) error { return nil }

var _ = Describe("DatabentoVendor.Update", func() {
	Context("an instrument already past its expiration", func() {
		It("is skipped entirely, with no registry update call", func() {
			id := uint32(20)
			expired := mbin.Instrument{
				InstrumentID:   &id,
				Ticker:         "GC.n.0",
				Dataset:        mbin.Dataset_Futures,
				LastAvailable:  200,
				ExpirationDate: 100,
			}
			reg := &fakeRegistry{instruments: []mbin.Instrument{expired}}
			v := ingest.NewDatabentoVendor(nil, ingest.VendorClients{Registry: reg}, ingest.Config{})

			err := v.Update(context.Background(), mbin.Dataset_Futures, true)
			Expect(err).To(BeNil())
			Expect(reg.updated).To(BeEmpty())
		})
	})
})
