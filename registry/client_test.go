// Copyright (c) 2024 Neomantra Corp

package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTPClient", func() {
	Context("against a fake registry server", func() {
		It("round-trips an instrument through CreateSymbol and GetSymbol", func() {
			var created string
			mux := http.NewServeMux()
			mux.HandleFunc("/instruments", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.NotFound(w, r)
					return
				}
				created = "GC.n.0"
				w.Write([]byte(`{"instrument_id":20}`))
			})
			mux.HandleFunc("/instruments/GC.n.0", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{
					"instrument_id": 20,
					"ticker": "GC.n.0",
					"name": "Gold Continuous",
					"dataset": "futures",
					"vendor": "databento",
					"vendor_data": "",
					"first_available": 0,
					"last_available": 0,
					"expiration_date": 0,
					"is_continuous": true,
					"active": true
				}`))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			client := registry.NewHTTPClient(srv.URL)
			id, err := client.CreateSymbol(context.Background(), mbin.Instrument{
				Ticker:       "GC.n.0",
				Name:         "Gold Continuous",
				Dataset:      mbin.Dataset_Futures,
				Vendor:       mbin.Vendor_Databento,
				IsContinuous: true,
				Active:       true,
			})
			Expect(err).To(BeNil())
			Expect(id).To(Equal(uint32(20)))
			Expect(created).To(Equal("GC.n.0"))

			got, err := client.GetSymbol(context.Background(), "GC.n.0", mbin.Dataset_Futures)
			Expect(err).To(BeNil())
			Expect(*got.InstrumentID).To(Equal(uint32(20)))
			Expect(got.Dataset).To(Equal(mbin.Dataset_Futures))
			Expect(got.Vendor).To(Equal(mbin.Vendor_Databento))
			Expect(got.IsContinuous).To(BeTrue())
		})

		It("propagates a non-200 response as an error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "not found", http.StatusNotFound)
			}))
			defer srv.Close()

			client := registry.NewHTTPClient(srv.URL)
			_, err := client.GetSymbol(context.Background(), "NOPE", mbin.Dataset_Futures)
			Expect(err).ToNot(BeNil())
		})
	})
})
