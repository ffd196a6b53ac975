// Copyright (c) 2024 Neomantra Corp

package mbin_test

import (
	"time"

	"github.com/midas-systems/mbin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DateToUnixNanos", func() {
	Context("UTC round trip", func() {
		It("parses a date-time string and formats it back unchanged", func() {
			ns, err := mbin.DateToUnixNanos("2021-11-01 01:01:01")
			Expect(err).To(BeNil())
			Expect(ns).To(Equal(int64(1635728461000000000)))
			Expect(mbin.UnixNanosToDate(ns)).To(Equal("2021-11-01 01:01:01"))
		})

		It("defaults a bare date to midnight UTC", func() {
			ns, err := mbin.DateToUnixNanos("2021-11-01")
			Expect(err).To(BeNil())
			Expect(ns).To(Equal(int64(1635724800000000000)))
		})

		It("rejects a malformed date string", func() {
			_, err := mbin.DateToUnixNanos("not-a-date")
			Expect(err).To(MatchError(mbin.ErrInvalidDateFormat))
		})
	})
})

var _ = Describe("YearEndOr", func() {
	It("returns the next January 1st when it falls before cap", func() {
		date := time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC)
		cap := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
		got := mbin.YearEndOr(date, cap)
		Expect(got).To(Equal(time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)))
	})

	It("returns cap when the next year boundary is past it", func() {
		date := time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC)
		cap := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)
		got := mbin.YearEndOr(date, cap)
		Expect(got).To(Equal(cap))
	})
})
