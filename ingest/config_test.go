// Copyright (c) 2024 Neomantra Corp

package ingest_test

import (
	"os"

	"github.com/midas-systems/mbin/ingest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ConfigFromEnv", func() {
	It("reads the four named environment variables", func() {
		os.Setenv("RAW_DIR", "/tmp/raw")
		os.Setenv("PROCESSED_DIR", "/tmp/processed")
		os.Setenv("NON_INTERACTIVE", "1")
		os.Setenv("DATABENTO_KEY", "db-test-key")
		defer os.Unsetenv("RAW_DIR")
		defer os.Unsetenv("PROCESSED_DIR")
		defer os.Unsetenv("NON_INTERACTIVE")
		defer os.Unsetenv("DATABENTO_KEY")

		cfg := ingest.ConfigFromEnv()
		Expect(cfg.RawDir).To(Equal("/tmp/raw"))
		Expect(cfg.ProcessedDir).To(Equal("/tmp/processed"))
		Expect(cfg.NonInteractive).To(BeTrue())
		Expect(cfg.DatabentoKey).To(Equal("db-test-key"))
	})

	It("defaults NonInteractive to false when unset", func() {
		os.Unsetenv("NON_INTERACTIVE")
		cfg := ingest.ConfigFromEnv()
		Expect(cfg.NonInteractive).To(BeFalse())
	})
})
