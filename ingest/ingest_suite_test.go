// Copyright (c) 2024 Neomantra Corp

package ingest_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestIngest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ingest suite")
}
