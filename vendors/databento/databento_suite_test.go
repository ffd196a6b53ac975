// Copyright (c) 2024 Neomantra Corp

package databento_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestDatabento(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "vendors/databento suite")
}
