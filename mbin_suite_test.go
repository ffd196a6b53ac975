// Copyright (c) 2024 Neomantra Corp

package mbin_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestMbin(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mbin suite")
}
