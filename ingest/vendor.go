// Copyright (c) 2024 Neomantra Corp

package ingest

import (
	"context"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/registry"
)

// Vendor is the capability set SPEC_FULL §9's "dynamic vendor
// polymorphism" note asks for: `{update, download, stage, upload}`,
// modeled as an interface with one DatabentoVendor implementation
// today. Grounded directly on original_source's
// pipeline/vendors/mod.rs::Vendor trait, trimmed to this module's
// split of responsibilities (Transform lives as a free function,
// §4.4, since it needs no vendor-specific state beyond the
// Extractor already passed to it).
type Vendor interface {
	// Update walks every active instrument of dataset forward to
	// today, downloading/transforming/uploading each missing window.
	// downloadApproval, when true, pre-approves every window's download.
	// When false, DatabentoVendor declines each download with
	// mbin.ErrUserCancelled unless its Config.NonInteractive is set;
	// Update never prompts the user itself.
	Update(ctx context.Context, dataset mbin.Dataset, downloadApproval bool) error
}

// VendorClients bundles the collaborators a Vendor implementation
// needs: the registry (for ListVendorSymbols/UpdateSymbol) and the
// loader (for CreateFromFile). Grounded on original_source's
// Historical/Instruments split (midas_client::historical::Historical,
// midas_client::instrument::Instruments) -- kept separate interfaces
// here too even though registry.HTTPClient satisfies both.
type VendorClients struct {
	Registry registry.Client
	Loader   registry.Loader
}
