// Copyright (c) 2024 Neomantra Corp

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/vendors/databento"
)

// DatabentoVendor is the Vendor implementation driving the Databento
// historical API. Grounded on original_source's
// pipeline/vendors/v_databento/mod.rs::DatabentoVendor and the newer
// vendors/databento/mod.rs revision's combined exit condition.
type DatabentoVendor struct {
	Client  *databento.Client
	Clients VendorClients
	Config  Config
}

// NewDatabentoVendor builds a DatabentoVendor from its collaborators.
func NewDatabentoVendor(client *databento.Client, clients VendorClients, cfg Config) *DatabentoVendor {
	return &DatabentoVendor{Client: client, Clients: clients, Config: cfg}
}

// approvalPrompt turns the caller's one-shot downloadApproval decision
// into a databento.Prompt: every window within this Update call is
// pre-approved or pre-declined together. A caller wanting per-window
// interactive confirmation (SPEC_FULL §4.6) prompts the user itself
// before invoking Update and passes the resulting bool through --
// Update has no terminal access of its own.
func approvalPrompt(approved bool) databento.Prompt {
	if approved {
		return databento.AlwaysApprove
	}
	return func(float64, float64) bool { return false }
}

// vendor422Unresolvable reports whether err is the vendor's specific
// "no symbols resolved" 422, the one case original_source's update
// loop treats as a soft per-ticker skip rather than a fatal error.
// Grounded on vendors/databento/mod.rs's precise double-check
// (status 422 AND message contains the exact phrase), not just the
// status code alone.
func vendor422Unresolvable(err error) bool {
	return errors.Is(err, mbin.ErrVendor422) && strings.Contains(err.Error(), "None of the symbols could be resolved")
}

// Update walks every active instrument of dataset forward from its
// last-available watermark to today, downloading, staging and
// uploading one year-aligned window at a time. Grounded on
// original_source's update/update_ticker loop (both the
// pipeline/vendors/v_databento/mod.rs and newer vendors/databento/
// mod.rs revisions): the combined exit condition (an empty window, or
// a non-equities instrument whose watermark is already past its
// expiration date) comes from the newer revision. An error ends only
// that instrument's walk; the remaining instruments still run, and
// every per-instrument error is returned joined.
func (v *DatabentoVendor) Update(ctx context.Context, dataset mbin.Dataset, downloadApproval bool) error {
	instruments, err := v.Clients.Registry.ListVendorSymbols(ctx, mbin.Vendor_Databento, dataset)
	if err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	prompt := approvalPrompt(downloadApproval || v.Config.NonInteractive)

	var errs []error
	for _, instr := range instruments {
		if err := v.updateTicker(ctx, instr, today, prompt); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", instr.Ticker, err))
		}
	}
	return errors.Join(errs...)
}

func (v *DatabentoVendor) updateTicker(ctx context.Context, instr mbin.Instrument, today time.Time, prompt databento.Prompt) error {
	cur := instr
	if cur.FullyIngested() {
		return nil
	}

	for {
		start := cur.LastAvailableTime()
		end := mbin.YearEndOr(start, today)
		if !start.Before(end) || cur.FullyIngested() {
			return nil
		}

		q := databento.RangeQuery{
			Dataset: databento.GlbxMdp3,
			Start:   start,
			End:     end,
			Symbols: []string{cur.Ticker},
			Schema:  mbin.Schema_Mbp1,
			SType:   mbin.SType_RawSymbol,
		}
		result, err := v.Client.GetHistorical(ctx, q, v.Config.RawDir, prompt)
		switch {
		case err != nil && vendor422Unresolvable(err):
			// No symbols resolved for this window -- nothing to stage or
			// upload, but the window itself is still exhausted, so the
			// watermark advances past it exactly as on a successful
			// window. Grounded on vendors/databento/mod.rs's 422 branch,
			// which only logs before falling through to
			// ticker.last_available = end; update_symbol(...).
			slog.Warn("vendor resolved no symbols for window; advancing watermark", "ticker", cur.Ticker, "start", start, "end", end)
		case err != nil:
			return err
		default:
			var staged []string
			switch result.Mode {
			case mbin.DownloadMode_Stream:
				path, err := StageStream(result.FilePath, tickerIDFor(cur), cur.Dataset, v.Config.ProcessedDir, q.Symbols, q.Schema, start, end)
				if err != nil {
					return err
				}
				staged = []string{path}
			default:
				paths, err := StageBatch(result.FilePath, tickerIDFor(cur), cur.Dataset, v.Config.ProcessedDir, q.Symbols, q.Schema, start, end)
				if err != nil {
					return err
				}
				staged = paths
			}

			if err := Upload(ctx, v.Clients.Loader, v.Config.ProcessedDir, staged); err != nil {
				return err
			}
		}

		cur.LastAvailable = uint64(end.UnixNano())
		if err := v.Clients.Registry.UpdateSymbol(ctx, cur); err != nil {
			return err
		}
		if end.Equal(today) {
			return nil
		}
	}
}

// tickerIDFor builds the single-entry ticker->id map stageOne needs to
// join one instrument's own vendor file against the registry.
func tickerIDFor(instr mbin.Instrument) map[string]uint32 {
	if instr.InstrumentID == nil {
		return nil
	}
	return map[string]uint32{instr.Ticker: *instr.InstrumentID}
}
