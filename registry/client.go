// Copyright (c) 2024 Neomantra Corp

// Package registry is this module's narrow interface onto the
// external instrument registry -- the "historical" service
// original_source calls through midas_client::historical::Historical.
package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/midas-systems/mbin"
	json "github.com/segmentio/encoding/json"
)

// Client is the instrument CRUD surface the update driver
// (ingest.DatabentoVendor.Update)
// needs. Modeled as a narrow interface per SPEC_FULL §4.9's capability-
// abstraction note, so ingest can be tested against a fake without a
// live registry.
type Client interface {
	ListVendorSymbols(ctx context.Context, vendor mbin.Vendor, dataset mbin.Dataset) ([]mbin.Instrument, error)
	GetSymbol(ctx context.Context, ticker string, dataset mbin.Dataset) (mbin.Instrument, error)
	CreateSymbol(ctx context.Context, instr mbin.Instrument) (uint32, error)
	UpdateSymbol(ctx context.Context, instr mbin.Instrument) error
	DeleteSymbol(ctx context.Context, instrumentID uint32) error
}

// Loader is the historical-data upload surface (SPEC_FULL §4.7's
// Upload step calls CreateFromFile once per staged MBIN artifact).
type Loader interface {
	CreateFromFile(ctx context.Context, relativePath string) error
}

// HTTPClient is the one concrete Client+Loader implementation,
// grounded on the teacher's hist/hist.go request-building idiom
// (Basic-Auth-over-base64, no API key here since the registry is an
// internal service) upgraded to go-retryablehttp + segmentio/json, the
// same upgrade client.go already makes to the vendor download client.
type HTTPClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewHTTPClient builds an HTTPClient against baseURL, e.g.
// "http://localhost:8080", matching original_source's
// Historical::new(base_url).
func NewHTTPClient(baseURL string) *HTTPClient {
	c := retryablehttp.NewClient()
	c.RetryMax = 10
	c.Logger = nil
	return &HTTPClient{baseURL: baseURL, http: c}
}

type instrumentWire struct {
	InstrumentID   *uint32 `json:"instrument_id,omitempty"`
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	Dataset        string  `json:"dataset"`
	Vendor         string  `json:"vendor"`
	VendorData     string  `json:"vendor_data"`
	FirstAvailable uint64  `json:"first_available"`
	LastAvailable  uint64  `json:"last_available"`
	ExpirationDate uint64  `json:"expiration_date"`
	IsContinuous   bool    `json:"is_continuous"`
	Active         bool    `json:"active"`
}

func toWire(i mbin.Instrument) instrumentWire {
	return instrumentWire{
		InstrumentID:   i.InstrumentID,
		Ticker:         i.Ticker,
		Name:           i.Name,
		Dataset:        i.Dataset.String(),
		Vendor:         i.Vendor.String(),
		VendorData:     base64.StdEncoding.EncodeToString(i.VendorData),
		FirstAvailable: i.FirstAvailable,
		LastAvailable:  i.LastAvailable,
		ExpirationDate: i.ExpirationDate,
		IsContinuous:   i.IsContinuous,
		Active:         i.Active,
	}
}

func (w instrumentWire) toInstrument() (mbin.Instrument, error) {
	vendorData, err := base64.StdEncoding.DecodeString(w.VendorData)
	if err != nil {
		return mbin.Instrument{}, err
	}
	return mbin.Instrument{
		InstrumentID:   w.InstrumentID,
		Ticker:         w.Ticker,
		Name:           w.Name,
		Dataset:        datasetFromString(w.Dataset),
		Vendor:         vendorFromString(w.Vendor),
		VendorData:     vendorData,
		FirstAvailable: w.FirstAvailable,
		LastAvailable:  w.LastAvailable,
		ExpirationDate: w.ExpirationDate,
		IsContinuous:   w.IsContinuous,
		Active:         w.Active,
	}, nil
}

func datasetFromString(s string) mbin.Dataset {
	switch s {
	case "equities":
		return mbin.Dataset_Equities
	case "option":
		return mbin.Dataset_Option
	default:
		return mbin.Dataset_Futures
	}
}

func vendorFromString(s string) mbin.Vendor {
	if s == "internal" {
		return mbin.Vendor_Internal
	}
	return mbin.Vendor_Databento
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// ListVendorSymbols returns every active instrument registered for
// vendor/dataset.
func (c *HTTPClient) ListVendorSymbols(ctx context.Context, vendor mbin.Vendor, dataset mbin.Dataset) ([]mbin.Instrument, error) {
	path := fmt.Sprintf("/instruments?vendor=%s&dataset=%s", vendor.String(), dataset.String())
	var wire []instrumentWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]mbin.Instrument, 0, len(wire))
	for _, w := range wire {
		instr, err := w.toInstrument()
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
	return out, nil
}

// GetSymbol returns one instrument by ticker/dataset.
func (c *HTTPClient) GetSymbol(ctx context.Context, ticker string, dataset mbin.Dataset) (mbin.Instrument, error) {
	path := fmt.Sprintf("/instruments/%s?dataset=%s", url.PathEscape(ticker), dataset.String())
	var wire instrumentWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return mbin.Instrument{}, err
	}
	return wire.toInstrument()
}

// CreateSymbol registers a new instrument, returning its assigned id.
func (c *HTTPClient) CreateSymbol(ctx context.Context, instr mbin.Instrument) (uint32, error) {
	var out struct {
		InstrumentID uint32 `json:"instrument_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/instruments", toWire(instr), &out); err != nil {
		return 0, err
	}
	return out.InstrumentID, nil
}

// UpdateSymbol persists a modified instrument, e.g. a new watermark.
func (c *HTTPClient) UpdateSymbol(ctx context.Context, instr mbin.Instrument) error {
	if instr.InstrumentID == nil {
		return fmt.Errorf("UpdateSymbol: instrument %q has no instrument_id", instr.Ticker)
	}
	path := fmt.Sprintf("/instruments/%d", *instr.InstrumentID)
	return c.do(ctx, http.MethodPut, path, toWire(instr), nil)
}

// DeleteSymbol removes an instrument by internal id.
func (c *HTTPClient) DeleteSymbol(ctx context.Context, instrumentID uint32) error {
	path := fmt.Sprintf("/instruments/%d", instrumentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateFromFile tells the historical loader to ingest the MBIN
// artifact at relativePath, resolved against its mounted processed
// volume. No streaming upload -- the file already lives where the
// loader can reach it (SPEC_FULL §6's upload endpoint semantics).
func (c *HTTPClient) CreateFromFile(ctx context.Context, relativePath string) error {
	body := struct {
		Path string `json:"path"`
	}{Path: relativePath}
	return c.do(ctx, http.MethodPost, "/mbp/create_from_file", body, nil)
}
