// Copyright (c) 2024 Neomantra Corp

package databento

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/midas-systems/mbin"
	json "github.com/segmentio/encoding/json"
)

const baseURL = "https://hist.databento.com/v0"

// batchSizeThresholdGB is the stream-vs-batch decision boundary,
// grounded on original_source's client.rs get_historical (`size < 5.0`).
const batchSizeThresholdGB = 5.0

// Prompt asks the caller whether to proceed given an estimated cost
// (USD) and download size (GB); NON_INTERACTIVE callers should supply
// a Prompt that always returns true. Grounded on SPEC_FULL §9's
// injectable-collaborator resolution of original_source's
// utils.rs::user_input.
type Prompt func(costUSD, sizeGB float64) bool

// AlwaysApprove is a Prompt that never asks, matching the
// NON_INTERACTIVE branch of original_source's user_input().
func AlwaysApprove(float64, float64) bool { return true }

// Client talks to the vendor's historical HTTP API: cost/size probes,
// streaming downloads, and batch job submission/polling. Grounded on
// teacher's hist/metadata.go (GetCost/GetBillableSize request shape)
// and hist/batch.go (BatchJob/SubmitJob/ListJobs/Download), upgraded
// to retryablehttp + segmentio/json per SPEC_FULL's DOMAIN STACK.
type Client struct {
	apiKey string
	http   *retryablehttp.Client
}

// NewClient builds a Client against the given API key. The retry
// policy (RetryMax = 10) matches the teacher's own use of
// retryablehttp in internal/tui/downloads.go.
func NewClient(apiKey string) *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 10
	c.Logger = nil
	return &Client{apiKey: apiKey, http: c}
}

// RangeQuery is the common shape of a cost/size/stream/batch request.
type RangeQuery struct {
	Dataset string
	Start   time.Time
	End     time.Time
	Symbols []string
	Schema  mbin.Schema
	SType   mbin.SType
}

func (q RangeQuery) urlValues() url.Values {
	v := url.Values{}
	v.Add("dataset", q.Dataset)
	v.Add("schema", schemaCode(q.Schema))
	v.Add("stype_in", stypeCode(q.SType))
	v.Add("start", q.Start.UTC().Format("2006-01-02"))
	v.Add("end", q.End.UTC().Format("2006-01-02"))
	v.Add("symbols", strings.Join(q.Symbols, ","))
	return v
}

func stypeCode(s mbin.SType) string {
	switch s {
	case mbin.SType_InstrumentId:
		return "instrument_id"
	case mbin.SType_RawSymbol:
		return "raw_symbol"
	case mbin.SType_Continuous:
		return "continuous"
	case mbin.SType_Parent:
		return "parent"
	default:
		return "raw_symbol"
	}
}

func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	u, err := url.Parse(baseURL + path)
	if err != nil {
		return nil, err
	}
	u.RawQuery = values.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, httpStatusError(resp.StatusCode, body)
	}
	return body, nil
}

// httpStatusError wraps a non-200 response, tagging the vendor's 422
// "unprocessable" response per SPEC_FULL §7's 422-as-warning handling:
// the update driver checks errors.Is(err, mbin.ErrVendor422) before
// deciding whether to treat the response as a soft skip.
func httpStatusError(status int, body []byte) error {
	if status == 422 {
		return fmt.Errorf("%w: HTTP 422 %s", mbin.ErrVendor422, string(body))
	}
	return fmt.Errorf("HTTP %d: %s", status, string(body))
}

// GetCost returns the estimated USD cost of q.
func (c *Client) GetCost(ctx context.Context, q RangeQuery) (float64, error) {
	body, err := c.get(ctx, "/metadata.get_cost", q.urlValues())
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
}

// GetBillableSize returns the estimated uncompressed size of q, in GB.
func (c *Client) GetBillableSize(ctx context.Context, q RangeQuery) (float64, error) {
	body, err := c.get(ctx, "/metadata.get_billable_size", q.urlValues())
	if err != nil {
		return 0, err
	}
	bytesSize, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(bytesSize) / 1e9, nil
}

// DownloadResult reports where a GetHistorical call landed its data
// and which code path (stream vs batch) was taken.
type DownloadResult struct {
	Mode     mbin.DownloadMode
	FilePath string
}

// GetHistorical checks cost/size, logs the estimate, asks prompt for
// approval, then downloads via stream (< 5 GB) or batch (>= 5 GB) into
// dirPath. Returns ErrUserCancelled if prompt declines. Grounded on
// original_source's client.rs::get_historical.
func (c *Client) GetHistorical(ctx context.Context, q RangeQuery, dirPath string, prompt Prompt) (*DownloadResult, error) {
	cost, err := c.GetCost(ctx, q)
	if err != nil {
		return nil, err
	}
	size, err := c.GetBillableSize(ctx, q)
	if err != nil {
		return nil, err
	}
	slog.Info("vendor download estimate", "symbols", q.Symbols, "estimate", humanizeEstimate(cost, size))
	if prompt == nil {
		prompt = AlwaysApprove
	}
	if !prompt(cost, size) {
		return nil, mbin.ErrUserCancelled
	}

	if size < batchSizeThresholdGB {
		path, err := c.fetchStreamToFile(ctx, q, dirPath)
		if err != nil {
			return nil, err
		}
		return &DownloadResult{Mode: mbin.DownloadMode_Stream, FilePath: path}, nil
	}
	path, err := c.fetchBatchToDir(ctx, q, dirPath)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{Mode: mbin.DownloadMode_Batch, FilePath: path}, nil
}

// humanizeEstimate formats a cost/size pair for the estimate
// GetHistorical logs before asking for approval, matching
// cmd/dbn-go-hist/main.go's use of go-humanize for byte counts.
func humanizeEstimate(costUSD, sizeGB float64) string {
	return fmt.Sprintf("$%.2f, %s", costUSD, humanize.Bytes(uint64(sizeGB*1e9)))
}

func (c *Client) fetchStreamToFile(ctx context.Context, q RangeQuery, dirPath string) (string, error) {
	name := FileName(q.Dataset, q.Schema, q.Start, q.End, q.Symbols, false)
	path := filepath.Join(dirPath, "databento", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if existing, ok := findExistingDownload(filepath.Dir(path), q); ok {
		return existing, nil
	}

	v := q.urlValues()
	v.Add("encoding", "dbn")
	v.Add("compression", "zstd")
	body, err := c.get(ctx, "/timeseries.get_range", v)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// findExistingDownload scans dir for a prior stream download matching
// q exactly, so GetHistorical is idempotent across resumed update
// runs. Grounded on ParseFileName's round-trip of FileName.
func findExistingDownload(dir string, q RangeQuery) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		parsed, err := ParseFileName(e.Name())
		if err != nil || parsed.Batch {
			continue
		}
		if parsed.DatasetCode != q.Dataset || parsed.Schema != q.Schema {
			continue
		}
		if !parsed.Start.Equal(q.Start) || !parsed.End.Equal(q.End) {
			continue
		}
		if !equalSymbols(parsed.Symbols, q.Symbols) {
			continue
		}
		return filepath.Join(dir, e.Name()), true
	}
	return "", false
}

func equalSymbols(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type batchJob struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type batchFileDesc struct {
	Filename string `json:"filename"`
}

// fetchBatchToDir submits a batch job, polls every second until Done,
// then downloads every shard into dirPath/databento/batch_<name>/.
// Polling cadence matches original_source's client.rs
// (tokio::time::sleep(Duration::from_secs(1))).
func (c *Client) fetchBatchToDir(ctx context.Context, q RangeQuery, dirPath string) (string, error) {
	name := FileName(q.Dataset, q.Schema, q.Start, q.End, q.Symbols, true)
	outDir := filepath.Join(dirPath, "databento", "batch_"+name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	v := q.urlValues()
	v.Add("encoding", "dbn")
	v.Add("compression", "zstd")
	body, err := c.get(ctx, "/batch.submit_job", v)
	if err != nil {
		return "", err
	}
	var job batchJob
	if err := json.Unmarshal(body, &job); err != nil {
		return "", err
	}

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		listBody, err := c.get(ctx, "/batch.list_jobs", url.Values{"states": {"done"}})
		if err != nil {
			return "", err
		}
		var jobs []batchJob
		if err := json.Unmarshal(listBody, &jobs); err != nil {
			return "", err
		}
		done := false
		for _, j := range jobs {
			if j.ID == job.ID {
				done = true
				break
			}
		}
		if done {
			break
		}
		time.Sleep(1 * time.Second)
	}

	filesBody, err := c.get(ctx, "/batch.list_files", url.Values{"job_id": {job.ID}})
	if err != nil {
		return "", err
	}
	var files []batchFileDesc
	if err := json.Unmarshal(filesBody, &files); err != nil {
		return "", err
	}
	for _, f := range files {
		shardBody, err := c.get(ctx, "/batch.download/"+job.ID+"/"+f.Filename, nil)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(outDir, f.Filename), shardBody, 0o644); err != nil {
			return "", err
		}
	}
	return outDir, nil
}
