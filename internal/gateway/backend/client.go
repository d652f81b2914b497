package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"ballooner/internal/logger"
	"ballooner/internal/pkg/circuit"
	"ballooner/internal/pkg/jsonutil"
	"ballooner/internal/pkg/text"
	"ballooner/internal/types"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

const (
	PathLabelValue  = "/get-value-for-label"
	PathAnalyzeCrop = "/analyze-gdt-crop"

	fieldSourceFile = "sourceFile"
	fieldLabel      = "label"
	fieldImageCrop  = "image_crop"

	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 8 << 20
)

// Options configures a Client. GDTURL falls back to BaseURL when empty.
// BreakerThreshold <= 0 disables fail-fast on repeated backend failures.
type Options struct {
	BaseURL          string
	GDTURL           string
	Timeout          time.Duration
	HTTPClient       *http.Client
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Client talks to the external interpretation backend. Both endpoints share
// one configuration; base URLs can be swapped at runtime by a config reload.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	gdtURL  string

	httpc       *http.Client
	labelSchema *jsonschema.Schema
	breakers    map[string]*circuit.Breaker
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("backend client requires a base url")
	}
	schema, err := compileSchema("label_value.json", labelValueSchema)
	if err != nil {
		return nil, fmt.Errorf("compile label schema: %w", err)
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}
	c := &Client{
		httpc:       httpc,
		labelSchema: schema,
		breakers: map[string]*circuit.Breaker{
			PathLabelValue:  circuit.New("backend"+PathLabelValue, opts.BreakerThreshold, opts.BreakerCooldown),
			PathAnalyzeCrop: circuit.New("backend"+PathAnalyzeCrop, opts.BreakerThreshold, opts.BreakerCooldown),
		},
	}
	c.SetEndpoints(opts.BaseURL, opts.GDTURL)
	return c, nil
}

// SetEndpoints replaces the base URLs used for subsequent requests.
func (c *Client) SetEndpoints(baseURL, gdtURL string) {
	baseURL = normalizeBase(baseURL)
	gdtURL = normalizeBase(gdtURL)
	if gdtURL == "" {
		gdtURL = baseURL
	}
	c.mu.Lock()
	c.baseURL = baseURL
	c.gdtURL = gdtURL
	c.mu.Unlock()
}

func (c *Client) endpoints() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.gdtURL
}

// GetValueForLabel uploads the source document with a label and returns the
// parameter/value pair the backend resolved.
func (c *Client) GetValueForLabel(ctx context.Context, src types.SourceFile, label string) (types.LabelValue, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return types.LabelValue{}, fmt.Errorf("label cannot be empty")
	}
	base, _ := c.endpoints()
	name := src.Name
	if name == "" {
		name = "source"
	}
	body, err := c.post(ctx, base, PathLabelValue,
		map[string]string{fieldLabel: label},
		[]filePart{{field: fieldSourceFile, name: name, data: src.Data}},
	)
	if err != nil {
		return types.LabelValue{}, err
	}
	obj, ok := jsonutil.ExtractObject(string(body))
	if !ok {
		return types.LabelValue{}, fmt.Errorf("%w: %s", ErrMalformedResponse, text.Truncate(string(body), 120))
	}
	return parseLabelValue(c.labelSchema, obj, label)
}

// AnalyzeGdtCrop uploads a PNG crop and returns the raw JSON analysis.
func (c *Client) AnalyzeGdtCrop(ctx context.Context, png []byte) ([]byte, error) {
	if len(png) == 0 {
		return nil, fmt.Errorf("image crop is empty")
	}
	_, gdt := c.endpoints()
	body, err := c.post(ctx, gdt, PathAnalyzeCrop, nil,
		[]filePart{{field: fieldImageCrop, name: "crop.png", data: png}},
	)
	if err != nil {
		return nil, err
	}
	obj, ok := jsonutil.ExtractObject(string(body))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, text.Truncate(string(body), 120))
	}
	return []byte(obj), nil
}

type filePart struct {
	field string
	name  string
	data  []byte
}

// post sends one multipart request. Transport errors and 5xx replies count
// against the endpoint's breaker; any other reply resets it.
func (c *Client) post(ctx context.Context, base, path string, fields map[string]string, files []filePart) ([]byte, error) {
	url := base + path
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	sizes := make(map[string]int, len(files))
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		sizes[f.field] = len(f.data)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	breaker := c.breakers[path]
	if err := breaker.Allow(); err != nil {
		return nil, fmt.Errorf("%w: %s is failing, try again shortly", ErrUnavailable, path)
	}
	logger.Debugf("[backend] POST %s request_id=%s", url, reqID)
	logger.LogBackendRequest(url, reqID, fields, sizes)
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			breaker.Cancel()
		} else {
			breaker.RecordFailure()
		}
		logger.Warnf("[backend] POST %s request_id=%s failed: %v", url, reqID, err)
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		breaker.RecordFailure()
	} else {
		breaker.RecordSuccess()
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	logger.LogBackendResponse(url, reqID, resp.StatusCode, string(body))
	logger.Debugf("[backend] POST %s request_id=%s status=%d dur=%s", url, reqID, resp.StatusCode, time.Since(start))

	if resp.StatusCode/100 != 2 {
		msg := ""
		if gjson.ValidBytes(body) {
			msg = strings.TrimSpace(gjson.GetBytes(body, "error").String())
		}
		return nil, &Error{Endpoint: url, Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func normalizeBase(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
