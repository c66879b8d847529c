package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/jdstudio/internal/schemas"
	"github.com/jonathan/jdstudio/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for backend requests.
const DefaultUserAgent = "jdstudio/1.0"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Backend endpoints.
const (
	GeneratePath  = "/api/jd/generate"
	UploadPDFPath = "/api/jd/upload-pdf"
	LoginPath     = "/api/recruiter/login"
)

// UploadField is the multipart field the backend reads the PDF from.
const UploadField = "jdPdf"

// Options configures the client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client calls the job-description backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate asks the backend to write a job description for the form.
func (c *Client) Generate(ctx context.Context, token string, form *types.JobForm) (*types.JobDescription, error) {
	body, err := json.Marshal(form.GenerateRequest())
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	var envelope types.JDEnvelope
	if err := c.do(ctx, GeneratePath, token, bytes.NewReader(body), "application/json", schemas.JDResponse, &envelope); err != nil {
		return nil, err
	}
	return envelope.JD, nil
}

// UploadPDF sends a PDF to the backend, which extracts a job description from it.
// Files without a .pdf extension are rejected before any request is made.
func (c *Client) UploadPDF(ctx context.Context, token, filename string, r io.Reader) (*types.JobDescription, error) {
	if !HasPDFExtension(filename) {
		return nil, &PDFError{Path: filename, Message: "file must have a .pdf extension"}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadField, filepath.Base(filename)))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var envelope types.JDEnvelope
	if err := c.do(ctx, UploadPDFPath, token, &buf, mw.FormDataContentType(), schemas.JDResponse, &envelope); err != nil {
		return nil, err
	}
	return envelope.JD, nil
}

// Login signs a recruiter in and returns the session token.
func (c *Client) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	var resp types.LoginResponse
	if err := c.do(ctx, LoginPath, "", bytes.NewReader(body), "application/json", schemas.LoginResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do POSTs body to path, checks the status and validates the response
// against schema before decoding it into out.
func (c *Client) do(ctx context.Context, path, token string, body io.Reader, contentType, schema string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &APICallError{Endpoint: path, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APICallError{Endpoint: path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APICallError{Endpoint: path, Status: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APICallError{Endpoint: path, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if err := schemas.Validate(schema, data); err != nil {
		return &ParseError{Endpoint: path, Message: "unexpected response shape", Cause: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Endpoint: path, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// errorMessage extracts the backend's "message" (or "error") field,
// falling back to the status text.
func errorMessage(status int, data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(status)
}
