package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// FormField is one plain key/value pair submitted as part of a
// multipart/form-data body.
type FormField struct {
	Key   string
	Value string
}

// FormFile is one file part submitted as part of a multipart/form-data
// body. Data is read once by the caller (engine.TestConfig.Validate) and
// cached, so Build never touches the filesystem.
type FormFile struct {
	Key      string
	Filename string
	Data     []byte
}

// BuilderConfig carries everything RequestBuilder needs to assemble a
// request, resolved ahead of time by the engine so Build itself never
// fails on missing files or bad paths mid-run.
type BuilderConfig struct {
	Method      string
	Headers     http.Header
	ContentType string
	Body        []byte
	HasBasicAuth bool
	BasicAuthUser string
	BasicAuthPass string
	Host        string
	FormFields  []FormField
	FormFiles   []FormFile
}

// RequestBuilder assembles *http.Request values for one configured
// request shape. A single RequestBuilder is shared read-only across every
// Worker goroutine in a run; Build must not mutate builder state.
type RequestBuilder struct {
	method        string
	headers       http.Header
	body          []byte
	contentType   string
	hasBasicAuth  bool
	basicAuthUser string
	basicAuthPass string
	host          string
	formFields    []FormField
	formFiles     []FormFile
	multipart     bool
}

// NewRequestBuilder validates and freezes a BuilderConfig into a
// RequestBuilder. Header keys are canonicalized up front so Build never
// has to repeat validation per request.
func NewRequestBuilder(cfg BuilderConfig) (*RequestBuilder, error) {
	method := strings.TrimSpace(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	headers := http.Header{}
	for key, values := range cfg.Headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(key, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		for _, val := range values {
			if strings.ContainsAny(val, "\r\n") {
				return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
			}
			headers.Add(canonicalKey, val)
		}
	}

	return &RequestBuilder{
		method:        method,
		headers:       headers,
		body:          cfg.Body,
		contentType:   cfg.ContentType,
		hasBasicAuth:  cfg.HasBasicAuth,
		basicAuthUser: cfg.BasicAuthUser,
		basicAuthPass: cfg.BasicAuthPass,
		host:          strings.TrimSpace(cfg.Host),
		formFields:    cfg.FormFields,
		formFiles:     cfg.FormFiles,
		multipart:     len(cfg.FormFields) > 0 || len(cfg.FormFiles) > 0,
	}, nil
}

// Build assembles one *http.Request bound to the given target URL. It
// never touches the filesystem or blocks on I/O beyond an in-memory
// buffer write, so it is safe to call from the hot path of every Worker.
func (b *RequestBuilder) Build(ctx context.Context, target string) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, contentType, err := b.encodeBody()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, b.method, target, reader)
	if err != nil {
		return nil, err
	}

	req.Header = b.headers.Clone()
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.host != "" {
		req.Host = b.host
	}
	if b.hasBasicAuth {
		req.SetBasicAuth(b.basicAuthUser, b.basicAuthPass)
	}
	if body != nil {
		length := int64(len(body))
		req.ContentLength = length
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	return req, nil
}

// encodeBody returns the request body bytes and the Content-Type header
// that should accompany them. Multipart form bodies take precedence over
// a raw Body, matching spec.md §3's "form fields/files imply
// multipart/form-data" rule.
func (b *RequestBuilder) encodeBody() ([]byte, string, error) {
	if !b.multipart {
		if len(b.body) == 0 {
			return nil, b.contentType, nil
		}
		return b.body, b.contentType, nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range b.formFields {
		if err := writer.WriteField(field.Key, field.Value); err != nil {
			return nil, "", fmt.Errorf("encode form field %q: %w", field.Key, err)
		}
	}
	for _, file := range b.formFiles {
		part, err := writer.CreateFormFile(file.Key, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", file.Key, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write form file %q: %w", file.Key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
