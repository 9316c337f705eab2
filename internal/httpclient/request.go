package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request builds and executes a single HTTP request.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetFormBody(form map[string]string) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with the drained body.
type Response struct {
	*http.Response
	body   []byte
	result any
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte { return r.body }

// String returns the response body as a string.
func (r *Response) String() string { return string(r.body) }

// IsError reports whether the status code indicates an error (>= 400).
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// IsSuccess reports whether the status code indicates success (< 400).
func (r *Response) IsSuccess() bool { return r.StatusCode < 400 }

// Result returns the decoded result, if SetResult was used.
func (r *Response) Result() any { return r.result }

type requestBuilder struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
	queryParams    map[string]string
	body           any
	formBody       map[string]string
	result         any
	errorHandler   ResponseErrorHandler
	signer         Signer
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

func (r *requestBuilder) Delete(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodDelete, path)
}

// SetBody sets the request body. Structs and maps are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

// SetFormBody sets an application/x-www-form-urlencoded body.
func (r *requestBuilder) SetFormBody(form map[string]string) Request {
	r.formBody = form
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.queryParams == nil {
		r.queryParams = make(map[string]string)
	}
	r.queryParams[key] = value
	return r
}

// SetResult sets the destination for JSON-decoding the response body.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) encodeBody() ([]byte, string, error) {
	if r.formBody != nil {
		form := url.Values{}
		for k, v := range r.formBody {
			form.Set(k, v)
		}
		return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
	}
	if r.body == nil {
		return nil, "", nil
	}
	switch b := r.body.(type) {
	case []byte:
		return b, "", nil
	case string:
		return []byte(b), "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request body: %w", err)
		}
		return data, "application/json", nil
	}
}

// encodeQuery renders query params deterministically (sorted by key) so that
// request signatures are stable.
func (r *requestBuilder) encodeQuery() string {
	if len(r.queryParams) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.queryParams))
	for k := range r.queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(r.queryParams[k]))
	}
	return strings.Join(parts, "&")
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	ctx, span := r.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", path),
			attribute.String("provider", r.providerName),
		),
	)
	defer span.End()

	fullURL := path
	if r.baseURL != "" && !strings.HasPrefix(path, "http") {
		fullURL = strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	rawQuery := r.encodeQuery()
	if rawQuery != "" {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL = fullURL + sep + rawQuery
	}

	bodyBytes, contentType, err := r.encodeBody()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode body")
		return nil, err
	}
	if contentType != "" {
		if _, ok := r.headers["Content-Type"]; !ok {
			r.SetHeader("Content-Type", contentType)
		}
	}

	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create request")
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	// Authentication headers depend on the final method/path/query/body.
	if r.signer != nil {
		for k, v := range r.signer(method, req.URL.Path, req.URL.RawQuery, bodyBytes) {
			req.Header.Set(k, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		r.count(ctx, false)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		r.count(ctx, false)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	response := &Response{Response: resp, body: body}

	if r.result != nil && len(body) > 0 && resp.StatusCode < 400 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
		} else {
			response.result = r.result
		}
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			r.count(ctx, false)
			span.SetStatus(codes.Error, handlerErr.Error())
			return response, handlerErr
		}
	}

	r.count(ctx, response.IsSuccess())
	return response, nil
}

func (r *requestBuilder) count(ctx context.Context, success bool) {
	if r.requestCounter == nil {
		return
	}
	r.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", r.providerName),
		attribute.Bool("success", success),
	))
}
