package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// HTTPResult captures HTTP response details for test assertions
type HTTPResult struct {
	Code    int
	Error   error
	Headers http.Header
	Body    []byte
}

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// ContentTypeJSON returns a header for JSON content type
func ContentTypeJSON() Header {
	return Header{
		Key:   "Content-Type",
		Value: "application/json",
	}
}

// SessionToken returns the session token header
func SessionToken(token string) Header {
	return Header{
		Key:   "x-session-token",
		Value: token,
	}
}

// Origin returns an Origin header
func Origin(origin string) Header {
	return Header{
		Key:   "Origin",
		Value: origin,
	}
}

// ForwardedFor returns an X-Forwarded-For header, for exercising the
// per-IP rate limiters
func ForwardedFor(ip string) Header {
	return Header{
		Key:   "X-Forwarded-For",
		Value: ip,
	}
}

// ExpectStatus validates the HTTP status code and fails the test if it doesn't match
func ExpectStatus(
	t *testing.T,
	expected int,
	result HTTPResult,
) {
	t.Helper()
	if result.Error != nil {
		t.Fatalf("request error: %v", result.Error)
	}
	if result.Code != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, result.Code, string(result.Body))
	}
}

// Get performs a GET request and optionally decodes JSON response
func Get(
	router http.Handler,
	url string,
	response any,
	headers ...Header,
) HTTPResult {
	return do(router, http.MethodGet, url, "", response, headers...)
}

// Post performs a POST request and optionally decodes JSON response
func Post(
	router http.Handler,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	return do(router, http.MethodPost, url, body, response, headers...)
}

// Delete performs a DELETE request and optionally decodes JSON response
func Delete(
	router http.Handler,
	url string,
	response any,
	headers ...Header,
) HTTPResult {
	return do(router, http.MethodDelete, url, "", response, headers...)
}

// Options performs an OPTIONS request, for preflight assertions
func Options(
	router http.Handler,
	url string,
	headers ...Header,
) HTTPResult {
	return do(router, http.MethodOptions, url, "", nil, headers...)
}

func do(
	router http.Handler,
	method string,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, url, reader)
	res := httptest.NewRecorder()
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	router.ServeHTTP(res, req)

	if response != nil && res.Body.Len() > 0 {
		if err := json.Unmarshal(res.Body.Bytes(), response); err != nil {
			return HTTPResult{
				Code:    res.Code,
				Error:   fmt.Errorf("failed to decode JSON: %v\n%s", err, res.Body.String()),
				Headers: res.Header(),
				Body:    res.Body.Bytes(),
			}
		}
	}

	return HTTPResult{Code: res.Code, Headers: res.Header(), Body: res.Body.Bytes()}
}

// PostJSON performs a POST with JSON body
func PostJSON(
	router http.Handler,
	urlPath string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	return Post(router, urlPath, body, response, append(headers, ContentTypeJSON())...)
}
