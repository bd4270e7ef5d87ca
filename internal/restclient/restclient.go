/*
Copyright 2026 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package restclient sends HTTP requests that follow redirects manually: every hop is sent
// to the new location with the same method, headers and body.
package restclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

var (
	logger = log.Log.WithName("")
)

// MaxRedirects is the number of redirects followed before a request fails.
const MaxRedirects = 5

// Request is an HTTP request with a replayable body.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewHTTPClient returns a copy of base, or of a pooled client if base is nil, that does not
// follow redirects by itself.
func NewHTTPClient(base *http.Client, timeout time.Duration) *http.Client {
	if base == nil {
		base = cleanhttp.DefaultPooledClient()
	}
	client := *base
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &client
}

// Do sends req and follows redirects. The original URL is never retried.
func Do(ctx context.Context, client *http.Client, req *Request) (*Response, error) {
	target := req.URL
	for hop := 0; ; hop++ {
		logger.V(1).Info("Sending request", "method", req.Method, "url", target, "hop", hop)
		resp, err := send(ctx, client, req, target)
		if err != nil {
			return nil, err
		}
		if !IsRedirect(resp.StatusCode) {
			return resp, nil
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return nil, fmt.Errorf("redirect from %s without location", target)
		}
		if hop >= MaxRedirects {
			return nil, fmt.Errorf("stopped after %d redirects", MaxRedirects)
		}
		next, err := resolveLocation(target, location)
		if err != nil {
			return nil, err
		}
		target = next
	}
}

func send(ctx context.Context, client *http.Client, req *Request, target string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s: %w", target, err)
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// IsRedirect reports whether statusCode is a redirect carrying a Location header.
func IsRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %s: %v", current, err)
	}
	next, err := base.Parse(location)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect location %s: %v", location, err)
	}
	return next.String(), nil
}
