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

// Package webhdfs is a client of the four WebHDFS operations used to provision jobs.
package webhdfs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/job-submitter/internal/restclient"
)

var (
	logger = log.Log.WithName("")
)

// Operation codes.
const (
	OpListStatus = "LISTSTATUS"
	OpMkdirs     = "MKDIRS"
	OpCreate     = "CREATE"
	OpOpen       = "OPEN"
)

const apiPrefix = "/webhdfs/v1"

// Options configures a Client.
type Options struct {
	// URI is the address of the namenode HTTP server, e.g. http://namenode:50070.
	URI string
	// User is sent as the user.name of every request.
	User    string
	Timeout time.Duration
	// QPS limits the request rate. Zero or less means unlimited.
	QPS   float64
	Burst int
	// HTTPClient overrides the HTTP client. Its redirect policy is replaced.
	HTTPClient *http.Client
}

// Client is a WebHDFS client. Redirects are followed with the same method and body.
type Client struct {
	baseURL    *url.URL
	user       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// File types of a FileStatus.
const (
	FileTypeFile      = "FILE"
	FileTypeDirectory = "DIRECTORY"
)

// FileStatus is the status of a file or directory.
type FileStatus struct {
	PathSuffix       string `json:"pathSuffix"`
	Type             string `json:"type"`
	Length           int64  `json:"length"`
	Owner            string `json:"owner"`
	Group            string `json:"group"`
	Permission       string `json:"permission"`
	ModificationTime int64  `json:"modificationTime"`
	AccessTime       int64  `json:"accessTime"`
	Replication      int32  `json:"replication"`
	BlockSize        int64  `json:"blockSize"`
}

type fileStatusesResponse struct {
	FileStatuses struct {
		FileStatus []FileStatus `json:"FileStatus"`
	} `json:"FileStatuses"`
}

type booleanResponse struct {
	Boolean bool `json:"boolean"`
}

func NewClient(options Options) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(options.URI, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse webhdfs uri %s: %v", options.URI, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid webhdfs uri %s", options.URI)
	}

	limit := rate.Inf
	if options.QPS > 0 {
		limit = rate.Limit(options.QPS)
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    baseURL,
		user:       options.User,
		httpClient: restclient.NewHTTPClient(options.HTTPClient, options.Timeout),
		limiter:    rate.NewLimiter(limit, burst),
	}, nil
}

// ListStatus lists the entries of the directory p.
func (c *Client) ListStatus(ctx context.Context, p string) ([]FileStatus, error) {
	body, err := c.do(ctx, http.MethodGet, OpListStatus, p, nil, nil)
	if err != nil {
		return nil, err
	}
	var resp fileStatusesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response of %s: %v", OpListStatus, p, err)
	}
	return resp.FileStatuses.FileStatus, nil
}

// Mkdirs creates the directory p and its parents. Existing directories are not an error.
func (c *Client) Mkdirs(ctx context.Context, p string) error {
	body, err := c.do(ctx, http.MethodPut, OpMkdirs, p, nil, nil)
	if err != nil {
		return err
	}
	var resp booleanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode %s response of %s: %v", OpMkdirs, p, err)
	}
	if !resp.Boolean {
		return fmt.Errorf("failed to create directory %s", p)
	}
	return nil
}

// Create writes data to the file p, overwriting it if it exists.
func (c *Client) Create(ctx context.Context, p string, data []byte) error {
	_, err := c.do(ctx, http.MethodPut, OpCreate, p, url.Values{"overwrite": []string{"true"}}, data)
	return err
}

// Open reads the file p.
func (c *Client) Open(ctx context.Context, p string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, OpOpen, p, nil, nil)
}

func (c *Client) operationURL(op, p string, params url.Values) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, apiPrefix, path.Clean("/"+p))
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("op", op)
	if c.user != "" {
		query.Set("user.name", c.user)
	}
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, op, p string, params url.Values, data []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &restclient.Request{Method: method, URL: c.operationURL(op, p, params), Body: data}
	if data != nil {
		req.Header = http.Header{"Content-Type": []string{"application/octet-stream"}}
	}
	logger.V(1).Info("Sending WebHDFS request", "op", op, "path", p)
	resp, err := restclient.Do(ctx, c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", op, p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to %s %s: %w", op, p, decodeRemoteError(resp.StatusCode, resp.Body))
	}
	return resp.Body, nil
}

func decodeRemoteError(statusCode int, body []byte) *RemoteError {
	var resp remoteExceptionResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.RemoteException != nil {
		resp.RemoteException.StatusCode = statusCode
		return resp.RemoteException
	}
	return &RemoteError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}
