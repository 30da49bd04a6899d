/*
 * Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package kernel

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
)

// Request is the kernel's in-memory gateway.Request. Body chunks are pushed
// to registered handlers through Deliver.
type Request struct {
	id            string
	uri           string
	path          string
	pathInfo      string
	params        url.Values
	headers       *gateway.Headers
	method        string
	version       string
	timestamp     time.Time
	remoteAddress string
	localAddress  string

	bodyHandlers []func(chunk []byte)
	endHandlers  []func()
}

var _ gateway.Request = (*Request)(nil)

// RequestOption customises a Request built by NewRequest.
type RequestOption func(*Request)

// WithID sets the request id. By default a random UUID is used.
func WithID(id string) RequestOption {
	return func(r *Request) { r.id = id }
}

// WithContextPath sets the API context path; path info is the remainder of
// the request path after it.
func WithContextPath(contextPath string) RequestOption {
	return func(r *Request) {
		contextPath = strings.TrimSuffix(contextPath, "/")
		if contextPath != "" && strings.HasPrefix(r.path, contextPath) {
			r.pathInfo = strings.TrimPrefix(r.path, contextPath)
		}
	}
}

// WithAddresses sets the remote and local addresses.
func WithAddresses(remote, local string) RequestOption {
	return func(r *Request) {
		r.remoteAddress = remote
		r.localAddress = local
	}
}

// WithVersion sets the HTTP protocol version. Defaults to HTTP/1.1.
func WithVersion(version string) RequestOption {
	return func(r *Request) { r.version = version }
}

// WithTimestamp sets the request timestamp. Defaults to time.Now.
func WithTimestamp(ts time.Time) RequestOption {
	return func(r *Request) { r.timestamp = ts }
}

// NewRequest builds a request from a method, a request URI (path plus
// optional query) and headers.
func NewRequest(method, requestURI string, headers map[string][]string, opts ...RequestOption) *Request {
	path, rawQuery, _ := strings.Cut(requestURI, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		slog.Debug("Ignoring malformed query parameters", "query", rawQuery, "error", err)
	}

	r := &Request{
		id:        uuid.New().String(),
		uri:       requestURI,
		path:      path,
		pathInfo:  path,
		params:    params,
		headers:   gateway.NewHeaders(headers),
		method:    strings.ToUpper(method),
		version:   "HTTP/1.1",
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Request) ID() string                { return r.id }
func (r *Request) URI() string               { return r.uri }
func (r *Request) Path() string              { return r.path }
func (r *Request) PathInfo() string          { return r.pathInfo }
func (r *Request) Parameters() url.Values    { return r.params }
func (r *Request) Headers() *gateway.Headers { return r.headers }
func (r *Request) Method() string            { return r.method }
func (r *Request) Version() string           { return r.version }
func (r *Request) Timestamp() time.Time      { return r.timestamp }
func (r *Request) RemoteAddress() string     { return r.remoteAddress }
func (r *Request) LocalAddress() string      { return r.localAddress }

func (r *Request) BodyHandler(handler func(chunk []byte)) gateway.Request {
	r.bodyHandlers = append(r.bodyHandlers, handler)
	return r
}

func (r *Request) EndHandler(handler func()) gateway.Request {
	r.endHandlers = append(r.endHandlers, handler)
	return r
}

// Deliver pushes every chunk to the body handlers, then signals the end of
// the body.
func (r *Request) Deliver(chunks ...[]byte) {
	for _, chunk := range chunks {
		for _, h := range r.bodyHandlers {
			h(chunk)
		}
	}
	for _, h := range r.endHandlers {
		h()
	}
}

// Response is the kernel's in-memory gateway.Response.
type Response struct {
	status  int
	headers *gateway.Headers
}

var _ gateway.Response = (*Response)(nil)

// NewResponse creates an empty 200 response placeholder.
func NewResponse() *Response {
	return &Response{status: 200, headers: gateway.NewHeaders(nil)}
}

func (r *Response) Status() int               { return r.status }
func (r *Response) Headers() *gateway.Headers { return r.headers }
