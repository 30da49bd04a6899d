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

// Package gateway declares the contract between a policy and the host
// pipeline that executes it: the request object, the per-request execution
// context, the policy chain continuation and the streaming body interface.
package gateway

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// Well-known header names and values used across policies.
const (
	HeaderContentType      = "Content-Type"
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderSOAPAction       = "SOAPAction"

	MethodPost = "POST"
)

// Execution context attributes understood by the host pipeline.
const (
	// AttrRequestMethod overrides the method used when invoking the backend.
	AttrRequestMethod = "request.method"

	// AttrBodyContent holds a fully rendered request body. When set, the host
	// sends it to the backend instead of streaming the client body.
	AttrBodyContent = "request.body.content"
)

// Request is the capability set of an inbound request as seen by policies.
type Request interface {
	ID() string
	URI() string
	Path() string
	PathInfo() string
	Parameters() url.Values
	Headers() *Headers
	Method() string
	Version() string
	Timestamp() time.Time
	RemoteAddress() string
	LocalAddress() string

	// BodyHandler registers a callback receiving body chunks.
	BodyHandler(handler func(chunk []byte)) Request

	// EndHandler registers a callback invoked once the body is complete.
	EndHandler(handler func()) Request
}

// Response is the response placeholder handed to request-phase policies.
type Response interface {
	Status() int
	Headers() *Headers
}

// TemplateEngine renders templates against request-scoped variables.
// Implementations must not share variables between requests.
type TemplateEngine interface {
	SetVariable(name string, value any)
	Convert(template string) (string, error)
}

// ExecutionContext carries per-request state across pipeline stages. It is
// the only carrier of state between the header phase and the body phase.
type ExecutionContext interface {
	// Context returns the request's context.Context.
	Context() context.Context

	// Request returns the current request reference seen by later stages.
	Request() Request

	// SetRequest replaces the current request reference.
	SetRequest(req Request)

	Attribute(name string) (any, bool)
	SetAttribute(name string, value any)
	Attributes() map[string]any

	TemplateEngine() TemplateEngine

	// Logger returns the diagnostic sink for this request.
	Logger() *slog.Logger
}

// PolicyResult describes a policy failure reported to the pipeline.
type PolicyResult struct {
	StatusCode int
	Key        string
	Message    string
}

// PolicyChain is the continuation handed to a policy.
type PolicyChain interface {
	// Proceed continues the pipeline with the given request/response pair.
	Proceed(req Request, resp Response)

	// Fail aborts the request during the header phase.
	Fail(result PolicyResult)

	// StreamFailWith aborts the request while the body is being processed.
	StreamFailWith(result PolicyResult)
}

// ReadWriteStream is a body stream a policy can intercept. Chunks written to
// it are forwarded to the registered body handler; End signals completion.
type ReadWriteStream interface {
	Write(chunk []byte) ReadWriteStream
	End()
	BodyHandler(handler func(chunk []byte)) ReadWriteStream
	EndHandler(handler func()) ReadWriteStream
}

// RequestPolicy is implemented by policies acting on request metadata
// before any body bytes are available.
type RequestPolicy interface {
	OnRequest(req Request, resp Response, ctx ExecutionContext, chain PolicyChain)
}

// RequestContentPolicy is implemented by policies intercepting the request
// body. The returned stream receives the body chunks; whatever it emits
// replaces the original body.
type RequestContentPolicy interface {
	OnRequestContent(req Request, ctx ExecutionContext, chain PolicyChain) ReadWriteStream
}
