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
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

// Result is the outcome of running a request through a policy.
type Result struct {
	// Method is the method the backend is invoked with.
	Method string

	// Request is the request reference installed in the execution context
	// when the request phase completed.
	Request gateway.Request

	// Headers are the outbound request headers.
	Headers *gateway.Headers

	// Body is the outbound body. BodyReplaced reports whether the policy
	// produced it rather than the client.
	Body         []byte
	BodyReplaced bool

	// Failure is set when the policy aborted the request; no body is sent.
	Failure *gateway.PolicyResult

	Attributes map[string]any
}

// Pipeline drives a request through the header phase and the body phase of
// a policy, the way the gateway does for a single route.
type Pipeline struct {
	compiler *template.Compiler
	logger   *slog.Logger
}

// NewPipeline creates a pipeline whose execution contexts share compiler.
func NewPipeline(compiler *template.Compiler, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{compiler: compiler, logger: logger}
}

// Execute runs pol against req and delivers chunks as the request body.
// When pol also implements gateway.RequestContentPolicy its stream sees the
// body and whatever it emits replaces it.
func (p *Pipeline) Execute(ctx context.Context, pol gateway.RequestPolicy, req *Request, chunks ...[]byte) *Result {
	execCtx := NewExecutionContext(ctx, req, p.compiler, p.logger)
	chain := NewChain(execCtx.Logger())

	pol.OnRequest(req, NewResponse(), execCtx, chain)
	if failure := chain.Failure(); failure != nil {
		return &Result{Failure: failure, Attributes: execCtx.Attributes()}
	}
	if chain.ProceedCount() == 0 {
		execCtx.Logger().Error("Policy did not continue the request chain")
		return &Result{
			Failure: &gateway.PolicyResult{
				StatusCode: http.StatusInternalServerError,
				Message:    "policy did not continue the request chain",
			},
			Attributes: execCtx.Attributes(),
		}
	}

	result := &Result{
		Method:  req.Method(),
		Request: execCtx.Request(),
		Headers: req.Headers(),
	}
	if method, ok := execCtx.Attribute(gateway.AttrRequestMethod); ok {
		if m, ok := method.(string); ok && m != "" {
			result.Method = m
		}
	}

	if rendered, ok := execCtx.Attribute(gateway.AttrBodyContent); ok {
		if body, ok := rendered.(string); ok {
			result.Body = []byte(body)
			result.BodyReplaced = true
			result.Attributes = execCtx.Attributes()
			return result
		}
	}

	contentPolicy, ok := pol.(gateway.RequestContentPolicy)
	if !ok {
		result.Body = bytes.Join(chunks, nil)
		result.Attributes = execCtx.Attributes()
		return result
	}

	var out bytes.Buffer
	stream := contentPolicy.OnRequestContent(execCtx.Request(), execCtx, chain)
	stream.BodyHandler(func(chunk []byte) { out.Write(chunk) })

	req.BodyHandler(func(chunk []byte) { stream.Write(chunk) })
	req.EndHandler(stream.End)
	req.Deliver(chunks...)

	result.Attributes = execCtx.Attributes()
	if failure := chain.Failure(); failure != nil {
		return &Result{Failure: failure, Attributes: result.Attributes}
	}

	result.Body = out.Bytes()
	result.BodyReplaced = true
	return result
}
