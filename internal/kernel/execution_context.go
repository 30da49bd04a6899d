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
	"context"
	"log/slog"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

// ExecutionContext manages the state of a single request through the
// policy chain. It is created when a request arrives and discarded when the
// request completes.
type ExecutionContext struct {
	ctx        context.Context
	request    gateway.Request
	attributes map[string]any
	engine     *template.Engine
	logger     *slog.Logger
}

var _ gateway.ExecutionContext = (*ExecutionContext)(nil)

// NewExecutionContext creates a request-scoped execution context. The
// template engine is fresh for every call so template variables never leak
// between requests.
func NewExecutionContext(ctx context.Context, req gateway.Request, compiler *template.Compiler, logger *slog.Logger) *ExecutionContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionContext{
		ctx:        ctx,
		request:    req,
		attributes: make(map[string]any),
		engine:     compiler.NewEngine(),
		logger:     logger.With("requestId", req.ID()),
	}
}

func (ec *ExecutionContext) Context() context.Context {
	return ec.ctx
}

func (ec *ExecutionContext) Request() gateway.Request {
	return ec.request
}

func (ec *ExecutionContext) SetRequest(req gateway.Request) {
	ec.request = req
}

func (ec *ExecutionContext) Attribute(name string) (any, bool) {
	v, ok := ec.attributes[name]
	return v, ok
}

func (ec *ExecutionContext) SetAttribute(name string, value any) {
	ec.attributes[name] = value
}

// Attributes returns a copy of the attribute bag.
func (ec *ExecutionContext) Attributes() map[string]any {
	result := make(map[string]any, len(ec.attributes))
	for k, v := range ec.attributes {
		result[k] = v
	}
	return result
}

func (ec *ExecutionContext) TemplateEngine() gateway.TemplateEngine {
	return ec.engine
}

// Engine returns the concrete request-scoped template engine.
func (ec *ExecutionContext) Engine() *template.Engine {
	return ec.engine
}

func (ec *ExecutionContext) Logger() *slog.Logger {
	return ec.logger
}
