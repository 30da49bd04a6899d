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

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
)

// Chain is the kernel's gateway.PolicyChain. It records how the policy
// continued or failed the request so the pipeline can act on it.
type Chain struct {
	logger *slog.Logger

	proceeded    int
	request      gateway.Request
	response     gateway.Response
	failure      *gateway.PolicyResult
	streamFailed bool
}

var _ gateway.PolicyChain = (*Chain)(nil)

// NewChain creates a chain that logs failures to logger.
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{logger: logger}
}

func (c *Chain) Proceed(req gateway.Request, resp gateway.Response) {
	c.proceeded++
	c.request = req
	c.response = resp
}

func (c *Chain) Fail(result gateway.PolicyResult) {
	c.logger.Debug("Policy chain failed", "statusCode", result.StatusCode, "key", result.Key)
	c.failure = &result
}

func (c *Chain) StreamFailWith(result gateway.PolicyResult) {
	c.logger.Debug("Policy chain failed while streaming body", "statusCode", result.StatusCode, "key", result.Key)
	c.failure = &result
	c.streamFailed = true
}

// ProceedCount returns how many times Proceed was called.
func (c *Chain) ProceedCount() int {
	return c.proceeded
}

// Request returns the request passed to the last Proceed call.
func (c *Chain) Request() gateway.Request {
	return c.request
}

// Response returns the response passed to the last Proceed call.
func (c *Chain) Response() gateway.Response {
	return c.response
}

// Failure returns the recorded failure, or nil.
func (c *Chain) Failure() *gateway.PolicyResult {
	return c.failure
}

// StreamFailed reports whether the failure happened during the body phase.
func (c *Chain) StreamFailed() bool {
	return c.streamFailed
}
