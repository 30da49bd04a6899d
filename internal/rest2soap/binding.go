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

package rest2soap

import (
	"net/http"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
)

// VariableRequest is the template variable exposing the request.
const VariableRequest = "request"

// newBinding builds the value bound to the request variable. It is built
// fresh for every evaluation and never shared between requests. Headers and
// query parameters are exposed by their first value. Header names are bound
// both lower-cased and in canonical form.
func newBinding(req gateway.Request) map[string]any {
	headers := make(map[string]string, req.Headers().Len())
	req.Headers().Iterate(func(name string, values []string) {
		if len(values) > 0 {
			headers[name] = values[0]
			headers[http.CanonicalHeaderKey(name)] = values[0]
		}
	})

	params := make(map[string]string, len(req.Parameters()))
	for name, values := range req.Parameters() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	return map[string]any{
		"id":            req.ID(),
		"uri":           req.URI(),
		"path":          req.Path(),
		"pathInfo":      req.PathInfo(),
		"method":        req.Method(),
		"version":       req.Version(),
		"timestamp":     req.Timestamp(),
		"remoteAddress": req.RemoteAddress(),
		"localAddress":  req.LocalAddress(),
		"headers":       headers,
		"params":        params,
	}
}

// newContentBinding is newBinding plus the raw body text as content.
func newContentBinding(req gateway.Request, content string) map[string]any {
	binding := newBinding(req)
	binding["content"] = content
	return binding
}
