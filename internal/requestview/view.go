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

// Package requestview provides a request decorator exposing adjusted routing
// metadata to downstream pipeline stages while the wrapped request keeps its
// original values.
package requestview

import (
	"net/url"
	"time"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
)

// View wraps a gateway.Request. Path info is always hidden; query parameters
// are hidden when hideQueryParams is set. Everything else is forwarded to
// the wrapped request unchanged.
type View struct {
	inner           gateway.Request
	hidePathInfo    bool
	hideQueryParams bool
}

var _ gateway.Request = (*View)(nil)

// New wraps inner. Path info is always hidden: SOAP endpoints are invoked at
// the backend root path rather than the original REST sub-path.
func New(inner gateway.Request, hideQueryParams bool) *View {
	return &View{
		inner:           inner,
		hidePathInfo:    true,
		hideQueryParams: hideQueryParams,
	}
}

// Unwrap returns the original request.
func (v *View) Unwrap() gateway.Request {
	return v.inner
}

// HidesQueryParams reports whether query parameters are hidden downstream.
func (v *View) HidesQueryParams() bool {
	return v.hideQueryParams
}

func (v *View) PathInfo() string {
	if v.hidePathInfo {
		return ""
	}
	return v.inner.PathInfo()
}

func (v *View) Parameters() url.Values {
	if v.hideQueryParams {
		return url.Values{}
	}
	return v.inner.Parameters()
}

func (v *View) ID() string                { return v.inner.ID() }
func (v *View) URI() string               { return v.inner.URI() }
func (v *View) Path() string              { return v.inner.Path() }
func (v *View) Headers() *gateway.Headers { return v.inner.Headers() }
func (v *View) Method() string            { return v.inner.Method() }
func (v *View) Version() string           { return v.inner.Version() }
func (v *View) Timestamp() time.Time      { return v.inner.Timestamp() }
func (v *View) RemoteAddress() string     { return v.inner.RemoteAddress() }
func (v *View) LocalAddress() string      { return v.inner.LocalAddress() }

// BodyHandler registers handler on the wrapped request and returns the view
// so chained calls keep observing the adjusted metadata.
func (v *View) BodyHandler(handler func(chunk []byte)) gateway.Request {
	v.inner.BodyHandler(handler)
	return v
}

// EndHandler registers handler on the wrapped request and returns the view.
func (v *View) EndHandler(handler func()) gateway.Request {
	v.inner.EndHandler(handler)
	return v
}
