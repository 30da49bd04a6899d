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

package requestview_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/kernel"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/requestview"
)

func TestView_PathInfoIsEmpty(t *testing.T) {
	inner := kernel.NewRequest("GET", "/api/orders/42", nil, kernel.WithContextPath("/api"))
	assert.Equal(t, "/orders/42", inner.PathInfo())

	for _, hide := range []bool{true, false} {
		view := requestview.New(inner, hide)
		assert.Equal(t, "", view.PathInfo())
	}
}

func TestView_Parameters(t *testing.T) {
	inner := kernel.NewRequest("GET", "/api?a=1&b=2", nil)

	hidden := requestview.New(inner, true)
	assert.True(t, hidden.HidesQueryParams())
	assert.Equal(t, url.Values{}, hidden.Parameters())
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"2"}}, inner.Parameters(), "inner request is untouched")

	preserved := requestview.New(inner, false)
	assert.False(t, preserved.HidesQueryParams())
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"2"}}, preserved.Parameters())
}

func TestView_Delegates(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	inner := kernel.NewRequest("get", "/api/x?y=1", map[string][]string{"X-Trace": {"abc"}},
		kernel.WithID("req-1"),
		kernel.WithAddresses("10.0.0.1", "10.0.0.2"),
		kernel.WithVersion("HTTP/2.0"),
		kernel.WithTimestamp(ts),
	)
	view := requestview.New(inner, true)

	assert.Equal(t, "req-1", view.ID())
	assert.Equal(t, "/api/x?y=1", view.URI())
	assert.Equal(t, "/api/x", view.Path())
	assert.Equal(t, "GET", view.Method())
	assert.Equal(t, "HTTP/2.0", view.Version())
	assert.Equal(t, ts, view.Timestamp())
	assert.Equal(t, "10.0.0.1", view.RemoteAddress())
	assert.Equal(t, "10.0.0.2", view.LocalAddress())
	assert.Same(t, inner.Headers(), view.Headers())
	assert.Same(t, inner, view.Unwrap())
}

func TestView_HandlersRegisterOnInner(t *testing.T) {
	inner := kernel.NewRequest("POST", "/api", nil)
	view := requestview.New(inner, true)

	var body []byte
	ended := false
	ret := view.BodyHandler(func(chunk []byte) { body = append(body, chunk...) }).
		EndHandler(func() { ended = true })

	assert.Same(t, view, ret)

	inner.Deliver([]byte("ab"), []byte("cd"))
	assert.Equal(t, "abcd", string(body))
	assert.True(t, ended)
}
