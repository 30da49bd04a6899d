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
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/beevik/etree"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/config"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/kernel"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/metrics"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/requestview"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

const soapEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:web="http://www.oorsprong.org/websamples.countryinfo">` +
	`<soapenv:Header/><soapenv:Body><web:ListOfLanguagesByName/>` +
	`<web:Payload>${request.content}</web:Payload></soapenv:Body></soapenv:Envelope>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCompiler(t *testing.T) *template.Compiler {
	t.Helper()
	compiler, err := template.NewCompiler()
	require.NoError(t, err)
	return compiler
}

func newTestPolicy(t *testing.T, compiler *template.Compiler, cfg *config.Configuration) gateway.RequestPolicy {
	t.Helper()
	if cfg.Mode == "" {
		cfg.Mode = config.ModeStream
	}
	pol, err := NewPolicy(cfg, compiler)
	require.NoError(t, err)
	return pol
}

func newTestRequest(method, uri string) *kernel.Request {
	return kernel.NewRequest(method, uri, map[string][]string{
		"Content-Type":      {"application/json"},
		"Transfer-Encoding": {"chunked"},
	}, kernel.WithContextPath("/countries"))
}

func run(t *testing.T, cfg *config.Configuration, req *kernel.Request, chunks ...string) *kernel.Result {
	t.Helper()
	compiler := newCompiler(t)
	pol := newTestPolicy(t, compiler, cfg)
	pipeline := kernel.NewPipeline(compiler, discardLogger())

	body := make([][]byte, 0, len(chunks))
	for _, c := range chunks {
		body = append(body, []byte(c))
	}
	return pipeline.Execute(context.Background(), pol, req, body...)
}

func TestOnRequest_ForcesPost(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			result := run(t, &config.Configuration{Envelope: "<env/>"}, newTestRequest(method, "/countries/list"))

			require.Nil(t, result.Failure)
			assert.Equal(t, http.MethodPost, result.Method)
			assert.Equal(t, gateway.MethodPost, result.Attributes[gateway.AttrRequestMethod])
		})
	}
}

func TestOnRequest_SOAPAction(t *testing.T) {
	tests := []struct {
		name       string
		soapAction string
		want       []string
	}{
		{name: "configured", soapAction: "urn:listLanguages", want: []string{"urn:listLanguages"}},
		{name: "not configured", soapAction: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Configuration{Envelope: "<env/>", SOAPAction: tt.soapAction}
			result := run(t, cfg, newTestRequest(http.MethodGet, "/countries/list"))

			require.Nil(t, result.Failure)
			assert.Equal(t, tt.want, result.Headers.Get("SOAPAction"))
		})
	}
}

func TestOnRequest_ProceedsOnceWithView(t *testing.T) {
	compiler := newCompiler(t)
	pol := newTestPolicy(t, compiler, &config.Configuration{Envelope: "<env/>"})

	req := newTestRequest(http.MethodGet, "/countries/list?a=1")
	execCtx := kernel.NewExecutionContext(context.Background(), req, compiler, discardLogger())
	chain := kernel.NewChain(discardLogger())

	resp := kernel.NewResponse()
	pol.OnRequest(req, resp, execCtx, chain)

	assert.Equal(t, 1, chain.ProceedCount())
	assert.Same(t, resp, chain.Response())
	assert.Nil(t, chain.Failure())

	view, ok := chain.Request().(*requestview.View)
	require.True(t, ok, "chain must continue with the request view")
	assert.Same(t, req, view.Unwrap())
	assert.Same(t, view, execCtx.Request(), "view must be installed into the execution context")
}

func TestOnRequest_QueryParameters(t *testing.T) {
	tests := []struct {
		name     string
		preserve bool
		want     url.Values
	}{
		{name: "hidden by default", preserve: false, want: url.Values{}},
		{name: "preserved", preserve: true, want: url.Values{"a": {"1"}, "b": {"2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Configuration{Envelope: "<env/>", PreserveQueryParams: tt.preserve}
			result := run(t, cfg, newTestRequest(http.MethodGet, "/countries/list?a=1&b=2"))

			require.Nil(t, result.Failure)
			assert.Equal(t, tt.want, result.Request.Parameters())
		})
	}
}

func TestOnRequest_PathInfoIsAlwaysEmpty(t *testing.T) {
	req := newTestRequest(http.MethodGet, "/countries/by/name/France")
	require.Equal(t, "/by/name/France", req.PathInfo())

	result := run(t, &config.Configuration{Envelope: "<env/>"}, req)

	require.Nil(t, result.Failure)
	assert.Equal(t, "", result.Request.PathInfo())
	assert.Equal(t, "/countries/by/name/France", result.Request.Path())
}

func TestOnRequestContent_RendersBody(t *testing.T) {
	cfg := &config.Configuration{Envelope: "<env>${request.content}</env>"}

	result := run(t, cfg, newTestRequest(http.MethodPost, "/countries"), "hel", "lo")

	require.Nil(t, result.Failure)
	assert.True(t, result.BodyReplaced)
	assert.Equal(t, "<env>hello</env>", string(result.Body))
}

func TestOnRequestContent_EmptyBody(t *testing.T) {
	cfg := &config.Configuration{Envelope: "<env>${request.content}</env>"}

	result := run(t, cfg, newTestRequest(http.MethodPost, "/countries"))

	require.Nil(t, result.Failure)
	assert.Equal(t, "<env></env>", string(result.Body))
}

func TestOnRequestContent_EmptyEnvelopeIsNotFailure(t *testing.T) {
	result := run(t, &config.Configuration{Envelope: ""}, newTestRequest(http.MethodPost, "/countries"), `{"a":1}`)

	require.Nil(t, result.Failure)
	assert.True(t, result.BodyReplaced)
	assert.Empty(t, result.Body)
	assert.Equal(t, "0", result.Headers.First("Content-Length"))
}

func TestOnRequestContent_TemplateSeesRequestMetadata(t *testing.T) {
	cfg := &config.Configuration{
		Envelope: `<q id="${request.params.id}" type="${request.headers['content-type']}" m="${request.method}">${request.pathInfo}</q>`,
	}

	result := run(t, cfg, newTestRequest(http.MethodGet, "/countries/by/code?id=FR"), "{}")

	require.Nil(t, result.Failure)
	assert.Equal(t, `<q id="FR" type="application/json" m="GET">/by/code</q>`, string(result.Body),
		"query parameters and path info hidden from the backend stay visible to the template")
	assert.Equal(t, url.Values{}, result.Request.Parameters())
}

func TestOnRequestContent_HeaderNamesAnyCase(t *testing.T) {
	cfg := &config.Configuration{
		Envelope: `<h a="${request.headers['Content-Type']}" b="${request.headers['content-type']}" c="${request.headers['X-Country-Code']}"/>`,
	}
	req := kernel.NewRequest(http.MethodGet, "/countries", map[string][]string{
		"Content-Type":   {"application/json"},
		"x-country-code": {"FR"},
	})

	result := run(t, cfg, req, "{}")

	require.Nil(t, result.Failure)
	assert.Equal(t, `<h a="application/json" b="application/json" c="FR"/>`, string(result.Body))
}

func TestOnRequestContent_UnresolvedTemplateFails(t *testing.T) {
	before := testutil.ToFloat64(metrics.TransformationsTotal.WithLabelValues(metrics.VariantStream, metrics.OutcomeFailure))

	cfg := &config.Configuration{Envelope: "<env>${request.undefinedVar}</env>"}
	result := run(t, cfg, newTestRequest(http.MethodPost, "/countries"), "hello")

	require.NotNil(t, result.Failure)
	assert.Equal(t, http.StatusInternalServerError, result.Failure.StatusCode)
	assert.Equal(t, ErrorKeyTemplate, result.Failure.Key)
	assert.Contains(t, result.Failure.Message, "request.undefinedVar")
	assert.Nil(t, result.Body)
	assert.False(t, result.BodyReplaced)

	after := testutil.ToFloat64(metrics.TransformationsTotal.WithLabelValues(metrics.VariantStream, metrics.OutcomeFailure))
	assert.Equal(t, before+1, after)
}

func TestOnRequestContent_StreamFailure(t *testing.T) {
	compiler := newCompiler(t)
	pol, err := New(&config.Configuration{Envelope: "${missing}"}, compiler)
	require.NoError(t, err)

	req := newTestRequest(http.MethodPost, "/countries")
	execCtx := kernel.NewExecutionContext(context.Background(), req, compiler, discardLogger())
	chain := kernel.NewChain(discardLogger())

	var emitted [][]byte
	ended := false
	s := pol.OnRequestContent(req, execCtx, chain)
	s.BodyHandler(func(chunk []byte) { emitted = append(emitted, chunk) })
	s.EndHandler(func() { ended = true })

	s.Write([]byte("payload"))
	s.End()

	assert.True(t, chain.StreamFailed())
	assert.Empty(t, emitted)
	assert.False(t, ended)
}

func TestOnRequestContent_ContentHeaders(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		want    string
	}{
		{name: "without charset", charset: "", want: "text/xml"},
		{name: "with charset", charset: "UTF-8", want: "text/xml; charset=UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Configuration{Envelope: "<env>${request.content}</env>", Charset: tt.charset}
			result := run(t, cfg, newTestRequest(http.MethodPost, "/countries"), "héllo")

			require.Nil(t, result.Failure)
			assert.Equal(t, []string{tt.want}, result.Headers.Get("Content-Type"))
			assert.Equal(t, "17", result.Headers.First("Content-Length"))
			assert.False(t, result.Headers.Has("Transfer-Encoding"))
		})
	}
}

func TestOnRequestContent_ProducesSOAPEnvelope(t *testing.T) {
	cfg := &config.Configuration{Envelope: soapEnvelope, SOAPAction: "ListOfLanguagesByName"}

	result := run(t, cfg, newTestRequest(http.MethodGet, "/countries"), "English")
	require.Nil(t, result.Failure)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(result.Body))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Envelope", root.Tag)
	assert.Equal(t, "soapenv", root.Space)

	body := root.SelectElement("soapenv:Body")
	require.NotNil(t, body)
	payload := body.SelectElement("web:Payload")
	require.NotNil(t, payload)
	assert.Equal(t, "English", payload.Text())
}

func TestOnRequestContent_IsIdempotent(t *testing.T) {
	cfg := &config.Configuration{Envelope: "<env a=\"${request.params.a}\">${request.content}</env>", SOAPAction: "urn:x"}

	first := run(t, cfg, newTestRequest(http.MethodGet, "/countries?a=1"), "body")
	second := run(t, cfg, newTestRequest(http.MethodGet, "/countries?a=1"), "body")

	require.Nil(t, first.Failure)
	require.Nil(t, second.Failure)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.Method, second.Method)
	assert.Equal(t, first.Headers.GetAll(), second.Headers.GetAll())
}

func TestNew_RejectsInvalidEnvelope(t *testing.T) {
	compiler := newCompiler(t)

	for _, mode := range []config.Mode{config.ModeStream, config.ModeDeclarative} {
		t.Run(string(mode), func(t *testing.T) {
			_, err := NewPolicy(&config.Configuration{Envelope: "<env>${request.content</env>", Mode: mode}, compiler)
			require.Error(t, err)
			assert.ErrorIs(t, err, template.ErrSyntax)
		})
	}
}

func TestNewPolicy_SelectsVariant(t *testing.T) {
	compiler := newCompiler(t)

	pol, err := NewPolicy(&config.Configuration{Envelope: "<env/>", Mode: config.ModeStream}, compiler)
	require.NoError(t, err)
	assert.IsType(t, &Policy{}, pol)

	pol, err = NewPolicy(&config.Configuration{Envelope: "<env/>", Mode: config.ModeDeclarative}, compiler)
	require.NoError(t, err)
	assert.IsType(t, &DeclarativePolicy{}, pol)
}
