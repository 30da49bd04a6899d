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

// Package rest2soap rewrites REST requests into SOAP requests: it forces the
// backend method to POST, hides the REST sub-path and (optionally) the query
// string from the backend, and replaces the body with an envelope rendered
// from a template.
package rest2soap

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/config"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/metrics"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/requestview"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/stream"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

const (
	// ErrorKeyTemplate identifies envelope rendering failures.
	ErrorKeyTemplate = "REST_TO_SOAP_TEMPLATE_ERROR"

	spanTransform = "rest-to-soap.transform"
)

var tracer = otel.Tracer("github.com/wso2/gateway-controllers/policies/rest-to-soap")

// Policy renders the envelope from the complete request body. Its only
// state is the immutable configuration, so one instance serves concurrent
// requests.
type Policy struct {
	config *config.Configuration
}

var (
	_ gateway.RequestPolicy        = (*Policy)(nil)
	_ gateway.RequestContentPolicy = (*Policy)(nil)
)

// New creates the streaming policy. The envelope is compiled once so syntax
// errors are reported at setup rather than per request.
func New(cfg *config.Configuration, compiler *template.Compiler) (*Policy, error) {
	if err := checkEnvelope(cfg, compiler); err != nil {
		return nil, err
	}
	return &Policy{config: cfg}, nil
}

// NewPolicy creates the policy variant selected by cfg.Mode.
func NewPolicy(cfg *config.Configuration, compiler *template.Compiler) (gateway.RequestPolicy, error) {
	if cfg.Mode == config.ModeDeclarative {
		return NewDeclarative(cfg, compiler)
	}
	return New(cfg, compiler)
}

// checkEnvelope compiles the envelope. Presence is enforced by config.Load;
// an empty envelope reaching this point renders an empty body.
func checkEnvelope(cfg *config.Configuration, compiler *template.Compiler) error {
	if _, err := compiler.Compile(cfg.Envelope); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	return nil
}

// OnRequest rewrites the request metadata and continues the chain with a
// view hiding the REST routing details. It never fails.
func (p *Policy) OnRequest(req gateway.Request, resp gateway.Response, ctx gateway.ExecutionContext, chain gateway.PolicyChain) {
	view := rewriteMetadata(p.config, req, ctx)
	chain.Proceed(view, resp)
}

// OnRequestContent returns a stream that buffers the whole body and emits
// the rendered envelope in its place. The template always sees the original
// request, including query parameters hidden from the backend.
func (p *Policy) OnRequestContent(req gateway.Request, ctx gateway.ExecutionContext, chain gateway.PolicyChain) gateway.ReadWriteStream {
	original := req
	if view, ok := req.(*requestview.View); ok {
		original = view.Unwrap()
	}

	return stream.NewTransformable(
		func(body []byte) ([]byte, error) {
			envelope, err := render(ctx, metrics.VariantStream, p.config.Envelope, newContentBinding(original, string(body)))
			if err != nil {
				return nil, err
			}
			setEnvelopeHeaders(original.Headers(), p.config, len(envelope))
			return []byte(envelope), nil
		},
		func(err error) {
			chain.StreamFailWith(templateFailure(err))
		},
	)
}

// rewriteMetadata forces POST, sets the SOAPAction header and installs a
// request view into ctx. Headers are set on req before the view wraps it.
func rewriteMetadata(cfg *config.Configuration, req gateway.Request, ctx gateway.ExecutionContext) *requestview.View {
	log := ctx.Logger()

	log.Debug("Override HTTP method for SOAP invocation", "method", req.Method())
	ctx.SetAttribute(gateway.AttrRequestMethod, gateway.MethodPost)

	if cfg.HasSOAPAction() {
		log.Debug("Add a SOAPAction header to invoke SOAP WS", "soapAction", cfg.SOAPAction)
		req.Headers().Set(gateway.HeaderSOAPAction, cfg.SOAPAction)
	}

	view := requestview.New(req, !cfg.PreserveQueryParams)
	ctx.SetRequest(view)
	return view
}

// render evaluates the envelope with a fresh binding in the request-scoped
// template engine.
func render(ctx gateway.ExecutionContext, variant, envelope string, binding map[string]any) (string, error) {
	_, span := tracer.Start(ctx.Context(), spanTransform,
		trace.WithAttributes(attribute.String("rest_to_soap.variant", variant)))
	defer span.End()

	start := time.Now()
	engine := ctx.TemplateEngine()
	engine.SetVariable(VariableRequest, binding)
	out, err := engine.Convert(envelope)
	metrics.TemplateDurationSeconds.WithLabelValues(variant).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "envelope rendering failed")
		metrics.TransformationsTotal.WithLabelValues(variant, metrics.OutcomeFailure).Inc()
		ctx.Logger().Error("Failed to render SOAP envelope", "variant", variant, "error", err)
		return "", err
	}

	metrics.TransformationsTotal.WithLabelValues(variant, metrics.OutcomeSuccess).Inc()
	metrics.EnvelopeBytes.Observe(float64(len(out)))
	ctx.Logger().Debug("Rendered SOAP envelope", "variant", variant, "bytes", len(out))
	return out, nil
}

// setEnvelopeHeaders describes the rendered envelope. The body is fully
// known at this point so its length replaces any chunked encoding.
func setEnvelopeHeaders(headers *gateway.Headers, cfg *config.Configuration, length int) {
	headers.Set(gateway.HeaderContentType, cfg.ContentType())
	headers.Set(gateway.HeaderContentLength, strconv.Itoa(length))
	headers.Remove(gateway.HeaderTransferEncoding)
}

func templateFailure(err error) gateway.PolicyResult {
	return gateway.PolicyResult{
		StatusCode: http.StatusInternalServerError,
		Key:        ErrorKeyTemplate,
		Message:    fmt.Sprintf("Unable to render SOAP envelope: %v", err),
	}
}
