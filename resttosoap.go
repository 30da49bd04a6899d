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

// Package resttosoap is the gateway policy that turns REST requests into
// SOAP requests. The envelope template is rendered from the buffered client
// body and request metadata; the backend is invoked with POST at the API
// context path.
package resttosoap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	policy "github.com/wso2/api-platform/sdk/gateway/policy/v1alpha"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/config"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/kernel"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/requestview"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/rest2soap"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

var (
	compilerOnce sync.Once
	compiler     *template.Compiler
	compilerErr  error
)

// sharedCompiler returns the template compiler shared by every route so
// identical envelopes are compiled once.
func sharedCompiler() (*template.Compiler, error) {
	compilerOnce.Do(func() {
		compiler, compilerErr = template.NewCompiler()
	})
	return compiler, compilerErr
}

// RestToSoapPolicy adapts the REST to SOAP transformation to the policy
// engine. One instance is created per route.
type RestToSoapPolicy struct {
	config   *config.Configuration
	delegate gateway.RequestPolicy
	pipeline *kernel.Pipeline
	logger   *slog.Logger
}

func GetPolicy(
	metadata policy.PolicyMetadata,
	params map[string]interface{},
) (policy.Policy, error) {
	cfg, err := config.Load(params)
	if err != nil {
		return nil, err
	}

	c, err := sharedCompiler()
	if err != nil {
		return nil, fmt.Errorf("failed to create template compiler: %w", err)
	}

	delegate, err := rest2soap.NewPolicy(cfg, c)
	if err != nil {
		return nil, err
	}

	def, err := ParseDefinition()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("policy", def.Name, "version", def.Version, "route", metadata.RouteName)
	logger.Debug("Created REST to SOAP policy", "mode", cfg.Mode, "soapAction", cfg.SOAPAction)

	return &RestToSoapPolicy{
		config:   cfg,
		delegate: delegate,
		pipeline: kernel.NewPipeline(c, logger),
		logger:   logger,
	}, nil
}

// Mode returns the processing mode for this policy. The declarative variant
// never reads the client body.
func (p *RestToSoapPolicy) Mode() policy.ProcessingMode {
	bodyMode := policy.BodyModeBuffer
	if p.config.Mode == config.ModeDeclarative {
		bodyMode = policy.BodyModeSkip
	}
	return policy.ProcessingMode{
		RequestHeaderMode:  policy.HeaderModeProcess,
		RequestBodyMode:    bodyMode,
		ResponseHeaderMode: policy.HeaderModeSkip,
		ResponseBodyMode:   policy.BodyModeSkip,
	}
}

// OnRequest rewrites the request into a SOAP request.
func (p *RestToSoapPolicy) OnRequest(ctx *policy.RequestContext, params map[string]interface{}) policy.RequestAction {
	req := newRequest(ctx)
	original := req.Headers().GetAll()

	var chunks [][]byte
	if ctx.Body != nil && ctx.Body.Present {
		chunks = append(chunks, ctx.Body.Content)
	}

	result := p.pipeline.Execute(context.Background(), p.delegate, req, chunks...)
	if result.Failure != nil {
		return p.handleInternalServerError(result.Failure)
	}

	mods := policy.UpstreamRequestModifications{
		Method: &result.Method,
	}
	mods.SetHeaders, mods.RemoveHeaders = diffHeaders(original, result.Headers)
	if result.BodyReplaced {
		mods.Body = result.Body
		if mods.Body == nil {
			mods.Body = []byte{}
		}
	}
	if path, ok := upstreamPath(ctx, result.Request); ok {
		mods.Path = &path
	}
	return mods
}

// OnResponse is a no-op; the SOAP response is returned as is.
func (p *RestToSoapPolicy) OnResponse(ctx *policy.ResponseContext, params map[string]interface{}) policy.ResponseAction {
	return nil
}

func newRequest(ctx *policy.RequestContext) *kernel.Request {
	headers := make(map[string][]string)
	if ctx.Headers != nil {
		ctx.Headers.Iterate(func(name string, values []string) {
			headers[name] = append([]string(nil), values...)
		})
	}

	var opts []kernel.RequestOption
	if ctx.SharedContext != nil {
		if ctx.SharedContext.RequestID != "" {
			opts = append(opts, kernel.WithID(ctx.SharedContext.RequestID))
		}
		opts = append(opts, kernel.WithContextPath(ctx.SharedContext.APIContext))
	}
	return kernel.NewRequest(ctx.Method, ctx.Path, headers, opts...)
}

// upstreamPath is the API context path, followed by the original raw query
// unless the request view hides query parameters from the backend.
func upstreamPath(ctx *policy.RequestContext, view gateway.Request) (string, bool) {
	if ctx.SharedContext == nil || view == nil {
		return "", false
	}

	path := ctx.SharedContext.APIContext
	if path == "" {
		path = "/"
	}
	if v, ok := view.(*requestview.View); ok && v.HidesQueryParams() {
		return path, true
	}

	if _, rawQuery, ok := strings.Cut(ctx.Path, "?"); ok && rawQuery != "" {
		return path + "?" + rawQuery, true
	}
	return path, true
}

// diffHeaders returns the headers to set and remove so that before becomes
// after. Only the first value of each header is propagated.
func diffHeaders(before map[string][]string, after *gateway.Headers) (map[string]string, []string) {
	set := make(map[string]string)
	after.Iterate(func(name string, values []string) {
		if len(values) == 0 {
			return
		}
		if prev := before[name]; len(prev) == 0 || prev[0] != values[0] {
			set[name] = values[0]
		}
	})

	var remove []string
	for name := range before {
		if !after.Has(name) {
			remove = append(remove, name)
		}
	}
	return set, remove
}

// handleInternalServerError returns a 500 internal server error response for request flow
func (p *RestToSoapPolicy) handleInternalServerError(failure *gateway.PolicyResult) policy.RequestAction {
	errorResponse := map[string]interface{}{
		"error":   "Internal Server Error",
		"message": failure.Message,
	}
	if failure.Key != "" {
		errorResponse["key"] = failure.Key
	}
	bodyBytes, _ := json.Marshal(errorResponse)

	return policy.ImmediateResponse{
		StatusCode: failure.StatusCode,
		Headers: map[string]string{
			"content-type":   "application/json",
			"content-length": fmt.Sprintf("%d", len(bodyBytes)),
		},
		Body: bodyBytes,
	}
}
