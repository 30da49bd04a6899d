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
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/config"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/metrics"
	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/template"
)

// DeclarativePolicy renders the envelope during the header phase and hands
// it to the host as the complete request body. The client body is never
// read, so templates cannot reference request.content.
type DeclarativePolicy struct {
	config *config.Configuration
}

var _ gateway.RequestPolicy = (*DeclarativePolicy)(nil)

// NewDeclarative creates the declarative policy.
func NewDeclarative(cfg *config.Configuration, compiler *template.Compiler) (*DeclarativePolicy, error) {
	if err := checkEnvelope(cfg, compiler); err != nil {
		return nil, err
	}
	return &DeclarativePolicy{config: cfg}, nil
}

func (p *DeclarativePolicy) OnRequest(req gateway.Request, resp gateway.Response, ctx gateway.ExecutionContext, chain gateway.PolicyChain) {
	envelope, err := render(ctx, metrics.VariantDeclarative, p.config.Envelope, newBinding(req))
	if err != nil {
		chain.Fail(templateFailure(err))
		return
	}

	ctx.SetAttribute(gateway.AttrBodyContent, envelope)
	setEnvelopeHeaders(req.Headers(), p.config, len(envelope))

	view := rewriteMetadata(p.config, req, ctx)
	chain.Proceed(view, resp)
}
