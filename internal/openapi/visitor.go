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

// Package openapi derives rest-to-soap policy attachments from OpenAPI 3
// documents whose operations carry SOAP vendor extensions.
package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	policy "github.com/wso2/api-platform/sdk/gateway/policy/v1alpha"
)

const (
	// ExtensionEnvelope holds the envelope template of an operation.
	ExtensionEnvelope = "x-soap-envelope"

	// ExtensionAction holds the SOAPAction of an operation.
	ExtensionAction = "x-soap-action"

	PolicyName    = "rest-to-soap"
	PolicyVersion = "v0.1.0"
)

// Configuration is the policy configuration derived from an operation.
type Configuration struct {
	Envelope   string `json:"envelope"`
	SOAPAction string `json:"soapAction,omitempty"`
}

// OperationPolicy attaches the rest-to-soap policy to one operation.
type OperationPolicy struct {
	Path   string
	Method string

	Spec policy.PolicySpec

	// Configuration is the JSON encoding of the policy configuration.
	Configuration []byte
}

// Visit returns the policy for op, or false when op has no envelope
// extension. A SOAP action alone does not attach the policy.
func Visit(op *openapi3.Operation) (*OperationPolicy, bool, error) {
	if op == nil || op.Extensions == nil {
		return nil, false, nil
	}

	envelope, ok := extensionString(op.Extensions, ExtensionEnvelope)
	if !ok {
		return nil, false, nil
	}

	cfg := Configuration{Envelope: envelope}
	if action, ok := extensionString(op.Extensions, ExtensionAction); ok {
		cfg.SOAPAction = strings.TrimSpace(action)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode policy configuration: %w", err)
	}

	params := map[string]interface{}{"envelope": cfg.Envelope}
	if cfg.SOAPAction != "" {
		params["soapAction"] = cfg.SOAPAction
	}

	return &OperationPolicy{
		Spec: policy.PolicySpec{
			Name:       PolicyName,
			Version:    PolicyVersion,
			Enabled:    true,
			Parameters: policy.PolicyParameters{Raw: params},
		},
		Configuration: raw,
	}, true, nil
}

// VisitDocument visits every operation of doc, ordered by path then method.
func VisitDocument(doc *openapi3.T) ([]OperationPolicy, error) {
	if doc == nil || doc.Paths == nil {
		return nil, nil
	}

	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []OperationPolicy
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}

		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			p, ok, err := Visit(ops[method])
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			if !ok {
				continue
			}
			p.Path = path
			p.Method = method
			result = append(result, *p)
		}
	}
	return result, nil
}

// Load parses an OpenAPI 3 document and visits it.
func Load(data []byte) ([]OperationPolicy, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	return VisitDocument(doc)
}

func extensionString(extensions map[string]any, name string) (string, bool) {
	v, ok := extensions[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
