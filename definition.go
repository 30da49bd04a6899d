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

package resttosoap

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PolicyName is the name the policy is registered under.
const PolicyName = "rest-to-soap"

//go:embed policy-definition.yaml
var definitionYAML []byte

// Definition describes the policy and its parameter schema.
type Definition struct {
	Name        string                 `yaml:"name"`
	Version     string                 `yaml:"version"`
	Description string                 `yaml:"description"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

// ParseDefinition parses the embedded policy definition.
func ParseDefinition() (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(definitionYAML, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("policy name is required")
	}
	if def.Version == "" {
		return nil, fmt.Errorf("policy version is required")
	}
	return &def, nil
}
