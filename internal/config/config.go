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

// Package config loads and validates the REST-to-SOAP policy parameters.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Mode selects how the envelope is produced.
type Mode string

const (
	// ModeStream renders the envelope once the request body is complete,
	// so the template can reference the body.
	ModeStream Mode = "stream"

	// ModeDeclarative renders the envelope during the header phase without
	// reading the request body.
	ModeDeclarative Mode = "declarative"
)

// ContentTypeXML is the media type of every produced envelope.
const ContentTypeXML = "text/xml"

var (
	// ErrEnvelopeRequired is returned when the envelope parameter is missing
	// or blank.
	ErrEnvelopeRequired = errors.New("envelope is required")

	// ErrInvalidMode is returned for an unknown mode value.
	ErrInvalidMode = errors.New("invalid mode")
)

// Configuration holds the policy parameters. It is immutable once loaded.
type Configuration struct {
	// Envelope is the template producing the SOAP XML body.
	Envelope string `koanf:"envelope"`

	// SOAPAction is sent as the SOAPAction header when non-empty.
	SOAPAction string `koanf:"soapAction"`

	// PreserveQueryParams keeps query parameters on the request sent to the
	// backend. They are always available to the envelope template.
	PreserveQueryParams bool `koanf:"preserveQueryParams"`

	// Charset is appended to the content type when set.
	Charset string `koanf:"charset"`

	Mode Mode `koanf:"mode"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"preserveQueryParams": false,
		"mode":                string(ModeStream),
	}
}

// Load builds a Configuration from raw policy parameters layered over the
// defaults, then validates it. Values are weakly typed so "true" decodes as
// a boolean.
func Load(params map[string]interface{}) (*Configuration, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load default parameters: %w", err)
	}
	if err := k.Load(confmap.Provider(params, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load policy parameters: %w", err)
	}

	cfg := &Configuration{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to decode policy parameters: %w", err)
	}

	cfg.SOAPAction = strings.TrimSpace(cfg.SOAPAction)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Configuration) Validate() error {
	if strings.TrimSpace(c.Envelope) == "" {
		return ErrEnvelopeRequired
	}
	switch c.Mode {
	case ModeStream, ModeDeclarative:
	default:
		return fmt.Errorf("%w %q: must be %q or %q", ErrInvalidMode, c.Mode, ModeStream, ModeDeclarative)
	}
	return nil
}

// HasSOAPAction reports whether a SOAPAction header must be sent.
func (c *Configuration) HasSOAPAction() bool {
	return c.SOAPAction != ""
}

// ContentType returns the content type of the produced envelope.
func (c *Configuration) ContentType() string {
	if c.Charset == "" {
		return ContentTypeXML
	}
	return ContentTypeXML + "; charset=" + c.Charset
}
