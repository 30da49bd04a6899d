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

package gateway

import "strings"

// Headers is a case-insensitive, multi-value view of HTTP headers shared by
// the request object and every policy that touches it. Names are stored
// lower-cased.
type Headers struct {
	values map[string][]string
}

// NewHeaders creates a Headers instance from a map. Keys are lower-cased.
// If values is nil, an empty map is created.
func NewHeaders(values map[string][]string) *Headers {
	h := &Headers{values: make(map[string][]string, len(values))}
	for name, vals := range values {
		key := strings.ToLower(name)
		h.values[key] = append(h.values[key], vals...)
	}
	return h
}

// Get retrieves all values for a header name (case-insensitive).
// Returns a defensive copy, or nil if the header does not exist.
func (h *Headers) Get(name string) []string {
	if h == nil || h.values == nil {
		return nil
	}
	vals := h.values[strings.ToLower(name)]
	if vals == nil {
		return nil
	}
	return append([]string(nil), vals...)
}

// First returns the first value of a header, or "" when absent.
func (h *Headers) First(name string) string {
	if h == nil || h.values == nil {
		return ""
	}
	if vals := h.values[strings.ToLower(name)]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Has checks if a header exists (case-insensitive).
func (h *Headers) Has(name string) bool {
	if h == nil || h.values == nil {
		return false
	}
	_, exists := h.values[strings.ToLower(name)]
	return exists
}

// Set replaces all values of a header with a single value.
func (h *Headers) Set(name, value string) {
	h.init()
	h.values[strings.ToLower(name)] = []string{value}
}

// Add appends a value to a header.
func (h *Headers) Add(name, value string) {
	h.init()
	key := strings.ToLower(name)
	h.values[key] = append(h.values[key], value)
}

// Remove deletes a header.
func (h *Headers) Remove(name string) {
	delete(h.values, strings.ToLower(name))
}

// GetAll returns a defensive copy of all headers.
func (h *Headers) GetAll() map[string][]string {
	if h == nil || h.values == nil {
		return make(map[string][]string)
	}
	result := make(map[string][]string, len(h.values))
	for k, v := range h.values {
		result[k] = append([]string(nil), v...)
	}
	return result
}

// Iterate calls fn for every header. Values are defensive copies.
func (h *Headers) Iterate(fn func(name string, values []string)) {
	if h == nil || h.values == nil {
		return
	}
	for name, values := range h.values {
		fn(name, append([]string(nil), values...))
	}
}

func (h *Headers) init() {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.values)
}
