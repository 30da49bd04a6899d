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

package template

// Engine is a request-scoped template engine. It holds the variables bound
// for one request and shares compiled templates through its Compiler.
// An Engine must not be shared between requests.
type Engine struct {
	compiler *Compiler
	vars     map[string]any
}

// NewEngine creates a request-scoped engine backed by the compiler's cache.
func (c *Compiler) NewEngine() *Engine {
	return &Engine{
		compiler: c,
		vars:     make(map[string]any, 2),
	}
}

// SetVariable binds a value to name for subsequent conversions.
func (e *Engine) SetVariable(name string, value any) {
	e.vars[name] = value
}

// Variable returns the value bound to name.
func (e *Engine) Variable(name string) (any, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Convert renders source against the variables bound so far.
func (e *Engine) Convert(source string) (string, error) {
	tmpl, err := e.compiler.Compile(source)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(e.vars)
}
