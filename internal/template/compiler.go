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

// Package template renders text templates whose ${...} placeholders are CEL
// expressions evaluated against request-scoped variables.
package template

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

var (
	// ErrSyntax is returned when a template cannot be parsed or one of its
	// expressions is not valid CEL.
	ErrSyntax = errors.New("template syntax error")

	// ErrUnresolved is returned when an expression cannot be resolved against
	// the bound variables, or resolves to null.
	ErrUnresolved = errors.New("template expression could not be resolved")
)

// Template is a parsed template ready for evaluation. It is immutable and
// safe for concurrent use.
type Template struct {
	source   string
	segments []segment
	programs []cel.Program
}

// Source returns the template text the Template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Compiler compiles templates and caches the result by source text.
type Compiler struct {
	mu sync.RWMutex

	// Key: template source, Value: compiled template
	cache map[string]*Template

	env *cel.Env
}

// NewCompiler creates a template compiler with the CEL string and encoder
// extensions enabled.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		ext.Encoders(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Compiler{
		cache: make(map[string]*Template),
		env:   env,
	}, nil
}

// Compile parses a template and every expression in it. Expressions are
// only parsed, not type-checked: identifiers are resolved at evaluation time
// so a reference to an unbound variable surfaces as ErrUnresolved.
func (c *Compiler) Compile(source string) (*Template, error) {
	c.mu.RLock()
	if tmpl, ok := c.cache[source]; ok {
		c.mu.RUnlock()
		return tmpl, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if tmpl, ok := c.cache[source]; ok {
		return tmpl, nil
	}

	segments, err := parse(source)
	if err != nil {
		return nil, err
	}

	tmpl := &Template{
		source:   source,
		segments: segments,
		programs: make([]cel.Program, len(segments)),
	}
	for i, seg := range segments {
		if seg.kind != segmentExpr {
			continue
		}
		ast, issues := c.env.Parse(seg.text)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("%w: ${%s}: %v", ErrSyntax, seg.text, issues.Err())
		}
		program, err := c.env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("%w: ${%s}: %v", ErrSyntax, seg.text, err)
		}
		tmpl.programs[i] = program
	}

	c.cache[source] = tmpl
	return tmpl, nil
}

// Execute renders the template against vars.
func (t *Template) Execute(vars map[string]any) (string, error) {
	var out strings.Builder
	out.Grow(len(t.source))

	for i, seg := range t.segments {
		if seg.kind == segmentText {
			out.WriteString(seg.text)
			continue
		}

		val, _, err := t.programs[i].Eval(vars)
		if err != nil {
			return "", fmt.Errorf("%w: ${%s}: %v", ErrUnresolved, seg.text, err)
		}
		s, err := stringify(val)
		if err != nil {
			return "", fmt.Errorf("%w: ${%s}: %v", ErrUnresolved, seg.text, err)
		}
		out.WriteString(s)
	}

	return out.String(), nil
}

func stringify(val ref.Val) (string, error) {
	switch val.Type() {
	case types.NullType:
		return "", errors.New("expression evaluated to null")
	case types.BytesType:
		return string(val.Value().([]byte)), nil
	}

	converted := val.ConvertToType(types.StringType)
	if types.IsError(converted) {
		return "", fmt.Errorf("cannot render %s as text", val.Type().TypeName())
	}
	return converted.Value().(string), nil
}
