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

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segmentText segmentKind = iota
	segmentExpr
)

type segment struct {
	kind segmentKind
	text string
}

// parse splits a template into literal text and ${...} expressions.
// Braces inside an expression nest, and braces inside quoted strings are
// ignored. A backslash before "${" emits the two characters literally.
func parse(source string) ([]segment, error) {
	var (
		segments []segment
		text     strings.Builder
	)

	flushText := func() {
		if text.Len() > 0 {
			segments = append(segments, segment{kind: segmentText, text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(source); {
		if strings.HasPrefix(source[i:], `\${`) {
			text.WriteString("${")
			i += 3
			continue
		}
		if !strings.HasPrefix(source[i:], "${") {
			text.WriteByte(source[i])
			i++
			continue
		}

		end, err := matchBrace(source, i+2)
		if err != nil {
			return nil, err
		}
		expr := strings.TrimSpace(source[i+2 : end])
		if expr == "" {
			return nil, fmt.Errorf("%w: empty expression at offset %d", ErrSyntax, i)
		}
		flushText()
		segments = append(segments, segment{kind: segmentExpr, text: expr})
		i = end + 1
	}
	flushText()

	return segments, nil
}

// matchBrace returns the index of the '}' closing an expression whose body
// starts at from.
func matchBrace(source string, from int) (int, error) {
	depth := 0
	var quote byte
	for i := from; i < len(source); i++ {
		c := source[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, fmt.Errorf("%w: unterminated expression starting at offset %d", ErrSyntax, from-2)
}
