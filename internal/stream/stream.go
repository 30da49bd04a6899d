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

// Package stream provides gateway.ReadWriteStream implementations used by
// policies that intercept a request body.
package stream

import (
	"bytes"

	"github.com/wso2/gateway-controllers/policies/rest-to-soap/internal/gateway"
)

// TransformFunc rewrites a complete body.
type TransformFunc func(body []byte) ([]byte, error)

// PassThrough is a stream forwarding every chunk unchanged.
type PassThrough struct {
	bodyHandler func(chunk []byte)
	endHandler  func()
}

var _ gateway.ReadWriteStream = (*PassThrough)(nil)

func (s *PassThrough) Write(chunk []byte) gateway.ReadWriteStream {
	s.flush(chunk)
	return s
}

func (s *PassThrough) End() {
	if s.endHandler != nil {
		s.endHandler()
	}
}

func (s *PassThrough) BodyHandler(handler func(chunk []byte)) gateway.ReadWriteStream {
	s.bodyHandler = handler
	return s
}

func (s *PassThrough) EndHandler(handler func()) gateway.ReadWriteStream {
	s.endHandler = handler
	return s
}

func (s *PassThrough) flush(chunk []byte) {
	if s.bodyHandler != nil {
		s.bodyHandler(chunk)
	}
}

// Transformable buffers every chunk written to it and applies a transform
// once the body is complete. Intermediate chunks are never emitted: on
// success exactly one chunk is flushed followed by the end signal; on
// failure nothing is emitted and the error handler is called instead.
type Transformable struct {
	PassThrough

	buffer    bytes.Buffer
	transform TransformFunc
	onError   func(err error)
	done      bool
}

var _ gateway.ReadWriteStream = (*Transformable)(nil)

// NewTransformable creates a stream transforming the complete body with
// transform. onError receives transform failures.
func NewTransformable(transform TransformFunc, onError func(err error)) *Transformable {
	return &Transformable{
		transform: transform,
		onError:   onError,
	}
}

func (s *Transformable) Write(chunk []byte) gateway.ReadWriteStream {
	if !s.done {
		s.buffer.Write(chunk)
	}
	return s
}

// End runs the transform against the accumulated body. Calls after the
// first are ignored.
func (s *Transformable) End() {
	if s.done {
		return
	}
	s.done = true

	body := s.buffer.Bytes()
	out, err := s.transform(body)
	s.buffer.Reset()
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	s.flush(out)
	s.PassThrough.End()
}

func (s *Transformable) BodyHandler(handler func(chunk []byte)) gateway.ReadWriteStream {
	s.PassThrough.BodyHandler(handler)
	return s
}

func (s *Transformable) EndHandler(handler func()) gateway.ReadWriteStream {
	s.PassThrough.EndHandler(handler)
	return s
}
