/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package server

import (
	"github.com/sabouaram/vaultrpc/rpc/envelope"
)

// ParseEnvelope is the default Parser, decoding the same length-prefixed-
// field layout rpc/client's dispatcher serializes a Request into (see
// rpc/envelope). A Loop configured with Config.Parse: ParseEnvelope can
// talk to that dispatcher directly; a deployment using its own wire format
// supplies its own Parser instead.
func ParseEnvelope(body []byte) (Request, error) {
	e, err := envelope.Decode(body)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Service:     e.Service,
		Method:      e.Method,
		Version:     e.Version,
		Topic:       e.Topic,
		MessageType: e.MessageType,
		Payload:     e.Payload,
		MethodAuth:  e.MethodAuth,
	}, nil
}
