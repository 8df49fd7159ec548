/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package protocol

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var protocolType = reflect.TypeOf(NetworkEmpty)

// ViperDecoderHook returns a mapstructure.DecodeHookFunc that converts
// string or numeric configuration values into a NetworkProtocol, so viper
// can populate NetworkProtocol fields directly from config files and env.
func ViperDecoderHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != protocolType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return Parse(v), nil
		case []byte:
			return ParseBytes(v), nil
		case int:
			return ParseInt64(int64(v)), nil
		case int64:
			return ParseInt64(v), nil
		case float64:
			return ParseInt64(int64(v)), nil
		case NetworkProtocol:
			return v, nil
		default:
			return data, nil
		}
	}
}
