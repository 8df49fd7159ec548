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

package errors

// Domain code ranges for the RPC/crypto stack. Each category owns a
// hundred-wide band so new codes can be inserted without collisions.
const (
	// transport: 1000-1099
	MinPkgTransport      CodeError = 1000
	TransportUnreachable CodeError = 1001
	TransportBroken      CodeError = 1002
	TransportEOF         CodeError = 1003
	TransportCancelled   CodeError = 1004
	TransportTimeout     CodeError = 1005

	// framing: 1100-1199
	MinPkgFraming            CodeError = 1100
	FramingHeaderTooShort    CodeError = 1101
	FramingMessageTooBig     CodeError = 1102
	FramingMalformedEnvelope CodeError = 1103

	// authentication: 1200-1299
	MinPkgAuthn         CodeError = 1200
	AuthnSessionExpired CodeError = 1201
	AuthnRefreshFailed  CodeError = 1202
	AuthnMethodRejected CodeError = 1203

	// authorization (ACL): 1300-1399
	MinPkgAuthz       CodeError = 1300
	AuthzExplicitDeny CodeError = 1301
	AuthzUnknown      CodeError = 1302
	AuthzStoreFailure CodeError = 1303

	// crypto: 1400-1499
	MinPkgCrypto               CodeError = 1400
	CryptoBadKey               CodeError = 1401
	CryptoIVMismatch           CodeError = 1402
	CryptoTagVerifyFailed      CodeError = 1403
	CryptoUnsupportedAlgorithm CodeError = 1404
	CryptoKDFMisconfigured     CodeError = 1405
	CryptoUnsupportedVersion   CodeError = 1406

	// container: 1500-1599
	MinPkgContainer             CodeError = 1500
	ContainerInvalidPrefix      CodeError = 1501
	ContainerUnsupportedVersion CodeError = 1502
	ContainerInvalidSize        CodeError = 1503
	ContainerParseFailure       CodeError = 1504
	ContainerSerializeFailure   CodeError = 1505
	ContainerSuiteLookupFailure CodeError = 1506

	// file: 1600-1699
	MinPkgFile         CodeError = 1600
	FileNotOpen        CodeError = 1601
	FileAlreadyOpen    CodeError = 1602
	FileReadFailure    CodeError = 1603
	FileWriteFailure   CodeError = 1604
	FileSeekOutOfRange CodeError = 1605
	StampMissing       CodeError = 1606

	// proxy (SOCKS5): 1700-1799
	MinPkgProxy                CodeError = 1700
	ProxyUnsupportedVersion    CodeError = 1701
	ProxyUnsupportedAuthMethod CodeError = 1702
	ProxyAuthFailed            CodeError = 1703
	ProxyReportedError         CodeError = 1704
	ProxyInvalidParameters     CodeError = 1705

	// policy: 1800-1899
	MinPkgPolicy               CodeError = 1800
	PolicyQueueOverflow        CodeError = 1801
	PolicyAborted              CodeError = 1802
	PolicyForceConnectionClose CodeError = 1803
	PolicyServerClosed         CodeError = 1804
	PolicyStoreFailure         CodeError = 1805

	// configuration: 1900-1999
	MinPkgConfig  CodeError = 1900
	ConfigInvalid CodeError = 1901
)

var domainMessages = map[CodeError]string{
	TransportUnreachable: "transport: endpoint unreachable",
	TransportBroken:      "transport: connection broken",
	TransportEOF:         "transport: unexpected EOF",
	TransportCancelled:   "transport: operation cancelled",
	TransportTimeout:     "transport: operation timed out",

	FramingHeaderTooShort:    "framing: header too short",
	FramingMessageTooBig:     "framing: message exceeds configured limit",
	FramingMalformedEnvelope: "framing: malformed envelope",

	AuthnSessionExpired: "authentication: session expired",
	AuthnRefreshFailed:  "authentication: session refresh failed",
	AuthnMethodRejected: "authentication: method-auth rejected",

	AuthzExplicitDeny: "authorization: explicit deny",
	AuthzUnknown:      "authorization: no applicable rule",
	AuthzStoreFailure: "authorization: document store failure",

	CryptoBadKey:               "crypto: bad key",
	CryptoIVMismatch:           "crypto: IV size mismatch",
	CryptoTagVerifyFailed:      "crypto: AEAD tag verification failed",
	CryptoUnsupportedAlgorithm: "crypto: unsupported algorithm",
	CryptoKDFMisconfigured:     "crypto: KDF misconfigured",
	CryptoUnsupportedVersion:   "crypto: unsupported version",

	ContainerInvalidPrefix:      "container: invalid magic prefix",
	ContainerUnsupportedVersion: "container: unsupported version",
	ContainerInvalidSize:        "container: invalid size field",
	ContainerParseFailure:       "container: parse failure",
	ContainerSerializeFailure:   "container: serialize failure",
	ContainerSuiteLookupFailure: "container: cipher-suite lookup failure",

	FileNotOpen:        "file: not open",
	FileAlreadyOpen:    "file: already open",
	FileReadFailure:    "file: read failure",
	FileWriteFailure:   "file: write failure",
	FileSeekOutOfRange: "file: seek out of range",
	StampMissing:       "file: trailing stamp missing or malformed",

	ProxyUnsupportedVersion:    "proxy: unsupported SOCKS version",
	ProxyUnsupportedAuthMethod: "proxy: unsupported auth method",
	ProxyAuthFailed:            "proxy: authentication failed",
	ProxyReportedError:         "proxy: server reported an error",
	ProxyInvalidParameters:     "proxy: invalid parameters",

	PolicyQueueOverflow:        "policy: queue overflow",
	PolicyAborted:              "policy: aborted (owner closed)",
	PolicyForceConnectionClose: "policy: force connection close",
	PolicyServerClosed:         "policy: server closed",
	PolicyStoreFailure:         "policy: acl store lookup failed",

	ConfigInvalid: "config: could not bind configuration",
}

func domainMessage(c CodeError) string {
	if m, ok := domainMessages[c]; ok {
		return m
	}
	return UnknownMessage
}

func init() {
	RegisterIdFctMessage(MinPkgTransport, domainMessage)
}
