// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package diffparse

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// PayloadPrefix tags a string whose remainder is base64 of a tagged binary
// encoding of raw text.
const PayloadPrefix = "base64:"

// payloadTag is the leading byte of the decoded payload. Content without it
// is not treated as an encoded payload even when the prefix is present.
const payloadTag = 0x01

// DecodeError describes a payload that carries the prefix but cannot be
// decoded.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "cannot decode binary payload: " + e.Reason
}

// MaybeDecodePayload decodes s when it is a tagged binary payload. Returns
// the decoded text and true, or the input unchanged and false when s is
// plain text. Base64 that carries the prefix but does not decode is an
// error; a decoded body without the tag byte is plain text that merely
// resembled a payload.
func MaybeDecodePayload(s string) (string, bool, error) {
	if !strings.HasPrefix(s, PayloadPrefix) {
		return s, false, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, PayloadPrefix))
	if err != nil {
		return "", false, &DecodeError{Reason: fmt.Sprintf("invalid base64: %v", err)}
	}
	if len(raw) == 0 || raw[0] != payloadTag {
		return s, false, nil
	}
	return string(raw[1:]), true, nil
}

// EncodePayload wraps text in the tagged binary encoding. Used by tests and
// by callers that transport non-UTF-8-safe content.
func EncodePayload(text string) string {
	raw := append([]byte{payloadTag}, text...)
	return PayloadPrefix + base64.StdEncoding.EncodeToString(raw)
}
