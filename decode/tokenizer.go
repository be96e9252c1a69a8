/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package decode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quickfixgo/quickfix"
)

// DefaultDelimiter is the canonical FIX field separator, SOH (0x01).
const DefaultDelimiter = byte(0x01)

// ParseDelimiter turns a --delimiter value into a single byte. Accepted
// forms: a literal single character, the case-insensitive string "SOH",
// or a \xNN / 0xNN escape.
func ParseDelimiter(v string) (byte, error) {
	if v == "" {
		return 0, fmt.Errorf("decode: empty --delimiter value")
	}
	if strings.EqualFold(v, "SOH") {
		return DefaultDelimiter, nil
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "\\x") || strings.HasPrefix(lower, "0x") {
		hex := v[2:]
		n, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("decode: bad --delimiter escape %q: %w", v, err)
		}
		return byte(n), nil
	}
	if len([]rune(v)) != 1 {
		return 0, fmt.Errorf("decode: --delimiter must be a single character, SOH, or a \\xNN escape, got %q", v)
	}
	return v[0], nil
}

// Token is one tag=value pair as found on the wire. Value is kept raw
// (no unescaping beyond delimiter-splitting); empty values are
// preserved.
type Token struct {
	Tag   quickfix.Tag
	Value string
}

// Tokenize splits a raw FIX byte run on delim into an ordered list of
// Tokens. HOT PATH: single pass over raw, scanning for '=' then the
// delimiter, substring only -- no allocation beyond the returned slice.
//
// Joining the returned tokens' "tag=value" strings with delim
// reproduces raw exactly: every byte of raw belongs to exactly one
// field and no bytes are dropped or rewritten.
func Tokenize(raw string, delim byte) ([]Token, error) {
	var tokens []Token
	pos := 0
	n := len(raw)
	for pos < n {
		eq := strings.IndexByte(raw[pos:], '=')
		if eq == -1 {
			return tokens, fmt.Errorf("decode: malformed field at byte %d: no '=' before end of input", pos)
		}
		eq += pos
		tagStr := raw[pos:eq]
		tagNum, err := strconv.Atoi(tagStr)
		if err != nil || tagNum < 0 {
			return tokens, fmt.Errorf("decode: malformed tag number %q at byte %d", tagStr, pos)
		}

		valueStart := eq + 1
		rel := strings.IndexByte(raw[valueStart:], delim)
		var value string
		var next int
		if rel == -1 {
			value = raw[valueStart:]
			next = n
		} else {
			value = raw[valueStart : valueStart+rel]
			next = valueStart + rel + 1
		}

		tokens = append(tokens, Token{Tag: quickfix.Tag(tagNum), Value: value})
		pos = next
	}
	return tokens, nil
}

// Join reconstructs the raw byte run from tokens, used to verify the
// tokenisation round-trip property and to re-render a message's trailing
// bytes for checksum/length recomputation.
func Join(tokens []Token, delim byte) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(tagString(t.Tag))
		b.WriteByte('=')
		b.WriteString(t.Value)
		b.WriteByte(delim)
	}
	return b.String()
}

// Locate scans line for a FIX run starting at "8=FIX" (or "8=FIXT") and
// ending at the first complete "10=NNN<delim>" that follows. ok is
// false when no run starts on the line at all. warn is non-empty when a
// run starts but never reaches a complete checksum field (truncated
// input); in that case the caller should print the line as-is and emit
// warn to stderr once.
func Locate(line string, delim byte) (start, end int, ok bool, warn string) {
	idx := strings.Index(line, "8=FIX")
	if idx == -1 {
		return 0, 0, false, ""
	}
	tail := line[idx:]
	checksumPrefix := string(delim) + "10="
	csPos := strings.Index(tail, checksumPrefix)
	if csPos == -1 {
		return idx, 0, true, fmt.Sprintf("decode: truncated FIX run at byte %d: no checksum field found", idx)
	}
	afterCS := csPos + len(checksumPrefix)
	if afterCS+3 > len(tail) {
		return idx, 0, true, fmt.Sprintf("decode: truncated FIX run at byte %d: incomplete checksum digits", idx)
	}
	digits := tail[afterCS : afterCS+3]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return idx, 0, true, fmt.Sprintf("decode: truncated FIX run at byte %d: malformed checksum digits %q", idx, digits)
		}
	}
	if afterCS+3 >= len(tail) || tail[afterCS+3] != delim {
		return idx, 0, true, fmt.Sprintf("decode: truncated FIX run at byte %d: checksum field not delimiter-terminated", idx)
	}
	endRel := afterCS + 4
	return idx, idx + endRel, true, ""
}
