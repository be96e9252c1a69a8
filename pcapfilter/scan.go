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

package pcapfilter

import "bytes"

// ScanMessages extracts every complete FIX message (start "8=FIX*",
// end "10=NNN<delim>") from buf, returning the messages found and the
// number of leading bytes consumed -- the tail (a partial message, or
// garbage before the first "8=FIX") is left for the caller to retain.
func ScanMessages(buf []byte, delim byte) (messages [][]byte, consumed int) {
	start := bytes.Index(buf, []byte("8=FIX"))
	if start < 0 {
		// No message start in view; keep only a short tail in case
		// "8=FIX" straddles the next read.
		if n := len(buf) - 4; n > 0 {
			return nil, n
		}
		return nil, 0
	}
	consumed = start
	rest := buf[start:]

	for {
		end := findChecksumEnd(rest, delim)
		if end < 0 {
			break
		}
		messages = append(messages, append([]byte(nil), rest[:end]...))
		consumed += end
		rest = rest[end:]

		next := bytes.Index(rest, []byte("8=FIX"))
		if next < 0 {
			break
		}
		consumed += next
		rest = rest[next:]
	}
	return messages, consumed
}

// findChecksumEnd locates the end (exclusive) of the first complete
// "10=NNN<delim>" field in buf, or -1 if none is present yet. The field
// must be delimiter-anchored (preceded by delim, or at buf[0]) so a
// stray "10=" inside a data field is never mistaken for CheckSum.
func findChecksumEnd(buf []byte, delim byte) int {
	marker := []byte{'1', '0', '='}
	from := 0
	for {
		rel := bytes.Index(buf[from:], marker)
		if rel < 0 {
			return -1
		}
		idx := from + rel
		if idx != 0 && buf[idx-1] != delim {
			from = idx + 1
			continue
		}
		end := bytes.IndexByte(buf[idx+len(marker):], delim)
		if end < 0 {
			return -1
		}
		return idx + len(marker) + end + 1
	}
}
