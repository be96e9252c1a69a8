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

	"fixdecoder/fix"

	"github.com/quickfixgo/quickfix"
)

// PickSchema resolves the dictionary to use for a tokenised message: a
// forced --fix key wins, then a FIXT.1.1 BeginString defers to
// DefaultApplVerID, then the key derives from BeginString itself.
// forcedKey is the normalised --fix value, or "" when not forced. warn
// is a one-line message to print to stderr when a fallback or mismatch
// occurs; it is empty when no diagnostic is warranted.
func PickSchema(reg *fix.Registry, tokens []Token, forcedKey string) (dict *fix.Dictionary, warn string) {
	beginString := firstValue(tokens, TagBeginString)

	if forcedKey != "" {
		d, ok := reg.Get(forcedKey)
		if !ok {
			// Caller is expected to have validated forcedKey at startup
			// (unknown --fix is a hard CLI error); if we get here
			// anyway, fail safe to the default rather than panic.
			d, _ = reg.Get(fix.DefaultKey)
			return d, fmt.Sprintf("decode: forced dictionary %s not found, falling back to %s", forcedKey, fix.DefaultKey)
		}
		if beginString != "" && fix.KeyFromBeginString(beginString) != forcedKey && beginString != "FIXT.1.1" {
			warn = fmt.Sprintf("decode: forced --fix=%s disagrees with BeginString %s", forcedKey, beginString)
		}
		return d, warn
	}

	if beginString == "FIXT.1.1" {
		applVerID := firstValue(tokens, TagDefaultApplVerID)
		key := fix.ApplVerIDKey(applVerID)
		d, ok := reg.Get(key)
		if !ok {
			d, _ = reg.Get("FIX50SP2")
			return d, fmt.Sprintf("decode: DefaultApplVerID %q maps to unknown dictionary %s, falling back to FIX50SP2", applVerID, key)
		}
		return d, ""
	}

	if beginString != "" {
		key := fix.KeyFromBeginString(beginString)
		if d, ok := reg.Get(key); ok {
			return d, ""
		}
		warn = fmt.Sprintf("decode: unrecognised BeginString %q, falling back to %s", beginString, fix.DefaultKey)
	} else {
		warn = fmt.Sprintf("decode: missing BeginString, falling back to %s", fix.DefaultKey)
	}
	d, _ := reg.Get(fix.DefaultKey)
	return d, warn
}

func firstValue(tokens []Token, tag quickfix.Tag) string {
	for _, t := range tokens {
		if t.Tag == tag {
			return t.Value
		}
	}
	return ""
}
