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

	"fixdecoder/sensitive"

	"github.com/quickfixgo/quickfix"
)

// Obfuscator assigns deterministic aliases to sensitive tag values within
// a single input unit. It owns its own mutable state (per-tag counters +
// an alias table), passed explicitly through the pipeline rather than
// held in a package-level var, and is reset at the boundary between
// inputs.
type Obfuscator struct {
	counters map[quickfix.Tag]int
	aliases  map[quickfix.Tag]map[string]string
}

// NewObfuscator returns an Obfuscator ready for a fresh input.
func NewObfuscator() *Obfuscator {
	return &Obfuscator{
		counters: make(map[quickfix.Tag]int),
		aliases:  make(map[quickfix.Tag]map[string]string),
	}
}

// Reset clears all counters and aliases, to be called at the boundary
// between input files or stdin streams.
func (o *Obfuscator) Reset() {
	o.counters = make(map[quickfix.Tag]int)
	o.aliases = make(map[quickfix.Tag]map[string]string)
}

// Alias returns the display alias for tag/value if tag is sensitive,
// and whether tag was sensitive at all. The same value within one input
// always yields the same alias; a fresh Obfuscator (or one just Reset)
// starts aliases at "0001".
func (o *Obfuscator) Alias(tag quickfix.Tag, value string) (string, bool) {
	name, sensitiveTag := sensitive.Tags[tag]
	if !sensitiveTag {
		return "", false
	}
	byValue, ok := o.aliases[tag]
	if !ok {
		byValue = make(map[string]string)
		o.aliases[tag] = byValue
	}
	if alias, ok := byValue[value]; ok {
		return alias, true
	}
	o.counters[tag]++
	alias := fmt.Sprintf("%s%04d", name, o.counters[tag])
	byValue[value] = alias
	return alias, true
}
