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

package fix

import (
	"encoding/xml"
	"fmt"
	"log"
	"strings"
	"sync"

	"fixdecoder/fix/dictdata"
)

// BuiltinKeys is the fixed set of dictionary keys compiled in.
var BuiltinKeys = []string{
	"FIX27", "FIX30", "FIX40", "FIX41", "FIX42", "FIX43", "FIX44",
	"FIX50", "FIX50SP1", "FIX50SP2", "FIXT11",
}

// builtinSource maps a key to the embedded XML document that backs it.
// FIX27, FIX30 and FIX40 share FIX40's document.
var builtinSource = map[string][]byte{
	"FIX27":    dictdata.FIX40,
	"FIX30":    dictdata.FIX40,
	"FIX40":    dictdata.FIX40,
	"FIX41":    dictdata.FIX41,
	"FIX42":    dictdata.FIX42,
	"FIX43":    dictdata.FIX43,
	"FIX44":    dictdata.FIX44,
	"FIX50":    dictdata.FIX50,
	"FIX50SP1": dictdata.FIX50SP1,
	"FIX50SP2": dictdata.FIX50SP2,
	"FIXT11":   dictdata.FIXT11,
}

// DefaultKey is used whenever schema detection fails outright.
const DefaultKey = "FIX44"

// applVerIDToKey maps DefaultApplVerID (tag 1137) wire codes to a
// dictionary key, for FIXT.1.1 session wrappers.
var applVerIDToKey = map[string]string{
	"0": "FIX27",
	"1": "FIX30",
	"2": "FIX40",
	"3": "FIX41",
	"4": "FIX42",
	"5": "FIX43",
	"6": "FIX44",
	"7": "FIX50",
	"8": "FIX50SP1",
	"9": "FIX50SP2",
}

// ApplVerIDKey resolves a DefaultApplVerID wire code to a dictionary key,
// falling back to FIX50SP2 when the code is unrecognised.
func ApplVerIDKey(applVerID string) string {
	if k, ok := applVerIDToKey[applVerID]; ok {
		return k
	}
	return "FIX50SP2"
}

// KeyFromBeginString derives a dictionary key from a classic BeginString
// such as "FIX.4.4" -> "FIX44".
func KeyFromBeginString(beginString string) string {
	return strings.ReplaceAll(beginString, ".", "")
}

// NormalizeKey canonicalises a user-supplied --fix value: strip dots,
// uppercase, prepend FIX if absent.
func NormalizeKey(v string) string {
	v = strings.ToUpper(strings.ReplaceAll(v, ".", ""))
	if !strings.HasPrefix(v, "FIX") {
		v = "FIX" + v
	}
	return v
}

// Registry holds the built-in dictionaries plus any --xml overrides.
// Built-ins are parsed lazily and cached; overrides are registered
// explicitly. Lookup prefers overrides.
type Registry struct {
	mu        sync.RWMutex
	builtins  map[string]*Dictionary
	overrides map[string]*Dictionary
}

// NewRegistry constructs an empty registry. Built-ins are parsed on first
// use, not eagerly, so that --message/--component/--tag lookups against a
// single key don't pay the cost of parsing every built-in document.
func NewRegistry() *Registry {
	return &Registry{
		builtins:  make(map[string]*Dictionary),
		overrides: make(map[string]*Dictionary),
	}
}

// Get resolves key to a Dictionary, preferring an override, then a
// built-in, injecting FIXT11 header/trailer for 5.0+ dictionaries that
// lack them. Returns false if key is neither a known override nor a
// known built-in.
func (r *Registry) Get(key string) (*Dictionary, bool) {
	r.mu.RLock()
	if d, ok := r.overrides[key]; ok {
		r.mu.RUnlock()
		return d, true
	}
	if d, ok := r.builtins[key]; ok {
		r.mu.RUnlock()
		return d, true
	}
	r.mu.RUnlock()

	src, ok := builtinSource[key]
	if !ok {
		return nil, false
	}
	d, err := ParseDictionary(key, src)
	if err != nil {
		log.Printf("fix: built-in dictionary %s failed to parse: %v", key, err)
		return nil, false
	}
	r.injectSessionBlocks(d)

	r.mu.Lock()
	r.builtins[key] = d
	r.mu.Unlock()
	return d, true
}

// injectSessionBlocks grafts header/trailer from FIXT11 into a 5.0+
// dictionary that has none of its own, so session blocks are always
// available. The graft is by reference: the 5.0+ dictionary's Header
// and Trailer fields point at FIXT11's Component values directly, never
// a deep copy, and tag numbers are not rewritten.
func (r *Registry) injectSessionBlocks(d *Dictionary) {
	if d.Major < 5 {
		return
	}
	if d.Header != nil && d.Trailer != nil {
		return
	}
	t11, ok := r.Get("FIXT11")
	if !ok || d.Key == "FIXT11" {
		return
	}
	if d.Header == nil {
		d.Header = t11.Header
	}
	if d.Trailer == nil {
		d.Trailer = t11.Trailer
	}
}

// LoadOverride parses xmlDoc and registers it as an override. If another
// override already occupies the resolved key, the new one wins and a
// replacement warning is written to stderr.
func (r *Registry) LoadOverride(xmlDoc []byte) (*Dictionary, error) {
	key, major, minor, sp, err := peekVersion(xmlDoc)
	if err != nil {
		return nil, fmt.Errorf("fix: malformed override XML: %w", err)
	}
	d, err := ParseDictionary(key, xmlDoc)
	if err != nil {
		return nil, err
	}
	d.Major, d.Minor, d.SP = major, minor, sp
	r.injectSessionBlocks(d)

	r.mu.Lock()
	if _, dup := r.overrides[key]; dup {
		log.Printf("fix: dictionary key %s already loaded from an earlier --xml; replacing with the later file", key)
	}
	r.overrides[key] = d
	r.mu.Unlock()
	return d, nil
}

// Keys returns every dictionary key known to the registry: the fixed
// built-in set plus any keys currently loaded from --xml overrides, each
// exactly once. Used by --info and the interactive explorer's dictionary
// listing.
func (r *Registry) Keys() []string {
	seen := make(map[string]bool, len(BuiltinKeys))
	out := make([]string, 0, len(BuiltinKeys))
	for _, k := range BuiltinKeys {
		seen[k] = true
		out = append(out, k)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.overrides {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// IsOverride reports whether key is currently backed by a --xml override
// rather than (or in addition to) a built-in.
func (r *Registry) IsOverride(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.overrides[key]
	return ok
}

// peekVersion parses just enough of the document to compute its registry
// key ("FIX<major><minor>[SP<sp>]" or "FIXT11") ahead of the full parse.
func peekVersion(xmlDoc []byte) (key string, major, minor, sp int, err error) {
	var raw rawFix
	if err = xml.Unmarshal(xmlDoc, &raw); err != nil {
		return "", 0, 0, 0, err
	}
	major, minor, sp = raw.Major, raw.Minor, raw.SP
	if strings.EqualFold(raw.Type, "FIXT") {
		return "FIXT11", major, minor, sp, nil
	}
	key = fmt.Sprintf("FIX%d%d", major, minor)
	if sp > 0 {
		key = fmt.Sprintf("%sSP%d", key, sp)
	}
	return key, major, minor, sp, nil
}
