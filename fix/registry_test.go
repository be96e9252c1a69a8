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
	"strings"
	"testing"
)

// Tests for dictionary registry behavior.
// These tests verify built-in resolution, key normalisation, FIXT11
// session-block injection for 5.0+ dictionaries, and override layering.

// TestRegistry_EveryBuiltinLoads verifies that each compiled-in key
// resolves to a parseable dictionary with NewOrderSingle defined.
func TestRegistry_EveryBuiltinLoads(t *testing.T) {
	reg := NewRegistry()
	for _, key := range BuiltinKeys {
		d, ok := reg.Get(key)
		if !ok {
			t.Errorf("built-in %s failed to load", key)
			continue
		}
		if key == "FIXT11" {
			continue // session-only dictionary
		}
		if _, ok := d.Message("D"); !ok {
			t.Errorf("%s should define NewOrderSingle", key)
		}
	}
}

// TestNormalizeKey_AcceptedSpellings verifies the --fix canonicalisation
// rules: strip dots, uppercase, prefix FIX.
func TestNormalizeKey_AcceptedSpellings(t *testing.T) {
	cases := map[string]string{
		"44":      "FIX44",
		"4.4":     "FIX44",
		"FIX44":   "FIX44",
		"fix4.4":  "FIX44",
		"T11":     "FIXT11",
		"t1.1":    "FIXT11",
		"5.0sp2":  "FIX50SP2",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestApplVerIDKey_MappingAndFallback verifies the tag-1137 code table
// and its FIX50SP2 fallback.
func TestApplVerIDKey_MappingAndFallback(t *testing.T) {
	if got := ApplVerIDKey("9"); got != "FIX50SP2" {
		t.Errorf("code 9 should map to FIX50SP2, got %s", got)
	}
	if got := ApplVerIDKey("6"); got != "FIX44" {
		t.Errorf("code 6 should map to FIX44, got %s", got)
	}
	if got := ApplVerIDKey("unknown"); got != "FIX50SP2" {
		t.Errorf("unknown codes should fall back to FIX50SP2, got %s", got)
	}
}

// TestRegistry_InjectsSessionBlocksInto50 verifies that a 5.0+
// dictionary with no header/trailer of its own receives FIXT11's, by
// reference rather than copy.
func TestRegistry_InjectsSessionBlocksInto50(t *testing.T) {
	reg := NewRegistry()
	d50, ok := reg.Get("FIX50SP2")
	if !ok {
		t.Fatal("FIX50SP2 failed to load")
	}
	t11, _ := reg.Get("FIXT11")

	if d50.Header == nil || d50.Trailer == nil {
		t.Fatal("FIX50SP2 should have injected session blocks")
	}
	if d50.Header != t11.Header {
		t.Error("injection should graft FIXT11's header by reference")
	}
}

// TestRegistry_OverridePreferredAndLaterWins verifies that a loaded
// override shadows the built-in under the same key, and a second
// override under that key replaces the first.
func TestRegistry_OverridePreferredAndLaterWins(t *testing.T) {
	reg := NewRegistry()

	first := strings.Replace(testSchema, `name="Probe"`, `name="ProbeOne"`, 1)
	second := strings.Replace(testSchema, `name="Probe"`, `name="ProbeTwo"`, 1)

	if _, err := reg.LoadOverride([]byte(first)); err != nil {
		t.Fatalf("first override: %v", err)
	}
	d, ok := reg.Get("FIX44")
	if !ok {
		t.Fatal("FIX44 should resolve")
	}
	if _, ok := d.MessageByName("ProbeOne"); !ok {
		t.Error("override should shadow the built-in FIX44")
	}

	if _, err := reg.LoadOverride([]byte(second)); err != nil {
		t.Fatalf("second override: %v", err)
	}
	d, _ = reg.Get("FIX44")
	if _, ok := d.MessageByName("ProbeTwo"); !ok {
		t.Error("the later override should win")
	}
	if !reg.IsOverride("FIX44") {
		t.Error("FIX44 should report as overridden")
	}
}

// TestRegistry_MalformedOverrideRejectedBuiltinsRemain verifies that a
// bad --xml document is rejected without disturbing the built-in set.
func TestRegistry_MalformedOverrideRejectedBuiltinsRemain(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.LoadOverride([]byte("not xml at all")); err == nil {
		t.Fatal("expected a load error")
	}
	if _, ok := reg.Get("FIX44"); !ok {
		t.Error("built-ins should survive a rejected override")
	}
}

// TestRegistry_KeysIncludesOverrides verifies the key listing used by
// --info: all built-ins plus any override-only keys, once each.
func TestRegistry_KeysIncludesOverrides(t *testing.T) {
	reg := NewRegistry()
	keys := reg.Keys()
	if len(keys) != len(BuiltinKeys) {
		t.Fatalf("expected %d keys, got %d", len(BuiltinKeys), len(keys))
	}
	if _, err := reg.LoadOverride([]byte(testSchema)); err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if got := len(reg.Keys()); got != len(BuiltinKeys) {
		t.Errorf("an override of an existing key should not add a key, got %d", got)
	}
}

// TestKeyFromBeginString verifies the dot-stripping derivation.
func TestKeyFromBeginString(t *testing.T) {
	if got := KeyFromBeginString("FIX.4.4"); got != "FIX44" {
		t.Errorf("got %q", got)
	}
	if got := KeyFromBeginString("FIXT.1.1"); got != "FIXT11" {
		t.Errorf("got %q", got)
	}
}
