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
	"strings"
	"testing"
)

// Tests for prettifier rendering behavior.
// These tests verify canonical reordering, missing-required annotation,
// unexpected-tag retention, group-entry expansion and enum labelling,
// all with colour off so assertions run on plain text.

func prettifyRaw(t *testing.T, raw string, opts Options) string {
	t.Helper()
	dict := fix44Dict(t)
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return Prettify(dict, "", tokens, raw, NewObfuscator(), nil, opts)
}

// renderedTagOrder extracts the leading tag number of each field row,
// skipping the echoed raw line (whose first token contains '=') and any
// findings block.
func renderedTagOrder(out string) []string {
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !allDigits(fields[0]) {
			continue
		}
		tags = append(tags, fields[0])
	}
	return tags
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TestPrettify_CanonicalOrderIsStable verifies that a message already in
// canonical order renders its tags in the same sequence as the input.
func TestPrettify_CanonicalOrderIsStable(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	out := prettifyRaw(t, raw, Options{})

	want := []string{"8", "9", "35", "49", "56", "34", "52", "11", "55", "54", "40", "60", "10"}
	got := renderedTagOrder(out)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("tag order mismatch:\n got %v\nwant %v", got, want)
	}
}

// TestPrettify_ReordersDisplacedHeaderTags verifies that header tags
// observed out of position move to their canonical location rather than
// duplicating.
func TestPrettify_ReordersDisplacedHeaderTags(t *testing.T) {
	// 49/56 displaced to the end of the body.
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=D", "34=1", "52=20240101-00:00:00",
		"11=X", "55=IBM", "54=1", "40=1", "60=20240101-00:00:00",
		"49=A", "56=B",
	)
	out := prettifyRaw(t, raw, Options{})

	got := renderedTagOrder(out)
	want := []string{"8", "9", "35", "49", "56", "34", "52", "11", "55", "54", "40", "60", "10"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("displaced header tags should reorder canonically:\n got %v\nwant %v", got, want)
	}
	if strings.Count(out, "SenderCompID") != 1 {
		t.Errorf("SenderCompID should render exactly once:\n%s", out)
	}
}

// TestPrettify_AnnotatesMissingRequired verifies that a missing required
// tag renders one MISSING annotation naming the field.
func TestPrettify_AnnotatesMissingRequired(t *testing.T) {
	var fields []string
	for _, f := range validNewOrderFields() {
		if !strings.HasPrefix(f, "55=") {
			fields = append(fields, f)
		}
	}
	raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)
	out := prettifyRaw(t, raw, Options{})

	if strings.Count(out, "MISSING Symbol (55)") != 1 {
		t.Errorf("expected exactly one missing annotation for Symbol:\n%s", out)
	}
}

// TestPrettify_RetainsUnexpectedTags verifies that a tag unknown to the
// message schema still renders, annotated as unexpected.
func TestPrettify_RetainsUnexpectedTags(t *testing.T) {
	fields := append(validNewOrderFields(), "9999=mystery")
	raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)
	out := prettifyRaw(t, raw, Options{})

	if !strings.Contains(out, "9999") || !strings.Contains(out, "(unexpected)") {
		t.Errorf("unexpected tag should render with its annotation:\n%s", out)
	}
	if !strings.Contains(out, "mystery") {
		t.Errorf("unexpected tag's value should be preserved:\n%s", out)
	}
}

// TestPrettify_EnumLabelsRendered verifies that a known enum code shows
// its dictionary label alongside the raw value.
func TestPrettify_EnumLabelsRendered(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	out := prettifyRaw(t, raw, Options{})

	if !strings.Contains(out, "Buy") {
		t.Errorf("Side=1 should label as Buy:\n%s", out)
	}
	if !strings.Contains(out, "Market") {
		t.Errorf("OrdType=1 should label as Market:\n%s", out)
	}
}

// TestPrettify_GroupEntriesExpand verifies that each repeating-group
// entry renders its member fields, indented under the counter tag.
func TestPrettify_GroupEntriesExpand(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=V", "49=A", "56=B", "34=1", "52=20240101-00:00:00",
		"262=req1", "263=1", "264=0",
		"267=2", "269=0", "269=1",
		"146=2", "55=IBM", "55=MSFT",
	)
	out := prettifyRaw(t, raw, Options{})

	// The trailing space leaves out the NoMDEntryTypes counter row, whose
	// name also contains "MDEntryType".
	if strings.Count(out, "MDEntryType ") != 2 {
		t.Errorf("both MDEntryType entries should render:\n%s", out)
	}
	if !strings.Contains(out, "IBM") || !strings.Contains(out, "MSFT") {
		t.Errorf("both NoRelatedSym entries should render:\n%s", out)
	}
}

// TestPrettify_SecretAliasesSensitiveValues verifies that --secret
// replaces a sensitive value with its alias in the rendering.
func TestPrettify_SecretAliasesSensitiveValues(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	dict := fix44Dict(t)
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	out := Prettify(dict, "", tokens, raw, NewObfuscator(), nil, Options{Secret: true})

	if !strings.Contains(out, "ClOrdID0001") {
		t.Errorf("ClOrdID should render aliased:\n%s", out)
	}
}

// TestPrettify_FindingsBlockFollowsMessage verifies that validator
// findings render after the field rows, not interleaved.
func TestPrettify_FindingsBlockFollowsMessage(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	dict := fix44Dict(t)
	tokens, _ := Tokenize(raw, DefaultDelimiter)
	findings := Validate(dict, raw, tokens, DefaultDelimiter)

	out := Prettify(dict, "", tokens, raw, nil, findings, Options{})
	if !strings.Contains(out, "validate: no findings") {
		t.Errorf("a clean message should render the no-findings line:\n%s", out)
	}
}
