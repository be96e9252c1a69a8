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
	"strings"
	"testing"

	"fixdecoder/fix"
)

// Tests for protocol validation behavior.
// These tests verify each check against hand-framed messages: framing
// (BodyLength, CheckSum), required fields, type and enum conformance,
// group structure, and field order.

// frameRaw assembles a full FIX byte run from body fields (everything
// after BodyLength, excluding CheckSum), computing BodyLength and
// CheckSum the way a conforming engine would.
func frameRaw(beginString string, delim byte, bodyFields ...string) string {
	var body strings.Builder
	for _, f := range bodyFields {
		body.WriteString(f)
		body.WriteByte(delim)
	}
	head := fmt.Sprintf("8=%s%c9=%d%c", beginString, delim, body.Len(), delim)
	full := head + body.String()
	sum := 0
	for i := 0; i < len(full); i++ {
		sum += int(full[i])
	}
	return full + fmt.Sprintf("10=%03d%c", sum%256, delim)
}

func fix44Dict(t *testing.T) *fix.Dictionary {
	t.Helper()
	d, ok := fix.NewRegistry().Get("FIX44")
	if !ok {
		t.Fatal("FIX44 built-in dictionary missing")
	}
	return d
}

// validNewOrderFields is a canonical-order NewOrderSingle body that
// satisfies every required member of the FIX44 dictionary.
func validNewOrderFields() []string {
	return []string{
		"35=D", "49=A", "56=B", "34=1", "52=20240101-00:00:00",
		"11=X", "55=IBM", "54=1", "40=1", "60=20240101-00:00:00",
	}
}

func validate(t *testing.T, raw string) []Finding {
	t.Helper()
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return Validate(fix44Dict(t), raw, tokens, DefaultDelimiter)
}

func errorsOnly(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// TestValidate_WellFormedMessagePasses verifies that a correctly framed,
// complete NewOrderSingle produces no findings at all.
func TestValidate_WellFormedMessagePasses(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)

	findings := validate(t, raw)
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

// TestValidate_MissingRequiredField verifies that removing exactly one
// required tag yields exactly one missing-required finding, naming it.
func TestValidate_MissingRequiredField(t *testing.T) {
	var fields []string
	for _, f := range validNewOrderFields() {
		if strings.HasPrefix(f, "55=") {
			continue
		}
		fields = append(fields, f)
	}
	raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)

	findings := validate(t, raw)
	var missing []Finding
	for _, f := range findings {
		if strings.Contains(f.Message, "required") {
			missing = append(missing, f)
		}
	}
	if len(missing) != 1 {
		t.Fatalf("expected exactly one missing-required finding, got %v", findings)
	}
	if missing[0].Tag != 55 {
		t.Errorf("finding should point at tag 55, got %d", missing[0].Tag)
	}
}

// TestValidate_ChecksumMismatch verifies that mutating a single byte of
// the body (without re-framing) yields a checksum finding.
func TestValidate_ChecksumMismatch(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	corrupted := strings.Replace(raw, "55=IBM", "55=IBN", 1)

	findings := validate(t, corrupted)
	found := false
	for _, f := range findings {
		if f.Tag == TagCheckSum {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a CheckSum finding, got %v", findings)
	}
}

// TestValidate_BodyLengthMismatch verifies that a wrong BodyLength value
// is reported against tag 9.
func TestValidate_BodyLengthMismatch(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, validNewOrderFields()...)
	// Inflate the declared length without moving any bytes.
	raw = strings.Replace(raw, "\x019=", "\x019=9", 1)

	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	findings := Validate(fix44Dict(t), raw, tokens, DefaultDelimiter)
	found := false
	for _, f := range findings {
		if f.Tag == TagBodyLength {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a BodyLength finding, got %v", findings)
	}
}

// TestValidate_UnknownMsgTypeSkipsStructuralChecks verifies that an
// unrecognised MsgType is reported, and that no required-field findings
// follow (framing checks still run).
func TestValidate_UnknownMsgTypeSkipsStructuralChecks(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter, "35=ZZ", "49=A", "56=B")

	findings := validate(t, raw)
	if len(findings) == 0 {
		t.Fatal("expected a MsgType finding")
	}
	for _, f := range findings {
		if strings.Contains(f.Message, "required") {
			t.Errorf("structural checks should be skipped, got %v", f)
		}
	}
	if findings[0].Tag != TagMsgType {
		t.Errorf("first finding should be about MsgType, got %v", findings[0])
	}
}

// TestValidate_EnumConformance verifies that an unknown enum code on a
// field with a defined enum set is reported.
func TestValidate_EnumConformance(t *testing.T) {
	fields := validNewOrderFields()
	for i, f := range fields {
		if f == "54=1" {
			fields[i] = "54=7" // not a defined Side
		}
	}
	raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)

	findings := validate(t, raw)
	found := false
	for _, f := range findings {
		if f.Tag == TagSide && strings.Contains(f.Message, "enum") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Side enum finding, got %v", findings)
	}
}

// TestValidate_TypeConformance verifies INT and UTCTIMESTAMP parsing
// failures each produce a finding against the right tag.
func TestValidate_TypeConformance(t *testing.T) {
	cases := []struct {
		name    string
		replace [2]string
		tag     int
	}{
		{"bad int seqnum", [2]string{"34=1", "34=one"}, 34},
		{"bad timestamp", [2]string{"52=20240101-00:00:00", "52=yesterday"}, 52},
	}
	for _, c := range cases {
		fields := validNewOrderFields()
		for i, f := range fields {
			if f == c.replace[0] {
				fields[i] = c.replace[1]
			}
		}
		raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)
		findings := validate(t, raw)
		found := false
		for _, f := range findings {
			if int(f.Tag) == c.tag && f.Severity == SeverityError {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected a finding for tag %d, got %v", c.name, c.tag, findings)
		}
	}
}

// TestValidate_GroupCounterMismatch verifies that a group whose counter
// disagrees with the observed entry count is reported.
func TestValidate_GroupCounterMismatch(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=V", "49=A", "56=B", "34=1", "52=20240101-00:00:00",
		"262=req1", "263=1", "264=0",
		"267=2", "269=0", // declares two entry types, provides one
		"146=1", "55=IBM",
	)

	findings := validate(t, raw)
	found := false
	for _, f := range findings {
		if f.Tag == 267 && strings.Contains(f.Message, "entries") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a NoMDEntryTypes counter finding, got %v", findings)
	}
}

// TestValidate_GroupStructureAccepted verifies that a well-formed
// repeating group (counter matches, entries delimiter-led) passes.
func TestValidate_GroupStructureAccepted(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=V", "49=A", "56=B", "34=1", "52=20240101-00:00:00",
		"262=req1", "263=1", "264=0",
		"267=2", "269=0", "269=1",
		"146=2", "55=IBM", "55=MSFT",
	)

	if findings := errorsOnly(validate(t, raw)); len(findings) != 0 {
		t.Errorf("expected no errors, got %v", findings)
	}
}

// partySchema is an override-style dictionary whose group carries more
// than one member, so requiredness inside an entry is distinguishable
// from the delimiter count.
const partySchema = `<fix type="FIX" major="4" minor="4" servicepack="0">
  <header>
    <field name="BeginString" required="Y"/>
    <field name="MsgType" required="Y"/>
  </header>
  <trailer>
    <field name="CheckSum" required="Y"/>
  </trailer>
  <messages>
    <message name="PartyProbe" msgtype="PP" msgcat="app">
      <field name="ClOrdID" required="Y"/>
      <group name="NoPartyIDs" required="Y">
        <field name="PartyID" required="Y"/>
        <field name="PartyRole" required="Y"/>
        <field name="PartySubID" required="N"/>
      </group>
    </message>
  </messages>
  <components/>
  <fields>
    <field number="8" name="BeginString" type="STRING"/>
    <field number="9" name="BodyLength" type="LENGTH"/>
    <field number="10" name="CheckSum" type="STRING"/>
    <field number="35" name="MsgType" type="STRING"/>
    <field number="11" name="ClOrdID" type="STRING"/>
    <field number="453" name="NoPartyIDs" type="NUMINGROUP"/>
    <field number="448" name="PartyID" type="STRING"/>
    <field number="452" name="PartyRole" type="STRING"/>
    <field number="523" name="PartySubID" type="STRING"/>
  </fields>
</fix>`

func partyDict(t *testing.T) *fix.Dictionary {
	t.Helper()
	d, err := fix.ParseDictionary("FIX44", []byte(partySchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	return d
}

// TestValidate_RequiredGroupMemberMissingFromEntry verifies that a
// required, non-delimiter member absent from one entry of a repeating
// group yields exactly one missing-required finding for that tag.
func TestValidate_RequiredGroupMemberMissingFromEntry(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=PP", "11=X",
		"453=2",
		"448=BANK1", "452=1", "523=desk",
		"448=BANK2", // PartyRole missing from the second entry
	)
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	findings := Validate(partyDict(t), raw, tokens, DefaultDelimiter)
	var missing []Finding
	for _, f := range findings {
		if strings.Contains(f.Message, "required") {
			missing = append(missing, f)
		}
	}
	if len(missing) != 1 {
		t.Fatalf("expected exactly one missing-required finding, got %v", findings)
	}
	if missing[0].Tag != 452 || !strings.Contains(missing[0].Message, "entry 2") {
		t.Errorf("finding should name PartyRole in entry 2, got %v", missing[0])
	}
}

// TestValidate_CompleteGroupEntriesPass verifies that entries carrying
// every required member (optional ones absent) produce no findings.
func TestValidate_CompleteGroupEntriesPass(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=PP", "11=X",
		"453=2",
		"448=BANK1", "452=1",
		"448=BANK2", "452=13", "523=desk",
	)
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	if findings := Validate(partyDict(t), raw, tokens, DefaultDelimiter); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

// TestValidate_EntryNotStartingWithDelimiter verifies that an entry
// whose first observed tag is not the group's delimiter is reported.
func TestValidate_EntryNotStartingWithDelimiter(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=PP", "11=X",
		"453=1",
		"452=1", "448=BANK1", // role before the delimiter tag
	)
	tokens, err := Tokenize(raw, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	findings := Validate(partyDict(t), raw, tokens, DefaultDelimiter)
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "delimiter") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a delimiter finding, got %v", findings)
	}
}

// TestValidate_DuplicateNonGroupTag verifies that a duplicated tag not
// declared repeatable is reported.
func TestValidate_DuplicateNonGroupTag(t *testing.T) {
	fields := append(validNewOrderFields(), "11=X")
	raw := frameRaw("FIX.4.4", DefaultDelimiter, fields...)

	findings := validate(t, raw)
	found := false
	for _, f := range findings {
		if f.Tag == TagClOrdID && strings.Contains(f.Message, "duplicated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicate ClOrdID finding, got %v", findings)
	}
}

// TestValidate_OutOfOrderField verifies that a tag appearing before its
// canonical position is reported.
func TestValidate_OutOfOrderField(t *testing.T) {
	raw := frameRaw("FIX.4.4", DefaultDelimiter,
		"35=D", "49=A", "56=B", "34=1", "52=20240101-00:00:00",
		"60=20240101-00:00:00", "11=X", "55=IBM", "54=1", "40=1",
	)

	findings := validate(t, raw)
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "order") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an out-of-order finding, got %v", findings)
	}
}
