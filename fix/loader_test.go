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

	"github.com/quickfixgo/quickfix"
)

// Tests for dictionary loading behavior.
// These tests verify XML parsing, member-order preservation, group
// delimiter detection, derived index construction, and the load-time
// rejection of malformed or dangling schemas.

const testSchema = `
<fix type="FIX" major="4" minor="4" servicepack="0">
  <header>
    <field name="BeginString" required="Y"/>
    <field name="MsgType" required="Y"/>
  </header>
  <trailer>
    <field name="CheckSum" required="Y"/>
  </trailer>
  <messages>
    <message name="Probe" msgtype="P1" msgcat="app">
      <field name="ProbeID" required="Y"/>
      <component name="Leg" required="N"/>
      <group name="NoSides" required="Y">
        <component name="Leg" required="Y"/>
      </group>
      <field name="SideQty" required="N"/>
    </message>
  </messages>
  <components>
    <component name="Leg">
      <field name="LegSymbol" required="Y"/>
      <component name="LegNested" required="N"/>
    </component>
    <component name="LegNested">
      <field name="LegRatio" required="N"/>
    </component>
  </components>
  <fields>
    <field number="8" name="BeginString" type="STRING"/>
    <field number="10" name="CheckSum" type="STRING"/>
    <field number="35" name="MsgType" type="STRING"/>
    <field number="100" name="ProbeID" type="STRING"/>
    <field number="101" name="NoSides" type="NUMINGROUP"/>
    <field number="102" name="SideQty" type="QTY"/>
    <field number="103" name="LegSymbol" type="STRING"/>
    <field number="104" name="LegRatio" type="FLOAT"/>
    <field number="105" name="Colour" type="CHAR">
      <value enum="R" description="Red"/>
      <value enum="G" description="Green"/>
    </field>
  </fields>
</fix>`

// TestParseDictionary_BuildsIndexes verifies that fields, messages and
// components are all reachable through their lookup maps after a load.
func TestParseDictionary_BuildsIndexes(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}

	if f, ok := d.Field(100); !ok || f.Name != "ProbeID" {
		t.Errorf("tag 100 should resolve to ProbeID, got %v", f)
	}
	if f, ok := d.FieldByName("SideQty"); !ok || f.Number != 102 {
		t.Errorf("SideQty should resolve to 102, got %v", f)
	}
	if m, ok := d.Message("P1"); !ok || m.Name != "Probe" {
		t.Errorf("msgtype P1 should resolve to Probe, got %v", m)
	}
	if _, ok := d.MessageByName("Probe"); !ok {
		t.Error("Probe should resolve by name")
	}
	if _, ok := d.Component("Leg"); !ok {
		t.Error("component Leg should be defined")
	}
}

// TestParseDictionary_EnumOrderPreserved verifies that enum values keep
// their declaration order.
func TestParseDictionary_EnumOrderPreserved(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	f, _ := d.Field(105)
	if len(f.Enums) != 2 || f.Enums[0].Wire != "R" || f.Enums[1].Wire != "G" {
		t.Errorf("enum order should be R then G, got %v", f.Enums)
	}
}

// TestParseDictionary_GroupDelimiterThroughComponent verifies that a
// group whose first member is a component reference resolves its
// delimiter tag through that component's first field.
func TestParseDictionary_GroupDelimiterThroughComponent(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	g, ok := d.CounterToGroup[101]
	if !ok {
		t.Fatal("NoSides should index as a group counter")
	}
	if g.DelimiterTag != 103 {
		t.Errorf("delimiter should resolve to LegSymbol (103), got %d", g.DelimiterTag)
	}
}

// TestParseDictionary_RepeatableTags verifies that the repeatable set is
// exactly the tags reachable inside groups, components included.
func TestParseDictionary_RepeatableTags(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	for _, tag := range []int{103, 104} {
		if !d.RepeatableTags[quickfix.Tag(tag)] {
			t.Errorf("tag %d should be repeatable", tag)
		}
	}
	if d.RepeatableTags[100] || d.RepeatableTags[102] {
		t.Error("tags outside every group should not be repeatable")
	}
}

// TestParseDictionary_MemberOrderPreserved verifies that a message's
// members keep their interleaved field/component/group declaration
// order.
func TestParseDictionary_MemberOrderPreserved(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	m, _ := d.Message("P1")
	if len(m.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(m.Members))
	}
	kinds := []MemberKind{m.Members[0].Kind, m.Members[1].Kind, m.Members[2].Kind, m.Members[3].Kind}
	want := []MemberKind{MemberField, MemberComponent, MemberGroup, MemberField}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("member kinds out of order: %v", kinds)
		}
	}
}

// TestParseDictionary_RejectsDuplicates verifies load-time failure on a
// duplicate tag number.
func TestParseDictionary_RejectsDuplicates(t *testing.T) {
	dup := strings.Replace(testSchema,
		`<field number="102" name="SideQty" type="QTY"/>`,
		`<field number="100" name="SideQty" type="QTY"/>`, 1)
	if _, err := ParseDictionary("FIX44", []byte(dup)); err == nil {
		t.Error("expected a duplicate-tag error")
	}
}

// TestParseDictionary_RejectsDanglingComponentRef verifies load-time
// failure on an unresolved component reference.
func TestParseDictionary_RejectsDanglingComponentRef(t *testing.T) {
	dangling := strings.Replace(testSchema,
		`<component name="Leg" required="N"/>`,
		`<component name="Phantom" required="N"/>`, 1)
	if _, err := ParseDictionary("FIX44", []byte(dangling)); err == nil {
		t.Error("expected a dangling-reference error")
	}
}

// TestParseDictionary_RejectsUnknownFieldRef verifies load-time failure
// when a message references a field absent from <fields>.
func TestParseDictionary_RejectsUnknownFieldRef(t *testing.T) {
	unknown := strings.Replace(testSchema,
		`<field name="ProbeID" required="Y"/>`,
		`<field name="Nonexistent" required="Y"/>`, 1)
	if _, err := ParseDictionary("FIX44", []byte(unknown)); err == nil {
		t.Error("expected an unknown-field error")
	}
}

// TestParseDictionary_RejectsMalformedXML verifies that broken XML fails
// the load rather than yielding a partial dictionary.
func TestParseDictionary_RejectsMalformedXML(t *testing.T) {
	if _, err := ParseDictionary("FIX44", []byte("<fix><messages>")); err == nil {
		t.Error("expected a parse error")
	}
}

// TestLayout_FlattensHeaderBodyTrailer verifies the canonical tag order
// walk: header first, then body (components expanded, groups in place),
// then trailer.
func TestLayout_FlattensHeaderBodyTrailer(t *testing.T) {
	d, err := ParseDictionary("FIX44", []byte(testSchema))
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	m, _ := d.Message("P1")
	items := Layout(d, m)

	var tags []int
	for _, it := range items {
		tags = append(tags, int(it.Tag))
	}
	// 8,35 header; 100 field; 103,104 via Leg; 101 counter; 103,104 in
	// group; 102 trailing field; 10 trailer.
	want := []int{8, 35, 100, 103, 104, 101, 103, 104, 102, 10}
	if len(tags) != len(want) {
		t.Fatalf("layout length %d, want %d (%v)", len(tags), len(want), tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("layout mismatch at %d: got %v want %v", i, tags, want)
		}
	}
	// Tags inside the group carry the marker the validator keys on.
	if !items[6].InGroup || items[2].InGroup {
		t.Error("InGroup markers misplaced")
	}
}
