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

// Package fix implements the in-memory FIX dictionary model: fields,
// enums, components, messages, header/trailer, and the registry that
// resolves a dictionary key to its built-in or override content.
package fix

import (
	"strconv"

	"github.com/quickfixgo/quickfix"
)

// Kind is a field's wire type, as declared by a QuickFIX <field type="...">
// attribute.
type Kind string

// Field kinds recognised by the loader and validator. Unknown kinds parsed
// out of an XML document are kept verbatim and treated as opaque strings.
const (
	KindChar                Kind = "CHAR"
	KindInt                 Kind = "INT"
	KindString              Kind = "STRING"
	KindPrice               Kind = "PRICE"
	KindQty                 Kind = "QTY"
	KindAmt                 Kind = "AMT"
	KindLength              Kind = "LENGTH"
	KindNumInGroup          Kind = "NUMINGROUP"
	KindUTCTimestamp        Kind = "UTCTIMESTAMP"
	KindUTCDateOnly         Kind = "UTCDATEONLY"
	KindUTCTimeOnly         Kind = "UTCTIMEONLY"
	KindLocalMktDate        Kind = "LOCALMKTDATE"
	KindMonthYear           Kind = "MONTHYEAR"
	KindMultipleStringValue Kind = "MULTIPLESTRINGVALUE"
	KindMultipleCharValue   Kind = "MULTIPLECHARVALUE"
	KindBoolean             Kind = "BOOLEAN"
	KindCurrency            Kind = "CURRENCY"
	KindCountry             Kind = "COUNTRY"
	KindExchange            Kind = "EXCHANGE"
	KindData                Kind = "DATA"
	KindXMLData             Kind = "XMLDATA"
	KindLanguage            Kind = "LANGUAGE"
	KindPattern             Kind = "PATTERN"
	KindTenor               Kind = "TENOR"
	KindReserved            Kind = "RESERVED100PLUS"
)

// EnumValue is one entry of a field's ordered enum set.
type EnumValue struct {
	Wire        string // the value as it appears on the wire, e.g. "1"
	Label       string // label taken from the schema's description attribute, e.g. "Buy"
	Description string // human-facing description; same as Label when the schema has no separate description
}

// Field is a single FIX tag definition.
type Field struct {
	Number quickfix.Tag
	Name   string
	Kind   Kind
	// Enums preserves declaration order; nil when the field has no enum set.
	Enums []EnumValue
}

// EnumDescription returns the label for a wire value, and whether the value
// is a recognised member of the field's enum set. Fields without an enum
// set always report false.
func (f *Field) EnumDescription(wire string) (string, bool) {
	for _, e := range f.Enums {
		if e.Wire == wire {
			return e.Description, true
		}
	}
	return "", false
}

// MemberKind discriminates the tagged-variant Member type. A single
// walker dispatches on it wherever a member tree is rendered or
// validated.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberComponent
	MemberGroup
)

// Member is one entry of a Component's or Message's ordered member list.
// Exactly one of FieldNumber, ComponentRef or Group is meaningful,
// selected by Kind. Component references are kept by name (never an
// embedded copy) so that cyclic component graphs resolve by lookup at
// walk time instead of requiring eager, possibly-infinite expansion.
type Member struct {
	Kind         MemberKind
	Required     bool
	FieldNumber  quickfix.Tag // valid when Kind == MemberField
	ComponentRef string       // valid when Kind == MemberComponent
	Group        *Group       // valid when Kind == MemberGroup
}

// Group is a repeating group: a counter tag followed by a repeated block
// of member tags. DelimiterTag is the first non-reference field member in
// declaration order -- the tag that marks the start of each entry. Both
// the validator and the prettifier depend on this value.
type Group struct {
	CounterTag   quickfix.Tag
	Members      []Member
	DelimiterTag quickfix.Tag
}

// Component is a named, reusable block of members.
type Component struct {
	Name    string
	Members []Member
}

// Message is one FIX message definition (its msgtype wire code, category,
// and ordered member list).
type Message struct {
	Name     string
	MsgType  string
	Category string
	Members  []Member
}

// Dictionary is a fully-resolved FIX schema: one version's fields, enums,
// components, messages, header and trailer, plus the derived indexes used
// by the tokeniser, prettifier and validator.
type Dictionary struct {
	Key   string // e.g. "FIX44", "FIX50SP2", "FIXT11"
	Major int
	Minor int
	SP    int

	Header  *Component
	Trailer *Component

	fields        map[quickfix.Tag]*Field
	fieldsByName  map[string]*Field
	components    map[string]*Component
	messages      map[string]*Message // keyed by msgtype wire code
	messagesByName map[string]*Message

	// RepeatableTags is the union of member tags of every group reachable
	// from any message in this dictionary.
	RepeatableTags map[quickfix.Tag]bool
	// CounterToGroup maps a group's counter tag to its Group schema.
	CounterToGroup map[quickfix.Tag]*Group
}

func newDictionary(key string) *Dictionary {
	return &Dictionary{
		Key:            key,
		fields:         make(map[quickfix.Tag]*Field),
		fieldsByName:   make(map[string]*Field),
		components:     make(map[string]*Component),
		messages:       make(map[string]*Message),
		messagesByName: make(map[string]*Message),
		RepeatableTags: make(map[quickfix.Tag]bool),
		CounterToGroup: make(map[quickfix.Tag]*Group),
	}
}

// Field looks up a field by tag number.
func (d *Dictionary) Field(tag quickfix.Tag) (*Field, bool) {
	f, ok := d.fields[tag]
	return f, ok
}

// FieldByName looks up a field by its schema name.
func (d *Dictionary) FieldByName(name string) (*Field, bool) {
	f, ok := d.fieldsByName[name]
	return f, ok
}

// Component looks up a component by name.
func (d *Dictionary) Component(name string) (*Component, bool) {
	c, ok := d.components[name]
	return c, ok
}

// Message looks up a message definition by its msgtype wire code.
func (d *Dictionary) Message(msgType string) (*Message, bool) {
	m, ok := d.messages[msgType]
	return m, ok
}

// MessageByName looks up a message definition by its schema name.
func (d *Dictionary) MessageByName(name string) (*Message, bool) {
	m, ok := d.messagesByName[name]
	return m, ok
}

// Messages returns every message definition, for listing modes
// (`--message` without a value).
func (d *Dictionary) Messages() []*Message {
	out := make([]*Message, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, m)
	}
	return out
}

// Fields returns every field definition, for `--info`'s summary table.
func (d *Dictionary) Fields() []*Field {
	out := make([]*Field, 0, len(d.fields))
	for _, f := range d.fields {
		out = append(out, f)
	}
	return out
}

// Components returns every component definition, for `--component`
// without a value.
func (d *Dictionary) Components() []*Component {
	out := make([]*Component, 0, len(d.components))
	for _, c := range d.components {
		out = append(out, c)
	}
	return out
}

// FieldName returns the dictionary name for a tag, falling back to the
// decimal tag number when the tag is unknown -- the prettifier never
// fails to render a line for lack of a name.
func (d *Dictionary) FieldName(tag quickfix.Tag) string {
	if f, ok := d.fields[tag]; ok {
		return f.Name
	}
	return strconv.Itoa(int(tag))
}

// EnumLabel looks up tag's field and returns the label for wire, if both
// the tag and the value are known. A thin convenience over Field +
// EnumDescription for callers (e.g. the order summariser) that only need
// a tag/wire-value pair, not the full Field.
func (d *Dictionary) EnumLabel(tag quickfix.Tag, wire string) (string, bool) {
	if d == nil {
		return "", false
	}
	f, ok := d.fields[tag]
	if !ok {
		return "", false
	}
	return f.EnumDescription(wire)
}

// IsGroupCounter reports whether tag is the counter tag of some group in
// this dictionary.
func (d *Dictionary) IsGroupCounter(tag quickfix.Tag) bool {
	_, ok := d.CounterToGroup[tag]
	return ok
}
