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
	"strconv"

	"github.com/quickfixgo/quickfix"
)

// rawNode is one <field>/<component>/<group> element as it occurs inside a
// message, component or group body. Order is preserved by streaming
// through xml.Decoder tokens rather than unmarshalling into parallel
// slices, since QuickFIX schemas interleave field/component/group
// children and the canonical tag order depends on that interleaving.
type rawNode struct {
	Kind     MemberKind
	Name     string
	Required bool
	Children []rawNode
}

func attrOf(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func decodeChildren(d *xml.Decoder, start xml.StartElement) ([]rawNode, error) {
	var out []rawNode
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node, err := decodeNode(d, t)
			if err != nil {
				return nil, err
			}
			out = append(out, node)
		case xml.EndElement:
			if t.Name == start.Name {
				return out, nil
			}
		}
	}
}

func decodeNode(d *xml.Decoder, se xml.StartElement) (rawNode, error) {
	n := rawNode{Name: attrOf(se, "name"), Required: attrOf(se, "required") == "Y"}
	switch se.Name.Local {
	case "field":
		n.Kind = MemberField
		if err := d.Skip(); err != nil {
			return n, err
		}
	case "component":
		n.Kind = MemberComponent
		if err := d.Skip(); err != nil {
			return n, err
		}
	case "group":
		n.Kind = MemberGroup
		children, err := decodeChildren(d, se)
		if err != nil {
			return n, err
		}
		n.Children = children
	default:
		if err := d.Skip(); err != nil {
			return n, err
		}
	}
	return n, nil
}

type rawBlock struct{ Children []rawNode }

func (b *rawBlock) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	children, err := decodeChildren(d, start)
	if err != nil {
		return err
	}
	b.Children = children
	return nil
}

type rawMessage struct {
	Name     string
	MsgType  string
	MsgCat   string
	Children []rawNode
}

func (m *rawMessage) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	m.Name = attrOf(start, "name")
	m.MsgType = attrOf(start, "msgtype")
	m.MsgCat = attrOf(start, "msgcat")
	children, err := decodeChildren(d, start)
	if err != nil {
		return err
	}
	m.Children = children
	return nil
}

type rawComponentDef struct {
	Name     string
	Children []rawNode
}

func (c *rawComponentDef) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Name = attrOf(start, "name")
	children, err := decodeChildren(d, start)
	if err != nil {
		return err
	}
	c.Children = children
	return nil
}

type rawFieldDef struct {
	Number int
	Name   string
	Type   string
	Enums  []EnumValue
}

func (f *rawFieldDef) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	f.Name = attrOf(start, "name")
	f.Type = attrOf(start, "type")
	if n := attrOf(start, "number"); n != "" {
		f.Number, _ = strconv.Atoi(n)
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				enum := attrOf(t, "enum")
				desc := attrOf(t, "description")
				f.Enums = append(f.Enums, EnumValue{Wire: enum, Label: desc, Description: desc})
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type rawFix struct {
	XMLName    xml.Name `xml:"fix"`
	Type       string   `xml:"type,attr"`
	Major      int      `xml:"major,attr"`
	Minor      int      `xml:"minor,attr"`
	SP         int      `xml:"servicepack,attr"`
	Header     *rawBlock `xml:"header"`
	Trailer    *rawBlock `xml:"trailer"`
	Messages   []rawMessage      `xml:"messages>message"`
	Components []rawComponentDef `xml:"components>component"`
	Fields     []rawFieldDef     `xml:"fields>field"`
}

// ParseDictionary parses a QuickFIX-style XML document into a fully
// resolved Dictionary keyed by key. Errors are line-addressable through
// the wrapped xml.SyntaxError where applicable.
func ParseDictionary(key string, xmlDoc []byte) (*Dictionary, error) {
	var raw rawFix
	if err := xml.Unmarshal(xmlDoc, &raw); err != nil {
		return nil, fmt.Errorf("fix: parse %s: %w", key, err)
	}

	d := newDictionary(key)
	d.Major, d.Minor, d.SP = raw.Major, raw.Minor, raw.SP

	for _, rf := range raw.Fields {
		tag := quickfix.Tag(rf.Number)
		if _, dup := d.fields[tag]; dup {
			return nil, fmt.Errorf("fix: %s: duplicate tag number %d", key, tag)
		}
		if _, dup := d.fieldsByName[rf.Name]; dup {
			return nil, fmt.Errorf("fix: %s: duplicate field name %q", key, rf.Name)
		}
		f := &Field{Number: tag, Name: rf.Name, Kind: Kind(rf.Type), Enums: rf.Enums}
		d.fields[tag] = f
		d.fieldsByName[rf.Name] = f
	}

	for _, rc := range raw.Components {
		members, err := convertMembers(d, rc.Children)
		if err != nil {
			return nil, fmt.Errorf("fix: %s: component %s: %w", key, rc.Name, err)
		}
		d.components[rc.Name] = &Component{Name: rc.Name, Members: members}
	}

	for _, rm := range raw.Messages {
		members, err := convertMembers(d, rm.Children)
		if err != nil {
			return nil, fmt.Errorf("fix: %s: message %s: %w", key, rm.Name, err)
		}
		if _, dup := d.messages[rm.MsgType]; dup {
			return nil, fmt.Errorf("fix: %s: duplicate msgtype %q", key, rm.MsgType)
		}
		msg := &Message{Name: rm.Name, MsgType: rm.MsgType, Category: rm.MsgCat, Members: members}
		d.messages[rm.MsgType] = msg
		d.messagesByName[rm.Name] = msg
	}

	if raw.Header != nil {
		members, err := convertMembers(d, raw.Header.Children)
		if err != nil {
			return nil, fmt.Errorf("fix: %s: header: %w", key, err)
		}
		d.Header = &Component{Name: "Header", Members: members}
	}
	if raw.Trailer != nil {
		members, err := convertMembers(d, raw.Trailer.Children)
		if err != nil {
			return nil, fmt.Errorf("fix: %s: trailer: %w", key, err)
		}
		d.Trailer = &Component{Name: "Trailer", Members: members}
	}

	if err := checkDanglingComponentRefs(d); err != nil {
		return nil, fmt.Errorf("fix: %s: %w", key, err)
	}

	visiting := make(map[string]bool)
	if d.Header != nil {
		collectGroups(d, d.Header.Members, visiting)
	}
	if d.Trailer != nil {
		collectGroups(d, d.Trailer.Members, visiting)
	}
	for _, m := range d.messages {
		collectGroups(d, m.Members, visiting)
	}

	// A group with no direct field member has none to act as its
	// delimiter; resolve it through the component now
	// that every component is loaded.
	for _, g := range d.CounterToGroup {
		if g.DelimiterTag == 0 {
			g.DelimiterTag = firstFieldTag(d, g.Members, make(map[string]bool))
		}
	}

	return d, nil
}

// firstFieldTag finds the first field tag reachable from members in
// declaration order, expanding component references by lookup.
func firstFieldTag(d *Dictionary, members []Member, visiting map[string]bool) quickfix.Tag {
	for _, m := range members {
		switch m.Kind {
		case MemberField:
			return m.FieldNumber
		case MemberComponent:
			if visiting[m.ComponentRef] {
				continue
			}
			if c, ok := d.components[m.ComponentRef]; ok {
				visiting[m.ComponentRef] = true
				if tag := firstFieldTag(d, c.Members, visiting); tag != 0 {
					return tag
				}
				delete(visiting, m.ComponentRef)
			}
		case MemberGroup:
			return m.Group.CounterTag
		}
	}
	return 0
}

// convertMembers turns an ordered slice of raw (field|component|group)
// nodes into Member values. Component references are kept by name; they
// are resolved by lookup at walk time (never eagerly expanded), which is
// what lets two components reference each other without infinite
// recursion at load time.
func convertMembers(d *Dictionary, nodes []rawNode) ([]Member, error) {
	members := make([]Member, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case MemberField:
			f, ok := d.fieldsByName[n.Name]
			if !ok {
				return nil, fmt.Errorf("unknown field reference %q", n.Name)
			}
			members = append(members, Member{Kind: MemberField, Required: n.Required, FieldNumber: f.Number})
		case MemberComponent:
			members = append(members, Member{Kind: MemberComponent, Required: n.Required, ComponentRef: n.Name})
		case MemberGroup:
			groupMembers, err := convertMembers(d, n.Children)
			if err != nil {
				return nil, err
			}
			counter, ok := d.fieldsByName[n.Name]
			if !ok {
				return nil, fmt.Errorf("unknown group counter field %q", n.Name)
			}
			var delim quickfix.Tag
			for _, gm := range groupMembers {
				if gm.Kind == MemberField {
					delim = gm.FieldNumber
					break
				}
			}
			grp := &Group{CounterTag: counter.Number, Members: groupMembers, DelimiterTag: delim}
			members = append(members, Member{Kind: MemberGroup, Required: n.Required, Group: grp})
		}
	}
	return members, nil
}

func checkDanglingComponentRefs(d *Dictionary) error {
	check := func(members []Member) error {
		var walk func([]Member) error
		walk = func(ms []Member) error {
			for _, m := range ms {
				switch m.Kind {
				case MemberComponent:
					if _, ok := d.components[m.ComponentRef]; !ok {
						return fmt.Errorf("unknown component reference %q", m.ComponentRef)
					}
				case MemberGroup:
					if err := walk(m.Group.Members); err != nil {
						return err
					}
				}
			}
			return nil
		}
		return walk(members)
	}
	for _, c := range d.components {
		if err := check(c.Members); err != nil {
			return fmt.Errorf("component %s: %w", c.Name, err)
		}
	}
	for _, m := range d.messages {
		if err := check(m.Members); err != nil {
			return fmt.Errorf("message %s: %w", m.Name, err)
		}
	}
	if d.Header != nil {
		if err := check(d.Header.Members); err != nil {
			return err
		}
	}
	if d.Trailer != nil {
		if err := check(d.Trailer.Members); err != nil {
			return err
		}
	}
	return nil
}

// collectGroups walks members (expanding component references by name,
// guarded against cycles) and populates RepeatableTags/CounterToGroup.
func collectGroups(d *Dictionary, members []Member, visiting map[string]bool) {
	for _, m := range members {
		switch m.Kind {
		case MemberComponent:
			if visiting[m.ComponentRef] {
				continue
			}
			comp, ok := d.components[m.ComponentRef]
			if !ok {
				continue
			}
			visiting[m.ComponentRef] = true
			collectGroups(d, comp.Members, visiting)
			delete(visiting, m.ComponentRef)
		case MemberGroup:
			d.CounterToGroup[m.Group.CounterTag] = m.Group
			for tag := range GroupMemberTags(d, m.Group) {
				d.RepeatableTags[tag] = true
			}
			collectGroups(d, m.Group.Members, visiting)
		}
	}
}
