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

import "github.com/quickfixgo/quickfix"

// LayoutItem is one entry of a message's flattened canonical tag order:
// header tags, then body tags walking components and groups in declared
// order, then trailer tags. Component references are
// expanded inline; group member tags appear once (the static shape of one
// entry), not once per observed group instance -- callers that need the
// dynamic, per-entry expansion (the prettifier) repeat the group's
// member slice themselves per observed entry.
type LayoutItem struct {
	Tag      quickfix.Tag
	Required bool
	// InGroup is true when Tag is a member of some group (including the
	// group's own counter tag's *children*, not the counter tag itself).
	// The validator's field-order and required-field checks apply
	// differently to in-group tags, which are instead checked per-entry
	// by the group-structure check.
	InGroup bool
	// Group is non-nil when Tag is itself a group counter tag.
	Group *Group
}

// Layout computes msg's flattened canonical tag order within dict,
// including dict's header and trailer. It is the shared basis for the
// validator's field-order/required-field checks and the prettifier's
// reordering pass.
func Layout(dict *Dictionary, msg *Message) []LayoutItem {
	var out []LayoutItem
	var walk func(members []Member, inGroup bool)
	walk = func(members []Member, inGroup bool) {
		for _, m := range members {
			switch m.Kind {
			case MemberField:
				out = append(out, LayoutItem{Tag: m.FieldNumber, Required: m.Required, InGroup: inGroup})
			case MemberComponent:
				if c, ok := dict.components[m.ComponentRef]; ok {
					walk(c.Members, inGroup)
				}
			case MemberGroup:
				out = append(out, LayoutItem{Tag: m.Group.CounterTag, Required: m.Required, InGroup: inGroup, Group: m.Group})
				walk(m.Group.Members, true)
			}
		}
	}
	if dict.Header != nil {
		walk(dict.Header.Members, false)
	}
	if msg != nil {
		walk(msg.Members, false)
	}
	if dict.Trailer != nil {
		walk(dict.Trailer.Members, false)
	}
	return out
}

// GroupMemberTags returns the transitive set of tags belonging to g's
// members, expanding nested groups and component references (by lookup
// in dict, cycle-guarded). Shared by the validator's group-structure
// check and the prettifier's group-entry scan so both agree on what
// "belongs to this group" means.
func GroupMemberTags(dict *Dictionary, g *Group) map[quickfix.Tag]bool {
	out := make(map[quickfix.Tag]bool)
	visiting := make(map[string]bool)
	var walk func([]Member)
	walk = func(ms []Member) {
		for _, m := range ms {
			switch m.Kind {
			case MemberField:
				out[m.FieldNumber] = true
			case MemberComponent:
				if visiting[m.ComponentRef] {
					continue
				}
				if c, ok := dict.components[m.ComponentRef]; ok {
					visiting[m.ComponentRef] = true
					walk(c.Members)
					delete(visiting, m.ComponentRef)
				}
			case MemberGroup:
				out[m.Group.CounterTag] = true
				walk(m.Group.Members)
			}
		}
	}
	walk(g.Members)
	return out
}
