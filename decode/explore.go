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
	"sort"
	"strings"

	"fixdecoder/fix"
)

// ExploreOptions controls the dictionary-explorer rendering modes behind
// --message/--component/--tag/--info.
type ExploreOptions struct {
	Column  bool
	Verbose bool
	Header  bool
	Trailer bool
	Colour  bool
}

// RenderInfo lists every dictionary key known to reg as a summary
// table, marking selectedKey with a leading "*".
func RenderInfo(reg *fix.Registry, selectedKey string) string {
	keys := reg.Keys()
	sort.Strings(keys)

	titles := []string{"", "key", "messages", "fields", "components", "source"}
	var rows [][]string
	for _, k := range keys {
		d, ok := reg.Get(k)
		if !ok {
			continue
		}
		marker := " "
		if k == selectedKey {
			marker = "*"
		}
		source := "built-in"
		if reg.IsOverride(k) {
			source = "override"
		}
		rows = append(rows, []string{
			marker, k,
			fmt.Sprintf("%d", len(d.Messages())),
			fmt.Sprintf("%d", len(d.Fields())),
			fmt.Sprintf("%d", len(d.Components())),
			source,
		})
	}

	widths := make([]int, len(titles))
	for i, t := range titles {
		widths[i] = len(t)
	}
	for _, r := range rows {
		for i, c := range r {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderBox(widths, "┌", "┬", "┐", "─") + "\n")
	b.WriteString(formatHeaderRow(titles, widths) + "\n")
	b.WriteString(renderBox(widths, "├", "┼", "┤", "─") + "\n")
	for _, r := range rows {
		b.WriteString(formatRow(r, widths) + "\n")
	}
	b.WriteString(renderBox(widths, "└", "┴", "┘", "─"))
	return b.String()
}

// RenderMessageList lists every message name in dict, one per line
// (--message with no value), or as a two-column table with opts.Column.
func RenderMessageList(dict *fix.Dictionary, opts ExploreOptions) string {
	msgs := dict.Messages()
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Name < msgs[j].Name })
	var b strings.Builder
	if opts.Column {
		w := 0
		for _, m := range msgs {
			if len(m.Name) > w {
				w = len(m.Name)
			}
		}
		for _, m := range msgs {
			b.WriteString(fmt.Sprintf("%s  %s\n", padRight(m.Name, w), m.MsgType))
		}
		return b.String()
	}
	for _, m := range msgs {
		b.WriteString(fmt.Sprintf("%s (%s)\n", m.Name, m.MsgType))
	}
	return b.String()
}

// RenderMessageDetail renders msg's canonical structure: header/trailer
// when requested, body always, components and groups expanded inline,
// with enum sets when opts.Verbose.
func RenderMessageDetail(dict *fix.Dictionary, msg *fix.Message, opts ExploreOptions) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (MsgType=%s, category=%s)\n", msg.Name, msg.MsgType, msg.Category))
	if opts.Header && dict.Header != nil {
		b.WriteString("  Header:\n")
		renderMemberTree(&b, dict, dict.Header.Members, 2, opts)
	}
	b.WriteString("  Body:\n")
	renderMemberTree(&b, dict, msg.Members, 2, opts)
	if opts.Trailer && dict.Trailer != nil {
		b.WriteString("  Trailer:\n")
		renderMemberTree(&b, dict, dict.Trailer.Members, 2, opts)
	}
	return b.String()
}

// RenderComponentList lists every component name in dict (--component
// with no value).
func RenderComponentList(dict *fix.Dictionary, opts ExploreOptions) string {
	comps := dict.Components()
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
	var b strings.Builder
	for _, c := range comps {
		b.WriteString(c.Name + "\n")
	}
	return b.String()
}

// RenderComponentDetail renders comp's member tree (--component=N).
func RenderComponentDetail(dict *fix.Dictionary, comp *fix.Component, opts ExploreOptions) string {
	var b strings.Builder
	b.WriteString(comp.Name + ":\n")
	renderMemberTree(&b, dict, comp.Members, 1, opts)
	return b.String()
}

// RenderFieldList lists every field tag/name in dict, sorted by tag
// number (--tag with no value).
func RenderFieldList(dict *fix.Dictionary, opts ExploreOptions) string {
	fields := dict.Fields()
	sort.Slice(fields, func(i, j int) bool { return fields[i].Number < fields[j].Number })
	var b strings.Builder
	if opts.Column {
		w := 0
		for _, f := range fields {
			if len(f.Name) > w {
				w = len(f.Name)
			}
		}
		for _, f := range fields {
			b.WriteString(fmt.Sprintf("%-6d %s\n", f.Number, padRight(f.Name, w)))
		}
		return b.String()
	}
	for _, f := range fields {
		b.WriteString(fmt.Sprintf("%d %s (%s)\n", f.Number, f.Name, f.Kind))
	}
	return b.String()
}

// RenderTagDetail renders a single field's definition and enum set
// (--tag=T). --header/--trailer are ignored for this mode.
func RenderTagDetail(dict *fix.Dictionary, field *fix.Field, opts ExploreOptions) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d %s (%s)\n", field.Number, field.Name, field.Kind))
	for _, e := range field.Enums {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", e.Wire, e.Description))
	}
	return b.String()
}

func renderMemberTree(b *strings.Builder, dict *fix.Dictionary, members []fix.Member, indent int, opts ExploreOptions) {
	pad := strings.Repeat("  ", indent)
	for _, m := range members {
		switch m.Kind {
		case fix.MemberField:
			f, ok := dict.Field(m.FieldNumber)
			name, kind := tagString(m.FieldNumber), ""
			if ok {
				name, kind = f.Name, string(f.Kind)
			}
			req := ""
			if m.Required {
				req = " [required]"
			}
			b.WriteString(fmt.Sprintf("%s%s (%d) %s%s\n", pad, name, m.FieldNumber, kind, req))
			if opts.Verbose && ok {
				for _, e := range f.Enums {
					b.WriteString(fmt.Sprintf("%s  %-6s %s\n", pad, e.Wire, e.Description))
				}
			}
		case fix.MemberComponent:
			req := ""
			if m.Required {
				req = " [required]"
			}
			b.WriteString(fmt.Sprintf("%s%s (component)%s\n", pad, m.ComponentRef, req))
			if c, ok := dict.Component(m.ComponentRef); ok {
				renderMemberTree(b, dict, c.Members, indent+1, opts)
			}
		case fix.MemberGroup:
			req := ""
			if m.Required {
				req = " [required]"
			}
			b.WriteString(fmt.Sprintf("%s%s (group, counter=%d, delimiter=%d)%s\n",
				pad, dict.FieldName(m.Group.CounterTag), m.Group.CounterTag, m.Group.DelimiterTag, req))
			renderMemberTree(b, dict, m.Group.Members, indent+1, opts)
		}
	}
}
