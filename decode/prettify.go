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

	"fixdecoder/fix"

	"github.com/quickfixgo/quickfix"
)

// Options controls the prettifier's rendering.
type Options struct {
	Colour bool
	Secret bool
}

// row is one rendered line of a message breakdown, built up by the
// canonical-order walk before column widths are known -- the walk has to
// finish before any column can be sized.
type row struct {
	tagStr    string
	name      string
	value     string
	enumLabel string
	missing   bool
	unexpected bool
	unknownEnum bool
	indent    int
}

// Prettify renders tokens (already tokenised from raw) as a coloured,
// column-aligned field-by-field breakdown using dict: canonical
// reorder, missing-required annotation, header/trailer repositioning (a
// side effect of walking the canonical layout instead of the observed
// order), column alignment, and colour policy. findings is appended as
// its own block when the caller passed a non-nil slice (--validate);
// obf is consulted when opts.Secret is set, and may be nil otherwise.
func Prettify(dict *fix.Dictionary, msgName string, tokens []Token, raw string, obf *Obfuscator, findings []Finding, opts Options) string {
	var b strings.Builder

	b.WriteString(renderRawLine(raw, opts.Colour))
	b.WriteByte('\n')
	if msgName != "" {
		b.WriteString(colourize(opts.Colour, colourBold, "  "+msgName))
		b.WriteByte('\n')
	}

	if dict == nil {
		b.WriteString(colourize(opts.Colour, colourRed, "  (no dictionary selected; raw tokens only)\n"))
		for _, t := range tokens {
			b.WriteString(fmt.Sprintf("  %s=%s\n", tagString(t.Tag), t.Value))
		}
		return b.String()
	}

	msgType := firstValue(tokens, TagMsgType)
	msg, _ := dict.Message(msgType)

	consumed := make([]bool, len(tokens))
	var rows []row
	rows = renderMembers(dict, headerMembers(dict), tokens, consumed, obf, opts, 0, rows)
	if msg != nil {
		rows = renderMembers(dict, msg.Members, tokens, consumed, obf, opts, 0, rows)
	}
	rows = renderMembers(dict, trailerMembers(dict), tokens, consumed, obf, opts, 0, rows)

	// Tokens the canonical walk never placed: unknown to the schema, or a
	// duplicate of a tag already consumed. Their relative order among
	// themselves is retained, rendered after the known structure rather
	// than interleaved, so every unexpected tag surfaces exactly once.
	for i, t := range tokens {
		if consumed[i] {
			continue
		}
		rows = append(rows, buildRow(dict, t.Tag, t.Value, obf, opts, false, true, 0))
	}

	widths := columnWidths(rows)
	for _, r := range rows {
		b.WriteString(renderRow(r, widths, opts.Colour))
		b.WriteByte('\n')
	}

	if findings != nil {
		b.WriteString(renderFindings(dict, findings, opts.Colour))
	}

	return b.String()
}

func headerMembers(dict *fix.Dictionary) []fix.Member {
	if dict.Header == nil {
		return nil
	}
	return dict.Header.Members
}

func trailerMembers(dict *fix.Dictionary) []fix.Member {
	if dict.Trailer == nil {
		return nil
	}
	return dict.Trailer.Members
}

// renderMembers walks members in canonical order, consuming matching
// tokens and appending rows (including missing-required annotations), at
// the given indent level. It recurses into components by name lookup and
// into groups via renderGroup.
func renderMembers(dict *fix.Dictionary, members []fix.Member, tokens []Token, consumed []bool, obf *Obfuscator, opts Options, indent int, rows []row) []row {
	for _, m := range members {
		switch m.Kind {
		case fix.MemberField:
			idx := firstUnconsumed(tokens, consumed, m.FieldNumber)
			if idx == -1 {
				if m.Required {
					rows = append(rows, missingRow(dict, m.FieldNumber, indent))
				}
				continue
			}
			consumed[idx] = true
			rows = append(rows, buildRow(dict, m.FieldNumber, tokens[idx].Value, obf, opts, false, false, indent))
		case fix.MemberComponent:
			if c, ok := dict.Component(m.ComponentRef); ok {
				rows = renderMembers(dict, c.Members, tokens, consumed, obf, opts, indent, rows)
			}
		case fix.MemberGroup:
			rows = renderGroup(dict, m, tokens, consumed, obf, opts, indent, rows)
		}
	}
	return rows
}

// renderGroup handles one <group> member: it consumes the counter tag
// (annotating it missing when required-and-absent), then partitions the
// still-unconsumed tokens that belong to the group's member-tag set
// into entries split at the delimiter tag, rendering each entry as a
// canonical-order walk of the group's own members so within-entry
// reordering is handled the same way as the top level.
func renderGroup(dict *fix.Dictionary, m fix.Member, tokens []Token, consumed []bool, obf *Obfuscator, opts Options, indent int, rows []row) []row {
	grp := m.Group
	cIdx := firstUnconsumed(tokens, consumed, grp.CounterTag)
	if cIdx == -1 {
		if m.Required {
			rows = append(rows, missingRow(dict, grp.CounterTag, indent))
		}
		return rows
	}
	consumed[cIdx] = true
	rows = append(rows, buildRow(dict, grp.CounterTag, tokens[cIdx].Value, obf, opts, false, false, indent))

	memberTags := fix.GroupMemberTags(dict, grp)
	var entries [][]int // token indexes, per entry
	var cur []int
	for i := cIdx + 1; i < len(tokens); i++ {
		if consumed[i] || !memberTags[tokens[i].Tag] {
			break
		}
		if tokens[i].Tag == grp.DelimiterTag && len(cur) > 0 {
			entries = append(entries, cur)
			cur = nil
		}
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		entries = append(entries, cur)
	}

	for _, entry := range entries {
		entryTokens := make([]Token, len(entry))
		entryConsumed := make([]bool, len(entry))
		for j, idx := range entry {
			entryTokens[j] = tokens[idx]
		}
		rows = renderMembers(dict, grp.Members, entryTokens, entryConsumed, obf, opts, indent+1, rows)
		for j, idx := range entry {
			if entryConsumed[j] {
				consumed[idx] = true
			}
		}
	}
	return rows
}

func firstUnconsumed(tokens []Token, consumed []bool, tag quickfix.Tag) int {
	for i, t := range tokens {
		if !consumed[i] && t.Tag == tag {
			return i
		}
	}
	return -1
}

func missingRow(dict *fix.Dictionary, tag quickfix.Tag, indent int) row {
	return row{
		tagStr:  tagString(tag),
		name:    dict.FieldName(tag),
		value:   "-",
		missing: true,
		indent:  indent,
	}
}

func buildRow(dict *fix.Dictionary, tag quickfix.Tag, value string, obf *Obfuscator, opts Options, missing, unexpected bool, indent int) row {
	r := row{
		tagStr:     tagString(tag),
		name:       dict.FieldName(tag),
		value:      value,
		missing:    missing,
		unexpected: unexpected,
		indent:     indent,
	}
	if opts.Secret && obf != nil {
		if alias, ok := obf.Alias(tag, value); ok {
			r.value = alias
		}
	}
	if f, ok := dict.Field(tag); ok && len(f.Enums) > 0 {
		if label, ok := f.EnumDescription(value); ok {
			r.enumLabel = label
		} else {
			r.unknownEnum = true
		}
	}
	return r
}

func columnWidths(rows []row) [4]int {
	var w [4]int
	for _, r := range rows {
		w[0] = maxInt(w[0], len(r.tagStr)+r.indent*2)
		w[1] = maxInt(w[1], len(r.name))
		w[2] = maxInt(w[2], visibleWidth(r.value))
		w[3] = maxInt(w[3], len(r.enumLabel))
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func renderRow(r row, widths [4]int, colourOn bool) string {
	tagCell := strings.Repeat("  ", r.indent) + r.tagStr
	valueCell := r.value
	switch {
	case r.missing:
		valueCell = colourize(colourOn, colourRed, "MISSING "+r.name+" ("+r.tagStr+")")
		return fmt.Sprintf("  %s  %s", padRight(tagCell, widths[0]), valueCell)
	case r.unknownEnum:
		valueCell = colourize(colourOn, colourRed, r.value)
	default:
		valueCell = colourize(colourOn, colourGreen, r.value)
	}
	nameCell := colourize(colourOn, colourCyan, padRight(r.name, widths[1]))
	line := fmt.Sprintf("  %s  %s  %s", padRight(tagCell, widths[0]), nameCell, padRight(valueCell, widths[2]))
	if r.enumLabel != "" {
		line += "  " + colourize(colourOn, colourYellow, r.enumLabel)
	}
	if r.unexpected {
		line += colourize(colourOn, colourMagenta, "  (unexpected)")
	}
	return line
}

func renderRawLine(raw string, colourOn bool) string {
	idx := strings.Index(raw, "8=FIX")
	if idx == -1 {
		return colourize(colourOn, colourDim, raw)
	}
	before := raw[:idx]
	fixPart := raw[idx:]
	return colourize(colourOn, colourDim, before) + colourize(colourOn, colourBold, fixPart)
}

func renderFindings(dict *fix.Dictionary, findings []Finding, colourOn bool) string {
	var b strings.Builder
	if len(findings) == 0 {
		b.WriteString(colourize(colourOn, colourGreen, "  validate: no findings\n"))
		return b.String()
	}
	b.WriteString("  validate:\n")
	for _, f := range findings {
		code := colourRed
		if f.Severity == SeverityWarn {
			code = colourYellow
		}
		loc := ""
		if f.HasTag {
			loc = " [" + tagString(f.Tag) + "]"
		}
		b.WriteString("    " + colourize(colourOn, code, strings.ToUpper(string(f.Severity))) + loc + ": " + f.Message + "\n")
	}
	return b.String()
}
