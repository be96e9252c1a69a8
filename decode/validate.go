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
	"strconv"
	"strings"
	"time"

	"fixdecoder/fix"

	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

// Severity classifies a Finding.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Finding is a single validator result. Tag is the zero value when the
// finding isn't about a specific tag.
type Finding struct {
	Severity Severity
	Tag      quickfix.Tag
	HasTag   bool
	Message  string
}

func errorf(tag quickfix.Tag, hasTag bool, format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityError, Tag: tag, HasTag: hasTag, Message: fmt.Sprintf(format, args...)}
}

func warnf(tag quickfix.Tag, hasTag bool, format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityWarn, Tag: tag, HasTag: hasTag, Message: fmt.Sprintf(format, args...)}
}

// Validate runs every protocol check against a single tokenised message
// and returns the full findings list, in check order: MsgType
// recognition, BodyLength, CheckSum, required fields, type conformance,
// enum conformance, group structure, field order and duplicates. It
// never panics and never returns an error: validation results are data,
// not failures.
func Validate(dict *fix.Dictionary, raw string, tokens []Token, delim byte) []Finding {
	findings := []Finding{}

	// Check 1: MsgType recognised.
	msgTypeVal, hasMsgType := firstValueOK(tokens, TagMsgType)
	var msg *fix.Message
	skipStructural := false
	if !hasMsgType {
		findings = append(findings, errorf(TagMsgType, false, "MsgType (35) is missing"))
		skipStructural = true
	} else if dict != nil {
		m, ok := dict.Message(msgTypeVal)
		if !ok {
			findings = append(findings, errorf(TagMsgType, true, "MsgType (35) value %q is not recognised by dictionary %s", msgTypeVal, dict.Key))
			skipStructural = true
		} else {
			msg = m
		}
	}

	// Check 2: BodyLength.
	if f := checkBodyLength(raw, delim, tokens); f != nil {
		findings = append(findings, *f)
	}

	// Check 3: CheckSum.
	if f := checkChecksum(raw, delim); f != nil {
		findings = append(findings, *f)
	}

	if skipStructural || msg == nil || dict == nil {
		return findings
	}

	layout := fix.Layout(dict, msg)
	present := make(map[quickfix.Tag]int, len(tokens))
	for _, t := range tokens {
		present[t.Tag]++
	}

	// Check 4: required fields (outside groups; group-internal
	// requiredness is covered by check 7's per-entry scan).
	for _, item := range layout {
		if item.Required && !item.InGroup && present[item.Tag] == 0 {
			findings = append(findings, errorf(item.Tag, false, "required field %s (%d) is missing", dict.FieldName(item.Tag), item.Tag))
		}
	}

	// Check 5 & 6: type and enum conformance, per observed token.
	for _, t := range tokens {
		f, ok := dict.Field(t.Tag)
		if !ok {
			continue
		}
		if msgFinding := checkType(f, t); msgFinding != nil {
			findings = append(findings, *msgFinding)
		}
		if len(f.Enums) > 0 {
			if msgFinding := checkEnum(f, t); msgFinding != nil {
				findings = append(findings, *msgFinding)
			}
		}
	}

	// Check 7: group structure.
	findings = append(findings, checkGroups(dict, tokens)...)

	// Check 8: field order + duplicates.
	findings = append(findings, checkOrderAndDuplicates(dict, layout, tokens)...)

	return findings
}

func firstValueOK(tokens []Token, tag quickfix.Tag) (string, bool) {
	for _, t := range tokens {
		if t.Tag == tag {
			return t.Value, true
		}
	}
	return "", false
}

func checkBodyLength(raw string, delim byte, tokens []Token) *Finding {
	bodyLenStr, hasBL := firstValueOK(tokens, TagBodyLength)
	if !hasBL {
		return nil
	}
	declared, err := strconv.Atoi(bodyLenStr)
	if err != nil {
		f := errorf(TagBodyLength, true, "BodyLength (9) value %q is not an integer", bodyLenStr)
		return &f
	}
	prefix := fmt.Sprintf("9=%s%c", bodyLenStr, delim)
	bodyStart := strings.Index(raw, prefix)
	if bodyStart == -1 {
		return nil
	}
	bodyStart += len(prefix)
	csMarker := string(delim) + "10="
	bodyEndRel := strings.Index(raw[bodyStart:], csMarker)
	if bodyEndRel == -1 {
		return nil
	}
	bodyEnd := bodyStart + bodyEndRel + 1 // include the delimiter before tag 10
	actual := bodyEnd - bodyStart
	if actual != declared {
		f := errorf(TagBodyLength, true, "BodyLength (9) is %d but the message body is %d bytes", declared, actual)
		return &f
	}
	return nil
}

func checkChecksum(raw string, delim byte) *Finding {
	csMarker := string(delim) + "10="
	pos := strings.Index(raw, csMarker)
	if pos == -1 {
		return nil
	}
	declaredStart := pos + len(csMarker)
	if declaredStart+3 > len(raw) {
		return nil
	}
	declared := raw[declaredStart : declaredStart+3]
	sum := 0
	for i := 0; i <= pos; i++ {
		sum += int(raw[i])
	}
	computed := fmt.Sprintf("%03d", sum%256)
	if computed != declared {
		f := errorf(TagCheckSum, true, "CheckSum (10) is %s but the computed checksum is %s", declared, computed)
		return &f
	}
	return nil
}

func checkType(f *fix.Field, t Token) *Finding {
	switch f.Kind {
	case fix.KindInt:
		if _, err := strconv.Atoi(t.Value); err != nil {
			msg := errorf(t.Tag, true, "field %s (%d) value %q is not an integer", f.Name, t.Tag, t.Value)
			return &msg
		}
	case fix.KindLength, fix.KindNumInGroup:
		if n, err := strconv.Atoi(t.Value); err != nil || n < 0 {
			msg := errorf(t.Tag, true, "field %s (%d) value %q must be a non-negative integer", f.Name, t.Tag, t.Value)
			return &msg
		}
	case fix.KindPrice, fix.KindQty, fix.KindAmt:
		if _, err := decimal.NewFromString(t.Value); err != nil {
			msg := errorf(t.Tag, true, "field %s (%d) value %q is not a valid decimal", f.Name, t.Tag, t.Value)
			return &msg
		}
	case fix.KindBoolean:
		if t.Value != "Y" && t.Value != "N" {
			msg := errorf(t.Tag, true, "field %s (%d) value %q must be Y or N", f.Name, t.Tag, t.Value)
			return &msg
		}
	case fix.KindChar:
		if len(t.Value) != 1 {
			msg := errorf(t.Tag, true, "field %s (%d) value %q must be a single character", f.Name, t.Tag, t.Value)
			return &msg
		}
	case fix.KindUTCTimestamp:
		if _, err := time.Parse("20060102-15:04:05.000", t.Value); err != nil {
			if _, err2 := time.Parse("20060102-15:04:05", t.Value); err2 != nil {
				msg := errorf(t.Tag, true, "field %s (%d) value %q is not UTCTIMESTAMP (YYYYMMDD-HH:MM:SS[.sss])", f.Name, t.Tag, t.Value)
				return &msg
			}
		}
	case fix.KindLocalMktDate, fix.KindUTCDateOnly:
		if _, err := time.Parse("20060102", t.Value); err != nil {
			msg := errorf(t.Tag, true, "field %s (%d) value %q is not YYYYMMDD", f.Name, t.Tag, t.Value)
			return &msg
		}
	}
	return nil
}

func checkEnum(f *fix.Field, t Token) *Finding {
	values := []string{t.Value}
	if f.Kind == fix.KindMultipleStringValue || f.Kind == fix.KindMultipleCharValue {
		values = strings.Split(t.Value, " ")
	}
	for _, v := range values {
		if _, ok := f.EnumDescription(v); !ok {
			msg := errorf(t.Tag, true, "field %s (%d) value %q is not a recognised enum code", f.Name, t.Tag, v)
			return &msg
		}
	}
	return nil
}

// checkGroups verifies, for every group present, that the counter tag's
// value matches the observed entry count, that each entry begins with
// the group's declared delimiter tag, and that each entry contains its
// required members.
func checkGroups(dict *fix.Dictionary, tokens []Token) []Finding {
	var findings []Finding
	for i, t := range tokens {
		grp, ok := dict.CounterToGroup[t.Tag]
		if !ok {
			continue
		}
		declared, err := strconv.Atoi(t.Value)
		if err != nil {
			findings = append(findings, errorf(t.Tag, true, "group counter %d value %q is not an integer", t.Tag, t.Value))
			continue
		}
		memberTags := fix.GroupMemberTags(dict, grp)

		// Partition the member tokens following the counter into entries,
		// split at the delimiter tag, the same way the renderer does.
		var entries [][]Token
		var cur []Token
		for j := i + 1; j < len(tokens); j++ {
			if !memberTags[tokens[j].Tag] {
				break
			}
			if tokens[j].Tag == grp.DelimiterTag && len(cur) > 0 {
				entries = append(entries, cur)
				cur = nil
			}
			cur = append(cur, tokens[j])
		}
		if len(cur) > 0 {
			entries = append(entries, cur)
		}

		if len(entries) != declared {
			findings = append(findings, errorf(t.Tag, true, "group counter %d declares %d entries but %d were observed", t.Tag, declared, len(entries)))
		}
		for n, entry := range entries {
			if entry[0].Tag != grp.DelimiterTag {
				findings = append(findings, errorf(t.Tag, true, "entry %d of group %d does not begin with its delimiter tag %d", n+1, t.Tag, grp.DelimiterTag))
			}
			findings = append(findings, checkEntryRequired(dict, grp, t.Tag, n+1, entry)...)
		}
	}
	return findings
}

// checkEntryRequired reports required members absent from one observed
// group entry, expanding required component references by lookup
// (cycle-guarded) so requiredness declared through a component counts
// the same as requiredness declared inline.
func checkEntryRequired(dict *fix.Dictionary, grp *fix.Group, counter quickfix.Tag, entryNum int, entry []Token) []Finding {
	present := make(map[quickfix.Tag]bool, len(entry))
	for _, t := range entry {
		present[t.Tag] = true
	}

	var findings []Finding
	visiting := make(map[string]bool)
	var walk func(members []fix.Member)
	walk = func(members []fix.Member) {
		for _, m := range members {
			if !m.Required {
				continue
			}
			switch m.Kind {
			case fix.MemberField:
				if !present[m.FieldNumber] {
					findings = append(findings, errorf(m.FieldNumber, false,
						"required field %s (%d) is missing from entry %d of group %d",
						dict.FieldName(m.FieldNumber), m.FieldNumber, entryNum, counter))
				}
			case fix.MemberComponent:
				if visiting[m.ComponentRef] {
					continue
				}
				if c, ok := dict.Component(m.ComponentRef); ok {
					visiting[m.ComponentRef] = true
					walk(c.Members)
					delete(visiting, m.ComponentRef)
				}
			case fix.MemberGroup:
				if !present[m.Group.CounterTag] {
					findings = append(findings, errorf(m.Group.CounterTag, false,
						"required group counter %d is missing from entry %d of group %d",
						m.Group.CounterTag, entryNum, counter))
				}
			}
		}
	}
	walk(grp.Members)
	return findings
}

// checkOrderAndDuplicates: tags outside a group must appear in
// canonical order; duplicate non-group tags are errors unless the field
// is declared repeatable. Group counters and group-member tags are
// skipped by this check, so a group-member tag appearing outside its
// group is not reported.
func checkOrderAndDuplicates(dict *fix.Dictionary, layout []fix.LayoutItem, tokens []Token) []Finding {
	var findings []Finding

	canonicalIndex := make(map[quickfix.Tag]int, len(layout))
	inGroupTag := make(map[quickfix.Tag]bool, len(layout))
	for i, item := range layout {
		if _, seen := canonicalIndex[item.Tag]; !seen {
			canonicalIndex[item.Tag] = i
		}
		if item.InGroup {
			inGroupTag[item.Tag] = true
		}
	}

	seenNonGroup := make(map[quickfix.Tag]bool)
	lastIdx := -1
	for _, t := range tokens {
		if dict.IsGroupCounter(t.Tag) || inGroupTag[t.Tag] {
			continue
		}
		idx, known := canonicalIndex[t.Tag]
		if !known {
			continue // unexpected tags are an annotation concern for the prettifier, not a validator error
		}
		if idx < lastIdx {
			findings = append(findings, errorf(t.Tag, true, "field %s (%d) appears out of canonical order", dict.FieldName(t.Tag), t.Tag))
		} else {
			lastIdx = idx
		}
		if seenNonGroup[t.Tag] && !dict.RepeatableTags[t.Tag] {
			findings = append(findings, errorf(t.Tag, true, "field %s (%d) is duplicated", dict.FieldName(t.Tag), t.Tag))
		}
		seenNonGroup[t.Tag] = true
	}
	return findings
}
