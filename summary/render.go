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

package summary

import (
	"fmt"
	"sort"
	"strings"

	"fixdecoder/decode"
	"fixdecoder/fix"

	"github.com/dustin/go-humanize"
	"github.com/quickfixgo/quickfix"
)

// Render renders every accumulated record: one header row per record
// (key, flow label, latest-values table) followed
// by a timeline section with the fixed column set. dict resolves enum
// labels (OrdStatus, ExecType, MsgType); colourOn follows the same
// --colour policy as the prettifier.
func Render(dict *fix.Dictionary, orders []*Order, colourOn bool) string {
	sort.Slice(orders, func(i, j int) bool { return orders[i].Key < orders[j].Key })
	var b strings.Builder
	for _, o := range orders {
		b.WriteString(RenderOne(dict, o, colourOn))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderOne renders a single record's header and timeline.
func RenderOne(dict *fix.Dictionary, o *Order, colourOn bool) string {
	var b strings.Builder

	flow := o.FlowLabel(dict)
	if flow == "" {
		flow = "-"
	}
	b.WriteString(fmt.Sprintf("Order %s  %s\n", decode.Colourize(colourOn, decode.ColourCyan, o.Key), flow))
	if len(o.AliasIDs) > 0 {
		b.WriteString(decode.Colourize(colourOn, decode.ColourDim, "  aliases: "+strings.Join(o.AliasIDs, ", ")) + "\n")
	}

	tenor := o.Tenor()
	if tenor == "" {
		tenor = missingCell(colourOn)
	}
	b.WriteString(fmt.Sprintf("  side=%s symbol=%s qty=%s price=%s currency=%s tif=%s ordType=%s tenor=%s\n",
		cell(o.Side, colourOn), cell(o.Symbol, colourOn), qtyCell(o.Qty, colourOn), cell(o.Price, colourOn),
		cell(o.Currency, colourOn), cell(o.TIF, colourOn), cell(o.OrdType, colourOn), tenor))

	if o.ExecAckStatus != "" || o.SpotPrice != "" || o.ExecAmt != "" {
		b.WriteString(fmt.Sprintf("  execAckStatus=%s spotPrice=%s execAmt=%s\n",
			cell(o.ExecAckStatus, colourOn), cell(o.SpotPrice, colourOn), qtyCell(o.ExecAmt, colourOn)))
	}

	if len(o.Timeline) == 0 {
		return b.String()
	}
	b.WriteString("  timeline:\n")
	widths := timelineWidths(o.Timeline)
	b.WriteString("    " + padRow([]string{"time", "msg", "ackStatus", "execType", "ordStatus", "cum/leaves", "last@px", "avgPx", "text"}, widths) + "\n")
	for _, e := range o.Timeline {
		row := []string{
			cellOr(e.Time, colourOn),
			msgCell(e, colourOn),
			cellOr(e.ExecAckStatus, colourOn),
			enumCell(dict, decode.TagExecType, e.ExecType, colourOn),
			enumCell(dict, decode.TagOrdStatus, e.OrdStatus, colourOn),
			humanize.Comma(intOrZero(e.CumQty)) + "/" + humanize.Comma(intOrZero(e.LeavesQty)),
			cellOr(e.LastPx, colourOn),
			cellOr(e.AvgPx, colourOn),
			cellOr(e.Text, colourOn),
		}
		b.WriteString("    " + padRow(row, widths) + "\n")
	}
	return b.String()
}

func msgCell(e Event, colourOn bool) string {
	s := e.MsgLabel
	if e.ClOrdID != "" {
		s += " " + e.ClOrdID
	}
	if e.OrigClOrdID != "" {
		s += "/" + e.OrigClOrdID
	}
	return s
}

func enumCell(dict *fix.Dictionary, tag quickfix.Tag, wire string, colourOn bool) string {
	if wire == "" {
		return missingCell(colourOn)
	}
	if dict != nil {
		if label, ok := dict.EnumLabel(tag, wire); ok {
			return label
		}
		return decode.Colourize(colourOn, decode.ColourRed, wire)
	}
	return wire
}

func cell(v string, colourOn bool) string {
	if v == "" {
		return missingCell(colourOn)
	}
	return v
}

func cellOr(v string, colourOn bool) string {
	return cell(v, colourOn)
}

func qtyCell(v string, colourOn bool) string {
	if v == "" {
		return missingCell(colourOn)
	}
	return humanize.Comma(intOrZero(v)) + " (" + v + ")"
}

func missingCell(colourOn bool) string {
	return decode.Colourize(colourOn, decode.ColourRed, "-")
}

func intOrZero(s string) int64 {
	d := decimalOrZero(s)
	return d.IntPart()
}

func timelineWidths(events []Event) []int {
	headers := []string{"time", "msg", "ackStatus", "execType", "ordStatus", "cum/leaves", "last@px", "avgPx", "text"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, e := range events {
		row := []string{e.Time, e.MsgLabel, e.ExecAckStatus, e.ExecType, e.OrdStatus, e.CumQty + "/" + e.LeavesQty, e.LastPx, e.AvgPx, e.Text}
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}
	return widths
}

func padRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		// visible width ignores colour codes, matching the prettifier's
		// ANSI-aware column alignment.
		plain := stripANSI(c)
		pad := w - len(plain)
		if pad < 0 {
			pad = 0
		}
		parts[i] = c + strings.Repeat(" ", pad)
	}
	return strings.Join(parts, "  ")
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
