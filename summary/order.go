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

// Package summary implements the order-lifecycle summariser: it
// consumes the same token stream as the prettifier but folds it into
// per-order records instead of per-message output, tracking state
// transitions, the latest economic values, and a rendered timeline.
package summary

import (
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

// StateTuple is one entry of an Order's state path. Consecutive
// duplicates are suppressed on append.
type StateTuple struct {
	OrdStatus     string
	ExecType      string
	ExecAckStatus string // empty unless set by a BN message
}

func (t StateTuple) equal(o StateTuple) bool {
	return t.OrdStatus == o.OrdStatus && t.ExecType == o.ExecType && t.ExecAckStatus == o.ExecAckStatus
}

// Event is one timeline row.
type Event struct {
	Time          string
	MsgType       string
	MsgLabel      string
	ClOrdID       string
	OrigClOrdID   string
	ExecAckStatus string
	ExecType      string
	OrdStatus     string
	CumQty        string
	LeavesQty     string
	LastPx        string
	AvgPx         string
	Text          string
}

// Order is one order-lifecycle record.
type Order struct {
	Key       string
	AliasIDs  []string
	Side      string
	Symbol    string
	Qty       string
	Price     string
	Currency  string
	TIF       string
	OrdType   string
	TradeDate string
	SettlDate string

	ExecAckStatus string // BN-only
	SpotPrice     string // BN-only, from LastPx
	ExecAmt       string // BN-only, from OrderQty

	StatePath []StateTuple
	Timeline  []Event

	dirty bool // follow-mode flush flag
}

// Tenor derives the settlement-horizon label from TradeDate/SettlDate,
// skipping weekends and with no holiday calendar. Returns "" when
// either date is absent or unparseable.
func (o *Order) Tenor() string {
	return tenor(o.TradeDate, o.SettlDate)
}

// FlowLabel joins StatePath with "→", skipping leading tuples whose
// OrdStatus has no known label. dict is used to resolve OrdStatus enum
// labels; nil falls back to the raw wire code.
func (o *Order) FlowLabel(dict fieldLabeler) string {
	return flowLabel(o.StatePath, dict)
}

// fieldLabeler is the narrow capability the flow-label/event renderer
// needs from a *fix.Dictionary: look up an enum label by tag and wire
// value. Kept as an interface so tests can stub it.
type fieldLabeler interface {
	EnumLabel(tag quickfix.Tag, wire string) (string, bool)
}

// decimalOrZero parses a PRICE/QTY string, defaulting to zero on a blank
// or malformed value rather than erroring -- the summariser folds best-
// effort economic state, it doesn't validate (that's decode.Validate's
// job).
func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
