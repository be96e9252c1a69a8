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
	"sync"

	"fixdecoder/decode"
	"fixdecoder/fix"

	"github.com/quickfixgo/quickfix"
)

// keyPriority is the candidate-key search order: OrderID, then ClOrdID,
// then OrigClOrdID.
var keyPriority = []quickfix.Tag{decode.TagOrderID, decode.TagClOrdID, decode.TagOrigClOrdID}

// Store holds every order record: a map keyed by the first-seen
// identifying tag, plus an alias index so any later message bearing a
// previously-seen ID updates the same record. Reads hand out defensive
// copies.
type Store struct {
	mu         sync.RWMutex
	orders     map[string]*Order
	aliasToKey map[string]string
}

// NewStore returns an empty Store, created once per run; order records
// live until the input ends.
func NewStore() *Store {
	return &Store{
		orders:     make(map[string]*Order),
		aliasToKey: make(map[string]string),
	}
}

// Ingest folds one tokenised message into its order record, creating the
// record on first sight of any of its candidate IDs. dict is the
// message's chosen dictionary (used only to resolve enum/message-name
// labels for the timeline; nil is tolerated, yielding raw wire codes).
// Returns a defensive copy of the updated record, or nil when tokens
// carry none of the three candidate key tags at all.
func (s *Store) Ingest(dict *fix.Dictionary, tokens []decode.Token) *Order {
	key, isNew := s.resolveKey(tokens)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[key]
	if !exists {
		order = &Order{Key: key}
		s.orders[key] = order
	}
	_ = isNew

	for _, tag := range keyPriority {
		val, ok := firstValue(tokens, tag)
		if !ok {
			continue
		}
		if _, known := s.aliasToKey[val]; !known {
			s.aliasToKey[val] = key
		}
		if val != key && !containsStr(order.AliasIDs, val) {
			order.AliasIDs = append(order.AliasIDs, val)
		}
	}

	applyLatestWins(order, tokens)

	msgType, _ := firstValue(tokens, decode.TagMsgType)
	switch msgType {
	case "8":
		appendEvent(order, dict, tokens, "")
	case decode.MsgTypeBlockNotice:
		ack, _ := firstValue(tokens, decode.TagExecAckStatus)
		if lastPx, ok := firstValue(tokens, decode.TagLastPx); ok {
			order.SpotPrice = lastPx
		}
		if qty, ok := firstValue(tokens, decode.TagOrderQty); ok {
			order.ExecAmt = qty
		}
		order.ExecAckStatus = ack
		appendEvent(order, dict, tokens, ack)
	}

	order.dirty = true
	return order.copy()
}

// resolveKey finds the record key tokens belongs to: the first
// candidate (in 37, 11, 41 priority order) already known to an
// existing record wins; otherwise the first *present* candidate creates
// a new record. isNew reports whether this call would create a record
// that didn't exist before (informational only; Ingest creates it either
// way under the lock).
func (s *Store) resolveKey(tokens []decode.Token) (key string, isNew bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tag := range keyPriority {
		val, ok := firstValue(tokens, tag)
		if !ok {
			continue
		}
		if k, known := s.aliasToKey[val]; known {
			return k, false
		}
	}
	for _, tag := range keyPriority {
		if val, ok := firstValue(tokens, tag); ok {
			_, exists := s.orders[val]
			return val, !exists
		}
	}
	return "", false
}

// Get returns a defensive copy of the record for key (an order key or
// any of its aliases), and whether it exists.
func (s *Store) Get(key string) (*Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k, ok := s.aliasToKey[key]; ok {
		key = k
	}
	order, ok := s.orders[key]
	if !ok {
		return nil, false
	}
	return order.copy(), true
}

// All returns a defensive copy of every record, ordered by key
// insertion is not preserved (map iteration); callers that render a
// stable order should sort by Key.
func (s *Store) All() []*Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.copy())
	}
	return out
}

// Dirty returns copies of every record with a pending follow-mode
// update and clears their dirty flags. Follow mode renders these on
// each quiet period instead of waiting for end of input.
func (s *Store) Dirty() []*Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		if o.dirty {
			out = append(out, o.copy())
			o.dirty = false
		}
	}
	return out
}

func (o *Order) copy() *Order {
	cp := *o
	cp.AliasIDs = append([]string(nil), o.AliasIDs...)
	cp.StatePath = append([]StateTuple(nil), o.StatePath...)
	cp.Timeline = append([]Event(nil), o.Timeline...)
	return &cp
}

func containsStr(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func firstValue(tokens []decode.Token, tag quickfix.Tag) (string, bool) {
	for _, t := range tokens {
		if t.Tag == tag {
			return t.Value, true
		}
	}
	return "", false
}

// applyLatestWins overwrites order's economic fields from tokens
// whenever the corresponding tag is present: 54, 55, 38, 44, 15, 59,
// 40, 75, and 64 (falling back to 193).
func applyLatestWins(order *Order, tokens []decode.Token) {
	if v, ok := firstValue(tokens, decode.TagSide); ok {
		order.Side = v
	}
	if v, ok := firstValue(tokens, decode.TagSymbol); ok {
		order.Symbol = v
	}
	if v, ok := firstValue(tokens, decode.TagOrderQty); ok {
		order.Qty = v
	}
	if v, ok := firstValue(tokens, decode.TagPrice); ok {
		order.Price = v
	}
	if v, ok := firstValue(tokens, decode.TagCurrency); ok {
		order.Currency = v
	}
	if v, ok := firstValue(tokens, decode.TagTimeInForce); ok {
		order.TIF = v
	}
	if v, ok := firstValue(tokens, decode.TagOrdType); ok {
		order.OrdType = v
	}
	if v, ok := firstValue(tokens, decode.TagTradeDate); ok {
		order.TradeDate = v
	}
	if v, ok := firstValue(tokens, decode.TagSettlDate); ok {
		order.SettlDate = v
	} else if v, ok := firstValue(tokens, decode.TagSettlDate2); ok {
		order.SettlDate = v
	}
}

// appendEvent builds one timeline row from tokens and appends it,
// updating StatePath if the resulting tuple differs from the last one.
// ack is the ExecAckStatus to record; empty for ordinary Execution
// Reports, set by the BN branch.
//
// The timestamp prefers TransactTime (60) over SendingTime (52):
// TransactTime is the economically meaningful clock, SendingTime a
// transport artifact.
func appendEvent(order *Order, dict *fix.Dictionary, tokens []decode.Token, ack string) {
	ts, ok := firstValue(tokens, decode.TagTransactTime)
	if !ok {
		ts, _ = firstValue(tokens, decode.TagSendingTime)
	}
	msgType, _ := firstValue(tokens, decode.TagMsgType)
	execType, _ := firstValue(tokens, decode.TagExecType)
	ordStatus, _ := firstValue(tokens, decode.TagOrdStatus)
	clOrdID, _ := firstValue(tokens, decode.TagClOrdID)
	origClOrdID, _ := firstValue(tokens, decode.TagOrigClOrdID)
	cum, _ := firstValue(tokens, decode.TagCumQty)
	leaves, _ := firstValue(tokens, decode.TagLeavesQty)
	lastPx, _ := firstValue(tokens, decode.TagLastPx)
	avgPx, _ := firstValue(tokens, decode.TagAvgPx)
	text, _ := firstValue(tokens, decode.TagText)

	msgLabel := msgType
	if msgType == decode.MsgTypeBlockNotice {
		msgLabel = "Block Notice"
	} else if dict != nil {
		if m, ok := dict.Message(msgType); ok {
			msgLabel = m.Name
		}
	}

	order.Timeline = append(order.Timeline, Event{
		Time:          ts,
		MsgType:       msgType,
		MsgLabel:      msgLabel,
		ClOrdID:       clOrdID,
		OrigClOrdID:   origClOrdID,
		ExecAckStatus: ack,
		ExecType:      execType,
		OrdStatus:     ordStatus,
		CumQty:        cum,
		LeavesQty:     leaves,
		LastPx:        lastPx,
		AvgPx:         avgPx,
		Text:          text,
	})

	tuple := StateTuple{OrdStatus: ordStatus, ExecType: execType, ExecAckStatus: ack}
	if n := len(order.StatePath); n == 0 || !order.StatePath[n-1].equal(tuple) {
		order.StatePath = append(order.StatePath, tuple)
	}
}
