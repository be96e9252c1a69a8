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

// Package decode implements the streaming half of the pipeline: locating
// FIX runs inside arbitrary log lines, tokenising them, picking the right
// dictionary, rendering a coloured breakdown, validating, and
// obfuscating sensitive values.
package decode

import (
	"strconv"

	"github.com/quickfixgo/quickfix"
)

// tagString renders a tag number as its decimal wire form.
func tagString(t quickfix.Tag) string {
	return strconv.Itoa(int(t))
}

// Well-known tag numbers referenced by the tokeniser, schema picker and
// validator directly (as opposed to looked up by name through a
// Dictionary).
var (
	TagBeginString      = quickfix.Tag(8)
	TagBodyLength       = quickfix.Tag(9)
	TagCheckSum         = quickfix.Tag(10)
	TagMsgSeqNum        = quickfix.Tag(34)
	TagMsgType          = quickfix.Tag(35)
	TagSenderCompID     = quickfix.Tag(49)
	TagSendingTime      = quickfix.Tag(52)
	TagTargetCompID     = quickfix.Tag(56)
	TagApplVerID        = quickfix.Tag(1128)
	TagDefaultApplVerID = quickfix.Tag(1137)

	TagAccount      = quickfix.Tag(1)
	TagAvgPx        = quickfix.Tag(6)
	TagClOrdID      = quickfix.Tag(11)
	TagCumQty       = quickfix.Tag(14)
	TagCurrency     = quickfix.Tag(15)
	TagLastPx       = quickfix.Tag(31)
	TagOrderID      = quickfix.Tag(37)
	TagOrderQty     = quickfix.Tag(38)
	TagOrdStatus    = quickfix.Tag(39)
	TagOrdType      = quickfix.Tag(40)
	TagOrigClOrdID  = quickfix.Tag(41)
	TagPrice        = quickfix.Tag(44)
	TagSide         = quickfix.Tag(54)
	TagSymbol       = quickfix.Tag(55)
	TagText         = quickfix.Tag(58)
	TagTimeInForce  = quickfix.Tag(59)
	TagTransactTime = quickfix.Tag(60)
	TagSettlDate    = quickfix.Tag(64)
	TagTradeDate    = quickfix.Tag(75)
	TagExecType     = quickfix.Tag(150)
	TagLeavesQty    = quickfix.Tag(151)
	TagSettlDate2   = quickfix.Tag(193)

	// ExecAckStatus is an installation-specific extension tag used only
	// by "BN" (block notice) messages.
	TagExecAckStatus = quickfix.Tag(9001)
)

// MsgTypeBlockNotice is the installation-specific "BN" MsgType: not
// part of any standard FIX dictionary, recognised only by the order
// summariser, which branches on it without schema validation of the
// extension.
const MsgTypeBlockNotice = "BN"
