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

package fixbuild

import (
	"strings"
	"time"

	"fixdecoder/decode"

	"github.com/google/uuid"
	"github.com/quickfixgo/quickfix"
)

// FixTimeFormat is the UTCTIMESTAMP layout used for SendingTime and
// TransactTime on generated messages.
const FixTimeFormat = "20060102-15:04:05"

// DefaultBeginString is the version stamped on generated messages unless
// a params struct overrides it.
const DefaultBeginString = "FIX.4.4"

// FieldSetter abstracts setting fields on FIX message components.
type FieldSetter interface {
	SetField(tag quickfix.Tag, field quickfix.FieldValueWriter) *quickfix.FieldMap
}

func setString(fs FieldSetter, tag quickfix.Tag, value string) {
	fs.SetField(tag, quickfix.FIXString(value))
}

// setStringIfNotEmpty sets a field only if the value is non-empty.
func setStringIfNotEmpty(fs FieldSetter, tag quickfix.Tag, value string) {
	if value != "" {
		fs.SetField(tag, quickfix.FIXString(value))
	}
}

// buildHeader sets common header fields for generated messages.
func buildHeader(header *quickfix.Header, beginString, msgType, senderCompId, targetCompId string) {
	if beginString == "" {
		beginString = DefaultBeginString
	}
	setString(header, decode.TagBeginString, beginString)
	setString(header, decode.TagMsgType, msgType)
	setString(header, decode.TagSenderCompID, senderCompId)
	setString(header, decode.TagTargetCompID, targetCompId)
	setString(header, decode.TagMsgSeqNum, "1")
	setString(header, decode.TagSendingTime, time.Now().UTC().Format(FixTimeFormat))
}

// NewID returns a fresh unique identifier for ClOrdID/OrderID values on
// generated messages.
func NewID() string {
	return uuid.NewString()
}

// --- New Order Single (D) ---

// NewOrderParams contains parameters for creating a new order.
type NewOrderParams struct {
	BeginString string // defaults to FIX.4.4
	Account     string // optional
	ClOrdID     string // required
	Symbol      string // required
	Side        string // "1" buy, "2" sell (required)
	OrdType     string // required
	OrderQty    string // conditional
	Price       string // conditional
	Currency    string // optional
	TimeInForce string // optional
	TradeDate   string // optional, YYYYMMDD
	SettlDate   string // optional, YYYYMMDD
}

// BuildNewOrderSingle creates a New Order Single (D) message.
//
// Example - limit order:
//
//	params := NewOrderParams{
//	    ClOrdID: fixbuild.NewID(), Symbol: "EUR/USD", Side: "1",
//	    OrdType: "2", OrderQty: "1000000", Price: "1.0945",
//	}
//	msg := BuildNewOrderSingle(params, senderCompId, targetCompId)
func BuildNewOrderSingle(params NewOrderParams, senderCompId, targetCompId string) *quickfix.Message {
	m := quickfix.NewMessage()
	buildHeader(&m.Header, params.BeginString, "D", senderCompId, targetCompId)

	setString(&m.Body, decode.TagClOrdID, params.ClOrdID)
	setStringIfNotEmpty(&m.Body, decode.TagAccount, params.Account)
	setString(&m.Body, decode.TagSymbol, params.Symbol)
	setString(&m.Body, decode.TagSide, params.Side)
	setString(&m.Body, decode.TagOrdType, params.OrdType)
	setString(&m.Body, decode.TagTransactTime, time.Now().UTC().Format(FixTimeFormat))

	setStringIfNotEmpty(&m.Body, decode.TagOrderQty, params.OrderQty)
	setStringIfNotEmpty(&m.Body, decode.TagPrice, params.Price)
	setStringIfNotEmpty(&m.Body, decode.TagCurrency, params.Currency)
	setStringIfNotEmpty(&m.Body, decode.TagTimeInForce, params.TimeInForce)
	setStringIfNotEmpty(&m.Body, decode.TagTradeDate, params.TradeDate)
	setStringIfNotEmpty(&m.Body, decode.TagSettlDate, params.SettlDate)

	return m
}

// --- Execution Report (8) ---

// ExecReportParams contains parameters for generating an execution report.
type ExecReportParams struct {
	BeginString string // defaults to FIX.4.4
	OrderID     string // required
	ClOrdID     string // optional
	OrigClOrdID string // optional
	ExecType    string // required
	OrdStatus   string // required
	Symbol      string // required
	Side        string // required
	OrderQty    string // optional
	CumQty      string // required
	LeavesQty   string // required
	LastPx      string // optional
	AvgPx       string // required
	Text        string // optional
}

// BuildExecutionReport creates an Execution Report (8) message.
func BuildExecutionReport(params ExecReportParams, senderCompId, targetCompId string) *quickfix.Message {
	m := quickfix.NewMessage()
	buildHeader(&m.Header, params.BeginString, "8", senderCompId, targetCompId)

	setString(&m.Body, decode.TagOrderID, params.OrderID)
	setStringIfNotEmpty(&m.Body, decode.TagClOrdID, params.ClOrdID)
	setStringIfNotEmpty(&m.Body, decode.TagOrigClOrdID, params.OrigClOrdID)
	setString(&m.Body, decode.TagExecType, params.ExecType)
	setString(&m.Body, decode.TagOrdStatus, params.OrdStatus)
	setString(&m.Body, decode.TagSymbol, params.Symbol)
	setString(&m.Body, decode.TagSide, params.Side)
	setStringIfNotEmpty(&m.Body, decode.TagOrderQty, params.OrderQty)
	setString(&m.Body, decode.TagCumQty, params.CumQty)
	setString(&m.Body, decode.TagLeavesQty, params.LeavesQty)
	setStringIfNotEmpty(&m.Body, decode.TagLastPx, params.LastPx)
	setString(&m.Body, decode.TagAvgPx, params.AvgPx)
	setString(&m.Body, decode.TagTransactTime, time.Now().UTC().Format(FixTimeFormat))
	setStringIfNotEmpty(&m.Body, decode.TagText, params.Text)

	return m
}

// --- Market Data Request (V) ---

// BuildMarketDataRequest creates a Market Data Request (V) message with
// NoMDEntryTypes and NoRelatedSym repeating groups.
func BuildMarketDataRequest(
	mdReqId string,
	symbols []string,
	subscriptionRequestType string,
	marketDepth string,
	senderCompId string,
	targetCompId string,
	mdEntryTypes []string,
) *quickfix.Message {
	m := quickfix.NewMessage()
	buildHeader(&m.Header, "", "V", senderCompId, targetCompId)

	setString(&m.Body, tagMdReqId, mdReqId)
	setString(&m.Body, tagSubscriptionRequestType, subscriptionRequestType)
	setString(&m.Body, tagMarketDepth, marketDepth)

	mdEntryGroup := quickfix.NewRepeatingGroup(
		tagNoMdEntryTypes,
		quickfix.GroupTemplate{quickfix.GroupElement(tagMdEntryType)},
	)
	for _, entryType := range mdEntryTypes {
		setString(mdEntryGroup.Add(), tagMdEntryType, entryType)
	}
	m.Body.SetGroup(mdEntryGroup)

	relatedSymGroup := quickfix.NewRepeatingGroup(
		tagNoRelatedSym,
		quickfix.GroupTemplate{quickfix.GroupElement(decode.TagSymbol)},
	)
	for _, symbol := range symbols {
		setString(relatedSymGroup.Add(), decode.TagSymbol, symbol)
	}
	m.Body.SetGroup(relatedSymGroup)
	return m
}

// Market-data tags used only by BuildMarketDataRequest.
var (
	tagMdReqId                 = quickfix.Tag(262)
	tagSubscriptionRequestType = quickfix.Tag(263)
	tagMarketDepth             = quickfix.Tag(264)
	tagNoMdEntryTypes          = quickfix.Tag(267)
	tagMdEntryType             = quickfix.Tag(269)
	tagNoRelatedSym            = quickfix.Tag(146)
)

// --- Block Notice (BN, installation extension) ---

// BlockNoticeParams contains parameters for generating a block notice.
type BlockNoticeParams struct {
	OrderID       string
	ClOrdID       string
	ExecAckStatus string
	LastPx        string
	OrderQty      string
}

// BuildBlockNotice creates a "BN" block-notice message carrying the
// extension tags the order summariser branches on.
func BuildBlockNotice(params BlockNoticeParams, senderCompId, targetCompId string) *quickfix.Message {
	m := quickfix.NewMessage()
	buildHeader(&m.Header, "", decode.MsgTypeBlockNotice, senderCompId, targetCompId)

	setStringIfNotEmpty(&m.Body, decode.TagOrderID, params.OrderID)
	setStringIfNotEmpty(&m.Body, decode.TagClOrdID, params.ClOrdID)
	setString(&m.Body, decode.TagExecAckStatus, params.ExecAckStatus)
	setStringIfNotEmpty(&m.Body, decode.TagLastPx, params.LastPx)
	setStringIfNotEmpty(&m.Body, decode.TagOrderQty, params.OrderQty)
	setString(&m.Body, decode.TagTransactTime, time.Now().UTC().Format(FixTimeFormat))

	return m
}

// Encode renders m as a raw tag=value byte run using delim as the field
// separator. quickfix computes BodyLength and CheckSum during its build,
// so the output always frames correctly; a non-SOH delimiter is
// substituted after the build (CheckSum is computed over SOH framing,
// which is what the decoder's checksum check expects only for SOH input,
// so tests that validate checksums should encode with SOH).
func Encode(m *quickfix.Message, delim byte) string {
	s := m.String()
	if delim == 0x01 {
		return s
	}
	return strings.ReplaceAll(s, "\x01", string(delim))
}
