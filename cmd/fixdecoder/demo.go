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

package main

import (
	"fmt"
	"io"

	"fixdecoder/fixbuild"

	"github.com/quickfixgo/quickfix"
)

// runDemo prints a generated order lifecycle as raw FIX, one message per
// line, for piping back through the decoder (`fixdecoder --demo |
// fixdecoder --validate --summary`).
func runDemo(delim byte, stdout io.Writer) int {
	clOrdID := fixbuild.NewID()
	orderID := fixbuild.NewID()

	order := fixbuild.BuildNewOrderSingle(fixbuild.NewOrderParams{
		ClOrdID:     clOrdID,
		Symbol:      "EUR/USD",
		Side:        "1",
		OrdType:     "2",
		OrderQty:    "1000000",
		Price:       "1.0945",
		Currency:    "EUR",
		TimeInForce: "0",
	}, "CLIENT", "BROKER")

	ack := fixbuild.BuildExecutionReport(fixbuild.ExecReportParams{
		OrderID: orderID, ClOrdID: clOrdID,
		ExecType: "0", OrdStatus: "0",
		Symbol: "EUR/USD", Side: "1", OrderQty: "1000000",
		CumQty: "0", LeavesQty: "1000000", AvgPx: "0",
	}, "BROKER", "CLIENT")

	partial := fixbuild.BuildExecutionReport(fixbuild.ExecReportParams{
		OrderID: orderID, ClOrdID: clOrdID,
		ExecType: "F", OrdStatus: "1",
		Symbol: "EUR/USD", Side: "1", OrderQty: "1000000",
		CumQty: "400000", LeavesQty: "600000",
		LastPx: "1.0944", AvgPx: "1.0944",
	}, "BROKER", "CLIENT")

	filled := fixbuild.BuildExecutionReport(fixbuild.ExecReportParams{
		OrderID: orderID, ClOrdID: clOrdID,
		ExecType: "F", OrdStatus: "2",
		Symbol: "EUR/USD", Side: "1", OrderQty: "1000000",
		CumQty: "1000000", LeavesQty: "0",
		LastPx: "1.0946", AvgPx: "1.0945",
	}, "BROKER", "CLIENT")

	for _, m := range []*quickfix.Message{order, ack, partial, filled} {
		fmt.Fprintln(stdout, fixbuild.Encode(m, delim))
	}
	return 0
}
