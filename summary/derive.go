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
	"strings"
	"time"

	"github.com/quickfixgo/quickfix"
)

const localMktDateLayout = "20060102"

// tenor derives the TOD/TOM/SPOT/FWD label: the number of business days
// (Saturdays and Sundays skipped, no holiday calendar) between trade
// and settl decides it.
func tenor(trade, settl string) string {
	t, err1 := time.Parse(localMktDateLayout, trade)
	s, err2 := time.Parse(localMktDateLayout, settl)
	if err1 != nil || err2 != nil || trade == "" || settl == "" {
		return ""
	}
	days := businessDays(t, s)
	switch days {
	case 0:
		return "TOD"
	case 1:
		return "TOM"
	case 2:
		return "SPOT"
	default:
		return "FWD"
	}
}

// businessDays counts weekday increments from trade to settl, skipping
// Saturday/Sunday. Returns 0 for settl <= trade (same-day or malformed
// backward ranges settle as TOD rather than a negative tenor).
func businessDays(trade, settl time.Time) int {
	if !settl.After(trade) {
		return 0
	}
	days := 0
	cur := trade
	for cur.Before(settl) {
		cur = cur.AddDate(0, 0, 1)
		if cur.Weekday() != time.Saturday && cur.Weekday() != time.Sunday {
			days++
		}
	}
	return days
}

// flowLabel renders state as "A → B → C", skipping leading tuples whose
// OrdStatus resolves to no known label.
func flowLabel(state []StateTuple, dict fieldLabeler) string {
	labels := make([]string, 0, len(state))
	skipping := true
	for _, t := range state {
		label, known := t.OrdStatus, dict == nil
		if dict != nil {
			label, known = dict.EnumLabel(quickfix.Tag(39), t.OrdStatus)
		}
		if !known {
			if skipping {
				continue
			}
			label = t.OrdStatus
		}
		skipping = false
		labels = append(labels, label)
	}
	return strings.Join(labels, " → ")
}
