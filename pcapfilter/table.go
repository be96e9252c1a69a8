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

package pcapfilter

import "fmt"

// Warning is a non-fatal pcapfilter event (a flow reset or idle flush).
// The CLI prints these to stderr and continues.
type Warning struct {
	Flow FlowKey
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("pcapfilter: %s: %s", w.Flow, w.Msg)
}

// Table owns every active Flow, keyed by its 5-tuple. Single-threaded:
// the packet reader is the table's only caller, so no lock is needed.
type Table struct {
	flows      map[FlowKey]*Flow
	maxPending int
	maxEmit    int
	delim      byte
}

// NewTable returns an empty Table. maxPending and maxEmit bound each
// flow's reassembly and emission buffers respectively; delim is the
// FIX field separator used to scan the emission buffer, matching the
// decoder's --delimiter semantics.
func NewTable(maxPending, maxEmit int, delim byte) *Table {
	return &Table{flows: make(map[FlowKey]*Flow), maxPending: maxPending, maxEmit: maxEmit, delim: delim}
}

// Segment feeds one TCP payload for key at sequence number seq into
// the table, returning any complete FIX messages newly available and
// a warning if the flow had to be reset.
func (t *Table) Segment(key FlowKey, seq uint32, payload []byte) (messages [][]byte, warn *Warning) {
	f, ok := t.flows[key]
	if !ok {
		f = NewFlow(key, t.maxPending, t.maxEmit)
		t.flows[key] = f
	}
	if reset := f.Accept(seq, payload); reset {
		warn = &Warning{Flow: key, Msg: "reassembly buffer exceeded cap, flow reset"}
	}

	msgs, consumed := ScanMessages(f.Emitted(), t.delim)
	if consumed > 0 {
		f.Consume(consumed)
	}
	return msgs, warn
}

// Touch records that key saw activity at nowNano, for idle-flush
// bookkeeping.
func (t *Table) Touch(key FlowKey, nowNano int64) {
	if f, ok := t.flows[key]; ok {
		f.lastSeen = nowNano
	}
}

// FlushIdle removes and returns the keys of every flow whose lastSeen
// is older than nowNano-idleNanos. Each flushed flow's buffered tail
// (an incomplete message, if any) is discarded with it.
func (t *Table) FlushIdle(nowNano, idleNanos int64) []FlowKey {
	var flushed []FlowKey
	for key, f := range t.flows {
		if nowNano-f.lastSeen >= idleNanos {
			flushed = append(flushed, key)
			delete(t.flows, key)
		}
	}
	return flushed
}

// Len returns the number of active flows.
func (t *Table) Len() int {
	return len(t.flows)
}
