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

// Package pcapfilter reconstructs TCP byte streams from captured
// packets and extracts complete FIX messages from the reassembled
// bytes, in packet-capture order per flow. All per-flow buffers are
// bounded; capacity is enforced before insertion.
package pcapfilter

import (
	"bytes"
	"fmt"
)

// FlowKey is the 5-tuple identifying one TCP flow, normalised so that
// both directions of a connection never collide with each other but a
// retransmitted segment from the same direction always resolves to the
// same flow.
type FlowKey struct {
	SrcIP, DstIP     string
	SrcPort, DstPort uint16
}

func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d->%s:%d", k.SrcIP, k.SrcPort, k.DstIP, k.DstPort)
}

// segment is one buffered out-of-order TCP payload, kept sorted by Seq
// in the flow's pending list.
type segment struct {
	Seq     uint32
	Payload []byte
}

// Flow holds one TCP connection's reassembly state. Exactly one reader
// goroutine touches a given Flow, so it needs no lock of its own.
type Flow struct {
	Key FlowKey

	started      bool
	nextExpected uint32

	pending    []segment // out-of-order segments awaiting nextExpected, sorted by Seq
	pendingLen int       // total buffered pending bytes, for the cap check

	emission bytes.Buffer

	byteCount int
	lastSeen  int64 // unix-nano of last packet touching this flow, for idle flush

	maxPending int // cap on buffered out-of-order bytes before a flow reset
	maxEmit    int // cap on the emission buffer before the oldest bytes are dropped
}

// NewFlow returns an empty Flow for key, with the given reassembly and
// emission memory ceilings.
func NewFlow(key FlowKey, maxPending, maxEmit int) *Flow {
	return &Flow{Key: key, maxPending: maxPending, maxEmit: maxEmit}
}

// Reset discards all buffered state, keeping the flow's identity. Used
// when the out-of-order cap is exceeded.
func (f *Flow) Reset() {
	f.started = false
	f.nextExpected = 0
	f.pending = nil
	f.pendingLen = 0
	f.emission.Reset()
	f.byteCount = 0
}

// Accept folds one TCP segment (sequence number of its first payload
// byte, and the payload itself) into the flow. It reports whether the
// flow had to be reset because the reassembly cap was exceeded; newly
// contiguous bytes land in the emission buffer (see Emitted).
func (f *Flow) Accept(seq uint32, payload []byte) (reset bool) {
	if len(payload) == 0 {
		return false
	}
	if !f.started {
		f.started = true
		f.nextExpected = seq
	}

	// Retransmit: segment entirely below nextExpected.
	if seqBefore(seq+uint32(len(payload)), f.nextExpected+1) {
		return false
	}
	// Partial overlap: trim the already-seen prefix.
	if seqBefore(seq, f.nextExpected) {
		skip := f.nextExpected - seq
		if int(skip) >= len(payload) {
			return false
		}
		seq = f.nextExpected
		payload = payload[skip:]
	}

	if seq == f.nextExpected {
		f.appendContiguous(payload)
		f.drainPending()
		return false
	}

	// Future segment: buffer it until the gap closes.
	if f.pendingLen+len(payload) > f.maxPending {
		f.Reset()
		return true
	}
	f.insertPending(segment{Seq: seq, Payload: append([]byte(nil), payload...)})
	f.pendingLen += len(payload)
	return false
}

// appendContiguous appends bytes known to start exactly at
// nextExpected to the emission buffer, enforcing the emission cap by
// dropping the oldest bytes.
func (f *Flow) appendContiguous(payload []byte) {
	f.emission.Write(payload)
	f.nextExpected += uint32(len(payload))
	f.byteCount += len(payload)
	if excess := f.emission.Len() - f.maxEmit; f.maxEmit > 0 && excess > 0 {
		f.emission.Next(excess)
	}
}

// drainPending folds any buffered out-of-order segments that have
// become contiguous with nextExpected, in sequence order.
func (f *Flow) drainPending() {
	for len(f.pending) > 0 {
		s := f.pending[0]
		if seqBefore(f.nextExpected, s.Seq) {
			break // still a gap
		}
		f.pending = f.pending[1:]
		f.pendingLen -= len(s.Payload)

		if seqBefore(s.Seq+uint32(len(s.Payload)), f.nextExpected+1) {
			continue // fully superseded while waiting
		}
		start := uint32(0)
		if seqBefore(s.Seq, f.nextExpected) {
			start = f.nextExpected - s.Seq
		}
		f.appendContiguous(s.Payload[start:])
	}
}

// insertPending keeps f.pending sorted by Seq.
func (f *Flow) insertPending(s segment) {
	i := 0
	for i < len(f.pending) && seqBefore(f.pending[i].Seq, s.Seq) {
		i++
	}
	f.pending = append(f.pending, segment{})
	copy(f.pending[i+1:], f.pending[i:])
	f.pending[i] = s
}

// seqBefore compares TCP sequence numbers with 32-bit wraparound
// semantics: a is before b when the signed difference a-b is negative.
func seqBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// Emitted returns the emission buffer's current unconsumed bytes
// without discarding them.
func (f *Flow) Emitted() []byte {
	return f.emission.Bytes()
}

// Consume discards the first n bytes of the emission buffer, called
// after a complete FIX message has been extracted from it.
func (f *Flow) Consume(n int) {
	f.emission.Next(n)
}
