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

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Options configures one filter run.
type Options struct {
	Port        uint16 // 0 means no port filter
	Delimiter   byte
	MaxPending  int           // per-flow reassembly buffer cap, bytes
	MaxEmit     int           // per-flow emission buffer cap, bytes
	IdleTimeout time.Duration // flows quiet for longer are flushed and removed
}

// Default per-flow memory ceilings and idle timeout, used when the
// caller doesn't override them.
const (
	DefaultMaxPending  = 1 << 20 // 1 MiB of buffered out-of-order segments
	DefaultMaxEmit     = 4 << 20 // 4 MiB of buffered emission bytes
	DefaultIdleTimeout = 30 * time.Second
)

// Run reads a pcap or pcapng capture from r packet by packet, filters
// to TCP segments on opts.Port (when set), reassembles each flow, and
// writes every complete FIX message found to w in capture order.
// Warnings (flow reset, idle flush, non-fatal) are sent to warn, which
// may be nil to discard them. Idle flushing follows capture time, so an
// offline file replays the same flush decisions a live stream would
// have made.
func Run(r io.Reader, w io.Writer, opts Options, warn func(Warning)) error {
	src, err := openSource(r)
	if err != nil {
		return fmt.Errorf("pcapfilter: %w", err)
	}

	table := NewTable(pick(opts.MaxPending, DefaultMaxPending), pick(opts.MaxEmit, DefaultMaxEmit), opts.Delimiter)
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	for {
		data, ci, err := src.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("pcapfilter: read packet: %w", err)
		}

		nowNano := ci.Timestamp.UnixNano()
		for _, key := range table.FlushIdle(nowNano, int64(idle)) {
			if warn != nil {
				warn(Warning{Flow: key, Msg: "idle flow flushed, partial tail discarded"})
			}
		}

		key, seq, payload, ok := decodeTCP(data, src.LinkType(), opts.Port)
		if !ok {
			continue
		}
		msgs, w2 := table.Segment(key, seq, payload)
		table.Touch(key, nowNano)
		if w2 != nil && warn != nil {
			warn(*w2)
		}
		for _, m := range msgs {
			if _, err := w.Write(m); err != nil {
				return fmt.Errorf("pcapfilter: write: %w", err)
			}
		}
	}
	return nil
}

// packetSource is the subset of pcapgo's reader types Run needs,
// satisfied by both classic pcap and pcapng files.
type packetSource interface {
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
	LinkType() layers.LinkType
}

// openSource sniffs the capture format from its magic bytes the way
// pcapgo's own NgReader/Reader constructors do (pcapng starts with a
// Section Header Block type 0x0A0D0D0A; classic pcap starts with the
// 0xA1B2C3D4 family of magic numbers).
func openSource(r io.Reader) (packetSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic[0] == 0x0a && magic[1] == 0x0d && magic[2] == 0x0d && magic[3] == 0x0a {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// decodeTCP extracts the flow 5-tuple, TCP sequence number of the
// first payload byte, and payload from one captured frame. ok is false
// for non-TCP packets, packets with no payload, or packets not
// matching the port filter.
func decodeTCP(data []byte, linkType layers.LinkType, port uint16) (key FlowKey, seq uint32, payload []byte, ok bool) {
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	tcpLayer := packet.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return key, 0, nil, false
	}
	tcp, _ := tcpLayer.(*layers.TCP)

	var srcIP, dstIP string
	if ip4 := packet.Layer(layers.LayerTypeIPv4); ip4 != nil {
		l := ip4.(*layers.IPv4)
		srcIP, dstIP = l.SrcIP.String(), l.DstIP.String()
	} else if ip6 := packet.Layer(layers.LayerTypeIPv6); ip6 != nil {
		l := ip6.(*layers.IPv6)
		srcIP, dstIP = l.SrcIP.String(), l.DstIP.String()
	} else {
		return key, 0, nil, false
	}

	if port != 0 && uint16(tcp.SrcPort) != port && uint16(tcp.DstPort) != port {
		return key, 0, nil, false
	}
	if len(tcp.Payload) == 0 {
		return key, 0, nil, false
	}

	key = FlowKey{SrcIP: srcIP, DstIP: dstIP, SrcPort: uint16(tcp.SrcPort), DstPort: uint16(tcp.DstPort)}
	return key, tcp.Seq, tcp.Payload, true
}

func pick(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
