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

// Command pcap2fix reassembles TCP streams from a packet capture and
// writes the FIX messages they carry to standard output, for piping
// into fixdecoder.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fixdecoder/decode"
	"fixdecoder/pcapfilter"
)

const usage = `Usage: pcap2fix [FLAGS]

Reads a pcap or pcapng capture from --input (or standard input), filters
to TCP segments, reassembles each flow, and writes complete FIX messages
to standard output in capture order. Diagnostics go to standard error.

Flags:
  --input=FILE     read an offline capture instead of standard input
  --port=N         keep only segments to or from TCP port N
  --delimiter=C    field separator: a character, SOH, or \xNN
  --help           print this text and exit
`

type config struct {
	input     string
	port      uint16
	delimiter string
	help      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "pcap2fix:", err)
		return 1
	}
	if cfg.help {
		fmt.Fprint(stdout, usage)
		return 0
	}

	delim := decode.DefaultDelimiter
	if cfg.delimiter != "" {
		d, err := decode.ParseDelimiter(cfg.delimiter)
		if err != nil {
			fmt.Fprintln(stderr, "pcap2fix:", err)
			return 1
		}
		delim = d
	}

	in := stdin
	if cfg.input != "" {
		f, err := os.Open(cfg.input)
		if err != nil {
			fmt.Fprintf(stderr, "pcap2fix: --input %s: %v\n", cfg.input, err)
			return 1
		}
		defer f.Close()
		in = f
	}

	opts := pcapfilter.Options{Port: cfg.port, Delimiter: delim}
	err = pcapfilter.Run(in, stdout, opts, func(w pcapfilter.Warning) {
		fmt.Fprintln(stderr, w.String())
	})
	if err != nil {
		fmt.Fprintln(stderr, "pcap2fix:", err)
		return 1
	}
	return 0
}

func parseArgs(args []string) (config, error) {
	var cfg config
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := splitFlag(arg)
		// --flag VALUE is accepted alongside --flag=VALUE.
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 < len(args) {
				i++
				return args[i], nil
			}
			return "", fmt.Errorf("%s requires a value", name)
		}

		switch name {
		case "--input":
			v, err := takeValue()
			if err != nil {
				return cfg, err
			}
			cfg.input = v
		case "--port":
			v, err := takeValue()
			if err != nil {
				return cfg, err
			}
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return cfg, fmt.Errorf("bad --port value %q", v)
			}
			cfg.port = uint16(n)
		case "--delimiter":
			v, err := takeValue()
			if err != nil {
				return cfg, err
			}
			cfg.delimiter = v
		case "-h", "--help":
			cfg.help = true
		default:
			return cfg, fmt.Errorf("unrecognised flag %q", arg)
		}
	}
	return cfg, nil
}

func splitFlag(arg string) (name, value string, hasValue bool) {
	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		return arg[:eq], arg[eq+1:], true
	}
	return arg, "", false
}
