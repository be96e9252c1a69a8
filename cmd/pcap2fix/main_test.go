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
	"bytes"
	"strings"
	"testing"
)

// Tests for pcap2fix CLI behavior: flag parsing in both --flag=value
// and --flag value forms, and error exits.

// TestParseArgs_BothFlagForms verifies that a --flag=value form (port)
// and --flag value forms (input, delimiter) parse in one argument list.
func TestParseArgs_BothFlagForms(t *testing.T) {
	cfg, err := parseArgs([]string{"--port=9898", "--input", "cap.pcap", "--delimiter", "SOH"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.port != 9898 || cfg.input != "cap.pcap" || cfg.delimiter != "SOH" {
		t.Errorf("parsed config mismatch: %+v", cfg)
	}
}

// TestParseArgs_BadPortRejected verifies port validation.
func TestParseArgs_BadPortRejected(t *testing.T) {
	if _, err := parseArgs([]string{"--port=notanumber"}); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
	if _, err := parseArgs([]string{"--port=70000"}); err == nil {
		t.Error("expected an error for an out-of-range port")
	}
}

// TestRun_MissingInputFileIsFatal verifies the unreadable-file exit
// code.
func TestRun_MissingInputFileIsFatal(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"--input=/nonexistent/capture.pcap"}, strings.NewReader(""), &out, &errBuf)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(errBuf.String(), "capture.pcap") {
		t.Errorf("stderr should name the file: %s", errBuf.String())
	}
}

// TestRun_HelpExitsZero verifies --help prints usage and exits 0.
func TestRun_HelpExitsZero(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"--help"}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "Usage: pcap2fix") {
		t.Errorf("usage should print: %s", out.String())
	}
}

// TestRun_UnrecognisedFlagIsFatal verifies bad CLI input exits 1.
func TestRun_UnrecognisedFlagIsFatal(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := run([]string{"--bogus"}, strings.NewReader(""), &out, &errBuf); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}
