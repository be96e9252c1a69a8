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

// Command fixdecoder prettifies, validates, and summarises FIX protocol
// logs, and can explore a dictionary's messages/components/tags
// interactively.
//
// Flag parsing is a hand-rolled loop over os.Args rather than the
// standard `flag` package, since the surface mixes bare mode flags with
// optional-value flags (`--message[=M]`) that `flag` doesn't model
// cleanly.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"fixdecoder/decode"
	"fixdecoder/fix"
	"fixdecoder/summary"

	"github.com/quickfixgo/quickfix"
	"golang.org/x/term"
)

// Build metadata, settable via -ldflags -X and overridable by
// FIXDECODER_VERSION / _BRANCH / _COMMIT / _GIT_URL at process start.
var (
	buildVersion = "dev"
	buildBranch  = "unknown"
	buildCommit  = "unknown"
	buildGitURL  = "unknown"
)

type config struct {
	files     []string
	fixKey    string
	xmlFiles  []string
	info      bool
	message   string
	hasMsg    bool
	component string
	hasComp   bool
	tag       string
	hasTag    bool
	column    bool
	verbose   bool
	header    bool
	trailer   bool
	colour    string
	delimiter string
	validate  bool
	secret    bool
	summary   bool
	follow    bool
	explore   bool
	demo      bool
	version   bool
	help      bool
}

const usage = `Usage: fixdecoder [FLAGS] [FILE...]

Reads FIX protocol logs from FILEs (or standard input) and prints each
embedded message as a coloured field-by-field breakdown.

Flags:
  --fix=V          force a dictionary (44, 4.4, FIX44, T11, ...)
  --xml=FILE       load an override dictionary (repeatable)
  --info           list dictionary keys and exit
  --message[=M]    show a message's structure, or list all messages
  --component[=N]  show a component's members, or list all components
  --tag[=T]        show a field's definition, or list all fields
  --explore        browse the dictionary interactively
  --column         tabular listing output
  --verbose        include enum sets in listings
  --header         include the header block in --message output
  --trailer        include the trailer block in --message output
  --colour[=yes|no] force colour on or off (default: on for a TTY)
  --delimiter=C    field separator: a character, SOH, or \xNN
  --validate       append protocol findings after each message
  --secret         obfuscate sensitive identifiers
  --summary        fold the stream into per-order lifecycle summaries
  -f, --follow     keep reading at end of input
  --demo           print generated sample messages and exit
  --version        print build metadata and exit
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "fixdecoder:", err)
		return 1
	}

	if cfg.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if cfg.version {
		fmt.Fprintln(stdout, versionBanner())
		return 0
	}

	delim := decode.DefaultDelimiter
	if cfg.delimiter != "" {
		d, err := decode.ParseDelimiter(cfg.delimiter)
		if err != nil {
			fmt.Fprintln(stderr, "fixdecoder:", err)
			return 1
		}
		delim = d
	}

	reg := fix.NewRegistry()
	for _, path := range cfg.xmlFiles {
		doc, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "fixdecoder: --xml %s: %v\n", path, err)
			return 1
		}
		if _, err := reg.LoadOverride(doc); err != nil {
			fmt.Fprintf(stderr, "fixdecoder: --xml %s: %v\n", path, err)
			return 1
		}
	}

	forcedKey := ""
	if cfg.fixKey != "" {
		forcedKey = fix.NormalizeKey(cfg.fixKey)
		if _, ok := reg.Get(forcedKey); !ok {
			fmt.Fprintf(stderr, "fixdecoder: unknown --fix dictionary %s\n", forcedKey)
			return 1
		}
	}

	colourOn := decode.EffectiveColour(cfg.colour, isTerminal(stdout))
	explore := ExploreOptions(cfg, colourOn)

	switch {
	case cfg.demo:
		return runDemo(delim, stdout)
	case cfg.explore:
		return exploreRepl(reg, forcedKey, explore)
	case cfg.info:
		selected := forcedKey
		if selected == "" {
			selected = fix.DefaultKey
		}
		fmt.Fprintln(stdout, decode.RenderInfo(reg, selected))
		return 0
	case cfg.hasMsg, cfg.hasComp, cfg.hasTag:
		return runExplorer(cfg, reg, forcedKey, explore, stdout, stderr)
	}

	return runPipeline(cfg, reg, forcedKey, delim, colourOn, stdin, stdout, stderr)
}

func dictForExplorer(reg *fix.Registry, forcedKey string) *fix.Dictionary {
	key := forcedKey
	if key == "" {
		key = fix.DefaultKey
	}
	d, _ := reg.Get(key)
	return d
}

// ExploreOptions builds decode.ExploreOptions from the parsed flags.
func ExploreOptions(cfg config, colourOn bool) decode.ExploreOptions {
	return decode.ExploreOptions{Column: cfg.column, Verbose: cfg.verbose, Header: cfg.header, Trailer: cfg.trailer, Colour: colourOn}
}

func runExplorer(cfg config, reg *fix.Registry, forcedKey string, opts decode.ExploreOptions, stdout, stderr io.Writer) int {
	dict := dictForExplorer(reg, forcedKey)
	if dict == nil {
		fmt.Fprintln(stderr, "fixdecoder: no dictionary available for lookup")
		return 1
	}

	switch {
	case cfg.hasMsg:
		if cfg.message == "" {
			fmt.Fprintln(stdout, decode.RenderMessageList(dict, opts))
			return 0
		}
		msg, ok := dict.MessageByName(cfg.message)
		if !ok {
			msg, ok = dict.Message(cfg.message)
		}
		if !ok {
			fmt.Fprintf(stderr, "fixdecoder: unknown message %q in %s\n", cfg.message, dict.Key)
			return 1
		}
		fmt.Fprintln(stdout, decode.RenderMessageDetail(dict, msg, opts))
		return 0
	case cfg.hasComp:
		if cfg.component == "" {
			fmt.Fprintln(stdout, decode.RenderComponentList(dict, opts))
			return 0
		}
		comp, ok := dict.Component(cfg.component)
		if !ok {
			fmt.Fprintf(stderr, "fixdecoder: unknown component %q in %s\n", cfg.component, dict.Key)
			return 1
		}
		fmt.Fprintln(stdout, decode.RenderComponentDetail(dict, comp, opts))
		return 0
	case cfg.hasTag:
		if cfg.tag == "" {
			fmt.Fprintln(stdout, decode.RenderFieldList(dict, opts))
			return 0
		}
		field, ok := dict.FieldByName(cfg.tag)
		if !ok {
			if n, err := parsePositiveInt(cfg.tag); err == nil {
				field, ok = dict.Field(toTag(n))
			}
		}
		if !ok {
			fmt.Fprintf(stderr, "fixdecoder: unknown tag %q in %s\n", cfg.tag, dict.Key)
			return 1
		}
		fmt.Fprintln(stdout, decode.RenderTagDetail(dict, field, opts))
		return 0
	}
	return 0
}

func runPipeline(cfg config, reg *fix.Registry, forcedKey string, delim byte, colourOn bool, stdin io.Reader, stdout, stderr io.Writer) int {
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupted)
	cancelled := false

	obf := decode.NewObfuscator()
	store := summary.NewStore()
	var dict *fix.Dictionary

	processLine := func(line string) {
		pos := 0
		for {
			start, end, ok, warn := decode.Locate(line[pos:], delim)
			if !ok {
				return
			}
			if warn != "" {
				fmt.Fprintln(stderr, warn)
				fmt.Fprintln(stdout, line[pos:])
				return
			}
			raw := line[pos+start : pos+end]
			pos = pos + end

			tokens, err := decode.Tokenize(raw, delim)
			if err != nil {
				fmt.Fprintf(stderr, "fixdecoder: %v\n", err)
				continue
			}
			d, warnMsg := decode.PickSchema(reg, tokens, forcedKey)
			dict = d
			if warnMsg != "" {
				fmt.Fprintln(stderr, warnMsg)
			}

			if cfg.summary {
				store.Ingest(dict, tokens)
				continue
			}

			var findings []decode.Finding
			if cfg.validate {
				findings = decode.Validate(dict, raw, tokens, delim)
			}
			msgType := firstTokenValue(tokens, decode.TagMsgType)
			msgName := msgType
			if m, ok := dict.Message(msgType); ok {
				msgName = m.Name
			}
			fmt.Fprintln(stdout, decode.Prettify(dict, msgName, tokens, raw, obf, findings, decode.Options{Colour: colourOn, Secret: cfg.secret}))

			if pos >= len(line) {
				return
			}
		}
	}

	readers, closeAll, err := openInputs(cfg.files, stdin)
	if err != nil {
		fmt.Fprintln(stderr, "fixdecoder:", err)
		return 1
	}
	defer closeAll()

	lastFlush := time.Now()
	for _, r := range readers {
		// Aliases never carry across input units.
		obf.Reset()
		br := bufio.NewReaderSize(r, 1<<20)
		for {
			select {
			case <-interrupted:
				cancelled = true
			default:
			}
			if cancelled {
				break
			}

			line, err := br.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				processLine(line)
			}
			if cfg.summary && time.Since(lastFlush) > time.Second {
				flushDirty(store, dict, colourOn, stdout)
				lastFlush = time.Now()
			}
			if err != nil {
				if err == io.EOF {
					if cfg.follow {
						time.Sleep(100 * time.Millisecond)
						continue
					}
					break
				}
				fmt.Fprintf(stderr, "fixdecoder: read: %v\n", err)
				break
			}
		}
		if cancelled {
			break
		}
	}

	if cfg.summary {
		if cancelled {
			flushDirty(store, dict, colourOn, stdout)
		} else {
			fmt.Fprintln(stdout, summary.Render(dict, store.All(), colourOn))
		}
	}

	if cancelled {
		return 2
	}
	return 0
}

func flushDirty(store *summary.Store, dict *fix.Dictionary, colourOn bool, stdout io.Writer) {
	dirty := store.Dirty()
	for _, o := range dirty {
		fmt.Fprintln(stdout, summary.RenderOne(dict, o, colourOn))
	}
}

func firstTokenValue(tokens []decode.Token, tag quickfix.Tag) string {
	for _, t := range tokens {
		if t.Tag == tag {
			return t.Value
		}
	}
	return ""
}

func openInputs(files []string, stdin io.Reader) (readers []io.Reader, closeAll func(), err error) {
	if len(files) == 0 {
		return []io.Reader{stdin}, func() {}, nil
	}
	var closers []io.Closer
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		readers = append(readers, f)
		closers = append(closers, f)
	}
	return readers, func() {
		for _, c := range closers {
			c.Close()
		}
	}, nil
}

func toTag(n int) quickfix.Tag {
	return quickfix.Tag(n)
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// parseArgs walks the argument list by hand: each argument is matched
// against the known flag names, `--flag=value` is split on the first
// `=`, and bare arguments accumulate as input file paths. Flags with an
// optional value (`--message[=M]`) set a "has" bool even when no value
// follows, distinguishing "list" from "detail" mode.
func parseArgs(args []string) (config, error) {
	var cfg config
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			cfg.files = append(cfg.files, arg)
			continue
		}

		name, value, hasValue := splitFlag(arg)
		switch name {
		case "--fix":
			if !hasValue {
				return cfg, fmt.Errorf("--fix requires a value")
			}
			cfg.fixKey = value
		case "--xml":
			if !hasValue {
				return cfg, fmt.Errorf("--xml requires a value")
			}
			cfg.xmlFiles = append(cfg.xmlFiles, value)
		case "--info":
			cfg.info = true
		case "--message":
			cfg.hasMsg = true
			cfg.message = value
		case "--component":
			cfg.hasComp = true
			cfg.component = value
		case "--tag":
			cfg.hasTag = true
			cfg.tag = value
		case "--column":
			cfg.column = true
		case "--verbose":
			cfg.verbose = true
		case "--header":
			cfg.header = true
		case "--trailer":
			cfg.trailer = true
		case "--colour", "--color":
			cfg.colour = value
			if !hasValue {
				cfg.colour = "yes"
			}
		case "--delimiter":
			if !hasValue {
				return cfg, fmt.Errorf("--delimiter requires a value")
			}
			cfg.delimiter = value
		case "--validate":
			cfg.validate = true
		case "--secret":
			cfg.secret = true
		case "--summary":
			cfg.summary = true
		case "-f", "--follow":
			cfg.follow = true
		case "--explore":
			cfg.explore = true
		case "--demo":
			cfg.demo = true
		case "--version":
			cfg.version = true
		case "-h", "--help":
			cfg.help = true
		default:
			return cfg, fmt.Errorf("unrecognised flag %q", arg)
		}
	}
	return cfg, nil
}

// splitFlag splits "--name=value" into ("--name", "value", true), or
// "--name" into ("--name", "", false).
func splitFlag(arg string) (name, value string, hasValue bool) {
	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		return arg[:eq], arg[eq+1:], true
	}
	return arg, "", false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// versionBanner follows the `name version (branch:... commit:...)
// [toolchain]` shape. The bracket names the toolchain the binary was
// built with; the git URL, when known, follows it.
func versionBanner() string {
	banner := fmt.Sprintf("fixdecoder %s (branch:%s commit:%s) [%s]",
		buildVersion, buildBranch, buildCommit, runtime.Version())
	if buildGitURL != "" && buildGitURL != "unknown" {
		banner += " " + buildGitURL
	}
	return banner
}

func init() {
	if v := os.Getenv("FIXDECODER_VERSION"); v != "" {
		buildVersion = v
	}
	if v := os.Getenv("FIXDECODER_BRANCH"); v != "" {
		buildBranch = v
	}
	if v := os.Getenv("FIXDECODER_COMMIT"); v != "" {
		buildCommit = v
	}
	if v := os.Getenv("FIXDECODER_GIT_URL"); v != "" {
		buildGitURL = v
	}
}
