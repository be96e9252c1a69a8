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
	"log"
	"sort"
	"strings"

	"fixdecoder/decode"
	"fixdecoder/fix"

	"github.com/chzyer/readline"
)

// exploreRepl runs the interactive dictionary browser behind --explore:
// a readline prompt with command completion over the selected
// dictionary's message, component and field names.
func exploreRepl(reg *fix.Registry, startKey string, opts decode.ExploreOptions) int {
	key := startKey
	if key == "" {
		key = fix.DefaultKey
	}
	dict, ok := reg.Get(key)
	if !ok {
		log.Printf("No dictionary available for %s", key)
		return 1
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "FIX> ",
		HistoryFile:     "/tmp/fixdecoder_history",
		AutoComplete:    exploreCompleter(reg, dict),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("Failed to create readline: %v", err)
		return 1
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "message":
			if len(parts) == 1 {
				fmt.Print(decode.RenderMessageList(dict, opts))
				continue
			}
			msg, ok := dict.MessageByName(parts[1])
			if !ok {
				msg, ok = dict.Message(parts[1])
			}
			if !ok {
				fmt.Printf("Unknown message %q in %s\n", parts[1], dict.Key)
				continue
			}
			fmt.Print(decode.RenderMessageDetail(dict, msg, opts))
		case "component":
			if len(parts) == 1 {
				fmt.Print(decode.RenderComponentList(dict, opts))
				continue
			}
			comp, ok := dict.Component(parts[1])
			if !ok {
				fmt.Printf("Unknown component %q in %s\n", parts[1], dict.Key)
				continue
			}
			fmt.Print(decode.RenderComponentDetail(dict, comp, opts))
		case "tag":
			if len(parts) == 1 {
				fmt.Print(decode.RenderFieldList(dict, opts))
				continue
			}
			field, ok := dict.FieldByName(parts[1])
			if !ok {
				if n, err := parsePositiveInt(parts[1]); err == nil {
					field, ok = dict.Field(toTag(n))
				}
			}
			if !ok {
				fmt.Printf("Unknown tag %q in %s\n", parts[1], dict.Key)
				continue
			}
			fmt.Print(decode.RenderTagDetail(dict, field, opts))
		case "dict":
			if len(parts) == 1 {
				fmt.Printf("Current dictionary: %s\n", dict.Key)
				continue
			}
			k := fix.NormalizeKey(parts[1])
			d, ok := reg.Get(k)
			if !ok {
				fmt.Printf("Unknown dictionary %q\n", parts[1])
				continue
			}
			dict = d
			rl.Config.AutoComplete = exploreCompleter(reg, dict)
			fmt.Printf("Switched to %s\n", dict.Key)
		case "info":
			fmt.Print(decode.RenderInfo(reg, dict.Key))
		case "help":
			fmt.Print(exploreHelp)
		case "version":
			fmt.Println(versionBanner())
		case "exit", "quit":
			return 0
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
	return 0
}

const exploreHelp = `Commands:
  message [NAME|MSGTYPE]   show a message's structure, or list all messages
  component [NAME]         show a component's members, or list all components
  tag [NAME|NUMBER]        show a field's definition and enums, or list all fields
  dict [KEY]               switch dictionary (e.g. dict 42, dict FIX50SP2)
  info                     list all dictionary keys
  version                  print build metadata
  exit                     leave the explorer
`

// exploreCompleter builds the completion tree over dict's message,
// component and field names plus the registry's keys.
func exploreCompleter(reg *fix.Registry, dict *fix.Dictionary) *readline.PrefixCompleter {
	var msgItems, compItems, tagItems, dictItems []readline.PrefixCompleterInterface

	msgs := dict.Messages()
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Name < msgs[j].Name })
	for _, m := range msgs {
		msgItems = append(msgItems, readline.PcItem(m.Name))
	}

	comps := dict.Components()
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
	for _, c := range comps {
		compItems = append(compItems, readline.PcItem(c.Name))
	}

	fields := dict.Fields()
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	for _, f := range fields {
		tagItems = append(tagItems, readline.PcItem(f.Name))
	}

	for _, k := range reg.Keys() {
		dictItems = append(dictItems, readline.PcItem(k))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("message", msgItems...),
		readline.PcItem("component", compItems...),
		readline.PcItem("tag", tagItems...),
		readline.PcItem("dict", dictItems...),
		readline.PcItem("info"),
		readline.PcItem("help"),
		readline.PcItem("version"),
		readline.PcItem("exit"),
	)
}
