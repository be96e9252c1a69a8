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

// Package dictdata embeds the QuickFIX-style XML documents that back the
// built-in dictionary set. FIX27, FIX30 and FIX40 share fix40.xml's
// content; the FIX50 family ships without a <header>/<trailer>, which
// fix.Registry fills in from FIXT11 on load.
package dictdata

import _ "embed"

//go:embed fix40.xml
var FIX40 []byte

//go:embed fix41.xml
var FIX41 []byte

//go:embed fix42.xml
var FIX42 []byte

//go:embed fix43.xml
var FIX43 []byte

//go:embed fix44.xml
var FIX44 []byte

//go:embed fix50.xml
var FIX50 []byte

//go:embed fix50sp1.xml
var FIX50SP1 []byte

//go:embed fix50sp2.xml
var FIX50SP2 []byte

//go:embed fixt11.xml
var FIXT11 []byte
