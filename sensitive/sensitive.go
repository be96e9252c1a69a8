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

// Package sensitive holds the baked-in set of tag numbers the obfuscator
// treats as identifying information. The list is generated offline from
// the dictionary XML and committed here as a constant.
package sensitive

import "github.com/quickfixgo/quickfix"

// Tags maps a sensitive tag number to its field name, used by the
// obfuscator to build the "<Name>NNNN" alias.
var Tags = map[quickfix.Tag]string{
	49:  "SenderCompID",
	56:  "TargetCompID",
	115: "OnBehalfOfCompID",
	128: "DeliverToCompID",
	37:  "OrderID",
	11:  "ClOrdID",
	41:  "OrigClOrdID",
	1:   "Account",
	448: "PartyID",
}

// Is reports whether tag is in the baked-in sensitive set.
func Is(tag quickfix.Tag) bool {
	_, ok := Tags[tag]
	return ok
}
