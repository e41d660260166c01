/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package specifier

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"
)

// builtinsJSON is Node's module.builtinModules, including subpath modules
// such as "fs/promises". Regenerate with:
//
//	node -p "JSON.stringify(require('module').builtinModules, null, 2)"
//
//go:embed builtins.json
var builtinsJSON []byte

// builtinModules is populated once at init and never mutated.
var builtinModules = mustLoadBuiltins(builtinsJSON)

func mustLoadBuiltins(data []byte) map[string]struct{} {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		panic("specifier: invalid builtins.json: " + err.Error())
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// IsBuiltIn returns true if the request names a platform module.
// "node:"-prefixed names are built-in when the unprefixed name is.
func IsBuiltIn(request string) bool {
	if _, ok := builtinModules[request]; ok {
		return true
	}
	if name, ok := strings.CutPrefix(request, "node:"); ok {
		_, found := builtinModules[name]
		return found
	}
	return false
}

// BuiltIns returns the sorted built-in module names.
func BuiltIns() []string {
	names := make([]string, 0, len(builtinModules))
	for name := range builtinModules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
