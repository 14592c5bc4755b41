package engine

import (
	_ "embed"
	"encoding/json"
	"strings"
)

// Virtual module names resolved by the runtime plugin.
const (
	runtimeModule   = "hmr:runtime"
	entryModule     = "hmr:entry"
	runtimeNS       = "hmr-runtime"
	refreshRuntime  = "react-refresh/runtime"
	entryContextKey = "__REFRESH_SETUP__"
)

//go:embed runtime/runtime.js
var runtimeSource string

//go:embed runtime/entry.js
var entrySource string

//go:embed runtime/refresh_setup.js
var refreshSetupSource string

// RuntimeSource returns the hot runtime with the socket path filled in.
func RuntimeSource(hmrPath string) string {
	quoted, _ := json.Marshal(hmrPath)
	return strings.Replace(runtimeSource, `"__HMR_PATH__"`, string(quoted), 1)
}

// EntrySource returns the client entry. With refresh enabled it installs the
// react-refresh runtime globals the instrumented modules expect.
func EntrySource(refresh bool) string {
	setup := ""
	if refresh {
		setup = refreshSetupSource
	}
	return strings.Replace(entrySource, entryContextKey, setup, 1)
}
