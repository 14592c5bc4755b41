package engine

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/hotbundle/internal/manifest"
)

type metafile struct {
	Outputs map[string]metaOutput `json:"outputs"`
}

type metaOutput struct {
	Bytes      int64                `json:"bytes"`
	EntryPoint string               `json:"entryPoint"`
	Inputs     map[string]metaInput `json:"inputs"`
}

type metaInput struct {
	BytesInOutput int64 `json:"bytesInOutput"`
}

// hashSuffix matches the "-[hash]" esbuild appends to entry names.
var hashSuffix = regexp.MustCompile(`-[A-Za-z0-9]+$`)

// ParseMetadata converts an esbuild metafile into logical keys. Paths in the
// metafile are relative to the working directory (the project root); outDir
// is the output directory relative to the same root.
//
// Entry chunks are keyed by their entry name. Every non-virtual input is
// keyed by its source path and points at the JS output that carries it.
func ParseMetadata(raw string, outDir string) (manifest.Metadata, error) {
	var mf metafile
	if err := json.Unmarshal([]byte(raw), &mf); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}
	outDir = strings.Trim(path.Clean(strings.ReplaceAll(outDir, "\\", "/")), "/")

	md := manifest.Metadata{}
	for outPath, out := range mf.Outputs {
		if path.Ext(outPath) != ".js" {
			continue
		}
		desc := manifest.OutputDescriptor{OutputPath: outPath, Size: out.Bytes}
		if out.EntryPoint != "" {
			md[entryName(outPath, outDir)] = desc
		}
		for in := range out.Inputs {
			if isVirtual(in) {
				continue
			}
			md[in] = desc
		}
	}
	return md, nil
}

// entryName strips the output directory, the extension and the hash suffix:
// "public/build/react-refresh/runtime-AB12.js" -> "react-refresh/runtime".
func entryName(outPath, outDir string) string {
	rel := strings.TrimPrefix(outPath, outDir+"/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return hashSuffix.ReplaceAllString(rel, "")
}

// isVirtual reports inputs from a plugin namespace ("ns:path").
func isVirtual(input string) bool {
	ns, _, ok := strings.Cut(input, ":")
	return ok && ns != "" && !strings.Contains(ns, "/")
}
