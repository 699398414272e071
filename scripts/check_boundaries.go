package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "votable"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-module prefixes (relative to the service root) a
// layer may import. Stdlib is always allowed.
type layerRule struct {
	allowed []string
}

var layerRules = map[string]layerRule{
	"domain":      {allowed: []string{"/domain"}},
	"ports":       {allowed: []string{"/domain", "/ports"}},
	"application": {allowed: []string{"/application", "/domain", "/ports"}},
}

var infrastructurePrefixes = []string{
	modulePath + "/internal/",
	modulePath + "/cmd/",
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		serviceRoot := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		layer := parts[3]
		adapter := ""
		if layer == "adapters" && len(parts) > 5 {
			adapter = parts[4]
		}

		violations = append(violations, validateFile(path, normalized, layer, adapter, serviceRoot)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, adapter string, serviceRoot string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	report := func(line int, importPath string, rule string) {
		violations = append(violations, violation{File: normalizedPath, Line: line, Import: importPath, Rule: rule})
	}

	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, serviceRoot) {
			report(line, importPath, "cross-module imports are forbidden")
		}

		if rule, ok := layerRules[layer]; ok {
			for _, prefix := range infrastructurePrefixes {
				if strings.HasPrefix(importPath, prefix) {
					report(line, importPath, layer+" must not import runtime infrastructure")
				}
			}
			if strings.Contains(importPath, "/adapters/") {
				report(line, importPath, layer+" must not import adapters")
			}
			if !isStdlib(importPath) && !isAllowed(importPath, serviceRoot, rule) {
				report(line, importPath, layer+" import is outside explicit allowlist")
			}
		}

		// Store adapters share the docmatch evaluator and nothing else.
		if adapter != "" && hasPrefix(importPath, serviceRoot+"/adapters") {
			sibling := strings.TrimPrefix(importPath, serviceRoot+"/adapters/")
			if sibling != adapter && sibling != "docmatch" && adapter != "http" {
				report(line, importPath, "adapters must not import sibling adapters")
			}
		}
	}

	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, serviceRoot string, rule layerRule) bool {
	for _, p := range rule.allowed {
		if hasPrefix(importPath, serviceRoot+p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, modulePath+"/") {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
