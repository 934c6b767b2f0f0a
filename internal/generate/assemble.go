package generate

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/oapi2client/internal/emitter"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

type file struct {
	title     string
	version   string
	header    string
	impls     []string
	imports   tstype.ImportSet
	deps      []emitter.Dependency
	models    []tstype.Declaration
	aliases   map[string]string
	synthetic bool
}

func (f *file) banner() string {
	var b strings.Builder
	b.WriteString("/**\n")
	fmt.Fprintf(&b, " * %s. Do not edit.\n", Banner)
	if t := strings.TrimSpace(f.title + " " + f.version); t != "" {
		fmt.Fprintf(&b, " * %s\n", t)
	}
	b.WriteString(" */\n")
	return b.String()
}

// client renders the client file. modelPath is the import specifier of the
// separate model file, or "" to declare models inline.
func (f *file) client(modelPath string) string {
	var body strings.Builder
	if modelPath == "" {
		for _, m := range f.models {
			body.WriteString(m.Code)
			body.WriteString("\n")
		}
	}
	body.WriteString(f.header)
	body.WriteString(strings.Join(f.impls, "\n"))

	code := body.String()
	var b strings.Builder
	b.WriteString(f.banner())
	if lines := importLines(code, f.deps, f.aliases, f.imports.Refs(), modelPath, f.synthetic); len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(code)
	return b.String()
}

// schemas renders the separate model file.
func (f *file) schemas() string {
	var b strings.Builder
	b.WriteString(f.banner())
	for _, m := range f.models {
		b.WriteString("\n")
		b.WriteString(m.Code)
	}
	return b.String()
}

// references reports whether code mentions name as a whole identifier.
func references(code, name string) bool {
	re := regexp.MustCompile(`(^|[^\w$])` + regexp.QuoteMeta(name) + `([^\w$]|$)`)
	return re.MatchString(code)
}

// importLines resolves the import statements code needs: declared flavor
// dependencies first, then mutator modules, then generated models. Exports
// listed in aliases are imported under their alias.
func importLines(code string, deps []emitter.Dependency, aliases map[string]string, refs []tstype.ImportRef, modelPath string, synthetic bool) []string {
	var lines []string
	for _, dep := range deps {
		var named []string
		values := false
		for _, exp := range dep.Exports {
			local := exp.Name
			if alias, ok := aliases[exp.Name]; ok {
				local = alias
			}
			if !references(code, local) {
				continue
			}
			if exp.Default {
				if exp.SyntheticDefaultImport && !synthetic {
					lines = append(lines, fmt.Sprintf("import * as %s from '%s';", local, dep.Dependency))
				} else {
					lines = append(lines, fmt.Sprintf("import %s from '%s';", local, dep.Dependency))
				}
				continue
			}
			if local != exp.Name {
				local = exp.Name + " as " + local
			}
			named = append(named, local)
			values = values || exp.Values
		}
		if len(named) > 0 {
			lines = append(lines, namedImport(named, dep.Dependency, values))
		}
	}

	byPath := map[string][]tstype.ImportRef{}
	var paths []string
	var models []string
	for _, r := range refs {
		if r.Path == "" {
			if modelPath != "" && references(code, r.Name) {
				models = append(models, r.Name)
			}
			continue
		}
		if _, ok := byPath[r.Path]; !ok {
			paths = append(paths, r.Path)
		}
		byPath[r.Path] = append(byPath[r.Path], r)
	}
	sort.Strings(paths)
	for _, p := range paths {
		var named []string
		values := false
		for _, r := range byPath[p] {
			if r.Default {
				lines = append(lines, fmt.Sprintf("import %s from '%s';", r.Name, p))
				continue
			}
			named = append(named, r.Name)
			values = values || r.Values
		}
		if len(named) > 0 {
			sort.Strings(named)
			lines = append(lines, namedImport(named, p, values))
		}
	}
	if len(models) > 0 {
		sort.Strings(models)
		lines = append(lines, namedImport(models, modelPath, false))
	}
	return lines
}

func namedImport(names []string, from string, values bool) string {
	kw := "import type"
	if values {
		kw = "import"
	}
	return fmt.Sprintf("%s { %s } from '%s';", kw, strings.Join(names, ", "), from)
}

// modelImportPath is the module specifier of the model file as seen from
// the client file.
// Example: ("src/api/petstore.ts", "src/api/model/index.ts") -> "./model"
func modelImportPath(target, schemas string) string {
	rel, err := filepath.Rel(filepath.Dir(target), schemas)
	if err != nil {
		rel = schemas
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	rel = strings.TrimSuffix(rel, "/index")
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
