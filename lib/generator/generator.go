// Package generator emits property descriptors and typed accessors for
// structs annotated with a //plcmp:props directive.
//
//	//plcmp:props Button
//	type Props struct {
//	    Label    string `pl:"label"`
//	    Disabled bool   `pl:"disabled,reflect,observer=disabledObserver"`
//	    Variant  string `pl:"variant,reflect,default=secondary"`
//	}
//
// For the file above the generator writes <file>_pl.go holding
// Props.Descriptors() and getters and setters on *Button, which is expected
// to embed *plcmp.Instance. Methods already declared on the widget are not
// generated.
package generator

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Directive marks a props struct. It is followed by the widget type name.
const Directive = "//plcmp:props"

// GeneratedSuffix is the file name suffix of generated files.
const GeneratedSuffix = "_pl.go"

// ErrInvalidProps is returned when an annotated struct cannot be turned into
// descriptors.
var ErrInvalidProps = errors.New("generator: invalid props")

var attrPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Options configures the generator.
type Options struct {
	DryRun bool

	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
}

// Generator generates plcmp code.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Generator{
		opts: opts,
		fset: token.NewFileSet(),
	}
}

// Generate generates code for the given package patterns.
func (g *Generator) Generate(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.generatePackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// Clean removes generated files for the given package patterns.
func (g *Generator) Clean(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.cleanPackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// findPackages resolves package patterns to directory paths.
func (g *Generator) findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		// Handle ./... pattern
		if !strings.HasSuffix(pattern, "/...") {
			packages = append(packages, pattern)
			continue
		}

		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// Skip hidden directories, vendor and testdata
			base := filepath.Base(path)
			if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
				return filepath.SkipDir
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return nil
			}
			for _, entry := range entries {
				if !entry.IsDir() && isSourceFile(entry.Name()) {
					packages = append(packages, path)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return packages, nil
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, GeneratedSuffix)
}

// generatePackage generates code for a single package.
func (g *Generator) generatePackage(pkgPath string) error {
	pkgs, err := parser.ParseDir(g.fset, pkgPath, func(info os.FileInfo) bool {
		return isSourceFile(info.Name())
	}, parser.ParseComments)
	if err != nil {
		return err
	}

	for pkgName, pkg := range pkgs {
		props, err := g.findProps(pkg)
		if err != nil {
			return err
		}

		// One output file per source file.
		bySource := make(map[string][]*PropsInfo)
		for _, p := range props {
			bySource[p.SourceFile] = append(bySource[p.SourceFile], p)
		}
		sources := make([]string, 0, len(bySource))
		for src := range bySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)

		for _, src := range sources {
			if err := g.generateFile(pkgName, src, bySource[src]); err != nil {
				return err
			}
		}
	}

	return nil
}

// cleanPackage removes generated files from a package.
func (g *Generator) cleanPackage(pkgPath string) error {
	entries, err := os.ReadDir(pkgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), GeneratedSuffix) {
			continue
		}
		path := filepath.Join(pkgPath, entry.Name())
		fmt.Fprintf(g.opts.Out, "removing %s\n", path)
		if !g.opts.DryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}

	return nil
}

// PropsInfo holds information about an annotated props struct.
type PropsInfo struct {
	SourceFile string
	PropsType  string // e.g., "Props"
	Widget     string // e.g., "Button"
	Fields     []PropField
}

// PropField represents one property declared by a props struct field.
type PropField struct {
	Name       string // Go field name
	Kind       string // "bool" or "string"
	Attr       string // property and attribute name
	Reflect    bool
	Default    string
	HasDefault bool
	Observer   string

	Getter    string // empty when the widget already declares it
	Setter    string
	ValueType string
}

// findProps finds all annotated props structs in a package.
func (g *Generator) findProps(pkg *ast.Package) ([]*PropsInfo, error) {
	var found []*PropsInfo

	filenames := make([]string, 0, len(pkg.Files))
	for name := range pkg.Files {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		file := pkg.Files[filename]
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				widget := directiveWidget(typeSpec.Doc)
				if widget == "" && len(genDecl.Specs) == 1 {
					widget = directiveWidget(genDecl.Doc)
				}
				if widget == "" {
					continue
				}

				structType, ok := typeSpec.Type.(*ast.StructType)
				if !ok {
					return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidProps, typeSpec.Name.Name)
				}

				info := &PropsInfo{
					SourceFile: filename,
					PropsType:  typeSpec.Name.Name,
					Widget:     widget,
				}
				fields, err := g.findPropsFields(structType)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", typeSpec.Name.Name, err)
				}
				info.Fields = fields
				found = append(found, info)
			}
		}
	}

	// Skip accessors the widget already declares by hand.
	for _, info := range found {
		existing := g.findMethods(pkg, info.Widget)
		for i := range info.Fields {
			f := &info.Fields[i]
			if existing[f.Getter] {
				f.Getter = ""
			}
			if existing[f.Setter] {
				f.Setter = ""
			}
		}
	}

	return found, nil
}

// directiveWidget returns the widget named by a //plcmp:props line in doc.
func directiveWidget(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok {
			continue
		}
		if fields := strings.Fields(rest); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// findPropsFields parses the fields of a props struct.
func (g *Generator) findPropsFields(structType *ast.StructType) ([]PropField, error) {
	var fields []PropField
	seen := make(map[string]bool)

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			continue // Skip embedded fields
		}

		var tag string
		if field.Tag != nil {
			raw, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: tag %s: %v", ErrInvalidProps, field.Tag.Value, err)
			}
			tag = reflect.StructTag(raw).Get("pl")
		}
		if tag == "-" {
			continue
		}

		kind := g.typeToString(field.Type)
		if kind != "bool" && kind != "string" {
			if tag == "" {
				continue // untagged non-property field
			}
			return nil, fmt.Errorf("%w: field %s has type %s, want bool or string", ErrInvalidProps, field.Names[0].Name, kind)
		}

		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			pf, err := parsePLTag(tag)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name.Name, err)
			}
			if pf.Attr == "" {
				pf.Attr = kebab(name.Name)
			}
			if !attrPattern.MatchString(pf.Attr) {
				return nil, fmt.Errorf("%w: field %s: invalid property name %q", ErrInvalidProps, name.Name, pf.Attr)
			}
			if seen[pf.Attr] {
				return nil, fmt.Errorf("%w: property %q declared twice", ErrInvalidProps, pf.Attr)
			}
			seen[pf.Attr] = true

			if pf.HasDefault && kind == "bool" {
				if _, err := strconv.ParseBool(pf.Default); err != nil {
					return nil, fmt.Errorf("%w: field %s: default %q is not a boolean", ErrInvalidProps, name.Name, pf.Default)
				}
			}

			pf.Name = name.Name
			pf.Kind = kind
			pf.ValueType = kind
			pf.Getter = name.Name
			pf.Setter = "Set" + name.Name
			fields = append(fields, pf)
		}
	}

	return fields, nil
}

// findMethods returns the names of methods declared on widget or *widget.
func (g *Generator) findMethods(pkg *ast.Package, widget string) map[string]bool {
	methods := make(map[string]bool)
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
				continue
			}
			recv := funcDecl.Recv.List[0].Type
			if star, ok := recv.(*ast.StarExpr); ok {
				recv = star.X
			}
			if ident, ok := recv.(*ast.Ident); ok && ident.Name == widget {
				methods[funcDecl.Name.Name] = true
			}
		}
	}
	return methods
}

// typeToString converts an AST type to a string representation.
func (g *Generator) typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + g.typeToString(t.X)
	case *ast.SelectorExpr:
		return g.typeToString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + g.typeToString(t.Elt)
		}
		return "[...]" + g.typeToString(t.Elt)
	case *ast.MapType:
		return "map[" + g.typeToString(t.Key) + "]" + g.typeToString(t.Value)
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// parsePLTag parses a pl struct tag value:
//
//	name[,reflect][,default=v][,observer=o]
func parsePLTag(value string) (PropField, error) {
	var pf PropField
	if value == "" {
		return pf, nil
	}

	parts := strings.Split(value, ",")
	pf.Attr = parts[0]
	for _, p := range parts[1:] {
		key, val, hasVal := strings.Cut(p, "=")
		switch {
		case key == "reflect" && !hasVal:
			pf.Reflect = true
		case key == "default" && hasVal:
			pf.Default = val
			pf.HasDefault = true
		case key == "observer" && hasVal && val != "":
			pf.Observer = val
		default:
			return pf, fmt.Errorf("%w: unknown option %q", ErrInvalidProps, p)
		}
	}
	return pf, nil
}

// kebab converts "NegativeStyle" to "negative-style".
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
