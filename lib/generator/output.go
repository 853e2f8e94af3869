package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// generateFile writes the *_pl.go file for the props structs of one source
// file.
func (g *Generator) generateFile(pkgName, sourceFile string, props []*PropsInfo) error {
	baseName := strings.TrimSuffix(filepath.Base(sourceFile), ".go")
	outputFile := filepath.Join(filepath.Dir(sourceFile), baseName+GeneratedSuffix)

	fmt.Fprintf(g.opts.Out, "generating %s\n", outputFile)

	if g.opts.DryRun {
		return nil
	}

	code, err := g.renderTemplate(pkgName, filepath.Base(sourceFile), props)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(code)
	if err != nil {
		// Write unformatted for debugging
		if writeErr := os.WriteFile(outputFile+".unformatted", code, 0644); writeErr == nil {
			fmt.Fprintf(g.opts.Out, "  wrote unformatted code to %s.unformatted for debugging\n", outputFile)
		}
		return fmt.Errorf("format source: %w", err)
	}

	return os.WriteFile(outputFile, formatted, 0644)
}

// renderTemplate renders the generated code template.
func (g *Generator) renderTemplate(pkgName, source string, props []*PropsInfo) ([]byte, error) {
	tmpl, err := template.New("pl").Funcs(template.FuncMap{
		"descriptor": descriptorCode,
		"quote":      strconv.Quote,
		"receiver":   receiverName,
	}).Parse(plTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		Package string
		Source  string
		Props   []*PropsInfo
	}{
		Package: pkgName,
		Source:  source,
		Props:   props,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// descriptorCode generates the builder expression of a field's descriptor.
func descriptorCode(f PropField) string {
	ctor := "plcmp.String"
	if f.Kind == "bool" {
		ctor = "plcmp.Bool"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s(%q)", ctor, f.Attr)
	if f.Reflect {
		b.WriteString(".Reflected()")
	}
	if f.HasDefault {
		if f.Kind == "bool" {
			v, _ := strconv.ParseBool(f.Default)
			fmt.Fprintf(&b, ".WithDefault(%t)", v)
		} else {
			fmt.Fprintf(&b, ".WithDefault(%q)", f.Default)
		}
	}
	if f.Observer != "" {
		fmt.Fprintf(&b, ".ObservedBy(%q)", f.Observer)
	}
	return b.String()
}

// receiverName derives a receiver from the widget type: "Button" to "b".
func receiverName(widget string) string {
	if widget == "" {
		return "w"
	}
	return strings.ToLower(widget[:1])
}

const plTemplate = `// Code generated by plcmp. DO NOT EDIT.
// Source: {{.Source}}

package {{.Package}}

import "github.com/pthm/plcmp"
{{range $p := .Props}}
{{- $r := receiver $p.Widget}}
// Descriptors returns the property descriptors declared by {{$p.PropsType}}.
func ({{$p.PropsType}}) Descriptors() []plcmp.Descriptor {
	return []plcmp.Descriptor{
	{{- range $p.Fields}}
		{{descriptor .}},
	{{- end}}
	}
}
{{range $p.Fields}}
{{- if .Getter}}
// {{.Getter}} returns the {{quote .Attr}} property.
func ({{$r}} *{{$p.Widget}}) {{.Getter}}() {{.ValueType}} {
	return {{$r}}.Instance.{{if eq .Kind "bool"}}Bool{{else}}String{{end}}({{quote .Attr}})
}
{{end}}
{{- if .Setter}}
// {{.Setter}} writes the {{quote .Attr}} property.
func ({{$r}} *{{$p.Widget}}) {{.Setter}}(v {{.ValueType}}) error {
	return {{$r}}.Instance.Set({{quote .Attr}}, v)
}
{{end}}
{{- end}}
{{- end}}`
