package main

import (
	"fmt"
	"go/format"
	"os"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/benoitkugler/vformat/css/properties"
)

const (
	OUT = "props_gen.go"

	TEMPLATE = `
	func (s %[1]s) Get%[2]s() %[3]s { return s[%[4]s].(%[3]s)	}
	func (s %[1]s) Set%[2]s(v %[3]s) { s[%[4]s] = v }

`
)

func main() {
	code := `package properties

	// Code generated from properties/properties.go DO NOT EDIT

	`
	codeStrings := `var propsNames = [...]string{
		`
	codeStringsRev := `
	// PropsFromNames maps CSS property names to internal enum tags.
	var PropsFromNames = map[string]KnownProp{
		`

	props := parseConstants("properties.go")
	sort.Slice(props, func(i, j int) bool { return props[i].propName < props[j].propName })

	for _, item := range props {
		v, ok := properties.InitialValues[item.value]
		if !ok {
			panic("missing initial value for " + item.propName)
		}
		code += fmt.Sprintf(TEMPLATE, "Properties", item.varName[1:], typeName(v), item.varName)
		codeStrings += fmt.Sprintf("%s: %q,\n", item.varName, item.propName)
		codeStringsRev += fmt.Sprintf("%q: %s,\n", item.propName, item.varName)
	}

	codeStrings += "}\n"
	codeStringsRev += "}\n"

	src, err := format.Source([]byte(code + codeStrings + codeStringsRev))
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(OUT, src, os.ModePerm); err != nil {
		panic(err)
	}
	fmt.Println("Generated", OUT)
}

// typeName returns the name of the type of [v], as seen
// from the properties package.
func typeName(v properties.CssProperty) string {
	name := reflect.TypeOf(v).String()
	name = strings.TrimPrefix(name, "properties.")
	if name == "keywords.Keyword" {
		return "Keyword"
	}
	return name
}

func kebabCase(s string) string {
	var out strings.Builder
	for i, r := range s {
		if i != 0 && unicode.IsUpper(r) {
			out.WriteRune('-')
		}
		out.WriteRune(unicode.ToLower(r))
	}
	return out.String()
}

type prop struct {
	value    properties.KnownProp
	varName  string
	propName string // in CSS form
}

func parseConstants(fn string) (out []prop) {
	b, err := os.ReadFile(fn)
	if err != nil {
		panic(err)
	}
	inEnum := false
	var val properties.KnownProp
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "const (") && !inEnum && val == 0 {
			inEnum = true
			continue
		}

		if inEnum && strings.HasPrefix(line, "P") {
			val++
			varName := line
			propName := kebabCase(line[1:])
			out = append(out, prop{val, varName, propName})
		}

		if inEnum && (strings.HasPrefix(line, ")") || line == "NbProps") {
			inEnum = false
		}
	}
	return out
}
