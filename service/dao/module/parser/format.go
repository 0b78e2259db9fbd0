package parser

import (
	"strconv"
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/value"
)

// Format renders a compilation unit as canonical WFL; Parse(Format(f)) yields f without positions.
func Format(file *ast.File) string {
	w := &writer{}
	for _, ref := range file.Externs {
		w.line("extern mod " + strings.Join(ref.Names, ", ") + " {")
		w.indent++
		for _, prop := range ref.Props {
			w.line(prop.Name + " = " + formatValue(prop.Value) + ";")
		}
		w.indent--
		w.line("}")
	}
	for _, module := range file.Modules {
		w.annotations(module.Annotations)
		header := "mod " + module.Name
		if len(module.Mixes) > 0 {
			header += " : " + strings.Join(module.Mixes, ", ")
		}
		w.line(header + " {")
		w.indent++
		for _, prop := range module.Props {
			w.line(prop.Name + " = " + formatValue(prop.Value) + ";")
		}
		if len(module.Entry) > 0 {
			w.line("entry " + formatRefs(module.Entry) + ";")
		}
		if len(module.Exit) > 0 {
			w.line("exit " + formatRefs(module.Exit) + ";")
		}
		for _, env := range module.Envs {
			w.env(env)
		}
		for _, flow := range module.Flows {
			w.flow(flow)
		}
		w.indent--
		w.line("}")
	}
	return w.String()
}

type writer struct {
	strings.Builder
	indent int
}

func (w *writer) line(text string) {
	w.WriteString(strings.Repeat("    ", w.indent))
	w.WriteString(text)
	w.WriteByte('\n')
}

func (w *writer) annotations(annotations ast.Annotations) {
	for _, ann := range annotations {
		text := "@" + ann.Name
		if len(ann.Args) > 0 {
			text += "(" + formatArgs(ann.Args) + ")"
		}
		w.line(text)
	}
}

func (w *writer) env(env *ast.Env) {
	w.annotations(env.Annotations)
	header := "env " + env.Name
	if len(env.Mixes) > 0 {
		header += " : " + strings.Join(env.Mixes, ", ")
	}
	if len(env.Props) == 0 {
		w.line(header + ";")
		return
	}
	w.line(header + " {")
	w.indent++
	for _, prop := range env.Props {
		w.line(prop.Name + " = " + formatValue(prop.Value) + ";")
	}
	w.indent--
	w.line("}")
}

func (w *writer) flow(flow *ast.Flow) {
	w.annotations(flow.Annotations)
	header := "flow " + flow.Name
	if len(flow.Pre) > 0 {
		header += " [" + formatRefs(flow.Pre) + "]"
	}
	if len(flow.Post) > 0 {
		header += " -> [" + formatRefs(flow.Post) + "]"
	}
	if flow.Body == nil {
		w.line(header + ";")
		return
	}
	w.line(header + " {")
	w.indent++
	w.nodes(flow.Body)
	w.indent--
	w.line("}")
}

func (w *writer) nodes(nodes []ast.Node) {
	for _, node := range nodes {
		w.node(node)
	}
}

func (w *writer) node(node ast.Node) {
	switch actual := node.(type) {
	case *ast.SetVar:
		w.annotations(actual.Annotations)
		w.line(actual.Name + " = " + formatValue(actual.Value) + ";")
	case *ast.Action:
		w.annotations(actual.Annotations)
		w.line(actual.Name() + "(" + formatArgs(actual.Args) + ");")
	case *ast.CallFlow:
		w.annotations(actual.Annotations)
		w.line("call " + actual.Ref.String() + ";")
	case *ast.For:
		w.line("for " + actual.Var + " in " + formatValue(actual.In) + " {")
		w.indent++
		w.nodes(actual.Body)
		w.indent--
		w.line("}")
	case *ast.If:
		w.ifNode(actual, "if ")
	}
}

func (w *writer) ifNode(node *ast.If, prefix string) {
	w.line(prefix + formatCondition(node.Cond) + " {")
	w.indent++
	w.nodes(node.Then)
	w.indent--
	if len(node.Else) == 1 {
		if nested, ok := node.Else[0].(*ast.If); ok {
			w.WriteString(strings.Repeat("    ", w.indent))
			w.WriteString("}")
			w.WriteByte('\n')
			w.ifNode(nested, "else if ")
			return
		}
	}
	if node.Else != nil {
		w.line("} else {")
		w.indent++
		w.nodes(node.Else)
		w.indent--
	}
	w.line("}")
}

func formatCondition(cond ast.Condition) string {
	switch actual := cond.(type) {
	case *ast.Truth:
		return formatValue(actual.Value)
	case *ast.Not:
		return "!(" + formatCondition(actual.Cond) + ")"
	case *ast.Compare:
		return formatValue(actual.Left) + " " + actual.Op + " " + formatValue(actual.Right)
	case *ast.Logic:
		return "(" + formatCondition(actual.Left) + ") " + actual.Op + " (" + formatCondition(actual.Right) + ")"
	}
	return ""
}

func formatRefs(refs []*ast.FlowRef) string {
	ret := make([]string, len(refs))
	for i, ref := range refs {
		ret[i] = ref.String()
	}
	return strings.Join(ret, ", ")
}

func formatArgs(args []*ast.Arg) string {
	ret := make([]string, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			ret[i] = arg.Name + " = " + formatValue(arg.Value)
			continue
		}
		ret[i] = formatValue(arg.Value)
	}
	return strings.Join(ret, ", ")
}

func formatValue(v value.Value) string {
	switch v.Kind {
	case value.KindString:
		return quote(v.Str)
	case value.KindFloat:
		text := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return text
	case value.KindList:
		items := make([]string, len(v.List))
		for i, item := range v.List {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case value.KindObject:
		keys := v.Object.Keys()
		items := make([]string, len(keys))
		for i, key := range keys {
			items[i] = quote(key) + ": " + formatValue(v.Object[key])
		}
		return "{" + strings.Join(items, ", ") + "}"
	case value.KindIP:
		return quote(v.IP.String())
	}
	return v.Raw()
}

func quote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + replacer.Replace(s) + `"`
}
