package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"deflens/internal/defs"
	"deflens/internal/env"
	"deflens/internal/env/jsvm"
	"deflens/internal/pipeline"
)

// printOutcome writes a dispatch result and reports whether anything
// answered without error.
func printOutcome(w io.Writer, label string, out pipeline.Outcome) bool {
	switch {
	case out.Err != nil:
		errColor.Fprintf(w, "%s: %v\n", label, out.Err)
		return false
	case !out.Handled:
		fmt.Fprintf(w, "%s: no description\n", label)
		return false
	}
	if node, ok := out.Result.(*defs.Node); ok {
		printNode(w, label, node)
	} else {
		fmt.Fprintf(w, "%s %s\n", nameColor.Sprint(label), formatValue(out.Result))
	}
	return true
}

func printNode(w io.Writer, label string, n *defs.Node) {
	nameColor.Fprint(w, label)
	if n.Type != "" {
		fmt.Fprint(w, " ")
		typeColor.Fprint(w, n.Type)
	}
	if n.Return != "" {
		fmt.Fprint(w, " -> ")
		returnColor.Fprint(w, n.Return)
	}
	fmt.Fprintln(w)
	if doc := n.Doc(); doc != "" {
		docColor.Fprintf(w, "  %s\n", doc)
	}
	if url, ok := n.Meta(defs.KeyURL); ok {
		docColor.Fprintf(w, "  %v\n", url)
	}
	for _, p := range n.Props() {
		switch {
		case p.Node != nil:
			fmt.Fprintf(w, "  .%s %s\n", p.Name, typeColor.Sprint(p.Node.Signature()))
		default:
			fmt.Fprintf(w, "  .%s %v\n", p.Name, typeColor.Sprint(p.Scalar))
		}
	}
}

// formatValue renders a live value briefly.
func formatValue(v env.Value) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return fmt.Sprintf("%q", x)
	case jsvm.Function:
		name, _ := x.OwnProperty("name")
		return fmt.Sprintf("[function %v]", name)
	case jsvm.Object:
		if name := constructorName(x); name != "" {
			return fmt.Sprintf("[%s.prototype] {%s}", name, joinSorted(x.Keys()))
		}
		return fmt.Sprintf("[object %s] {%s}", x.ClassName(), joinSorted(x.Keys()))
	default:
		return fmt.Sprint(x)
	}
}

// constructorName returns the name of the constructor owning obj as its
// prototype, if any.
func constructorName(obj env.Object) string {
	ctor, ok := obj.OwnProperty("constructor")
	if !ok {
		return ""
	}
	fn, ok := env.AsObject(ctor)
	if !ok {
		return ""
	}
	name, _ := fn.OwnProperty("name")
	s, _ := name.(string)
	return s
}

func joinSorted(keys []string) string {
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
