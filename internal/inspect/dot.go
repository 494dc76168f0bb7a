package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// WriteDOT renders the events of c as a Graphviz digraph. Each event is a node
// labelled with its types and key; an edge points from an event to the
// record that caused it. Control entries are left out.
func WriteDOT(w io.Writer, c *Content) error {
	var b strings.Builder
	b.WriteString("digraph log {\n")
	b.WriteString("rankdir=\"RL\";\n")
	for i := range c.Records {
		for j := range c.Records[i].Entries {
			writeNode(&b, &c.Records[i].Entries[j])
		}
	}
	b.WriteString("\n}")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNode(b *strings.Builder, ev *Event) {
	fmt.Fprintf(b, `%d [label="\n%s\n%s\n%d`, ev.Position, ev.RecordType, ev.ValueType, ev.Intent)
	if ev.ValueType == raftlog.ValueTypeProcessInstance {
		value, _ := valueOf(ev, true).(map[string]any)
		fmt.Fprintf(b, `\n%s\nPI Key: %s\nPD Key: %s`,
			field(value, "bpmnElementType"), field(value, "processInstanceKey"), field(value, "processDefinitionKey"))
	}
	fmt.Fprintf(b, "\\nKey: %d\"];\n", ev.Key)
	if ev.SourcePosition != -1 {
		fmt.Fprintf(b, "%d -> %d;\n", ev.Position, ev.SourcePosition)
	}
}

func field(m map[string]any, name string) string {
	v, ok := m[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
