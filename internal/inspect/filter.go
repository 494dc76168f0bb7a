package inspect

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// Filter selects records and events with a CEL expression. The expression sees
// index, term, kind, asqn, position, sourcePosition, timestamp, key,
// recordType, valueType, intent and value (the decoded JSON value). For
// control entries the event variables are zero and value is null.
type Filter struct {
	expr string
	prog cel.Program
}

// CompileFilter compiles expr. An empty expression yields a nil filter, which
// matches everything.
func CompileFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("index", cel.IntType),
		cel.Variable("term", cel.IntType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("asqn", cel.IntType),
		cel.Variable("position", cel.IntType),
		cel.Variable("sourcePosition", cel.IntType),
		cel.Variable("timestamp", cel.IntType),
		cel.Variable("key", cel.IntType),
		cel.Variable("recordType", cel.StringType),
		cel.Variable("valueType", cel.StringType),
		cel.Variable("intent", cel.IntType),
		cel.Variable("value", cel.DynType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return &Filter{expr: expr, prog: prog}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter for rec and, for application entries, one of its
// events. Evaluation errors and non-bool results count as no match.
func (f *Filter) Match(rec *Record, ev *Event) bool {
	if f == nil {
		return true
	}
	vars := map[string]any{
		"index":          rec.Index,
		"term":           rec.Term,
		"kind":           rec.Kind,
		"asqn":           rec.Asqn,
		"position":       int64(0),
		"sourcePosition": int64(0),
		"timestamp":      int64(0),
		"key":            int64(0),
		"recordType":     "",
		"valueType":      "",
		"intent":         int64(0),
		"value":          nil,
	}
	if ev != nil {
		vars["position"] = ev.Position
		vars["sourcePosition"] = ev.SourcePosition
		vars["timestamp"] = ev.Timestamp
		vars["key"] = ev.Key
		vars["recordType"] = ev.RecordType.String()
		vars["valueType"] = ev.ValueType.String()
		vars["intent"] = int64(ev.Intent)
		vars["value"] = valueOf(ev, false)
	}
	out, _, err := f.prog.Eval(vars)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// apply narrows rec to the events matching f. It reports false when nothing
// of rec is left.
func (f *Filter) apply(rec *Record) bool {
	if f == nil {
		return true
	}
	if rec.Kind != raftlog.KindApplication.String() {
		return f.Match(rec, nil)
	}
	kept := rec.Entries[:0]
	for i := range rec.Entries {
		if f.Match(rec, &rec.Entries[i]) {
			kept = append(kept, rec.Entries[i])
		}
	}
	rec.Entries = kept
	return len(kept) > 0
}
