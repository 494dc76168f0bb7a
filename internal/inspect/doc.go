// Package inspect answers questions about a replicated log: its status, the
// record at a position or index, and its content, optionally filtered by a CEL
// expression and rendered as JSON or as a DOT graph.
//
// All functions take a *raftlog.Reader and move its cursor. They never write.
package inspect
