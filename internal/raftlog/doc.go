// Package raftlog decodes journal records into replicated-log entries.
//
// Every journal record payload holds one entry: the leader term followed by a
// kind tag and the kind's body. Application entries carry a batch of logged
// events produced by the stream processor; initial and configuration entries are
// control entries written by the replication layer.
//
// Reader decorates a journal.Reader. It adds decoding to Next and passes seeks
// and Close through unchanged, so entry indices are always record indices.
package raftlog
