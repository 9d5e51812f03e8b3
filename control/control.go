// Package control defines the Go-shaped contract between the
// conversion engine and a streaming collaborator (spec.md §6.5): a
// client registers for a stream, requests data at a file/GTID
// position, and is notified after every converter checkpoint. This
// package defines only the interfaces and value types; the
// line-oriented protocol that parses "REGISTER UUID=..." /
// "REQUEST-DATA ..." off a socket is an explicit non-goal and belongs
// to a collaborator built on top of this package.
package control

import (
	"io"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/google/uuid"
)

// StreamMode selects how a client wants its data: raw Avro blocks or
// records decoded into JSON.
type StreamMode int

const (
	StreamAvro StreamMode = iota
	StreamJSON
)

func (m StreamMode) String() string {
	switch m {
	case StreamAvro:
		return "AVRO"
	case StreamJSON:
		return "JSON"
	default:
		return "UNKNOWN"
	}
}

// ClientHandle identifies an attached client and the mode it attached
// with, returned by Registrar.Attach.
type ClientHandle struct {
	ID   uuid.UUID
	Mode StreamMode
}

// DataRequest names the table-version file and resume position a
// client is asking to stream from.
type DataRequest struct {
	FileStem string // "<db>.<table>"
	Version  int    // schema version; 0 means "current"
	GTID     mysqlbinlog.GTID
}

// ConverterStateSnapshot is the read-only view of converter state a
// Notifier receives at each checkpoint (mirrors convert.ConverterState
// without importing it, so control has no dependency on convert).
type ConverterStateSnapshot struct {
	BinlogFile string
	Position   uint32
	GTID       mysqlbinlog.GTID
}

// Notifier is invoked by the converter once per checkpoint.
type Notifier interface {
	NotifyCheckpoint(state ConverterStateSnapshot)
}

// Registrar is the engine-side surface a streaming collaborator calls
// into: attach a client, then request data for that client at a given
// file/version/GTID. RequestData opens the matching Avro file and
// seeks to the first record with sequence >= the requested GTID;
// concrete seek behavior is implemented by whatever wires AvroTable
// storage to this interface (spec.md §6.5 leaves the wire format to
// the collaborator, not the core).
type Registrar interface {
	Attach(mode StreamMode) (ClientHandle, error)
	RequestData(h ClientHandle, req DataRequest) (io.ReadCloser, error)
}
