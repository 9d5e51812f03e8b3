// Package convert implements the conversion event loop (spec.md
// §4.6): it reads a directory of MySQL/MariaDB binlog files via
// mysqlbinlog, synthesizes table schemas via schema.Tracker, and
// writes row events into per-table-version Avro files via avro.Writer,
// checkpointing its resume position atomically.
package convert

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/pkg/errors"
)

// ErrUnknownStateKey is returned loading a state file with a key this
// version doesn't recognize, per spec.md §4.7's "tolerant load" rule:
// unknown keys terminate parsing with an error.
var ErrUnknownStateKey = errors.New("convert: unknown key in converter state file")

// ConverterState is the durable resume point (spec.md §3's
// ConverterState entity): current binlog file, byte position within
// it, and the last GTID observed. It is rewritten atomically on every
// checkpoint.
type ConverterState struct {
	BinlogFile string
	Position   uint32
	GTID       mysqlbinlog.GTID
}

// LoadConverterState reads path. A missing file means "fresh start"
// and returns a zero ConverterState with no error.
func LoadConverterState(path string) (ConverterState, error) {
	var st ConverterState
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, errors.Wrap(err, "convert.LoadConverterState")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	inSection := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "[avro-conversion]" {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		key, val, ok := splitKV(line)
		if !ok {
			return st, errors.Errorf("convert.LoadConverterState: malformed line %q", line)
		}
		switch key {
		case "position":
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return st, errors.Wrapf(err, "convert.LoadConverterState: position %q", val)
			}
			st.Position = uint32(n)
		case "gtid":
			g, err := parseGTID(val)
			if err != nil {
				return st, errors.Wrapf(err, "convert.LoadConverterState: gtid %q", val)
			}
			st.GTID = g
		case "file":
			st.BinlogFile = val
		default:
			return st, errors.Wrapf(ErrUnknownStateKey, "%q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return st, errors.Wrap(err, "convert.LoadConverterState")
	}
	return st, nil
}

// Save atomically rewrites path: written to "<path>.tmp" then renamed
// over the canonical path, so a reader never observes a half-written
// state file (spec.md §4.7, §3's "never partially observable"
// invariant).
func (st ConverterState) Save(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "convert.ConverterState.Save")
	}
	_, werr := fmt.Fprintf(f, "[avro-conversion]\nposition = %d\ngtid = %d-%d-%d:%d\nfile = %s\n",
		st.Position, st.GTID.Domain, st.GTID.ServerID, st.GTID.Sequence, st.GTID.EventNum, st.BinlogFile)
	if werr != nil {
		f.Close()
		return errors.Wrap(werr, "convert.ConverterState.Save: write")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "convert.ConverterState.Save: sync")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "convert.ConverterState.Save: close")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "convert.ConverterState.Save: rename")
	}
	return nil
}

func splitKV(line string) (key, val string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i == -1 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// parseGTID parses "<domain>-<server_id>-<seq>:<event_num>".
func parseGTID(s string) (mysqlbinlog.GTID, error) {
	var g mysqlbinlog.GTID
	main := s
	if i := strings.IndexByte(s, ':'); i != -1 {
		main = s[:i]
		n, err := strconv.ParseUint(s[i+1:], 10, 32)
		if err != nil {
			return g, err
		}
		g.EventNum = uint32(n)
	}
	parts := strings.SplitN(main, "-", 3)
	if len(parts) != 3 {
		return g, errors.Errorf("expected domain-server_id-seq, got %q", s)
	}
	domain, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return g, err
	}
	server, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return g, err
	}
	seq, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return g, err
	}
	g.Domain, g.ServerID, g.Sequence = uint32(domain), uint32(server), seq
	return g, nil
}

// ddlListPath returns the sibling table-ddl.list path for a state file.
func ddlListPath(statePath string) string {
	return filepath.Join(filepath.Dir(statePath), "table-ddl.list")
}
