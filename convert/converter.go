package convert

import (
	"io"
	"os"

	"github.com/cdcstream/binlogavro/control"
	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/cdcstream/binlogavro/schema"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one Converter.Run pass, spec.md §4.6's
// "binlog_end" result.
type Result int

const (
	ResultOK Result = iota
	ResultLastFile
	ResultOpenTransaction
	ResultBinlogError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultLastFile:
		return "LAST_FILE"
	case ResultOpenTransaction:
		return "OPEN_TRANSACTION"
	case ResultBinlogError:
		return "BINLOG_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Converter runs the conversion event loop (spec.md §4.6) over a
// directory of binlog files, synthesizing schema from observed DDL and
// writing row events to per-table-version Avro files.
type Converter struct {
	BinlogDir string
	OutDir    string
	StatePath string
	RowTarget int
	TrxTarget int
	Logger    *logrus.Entry
	Notifier  control.Notifier

	bl      *mysqlbinlog.Local
	tracker *schema.Tracker
	tables  map[string]*AvroTable // keyed by "<db>.<table>" (TableCreate.Stem); one open version per table

	state    ConverterState
	pending  bool
	rowCount int
	trxCount int

	// replaying suppresses row writes and checkpoints while re-walking
	// events already committed at or before state.Position, so a
	// restarted converter rebuilds schema/table-map state without
	// duplicating previously-written rows (spec.md §8's at-least-once,
	// no-duplicate-committed-rows property). It ends once an event's
	// header puts it at or past the persisted resume position.
	replaying bool
}

// NewConverter opens binlogDir and loads any persisted state at
// statePath (a fresh ConverterState if the file is absent).
func NewConverter(binlogDir, outDir, statePath string, rowTarget, trxTarget int, logger *logrus.Entry) (*Converter, error) {
	bl, err := mysqlbinlog.Open(binlogDir)
	if err != nil {
		return nil, errors.Wrap(err, "convert.NewConverter")
	}
	state, err := LoadConverterState(statePath)
	if err != nil {
		return nil, errors.Wrap(err, "convert.NewConverter")
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "convert.NewConverter")
	}

	file := state.BinlogFile
	if file == "" {
		files, err := bl.ListFiles()
		if err != nil {
			return nil, errors.Wrap(err, "convert.NewConverter")
		}
		if len(files) == 0 {
			return nil, errors.New("convert.NewConverter: no binlog files found")
		}
		file = files[0]
	}
	if err := bl.Seek(file); err != nil {
		return nil, errors.Wrap(err, "convert.NewConverter")
	}

	return &Converter{
		BinlogDir: binlogDir,
		OutDir:    outDir,
		StatePath: statePath,
		RowTarget: rowTarget,
		TrxTarget: trxTarget,
		Logger:    logger,
		bl:        bl,
		tracker:   schema.NewTracker(),
		tables:    make(map[string]*AvroTable),
		state:     state,
		replaying: state.Position > 4,
	}, nil
}

// Run steps the converter until a terminal Result: ResultOK means a
// checkpoint fired and the caller may call Run again to keep
// converting; ResultLastFile/ResultOpenTransaction/ResultBinlogError
// end the run (spec.md §4.6's EOF branch).
func (c *Converter) Run() (Result, error) {
	for {
		res, checkpointed, err := c.step()
		if err != nil {
			return ResultBinlogError, err
		}
		if res != ResultOK || checkpointed {
			return res, nil
		}
	}
}

// step processes exactly one binlog event, returning (ResultOK, false,
// nil) to keep looping, (ResultOK, true, nil) right after a checkpoint
// fires, or a terminal result at end of input.
func (c *Converter) step() (Result, bool, error) {
	file, pos := c.bl.ReadStatus()
	e, err := c.bl.NextEvent()
	if err == io.EOF {
		return c.atEOF()
	}
	if err != nil {
		return ResultBinlogError, false, errors.Wrapf(err, "convert.Converter.step: file=%s pos=%d", file, pos)
	}

	if c.replaying && e.Header.NextPos > c.state.Position {
		c.replaying = false
	}

	if err := c.dispatch(e); err != nil {
		c.Logger.WithError(err).WithField("event_type", e.Header.EventType).Warn("convert: row event rejected")
	}

	if !c.replaying {
		c.state.BinlogFile = file
		c.state.Position = e.Header.NextPos
	}

	checkpointed := false
	if c.shouldCheckpoint(e) {
		if err := c.checkpoint(); err != nil {
			return ResultBinlogError, false, err
		}
		checkpointed = true
	}
	return ResultOK, checkpointed, nil
}

func (c *Converter) shouldCheckpoint(e mysqlbinlog.Event) bool {
	if c.replaying {
		return false
	}
	if e.Header.EventType == mysqlbinlog.XID_EVENT {
		return true
	}
	return c.rowCount >= c.RowTarget && c.RowTarget > 0 || c.trxCount >= c.TrxTarget && c.TrxTarget > 0
}

// atEOF implements spec.md §4.6's EOF branch. mysqlbinlog.Local's
// underlying dirReader already walks binlog.index to roll onto the
// next ordinal file transparently (see mysqlbinlog/source.go), so
// reaching io.EOF here means no further file exists: there is no
// separate "rotate_seen / adopt next_binlog" step to take, that case
// was already handled inside NextEvent.
func (c *Converter) atEOF() (Result, bool, error) {
	if c.pending {
		return ResultOpenTransaction, false, nil
	}
	return ResultLastFile, false, nil
}

func (c *Converter) dispatch(e mysqlbinlog.Event) error {
	switch d := e.Data.(type) {
	case mysqlbinlog.QueryEvent:
		return c.handleQuery(d)
	case mysqlbinlog.RowsEvent:
		return c.handleRows(d, e.Header.EventType, e.Header.Timestamp)
	case mysqlbinlog.MariaDBGTIDEvent:
		// flags == 0 means a transaction is pending until the following
		// XID/COMMIT (spec.md §4.4's MARIADB10_GTID_EVENT rule).
		c.state.GTID = d.GTID
		c.pending = d.Flags == 0
	case mysqlbinlog.StopEvent:
		c.Logger.Info("convert: STOP_EVENT observed")
	}
	if e.Header.EventType == mysqlbinlog.XID_EVENT {
		c.pending = false
		c.trxCount++
	}
	return nil
}

func (c *Converter) handleQuery(q mysqlbinlog.QueryEvent) error {
	switch q.Classify() {
	case mysqlbinlog.DDLCreateTable:
		tc, err := c.tracker.CreateTable(q.Schema, q.Query, c.state.GTID)
		if err != nil {
			return err
		}
		return c.persistDDL(q.Query, tc)
	case mysqlbinlog.DDLAlterTable:
		tc, err := c.tracker.AlterTable(q.Schema, q.Query, c.state.GTID)
		if err != nil {
			return err
		}
		return c.openTableVersion(tc)
	case mysqlbinlog.DDLBegin:
		c.pending = true
	case mysqlbinlog.DDLCommit:
		c.pending = false
		c.trxCount++
	}
	return nil
}

func (c *Converter) persistDDL(ddl string, tc *schema.TableCreate) error {
	tc.WasPersisted = true
	f, err := os.OpenFile(ddlListPath(c.StatePath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "convert.Converter.persistDDL")
	}
	defer f.Close()
	_, err = f.WriteString(ddl + "\n")
	return err
}

func (c *Converter) handleRows(re mysqlbinlog.RowsEvent, eventType mysqlbinlog.EventType, timestamp uint32) error {
	if re.TableMap == nil {
		return nil // dummy row event
	}
	tc := c.tracker.Lookup(re.TableMap.SchemaName, re.TableMap.TableName)
	if tc == nil {
		return errors.Errorf("no TableCreate for %s.%s", re.TableMap.SchemaName, re.TableMap.TableName)
	}
	if len(re.TableMap.Columns) != len(tc.Columns) {
		return errors.Errorf("%s.%s: TableMap has %d columns, TableCreate has %d",
			re.TableMap.SchemaName, re.TableMap.TableName, len(re.TableMap.Columns), len(tc.Columns))
	}

	kind := schema.EventInsert
	switch {
	case eventType.IsUpdateRows():
		kind = schema.EventUpdateAfter
	case eventType.IsDeleteRows():
		kind = schema.EventDelete
	}

	if c.replaying {
		return nil
	}

	at, err := c.avroTableFor(tc)
	if err != nil {
		return err
	}

	for {
		values, beforeValues, err := c.bl.NextRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if beforeValues != nil {
			rec, err := schema.EncodeRecord(tc, c.state.GTID, int32(timestamp), schema.EventUpdateBefore, beforeValues)
			if err != nil {
				return err
			}
			at.WriteRecord(rec)
			c.rowCount++
		}
		rec, err := schema.EncodeRecord(tc, c.state.GTID, int32(timestamp), kind, values)
		if err != nil {
			return err
		}
		at.WriteRecord(rec)
		c.rowCount++
	}
	return nil
}

func (c *Converter) avroTableFor(tc *schema.TableCreate) (*AvroTable, error) {
	key := tc.Stem()
	if at, ok := c.tables[key]; ok {
		if at.Version == tc.Version {
			return at, nil
		}
		if err := at.Close(); err != nil {
			return nil, err
		}
		delete(c.tables, key)
	}
	at, err := OpenAvroTable(c.OutDir, tc)
	if err != nil {
		return nil, err
	}
	c.tables[key] = at
	return at, nil
}

// openTableVersion eagerly (re)opens the data file for tc's new
// version right after an ALTER, per spec.md's seed test 3: subsequent
// rows must land in the new file even before any row event arrives.
func (c *Converter) openTableVersion(tc *schema.TableCreate) error {
	_, err := c.avroTableFor(tc)
	return err
}

// checkpoint implements spec.md §4.6: notify, flush all open
// AvroTables, atomically rewrite ConverterState, zero counters.
func (c *Converter) checkpoint() error {
	if c.Notifier != nil {
		c.Notifier.NotifyCheckpoint(control.ConverterStateSnapshot{
			BinlogFile: c.state.BinlogFile,
			Position:   c.state.Position,
			GTID:       c.state.GTID,
		})
	}
	for _, at := range c.tables {
		if err := at.Flush(); err != nil {
			return errors.Wrap(err, "convert.Converter.checkpoint")
		}
	}
	if err := c.state.Save(c.StatePath); err != nil {
		return errors.Wrap(err, "convert.Converter.checkpoint")
	}
	c.rowCount = 0
	c.trxCount = 0
	return nil
}

// Close flushes and closes every open AvroTable.
func (c *Converter) Close() error {
	var firstErr error
	for _, at := range c.tables {
		if err := at.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// State returns the converter's current (possibly unsaved) resume
// position.
func (c *Converter) State() ConverterState {
	return c.state
}
