package mysqlbinlog

import "fmt"

// nextEvent reads and decodes a single event off r: the fixed header,
// then the per-type payload, maintaining r.fde and r.tmeCache as it goes.
// The caller is responsible for positioning r at the start of an event
// and for draining any unread bytes of the previous event first.
func nextEvent(r *reader) (Event, error) {
	var h EventHeader
	if err := h.decode(r); err != nil {
		return Event{}, err
	}
	if h.EventSize == 0 {
		return Event{}, fmt.Errorf("mysqlbinlog: event at pos %d has zero size", r.binlogPos)
	}
	if h.EventType > maxKnownEventType {
		return Event{}, fmt.Errorf("mysqlbinlog: unrecognized event type 0x%02x", uint8(h.EventType))
	}

	headerLen := 19
	if r.fde.BinlogVersion <= 1 {
		headerLen = 13
	}
	r.limit = int(h.EventSize) - headerLen
	if h.EventType != FORMAT_DESCRIPTION_EVENT {
		r.limit -= r.checksum
	}

	data, err := decodeEventBody(r, h)
	if err != nil {
		return Event{}, err
	}
	if r.err != nil {
		return Event{}, r.err
	}
	return Event{Header: h, Data: data}, nil
}

func decodeEventBody(r *reader, h EventHeader) (interface{}, error) {
	switch h.EventType {
	case FORMAT_DESCRIPTION_EVENT:
		var e FormatDescriptionEvent
		err := e.decode(r, h.EventSize)
		r.fde = e
		return e, err
	case ROTATE_EVENT:
		var e RotateEvent
		err := e.decode(r)
		for k := range r.tmeCache {
			delete(r.tmeCache, k)
		}
		return e, err
	case QUERY_EVENT:
		var e QueryEvent
		return e, e.decode(r)
	case STOP_EVENT:
		return StopEvent{}, nil
	case INTVAR_EVENT:
		var e IntVarEvent
		return e, e.decode(r)
	case RAND_EVENT:
		var e RandEvent
		return e, e.decode(r)
	case USER_VAR_EVENT:
		var e UserVarEvent
		return e, e.decode(r)
	case INCIDENT_EVENT:
		var e IncidentEvent
		return e, e.decode(r)
	case ROWS_QUERY_EVENT:
		var e RowsQueryEvent
		return e, e.decode(r)
	case XID_EVENT:
		return xidEvent{}, nil
	case GTID_EVENT:
		return gtidEvent{}, nil
	case ANONYMOUS_GTID_EVENT:
		return anonymousGTIDEvent{}, nil
	case PREVIOUS_GTIDS_EVENT:
		return previousGTIDsEvent{}, nil
	case MARIADB_GTID_EVENT:
		var e MariaDBGTIDEvent
		err := e.decode(r)
		e.GTID.ServerID = h.ServerID
		return e, err
	case MARIADB_GTID_LIST_EVENT:
		var e MariaDBGTIDListEvent
		return e, e.decode(r)
	case MARIADB_BINLOG_CHECKPOINT_EVENT:
		e := r.stringEOF()
		return e, r.err
	case TABLE_MAP_EVENT:
		var e TableMapEvent
		err := e.decode(r)
		if err == nil {
			r.tmeCache[e.tableID] = &e
		}
		return e, err
	case WRITE_ROWS_EVENTv0, WRITE_ROWS_EVENTv1, WRITE_ROWS_EVENTv2,
		UPDATE_ROWS_EVENTv0, UPDATE_ROWS_EVENTv1, UPDATE_ROWS_EVENTv2,
		DELETE_ROWS_EVENTv0, DELETE_ROWS_EVENTv1, DELETE_ROWS_EVENTv2:
		var e RowsEvent
		err := e.decode(r, h.EventType)
		r.re = e
		return e, err
	case HEARTBEAT_EVENT:
		return HeartbeatEvent{}, nil
	default:
		return UnknownEvent{}, nil
	}
}
