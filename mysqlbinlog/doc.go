/*
Package mysqlbinlog decodes MySQL/MariaDB binlog replication events read
from a directory of binlog files (a "local" source, as produced by
mysqlbinlog --raw or a prior dump), not from a live replication stream.

to open a binlog directory and walk its events:

	bl, err := mysqlbinlog.Open("/var/lib/mysql/binlogs")
	if err != nil {
		return err
	}
	if err := bl.Seek("binlog.000001"); err != nil {
		return err
	}
	for {
		e, err := bl.NextEvent()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		re, ok := e.Data.(mysqlbinlog.RowsEvent)
		if !ok {
			continue
		}
		fmt.Printf("table: %s.%s\n", re.TableMap.SchemaName, re.TableMap.TableName)
		for {
			row, _, err := bl.NextRow()
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
			for i, v := range row {
				col := re.Columns()[i]
				fmt.Printf("col=%s ordinal=%d value=%v\n", col.Name, col.Ordinal, v)
			}
		}
	}

This package also classifies QUERY_EVENT DDL statements (CREATE/ALTER
TABLE) and decodes the MariaDB GTID and GTID list events, so a caller can
track a resumable position without understanding the wire format. The
MySQL GTID_EVENT, ANONYMOUS_GTID_EVENT and PREVIOUS_GTIDS_EVENT are
recognized, but their payloads are not decoded.
*/
package mysqlbinlog
