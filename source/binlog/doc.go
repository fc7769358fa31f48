// Package binlog turns MySQL row based binlog events into pipeline tables and rows.
//
// Prerequisites on the source server:
//   - `--binlog-format=ROW`: binlog output row changes instead of statments
//   - `--binlog-row-image=FULL`: before and after image of row changes
//   - `--binlog-row-metadata=FULL`: column names, signedness, charsets and primary keys in TABLE_MAP_EVENT
//
// Without full row metadata a TABLE_MAP_EVENT carries no column names and TableFromEvent fails.
//
// ref:
//   - https://mysqlhighavailability.com/more-metadata-is-written-into-binary-log/
//   - https://github.com/go-mysql-org/go-mysql/pull/468
package binlog
