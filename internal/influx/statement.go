package influx

import (
	"strings"

	"github.com/influxdata/influxql"
)

// HostTagKey is the only tag key inventoried.
const HostTagKey = "host"

func ShowDatabases() string { return "SHOW DATABASES" }

func ShowMeasurements() string { return "SHOW MEASUREMENTS" }

func ShowRetentionPolicies(database string) string {
	return "SHOW RETENTION POLICIES ON " + influxql.QuoteIdent(database)
}

// ShowTagValues lists values of key. An empty measurement spans every
// measurement of the database.
func ShowTagValues(measurement, key string) string {
	var b strings.Builder
	b.WriteString("SHOW TAG VALUES")
	if measurement != "" {
		b.WriteString(" FROM ")
		b.WriteString(influxql.QuoteIdent(measurement))
	}
	b.WriteString(" WITH KEY = ")
	b.WriteString(influxql.QuoteIdent(key))
	return b.String()
}

// SelectOne fetches a single point of measurement where key equals value.
// Without newestFirst the server picks the row, which is not guaranteed to be
// the most recent one.
func SelectOne(measurement, key, value string, newestFirst bool) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(influxql.QuoteIdent(measurement))
	b.WriteString(" WHERE ")
	b.WriteString(influxql.QuoteIdent(key))
	b.WriteString(" = ")
	b.WriteString(influxql.QuoteString(value))
	if newestFirst {
		b.WriteString(" ORDER BY time DESC")
	}
	b.WriteString(" LIMIT 1")
	return b.String()
}
