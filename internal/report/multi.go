package report

import "influxinv/internal/inventory"

// Multi fans every write out to each sink in order.
type Multi []inventory.Sink

func (m Multi) WriteMeasurement(container, measurement string, rows []inventory.HostRow) []inventory.Output {
	var out []inventory.Output
	for _, s := range m {
		out = append(out, s.WriteMeasurement(container, measurement, rows)...)
	}
	return out
}

func (m Multi) WriteSummary(rows []inventory.SummaryRow) []inventory.Output {
	var out []inventory.Output
	for _, s := range m {
		out = append(out, s.WriteSummary(rows)...)
	}
	return out
}
