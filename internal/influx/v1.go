package influx

import (
	"context"
	"fmt"
	"net/url"
	"time"

	client "github.com/influxdata/influxdb1-client"
	"github.com/influxdata/influxdb1-client/models"
)

// V1Client queries an InfluxDB 1.x server through the official client
// library.
type V1Client struct {
	client *client.Client
}

func NewV1(base *url.URL, username, password string, timeout time.Duration) (*V1Client, error) {
	cfg := client.Config{
		URL:     *base,
		Timeout: timeout,
	}
	if username != "" && password != "" {
		cfg.Username = username
		cfg.Password = password
	}
	c, err := client.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create influxdb v1 client: %w", err)
	}
	return &V1Client{client: c}, nil
}

func (c *V1Client) Kind() Kind { return Database }

func (c *V1Client) Query(ctx context.Context, database, statement string) ([]models.Row, error) {
	resp, err := c.client.QueryContext(ctx, client.Query{Command: statement, Database: database})
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, &StatementError{Message: err.Error()}
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	rows := resp.Results[0].Series
	logRows(statement, database, rows)
	return rows, nil
}

func (c *V1Client) Containers(ctx context.Context) ([]Container, error) {
	return listDatabases(ctx, c)
}

func (c *V1Client) Measurements(ctx context.Context, database string) ([]string, error) {
	return queryMeasurements(ctx, c, database)
}

func (c *V1Client) Close() {}

// listDatabases enumerates databases and their retention policies. A failed
// retention query is recorded on the container and does not stop the listing.
func listDatabases(ctx context.Context, q Client) ([]Container, error) {
	rows, err := q.Query(ctx, "", ShowDatabases())
	if err != nil {
		return nil, err
	}

	names := ColumnStrings(rows, 0)
	out := make([]Container, 0, len(names))
	for _, name := range names {
		ct := Container{Name: name}
		policies, err := q.Query(ctx, name, ShowRetentionPolicies(name))
		if err != nil {
			ct.RetentionErr = err
		} else {
			ct.Policies = parsePolicies(policies)
		}
		out = append(out, ct)
	}
	return out, nil
}

func parsePolicies(series []models.Row) []RetentionPolicy {
	var out []RetentionPolicy
	for _, s := range series {
		nameCol := columnIndex(s.Columns, "name", 0)
		durCol := columnIndex(s.Columns, "duration", 1)
		for _, row := range s.Values {
			var p RetentionPolicy
			if nameCol < len(row) && row[nameCol] != nil {
				p.Name = fmt.Sprint(row[nameCol])
			}
			if durCol < len(row) && row[durCol] != nil {
				p.Duration = fmt.Sprint(row[durCol])
			}
			if p.Duration == "0s" || p.Duration == "0" {
				p.Duration = ""
			}
			out = append(out, p)
		}
	}
	return out
}

func queryMeasurements(ctx context.Context, q Client, container string) ([]string, error) {
	rows, err := q.Query(ctx, container, ShowMeasurements())
	if err != nil {
		return nil, err
	}
	return ColumnStrings(rows, 0), nil
}
