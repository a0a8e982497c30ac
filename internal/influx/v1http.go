package influx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/influxdata/influxdb1-client/models"
)

// V1HTTPClient queries an InfluxDB 1.x server with plain GET /query requests.
type V1HTTPClient struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewV1HTTP(baseURL, username, password string, httpClient *http.Client) *V1HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &V1HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   httpClient,
	}
}

func (c *V1HTTPClient) Kind() Kind { return Database }

func (c *V1HTTPClient) Query(ctx context.Context, database, statement string) ([]models.Row, error) {
	params := url.Values{}
	params.Set("q", statement)
	if database != "" {
		params.Set("db", database)
	}
	if c.username != "" && c.password != "" {
		params.Set("u", c.username)
		params.Set("p", c.password)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	rows, err := doQuery(c.client, req)
	if err != nil {
		return nil, err
	}
	logRows(statement, database, rows)
	return rows, nil
}

func (c *V1HTTPClient) Containers(ctx context.Context) ([]Container, error) {
	return listDatabases(ctx, c)
}

func (c *V1HTTPClient) Measurements(ctx context.Context, database string) ([]string, error) {
	return queryMeasurements(ctx, c, database)
}

func (c *V1HTTPClient) Close() {}
