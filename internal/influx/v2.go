package influx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/influxdata/influxdb1-client/models"
)

// bucketPageSize is the largest page the buckets endpoint serves.
const bucketPageSize = 100

const measurementsFlux = `import "influxdata/influxdb/schema"

schema.measurements(bucket: params.bucket)`

// V2Client queries an InfluxDB 2.x server. Buckets and Flux go through the
// official client; InfluxQL goes through the /query compatibility endpoint,
// which requires a DBRP mapping for each bucket.
type V2Client struct {
	baseURL string
	token   string
	org     string
	useFlux bool
	http    *http.Client
	client  influxdb2.Client
}

func NewV2(baseURL, token, org string, useFlux bool, httpClient *http.Client) *V2Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opts := influxdb2.DefaultOptions().SetHTTPClient(httpClient)
	return &V2Client{
		baseURL: baseURL,
		token:   token,
		org:     org,
		useFlux: useFlux,
		http:    httpClient,
		client:  influxdb2.NewClientWithOptions(baseURL, token, opts),
	}
}

func (c *V2Client) Kind() Kind { return Bucket }

func (c *V2Client) Containers(ctx context.Context) ([]Container, error) {
	buckets, err := c.findBuckets(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Container, 0, len(buckets))
	for _, b := range buckets {
		ct := Container{Name: b.Name}
		if b.Id != nil {
			ct.ID = *b.Id
		}
		var p RetentionPolicy
		if len(b.RetentionRules) > 0 && b.RetentionRules[0].EverySeconds > 0 {
			p.Duration = fmt.Sprintf("%d", b.RetentionRules[0].EverySeconds)
		}
		ct.Policies = []RetentionPolicy{p}
		out = append(out, ct)
	}
	return out, nil
}

// findBuckets pages through every bucket of the organization; the server
// otherwise returns only its default page.
func (c *V2Client) findBuckets(ctx context.Context) ([]domain.Bucket, error) {
	var all []domain.Bucket
	for offset := 0; ; offset += bucketPageSize {
		page, err := c.client.BucketsAPI().FindBucketsByOrgName(ctx, c.org,
			api.PagingWithLimit(bucketPageSize), api.PagingWithOffset(offset))
		if err != nil {
			return nil, fmt.Errorf("find buckets: %w", err)
		}
		if page == nil {
			return all, nil
		}
		all = append(all, *page...)
		if len(*page) < bucketPageSize {
			return all, nil
		}
	}
}

func (c *V2Client) Measurements(ctx context.Context, bucket string) ([]string, error) {
	if !c.useFlux {
		return queryMeasurements(ctx, c, bucket)
	}

	params := struct {
		Bucket string `json:"bucket"`
	}{Bucket: bucket}
	result, err := c.client.QueryAPI(c.org).QueryWithParams(ctx, measurementsFlux, params)
	if err != nil {
		return nil, fmt.Errorf("flux measurements: %w", err)
	}
	defer result.Close()

	var out []string
	for result.Next() {
		if v, ok := result.Record().Value().(string); ok {
			out = append(out, v)
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read flux result: %w", err)
	}
	return out, nil
}

func (c *V2Client) Query(ctx context.Context, bucket, statement string) ([]models.Row, error) {
	params := url.Values{}
	params.Set("org", c.org)
	if bucket != "" {
		params.Set("db", bucket)
	}
	params.Set("q", statement)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	rows, err := doQuery(c.http, req)
	if err != nil {
		return nil, err
	}
	logRows(statement, bucket, rows)
	return rows, nil
}

func (c *V2Client) Close() {
	c.client.Close()
}
