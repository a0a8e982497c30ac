// Package influx talks to InfluxDB servers. One Client implementation exists
// per API version and transport; all of them normalise query results into
// InfluxQL series rows so callers never branch on the server version.
package influx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/influxdata/influxdb1-client/models"
)

// Kind names the top-level namespace a server exposes.
type Kind string

const (
	Database Kind = "database"
	Bucket   Kind = "bucket"
)

// Title returns the kind with its first letter upper-cased.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// API selects the server API version.
type API string

const (
	APIv1 API = "v1"
	APIv2 API = "v2"
)

// Transport selects how v1 servers are queried.
type Transport string

const (
	TransportClient Transport = "client"
	TransportHTTP   Transport = "http"
)

const infinite = "infinite"

// RetentionPolicy is a retention setting of a container. Duration is empty
// when the server reports no expiry.
type RetentionPolicy struct {
	Name     string
	Duration string
}

// Display returns the duration, or "infinite" when no expiry is set.
func (p RetentionPolicy) Display() string {
	if p.Duration == "" {
		return infinite
	}
	return p.Duration
}

// Container is a database (v1) or bucket (v2).
type Container struct {
	Name     string
	ID       string
	Policies []RetentionPolicy

	// RetentionErr is set when the container was listed but its retention
	// settings could not be read.
	RetentionErr error
}

// Client executes inventory queries against one server.
type Client interface {
	Kind() Kind
	Containers(ctx context.Context) ([]Container, error)
	Measurements(ctx context.Context, container string) ([]string, error)
	Query(ctx context.Context, container, statement string) ([]models.Row, error)
	Close()
}

// Config holds connection parameters for New.
type Config struct {
	URL       string
	API       API
	Transport Transport

	// v1 credentials; both must be set for authentication to be used.
	Username string
	Password string

	// v2 credentials.
	Token string
	Org   string

	// UseFlux lists v2 measurements through the native Flux API instead of
	// the InfluxQL compatibility endpoint.
	UseFlux bool

	// Timeout of 0 keeps the transport default.
	Timeout time.Duration
}

// New builds the Client selected by cfg.
func New(cfg Config) (Client, error) {
	base, err := parseBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.API {
	case APIv2:
		return NewV2(base.String(), cfg.Token, cfg.Org, cfg.UseFlux, httpClient), nil
	case APIv1, "":
		if cfg.Transport == TransportHTTP {
			return NewV1HTTP(base.String(), cfg.Username, cfg.Password, httpClient), nil
		}
		return NewV1(base, cfg.Username, cfg.Password, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported api version %q", cfg.API)
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("server url is required")
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", raw)
	}
	return u, nil
}

// ColumnStrings collects column col of every row of every series. Rows that
// are too short or hold a nil value are skipped.
func ColumnStrings(series []models.Row, col int) []string {
	var out []string
	for _, s := range series {
		for _, row := range s.Values {
			if col >= len(row) || row[col] == nil {
				continue
			}
			switch v := row[col].(type) {
			case string:
				out = append(out, v)
			default:
				out = append(out, fmt.Sprint(v))
			}
		}
	}
	return out
}

// FirstValue returns column col of the first row of the first series that has
// one.
func FirstValue(series []models.Row, col int) (string, bool) {
	vals := ColumnStrings(series, col)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func columnIndex(columns []string, name string, fallback int) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return fallback
}
