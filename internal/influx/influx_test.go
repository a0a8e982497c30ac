package influx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/influxdata/influxdb1-client/models"
)

// fakeV1 answers InfluxQL statements from a fixed table keyed by "db|q".
type fakeV1 struct {
	t         *testing.T
	responses map[string]string
	status    map[string]int
	seen      []string
	auth      []string
}

func (f *fakeV1) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/query" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	key := q.Get("db") + "|" + q.Get("q")
	f.seen = append(f.seen, key)
	f.auth = append(f.auth, q.Get("u")+":"+q.Get("p"))

	if code, ok := f.status[key]; ok {
		http.Error(w, "boom", code)
		return
	}
	body, ok := f.responses[key]
	if !ok {
		body = `{"results":[{"statement_id":0}]}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newFakeV1(t *testing.T, responses map[string]string) (*fakeV1, *httptest.Server) {
	t.Helper()
	f := &fakeV1{t: t, responses: responses, status: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

const (
	databasesBody = `{"results":[{"statement_id":0,"series":[{"name":"databases","columns":["name"],"values":[["_internal"],["telegraf"]]}]}]}`
	internalRPs   = `{"results":[{"statement_id":0,"series":[{"columns":["name","duration","shardGroupDuration","replicaN","default"],"values":[["monitor","168h0m0s","24h0m0s",1,true]]}]}]}`
	telegrafRPs   = `{"results":[{"statement_id":0,"series":[{"columns":["name","duration","shardGroupDuration","replicaN","default"],"values":[["autogen","0s","168h0m0s",1,true],["short","24h0m0s","1h0m0s",1,false]]}]}]}`
)

func TestV1HTTPContainers(t *testing.T) {
	_, srv := newFakeV1(t, map[string]string{
		"|SHOW DATABASES": databasesBody,
		"_internal|SHOW RETENTION POLICIES ON _internal": internalRPs,
		"telegraf|SHOW RETENTION POLICIES ON telegraf":   telegrafRPs,
	})

	c := NewV1HTTP(srv.URL, "", "", nil)
	got, err := c.Containers(context.Background())
	if err != nil {
		t.Fatalf("Containers() error = %v", err)
	}

	want := []Container{
		{Name: "_internal", Policies: []RetentionPolicy{{Name: "monitor", Duration: "168h0m0s"}}},
		{Name: "telegraf", Policies: []RetentionPolicy{{Name: "autogen"}, {Name: "short", Duration: "24h0m0s"}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Containers() = %+v, want %+v", got, want)
	}
	if d := got[1].Policies[0].Display(); d != "infinite" {
		t.Fatalf("zero duration display = %q, want infinite", d)
	}
}

func TestV1HTTPRetentionFailureIsPerDatabase(t *testing.T) {
	f, srv := newFakeV1(t, map[string]string{
		"|SHOW DATABASES": databasesBody,
		"telegraf|SHOW RETENTION POLICIES ON telegraf": telegrafRPs,
	})
	f.status["_internal|SHOW RETENTION POLICIES ON _internal"] = http.StatusInternalServerError

	c := NewV1HTTP(srv.URL, "", "", nil)
	got, err := c.Containers(context.Background())
	if err != nil {
		t.Fatalf("Containers() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("container count = %d, want 2", len(got))
	}
	var statusErr *StatusError
	if !errors.As(got[0].RetentionErr, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("retention error = %v, want HTTP 500", got[0].RetentionErr)
	}
	if got[1].RetentionErr != nil {
		t.Fatalf("unexpected retention error for telegraf: %v", got[1].RetentionErr)
	}
}

func TestV1HTTPCredentialsRequireBoth(t *testing.T) {
	f, srv := newFakeV1(t, nil)

	if _, err := NewV1HTTP(srv.URL, "admin", "", nil).Query(context.Background(), "db", "SHOW MEASUREMENTS"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if _, err := NewV1HTTP(srv.URL, "admin", "secret", nil).Query(context.Background(), "db", "SHOW MEASUREMENTS"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := []string{":", "admin:secret"}
	if !reflect.DeepEqual(f.auth, want) {
		t.Fatalf("credentials sent = %v, want %v", f.auth, want)
	}
}

func TestV1HTTPStatusError(t *testing.T) {
	f, srv := newFakeV1(t, nil)
	f.status["db|SHOW MEASUREMENTS"] = http.StatusUnauthorized

	_, err := NewV1HTTP(srv.URL, "", "", nil).Query(context.Background(), "db", "SHOW MEASUREMENTS")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Query() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Body != "boom" {
		t.Fatalf("status error = %+v", statusErr)
	}
	if !strings.HasPrefix(err.Error(), "HTTP 401") {
		t.Fatalf("error text = %q, want HTTP 401 prefix", err.Error())
	}
}

func TestV1HTTPMissingSeriesIsEmpty(t *testing.T) {
	_, srv := newFakeV1(t, map[string]string{
		"db|SHOW MEASUREMENTS": `{"results":[{"statement_id":0}]}`,
	})

	got, err := NewV1HTTP(srv.URL, "", "", nil).Measurements(context.Background(), "db")
	if err != nil {
		t.Fatalf("Measurements() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Measurements() = %v, want empty", got)
	}
}

func TestV1HTTPMalformedAndStatementErrors(t *testing.T) {
	_, srv := newFakeV1(t, map[string]string{
		"db|bad":  `<html>`,
		"db|fail": `{"results":[{"statement_id":0,"error":"database not found: db"}]}`,
	})
	c := NewV1HTTP(srv.URL, "", "", nil)

	if _, err := c.Query(context.Background(), "db", "bad"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Query(bad) error = %v, want ErrMalformedResponse", err)
	}

	_, err := c.Query(context.Background(), "db", "fail")
	var stmtErr *StatementError
	if !errors.As(err, &stmtErr) || stmtErr.Message != "database not found: db" {
		t.Fatalf("Query(fail) error = %v, want statement error", err)
	}
}

func TestV1ClientLibraryQuery(t *testing.T) {
	_, srv := newFakeV1(t, map[string]string{
		"db|SHOW MEASUREMENTS": `{"results":[{"statement_id":0,"series":[{"name":"measurements","columns":["name"],"values":[["cpu"],["mem"]]}]}]}`,
	})

	c, err := New(Config{URL: srv.URL, API: APIv1, Transport: TransportClient})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if _, ok := c.(*V1Client); !ok {
		t.Fatalf("New() = %T, want *V1Client", c)
	}

	got, err := c.Measurements(context.Background(), "db")
	if err != nil {
		t.Fatalf("Measurements() error = %v", err)
	}
	if want := []string{"cpu", "mem"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Measurements() = %v, want %v", got, want)
	}
}

func TestNewSelectsImplementation(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{URL: "http://localhost:8086"}, "*influx.V1Client"},
		{Config{URL: "http://localhost:8086", Transport: TransportHTTP}, "*influx.V1HTTPClient"},
		{Config{URL: "http://localhost:8086", API: APIv2, Token: "t", Org: "o"}, "*influx.V2Client"},
	}
	for _, tt := range tests {
		c, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%+v) error = %v", tt.cfg, err)
		}
		if got := reflect.TypeOf(c).String(); got != tt.want {
			t.Fatalf("New(%+v) = %s, want %s", tt.cfg, got, tt.want)
		}
		c.Close()
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8086", "ftp://host", "http://"} {
		if _, err := New(Config{URL: raw}); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestColumnStrings(t *testing.T) {
	rows := []models.Row{
		{Columns: []string{"key", "value"}, Values: [][]interface{}{{"host", "b"}, {"host", "a"}}},
		{Columns: []string{"key", "value"}, Values: [][]interface{}{{"host"}, {"host", nil}, {"host", "b"}}},
	}
	got := ColumnStrings(rows, 1)
	if want := []string{"b", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ColumnStrings() = %v, want %v", got, want)
	}
	if _, ok := FirstValue(nil, 0); ok {
		t.Fatal("FirstValue(nil) reported a value")
	}
}
