package influx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

const bucketsBody = `{"buckets":[
	{"id":"0a1b2c","name":"telegraf","orgID":"o1","retentionRules":[{"type":"expire","everySeconds":604800}]},
	{"id":"3d4e5f","name":"sensors","orgID":"o1","retentionRules":[]},
	{"id":"6a7b8c","name":"forever","orgID":"o1","retentionRules":[{"type":"expire","everySeconds":0}]}
]}`

const measurementsCSV = "#datatype,string,long,string\n" +
	"#group,false,false,false\n" +
	"#default,_result,,\n" +
	",result,table,_value\n" +
	",,0,cpu\n" +
	",,0,mem\n" +
	"\n"

type fakeV2 struct {
	queries []string
	orgs    []string
	auth    []string
	fluxes  []string
}

func newFakeV2(t *testing.T) (*fakeV2, *httptest.Server) {
	t.Helper()
	f := &fakeV2{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/buckets", func(w http.ResponseWriter, r *http.Request) {
		f.orgs = append(f.orgs, r.URL.Query().Get("org"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bucketsBody))
	})
	mux.HandleFunc("/api/v2/query", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.fluxes = append(f.fluxes, string(body))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(measurementsCSV))
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		f.queries = append(f.queries, q.Get("org")+"|"+q.Get("db")+"|"+q.Get("q"))
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"statement_id":0,"series":[{"name":"measurements","columns":["name"],"values":[["disk"]]}]}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func TestV2Containers(t *testing.T) {
	f, srv := newFakeV2(t)
	c := NewV2(srv.URL, "tkn", "acme", false, nil)
	defer c.Close()

	got, err := c.Containers(context.Background())
	if err != nil {
		t.Fatalf("Containers() error = %v", err)
	}
	want := []Container{
		{Name: "telegraf", ID: "0a1b2c", Policies: []RetentionPolicy{{Duration: "604800"}}},
		{Name: "sensors", ID: "3d4e5f", Policies: []RetentionPolicy{{}}},
		{Name: "forever", ID: "6a7b8c", Policies: []RetentionPolicy{{}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Containers() = %+v, want %+v", got, want)
	}
	if len(f.orgs) == 0 || f.orgs[0] != "acme" {
		t.Fatalf("bucket lookup org = %v, want acme", f.orgs)
	}
	for _, ct := range got[1:] {
		if d := ct.Policies[0].Display(); d != "infinite" {
			t.Fatalf("%s retention = %q, want infinite", ct.Name, d)
		}
	}
}

func TestV2ContainersPagesThroughBuckets(t *testing.T) {
	const total = 245
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/buckets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("limit")+"@"+q.Get("offset"))
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		offset, _ := strconv.Atoi(q.Get("offset"))

		var buckets []map[string]any
		for i := offset; i < total && i < offset+limit; i++ {
			buckets = append(buckets, map[string]any{"id": fmt.Sprintf("b%03d", i), "name": fmt.Sprintf("bucket-%03d", i), "retentionRules": []any{}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"buckets": buckets})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewV2(srv.URL, "tkn", "acme", false, nil)
	defer c.Close()

	got, err := c.Containers(context.Background())
	if err != nil {
		t.Fatalf("Containers() error = %v", err)
	}
	if len(got) != total {
		t.Fatalf("Containers() returned %d buckets, want %d", len(got), total)
	}
	if got[0].Name != "bucket-000" || got[total-1].Name != "bucket-244" {
		t.Fatalf("Containers() first/last = %s/%s", got[0].Name, got[total-1].Name)
	}
	if want := []string{"100@0", "100@100", "100@200"}; !reflect.DeepEqual(pages, want) {
		t.Fatalf("pages = %v, want %v", pages, want)
	}
}

func TestV2QueryUsesCompatibilityEndpoint(t *testing.T) {
	f, srv := newFakeV2(t)
	c := NewV2(srv.URL, "tkn", "acme", false, nil)
	defer c.Close()

	got, err := c.Measurements(context.Background(), "telegraf")
	if err != nil {
		t.Fatalf("Measurements() error = %v", err)
	}
	if want := []string{"disk"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Measurements() = %v, want %v", got, want)
	}
	if want := []string{"acme|telegraf|SHOW MEASUREMENTS"}; !reflect.DeepEqual(f.queries, want) {
		t.Fatalf("queries = %v, want %v", f.queries, want)
	}
	if f.auth[0] != "Token tkn" {
		t.Fatalf("authorization = %q, want Token tkn", f.auth[0])
	}
}

func TestV2MeasurementsViaFlux(t *testing.T) {
	f, srv := newFakeV2(t)
	c := NewV2(srv.URL, "tkn", "acme", true, nil)
	defer c.Close()

	got, err := c.Measurements(context.Background(), `we"ird`)
	if err != nil {
		t.Fatalf("Measurements() error = %v", err)
	}
	if want := []string{"cpu", "mem"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Measurements() = %v, want %v", got, want)
	}
	if len(f.queries) != 0 {
		t.Fatalf("unexpected InfluxQL queries: %v", f.queries)
	}
	if len(f.fluxes) != 1 {
		t.Fatalf("flux request count = %d, want 1", len(f.fluxes))
	}
	if !strings.Contains(f.fluxes[0], "params.bucket") || strings.Contains(f.fluxes[0], `bucket: "we`) {
		t.Fatalf("bucket was not passed as a parameter: %s", f.fluxes[0])
	}
}
