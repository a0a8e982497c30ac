package influx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/influxdata/influxdb1-client/models"
)

const maxErrorBody = 4096

type wireResponse struct {
	Results []wireResult `json:"results"`
	Err     string       `json:"error,omitempty"`
}

type wireResult struct {
	StatementID int          `json:"statement_id"`
	Series      []models.Row `json:"series"`
	Err         string       `json:"error,omitempty"`
}

// decodeResponse reads an InfluxQL JSON body. Absent results or series mean
// no data, not an error.
func decodeResponse(r io.Reader) ([]models.Row, error) {
	var resp wireResponse
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Err != "" {
		return nil, &StatementError{Message: resp.Err}
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	res := resp.Results[0]
	if res.Err != "" {
		return nil, &StatementError{Message: res.Err}
	}
	return res.Series, nil
}

// doQuery sends req and decodes the InfluxQL response.
func doQuery(client *http.Client, req *http.Request) ([]models.Row, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return decodeResponse(resp.Body)
}

func logRows(statement, container string, rows []models.Row) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	slog.Debug("raw query response", "statement", statement, "container", container, "series", string(raw))
}
