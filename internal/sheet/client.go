// Package sheet talks to the spreadsheet-backed attendance log over HTTP.
// Reads return the whole sheet as a 2-D array of cells; writes append one
// row and are acknowledged with {"ok": true}.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/breaker"
	"github.com/iliyamo/attendance-ledger/internal/model"
)

// maxBodyBytes bounds the size of a fetched sheet.
const maxBodyBytes = 32 << 20

// Client implements the coordinator's LogStore against the remote sheet.
type Client struct {
	readURL  string
	writeURL string
	http     *http.Client
	brk      *breaker.Breaker
	logger   *zap.Logger
}

// New builds a client.  httpClient defaults to a 15s timeout client; brk may
// be nil to disable circuit breaking.
func New(readURL, writeURL string, httpClient *http.Client, brk *breaker.Breaker, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{readURL: readURL, writeURL: writeURL, http: httpClient, brk: brk, logger: logger.Named("sheet")}
}

func (c *Client) run(ctx context.Context, op func(ctx context.Context) error) error {
	if c.brk == nil {
		return op(ctx)
	}
	return c.brk.Execute(ctx, op)
}

// Fetch downloads every row of the log, header row excluded.  Cells that are
// not strings are stringified; entries that are not arrays come back as nil
// rows so the normalizer can count them as malformed.
func (c *Client) Fetch(ctx context.Context) ([][]string, error) {
	var raw []json.RawMessage
	err := c.run(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.readURL, nil)
		if err != nil {
			return &TransportError{Op: "fetch", Err: err}
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return &TransportError{Op: "fetch", Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return &TransportError{Op: "fetch", Status: resp.StatusCode}
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
			return &TransportError{Op: "fetch", Err: fmt.Errorf("decode body: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return [][]string{}, nil
	}
	rows := make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		rows = append(rows, decodeRow(r))
	}
	c.logger.Debug("fetched rows", zap.Int("rows", len(rows)))
	return rows, nil
}

func decodeRow(r json.RawMessage) []string {
	var cells []any
	if err := json.Unmarshal(r, &cells); err != nil || cells == nil {
		return nil
	}
	out := make([]string, len(cells))
	for i, v := range cells {
		switch t := v.(type) {
		case nil:
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(t)
		default:
			b, _ := json.Marshal(t)
			out[i] = string(b)
		}
	}
	return out
}

type appendRequest struct {
	Values [][]string `json:"values"`
}

type appendResponse struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

// Append writes one row.  A rejected or unreadable acknowledgement is a
// *LogicalError; it does not count against the circuit breaker because
// the store did answer.
func (c *Client) Append(ctx context.Context, row []string) error {
	body, err := json.Marshal(appendRequest{Values: [][]string{row}})
	if err != nil {
		return err
	}

	var ack []byte
	err = c.run(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewReader(body))
		if err != nil {
			return &TransportError{Op: "append", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return &TransportError{Op: "append", Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return &TransportError{Op: "append", Status: resp.StatusCode}
		}
		ack, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return &TransportError{Op: "append", Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var res appendResponse
	if err := json.Unmarshal(ack, &res); err != nil || res.OK == nil {
		return &LogicalError{Message: "malformed acknowledgement"}
	}
	if !*res.OK {
		msg := res.Error
		if msg == "" {
			msg = "store reported failure"
		}
		return &LogicalError{Message: msg}
	}
	return nil
}

// EncodeRow builds the six cells for a new event: actor, action, ISO-8601
// UTC timestamp with milliseconds, local date, local time and source.
func EncodeRow(actor string, action model.Action, at time.Time, loc *time.Location, source string) []string {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	row := make([]string, model.RowWidth)
	row[model.ColActor] = actor
	row[model.ColAction] = string(action)
	row[model.ColTimestamp] = at.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	row[model.ColDate] = local.Format(model.DateLayout)
	row[model.ColTime] = local.Format("15:04:05")
	row[model.ColSource] = source
	return row
}
