package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/breaker"
	"github.com/iliyamo/attendance-ledger/internal/model"
)

func TestFetch_DropsHeaderAndStringifiesCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[
			["actor","action","timestamp","date","time","source"],
			["alice","checkin","2024-03-04T09:00:00Z",20240304,null,true],
			"not a row",
			["bob"]
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, srv.Client(), nil, nil)
	rows, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"alice", "checkin", "2024-03-04T09:00:00Z", "20240304", "", "true"}, rows[0])
	assert.Nil(t, rows[1])
	assert.Equal(t, []string{"bob"}, rows[2])
}

func TestFetch_EmptySheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rows, err := New(srv.URL, srv.URL, srv.Client(), nil, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetch_NonOKIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.URL, srv.Client(), nil, nil).Fetch(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.Status)
}

func TestAppend(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLogic bool
		wantTrans bool
	}{
		{"ok", http.StatusOK, `{"ok":true}`, false, false},
		{"rejected", http.StatusOK, `{"ok":false,"error":"locked"}`, true, false},
		{"malformed", http.StatusOK, `<html>`, true, false},
		{"missing ok", http.StatusOK, `{}`, true, false},
		{"server error", http.StatusInternalServerError, ``, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got appendRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			row := []string{"alice", "checkin", "t", "d", "h", "api"}
			err := New(srv.URL, srv.URL, srv.Client(), nil, nil).Append(context.Background(), row)
			assert.Equal(t, [][]string{row}, got.Values)

			var le *LogicalError
			var te *TransportError
			assert.Equal(t, tt.wantLogic, errors.As(err, &le))
			assert.Equal(t, tt.wantTrans, errors.As(err, &te))
			if !tt.wantLogic && !tt.wantTrans {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppend_LogicalErrorDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	brk := breaker.New("sheet", breaker.Config{MaxFailures: 1, ResetTimeout: time.Minute}, nil)
	c := New(srv.URL, srv.URL, srv.Client(), brk, nil)
	for i := 0; i < 3; i++ {
		var le *LogicalError
		assert.ErrorAs(t, c.Append(context.Background(), []string{"a"}), &le)
	}
	assert.Equal(t, breaker.Closed, brk.State())
}

func TestEncodeRow(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	at := time.Date(2024, 3, 4, 20, 30, 15, 0, time.UTC)
	row := EncodeRow("alice", model.ActionCheckOut, at, loc, "api")
	assert.Equal(t, []string{"alice", "checkout", "2024-03-04T20:30:15.000Z", "2024-03-05", "03:30:15", "api"}, row)
}
