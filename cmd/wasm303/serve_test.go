package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedjinn/wasm303/host"
	"github.com/thedjinn/wasm303/vm"
)

func newTestServer(t *testing.T) (*host.Driver, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d, err := host.New(nil)
	require.NoError(t, err)

	return d, newRouter(d)
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func renderOne(d *host.Driver) {
	d.RenderBlock(make([]float32, host.BlockFrames*host.Channels))
}

func TestHealth(t *testing.T) {
	d, r := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := doRequest(r, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, false, resp["booted"])
	}

	renderOne(d)

	w := doRequest(r, http.MethodGet, "/api/v1/health", "")
	assert.Contains(t, w.Body.String(), `"booted":true`)
}

func TestListOpcodes(t *testing.T) {
	_, r := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/api/v1/opcodes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Opcodes []vm.OpcodeInfo `json:"opcodes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Opcodes, len(vm.Opcodes()))
}

func TestListParams(t *testing.T) {
	_, r := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/api/v1/params", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Params map[string]any `json:"params"`
		Names  []string       `json:"names"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, host.ParamNames(), resp.Names)
	assert.InDelta(t, 450, resp.Params["cutoff"], 1e-9)
	assert.Equal(t, true, resp.Params["running"])
}

func TestSetParam(t *testing.T) {
	d, r := newTestServer(t)

	w := doRequest(r, http.MethodPost, "/api/v1/params/cutoff", `{"value": 800}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 5, d.Pending())

	renderOne(d)
	assert.InDelta(t, 800, d.Params().Cutoff, 1e-3)
}

func TestSetParam_Errors(t *testing.T) {
	_, r := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"unknown parameter", "/api/v1/params/volume", `{"value": 1}`, http.StatusNotFound},
		{"missing value", "/api/v1/params/cutoff", `{}`, http.StatusBadRequest},
		{"malformed body", "/api/v1/params/cutoff", `{"value":`, http.StatusBadRequest},
		{"negative length", "/api/v1/params/delay-length", `{"value": -5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestSetParam_QueueFull(t *testing.T) {
	d, r := newTestServer(t)

	for d.Pending()+5 <= 1024 {
		require.NoError(t, d.Send(vm.SetCutoff, 500))
	}

	w := doRequest(r, http.MethodPost, "/api/v1/params/cutoff", `{"value": 800}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBlockPeriod(t *testing.T) {
	assert.Equal(t, 2902494*time.Nanosecond, blockPeriod)
}

func TestClockRendersUntilCancelled(t *testing.T) {
	d, err := host.New(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*blockPeriod)
	defer cancel()

	clock(ctx, d)

	assert.True(t, d.Booted())
	assert.GreaterOrEqual(t, d.LastStep(), 0)
}

func TestTransport(t *testing.T) {
	d, r := newTestServer(t)

	w := doRequest(r, http.MethodPost, "/api/v1/transport", `{"running": false}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	renderOne(d)
	assert.False(t, d.Params().Running)

	w = doRequest(r, http.MethodPost, "/api/v1/transport", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStep(t *testing.T) {
	d, r := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/api/v1/step", "")
	assert.JSONEq(t, `{"step": -1}`, w.Body.String())

	renderOne(d)

	w = doRequest(r, http.MethodGet, "/api/v1/step", "")
	assert.JSONEq(t, `{"step": 0}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	_, r := newTestServer(t)

	w := doRequest(r, http.MethodOptions, "/api/v1/params/cutoff", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
