//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package debug

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmu-tbd/behavior-machine-go/core"
	"github.com/cmu-tbd/behavior-machine-go/library"
)

func newTestMachine(name string) *core.Machine {
	leaf := library.NewWaitState(10*time.Second, "w1")
	return core.NewMachine(name, leaf, core.WithEndStates("w1"), core.WithRate(100))
}

func TestServerListsMachines(t *testing.T) {
	srv := New(WithMachines(newTestMachine("beta"), newTestMachine("alpha")))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/machines", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Machines []string `json:"machines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"alpha", "beta"}, body.Machines, "names come back sorted")
}

func TestServerSnapshotOfRunningMachine(t *testing.T) {
	mac := newTestMachine("mac")
	srv := New()
	srv.Register(mac)

	require.NoError(t, mac.Start(core.NewBoard(), nil))
	defer mac.Interrupt()
	time.Sleep(100 * time.Millisecond)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/machines/mac", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info core.DebugInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "mac", info.Name)
	assert.Equal(t, "Machine", info.Type)
	require.Len(t, info.Children, 1)
	assert.Equal(t, "w1", info.Children[0].Name)
	assert.Equal(t, "WaitState", info.Children[0].Type)
}

func TestServerUnknownMachine(t *testing.T) {
	srv := New()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/machines/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "machine not found")
}

func TestServerCORSHeaders(t *testing.T) {
	srv := New(WithMachines(newTestMachine("mac")))
	req := httptest.NewRequest(http.MethodGet, "/machines", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerRegisterReplaces(t *testing.T) {
	first := newTestMachine("mac")
	second := newTestMachine("mac")
	srv := New(WithMachines(first))
	srv.Register(second)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/machines", nil))
	var body struct {
		Machines []string `json:"machines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"mac"}, body.Machines)
}
