package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuemby/loadstorm/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ListFiltersByKind(t *testing.T) {
	e := New()
	srv := httptest.NewServer(NewServer(e))
	defer srv.Close()

	cpuID, err := e.AdmitCPU(wire.TestRequest{Duration: uintPtr(0)})
	require.NoError(t, err)
	memID := e.AdmitMem(wire.TestRequest{Duration: uintPtr(0)})
	defer e.Stop(cpuID)
	defer e.Stop(memID)

	resp, err := http.Get(srv.URL + "/tasks?kind=cpu")
	require.NoError(t, err)
	defer resp.Body.Close()

	var ids []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ids))
	assert.Contains(t, ids, cpuID)
	assert.NotContains(t, ids, memID)
}

func TestServer_MalformedBodyIs400(t *testing.T) {
	e := New()
	srv := httptest.NewServer(NewServer(e))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/cpu-stress", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
