package listeners

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dohEchoAnswer(req *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetReply(req)
	rr, _ := dns.NewRR(req.Question[0].Name + " 60 IN A 93.184.216.34")
	m.Answer = []dns.RR{rr}
	return m
}

func dohQuery(t *testing.T, name string) []byte {
	t.Helper()
	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeA)
	raw, err := m.Pack()
	require.NoError(t, err)
	return raw
}

func TestDoHHandlerServesGETRequest(t *testing.T) {
	raw := dohQuery(t, "example.com.")
	url := "/dns-query?dns=" + base64.RawURLEncoding.EncodeToString(raw)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()

	dohHandlerFunc(dohEchoAnswer)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dohMimeType, rec.Header().Get("Content-Type"))

	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(rec.Body.Bytes()))
	require.Len(t, resp.Answer, 1)
}

func TestDoHHandlerServesPOSTRequest(t *testing.T) {
	raw := dohQuery(t, "example.org.")
	req := httptest.NewRequest(http.MethodPost, "/dns-query", bytes.NewReader(raw))
	req.Header.Set("Content-Type", dohMimeType)
	rec := httptest.NewRecorder()

	dohHandlerFunc(dohEchoAnswer)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(rec.Body.Bytes()))
	require.Len(t, resp.Answer, 1)
}

func TestDoHHandlerMissingGETParamIsBadRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dns-query", nil)
	rec := httptest.NewRecorder()

	dohHandlerFunc(dohEchoAnswer)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoHHandlerUnsupportedMethodIsBadRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/dns-query", nil)
	rec := httptest.NewRecorder()

	dohHandlerFunc(dohEchoAnswer)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunDoHMalformedAddrIsFatal(t *testing.T) {
	cert := selfSignedCert(t)
	getCert := func(*tls.ClientHelloInfo) (*tls.Certificate, error) { return &cert, nil }
	err := RunDoH(context.Background(), "not-an-address", "/dns-query", dohEchoAnswer, getCert)
	assert.ErrorIs(t, err, ErrParseListenAddress)
}

func TestRunDoHServesAndShutsDownOnCancel(t *testing.T) {
	cert := selfSignedCert(t)
	getCert := func(*tls.ClientHelloInfo) (*tls.Certificate, error) { return &cert, nil }

	addr := freeTCPAddr(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- RunDoH(ctx, addr, "/dns-query", dohEchoAnswer, getCert) }()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		Timeout:   time.Second,
	}

	raw := dohQuery(t, "example.com.")
	url := "https://" + addr + "/dns-query?dns=" + base64.RawURLEncoding.EncodeToString(raw)

	deadline := time.Now().Add(3 * time.Second)
	var ok bool
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			ok = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, ok, "doh server never became ready")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunDoH did not return after cancellation")
	}
}
