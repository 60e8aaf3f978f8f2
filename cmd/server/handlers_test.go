package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebartekbanach/tinyrelay/pkg/config"
	"github.com/thebartekbanach/tinyrelay/pkg/keys"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
	testupstream "github.com/thebartekbanach/tinyrelay/test/upstream"
	testutils "github.com/thebartekbanach/tinyrelay/test/utils"
)

var jpegPayload = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte("jpeg"), 64)...)

type relayFixture struct {
	url      string
	upstream *testupstream.FakeTinify
}

func startRelay(t *testing.T, configure func(cfg *config.Config)) relayFixture {
	t.Helper()

	upstream := testupstream.NewFakeTinify("secret-one")
	upstreamURL := testutils.NewTestHttpServerFor(upstream).Start(t)

	cfg := &config.Config{
		ListenAddr:          ":0",
		UpstreamURL:         upstreamURL,
		MaxBodyBytes:        1 << 20,
		AllowedProxyDomains: []string{"*"},
		Keys: map[string]string{
			"API_KEY_1": "secret-one",
			"API_KEY_2": "  ",
			"API_KEY_3": "revoked-secret",
		},
	}
	if configure != nil {
		configure(cfg)
	}

	logger := zerolog.Nop()
	router := newRouter(cfg, logger, InitializeRelay(cfg, logger))

	return relayFixture{
		url:      testutils.NewTestHttpServerFor(router).Start(t),
		upstream: upstream,
	}
}

func send(t *testing.T, method, url string, header map[string]string, body []byte) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)

	for key, value := range header {
		req.Header.Set(key, value)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, data
}

func decodeJSON(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body
}

func assertCORS(t *testing.T, res *http.Response, methods string) {
	t.Helper()

	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, methods, res.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, allowedHeaders, res.Header.Get("Access-Control-Allow-Headers"))
}

func TestBinaryUploadReturnsLocationEnvelope(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, data := send(t, http.MethodPost, relayServer.url, map[string]string{
		"X-API-Key":    "API_KEY_1",
		"Content-Type": "image/jpeg",
	}, jpegPayload)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.NotEmpty(t, res.Header.Get(requestIDHeader))
	assertCORS(t, res, relayAllowedMethods)

	body := decodeJSON(t, data)
	assert.Contains(t, body["location"], "/output/out1")
	assert.Equal(t, float64(len(jpegPayload)), body["input"].(map[string]interface{})["size"])
	assert.Equal(t, 1, relayServer.upstream.ShrinkCalls())
}

func TestJSONResizeReturnsTransformedImage(t *testing.T) {
	relayServer := startRelay(t, nil)

	envelope := `{"operation":"resize","resize":{"method":"fit","width":100},` +
		`"fileData":"` + base64.StdEncoding.EncodeToString(jpegPayload) + `","fileName":"a.png","fileType":"image/png"}`

	res, data := send(t, http.MethodPost, relayServer.url+"/anything", map[string]string{
		"X-API-Key":    "API_KEY_1",
		"Content-Type": "application/json",
	}, []byte(envelope))

	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, "100", res.Header.Get("Image-Width"))
	assert.Equal(t, "", res.Header.Get("Image-Height"))
	assert.Equal(t, exposedHeaders, res.Header.Get("Access-Control-Expose-Headers"))
	assert.Equal(t, jpegPayload[:len(jpegPayload)/2], data)

	transforms := relayServer.upstream.Transforms()
	require.Len(t, transforms, 1)
	assert.JSONEq(t, `{"method":"fit","width":100}`, string(transforms[0]["resize"]))
}

func TestUnsupportedConversionIsSurfaced(t *testing.T) {
	relayServer := startRelay(t, nil)

	envelope := `{"operation":"convert","convert":{"type":"text/plain"},` +
		`"fileData":"` + base64.StdEncoding.EncodeToString(jpegPayload) + `","fileName":"a.jpg","fileType":"image/jpeg"}`

	res, data := send(t, http.MethodPost, relayServer.url, map[string]string{
		"X-API-Key":    "API_KEY_1",
		"Content-Type": "application/json",
	}, []byte(envelope))

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Unsupported conversion.", decodeJSON(t, data)["message"])
}

func TestUpstreamRejectionIsRelayedVerbatim(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, data := send(t, http.MethodPost, relayServer.url, map[string]string{
		"X-API-Key":    "API_KEY_3",
		"Content-Type": "image/jpeg",
	}, jpegPayload)

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized","message":"Credentials are invalid."}`, string(data))
	assertCORS(t, res, relayAllowedMethods)
}

func TestKeyErrorsNeverReachUpstream(t *testing.T) {
	relayServer := startRelay(t, nil)

	cases := []struct {
		selector string
		status   int
		message  string
	}{
		{"", http.StatusBadRequest, relay.MessageKeyMissing},
		{"API_KEY_9", http.StatusBadRequest, relay.MessageInvalidSelector},
		{"API_KEY_2", http.StatusInternalServerError, relay.MessageKeyNotConfigured},
	}

	for _, c := range cases {
		res, data := send(t, http.MethodPost, relayServer.url, map[string]string{
			"X-API-Key":    c.selector,
			"Content-Type": "image/jpeg",
		}, jpegPayload)

		assert.Equal(t, c.status, res.StatusCode, c.selector)
		assert.Equal(t, c.message, decodeJSON(t, data)["message"], c.selector)
	}

	assert.Equal(t, 0, relayServer.upstream.ShrinkCalls())
}

func TestOversizedBodyIsRejected(t *testing.T) {
	relayServer := startRelay(t, func(cfg *config.Config) {
		cfg.MaxBodyBytes = 16
	})

	res, data := send(t, http.MethodPost, relayServer.url, map[string]string{
		"X-API-Key":    "API_KEY_1",
		"Content-Type": "image/jpeg",
	}, jpegPayload)

	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
	assert.Equal(t, relay.MessageBodyTooLarge, decodeJSON(t, data)["message"])
	assert.Equal(t, 0, relayServer.upstream.ShrinkCalls())
}

func TestPreflightReturnsNoContent(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, data := send(t, http.MethodOptions, relayServer.url+"/any/path", nil, nil)

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Empty(t, data)
	assertCORS(t, res, relayAllowedMethods)
}

func TestNonPostIsRejected(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, data := send(t, http.MethodGet, relayServer.url, nil, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "Method Not Allowed", decodeJSON(t, data)["message"])
	assertCORS(t, res, relayAllowedMethods)
}

func TestPassthroughFetchesArtifact(t *testing.T) {
	relayServer := startRelay(t, nil)

	_, data := send(t, http.MethodPost, relayServer.url, map[string]string{
		"X-API-Key":    "API_KEY_1",
		"Content-Type": "image/jpeg",
	}, jpegPayload)
	location := decodeJSON(t, data)["location"].(string)

	first, firstBody := send(t, http.MethodGet, relayServer.url+"/?url="+location, nil, nil)
	second, secondBody := send(t, http.MethodPost, relayServer.url+"/?url="+location, nil, nil)

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "image/jpeg", first.Header.Get("Content-Type"))
	assert.Equal(t, firstBody, secondBody)
	assert.Equal(t, jpegPayload[:len(jpegPayload)/2], firstBody)
	assertCORS(t, first, proxyAllowedMethods)
	assert.NotEmpty(t, first.Header.Get(requestIDHeader))
}

func TestPassthroughRespectsAllowList(t *testing.T) {
	relayServer := startRelay(t, func(cfg *config.Config) {
		cfg.AllowedProxyDomains = []string{"*.tinify.com"}
	})

	res, data := send(t, http.MethodGet, relayServer.url+"/?url=http://127.0.0.1/output/x", nil, nil)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, relay.MessageProxyNotAllowed, decodeJSON(t, data)["message"])
	assertCORS(t, res, proxyAllowedMethods)
}

func TestPassthroughRefusesRedirectOutsideAllowList(t *testing.T) {
	internal := testutils.NewTestHttpServer()
	internal.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("internal only"))
	})
	internalURL := strings.Replace(internal.Start(t), "127.0.0.1", "localhost", 1)

	redirector := testutils.NewTestHttpServer()
	redirector.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internalURL+"/", http.StatusFound)
	})
	redirectorURL := redirector.Start(t)

	relayServer := startRelay(t, func(cfg *config.Config) {
		cfg.AllowedProxyDomains = []string{"127.0.0.1"}
	})

	direct, directBody := send(t, http.MethodGet, relayServer.url+"/?url="+internalURL+"/", nil, nil)
	assert.Equal(t, http.StatusForbidden, direct.StatusCode)
	assert.Equal(t, relay.MessageProxyNotAllowed, decodeJSON(t, directBody)["message"])

	redirected, redirectedBody := send(t, http.MethodGet, relayServer.url+"/?url="+redirectorURL+"/", nil, nil)
	assert.Equal(t, http.StatusForbidden, redirected.StatusCode)
	assert.NotContains(t, string(redirectedBody), "internal only")
	assert.Equal(t, relay.MessageProxyNotAllowed, decodeJSON(t, redirectedBody)["message"])
	assertCORS(t, redirected, proxyAllowedMethods)
}

func TestPassthroughErrorsUseProxyMethods(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, _ := send(t, http.MethodGet, relayServer.url+"/?url=ftp://example.com/a", nil, nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assertCORS(t, res, proxyAllowedMethods)
}

type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.buf.String()
}

func TestAccessLogCarriesClientAddress(t *testing.T) {
	logs := &lockedBuffer{}
	logger := zerolog.New(logs)
	cfg := &config.Config{
		MaxBodyBytes:        1 << 20,
		AllowedProxyDomains: []string{"*"},
		Keys:                map[string]string{"API_KEY_1": "secret-one"},
	}
	url := testutils.NewTestHttpServerFor(newRouter(cfg, logger, InitializeRelay(cfg, logger))).Start(t)

	res, _ := send(t, http.MethodGet, url, map[string]string{"X-Real-IP": "203.0.113.7"}, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Contains(t, logs.String(), `"remote_addr":"203.0.113.7"`)
	assert.Contains(t, logs.String(), `"message":"request handled"`)
}

func TestDebugListsSlotsWithoutSecrets(t *testing.T) {
	relayServer := startRelay(t, nil)

	res, data := send(t, http.MethodGet, relayServer.url+"/debug", nil, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, string(data), "secret-one")
	assert.NotContains(t, string(data), "revoked")
	assertCORS(t, res, debugAllowedMethods)

	var body struct {
		Slots []keys.SlotStatus `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Slots, len(keys.Slots))
	assert.Equal(t, keys.SlotStatus{Selector: "API_KEY_1", Configured: true}, body.Slots[0])
	assert.Equal(t, keys.SlotStatus{Selector: "API_KEY_2", Configured: false}, body.Slots[1])
}

type panickingRelayService struct{}

func (panickingRelayService) Handle(context.Context, relay.InboundRequest, relay.RelayResponseWriter) {
	panic("boom")
}

func (panickingRelayService) Passthrough(context.Context, string, relay.RelayResponseWriter) {
	panic("boom")
}

func (panickingRelayService) KeyStatus() []keys.SlotStatus {
	return nil
}

func TestPanicsBecomeJSONErrors(t *testing.T) {
	for _, debugErrors := range []bool{false, true} {
		cfg := &config.Config{MaxBodyBytes: 1 << 20, DebugErrors: debugErrors}
		url := testutils.NewTestHttpServerFor(newRouter(cfg, zerolog.Nop(), panickingRelayService{})).Start(t)

		res, data := send(t, http.MethodPost, url, map[string]string{"X-API-Key": "API_KEY_1"}, jpegPayload)

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assertCORS(t, res, relayAllowedMethods)

		body := decodeJSON(t, data)
		assert.Equal(t, "boom", body["message"])
		assert.NotEmpty(t, body["timestamp"])

		stack, hasStack := body["stack"]
		assert.Equal(t, debugErrors, hasStack)
		if debugErrors {
			assert.True(t, strings.Contains(stack.(string), "panickingRelayService"))
		}
	}
}
