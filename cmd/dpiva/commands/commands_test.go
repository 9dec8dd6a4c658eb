package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-dpiva/internal/config"
	"github.com/sirosfoundation/go-dpiva/pkg/security"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

const sampleDPIVA = `<?xml version="1.0" encoding="UTF-8"?>
<dpiva><rosto><inicio><nif>599999993</nif><anoDeclaracao>2023</anoDeclaracao><periodoDeclaracao>03T</periodoDeclaracao></inicio></rosto></dpiva>`

const acceptedResponse = `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>` +
	`<ns2:submeterDeclaracaoPeriodicaIVAResponse xmlns:ns2="urn:dpiva"><codigo>0</codigo>` +
	`<dadosSubmissao><data>2024-01-01</data><ano>2023</ano><periodo>03T</periodo><idDeclaracao>123</idDeclaracao>` +
	`<contribuinte><nif>599999993</nif></contribuinte></dadosSubmissao>` +
	`</ns2:submeterDeclaracaoPeriodicaIVAResponse></S:Body></S:Envelope>`

func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// setup writes a config pointing the test target at server
func setup(t *testing.T, server *httptest.Server) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubFile := write(t, dir, "at.pem", pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	credsFile := write(t, dir, "credentials.yaml", []byte(`
clients:
  "599999993/1": {password: testes1234}
`))
	caFile := write(t, dir, "ca.pem", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw}))

	cfgPath = write(t, dir, "dpiva.yaml", []byte(fmt.Sprintf(`
webservice:
  publicKeyFile: %s
  credentialsFile: %s
  concurrency: 2
  timeout: 5s
  targets:
    test:
      endpoint: %s/dpivaws
      caFile: %s
log:
  level: debug
`, pubFile, credsFile, server.URL, caFile)))
	return dir, cfgPath
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestSubmit_EndToEnd(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<wss:Username>599999993/1</wss:Username>") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("unexpected request"))
			return
		}
		w.Header().Set("Content-Type", transport.ContentTypeSOAP)
		_, _ = w.Write([]byte(acceptedResponse))
	}))
	defer server.Close()

	dir, cfgPath := setup(t, server)
	declFile := write(t, dir, "2023-03T.xml", []byte(sampleDPIVA))

	stdout, stderr, err := run(t, "submit", "--config", cfgPath, "--target", "test", declFile)
	require.NoError(t, err, stderr)

	assert.EqualValues(t, 1, requests.Load())
	assert.Contains(t, stdout, "OK\t"+declFile+"\t599999993/1\tData: 2024-01-01, Ano: 2023")
	assert.Contains(t, stderr, "request envelope", "debug logging shows the envelope")
}

func TestSubmit_FailuresExitNonZero(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Service Unavailable"))
	}))
	defer server.Close()

	dir, cfgPath := setup(t, server)
	declFile := write(t, dir, "2023-03T.xml", []byte(sampleDPIVA))
	wrongExt := write(t, dir, "notes.txt", []byte("hello"))

	stdout, _, err := run(t, "submit", "--config", cfgPath, declFile, wrongExt)
	require.ErrorIs(t, err, ErrSubmissionsFailed)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "FAIL\t"+declFile))
	assert.Contains(t, lines[0], "Erro - protocol error")
	assert.True(t, strings.HasPrefix(lines[1], "FAIL\t"+wrongExt))
}

func TestSubmit_UnconfiguredTarget(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	defer server.Close()
	_, cfgPath := setup(t, server)

	_, _, err := run(t, "submit", "--config", cfgPath, "--target", "production", "x.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	_, _, err = run(t, "submit", "--config", cfgPath, "--target", "staging", "x.xml")
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	declFile := write(t, dir, "2023-03T.xml", []byte(sampleDPIVA))

	stdout, _, err := run(t, "inspect", declFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "NIF 599999993\tyear 2023\tperiod 03T")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{"a.xml": sampleDPIVA, "b.txt": "x"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	bundle := write(t, dir, "bundle.zip", buf.Bytes())

	stdout, _, err = run(t, "inspect", bundle)
	require.NoError(t, err)
	assert.Contains(t, stdout, "bundle.zip:a.xml\tNIF 599999993")
	assert.Contains(t, stdout, "bundle.zip:b.txt\terror:")

	_, _, err = run(t, "inspect", filepath.Join(dir, "missing.xml"))
	assert.Error(t, err)
}

func TestResults_RequiresMongoDB(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	defer server.Close()
	_, cfgPath := setup(t, server)

	_, _, err := run(t, "results", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.mongodb.uri")
}

func TestBuildItems(t *testing.T) {
	creds := &security.CredentialMap{Clients: map[string]security.Credential{
		"599999993/2": {Password: "a"},
		"599999993/1": {Password: "b"},
	}}
	dir := t.TempDir()
	decls := collectDeclarations([]string{
		write(t, dir, "a.xml", []byte(sampleDPIVA)),
		filepath.Join(dir, "missing.xml"),
	})
	require.Len(t, decls, 2)
	assert.Error(t, decls[1].Err)

	items := buildItems(decls, creds, "")
	assert.Equal(t, "599999993/1", items[0].ClientID)
	assert.Equal(t, "", items[1].ClientID)

	items = buildItems(decls, creds, "599999993/2")
	assert.Equal(t, "599999993/2", items[0].ClientID)

	unknown := &security.CredentialMap{Clients: map[string]security.Credential{"1": {Password: "x"}}}
	items = buildItems(decls[:1], unknown, "")
	assert.Equal(t, "599999993", items[0].ClientID)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = newLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
