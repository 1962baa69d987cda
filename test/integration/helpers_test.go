// Package integration provides end-to-end tests for the catalog API.
//
// Tests run against the full HTTP stack, backed by a SQLite store in a
// temporary directory and a recording mail sender, started in-process
// with net/http/httptest.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/bgmsons/catalog/pkg/auth"
	"github.com/bgmsons/catalog/pkg/auth/token"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/mail"
	"github.com/bgmsons/catalog/pkg/storage/sqlite"
	transporthttp "github.com/bgmsons/catalog/pkg/transport/http"
)

const testSecret = "integration-test-secret"

// testEnv holds the shared server for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the catalog server and its collaborators.
type TestEnvironment struct {
	Server *httptest.Server
	Codec  *token.Codec
	Mail   *recordingSender

	store  *sqlite.Store
	tmpDir string
}

// TestMain starts the catalog server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func setupTestEnvironment() *TestEnvironment {
	tmpDir, err := os.MkdirTemp("", "catalog-integration-*")
	if err != nil {
		panic(fmt.Sprintf("creating temp dir: %v", err))
	}

	store, err := sqlite.Open(context.Background(), filepath.Join(tmpDir, "catalog.db"))
	if err != nil {
		panic(fmt.Sprintf("opening sqlite store: %v", err))
	}

	codec, err := token.New(token.Config{Secret: testSecret})
	if err != nil {
		panic(fmt.Sprintf("creating codec: %v", err))
	}

	sender := &recordingSender{}
	relay := mail.NewRelay(sender, mail.Config{
		From:   "shop@bgmsons.example",
		To:     []string{"owner@bgmsons.example"},
		Domain: "bgmsons.example",
	})

	adapter := transporthttp.NewAdapter(transporthttp.Dependencies{
		Products:     store,
		Admins:       identity.NewService(store, identity.WithCost(bcrypt.MinCost)),
		Tokens:       codec,
		Mail:         relay,
		LoginLimiter: auth.NewInProcessLimiter(0),
	}, transporthttp.DefaultConfig())

	return &TestEnvironment{
		Server: httptest.NewServer(adapter.Handler()),
		Codec:  codec,
		Mail:   sender,
		store:  store,
		tmpDir: tmpDir,
	}
}

// Teardown stops the server and removes the database.
func (e *TestEnvironment) Teardown() {
	e.Server.Close()
	e.store.Close()
	os.RemoveAll(e.tmpDir)
}

// BaseURL returns the server URL.
func (e *TestEnvironment) BaseURL() string {
	return e.Server.URL
}

// recordingSender captures delivered messages instead of speaking SMTP.
type recordingSender struct {
	mu   sync.Mutex
	msgs []*mail.Message
}

func (s *recordingSender) Send(_ context.Context, msg *mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) last() *mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return nil
	}
	return s.msgs[len(s.msgs)-1]
}

// request sends a JSON request with an optional bearer token.
func request(t *testing.T, method, path, tok string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, testEnv.BaseURL()+path, rd)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// expectStatus fails the test when the response status differs.
func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d (body: %s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, readBody(t, resp))
	}
}
