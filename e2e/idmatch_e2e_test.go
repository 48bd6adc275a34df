//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-idmatch/app/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The server is expected to run with:
//   idmatch serve --input e2e/testdata/commits.csv
// and IDMATCH_API_KEY set to a key matching its API_KEY_HASH, if any.

const (
	defaultHTTPBase = "http://localhost:8080"
	defaultGRPCAddr = "localhost:9090"
)

type identityResponse struct {
	ID     int      `json:"id"`
	Names  []string `json:"names"`
	Emails []string `json:"emails"`
}

type lookupResponse struct {
	Identities []identityResponse `json:"identities"`
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newHTTPClient() *httpClient {
	base := os.Getenv("IDMATCH_HTTP_URL")
	if base == "" {
		base = defaultHTTPBase
	}
	return &httpClient{
		baseURL: base,
		apiKey:  os.Getenv("IDMATCH_API_KEY"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *httpClient) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	return resp, body
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/v1/stats")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func waitForGRPC(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("grpc service not ready at %s", addr)
}

func TestIdentityE2E_HTTPFlow(t *testing.T) {
	client := newHTTPClient()
	if err := waitForHTTP(client.baseURL, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	resp, body := client.get(t, "/v1/identities?email="+url.QueryEscape("Alice@Walker.dev"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var found lookupResponse
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(found.Identities) != 1 {
		t.Fatalf("expected one identity, got %+v", found.Identities)
	}
	alice := found.Identities[0]
	if len(alice.Emails) != 1 || len(alice.Names) != 3 {
		t.Fatalf("expected alice's names to be merged through a shared address, got %+v", alice)
	}

	resp, body = client.get(t, fmt.Sprintf("/v1/identities/%d", alice.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = client.get(t, "/v1/identities?email="+url.QueryEscape("root@corp.io"))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected blacklisted name to be dropped, got %d", resp.StatusCode)
	}

	resp, _ = client.get(t, "/v1/identities")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, body = client.get(t, "/v1/report")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
}

func TestIdentityE2E_GRPCFlow(t *testing.T) {
	grpcAddr := os.Getenv("IDMATCH_GRPC_ADDR")
	if grpcAddr == "" {
		grpcAddr = defaultGRPCAddr
	}
	if err := waitForGRPC(grpcAddr, 30*time.Second); err != nil {
		t.Fatalf("grpc not ready: %v", err)
	}

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc dial failed: %v", err)
	}
	defer conn.Close()

	client := types.NewIdentityServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if apiKey := os.Getenv("IDMATCH_API_KEY"); apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-api-key", apiKey)
	}

	res, err := client.LookupByEmail(ctx, wrapperspb.String("bob@builders.dev"))
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	identities := res.GetFields()["identities"].GetListValue().GetValues()
	if len(identities) != 1 {
		t.Fatalf("expected one identity, got %d", len(identities))
	}
	names := identities[0].GetStructValue().GetFields()["names"].GetListValue().GetValues()
	if len(names) != 2 {
		t.Fatalf("expected bob and robert merged, got %v", names)
	}

	_, err = client.LookupByName(ctx, wrapperspb.String("nobody"))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err = client.GetReport(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("report failed: %v", err)
	}
}
