// Package testserver builds a fully wired in-memory bugtrail for tests and
// connects an MCP client to it.
package testserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/bugtrail/internal/app"
	"github.com/rpggio/bugtrail/internal/config"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Now is the clock every TestServer uses to default reportedAt.
var Now = time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC)

type TestServer struct {
	App     *app.App
	Session *sdkmcp.ClientSession
}

// New opens an in-memory app and connects an MCP client session to it.
// exportDir may be empty.
func New(t *testing.T, exportDir string) *TestServer {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Export.Dir = exportDir

	a, err := app.Open(ctx, cfg, nil, app.WithDefectOptions(defect.WithClock(func() time.Time { return Now })))
	require.NoError(t, err)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := a.MCPServer("test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
		_ = a.Close()
	})

	return &TestServer{App: a, Session: session}
}

// CallTool invokes a tool and returns its result, failing the test on a
// protocol error. Tool errors come back as IsError results.
func (ts *TestServer) CallTool(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

// CallToolJSON invokes a tool that must succeed and decodes its text content
// into out.
func (ts *TestServer) CallToolJSON(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := ts.CallTool(t, name, args)
	text := Text(result)
	require.False(t, result.IsError, "tool %s returned error: %s", name, text)
	require.NoError(t, json.Unmarshal([]byte(text), out), "decoding %s result", name)
}

// Text returns the first text content of result.
func Text(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
