package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// fakeBackend implements mcpBackend for testing
type fakeBackend struct {
	doc       *types.Document
	changelog []types.ChangelogEntry
}

func (f *fakeBackend) Document(ctx context.Context) *types.Document {
	return f.doc
}

func (f *fakeBackend) Changelog(ctx context.Context) []types.ChangelogEntry {
	return f.changelog
}

func newTestServer() *mcpServer {
	doc := &types.Document{Projects: []types.Project{
		{ID: "alpha", Name: "Alpha", Milestones: []types.Milestone{
			{ID: "alpha-m1", Title: "Old", Status: types.MilestonePending, DueDate: "2020-01-01"},
			{ID: "alpha-m2", Title: "Future", Status: types.MilestonePending, DueDate: "2099-01-01"},
		}},
		{ID: "beta", Name: "Beta", Milestones: []types.Milestone{
			{ID: "beta-m1", Title: "Done", Status: types.MilestoneCompleted, DueDate: "2024-07-01"},
		}},
	}}
	return &mcpServer{
		backend: &fakeBackend{
			doc:       doc,
			changelog: []types.ChangelogEntry{{ID: "rev1", Version: "1.0.0"}},
		},
		now: func() time.Time { return time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func callTool(t *testing.T, s *mcpServer, params string) mcpToolCallResult {
	t.Helper()
	resp := s.handleMCPRequest(context.Background(), jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`7`),
		Method:  "tools/call",
		Params:  json.RawMessage(params),
	})
	result, ok := resp.Result.(mcpToolCallResult)
	if !ok {
		t.Fatalf("expected mcpToolCallResult, got %T", resp.Result)
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	return result
}

func TestHandleMCPRequest_Initialize(t *testing.T) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	}
	resp := newTestServer().handleMCPRequest(context.Background(), req)

	if resp.JSONRPC != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %s", resp.JSONRPC)
	}
	if resp.Error != nil {
		t.Errorf("expected no error, got %v", resp.Error)
	}

	result, ok := resp.Result.(mcpInitializeResult)
	if !ok {
		t.Fatalf("expected mcpInitializeResult, got %T", resp.Result)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("expected protocol version 2024-11-05, got %s", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "gh-milestone-tracker" {
		t.Errorf("expected server name gh-milestone-tracker, got %s", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be non-nil")
	}
}

func TestHandleMCPRequest_Initialized(t *testing.T) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	}
	resp := newTestServer().handleMCPRequest(context.Background(), req)

	// Notifications should return empty response (no JSONRPC set)
	if resp.JSONRPC != "" {
		t.Errorf("expected empty jsonrpc for notification, got %s", resp.JSONRPC)
	}
}

func TestHandleMCPRequest_ToolsList(t *testing.T) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	}
	resp := newTestServer().handleMCPRequest(context.Background(), req)

	result, ok := resp.Result.(mcpToolsListResult)
	if !ok {
		t.Fatalf("expected mcpToolsListResult, got %T", resp.Result)
	}
	if len(result.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(result.Tools))
	}
	for _, tool := range result.Tools {
		if !json.Valid(tool.InputSchema) {
			t.Errorf("tool %s has an invalid input schema", tool.Name)
		}
	}
}

func TestHandleMCPRequest_UnknownMethod(t *testing.T) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "unknown/method",
	}
	resp := newTestServer().handleMCPRequest(context.Background(), req)

	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("expected error code -32601, got %d", resp.Error.Code)
	}
}

func TestHandleToolCall_UnknownTool(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"nonexistent","arguments":{}}`)
	if !result.IsError {
		t.Error("expected IsError to be true for unknown tool")
	}
}

func TestHandleToolCall_InvalidParams(t *testing.T) {
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`5`),
		Method:  "tools/call",
		Params:  json.RawMessage(`not-json`),
	}
	resp := newTestServer().handleMCPRequest(context.Background(), req)

	if resp.Error == nil {
		t.Fatal("expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("expected error code -32602, got %d", resp.Error.Code)
	}
}

func TestHandleToolCall_ListMilestonesOverdue(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"list_milestones","arguments":{"status":"overdue"}}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content[0].Text)
	}

	var entries []query.Entry
	if err := json.Unmarshal([]byte(result.Content[0].Text), &entries); err != nil {
		t.Fatalf("failed to decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "alpha-m1" {
		t.Errorf("expected only alpha-m1, got %+v", entries)
	}
	if entries[0].ProjectName != "Alpha" {
		t.Errorf("expected project name Alpha, got %s", entries[0].ProjectName)
	}
}

func TestHandleToolCall_ListMilestonesByMonth(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"list_milestones","arguments":{"groupByMonth":true}}`)

	var groups []query.MonthGroup
	if err := json.Unmarshal([]byte(result.Content[0].Text), &groups); err != nil {
		t.Fatalf("failed to decode groups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Key != "2020-1" || groups[2].Key != "2099-1" {
		t.Errorf("expected chronological groups, got %s .. %s", groups[0].Key, groups[2].Key)
	}
}

func TestHandleToolCall_ListMilestonesBadRange(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"list_milestones","arguments":{"timeRange":"next-year"}}`)
	if !result.IsError {
		t.Error("expected IsError to be true for an unknown time range")
	}
}

func TestHandleToolCall_GetChangelog(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"get_changelog"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, `"rev1"`) {
		t.Errorf("expected changelog entry rev1, got %s", result.Content[0].Text)
	}

	result = callTool(t, newTestServer(), `{"name":"get_changelog","arguments":{"recent":true}}`)
	var entries []types.ChangelogEntry
	if err := json.Unmarshal([]byte(result.Content[0].Text), &entries); err != nil {
		t.Fatalf("failed to decode entries: %v", err)
	}
	// One overdue bundle plus the assembled entry.
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestHandleToolCall_ParseMilestones(t *testing.T) {
	params := `{"name":"parse_milestones","arguments":{"projectId":"proj","content":"## Milestone One\nStatus: completed\nDue: 2024-05-01\n"}}`
	result := callTool(t, newTestServer(), params)
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content[0].Text)
	}

	var milestones []types.Milestone
	if err := json.Unmarshal([]byte(result.Content[0].Text), &milestones); err != nil {
		t.Fatalf("failed to decode milestones: %v", err)
	}
	if len(milestones) != 1 {
		t.Fatalf("expected 1 milestone, got %d", len(milestones))
	}
	if milestones[0].ID != "proj-m1" || milestones[0].Progress != 100 {
		t.Errorf("unexpected milestone %+v", milestones[0])
	}
}

func TestHandleToolCall_ParseMissingProject(t *testing.T) {
	result := callTool(t, newTestServer(), `{"name":"parse_milestones","arguments":{"content":"## A"}}`)
	if !result.IsError {
		t.Error("expected IsError to be true without projectId")
	}
}

func TestHandleMCPRequest_IDPreserved(t *testing.T) {
	s := newTestServer()

	// String ID
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`"abc-123"`),
		Method:  "tools/list",
	}
	resp := s.handleMCPRequest(context.Background(), req)
	if string(resp.ID) != `"abc-123"` {
		t.Errorf("expected ID \"abc-123\", got %s", string(resp.ID))
	}

	// Numeric ID
	req2 := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`42`),
		Method:  "initialize",
	}
	resp2 := s.handleMCPRequest(context.Background(), req2)
	if string(resp2.ID) != `42` {
		t.Errorf("expected ID 42, got %s", string(resp2.ID))
	}
}
