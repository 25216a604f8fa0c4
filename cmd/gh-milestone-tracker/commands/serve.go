package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/changelog"
	"github.com/goblinsan/gh-milestone-tracker/pkg/parser"
	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	serveCmd.Flags().String("local-repo", "", "Read changelog history from a local clone instead of GitHub (overrides local-repo setting)")
}

// JSON-RPC 2.0 types for MCP protocol
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP protocol types
type mcpInitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
}

type mcpCapabilities struct {
	Tools *struct{} `json:"tools,omitempty"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type mcpToolsListResult struct {
	Tools []mcpToolDef `json:"tools"`
}

type mcpToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type mcpToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type mcpToolCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	toolListMilestones = "list_milestones"
	toolGetChangelog   = "get_changelog"
	toolParse          = "parse_milestones"
)

var mcpTools = []mcpToolDef{
	{
		Name:        toolListMilestones,
		Description: "Lists project milestones sorted by due date, optionally filtered by project name, status and due-date range, or grouped by month.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string", "description": "Exact project name, or all"},
    "status": {"type": "string", "description": "pending, in-progress, completed, delayed, incomplete, overdue or all"},
    "timeRange": {"type": "string", "enum": ["all", "this-week", "this-month", "next-month", "past-due"]},
    "groupByMonth": {"type": "boolean"}
  }
}`),
	},
	{
		Name:        toolGetChangelog,
		Description: "Returns the changelog assembled from the most recent revisions of the projects data file, newest first.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "recent": {"type": "boolean", "description": "Prepend entries for recently completed and overdue milestones"}
  }
}`),
	},
	{
		Name:        toolParse,
		Description: "Parses a milestones.md markdown document into milestone records.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "content": {"type": "string", "description": "The markdown document"},
    "projectId": {"type": "string", "description": "Project id used to generate milestone ids"}
  },
  "required": ["content", "projectId"]
}`),
	},
}

// mcpBackend supplies the data behind the tools.
type mcpBackend interface {
	Document(ctx context.Context) *types.Document
	Changelog(ctx context.Context) []types.ChangelogEntry
}

type mcpServer struct {
	backend   mcpBackend
	now       func() time.Time
	weekStart time.Weekday
}

func (s *mcpServer) handleMCPRequest(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: mcpInitializeResult{
				ProtocolVersion: "2024-11-05",
				Capabilities:    mcpCapabilities{Tools: &struct{}{}},
				ServerInfo:      mcpServerInfo{Name: appName, Version: Version},
			},
		}

	case "notifications/initialized":
		// Client acknowledgment, no response needed (notification, no ID)
		return jsonRPCResponse{}

	case "tools/list":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  mcpToolsListResult{Tools: mcpTools},
		}

	case "tools/call":
		return s.handleToolCall(ctx, req)

	default:
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)},
		}
	}
}

func toolResponse(id json.RawMessage, v any) jsonRPCResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return toolError(id, fmt.Sprintf("failed to encode result: %v", err))
	}
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  mcpToolCallResult{Content: []mcpContent{{Type: "text", Text: string(body)}}},
	}
}

func toolError(id json.RawMessage, msg string) jsonRPCResponse {
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: mcpToolCallResult{
			Content: []mcpContent{{Type: "text", Text: msg}},
			IsError: true,
		},
	}
}

type listMilestonesArgs struct {
	Project      string `json:"project"`
	Status       string `json:"status"`
	TimeRange    string `json:"timeRange"`
	GroupByMonth bool   `json:"groupByMonth"`
}

type getChangelogArgs struct {
	Recent bool `json:"recent"`
}

type parseArgs struct {
	Content   string `json:"content"`
	ProjectID string `json:"projectId"`
}

// decodeArgs treats absent arguments as an empty object.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (s *mcpServer) handleToolCall(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	var params mcpToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32602, Message: fmt.Sprintf("invalid params: %v", err)},
		}
	}

	switch params.Name {
	case toolListMilestones:
		var args listMilestonesArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return toolError(req.ID, fmt.Sprintf("failed to parse arguments: %v", err))
		}
		status, err := query.ParseStatus(args.Status)
		if err != nil {
			return toolError(req.ID, err.Error())
		}
		timeRange, err := query.ParseTimeRange(args.TimeRange)
		if err != nil {
			return toolError(req.ID, err.Error())
		}

		at := s.now()
		entries := query.SortByDue(query.Apply(query.Flatten(s.backend.Document(ctx)), query.Filter{
			Project:   args.Project,
			Status:    status,
			TimeRange: timeRange,
			WeekStart: s.weekStart,
		}, at))
		if args.GroupByMonth {
			return toolResponse(req.ID, query.GroupByMonth(entries, at.Location()))
		}
		return toolResponse(req.ID, entries)

	case toolGetChangelog:
		var args getChangelogArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return toolError(req.ID, fmt.Sprintf("failed to parse arguments: %v", err))
		}
		entries := s.backend.Changelog(ctx)
		if args.Recent {
			entries = append(changelog.Recent(s.backend.Document(ctx), s.now()), entries...)
		}
		return toolResponse(req.ID, entries)

	case toolParse:
		var args parseArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return toolError(req.ID, fmt.Sprintf("failed to parse arguments: %v", err))
		}
		if args.ProjectID == "" {
			return toolError(req.ID, "projectId is required")
		}
		return toolResponse(req.ID, parser.ParseMilestones(args.Content, args.ProjectID))

	default:
		return toolError(req.ID, fmt.Sprintf("unknown tool: %s", params.Name))
	}
}

// appBackend serves the tools from the configured repository.
type appBackend struct {
	app       *app
	assembler *changelog.Assembler
}

func (b *appBackend) Document(ctx context.Context) *types.Document {
	return b.app.service.ResolvedProjects(ctx)
}

func (b *appBackend) Changelog(ctx context.Context) []types.ChangelogEntry {
	return b.assembler.Changelog(ctx)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long:  `Run the MCP server to allow AI agents (Claude, Gemini, etc.) to query milestones and the changelog via the Model Context Protocol over stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		localRepo, _ := cmd.Flags().GetString("local-repo")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		assembler, err := a.assembler(localRepo, "")
		if err != nil {
			return err
		}

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("Metrics server failed", zap.Error(err))
				}
			}()
			defer srv.Close()
			a.logger.Info("Serving metrics", zap.String("addr", metricsAddr))
		}

		server := &mcpServer{
			backend:   &appBackend{app: a, assembler: assembler},
			now:       now,
			weekStart: a.cfg.WeekStart,
		}

		ctx := cmd.Context()
		scanner := bufio.NewScanner(os.Stdin)
		// Increase buffer for large milestone documents (1 MB)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		encoder := json.NewEncoder(os.Stdout)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var req jsonRPCRequest
			if err := json.Unmarshal(line, &req); err != nil {
				resp := jsonRPCResponse{
					JSONRPC: "2.0",
					Error:   &jsonRPCError{Code: -32700, Message: fmt.Sprintf("parse error: %v", err)},
				}
				encoder.Encode(resp)
				continue
			}

			resp := server.handleMCPRequest(ctx, req)
			// Notifications (no ID) don't get a response
			if resp.JSONRPC == "" {
				continue
			}
			encoder.Encode(resp)
		}

		return scanner.Err()
	},
}
