package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/changelog"
	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

func TestWriteOutput_Formats(t *testing.T) {
	v := []types.Milestone{{ID: "p-m1", Title: "Launch", Status: types.MilestonePending}}

	var buf bytes.Buffer
	if err := writeOutput(&buf, "json", v); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"id": "p-m1"`) {
		t.Errorf("expected indented json, got %s", buf.String())
	}

	buf.Reset()
	if err := writeOutput(&buf, "yaml", v); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "title: Launch") {
		t.Errorf("expected yaml, got %s", buf.String())
	}

	if err := writeOutput(&buf, "xml", v); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteOutput_EntryYAMLMatchesJSONKeys(t *testing.T) {
	entries := []query.Entry{{
		Milestone:   types.Milestone{ID: "p-m1", Title: "Launch", Status: types.MilestonePending, DueDate: "2024-08-01"},
		ProjectID:   "p",
		ProjectName: "Project P",
	}}

	var buf bytes.Buffer
	if err := writeOutput(&buf, "yaml", entries); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"- id: p-m1", "title: Launch", "projectId: p", "projectName: Project P"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected yaml to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "milestone:") || strings.Contains(out, "projectid:") {
		t.Errorf("expected flat camelCase keys, got:\n%s", out)
	}

	buf.Reset()
	stats := query.Stats{TotalProjects: 2, CompletionRate: 50}
	if err := writeOutput(&buf, "yaml", stats); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "totalProjects: 2") || !strings.Contains(buf.String(), "completionRate: 50") {
		t.Errorf("unexpected stats yaml:\n%s", buf.String())
	}

	buf.Reset()
	groups := []query.MonthGroup{{Key: "2024-8", Year: 2024, Month: time.August, Entries: entries}}
	if err := writeOutput(&buf, "yaml", groups); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "key: 2024-8") || !strings.Contains(buf.String(), "projectId: p") {
		t.Errorf("unexpected month group yaml:\n%s", buf.String())
	}
}

func TestWriteMilestoneTable(t *testing.T) {
	at := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	entries := []query.Entry{
		{Milestone: types.Milestone{Title: "Audit", Status: types.MilestonePending, DueDate: "2024-07-01", Progress: 40}, ProjectName: "Alpha"},
		{Milestone: types.Milestone{Title: "Docs", Status: types.MilestoneInProgress}, ProjectName: "Beta"},
	}

	var buf bytes.Buffer
	if err := writeMilestoneTable(&buf, entries, at); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "pending (overdue)") || !strings.Contains(lines[1], "40%") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "-") {
		t.Errorf("expected undated row to start with -, got %q", lines[2])
	}
}

func TestWriteIssueTable(t *testing.T) {
	issues := []types.Issue{
		{Number: 12, State: "open", Title: "Milestone: Mainnet", Labels: []string{"milestone", "omnibridge"},
			Milestone: &types.IssueMilestone{Title: "Q3", DueOn: "2024-09-30"}},
		{Number: 13, State: "closed", Title: "Milestone: Audit"},
	}

	var buf bytes.Buffer
	if err := writeIssueTable(&buf, issues); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "#12") || !strings.Contains(lines[1], "Q3 (2024-09-30)") || !strings.Contains(lines[1], "milestone,omnibridge") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "closed") || !strings.HasSuffix(lines[2], "-") {
		t.Errorf("unexpected second row %q", lines[2])
	}
}

func TestWriteChangelogText(t *testing.T) {
	var buf bytes.Buffer
	writeChangelogText(&buf, changelog.Fallback(time.Date(2024, 7, 2, 10, 0, 0, 0, time.UTC)))

	out := buf.String()
	for _, want := range []string{"2024.07.02", "abc123f", "by NEAR Team", "[milestone_completed] Omnibridge Testnet Launch Completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
