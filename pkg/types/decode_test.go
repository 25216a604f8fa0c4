package types

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "projects": [
    {
      "id": "omnibridge",
      "name": "Omnibridge",
      "category": "Infrastructure",
      "status": "on-track",
      "progress": 140,
      "milestones": [
        {"title": "Testnet", "dueDate": "2024-05-01", "status": "completed", "progress": 100},
        {"id": "custom", "title": "Mainnet", "progress": -5}
      ]
    },
    {"id": "bare", "name": "Bare"}
  ],
  "lastUpdate": "2024-07-02T10:00:00Z",
  "version": "1.0.0"
}`

func TestDecodeDocument_NormalizesDefaults(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2)

	p := doc.Projects[0]
	assert.Equal(t, 100, p.Progress)
	assert.NotNil(t, p.Team)
	assert.NotNil(t, p.Dependencies)

	require.Len(t, p.Milestones, 2)
	assert.Equal(t, "omnibridge-m1", p.Milestones[0].ID)
	assert.Equal(t, "custom", p.Milestones[1].ID)
	assert.Equal(t, MilestonePending, p.Milestones[1].Status)
	assert.Equal(t, 0, p.Milestones[1].Progress)
	assert.NotNil(t, p.Milestones[1].Links)

	assert.Equal(t, ProjectOnTrack, doc.Projects[1].Status)
}

func TestDecodeDocument_SchemaViolation(t *testing.T) {
	raw := `{"projects": [{"id": "p1", "name": "P", "status": "sideways"}]}`
	_, err := DecodeDocument([]byte(raw))
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Path, "/projects/0")
}

func TestDecodeDocument_BadDueDate(t *testing.T) {
	raw := `{"projects": [{"id": "p1", "name": "P", "milestones": [{"title": "M", "dueDate": "next week"}]}]}`
	_, err := DecodeDocument([]byte(raw))
	require.Error(t, err)
}

func TestDecodeDocument_MalformedJSON(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"projects": [`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "malformed JSON")
}

func TestDecodeDocumentYAML(t *testing.T) {
	raw := `
projects:
  - id: p1
    name: Project One
    status: at-risk
    progress: 40
    milestones:
      - title: Alpha
        dueDate: 2024-05-01
lastUpdate: 2024-07-02T10:00:00Z
version: "1.0.0"
`
	doc, err := DecodeDocumentYAML([]byte(raw))
	require.NoError(t, err)
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, ProjectAtRisk, doc.Projects[0].Status)
	assert.Equal(t, "2024-05-01", doc.Projects[0].Milestones[0].DueDate)
	assert.Equal(t, "p1-m1", doc.Projects[0].Milestones[0].ID)
	assert.Equal(t, "2024-07-02T10:00:00Z", doc.LastUpdate)
}

func TestDecodeDocumentYAML_DatesKeepWrittenForm(t *testing.T) {
	raw := `
projects:
  - id: p1
    name: P
    lastUpdated: 2024-06-30
    milestones:
      - title: Quoted
        dueDate: "2024-05-01"
      - title: Bare
        dueDate: 2024-12-31
      - title: Spaced
        dueDate: 2025-01-02 10:00:00
`
	_, err := DecodeDocumentYAML([]byte(raw))
	require.Error(t, err, "a timestamp is not a calendar date")

	doc, err := DecodeDocumentYAML([]byte(strings.Replace(raw, "2025-01-02 10:00:00", "2025-01-02", 1)))
	require.NoError(t, err)
	ms := doc.Projects[0].Milestones
	require.Len(t, ms, 3)
	assert.Equal(t, "2024-05-01", ms[0].DueDate)
	assert.Equal(t, "2024-12-31", ms[1].DueDate)
	assert.Equal(t, "2025-01-02", ms[2].DueDate)
	assert.Equal(t, "2024-06-30", doc.Projects[0].LastUpdated)
}

func TestMilestoneDue(t *testing.T) {
	due, ok := Milestone{DueDate: "2024-02-29"}.Due(time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.February, due.Month())

	_, ok = Milestone{DueDate: "2023-02-30"}.Due(time.UTC)
	assert.False(t, ok)

	_, ok = Milestone{}.Due(nil)
	assert.False(t, ok)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, MilestoneInProgress.Valid())
	assert.False(t, MilestoneStatus("on-track").Valid())
	assert.True(t, ProjectCompleted.Valid())
	assert.False(t, ProjectStatus("pending").Valid())
}

func TestRevisionShortSHA(t *testing.T) {
	assert.Equal(t, "abc1234", Revision{SHA: "abc1234def"}.ShortSHA())
	assert.Equal(t, "abc", Revision{SHA: "abc"}.ShortSHA())
}
