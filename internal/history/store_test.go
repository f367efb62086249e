package history

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharjadi/jdgen/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s
}

func sampleGenerate() *model.GenerateResponse {
	return &model.GenerateResponse{
		Draft: &model.Draft{
			Title:      "Senior Backend Engineer",
			Department: "Platform",
			Sections: model.DraftSections{
				Intro:            "We are looking for a backend engineer to join the Platform team.",
				Responsibilities: []string{"Design APIs", "Own on-call"},
				Requirements:     []string{"Go", "PostgreSQL"},
				NiceToHaves:      []string{"Kubernetes"},
			},
		},
		Prompt: "prompt",
		Guides: []string{"uni4"},
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := s.Record(ctx, KindGenerate, "Senior Backend Engineer", "Platform", "uni4", sampleGenerate())
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, "uni4", got.TargetLevel)
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))

	var resp model.GenerateResponse
	require.NoError(t, json.Unmarshal(got.Result, &resp))
	assert.Equal(t, []string{"Go", "PostgreSQL"}, resp.Draft.Sections.Requirements)
}

func TestRecord_RejectsUnknownKind(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Record(context.Background(), "search", "x", "", "", nil)
	assert.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Record(ctx, KindLevel, title, "", "mgr5", model.LevelResponse{TargetLevel: "mgr5"})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Title, all[1].Title, all[2].Title})

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestOpen_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), KindLevel, "kept", "", "", model.LevelResponse{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	entries, err := s2.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Title)
}

func TestWriteText_Generate(t *testing.T) {
	s := openTestStore(t)
	e, err := s.Record(context.Background(), KindGenerate, "Senior Backend Engineer", "Platform", "", sampleGenerate())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, e))
	out := buf.String()

	assert.Contains(t, out, "Senior Backend Engineer - Platform\n")
	assert.Contains(t, out, "Job Description:\nWe are looking for a backend engineer")
	assert.Contains(t, out, "Key Responsibilities:\n• Design APIs\n• Own on-call\n")
	assert.Contains(t, out, "Requirements:\n• Go\n• PostgreSQL\n")
	assert.Contains(t, out, "Nice to Have:\n• Kubernetes\n")
	assert.Contains(t, out, "Recorded 2026-03-14 09:30 UTC")
}

func TestWriteText_PrefersGeneratedText(t *testing.T) {
	resp := sampleGenerate()
	resp.GeneratedJD = "  Full LLM posting.  "
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Entry{Kind: KindGenerate, Title: "t", Result: raw}))
	assert.Contains(t, buf.String(), "Full LLM posting.\n")
	assert.NotContains(t, buf.String(), "Key Responsibilities")
}

func TestWriteText_Level(t *testing.T) {
	raw, err := json.Marshal(model.LevelResponse{TargetLevel: "vp", Guides: []string{"vp", "general"}, Prompt: "P"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Entry{Kind: KindLevel, Title: "Head of Eng", TargetLevel: "vp", Result: raw}))
	assert.Contains(t, buf.String(), "Head of Eng (vp)\n")
	assert.Contains(t, buf.String(), "Prompt:\n\nP\n")
	assert.Contains(t, buf.String(), "Guides: vp, general\n")
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		e    Entry
		want string
	}{
		{Entry{ID: 12, Kind: KindGenerate, Title: "Senior Backend Engineer"}, "12_senior_backend_engineer_job_description"},
		{Entry{ID: 3, Kind: KindLevel, Title: "C++ / Rust Dev!"}, "3_c_rust_dev_leveled_job_description"},
		{Entry{ID: 1, Kind: KindGenerate, Title: "***"}, "1_untitled_job_description"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileStem(tt.e))
	}
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	e, err := s.Record(context.Background(), KindGenerate, "Data Engineer", "Data", "", sampleGenerate())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	jsonPath, textPath, err := Export(dir, e)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1_data_engineer_job_description.json"), jsonPath)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var back Entry
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, "Data Engineer", back.Title)

	text, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Data Engineer - Data")
}
