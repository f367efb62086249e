package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharjadi/jdgen/internal/model"
)

const backendPosting = `Acme is growing fast. We are looking for a backend engineer to join our platform team.

Responsibilities:
- Design and operate high-throughput Go services
- Own the payments reconciliation pipeline
- Short line
- Mentor engineers across the platform organisation

Requirements:
- 5+ years building distributed systems
- Strong PostgreSQL knowledge
- Go

Nice to have:
- Experience with Kubernetes operators
- Prior fintech exposure

Minimum salary is competitive.`

const designPosting = `Join us! Our design team is seeking a product designer for a great opportunity &amp; more.

Responsibilities:
1. Prototype new onboarding flows end to end

Requirements:
- strong postgresql knowledge
- Portfolio of shipped consumer products`

func TestExtractResponsibilities(t *testing.T) {
	chunks := []model.Chunk{{Content: backendPosting}, {Content: designPosting}}

	got := ExtractResponsibilities(chunks)
	assert.Equal(t, []string{
		"Design and operate high-throughput Go services",
		"Own the payments reconciliation pipeline",
		"Mentor engineers across the platform organisation",
		"Prototype new onboarding flows end to end",
	}, got)
}

func TestExtractRequirements_UserFirstAndDeduped(t *testing.T) {
	chunks := []model.Chunk{{Content: backendPosting}, {Content: designPosting}}

	got := ExtractRequirements(chunks, []string{"Strong PostgreSQL knowledge"})
	assert.Equal(t, []string{
		"Strong PostgreSQL knowledge",
		"5+ years building distributed systems",
		"Portfolio of shipped consumer products",
	}, got)
}

func TestExtractRequirements_NoExamples(t *testing.T) {
	user := []string{"Go", "SQL"}
	got := ExtractRequirements(nil, user)
	assert.Equal(t, user, got)

	got[0] = "changed"
	assert.Equal(t, "Go", user[0], "result must not alias the caller's slice")
}

func TestExtractRequirements_KeepsCallerDuplicates(t *testing.T) {
	user := []string{"Go", "go", "5+ years building distributed systems"}
	got := ExtractRequirements([]model.Chunk{{Content: backendPosting}}, user)
	assert.Equal(t, []string{
		"Go",
		"go",
		"5+ years building distributed systems",
		"Strong PostgreSQL knowledge",
	}, got)
}

func TestExtractRequirements_Limit(t *testing.T) {
	user := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	got := ExtractRequirements([]model.Chunk{{Content: backendPosting}}, user)
	assert.Len(t, got, draftMaxRequirements)
	assert.Equal(t, "5+ years building distributed systems", got[7])
}

func TestExtractNiceToHaves(t *testing.T) {
	got := ExtractNiceToHaves([]model.Chunk{{Content: backendPosting}})
	assert.Equal(t, []string{
		"Experience with Kubernetes operators",
		"Prior fintech exposure",
	}, got)
}

func TestExtractIntro(t *testing.T) {
	got := ExtractIntro([]model.Chunk{{Content: backendPosting}}, "Engineer", "Platform")
	assert.Equal(t, "We are looking for a backend engineer to join our platform team", got)
}

func TestExtractIntro_StripsEntities(t *testing.T) {
	got := ExtractIntro([]model.Chunk{{Content: designPosting}}, "Designer", "Design")
	assert.Equal(t, "Our design team is seeking a product designer for a great opportunity  more", got)
}

func TestExtractIntro_Fallbacks(t *testing.T) {
	assert.Equal(t, "We are seeking a talented SRE to join our Infra team.",
		ExtractIntro(nil, "SRE", "Infra"))

	got := ExtractIntro([]model.Chunk{{Content: "No headers at all."}}, "SRE", "Infra")
	assert.Contains(t, got, "We are seeking a talented SRE to join our Infra team.")
	assert.Contains(t, got, "excellent opportunity")
}

func TestBuildDraft(t *testing.T) {
	chunks := []model.Chunk{{ID: "a", Content: backendPosting}}
	d := BuildDraft("Backend Engineer", "Platform", []string{"Go"}, chunks)

	require.NotNil(t, d)
	assert.Equal(t, "Backend Engineer", d.Title)
	assert.Equal(t, "Platform", d.Department)
	assert.Equal(t, "Go", d.Sections.Requirements[0])
	assert.NotEmpty(t, d.Sections.Responsibilities)
	assert.True(t, d.Metadata.Generated)
	assert.Equal(t, 1, d.Metadata.SimilarJobsUsed)
	assert.Equal(t, GenerationMethodExtraction, d.Metadata.GenerationMethod)
}
