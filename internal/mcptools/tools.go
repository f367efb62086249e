// Package mcptools exposes job-description generation and leveling as MCP
// tools. The same tool set is served in-process by the API server (over
// streamable HTTP) and by jdctl (over stdio, forwarding to the REST API).
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jharjadi/jdgen/internal/model"
)

// Tool names.
const (
	ToolGenerate = "search_and_generate"
	ToolLevel    = "level_job_description"
	ToolIngest   = "ingest"
)

// Backend performs the work behind the tools.
type Backend interface {
	Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error)
	Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, error)
	Ingest(ctx context.Context, req model.IngestRequest) (*model.IngestResponse, error)
}

// NewServer creates an MCP server with every tool registered against b.
func NewServer(b Backend, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"jdgen",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	generate := NewGenerateTool(b)
	s.AddTool(generate.Definition(), generate.Handle)

	level := NewLevelTool(b)
	s.AddTool(level.Definition(), level.Handle)

	ingest := NewIngestTool(b)
	s.AddTool(ingest.Definition(), ingest.Handle)

	return s
}

const instructions = `jdgen drafts job descriptions from similar past postings and adjusts them to a target level.
Levels: uni1..uni99 (individual contributor), mgr1..mgr99 (management), vp, svp.
Use search_and_generate for a new description and level_job_description to re-level an existing one.`

// GenerateTool drafts a job description from similar examples.
type GenerateTool struct {
	backend Backend
}

func NewGenerateTool(b Backend) *GenerateTool { return &GenerateTool{backend: b} }

// Definition returns the MCP tool definition.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolGenerate,
		mcp.WithDescription("Search similar job descriptions and draft a new one. Returns the draft, the prompt and, when the server has an LLM configured, the generated text with citations."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Job title, e.g. 'Senior Backend Engineer'")),
		mcp.WithString("department", mcp.Required(), mcp.Description("Department or team")),
		mcp.WithArray("requirements",
			mcp.Description("Must-have requirements, one per item"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("target_level", mcp.Description("Optional level token: uniN, mgrN, vp or svp")),
	)
}

type generateArgs struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Requirements []string `json:"requirements"`
	TargetLevel  string   `json:"target_level"`
}

// Handle runs the tool.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generateArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}

	resp, err := t.backend.Generate(ctx, model.GenerateRequest{
		Title:        args.Title,
		Department:   args.Department,
		Requirements: args.Requirements,
		TargetLevel:  args.TargetLevel,
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(FormatGenerate(resp)), nil
}

// LevelTool re-levels an existing job description.
type LevelTool struct {
	backend Backend
}

func NewLevelTool(b Backend) *LevelTool { return &LevelTool{backend: b} }

// Definition returns the MCP tool definition.
func (t *LevelTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolLevel,
		mcp.WithDescription("Adjust a job description to a target level using the leveling guides."),
		mcp.WithString("job_description", mcp.Required(), mcp.Description("The job description text")),
		mcp.WithString("target_level", mcp.Required(), mcp.Description("Level token: uniN, mgrN, vp or svp")),
		mcp.WithNumber("max_guides", mcp.Description("How many guides to include (server default when omitted)")),
	)
}

type levelArgs struct {
	JobDescription string `json:"job_description"`
	TargetLevel    string `json:"target_level"`
	MaxGuides      int    `json:"max_guides"`
}

// Handle runs the tool.
func (t *LevelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args levelArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}

	resp, err := t.backend.Level(ctx, model.LevelRequest{
		JobDescription: args.JobDescription,
		TargetLevel:    args.TargetLevel,
		MaxGuides:      args.MaxGuides,
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(FormatLevel(resp)), nil
}

// IngestTool adds an example job description to the corpus.
type IngestTool struct {
	backend Backend
}

func NewIngestTool(b Backend) *IngestTool { return &IngestTool{backend: b} }

// Definition returns the MCP tool definition.
func (t *IngestTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolIngest,
		mcp.WithDescription("Store a job description as a retrieval example. Requires admin rights."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full job description text")),
		mcp.WithString("heading", mcp.Description("Title shown for the example")),
		mcp.WithString("department", mcp.Description("Department of the example")),
	)
}

// Handle runs the tool.
func (t *IngestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args model.IngestRequest
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}

	resp, err := t.backend.Ingest(ctx, args)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored example %s (%s).", resp.ChunkID, resp.Result)), nil
}

// toolError turns err into a tool-level error result. Validation details are
// shown to the model; upstream and internal failures are not.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, model.ErrInvalidLevelFormat):
		return mcp.NewToolResultError("target_level must be uniN, mgrN, vp or svp")
	case errors.Is(err, model.ErrInvalidIdentifier):
		return mcp.NewToolResultError("invalid guide identifier")
	case errors.Is(err, model.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, model.ErrUpstream):
		return mcp.NewToolResultError("an upstream service failed; try again later")
	case errors.Is(err, model.ErrForbidden):
		return mcp.NewToolResultError("not permitted with the current credentials")
	default:
		return mcp.NewToolResultError("internal error")
	}
}

// FormatGenerate renders a generation result as readable text: the LLM
// output when present, otherwise the extraction draft, followed by the
// sources used.
func FormatGenerate(resp *model.GenerateResponse) string {
	var sb strings.Builder
	if resp.GeneratedJD != "" {
		sb.WriteString(resp.GeneratedJD)
		sb.WriteString("\n")
	} else if d := resp.Draft; d != nil {
		fmt.Fprintf(&sb, "# %s (%s)\n\n%s\n", d.Title, d.Department, d.Sections.Intro)
		writeList(&sb, "Responsibilities", d.Sections.Responsibilities)
		writeList(&sb, "Requirements", d.Sections.Requirements)
		writeList(&sb, "Nice to have", d.Sections.NiceToHaves)
	}

	if len(resp.Guides) > 0 {
		fmt.Fprintf(&sb, "\nLeveling guides: %s\n", strings.Join(resp.Guides, ", "))
	}
	if len(resp.SimilarChunks) > 0 {
		sb.WriteString("\nBased on:\n")
		for _, c := range resp.SimilarChunks {
			label := c.Heading
			if label == "" {
				label = "(untitled)"
			}
			fmt.Fprintf(&sb, "- %s [%s]\n", label, c.ChunkID)
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

// FormatLevel renders a leveling result: the leveled text when an LLM ran,
// otherwise the prompt to hand to one.
func FormatLevel(resp *model.LevelResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target level: %s\nGuides: %s\n\n", resp.TargetLevel, strings.Join(resp.Guides, ", "))
	if resp.LeveledJD != "" {
		sb.WriteString(resp.LeveledJD)
	} else {
		sb.WriteString(resp.Prompt)
	}
	return sb.String()
}
