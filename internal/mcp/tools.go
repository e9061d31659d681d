package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moradology/pith/internal/builder"
	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tree"
)

// Tool names.
const (
	TreeToolName    = "pith_tree"
	CodemapToolName = "pith_codemap"
	ContextToolName = "pith_context"
	TokensToolName  = "pith_tokens"
)

type toolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

type treeArgs struct {
	Path          string `json:"path"`
	JSON          bool   `json:"json"`
	NoMetadata    bool   `json:"no_metadata"`
	IncludeHidden bool   `json:"include_hidden"`
	MaxDepth      int    `json:"max_depth"`
}

// documentArgs are shared by the codemap and context tools. Unset fields
// fall back to the server configuration.
type documentArgs struct {
	Path           string   `json:"path"`
	Format         string   `json:"format"`
	Encoding       string   `json:"encoding"`
	IncludeDocs    bool     `json:"include_docs"`
	IncludePrivate bool     `json:"include_private"`
	Languages      []string `json:"languages"`
	Select         []string `json:"select"`
}

type tokensArgs struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	PerFile  bool   `json:"per_file"`
}

// TokensResponse is the JSON result of the tokens tool and `pith tokens --json`.
type TokensResponse struct {
	Total    int            `json:"total"`
	Encoding string         `json:"encoding"`
	Files    map[string]int `json:"files,omitempty"`
}

func pathOption() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Description("File or directory to analyze. Relative paths resolve against the project root. Defaults to the root."))
}

func documentOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		pathOption(),
		mcp.WithString("format",
			mcp.Enum("xml", "json"),
			mcp.Description("Document format (default: xml)")),
		mcp.WithString("encoding",
			mcp.Enum("cl100k", "o200k"),
			mcp.Description("Tokenizer used for the token summary (default: cl100k)")),
		mcp.WithBoolean("include_docs",
			mcp.Description("Attach doc comments and docstrings to declarations")),
		mcp.WithBoolean("include_private",
			mcp.Description("Keep non-public declarations, fields and members")),
		mcp.WithArray("languages",
			mcp.Description("Restrict extraction to these languages, e.g. ['rust', 'go']. Empty means all.")),
	}
}

// AddTreeTool registers the pith_tree tool.
func AddTreeTool(s *server.MCPServer, srv *Server) {
	tool := mcp.NewTool(TreeToolName,
		mcp.WithDescription("Render the directory tree of a project with language, line count and size per file. Honors .gitignore and .pithignore."),
		pathOption(),
		mcp.WithBoolean("json",
			mcp.Description("Return the tree as nested JSON records")),
		mcp.WithBoolean("no_metadata",
			mcp.Description("Omit the [language, lines, size] annotations")),
		mcp.WithBoolean("include_hidden",
			mcp.Description("Include dot files and directories")),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum traversal depth (default: unlimited)")),
	)
	s.AddTool(tool, createTreeHandler(srv))
}

// AddCodemapTool registers the pith_codemap tool.
func AddCodemapTool(s *server.MCPServer, srv *Server) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Extract structural codemaps (imports, signatures, types, fields) for every supported source file, with an exact token summary."),
	}, documentOptions()...)
	s.AddTool(mcp.NewTool(CodemapToolName, opts...), createCodemapHandler(srv))
}

// AddContextTool registers the pith_context tool.
func AddContextTool(s *server.MCPServer, srv *Server) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Build a full context document: file tree, codemaps and the full content of selected files, with an exact token summary."),
	}, documentOptions()...)
	opts = append(opts, mcp.WithArray("select",
		mcp.Description("Glob patterns over root-relative paths whose files are included in full, e.g. ['src/**.rs', 'README.md']")))
	s.AddTool(mcp.NewTool(ContextToolName, opts...), createContextHandler(srv))
}

// AddTokensTool registers the pith_tokens tool.
func AddTokensTool(s *server.MCPServer, srv *Server) {
	tool := mcp.NewTool(TokensToolName,
		mcp.WithDescription("Count tokens in a file or in every accepted text file under a directory."),
		pathOption(),
		mcp.WithString("encoding",
			mcp.Enum("cl100k", "o200k"),
			mcp.Description("Tokenizer (default: cl100k)")),
		mcp.WithBoolean("per_file",
			mcp.Description("Include per-file counts")),
	)
	s.AddTool(tool, createTokensHandler(srv))
}

func createTreeHandler(srv *Server) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args treeArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		cfg := *srv.cfg
		cfg.Walk.IncludeHidden = cfg.Walk.IncludeHidden || args.IncludeHidden
		if args.MaxDepth > 0 {
			cfg.Walk.MaxDepth = args.MaxDepth
		}

		b, err := builder.New(cfg.ToBuilderOptions(), nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := b.Tree(srv.resolve(args.Path))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if args.JSON {
			doc, err := output.MarshalJSON(tree.ToRecord(t, nil, nil))
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tree: %w", err)
			}
			return mcp.NewToolResultText(doc), nil
		}

		opts := tree.WithMetadata()
		if args.NoMetadata {
			opts = tree.RenderOptions{}
		}
		return mcp.NewToolResultText(tree.Render(t, opts)), nil
	}
}

func createCodemapHandler(srv *Server) toolHandler {
	return createDocumentHandler(srv, (*builder.Builder).CodemapDocument)
}

func createContextHandler(srv *Server) toolHandler {
	return createDocumentHandler(srv, (*builder.Builder).ContextDocument)
}

type documentFunc func(b *builder.Builder, ctx context.Context, root string, format output.Format) (*output.Result, error)

func createDocumentHandler(srv *Server, render documentFunc) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args documentArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		cfg, err := srv.configFor(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		counter, err := srv.counter(cfg.Encoding())
		if err != nil {
			return nil, err
		}

		opts := cfg.ToBuilderOptions()
		opts.Select = args.Select
		b, err := builder.New(opts, counter)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := render(b, ctx, srv.resolve(args.Path), cfg.Format())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(res.Document), nil
	}
}

func createTokensHandler(srv *Server) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args tokensArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		cfg, err := srv.configFor(documentArgs{Encoding: args.Encoding})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		counter, err := srv.counter(cfg.Encoding())
		if err != nil {
			return nil, err
		}

		b, err := builder.New(cfg.ToBuilderOptions(), counter)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report, err := b.Tokens(ctx, srv.resolve(args.Path))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := TokensResponse{Total: report.Total, Encoding: cfg.Encoding().String()}
		if args.PerFile {
			resp.Files = report.Files
		}
		doc, err := output.MarshalJSON(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(doc), nil
	}
}

// configFor overlays tool arguments on the server configuration.
func (s *Server) configFor(args documentArgs) (*config.Config, error) {
	cfg := *s.cfg
	if args.Format != "" {
		cfg.Output.Format = args.Format
	}
	if args.Encoding != "" {
		cfg.Output.Encoding = args.Encoding
	}
	cfg.Output.IncludeDocs = cfg.Output.IncludeDocs || args.IncludeDocs
	cfg.Output.IncludePrivate = cfg.Output.IncludePrivate || args.IncludePrivate
	if len(args.Languages) > 0 {
		cfg.Extract.Languages = args.Languages
	}

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
