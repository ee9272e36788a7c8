package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/codec"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/palette"
	"github.com/aretw0/landsketch/pkg/script"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	PaletteURI  = "landsketch://palette"
	CoverageURI = "landsketch://coverage"
)

// StateResponse is returned by every painting tool.
type StateResponse struct {
	State    domain.UIState `json:"state" jsonschema_description:"Brush, size, help and view of the session"`
	Segments int            `json:"segments" jsonschema_description:"Segments painted since the session started"`
	Width    int            `json:"width" jsonschema_description:"Logical canvas width"`
	Height   int            `json:"height" jsonschema_description:"Logical canvas height"`
}

// BrushArgs are the arguments of select_brush.
type BrushArgs struct {
	Brush string `json:"brush"`
	Size  *int   `json:"size,omitempty"`
}

// Server exposes one painting session as an MCP server.
type Server struct {
	studio    *landsketch.Studio
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance around a mounted studio.
func NewServer(studio *landsketch.Studio, opts ...Option) *Server {
	s := &Server{
		studio:    studio,
		mcpServer: server.NewMCPServer("landsketch-mcp", strings.TrimSpace(landsketch.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: select_brush
	brushTool := mcp.NewTool("select_brush",
		mcp.WithDescription("Select the land-cover class to paint with and optionally the stroke width."),
		mcp.WithString("brush", mcp.Required(),
			mcp.Description("One of Sky, Mountain, Water, Trees, Flowers, Boulders, Path, Grass, Dirt, Eraser"),
		),
		mcp.WithNumber("size", mcp.Description("Stroke width in pixels, 10 to 100")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(brushTool, mcp.NewStructuredToolHandler(s.handleSelectBrush))

	// TOOL: stroke
	strokeTool := mcp.NewTool("stroke",
		mcp.WithDescription("Paint a polyline on the canvas. Points are [x, y] pairs in canvas pixels."),
		mcp.WithArray("points", mcp.Required(), mcp.Description("List of [x, y] pairs, at least two to paint anything")),
		mcp.WithString("brush", mcp.Description("Brush for this stroke (default: current brush)")),
		mcp.WithNumber("size", mcp.Description("Width for this stroke (default: current size)")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(strokeTool, mcp.NewStructuredToolHandler(s.handleStroke))

	// TOOL: clear
	s.mcpServer.AddTool(mcp.NewTool("clear",
		mcp.WithDescription("Reset the whole canvas to the sky colour."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
		s.studio.Clear(ctx)
		return s.state(), nil
	}))

	// TOOL: submit
	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Send the sketch to the image-search backend and return the matching locations."),
	), s.handleSubmit)

	// TOOL: export
	s.mcpServer.AddTool(mcp.NewTool("export",
		mcp.WithDescription("Return the painting as a PNG image. With dir, also save it there as painting.png."),
		mcp.WithString("dir", mcp.Description("Directory to write painting.png into (optional)")),
	), s.handleExport)
}

func (s *Server) state() StateResponse {
	w, h := s.studio.Bounds()
	return StateResponse{
		State:    s.studio.State(),
		Segments: s.studio.Engine().Segments(),
		Width:    w,
		Height:   h,
	}
}

// Handler methods for structured tools

func (s *Server) handleSelectBrush(ctx context.Context, request mcp.CallToolRequest, args BrushArgs) (StateResponse, error) {
	kind, err := palette.Parse(args.Brush)
	if err != nil {
		return StateResponse{}, err
	}
	if err := s.studio.SelectBrush(kind); err != nil {
		return StateResponse{}, err
	}
	if args.Size != nil {
		if err := s.studio.SetSize(*args.Size); err != nil {
			return StateResponse{}, err
		}
	}
	return s.state(), nil
}

func (s *Server) handleStroke(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sc, err := script.Decode(map[string]any{"strokes": []any{args}})
	if err != nil {
		return StateResponse{}, err
	}
	if _, err := sc.Replay(ctx, s.studio); err != nil {
		return StateResponse{}, err
	}
	return s.state(), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// The agent may cancel the call; the exchange itself runs to completion.
	report := s.studio.Submit(context.WithoutCancel(ctx))

	if report.Outcome != submit.OutcomeSucceeded {
		msg := report.Message
		if msg == "" {
			msg = fmt.Sprintf("submission %s", report.Outcome)
		}
		return mcp.NewToolResultError(msg), nil
	}

	jsonBytes, err := json.Marshal(report.Result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := request.GetString("dir", "")

	var buf bytes.Buffer
	if _, err := s.studio.ExportTo(&buf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	text := "painting.png"
	if dir != "" {
		path, err := s.studio.Export(dir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		text = path
	}
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(buf.Bytes()), codec.MediaType), nil
}

func (s *Server) registerResources() {
	// EXPOSE: landsketch://palette
	s.mcpServer.AddResource(mcp.NewResource(PaletteURI, "Brush Palette",
		mcp.WithResourceDescription("Every brush with its exact RGB colour"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type swatch struct {
			Brush domain.BrushKind `json:"brush"`
			Hex   string           `json:"hex"`
		}
		var swatches []swatch
		for _, kind := range palette.Kinds() {
			swatches = append(swatches, swatch{Brush: kind, Hex: palette.MustLookup(kind).Hex()})
		}
		jsonBytes, _ := json.Marshal(swatches)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PaletteURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: landsketch://coverage
	s.mcpServer.AddResource(mcp.NewResource(CoverageURI, "Canvas Coverage",
		mcp.WithResourceDescription("Pixels per land-cover class on the current canvas"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		cov, err := s.studio.Coverage()
		if err != nil {
			return nil, fmt.Errorf("failed to read canvas: %w", err)
		}
		jsonBytes, _ := json.Marshal(cov)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CoverageURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
