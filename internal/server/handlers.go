package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsheep/huecycle/internal/imaging"
	"github.com/ironsheep/huecycle/internal/pipeline"
	"github.com/ironsheep/huecycle/internal/render"
	"github.com/ironsheep/huecycle/internal/sequencer"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "huecycle_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token. When present, long running
	// tools emit notifications/progress messages tagged with it.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var token interface{}
	if params.Meta != nil {
		token = params.Meta.ProgressToken
	}

	result, err := s.executeTool(params.Name, params.Arguments, token)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the source from cache as needed
//  4. Calls into imaging, render, pipeline or sequencer
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	switch name {
	case "huecycle_load":
		return s.handleLoad(args)
	case "huecycle_sample":
		return s.handleSample(args)
	case "huecycle_preview":
		return s.handlePreview(args)
	case "huecycle_render":
		return s.handleRender(args, progressToken)
	case "huecycle_inspect":
		return s.handleInspect(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// stepsOrDefault resolves an optional steps argument.
func stepsOrDefault(steps *int) (int, error) {
	if steps == nil {
		return pipeline.DefaultSteps, nil
	}
	if *steps < pipeline.MinSteps || *steps > pipeline.MaxSteps {
		return 0, fmt.Errorf("steps %d outside [%d,%d]", *steps, pipeline.MinSteps, pipeline.MaxSteps)
	}
	return *steps, nil
}

// === Source Handlers ===

type loadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	// A reload should see the file as it is now.
	s.cache.Evict(a.Path)
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type sampleArgs struct {
	Path  string `json:"path"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Step  int    `json:"step"`
	Steps *int   `json:"steps"`
}

func (s *Server) handleSample(args json.RawMessage) (interface{}, error) {
	var a sampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	steps, err := stepsOrDefault(a.Steps)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleShifted(img, a.X, a.Y, a.Step, steps, render.Offset, render.ShiftPixel)
}

type previewArgs struct {
	Path  string  `json:"path"`
	Step  int     `json:"step"`
	Steps *int    `json:"steps"`
	Scale float64 `json:"scale"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	steps, err := stepsOrDefault(a.Steps)
	if err != nil {
		return nil, err
	}
	if a.Step < 0 || a.Step >= steps {
		return nil, fmt.Errorf("step %d outside [0,%d)", a.Step, steps)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	frame := render.ShiftFrame(imaging.ToNRGBA(img), render.Offset(a.Step, steps))
	return imaging.Preview(frame, a.Scale)
}

// === Pipeline Handlers ===

type renderArgs struct {
	Path       string `json:"path"`
	Steps      *int   `json:"steps"`
	DurationMs *int   `json:"duration_ms"`
	FrameDir   string `json:"frame_dir"`
	Output     string `json:"output"`
	MaxSize    int    `json:"max_size"`
	Workers    int    `json:"workers"`
	Dither     *bool  `json:"dither"`
}

// renderOptions builds pipeline options from a huecycle_render call. Default
// locations are placed beside the source rather than in the server's working
// directory.
func renderOptions(a renderArgs) pipeline.Options {
	opts := pipeline.Defaults(a.Path)
	dir := filepath.Dir(a.Path)
	opts.FrameDir = filepath.Join(dir, opts.FrameDir)
	opts.Output = filepath.Join(dir, opts.Output)

	if a.Steps != nil {
		opts.Steps = *a.Steps
	}
	if a.DurationMs != nil {
		opts.CycleDuration = time.Duration(*a.DurationMs) * time.Millisecond
	}
	if a.FrameDir != "" {
		opts.FrameDir = a.FrameDir
	}
	if a.Output != "" {
		opts.Output = a.Output
	}
	if a.Dither != nil {
		opts.Dither = *a.Dither
	}
	opts.MaxSize = a.MaxSize
	opts.Workers = a.Workers
	return opts
}

func (s *Server) handleRender(args json.RawMessage, progressToken interface{}) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := renderOptions(a)
	if progressToken != nil {
		opts.Progress = func(fraction float64, stage pipeline.Stage, path string) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": progressToken,
				"progress":      fraction,
				"total":         1,
				"message":       fmt.Sprintf("%s %s", stage, path),
			})
		}
	}
	return s.runner.Run(opts)
}

type inspectArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleInspect(args json.RawMessage) (interface{}, error) {
	var a inspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return sequencer.Inspect(a.Path)
}
