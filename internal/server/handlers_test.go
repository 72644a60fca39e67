package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/huecycle/internal/imaging"
	"github.com/ironsheep/huecycle/internal/pipeline"
	"github.com/ironsheep/huecycle/internal/render"
	"github.com/ironsheep/huecycle/internal/sequencer"
)

// createTestImageFile creates a solid test image in a temp dir and returns its path
func createTestImageFile(t *testing.T, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

func toolRequest(t *testing.T, name string, args map[string]interface{}, meta map[string]interface{}) *MCPRequest {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	if meta != nil {
		params["_meta"] = meta
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	return &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
}

// callTool runs a tool and decodes its text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) {
	t.Helper()
	resp := s.handleRequest(toolRequest(t, name, args, nil))
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func expectToolError(t *testing.T, s *Server, name string, args map[string]interface{}) {
	t.Helper()
	resp := s.handleRequest(toolRequest(t, name, args, nil))
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatalf("%s: expected error", name)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_Load(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	callTool(t, s, "huecycle_load", map[string]interface{}{"path": imgPath}, &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if info.FrameExt != "png" {
		t.Errorf("frame ext: got %s, want png", info.FrameExt)
	}
}

func TestHandleToolsCall_Sample(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 10, 10, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name    string
		step    int
		steps   int
		wantHex string
	}{
		{"unshifted", 0, 36, "#ff0000"},
		{"third of a turn", 12, 36, "#00ff00"},
		{"half turn", 1, 2, "#00ffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got imaging.ShiftedSample
			callTool(t, s, "huecycle_sample", map[string]interface{}{
				"path": imgPath, "x": 5, "y": 5, "step": tt.step, "steps": tt.steps,
			}, &got)

			if got.Source.Hex != "#ff0000" {
				t.Errorf("source hex: got %s", got.Source.Hex)
			}
			if got.Transformed.Hex != tt.wantHex {
				t.Errorf("transformed hex: got %s, want %s", got.Transformed.Hex, tt.wantHex)
			}
		})
	}
}

func TestHandleToolsCall_SampleDefaultsSteps(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 4, 4, color.RGBA{255, 0, 0, 255})

	var got imaging.ShiftedSample
	callTool(t, s, "huecycle_sample", map[string]interface{}{"path": imgPath, "x": 0, "y": 0, "step": 3}, &got)

	if got.Steps != pipeline.DefaultSteps {
		t.Errorf("steps: got %d, want %d", got.Steps, pipeline.DefaultSteps)
	}
	if got.OffsetDeg != 30 {
		t.Errorf("offset: got %v, want 30", got.OffsetDeg)
	}
}

func TestHandleToolsCall_SampleMatchesRenderOffset(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 4, 4, color.RGBA{255, 0, 0, 255})

	for _, steps := range []int{7, 11, 36, 360} {
		for _, step := range []int{1, steps / 2, steps - 1} {
			var got imaging.ShiftedSample
			callTool(t, s, "huecycle_sample", map[string]interface{}{
				"path": imgPath, "x": 1, "y": 1, "step": step, "steps": steps,
			}, &got)

			if want := render.Offset(step, steps); got.OffsetDeg != want {
				t.Errorf("step %d/%d offset: got %v, want %v", step, steps, got.OffsetDeg, want)
			}
		}
	}
}

func TestHandleToolsCall_SampleErrors(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 4, 4, color.RGBA{255, 0, 0, 255})

	expectToolError(t, s, "huecycle_sample", map[string]interface{}{"path": imgPath, "x": 10, "y": 0})
	expectToolError(t, s, "huecycle_sample", map[string]interface{}{"path": imgPath, "x": 0, "y": 0, "step": 4, "steps": 4})
	expectToolError(t, s, "huecycle_sample", map[string]interface{}{"path": imgPath, "x": 0, "y": 0, "steps": 0})
	expectToolError(t, s, "huecycle_sample", map[string]interface{}{"path": imgPath, "x": 0, "y": 0, "steps": 361})
}

func TestHandleToolsCall_Preview(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 8, 6, color.RGBA{255, 0, 0, 255})

	var got imaging.PreviewResult
	callTool(t, s, "huecycle_preview", map[string]interface{}{"path": imgPath, "step": 18, "steps": 36}, &got)

	if got.Width != 8 || got.Height != 6 {
		t.Errorf("size: got %dx%d, want 8x6", got.Width, got.Height)
	}

	data, err := base64.StdEncoding.DecodeString(got.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	want := color.NRGBA{0, 255, 255, 255}
	if c := color.NRGBAModel.Convert(img.At(4, 3)).(color.NRGBA); c != want {
		t.Errorf("pixel: got %v, want %v", c, want)
	}
}

func TestHandleToolsCall_PreviewScaled(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 20, 10, color.RGBA{255, 0, 0, 255})

	var got imaging.PreviewResult
	callTool(t, s, "huecycle_preview", map[string]interface{}{"path": imgPath, "scale": 0.5}, &got)

	if got.Width != 10 || got.Height != 5 {
		t.Errorf("size: got %dx%d, want 10x5", got.Width, got.Height)
	}

	expectToolError(t, s, "huecycle_preview", map[string]interface{}{"path": imgPath, "step": -1})
}

func TestHandleToolsCall_RenderAndInspect(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 6, 4, color.RGBA{255, 0, 0, 255})
	dir := t.TempDir()
	out := filepath.Join(dir, "anim.gif")

	var res pipeline.Result
	callTool(t, s, "huecycle_render", map[string]interface{}{
		"path":        imgPath,
		"steps":       4,
		"duration_ms": 400,
		"frame_dir":   filepath.Join(dir, "frames"),
		"output":      out,
		"dither":      false,
	}, &res)

	if len(res.Frames) != 4 {
		t.Fatalf("frames: got %d, want 4", len(res.Frames))
	}
	if res.Frames[3] != filepath.Join(dir, "frames", "3_red.png") {
		t.Errorf("frame path: got %s", res.Frames[3])
	}
	if res.Output != out {
		t.Errorf("output: got %s, want %s", res.Output, out)
	}
	if res.DelayCs != 10 {
		t.Errorf("delay: got %dcs, want 10cs", res.DelayCs)
	}

	var info sequencer.AnimationInfo
	callTool(t, s, "huecycle_inspect", map[string]interface{}{"path": out}, &info)

	if info.Frames != 4 {
		t.Errorf("inspected frames: got %d, want 4", info.Frames)
	}
	if info.LoopCount != 0 {
		t.Errorf("loop count: got %d, want 0", info.LoopCount)
	}
	if info.DurationMs != 400 {
		t.Errorf("duration: got %dms, want 400ms", info.DurationMs)
	}
}

func TestHandleToolsCall_RenderDefaultLocations(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "blue.png", 3, 3, color.RGBA{0, 0, 255, 255})
	srcDir := filepath.Dir(imgPath)

	var res pipeline.Result
	callTool(t, s, "huecycle_render", map[string]interface{}{"path": imgPath, "steps": 2}, &res)

	wantOut := filepath.Join(srcDir, "blue", "blue.gif")
	if res.Output != wantOut {
		t.Errorf("output: got %s, want %s", res.Output, wantOut)
	}
	if _, err := os.Stat(filepath.Join(srcDir, "blue", "blue_frames", "1_blue.png")); err != nil {
		t.Errorf("frame missing: %v", err)
	}
	if res.HintPath != filepath.Join(srcDir, "blue", pipeline.HintFile) {
		t.Errorf("hint path: got %s", res.HintPath)
	}
}

func TestHandleToolsCall_RenderProgress(t *testing.T) {
	var out bytes.Buffer
	s := NewWithIO(strings.NewReader(""), &out)
	imgPath := createTestImageFile(t, "red.png", 4, 4, color.RGBA{255, 0, 0, 255})
	dir := t.TempDir()

	req := toolRequest(t, "huecycle_render", map[string]interface{}{
		"path":      imgPath,
		"steps":     3,
		"frame_dir": filepath.Join(dir, "frames"),
		"output":    filepath.Join(dir, "anim.gif"),
	}, map[string]interface{}{"progressToken": "tok-1"})

	resp := s.handleRequest(req)
	if resp == nil || resp.Error != nil {
		t.Fatalf("render failed: %+v", resp)
	}

	dec := json.NewDecoder(&out)
	var last float64
	count := 0
	for dec.More() {
		var n struct {
			Method string `json:"method"`
			Params struct {
				ProgressToken string  `json:"progressToken"`
				Progress      float64 `json:"progress"`
			} `json:"params"`
		}
		if err := dec.Decode(&n); err != nil {
			t.Fatalf("failed to decode notification: %v", err)
		}
		if n.Method != "notifications/progress" || n.Params.ProgressToken != "tok-1" {
			t.Errorf("unexpected notification: %+v", n)
		}
		if n.Params.Progress < last {
			t.Errorf("progress went backwards: %v after %v", n.Params.Progress, last)
		}
		last = n.Params.Progress
		count++
	}

	if count != 6 {
		t.Errorf("notifications: got %d, want 6", count)
	}
	if last != 1 {
		t.Errorf("final progress: got %v, want 1", last)
	}
}

func TestHandleToolsCall_RenderInvalidSteps(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "red.png", 2, 2, color.RGBA{255, 0, 0, 255})
	dir := t.TempDir()

	expectToolError(t, s, "huecycle_render", map[string]interface{}{
		"path":   imgPath,
		"steps":  0,
		"output": filepath.Join(dir, "x.gif"),
	})
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()
	for _, tool := range []string{"huecycle_load", "huecycle_sample", "huecycle_preview", "huecycle_render", "huecycle_inspect"} {
		t.Run(tool, func(t *testing.T) {
			expectToolError(t, s, tool, map[string]interface{}{
				"path": "/nonexistent/path/to/image.png",
				"x":    0,
				"y":    0,
			})
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()
	expectToolError(t, s, "nonexistent_tool", map[string]interface{}{})
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	}

	resp := s.handleRequest(req)
	if resp == nil || resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New()
	for _, tool := range []string{"huecycle_load", "huecycle_sample", "huecycle_preview", "huecycle_render", "huecycle_inspect"} {
		if _, err := s.executeTool(tool, json.RawMessage(`{invalid`), nil); err == nil {
			t.Errorf("%s: expected error for invalid JSON", tool)
		}
	}
}
