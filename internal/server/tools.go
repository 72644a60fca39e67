package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func stepsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Number of frames in one full hue rotation (1-360, default 36)",
		"default":     36,
		"minimum":     1,
		"maximum":     360,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "huecycle_load",
			Description: "Load a source image and return its dimensions, format, alpha presence and the extension its frames will be written with.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "huecycle_sample",
			Description: "Sample one pixel of the source image and report its color before and after the hue rotation of a given frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0 = top edge)",
					},
					"step": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index within the cycle (0 = unshifted, default 0)",
						"default":     0,
					},
					"steps": stepsProperty(),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "huecycle_preview",
			Description: "Render a single frame of the cycle in memory and return it as a base64 PNG. Nothing is written to disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
					"step": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index within the cycle (default 0)",
						"default":     0,
					},
					"steps": stepsProperty(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor applied to the preview (default 1.0)",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "huecycle_render",
			Description: "Render every hue-shifted frame to disk, then assemble them into a looping animated GIF. Returns the frame paths, the GIF path, the frame count and the per-frame delay.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty("Absolute path to the source image"),
					"steps": stepsProperty(),
					"duration_ms": map[string]interface{}{
						"type":        "integer",
						"description": "Duration of one full cycle in milliseconds (default 2000)",
						"default":     2000,
					},
					"frame_dir": pathProperty("Directory for the individual frames (default <base>/<base>_frames)"),
					"output":    pathProperty("Path of the animated GIF (default <base>/<base>.gif)"),
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the source so neither side exceeds this many pixels (0 = keep size)",
						"default":     0,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Frames rendered concurrently (0 = one per CPU)",
						"default":     0,
					},
					"dither": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply Floyd-Steinberg dithering when reducing frames to the GIF palette",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "huecycle_inspect",
			Description: "Decode an animated GIF and report its size, frame count, per-frame delays, loop count and total duration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the GIF"),
				},
				"required": []string{"path"},
			},
		},
	}
}
