package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the answer sheet image",
	}
}

// gradingProperties describes the optional pipeline overrides shared by the
// recognition tools. Omitted values fall back to the server configuration.
func gradingProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold_mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"fixed", "otsu"},
			"description": "Binarization policy: a fixed cutoff or one derived from the histogram",
		},
		"threshold_value": map[string]interface{}{
			"type":        "integer",
			"description": "Cutoff for fixed mode (0-255). Pixels at or below it count as ink",
		},
		"blur_kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Gaussian kernel width; 0 or 1 disables smoothing",
		},
		"min_area": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest bubble area in pixels (exclusive)",
		},
		"max_area": map[string]interface{}{
			"type":        "integer",
			"description": "Largest bubble area in pixels (exclusive)",
		},
		"min_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Smallest width/height ratio (inclusive)",
		},
		"max_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Largest width/height ratio (inclusive)",
		},
		"num_columns": map[string]interface{}{
			"type":        "integer",
			"description": "Number of question columns printed on the sheet",
		},
		"column_gap": map[string]interface{}{
			"type":        "number",
			"description": "Slack in pixels added to every column band",
		},
		"row_tolerance": map[string]interface{}{
			"type":        "integer",
			"description": "Vertical distance in pixels under which bubbles share a row",
		},
		"expected_alternatives": map[string]interface{}{
			"type":        "integer",
			"description": "Bubbles per question (1-26)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	gradeProps := gradingProperties()
	gradeProps["answers"] = map[string]interface{}{
		"type":                 "object",
		"description":          "Answer key mapping question number to letter, e.g. {\"1\": \"C\", \"2\": \"D\"}",
		"additionalProperties": map[string]interface{}{"type": "string"},
	}
	gradeProps["answer_string"] = map[string]interface{}{
		"type":        "string",
		"description": "Compact answer key, one letter per question from 1. '-' leaves a question unkeyed",
	}
	gradeProps["format"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "jpeg"},
		"description": "Encoding of the annotated sheet. Default png",
		"default":     "png",
	}

	return []Tool{
		{
			Name:        "sheet_load",
			Description: "Load an answer sheet image and return its dimensions and format. The sheet is re-read from disk and cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_crop",
			Description: "Crop a rectangular region of an answer sheet and return it as base64-encoded PNG. Use this to inspect a group of bubbles closely.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "sheet_grid_overlay",
			Description: "Draw a labeled coordinate grid over the raw sheet to read off a region of interest for the frame.roi setting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 100",
						"default":     100,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label intersections with their coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color of the grid lines, e.g. #FF0000. Default semi-transparent red",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_binarize",
			Description: "Binarize an answer sheet the way the grader sees it: ink white, paper black. Returns the mask as base64 PNG and the threshold applied.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gradingProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "sheet_detect_marks",
			Description: "Detect the bubbles on an answer sheet, group them into questions and report the most-filled alternative of each, without an answer key.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gradingProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "sheet_grade",
			Description: "Grade an answer sheet against an answer key. Returns per-question results, the score and the annotated sheet as a base64 image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gradeProps,
				"required":   []string{"path"},
			},
		},
	}
}

// handleToolsList responds to the tools/list request
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
