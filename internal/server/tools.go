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
		"description": "Absolute path to the image file (PNG, JPEG, GIF or TIFF)",
	}
}

func channelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"gray", "red", "green", "blue", "lightness"},
		"description": "Channel to analyze. Default gray",
		"default":     "gray",
	}
}

func thresholdProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Intensity threshold (0-255). Defaults to the middle of the channel's range",
	}
}

func masksProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a run-length mask file (ImageId,EncodedPixels)",
	}
}

func nameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image id used in mask records. Defaults to the image file name without extension",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "nuclei_channels",
			Description: "Load an image and report its dimensions and the intensity range, mean and variance of every channel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_components",
			Description: "Threshold one channel and return its 8-connected components with bounding boxes, areas and optional outlines, skeleton segments, regions of interest and a PNG snapshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"channel":   channelProperty(),
					"threshold": thresholdProperty(),
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Drop components with at most this many pixels. Default 0",
					},
					"polygons": map[string]interface{}{
						"type":        "boolean",
						"description": "Include each component's outline polygon",
					},
					"skeleton": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the line segments of the thinned foreground",
					},
					"roi_window": map[string]interface{}{
						"type":        "integer",
						"description": "Smoothing window for histogram regions of interest. 0 disables",
					},
					"roi_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum smoothed histogram value inside a region of interest. Default 1",
					},
					"snapshot_scale": map[string]interface{}{
						"type":        "number",
						"description": "Return the binary raster as base64 PNG scaled by this factor. 0 omits it",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_encode",
			Description: "Threshold one channel and encode its objects as run-length mask records (column-major, 1-based).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"channel":   channelProperty(),
					"threshold": thresholdProperty(),
					"name":      nameProperty(),
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Drop masks with at most this many pixels. Defaults to the configured minimum",
					},
					"header": map[string]interface{}{
						"type":        "boolean",
						"description": "Prefix the records with the ImageId,EncodedPixels header",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_score",
			Description: "Score a thresholded channel against ground-truth masks with the mean precision over IoU thresholds 0.5 to 0.95.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"masks":     masksProperty(),
					"name":      nameProperty(),
					"channel":   channelProperty(),
					"threshold": thresholdProperty(),
				},
				"required": []string{"path", "masks"},
			},
		},
		{
			Name:        "nuclei_segment",
			Description: "Build the multi-threshold segment tree of one channel and report its leaves and the trend-analysis boundary candidates. Optionally restrict the tree to segments containing a point.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProperty(),
					"channel": channelProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Optional X coordinate to filter segments by",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Optional Y coordinate to filter segments by",
					},
					"min_path": map[string]interface{}{
						"type":        "integer",
						"description": "Prune leaves with a branch path of at most this length. Defaults to the configured value",
					},
					"smooth_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian smoothing radius applied before the sweep. Defaults to the configured value",
					},
					"dump": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a text rendering of the tree",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "nuclei_train",
			Description: "Find the channel and global threshold that best reproduce ground-truth masks, optionally saving the model as YAML.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"masks": masksProperty(),
					"name":  nameProperty(),
					"save_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the trained model",
					},
				},
				"required": []string{"path", "masks"},
			},
		},
		{
			Name:        "nuclei_predict",
			Description: "Apply the most similar stored threshold model to an image and return its run-length masks, or the mean candidate threshold when no model is similar enough.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"models": map[string]interface{}{
						"type":        "string",
						"description": "Directory of stored models",
					},
					"name": nameProperty(),
				},
				"required": []string{"path", "models"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
