package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/nuclei-tools-mcp/internal/channel"
	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/iou"
	"github.com/ironsheep/nuclei-tools-mcp/internal/model"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
	"github.com/ironsheep/nuclei-tools-mcp/internal/rle"
	"github.com/ironsheep/nuclei-tools-mcp/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "nuclei_channels", "nuclei_segment").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailure, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	s.logf("tool call: %s", name)
	switch name {
	case "nuclei_channels":
		return s.handleChannels(args)
	case "nuclei_components":
		return s.handleComponents(args)
	case "nuclei_encode":
		return s.handleEncode(args)
	case "nuclei_score":
		return s.handleScore(args)
	case "nuclei_segment":
		return s.handleSegment(args)
	case "nuclei_train":
		return s.handleTrain(args)
	case "nuclei_predict":
		return s.handlePredict(args)
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

// === Shared helpers ===

func (s *Server) loadChannel(path, kind string) (*channel.Channel, error) {
	if kind == "" {
		kind = string(channel.Gray)
	}
	k, err := channel.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.cache.Channel(path, k)
}

// threshold binarizes c at t, or at the middle of its range when t is nil.
func threshold(c *channel.Channel, t *int) (*raster.Bitmap, int, bool, error) {
	level := (c.Min() + c.Max() + 1) / 2
	if t != nil {
		level = *t
	}
	if level < 0 || level > 255 {
		return nil, 0, false, fmt.Errorf("threshold %d out of range 0-255", level)
	}
	inverted := raster.Inverted(c, level)
	bm, err := raster.ThresholdInverted(c, level, inverted)
	return bm, level, inverted, err
}

func imageName(path, name string) string {
	if name != "" {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readMasks loads the records named name from a mask file for an image of
// the given height.
func (s *Server) readMasks(path, name string, height int) ([][]rle.Run, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open masks: %w", err)
	}
	defer f.Close()

	records, warnings, err := rle.ParseMasks(f, height, rle.ParseOptions{Name: name, Logger: s.logger})
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no records for %q in %s", rle.ErrNoRuns, name, path)
	}
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Error()
	}
	return rle.Masks(records), msgs, nil
}

// SnapshotResult is a base64 PNG rendering of a binary raster.
type SnapshotResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func snapshot(bm *raster.Bitmap, scale float64) (*SnapshotResult, error) {
	img := bm.Snapshot(scale)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	b := img.Bounds()
	return &SnapshotResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// === Channel Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

// ChannelSummary describes one channel of an image.
type ChannelSummary struct {
	Kind  channel.Kind  `json:"kind"`
	Stats channel.Stats `json:"stats"`
}

// ChannelsResult is returned by nuclei_channels.
type ChannelsResult struct {
	Image    *channel.ImageInfo `json:"image"`
	Channels []ChannelSummary   `json:"channels"`
}

func (s *Server) handleChannels(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	info, err := channel.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	chans, err := s.cache.Channels(a.Path)
	if err != nil {
		return nil, err
	}

	res := &ChannelsResult{Image: info}
	for _, c := range chans {
		res.Channels = append(res.Channels, ChannelSummary{Kind: c.Kind(), Stats: c.Stats()})
	}
	return res, nil
}

// === Component Handlers ===

type componentsArgs struct {
	Path          string  `json:"path"`
	Channel       string  `json:"channel"`
	Threshold     *int    `json:"threshold"`
	MinArea       int     `json:"min_area"`
	Polygons      bool    `json:"polygons"`
	Skeleton      bool    `json:"skeleton"`
	ROIWindow     int     `json:"roi_window"`
	ROIThreshold  float64 `json:"roi_threshold"`
	SnapshotScale float64 `json:"snapshot_scale"`
}

// ComponentsResult is returned by nuclei_components.
type ComponentsResult struct {
	Threshold  int                `json:"threshold"`
	Inverted   bool               `json:"inverted"`
	Foreground int                `json:"foreground_pixels"`
	Count      int                `json:"count"`
	Components []raster.Component `json:"components"`
	Skeleton   []geometry.Line    `json:"skeleton,omitempty"`
	ROIs       []geometry.Rect    `json:"regions_of_interest,omitempty"`
	Snapshot   *SnapshotResult    `json:"snapshot,omitempty"`
}

func (s *Server) handleComponents(args json.RawMessage) (interface{}, error) {
	var a componentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ROIThreshold == 0 {
		a.ROIThreshold = 1
	}
	c, err := s.loadChannel(a.Path, a.Channel)
	if err != nil {
		return nil, err
	}
	bm, level, inverted, err := threshold(c, a.Threshold)
	if err != nil {
		return nil, err
	}

	res := &ComponentsResult{Threshold: level, Inverted: inverted, Foreground: bm.Area()}
	for _, comp := range bm.PolyComponents() {
		if comp.Area <= a.MinArea {
			continue
		}
		if !a.Polygons {
			comp.Polygon = nil
		}
		res.Components = append(res.Components, comp)
	}
	res.Count = len(res.Components)

	if a.Skeleton {
		res.Skeleton = bm.Thin().Segments()
	}
	if a.ROIWindow > 0 {
		res.ROIs = bm.RegionsOfInterest(a.ROIWindow, a.ROIThreshold)
	}
	if a.SnapshotScale > 0 {
		if res.Snapshot, err = snapshot(bm, a.SnapshotScale); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// === Encoding Handlers ===

type encodeArgs struct {
	Path      string `json:"path"`
	Channel   string `json:"channel"`
	Threshold *int   `json:"threshold"`
	Name      string `json:"name"`
	MinSize   *int   `json:"min_size"`
	Header    bool   `json:"header"`
}

// EncodeResult is returned by nuclei_encode.
type EncodeResult struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Inverted  bool   `json:"inverted"`
	Masks     int    `json:"masks"`
	Text      string `json:"text"`
}

func (s *Server) handleEncode(args json.RawMessage) (interface{}, error) {
	var a encodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	minSize := s.cfg.Encoding.MinMaskSize
	if a.MinSize != nil {
		minSize = *a.MinSize
	}
	c, err := s.loadChannel(a.Path, a.Channel)
	if err != nil {
		return nil, err
	}
	bm, level, inverted, err := threshold(c, a.Threshold)
	if err != nil {
		return nil, err
	}

	name := imageName(a.Path, a.Name)
	var buf bytes.Buffer
	if a.Header {
		if err := rle.WriteHeader(&buf); err != nil {
			return nil, err
		}
	}
	n, err := rle.WriteMasks(&buf, name, rle.Encode(bm), minSize)
	if err != nil {
		return nil, err
	}
	return &EncodeResult{Name: name, Threshold: level, Inverted: inverted, Masks: n, Text: buf.String()}, nil
}

// === Scoring Handlers ===

type scoreArgs struct {
	Path      string `json:"path"`
	Masks     string `json:"masks"`
	Name      string `json:"name"`
	Channel   string `json:"channel"`
	Threshold *int   `json:"threshold"`
}

// ScoreResult is returned by nuclei_score.
type ScoreResult struct {
	Name      string      `json:"name"`
	Threshold int         `json:"threshold"`
	Inverted  bool        `json:"inverted"`
	Objects   int         `json:"objects"`
	Precision float64     `json:"precision"`
	Scores    []iou.Score `json:"scores"`
	Warnings  []string    `json:"warnings,omitempty"`
}

func (s *Server) handleScore(args json.RawMessage) (interface{}, error) {
	var a scoreArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := s.loadChannel(a.Path, a.Channel)
	if err != nil {
		return nil, err
	}
	name := imageName(a.Path, a.Name)
	masks, warnings, err := s.readMasks(a.Masks, name, c.Height())
	if err != nil {
		return nil, err
	}
	e, err := iou.New(c.Width(), c.Height(), masks)
	if err != nil {
		return nil, err
	}
	bm, level, inverted, err := threshold(c, a.Threshold)
	if err != nil {
		return nil, err
	}
	scores, err := e.Scores(bm)
	if err != nil {
		return nil, err
	}

	res := &ScoreResult{
		Name:      name,
		Threshold: level,
		Inverted:  inverted,
		Objects:   e.Len(),
		Scores:    scores,
		Warnings:  warnings,
	}
	for _, sc := range scores {
		res.Precision += sc.Precision
	}
	res.Precision /= float64(len(scores))
	return res, nil
}

// === Segmentation Handlers ===

type segmentArgs struct {
	Path         string   `json:"path"`
	Channel      string   `json:"channel"`
	X            *int     `json:"x"`
	Y            *int     `json:"y"`
	MinPath      *int     `json:"min_path"`
	SmoothRadius *float64 `json:"smooth_radius"`
	Dump         bool     `json:"dump"`
}

// SegmentSummary describes one segment of the tree.
type SegmentSummary struct {
	ID        int            `json:"id"`
	Threshold int            `json:"threshold"`
	Depth     int            `json:"depth"`
	Region    segment.Region `json:"region"`
}

// BoundaryResult is one trend-analysis candidate.
type BoundaryResult struct {
	Leaf     int              `json:"leaf"`
	Boundary SegmentSummary   `json:"boundary"`
	Best     segment.Fit      `json:"best"`
	Strong   bool             `json:"strong"`
	Outline  geometry.Polygon `json:"outline,omitempty"`
}

// SegmentResult is returned by nuclei_segment.
type SegmentResult struct {
	Inverted   bool             `json:"inverted"`
	Layers     int              `json:"layers"`
	Segments   int              `json:"segments"`
	Leaves     []SegmentSummary `json:"leaves"`
	Positive   int              `json:"positive_fits"`
	Negative   int              `json:"negative_fits"`
	Candidates []BoundaryResult `json:"candidates"`
	Dump       string           `json:"dump,omitempty"`
}

func summarize(tree *segment.Tree, id int) SegmentSummary {
	seg, _ := tree.Segment(id)
	return SegmentSummary{ID: seg.ID, Threshold: seg.Threshold, Depth: seg.Depth, Region: seg.Region}
}

func (s *Server) handleSegment(args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if (a.X == nil) != (a.Y == nil) {
		return nil, errors.New("x and y must be given together")
	}
	c, err := s.loadChannel(a.Path, a.Channel)
	if err != nil {
		return nil, err
	}

	radius := s.cfg.Channel.SmoothRadius
	if a.SmoothRadius != nil {
		radius = *a.SmoothRadius
	}
	opts := s.cfg.Segmentation
	opts.Logger = s.logger
	if a.MinPath != nil {
		opts.MinPath = *a.MinPath
	}

	tree, err := segment.Build(c.Smooth(radius), opts)
	if err != nil {
		return nil, err
	}
	if a.X != nil {
		tree = tree.Filter(*a.X, *a.Y)
	}
	analysis := tree.Analyze()

	res := &SegmentResult{
		Inverted: tree.Inverted(),
		Layers:   len(tree.Layers()),
		Segments: tree.Len() - 1,
		Positive: analysis.Positive,
		Negative: analysis.Negative,
	}
	for _, id := range tree.Leaves() {
		res.Leaves = append(res.Leaves, summarize(tree, id))
	}
	for _, cand := range analysis.Candidates {
		b := BoundaryResult{
			Leaf:     cand.Leaf,
			Boundary: summarize(tree, cand.Boundary),
			Best:     cand.Best,
			Strong:   cand.Strong,
		}
		if poly, err := tree.DominantPoints(cand.Boundary, 3, 30); err == nil {
			b.Outline = poly
		}
		res.Candidates = append(res.Candidates, b)
	}
	if a.Dump {
		var buf bytes.Buffer
		if err := tree.Dump(&buf); err != nil {
			return nil, err
		}
		res.Dump = buf.String()
	}
	return res, nil
}

// === Model Handlers ===

type trainArgs struct {
	Path     string `json:"path"`
	Masks    string `json:"masks"`
	Name     string `json:"name"`
	SavePath string `json:"save_path"`
}

// TrainResult is returned by nuclei_train.
type TrainResult struct {
	Model    *model.ThresholdModel `json:"model"`
	Saved    string                `json:"saved,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

func (s *Server) handleTrain(args json.RawMessage) (interface{}, error) {
	var a trainArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	chans, err := s.cache.Channels(a.Path)
	if err != nil {
		return nil, err
	}
	name := imageName(a.Path, a.Name)
	w, h := chans[0].Width(), chans[0].Height()
	masks, warnings, err := s.readMasks(a.Masks, name, h)
	if err != nil {
		return nil, err
	}
	e, err := iou.New(w, h, masks)
	if err != nil {
		return nil, err
	}

	m, err := model.Train(chans, e, model.TrainOptions{Name: name, Logger: s.logger})
	if err != nil {
		return nil, err
	}
	res := &TrainResult{Model: m, Warnings: warnings}
	if a.SavePath != "" {
		if err := model.SaveFile(a.SavePath, m); err != nil {
			return nil, err
		}
		res.Saved = a.SavePath
	}
	return res, nil
}

type predictArgs struct {
	Path   string `json:"path"`
	Models string `json:"models"`
	Name   string `json:"name"`
}

// CandidateSummary describes one ranked model.
type CandidateSummary struct {
	Model      string       `json:"model"`
	Channel    channel.Kind `json:"channel"`
	Threshold  int          `json:"threshold"`
	Similarity float64      `json:"similarity"`
	Score      float64      `json:"score"`
}

// PredictResult is returned by nuclei_predict.
type PredictResult struct {
	Name       string             `json:"name"`
	Trusted    bool               `json:"trusted"`
	Threshold  float64            `json:"threshold"`
	Masks      int                `json:"masks"`
	Text       string             `json:"text"`
	Candidates []CandidateSummary `json:"candidates"`
}

func (s *Server) handlePredict(args json.RawMessage) (interface{}, error) {
	var a predictArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	models, err := model.LoadDir(a.Models, s.logger)
	if err != nil {
		return nil, err
	}
	chans, err := s.cache.Channels(a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.Model
	opts.Logger = s.logger
	p, err := model.Predict(chans, models, opts)
	if err != nil && !errors.Is(err, model.ErrUntrusted) {
		return nil, err
	}

	name := imageName(a.Path, a.Name)
	res := &PredictResult{Name: name, Trusted: p.Trusted, Threshold: p.Threshold}
	for _, c := range p.Candidates {
		res.Candidates = append(res.Candidates, CandidateSummary{
			Model:      c.Model.Name,
			Channel:    c.Model.Channel,
			Threshold:  c.Model.Threshold,
			Similarity: c.Similarity,
			Score:      c.Score,
		})
	}

	var buf bytes.Buffer
	if p.Trusted {
		res.Masks, err = rle.WriteMasks(&buf, name, rle.Encode(p.Mask), s.cfg.Encoding.MinMaskSize)
		if err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintf(&buf, "%s,\n", name)
	}
	res.Text = buf.String()
	return res, nil
}
