package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/sirupsen/logrus"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sheet_load", "sheet_grade").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Error codes beyond the JSON-RPC reserved range.
const (
	codeToolFailed = -32000
	codeNoMarks    = -32001
)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000,
// or -32001 when the sheet was readable but no bubbles were found.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		if errors.Is(err, grading.ErrNoMarksDetected) {
			return s.errorResponse(req.ID, codeNoMarks, "No marks detected", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "sheet_load":
		return s.handleSheetLoad(args)
	case "sheet_crop":
		return s.handleSheetCrop(args)
	case "sheet_grid_overlay":
		return s.handleSheetGridOverlay(args)
	case "sheet_binarize":
		return s.handleSheetBinarize(args)
	case "sheet_detect_marks":
		return s.handleSheetDetectMarks(ctx, args)
	case "sheet_grade":
		return s.handleSheetGrade(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// loadFrame returns the cached sheet at path, normalized with the server's
// frame settings.
func (s *Server) loadFrame(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.NormalizeFrame(img, s.settings.Frame)
}

// === Sheet Information ===

type sheetLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSheetLoad(args json.RawMessage) (interface{}, error) {
	var a sheetLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	// An operator rescans to the same path between calls.
	s.cache.Evict(a.Path)
	info, err := imaging.LoadSheetInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"path": a.Path, "cached": s.cache.Len()}).Debug("sheet loaded")
	return info, nil
}

// === Region Operations ===

type sheetCropArgs struct {
	Path string `json:"path"`
	imaging.Region
	Scale float64 `json:"scale"`
}

func (s *Server) handleSheetCrop(args json.RawMessage) (interface{}, error) {
	var a sheetCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.Region, a.Scale)
}

type sheetGridArgs struct {
	Path            string `json:"path"`
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

// handleSheetGridOverlay draws the grid on the raw sheet, not the normalized
// frame, because frame.roi is expressed in raw sheet coordinates.
func (s *Server) handleSheetGridOverlay(args json.RawMessage) (interface{}, error) {
	var a sheetGridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	opts := imaging.GridOptions{Spacing: a.GridSpacing, ShowCoordinates: true}
	if a.ShowCoordinates != nil {
		opts.ShowCoordinates = *a.ShowCoordinates
	}
	if a.GridColor != "" {
		c, err := imaging.ParseHexColor(a.GridColor)
		if err != nil {
			return nil, err
		}
		opts.Color = c
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.GridOverlay(img, opts)
}

// === Recognition ===

// sheetGradingArgs carries a path plus optional grading overrides. Unset
// fields keep the server's configured values because decoding starts from a
// copy of them.
type sheetGradingArgs struct {
	Path string `json:"path"`
	grading.Config
}

func (s *Server) gradingArgs(args json.RawMessage) (*sheetGradingArgs, error) {
	a := &sheetGradingArgs{Config: s.settings.Grading}
	if err := decodeArgs(args, a); err != nil {
		return nil, err
	}
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

type binarizeResult struct {
	Threshold        uint8   `json:"threshold"`
	ForegroundPixels int     `json:"foreground_pixels"`
	ForegroundRatio  float64 `json:"foreground_ratio"`
	imaging.EncodedImage
}

func (s *Server) handleSheetBinarize(args json.RawMessage) (interface{}, error) {
	a, err := s.gradingArgs(args)
	if err != nil {
		return nil, err
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	mask, err := imaging.Binarize(img, a.Config.BinarizeOptions())
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeImage(mask, imaging.FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}

	fg := 0
	for _, v := range mask.Pix {
		if v == imaging.Foreground {
			fg++
		}
	}
	return &binarizeResult{
		Threshold:        mask.Threshold,
		ForegroundPixels: fg,
		ForegroundRatio:  float64(fg) / float64(len(mask.Pix)),
		EncodedImage:     *enc,
	}, nil
}

type questionSummary struct {
	Number       int       `json:"number"`
	Alternatives int       `json:"alternatives"`
	Answered     bool      `json:"answered"`
	Letter       string    `json:"letter,omitempty"`
	Fill         []float64 `json:"fill,omitempty"`
}

type detectMarksResult struct {
	Threshold uint8             `json:"threshold"`
	Regions   int               `json:"regions"`
	Count     int               `json:"count"`
	Marks     []detection.Mark  `json:"marks"`
	Questions []questionSummary `json:"questions"`
}

func (s *Server) handleSheetDetectMarks(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := s.gradingArgs(args)
	if err != nil {
		return nil, err
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	rec, err := grading.Recognize(ctx, img, a.Config, grading.WithLogger(s.log))
	if err != nil {
		return nil, err
	}

	summaries := make([]questionSummary, len(rec.Questions))
	for i, q := range rec.Questions {
		res := rec.Answers[i]
		qs := questionSummary{
			Number:       i + 1,
			Alternatives: len(q),
			Answered:     res.Answered,
			Fill:         res.Fill,
		}
		if res.Answered {
			qs.Letter = grading.LetterFor(res.Index)
		}
		summaries[i] = qs
	}

	return &detectMarksResult{
		Threshold: rec.Mask.Threshold,
		Regions:   rec.Regions,
		Count:     len(rec.Marks),
		Marks:     rec.Marks,
		Questions: summaries,
	}, nil
}

// === Grading ===

type sheetGradeArgs struct {
	sheetGradingArgs

	// Answers maps question numbers to letters: {"1": "C", "2": "D"}.
	Answers grading.AnswerKey `json:"answers"`

	// AnswerString is the compact form, "CDDCE".
	AnswerString string `json:"answer_string"`

	// Format of the annotated image, "png" (default) or "jpeg".
	Format string `json:"format"`
}

type gradeResult struct {
	*grading.Result
	Score          string                `json:"score"`
	AnnotatedImage *imaging.EncodedImage `json:"annotated_image"`
}

func (s *Server) handleSheetGrade(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a := &sheetGradeArgs{sheetGradingArgs: sheetGradingArgs{Config: s.settings.Grading}}
	if err := decodeArgs(args, a); err != nil {
		return nil, err
	}

	key, err := a.answerKey()
	if err != nil {
		return nil, err
	}
	palette, err := s.settings.Palette.Parse()
	if err != nil {
		return nil, err
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := grading.Grade(ctx, img, key, a.Config,
		grading.WithLogger(s.log),
		grading.WithPalette(palette),
	)
	if err != nil {
		return nil, err
	}

	enc, err := imaging.EncodeImage(res.Annotated, a.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotated sheet: %w", err)
	}
	return &gradeResult{Result: res, Score: res.Score(), AnnotatedImage: enc}, nil
}

func (a *sheetGradeArgs) answerKey() (grading.AnswerKey, error) {
	switch {
	case len(a.Answers) > 0 && a.AnswerString != "":
		return nil, fmt.Errorf("%w: give answers or answer_string, not both", grading.ErrInvalidAnswerKey)
	case len(a.Answers) > 0:
		return a.Answers, nil
	case a.AnswerString != "":
		return grading.ParseAnswerString(a.AnswerString)
	default:
		return nil, fmt.Errorf("%w: answers or answer_string is required", grading.ErrInvalidAnswerKey)
	}
}
