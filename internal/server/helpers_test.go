package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"testing"

	"github.com/ironsheep/omr-grader/internal/config"
	"github.com/ironsheep/omr-grader/internal/logging"
)

// newTestServer returns a server tuned for the sharp single-column sheets
// written by writeSheet.
func newTestServer() *Server {
	settings := config.Default()
	settings.Grading.BlurKernelSize = 0
	settings.Grading.NumColumns = 1
	return New(settings, logging.Discard())
}

// writeSheet saves a single-column five-alternative sheet with one filled
// bubble per entry of answers and returns its path.
func writeSheet(t *testing.T, answers ...int) string {
	t.Helper()

	const radius, spacing = 12, 40
	img := image.NewRGBA(image.Rect(0, 0, 340, 160+50*len(answers)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for q, answer := range answers {
		for alt := 0; alt < 5; alt++ {
			cx, cy := 40+alt*spacing+radius, 80+q*50+radius
			inner := radius - 3
			if alt == answer {
				inner = 0
			}
			for y := cy - radius; y <= cy+radius; y++ {
				for x := cx - radius; x <= cx+radius; x++ {
					d := (x-cx)*(x-cx) + (y-cy)*(y-cy)
					if d <= radius*radius && (inner == 0 || d > inner*inner) {
						img.Set(x, y, color.Black)
					}
				}
			}
		}
	}
	return writePNG(t, img)
}

// createTestImageFile writes a solid-color PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return writePNG(t, img)
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sheet-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

// callTool issues a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult decodes the JSON text content of a successful tool response.
func toolResult(t *testing.T, resp *MCPResponse) map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result has type %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content = %v", result["content"])
	}
	text, _ := content[0]["text"].(string)

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("tool text is not JSON: %v", err)
	}
	return out
}
