package websocket

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t testing.TB, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestMessageValidator_ValidateMessage(t *testing.T) {
	validator := NewMessageValidator()

	tests := []struct {
		name    string
		message string
		want    MessageType
		wantErr bool
	}{
		{"frame", `{"type":"frame","frame":"abc"}`, MessageTypeFrame, false},
		{"end session", `{"type":"end_session"}`, MessageTypeEndSession, false},
		{"frame without payload", `{"type":"frame"}`, "", true},
		{"missing type", `{"frame":"abc"}`, "", true},
		{"unsupported type", `{"type":"analysis"}`, "", true},
		{"invalid json", `{"type":`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateMessage([]byte(tt.message))
			if tt.wantErr {
				if err == nil {
					t.Errorf("ValidateMessage() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateMessage() error = %v", err)
			}
			switch msg := got.(type) {
			case *FrameMessage:
				if tt.want != MessageTypeFrame || msg.Frame != "abc" {
					t.Errorf("got frame %+v, want %s", msg, tt.want)
				}
			case *EndSessionMessage:
				if tt.want != MessageTypeEndSession {
					t.Errorf("got end session, want %s", tt.want)
				}
			default:
				t.Errorf("unexpected message %T", got)
			}
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	pngB64 := encodePNG(t, 8, 6)

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	jpgB64 := base64.StdEncoding.EncodeToString(jpg.Bytes())

	tests := []struct {
		name    string
		payload string
		width   int
		wantErr bool
	}{
		{"png data url", "data:image/png;base64," + pngB64, 8, false},
		{"jpeg data url", "data:image/jpeg;base64," + jpgB64, 4, false},
		{"bare base64", pngB64, 8, false},
		{"not base64 data url", "data:image/png," + pngB64, 0, true},
		{"bad base64", "data:image/png;base64,!!!", 0, true},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello")), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeFrame(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && img.Bounds().Dx() != tt.width {
				t.Errorf("width = %d, want %d", img.Bounds().Dx(), tt.width)
			}
		})
	}
}

func TestServerMessageSerialization(t *testing.T) {
	tests := []struct {
		name string
		msg  *ServerMessage
		want string
	}{
		{"error", CreateErrorMessage("bad frame"), `{"type":"error","message":"bad frame"}`},
		{"summary", CreateSummaryMessage(map[string]int{"total_frames": 3}), `{"type":"summary","data":{"total_frames":3}}`},
		{"analysis", CreateAnalysisMessage(map[string]int{"frame_number": 1}), `{"type":"analysis","data":{"frame_number":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
