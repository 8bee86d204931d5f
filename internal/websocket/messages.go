package websocket

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // frame decoders
	_ "image/png"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeFrame      MessageType = "frame"
	MessageTypeEndSession MessageType = "end_session"
	MessageTypeAnalysis   MessageType = "analysis"
	MessageTypeSummary    MessageType = "summary"
	MessageTypeError      MessageType = "error"
)

// BaseMessage defines the common structure for all client messages
type BaseMessage struct {
	Type MessageType `json:"type" validate:"required,oneof=frame end_session"`
}

// FrameMessage carries one camera frame as a data URL or bare base64 image
type FrameMessage struct {
	BaseMessage
	Frame string `json:"frame" validate:"required"`
}

// EndSessionMessage asks for the session summary
type EndSessionMessage struct {
	BaseMessage
}

// ServerMessage is every message the server sends
type ServerMessage struct {
	Type    MessageType `json:"type"`
	Data    any         `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// MessageValidator parses and validates client messages
type MessageValidator struct {
	validate *validator.Validate
}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{validate: validator.New()}
}

// ValidateMessage returns *FrameMessage or *EndSessionMessage
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (any, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	if err := v.validate.Struct(&base); err != nil {
		return nil, fmt.Errorf("unsupported message type: %q", base.Type)
	}

	switch base.Type {
	case MessageTypeFrame:
		var msg FrameMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid frame message: %w", err)
		}
		if err := v.validate.Struct(&msg); err != nil {
			return nil, fmt.Errorf("invalid frame message: %w", err)
		}
		return &msg, nil
	default:
		return &EndSessionMessage{BaseMessage: base}, nil
	}
}

// DecodeFrame decodes a "data:image/...;base64," URL or bare base64 JPEG/PNG
func DecodeFrame(payload string) (image.Image, error) {
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, errors.New("frame data URL is not base64 encoded")
		}
		payload = payload[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid frame encoding: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot decode frame: %w", err)
	}
	return img, nil
}

// CreateAnalysisMessage wraps one frame's analysis
func CreateAnalysisMessage(data any) *ServerMessage {
	return &ServerMessage{Type: MessageTypeAnalysis, Data: data}
}

// CreateSummaryMessage wraps the session summary
func CreateSummaryMessage(data any) *ServerMessage {
	return &ServerMessage{Type: MessageTypeSummary, Data: data}
}

// CreateErrorMessage creates an error message
func CreateErrorMessage(message string) *ServerMessage {
	return &ServerMessage{Type: MessageTypeError, Message: message}
}
