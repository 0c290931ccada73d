package emotion

import (
	"time"

	"EmotionLens/internal/inference"
)

const (
	SourceHTTP      = "http"
	SourceWebSocket = "ws"
	SourceCLI       = "cli"
)

type DetectEmotionRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// DetectInput is one frame handed to the service.
type DetectInput struct {
	Image   []byte
	Source  string
	Persist bool
}

type DetectEmotionResponse struct {
	Faces         []inference.EmotionResult `json:"faces"`
	SelectionMode string                    `json:"selection_mode"`
	RequestID     string                    `json:"request_id"`
	Cached        bool                      `json:"cached"`
}

type FrameResponse struct {
	Faces []inference.EmotionResult `json:"faces"`
}

type ReadinessResponse struct {
	Status         string `json:"status"`
	ModelLoaded    bool   `json:"model_loaded"`
	DetectorLoaded bool   `json:"detector_loaded"`
	Profile        string `json:"profile"`
	SelectionMode  string `json:"selection_mode"`
	Error          string `json:"error,omitempty"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

type HistoryQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

type HistoryItem struct {
	ID            string                    `json:"id"`
	RequestID     string                    `json:"request_id"`
	Source        string                    `json:"source"`
	Profile       string                    `json:"profile"`
	SelectionMode string                    `json:"selection_mode"`
	FaceCount     int                       `json:"face_count"`
	TopEmotion    string                    `json:"top_emotion,omitempty"`
	TopConfidence float64                   `json:"top_confidence,omitempty"`
	Faces         []inference.EmotionResult `json:"faces"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type HistoryResponse struct {
	Items  []HistoryItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
