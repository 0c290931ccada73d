package emotionHandler

import (
	"context"
	"time"

	"EmotionLens/internal/api/emotion"
	contextPkg "EmotionLens/pkg/context"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// handleCaptureWebSocket runs the pipeline on every received frame. Text
// messages carry base64 (optionally a data URL), binary messages raw bytes.
// A failed frame is reported and the connection stays open.
func (h *EmotionHandler) handleCaptureWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals("X-Request-ID").(string)
	logger := h.log.WithField("request_id", requestID)

	logger.Info("Capture WebSocket client connected")
	defer logger.Info("Capture WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Capture WebSocket error: %v", err)
			} else {
				logger.Info("Capture WebSocket connection closed")
			}
			break
		}

		var frame []byte
		switch messageType {
		case websocket.BinaryMessage:
			frame = message
		case websocket.TextMessage:
			frame, err = h.utils.DecodeBase64Image(string(message))
			if err != nil {
				if !h.writeFrame(c, logger, map[string]string{"error": emotion.ErrInvalidImage.Error()}) {
					return
				}
				continue
			}
		default:
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		if !h.writeFrame(c, logger, h.processFrame(requestID, frame)) {
			return
		}
	}
}

func (h *EmotionHandler) processFrame(requestID string, frame []byte) interface{} {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), detectTimeout)
	defer cancel()

	result, err := h.emotionService.DetectEmotion(ctx, emotion.DetectInput{
		Image:  frame,
		Source: emotion.SourceWebSocket,
	})
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Debug("Error processing capture frame")
		return map[string]string{"error": err.Error()}
	}

	return emotion.FrameResponse{Faces: result.Faces}
}

func (h *EmotionHandler) writeFrame(c *websocket.Conn, logger *logrus.Entry, payload interface{}) bool {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		logger.Errorf("Error setting write deadline: %v", err)
		return false
	}

	if err := c.WriteJSON(payload); err != nil {
		logger.Errorf("Error writing JSON response: %v", err)
		return false
	}

	if err := c.SetWriteDeadline(time.Time{}); err != nil {
		logger.Errorf("Error resetting write deadline: %v", err)
		return false
	}

	return true
}
