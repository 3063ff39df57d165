package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericErrorMessage = "Something went wrong"

// multipartOverhead is the room left for multipart headers and boundaries above the upload limit
const multipartOverhead int64 = 1 << 20

// analyzeURLRequest is the JSON body accepted in url mode
type analyzeURLRequest struct {
	YouTubeURL string `json:"youtubeUrl"`
}

// NewRouter builds the gin engine serving POST /analyze and the health check
func NewRouter(pipeline *Pipeline, mode InputMode, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	r.POST("/analyze", HandleAnalyze(pipeline, mode, logger))

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	return r
}

// HandleAnalyze runs the pipeline for one request in the configured input mode
func HandleAnalyze(pipeline *Pipeline, mode InputMode, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("Received POST /analyze", zap.String("mode", string(mode)))

		var req AnalysisRequest
		switch mode {
		case InputModeUpload:
			if limit := pipeline.uploadLimit(); limit > 0 {
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
			}
			fileHeader, err := c.FormFile("audio")
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					logger.Warn("Upload exceeds the size limit", zap.Int64("limit", tooLarge.Limit))
					c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Audio file exceeds the %d byte limit", pipeline.uploadLimit())})
					return
				}
				logger.Warn("Missing audio file in request", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is required"})
				return
			}
			src, err := fileHeader.Open()
			if err != nil {
				logger.Error("Opening uploaded file failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage, "details": err.Error()})
				return
			}
			defer src.Close()
			req = AnalysisRequest{Upload: src, UploadName: fileHeader.Filename}
		default:
			var body analyzeURLRequest
			if err := c.ShouldBindJSON(&body); err != nil || body.YouTubeURL == "" {
				logger.Warn("Missing YouTube URL in request body")
				c.JSON(http.StatusBadRequest, gin.H{"error": "YouTube URL is required"})
				return
			}
			req = AnalysisRequest{YouTubeURL: body.YouTubeURL}
		}

		// a started run is not abandoned when the client goes away
		ctx := context.WithoutCancel(c.Request.Context())

		resp, err := pipeline.Run(ctx, req)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, resp)
		logger.Info("Response sent to client")
	}
}

// writeError converts a pipeline error into the JSON error envelope
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusCode(err)
	if status == http.StatusBadRequest {
		var validationErr *ValidationError
		errors.As(err, &validationErr)
		logger.Warn("Rejected request", zap.Error(err))
		c.JSON(status, gin.H{"error": validationErr.Message})
		return
	}

	logger.Error("An error occurred", zap.Error(err))
	c.JSON(status, gin.H{"error": genericErrorMessage, "details": err.Error()})
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func Serve(ctx context.Context, handler http.Handler, port int, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
