package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// RenderRequest represents the render parameters of a request
type RenderRequest struct {
	Mode     renderer.Mode
	Format   output.Format
	Gamma    float64
	MaxDepth int  // Negative keeps the scene's own
	Upload   bool // Store the image in S3 instead of returning it
}

// UploadResponse is returned when a render is uploaded instead of streamed back
type UploadResponse struct {
	Key          string  `json:"key"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	TotalRays    int     `json:"totalRays"`
	ElapsedMs    int64   `json:"elapsedMs"`
	AvgLuminance float64 `json:"avgLuminance"`
}

// handleRender renders a scene and returns the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	requested, err := s.loadScene(w, r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	logger := s.logger.With("scene", requested.ID)
	raytracer, err := renderer.NewRaytracer(requested.Scene, requested.Camera, renderer.Options{
		Workers:  s.config.Render.EffectiveWorkers(),
		TileSize: s.config.Render.TileSize,
		MaxDepth: req.MaxDepth,
		Gamma:    core.Real(req.Gamma),
		Mode:     req.Mode,
		Logger:   logger,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	// Use request context to detect client disconnection
	result, err := raytracer.Render(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("client disconnected during render")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, result.Image, req.Format); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if !req.Upload {
		w.Header().Set("Content-Type", req.Format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("X-Render-Rays", strconv.Itoa(result.Stats.TotalRays))
		w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(result.Stats.Duration.Milliseconds(), 10))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	if s.publisher == nil {
		s.writeError(w, statusFor(output.ErrS3Disabled), output.ErrS3Disabled)
		return
	}
	name := fmt.Sprintf("%s-%d.%s", objectName(requested.ID), time.Now().UnixNano(), req.Format)
	key, err := s.publisher.Upload(r.Context(), name, buf.Bytes(), req.Format.ContentType())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	logger.Info("uploaded render", "key", key)

	bounds := result.Image.Bounds()
	writeJSON(w, http.StatusOK, UploadResponse{
		Key:          key,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		TotalRays:    result.Stats.TotalRays,
		ElapsedMs:    result.Stats.Duration.Milliseconds(),
		AvgLuminance: renderer.CalculateAverageLuminance(result.Image),
	})
}

// parseRenderRequest parses the render parameters, falling back to the server configuration
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{}

	mode := query.Get("mode")
	if mode == "" {
		mode = s.config.Render.Mode
	}
	var err error
	if req.Mode, err = renderer.ParseMode(mode); err != nil {
		return nil, err
	}

	format := query.Get("format")
	if format == "" {
		format = string(output.PNG)
	}
	if req.Format, err = output.ParseFormat(format); err != nil {
		return nil, err
	}

	if req.Gamma, err = parseFloatParam(query, "gamma", s.config.Render.Gamma, 0.1, 10); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", s.config.Render.MaxDepth, -1, scene.MaxDepthLimit); err != nil {
		return nil, err
	}

	if upload := query.Get("upload"); upload != "" {
		if req.Upload, err = strconv.ParseBool(upload); err != nil {
			return nil, fmt.Errorf("invalid upload: %s", upload)
		}
	}

	return req, nil
}

// objectName turns a scene ID into a safe object name prefix
func objectName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}
