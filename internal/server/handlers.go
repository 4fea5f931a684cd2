package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/store"
)

// HighlightRequest is a highlighted passage sent by the client.
type HighlightRequest struct {
	Text    string `json:"text"`
	ID      string `json:"id,omitempty"`
	PageKey string `json:"pageKey,omitempty"`
	Color   string `json:"color,omitempty"`
	URL     string `json:"url,omitempty"`
}

// AnalyzeResponse is the body of a successful /analyze call.
type AnalyzeResponse struct {
	OK     bool         `json:"ok"`
	Text   string       `json:"text"`
	ID     string       `json:"id,omitempty"`
	Result model.Result `json:"result"`
}

// BatchItem is one entry of a /batch-analyze response. Exactly one of
// Result and Error is set.
type BatchItem struct {
	HighlightRequest
	Result *model.Result `json:"result"`
	Error  string        `json:"error,omitempty"`
}

// batchConcurrency bounds how many batch entries are classified at once.
const batchConcurrency = 8

type batchRequest struct {
	Highlights []HighlightRequest `json:"highlights"`
}

type passageRequest struct {
	Text string `json:"text"`
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"ok":        true,
		"mode":      s.cls.Mode(),
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			body["ok"] = false
			body["store"] = "down"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["store"] = "ok"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) analyze(c *gin.Context) {
	var req HighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, "text is required")
		return
	}
	if req.URL == "" {
		req.URL = c.GetHeader("X-Page-URL")
	}

	res, err := s.cls.Classify(req.Text)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	s.record(c.Request.Context(), req, res)

	c.JSON(http.StatusOK, AnalyzeResponse{OK: true, Text: req.Text, ID: req.ID, Result: res})
}

func (s *Server) batchAnalyze(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Highlights == nil {
		fail(c, http.StatusBadRequest, "highlights must be an array")
		return
	}

	ctx := c.Request.Context()
	items := make([]BatchItem, len(req.Highlights))
	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, h := range req.Highlights {
		g.Go(func() error {
			items[i] = s.analyzeItem(ctx, h)
			return nil
		})
	}
	_ = g.Wait()
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": items})
}

// analyzeItem classifies one batch entry. Failures are reported in the
// item, never as a request error.
func (s *Server) analyzeItem(ctx context.Context, h HighlightRequest) BatchItem {
	item := BatchItem{HighlightRequest: h}
	if strings.TrimSpace(h.Text) == "" {
		item.Error = "text is required"
		return item
	}
	res, err := s.cls.Classify(h.Text)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Result = &res
	s.record(ctx, h, res)
	return item
}

func (s *Server) analyzePassage(c *gin.Context) {
	var req passageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, "text is required")
		return
	}
	results, err := s.cls.ClassifyPassage(req.Text)
	if err != nil {
		s.logger.Error("passage analysis failed", "error", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	for _, r := range results {
		s.forwardResult(c.Request.Context(), r)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": results})
}

// record persists and forwards an analysis. Neither failure reaches the
// client.
func (s *Server) record(ctx context.Context, req HighlightRequest, res model.Result) {
	if s.store != nil {
		_, err := s.store.Save(ctx, store.Highlight{
			ID:         req.ID,
			PageKey:    req.PageKey,
			URL:        req.URL,
			Text:       req.Text,
			Color:      req.Color,
			Fallacy:    res.Fallacy,
			Confidence: res.Confidence,
		})
		if err != nil {
			s.logger.Warn("highlight not saved", "id", req.ID, "error", err)
		}
	}
	s.forwardResult(ctx, res)
}

func (s *Server) forwardResult(ctx context.Context, res model.Result) {
	if s.forward == nil {
		return
	}
	if err := s.forward.Write(context.WithoutCancel(ctx), res); err != nil {
		s.logger.Warn("result forwarding failed", "error", err)
	}
}

func (s *Server) createHighlight(c *gin.Context) {
	var req HighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, "text is required")
		return
	}
	if req.URL == "" {
		req.URL = c.GetHeader("X-Page-URL")
	}
	res, err := s.cls.Classify(req.Text)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	h, err := s.store.Save(c.Request.Context(), store.Highlight{
		ID:         req.ID,
		PageKey:    req.PageKey,
		URL:        req.URL,
		Text:       req.Text,
		Color:      req.Color,
		Fallacy:    res.Fallacy,
		Confidence: res.Confidence,
	})
	if err != nil {
		s.logger.Error("highlight save failed", "error", err)
		fail(c, http.StatusInternalServerError, "could not save highlight")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "highlight": h, "result": res})
}

func (s *Server) listHighlights(c *gin.Context) {
	hs, err := s.store.List(c.Request.Context(), c.Query("pageKey"))
	if err != nil {
		s.logger.Error("highlight list failed", "error", err)
		fail(c, http.StatusInternalServerError, "could not list highlights")
		return
	}
	if hs == nil {
		hs = []store.Highlight{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "highlights": hs})
}

func (s *Server) getHighlight(c *gin.Context) {
	h, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "highlight not found")
		return
	}
	if err != nil {
		s.logger.Error("highlight get failed", "error", err)
		fail(c, http.StatusInternalServerError, "could not load highlight")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "highlight": h})
}

func (s *Server) deleteHighlight(c *gin.Context) {
	err := s.store.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "highlight not found")
		return
	}
	if err != nil {
		s.logger.Error("highlight delete failed", "error", err)
		fail(c, http.StatusInternalServerError, "could not delete highlight")
		return
	}
	c.Status(http.StatusNoContent)
}
