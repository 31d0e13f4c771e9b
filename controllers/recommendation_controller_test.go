package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type stubRecommender struct {
	rec       *services.Recommendation
	err       error
	gotUser   uint
	gotQuery  string
	callCount int
}

func (s *stubRecommender) Recommend(_ context.Context, userID uint, query string) (*services.Recommendation, error) {
	s.callCount++
	s.gotUser, s.gotQuery = userID, query
	return s.rec, s.err
}

func newRecommendRouter(r MenuRecommender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/recommend-menu", func(c *gin.Context) {
		c.Set("userID", uint(10))
		c.Next()
	}, NewRecommendationController(r).RecommendMenu)
	return router
}

func postRecommend(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/recommend-menu", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecommendMenu_OK(t *testing.T) {
	stub := &stubRecommender{rec: &services.Recommendation{
		Status: services.StatusOK,
		Text:   "순두부찌개를 추천합니다.",
	}}
	w := postRecommend(newRecommendRouter(stub), `{"query":"얼큰한 국물"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["recommendation"] != "순두부찌개를 추천합니다." || body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
	if stub.gotUser != 10 || stub.gotQuery != "얼큰한 국물" {
		t.Fatalf("called with %d %q", stub.gotUser, stub.gotQuery)
	}
}

func TestRecommendMenu_NoCandidatesIsNotAnError(t *testing.T) {
	stub := &stubRecommender{rec: &services.Recommendation{Status: services.StatusNoSafeCandidates}}
	w := postRecommend(newRecommendRouter(stub), `{"query":"땅콩"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"no_safe_candidates"`) {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRecommendMenu_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: query is required", services.ErrValidation), http.StatusBadRequest},
		{"no profile", services.ErrProfileNotFound, http.StatusNotFound},
		{"upstream", fmt.Errorf("%w: generation: boom", services.ErrUpstream), http.StatusBadGateway},
		{"timeout", fmt.Errorf("%w: generation: %w", services.ErrUpstream, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"canceled", fmt.Errorf("%w: generation: %w", services.ErrUpstream, context.Canceled), 499},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRecommend(newRecommendRouter(&stubRecommender{err: tt.err}), `{"query":"x"}`)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(w.Body.String(), "db down") {
				t.Fatalf("internal error leaked: %s", w.Body.String())
			}
		})
	}
}

func TestRecommendMenu_BadBody(t *testing.T) {
	stub := &stubRecommender{}
	w := postRecommend(newRecommendRouter(stub), `{"query":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if stub.callCount != 0 {
		t.Fatal("recommender called on a malformed body")
	}
}
