package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository/memory"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type APISuite struct {
	suite.Suite
	engine *gin.Engine
	admin  string
	member string
}

func TestAPISuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	repos := memory.NewRepositories()
	metrics := pkg.NewMetrics()
	svc := service.New(service.Options{
		Repos:        repos,
		Tokens:       pkg.NewTokenManager("access", "refresh", time.Minute, time.Hour),
		Metrics:      metrics,
		Logger:       zerolog.Nop(),
		IsAdminEmail: func(email string) bool { return email == "admin@ows.test" },
		HashCost:     bcrypt.MinCost,
	})
	s.engine = InitRouter(Deps{Services: svc, Metrics: metrics, Logger: zerolog.Nop(), Ping: repos.Ping})

	s.admin = s.signupAndLogin("admin@ows.test", "Admin")
	s.member = s.signupAndLogin("ana@ows.test", "Ana")
}

func (s *APISuite) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (s *APISuite) signupAndLogin(email, name string) string {
	w, _ := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": email, "password": "password1", "name": name})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	w, body := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "password1"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return body["AccessToken"].(string)
}

func (s *APISuite) createSpain() (communityID, channelID float64) {
	w, body := s.do(http.MethodPost, "/api/admin/communities", s.admin, gin.H{"name": "Spain", "flagEmoji": "🇪🇸"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	communityID = body["community"].(map[string]any)["id"].(float64)

	w, body = s.do(http.MethodPost, path("/api/admin/communities/%v/channels", communityID), s.admin, gin.H{"name": "general"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	channelID = body["channel"].(map[string]any)["id"].(float64)
	return communityID, channelID
}

func (s *APISuite) messages(channelID float64, token string) (*httptest.ResponseRecorder, []any) {
	w, body := s.do(http.MethodGet, path("/api/channels/%v/messages", channelID), token, nil)
	list, _ := body["list"].([]any)
	return w, list
}

func (s *APISuite) TestSpainHelloScenario() {
	communityID, channelID := s.createSpain()

	w, raw := s.do(http.MethodGet, path("/api/channels/%v/messages", channelID), s.member, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(true, raw["locked"])

	w, _ = s.messages(channelID, "")
	s.Equal(http.StatusForbidden, w.Code)

	w, joined := s.do(http.MethodPost, path("/api/community/%v/join", communityID), s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, joined["community"].(map[string]any)["memberCount"])

	w, _ = s.do(http.MethodPost, path("/api/channels/%v/messages", channelID), s.member, gin.H{"content": "hello"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, list := s.messages(channelID, s.member)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Len(list, 1)
	s.Equal("hello", list[0].(map[string]any)["content"])
	authorID := list[0].(map[string]any)["authorId"].(float64)

	w, _ = s.do(http.MethodPut, path("/api/admin/users/%v/block", authorID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	_, list = s.messages(channelID, s.admin)
	s.Empty(list)

	_, raw = s.do(http.MethodGet, path("/api/channels/%v/messages", channelID), s.member, nil)
	s.Equal(true, raw["blocked"])

	w, _ = s.do(http.MethodDelete, path("/api/admin/users/%v/block", authorID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	_, list = s.messages(channelID, s.admin)
	s.Require().Len(list, 1)
	s.Equal("hello", list[0].(map[string]any)["content"])
}

func (s *APISuite) TestParkBarsScenario() {
	w, body := s.do(http.MethodPost, "/api/spots/inbox", s.member, gin.H{"name": "Park Bars", "lat": 40.4, "lng": -3.7})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	id := body["submission"].(map[string]any)["id"].(float64)

	w, body = s.do(http.MethodGet, "/api/admin/spots/inbox", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["list"], 1)

	w, _ = s.do(http.MethodPost, path("/api/admin/spots/inbox/%v/approve", id), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, path("/api/admin/spots/inbox/%v/approve", id), s.admin, nil)
	s.Equal(http.StatusConflict, w.Code)

	_, body = s.do(http.MethodGet, "/api/admin/spots/inbox", s.admin, nil)
	s.Equal([]any{}, body["list"])
	_, body = s.do(http.MethodGet, "/api/admin/spots/inbox?status=approved", s.admin, nil)
	s.Len(body["list"], 1)
	_, body = s.do(http.MethodGet, "/api/spots/inbox/mine", s.member, nil)
	s.Equal("approved", body["list"].([]any)[0].(map[string]any)["status"])
}

func (s *APISuite) TestErrorMapping() {
	w, _ := s.do(http.MethodPost, "/api/admin/communities", s.member, gin.H{"name": "France"})
	s.Equal(http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPost, "/api/admin/communities", "", gin.H{"name": "France"})
	s.Equal(http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/api/admin/communities", "garbage", gin.H{"name": "France"})
	s.Equal(http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/api/admin/communities", s.admin, gin.H{"name": "   "})
	s.Equal(http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodGet, "/api/community/abc/channels", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodGet, "/api/community/99/channels", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.createSpain()
	w, _ = s.do(http.MethodPost, "/api/admin/communities", s.admin, gin.H{"name": "Spain"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APISuite) TestDirectoryBrowsing() {
	communityID, _ := s.createSpain()

	w, body := s.do(http.MethodGet, "/api/community/list", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(body["list"], 1)

	w, body = s.do(http.MethodGet, path("/api/community/%v/channels", communityID), "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("general", body["list"].([]any)[0].(map[string]any)["name"])

	w, _ = s.do(http.MethodPost, path("/api/community/%v/join", communityID), s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	_, body = s.do(http.MethodGet, "/api/community/joined", s.member, nil)
	s.Len(body["list"], 1)

	w, _ = s.do(http.MethodDelete, path("/api/admin/communities/%v", communityID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, path("/api/community/%v/channels", communityID), "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestAccountFlow() {
	w, body := s.do(http.MethodGet, "/api/users/me", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("member", body["user"].(map[string]any)["role"])
	s.NotContains(w.Body.String(), "password")

	w, body = s.do(http.MethodPut, "/api/users/me", s.member, gin.H{"name": "Ana M", "bio": "hi", "visibility": "private"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("private", body["user"].(map[string]any)["visibility"])

	w, _ = s.do(http.MethodPost, "/api/auth/logout", s.member, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/users/me", s.member, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestOpsEndpoints() {
	s.createSpain()
	w, _ := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ows_http_requests_total")
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}
