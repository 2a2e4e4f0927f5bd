package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

func TestConfigureCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	middleware, err := ConfigureCORS(zaptest.NewLogger(t), []string{"http://localhost"})
	if err != nil {
		t.Fatalf("unexpected error configuring CORS: %v", err)
	}
	router := gin.New()
	router.Use(middleware)
	router.OPTIONS("/auth/v1/login", func(contextGin *gin.Context) {
		contextGin.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/auth/v1/login", nil)
	request.Header.Set("Origin", "http://localhost")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from preflight, got %d", recorder.Code)
	}
	if origin := recorder.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost" {
		t.Fatalf("unexpected allowed origin header: %q", origin)
	}
}

func TestConfigureCORSRejectsWildcard(t *testing.T) {
	if _, err := ConfigureCORS(zaptest.NewLogger(t), []string{"*"}); !errors.Is(err, errWildcardOrigin) {
		t.Fatalf("expected wildcard rejection, got %v", err)
	}
}

func TestConfigureCORSRejectsBlankOrigins(t *testing.T) {
	if _, err := ConfigureCORS(zaptest.NewLogger(t), nil); !errors.Is(err, errEmptyAllowedOrigins) {
		t.Fatalf("expected empty-origin rejection, got %v", err)
	}
	if _, err := ConfigureCORS(zaptest.NewLogger(t), []string{"  "}); !errors.Is(err, errEmptyAllowedOrigins) {
		t.Fatalf("expected whitespace-origin rejection, got %v", err)
	}
}

func TestSanitizeOriginsNormalizesAndDeduplicates(t *testing.T) {
	sanitized, err := sanitizeOrigins(zaptest.NewLogger(t), []string{
		"https://app.example.com",
		"HTTPS://app.example.com",
		"https://app.example.com/",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sanitized) != 1 || sanitized[0] != "https://app.example.com" {
		t.Fatalf("unexpected sanitized origins: %v", sanitized)
	}
}

func TestSanitizeOriginsRejectsPathAndScheme(t *testing.T) {
	if _, err := sanitizeOrigins(zaptest.NewLogger(t), []string{"https://app.example.com/path"}); !errors.Is(err, errInvalidOrigin) {
		t.Fatalf("expected path rejection, got %v", err)
	}
	if _, err := sanitizeOrigins(zaptest.NewLogger(t), []string{"ftp://app.example.com"}); !errors.Is(err, errInvalidOrigin) {
		t.Fatalf("expected scheme rejection, got %v", err)
	}
}
