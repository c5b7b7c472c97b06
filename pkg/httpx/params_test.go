package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gunvolt24/movies/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// Утилита для создания *gin.Context с query-строкой
func ctxWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/?"+rawQuery, http.NoBody)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestQueryOrDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		want     string
	}{
		{"missing_uses_default", "", "US"},
		{"empty_uses_default", "region=", "US"},
		{"blank_uses_default", "region=%20%20", "US"},
		{"provided", "region=GB", "GB"},
		{"verbatim_case", "region=fr", "fr"},
		{"verbatim_spaces", "region=%20DE%20", " DE "},
		{"other_key_ignored", "lang=fr", "US"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := ctxWithQuery(tt.rawQuery)
			if got := httpx.QueryOrDefault(c, "region", "US"); got != tt.want {
				t.Fatalf("QueryOrDefault(%q) = %q, want %q", tt.rawQuery, got, tt.want)
			}
		})
	}
}

func TestPathParam_Verbatim(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.GET("/movies/:movieId", func(c *gin.Context) {
		got = httpx.PathParam(c, "movieId")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/movies/%20807172%20", http.NoBody))

	if got != " 807172 " {
		t.Fatalf("PathParam = %q, want %q", got, " 807172 ")
	}
}
