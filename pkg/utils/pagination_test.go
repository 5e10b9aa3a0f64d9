package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetPagination(t *testing.T) {
	tests := []struct {
		query  string
		want   Pagination
		offset int
	}{
		{"", Pagination{Page: 1, Limit: DefaultPageSize}, 0},
		{"?page=3&limit=10", Pagination{Page: 3, Limit: 10}, 20},
		{"?page=-2&limit=500", Pagination{Page: 1, Limit: DefaultPageSize}, 0},
		{"?page=abc&limit=100", Pagination{Page: 1, Limit: MaxPageSize}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), httptest.NewRecorder())

			p := GetPagination(c)

			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}
