package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "https url", url: "https://example.com/some/path", want: "example.com"},
		{name: "with port", url: "http://localhost:8080/x", want: "localhost"},
		{name: "subdomain", url: "https://docs.go.dev/ref/spec", want: "docs.go.dev"},
		{name: "surrounding whitespace", url: "  https://example.com  ", want: "example.com"},
		{name: "no scheme", url: "example.com/path", want: ""},
		{name: "garbage", url: "::::", want: ""},
		{name: "empty", url: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.url))
		})
	}
}
