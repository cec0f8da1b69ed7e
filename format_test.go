package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 1536, "1.5 KB"},
		{"megabytes", 5242880, "5.0 MB"},
		{"gigabytes", 1610612736, "1.5 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSize(tt.bytes))
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	headers := []string{"DISPLAY NAME", "MAIL"}
	rows := [][]string{
		{"Adele Vance", "adele@contoso.com"},
		{"Zoë", "zoe@contoso.com"},
	}

	printTable(&buf, headers, rows)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// Columns align by rune, so multi-byte names do not shift the MAIL column.
	col := len("DISPLAY NAME  ")
	assert.Equal(t, "MAIL", strings.TrimSpace(string([]rune(lines[0])[col:])))
	assert.Equal(t, "adele@contoso.com", strings.TrimSpace(string([]rune(lines[1])[col:])))
	assert.Equal(t, "zoe@contoso.com", strings.TrimSpace(string([]rune(lines[2])[col:])))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"displayName", "mail"}, splitList(" displayName, ,mail,"))
	assert.Nil(t, splitList(""))
}

func TestParseInline(t *testing.T) {
	src := parseInline("logo.png=brand")
	assert.Equal(t, "logo.png", src.Path)
	assert.Equal(t, "brand", src.ContentID)
	assert.True(t, src.Inline)

	src = parseInline("/tmp/chart.png")
	assert.Equal(t, "/tmp/chart.png", src.Path)
	assert.Empty(t, src.ContentID)
}
