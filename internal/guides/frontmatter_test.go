package guides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		title   string
		body    string
		wantErr bool
	}{
		{name: "none", in: "plain body", body: "plain body"},
		{name: "full", in: "---\ntitle: T\nsummary: S\n---\nbody", title: "T", body: "body"},
		{name: "crlf", in: "---\r\ntitle: T\r\n---\r\nbody", title: "T", body: "body"},
		{name: "empty header", in: "---\n---\nbody", body: "body"},
		{name: "header only", in: "---\ntitle: T\n---", title: "T", body: ""},
		{name: "unterminated", in: "---\ntitle: T\nbody", body: "---\ntitle: T\nbody", wantErr: true},
		{name: "bad yaml", in: "---\ntitle: [x\n---\nbody", body: "---\ntitle: [x\n---\nbody", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := splitFrontMatter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.title, fm.Title)
			assert.Equal(t, tt.body, body)
		})
	}
}
