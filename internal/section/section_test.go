package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetween(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		start   string
		end     string
		want    string
		wantErr bool
	}{
		{
			name:  "bounded section",
			text:  "A: one\nB: two\nC: three",
			start: "B:",
			end:   "C:",
			want:  " two\n",
		},
		{
			name:  "end marker absent runs to end of text",
			text:  "A: one\nB: two",
			start: "B:",
			end:   "C:",
			want:  " two",
		},
		{
			name:  "empty end marker",
			text:  "head\nbody",
			start: "head",
			want:  "\nbody",
		},
		{
			name:  "end marker before start is ignored",
			text:  "--- (3)\nstart\nrows\n--- (3)\ntail",
			start: "start",
			end:   "--- (3)",
			want:  "\nrows\n",
		},
		{
			name:  "first start marker wins",
			text:  "S x E S y E",
			start: "S",
			end:   "E",
			want:  " x ",
		},
		{
			name:    "start marker absent",
			text:    "nothing here",
			start:   "B:",
			end:     "C:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Between(tt.text, tt.start, tt.end)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSectionNotFound)
				assert.Contains(t, err.Error(), tt.start)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAfter(t *testing.T) {
	got, err := After("one\n--- (5) tail ---\nrest", "--- (5) tail ---")
	require.NoError(t, err)
	assert.Equal(t, "\nrest", got)

	_, err = After("one", "--- (5)")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestCut(t *testing.T) {
	assert.Equal(t, "rows\n", Cut("rows\n=====\nmore", "====="))
	assert.Equal(t, "rows", Cut("rows", "====="))
	assert.Equal(t, "rows", Cut("rows", ""))
}

func TestBlocks(t *testing.T) {
	marker := MarkerPattern("--- 初始診斷為 '", "' 的後續疾病分析 ---")
	text := "preamble\n" +
		"--- 初始診斷為 'No Finding' 的後續疾病分析 ---\nbody one\n" +
		"--- 初始診斷為 'Pleural_Thickening' 的後續疾病分析 ---\nbody two\n"

	blocks := Blocks(text, marker)
	require.Len(t, blocks, 2)
	assert.Equal(t, Block{Label: "No Finding", Body: "\nbody one\n"}, blocks[0])
	assert.Equal(t, Block{Label: "Pleural_Thickening", Body: "\nbody two\n"}, blocks[1])

	assert.Empty(t, Blocks("no markers at all", marker))
}

func TestMarkerPatternQuotesLiterals(t *testing.T) {
	marker := MarkerPattern("(", ")")
	blocks := Blocks("x (a) y (b) z", marker)
	require.Len(t, blocks, 2)
	assert.Equal(t, "a", blocks[0].Label)
	assert.Equal(t, " y ", blocks[0].Body)
	assert.Equal(t, " z", blocks[1].Body)
}
