package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compresr/prompt-optimizer/internal/optimizer"
)

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		limit int
		want  []string
	}{
		{
			name:  "mixed markers",
			raw:   "1. A\n2) B\n- C\n• D\n5. E",
			limit: 5,
			want:  []string{"A", "B", "C", "D", "E"},
		},
		{
			name:  "preamble and postamble dropped",
			raw:   "Here are your questions:\n\n1. What is your goal?\n2. Who is the audience?\n\nHope this helps!",
			limit: 5,
			want:  []string{"What is your goal?", "Who is the audience?"},
		},
		{
			name:  "truncated to limit",
			raw:   "1. a\n2. b\n3. c\n4. d",
			limit: 2,
			want:  []string{"a", "b"},
		},
		{
			name:  "no limit",
			raw:   "1. a\n2. b\n3. c",
			limit: 0,
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "colon and multi-digit numbering",
			raw:   "10: ten\n11 eleven\n  12.   twelve  ",
			limit: 0,
			want:  []string{"ten", "eleven", "twelve"},
		},
		{
			name:  "other bullet glyphs",
			raw:   "* star\n· dot\n◦ ring\n‣ tri\n▪ square\n– dash",
			limit: 0,
			want:  []string{"star", "dot", "ring", "tri", "square", "dash"},
		},
		{
			name:  "stacked markers",
			raw:   "1. - What is X?\n- 2. Who reads it?\n* • Which tone?\n3) – Why now?",
			limit: 0,
			want:  []string{"What is X?", "Who reads it?", "Which tone?", "Why now?"},
		},
		{
			name:  "leading numbers in question text kept",
			raw:   "1. 10 examples or fewer?\n- 3 pages enough?",
			limit: 0,
			want:  []string{"10 examples or fewer?", "3 pages enough?"},
		},
		{
			name:  "markers with empty remainder",
			raw:   "1.\n-\n2. real",
			limit: 0,
			want:  []string{"real"},
		},
		{
			name:  "windows line endings",
			raw:   "1. one\r\n2. two\r\n",
			limit: 0,
			want:  []string{"one", "two"},
		},
		{
			name:  "non-latin text",
			raw:   "1. Какой у вас уровень знаний?\n2. 你的目标是什么？",
			limit: 5,
			want:  []string{"Какой у вас уровень знаний?", "你的目标是什么？"},
		},
		{
			name:  "empty input",
			raw:   "",
			limit: 5,
			want:  []string{},
		},
		{
			name:  "nothing recognized",
			raw:   "Sure! I cannot think of any questions.",
			limit: 5,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, optimizer.ParseQuestions(tt.raw, tt.limit))
		})
	}
}
