package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseStagePlainArgs(t *testing.T) {
	cases := []string{
		"ls",
		"ls -la /tmp",
		"grep foo bar.txt",
		"  echo   spaced \t out  ",
	}

	for _, tc := range cases {
		t.Run(tc, func(t *testing.T) {
			stage, err := ParseStage(tc)
			require.NoError(t, err)

			assert.Equal(t, strings.Fields(tc), stage.Args)
			assert.Empty(t, stage.InputFile)
			assert.Empty(t, stage.OutputFile)
			assert.False(t, stage.Background)
		})
	}
}

func TestParseStageMarkerPositionIrrelevant(t *testing.T) {
	a, err := ParseStage("cmd a < in b > out &")
	require.NoError(t, err)
	b, err := ParseStage("cmd a b & < in > out")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, []string{"cmd", "a", "b"}, a.Args)
	assert.Equal(t, "in", a.InputFile)
	assert.Equal(t, "out", a.OutputFile)
	assert.True(t, a.Background)
}

func TestParseStageMissingRedirectTarget(t *testing.T) {
	cases := []struct {
		text string
		kind RedirectKind
	}{
		{"cat <", RedirectInput},
		{"echo hi >", RedirectOutput},
		{"cat < in >", RedirectOutput},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			_, err := ParseStage(tc.text)

			var target *MissingRedirectTargetError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, tc.kind, target.Kind)
		})
	}
}

func TestParseStageEmptyCommand(t *testing.T) {
	for _, text := range []string{"", "   ", "< in > out", "&"} {
		t.Run("text="+text, func(t *testing.T) {
			_, err := ParseStage(text)
			assert.ErrorIs(t, err, ErrEmptyCommand)
		})
	}
}

func TestSplitPipelineSinglePipe(t *testing.T) {
	cases := []string{
		"ls -la | grep foo",
		"printf a | wc -c",
	}

	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			texts, err := SplitPipeline(raw)
			require.NoError(t, err)

			require.Len(t, texts, 2)
			assert.Equal(t, strings.TrimSpace(raw), strings.Join(texts, " | "))
		})
	}
}

func TestSplitPipelineNoPipe(t *testing.T) {
	texts, err := SplitPipeline("echo solo")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo solo"}, texts)
}

func TestParse(t *testing.T) {
	pipeline, err := Parse("cat < in.txt | grep b | wc -l > count.txt")
	require.NoError(t, err)

	require.Len(t, pipeline, 3)
	assert.Equal(t, []string{"cat"}, pipeline[0].Args)
	assert.Equal(t, "in.txt", pipeline[0].InputFile)
	assert.Equal(t, []string{"grep", "b"}, pipeline[1].Args)
	assert.Equal(t, []string{"wc", "-l"}, pipeline[2].Args)
	assert.Equal(t, "count.txt", pipeline[2].OutputFile)
}

func TestParseEmptyStage(t *testing.T) {
	_, err := Parse("ls ||grep foo")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestMissingRedirectTargetErrorMessage(t *testing.T) {
	assert.EqualError(t,
		&MissingRedirectTargetError{Kind: RedirectInput},
		"syntax error: expected input file after '<'")
	assert.EqualError(t,
		&MissingRedirectTargetError{Kind: RedirectOutput},
		"syntax error: expected output file after '>'")
}
