package analyze

import (
	"context"
	"testing"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubAnalyzer_Canned(t *testing.T) {
	res, err := StubAnalyzer{}.Analyze(context.Background(), Video{Filename: "talk.mp4"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Summary)
	require.NoError(t, topictree.Validate(res.Tree, 0))

	assert.Equal(t, "Video Content", res.Tree.Root.Label)
	intro := res.Tree.Root.Children[0]
	assert.Equal(t, "AI Intro", intro.Label)
	assert.Equal(t, "ML Basics", intro.Children[0].Label)
	assert.Equal(t, "DL Concepts", intro.Children[1].Label)
}

func TestStubAnalyzer_FreshTreePerCall(t *testing.T) {
	a := StubAnalyzer{}
	first, err := a.Analyze(context.Background(), Video{})
	require.NoError(t, err)
	first.Tree.Root.Label = "mutated"

	second, err := a.Analyze(context.Background(), Video{})
	require.NoError(t, err)
	assert.Equal(t, "Video Content", second.Tree.Root.Label)
}

func TestStubAnalyzer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := StubAnalyzer{}.Analyze(ctx, Video{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayloads(t *testing.T) {
	for _, name := range []string{"", "canned", "lecture", "sample"} {
		p, ok := Payload(name)
		require.True(t, ok, name)
		res, err := StubAnalyzer{Payload: p}.Analyze(context.Background(), Video{})
		require.NoError(t, err)
		assert.NoError(t, topictree.Validate(res.Tree, 0), name)
	}
	_, ok := Payload("qwen")
	assert.False(t, ok)

	assert.Equal(t, "Sample Mind Map", SampleResult().Tree.Root.Label)
	assert.Equal(t, 13, LectureResult().Tree.Count())
}
