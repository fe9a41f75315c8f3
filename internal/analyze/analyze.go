// Package analyze turns an uploaded video into a summary and a topic tree.
// Only a stub exists; a model-backed analyzer can replace it behind
// VideoAnalyzer without touching callers.
package analyze

import (
	"context"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// Video identifies an uploaded file.
type Video struct {
	Filename string
	Size     int64
}

// Result is the outcome of an analysis.
type Result struct {
	Summary string
	Tree    *topictree.Tree
}

// VideoAnalyzer produces a summary and a mind-map tree for a video.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, v Video) (Result, error)
}

// StubAnalyzer returns the same canned result for every video. Payload
// picks which one; nil means CannedResult.
type StubAnalyzer struct {
	Payload func() Result
}

func (a StubAnalyzer) Analyze(ctx context.Context, v Video) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if a.Payload != nil {
		return a.Payload(), nil
	}
	return CannedResult(), nil
}

// CannedResult is the analysis every upload receives.
func CannedResult() Result {
	return Result{
		Summary: "This is a sample video analysis. The video introduces AI technology, " +
			"covers the basics of machine learning and deep learning, and walks through " +
			"common applications.",
		Tree: &topictree.Tree{Root: topictree.New("Video Content",
			topictree.New("AI Intro",
				topictree.New("ML Basics"),
				topictree.New("DL Concepts"),
			),
			topictree.New("Applications",
				topictree.New("Image Recognition"),
				topictree.New("Natural Language Processing"),
			),
		)},
	}
}

// LectureResult is a richer payload describing a prompt-engineering
// lecture, matching what the chat rules talk about.
func LectureResult() Result {
	return Result{
		Summary: `This video introduces prompt engineering for ChatGPT, presented by Isa Fulford (OpenAI) and Andrew Ng (DeepLearning.AI).

Main topics:

1. Building software applications on large language model (LLM) APIs
2. Why prompt engineering matters, with practical techniques
3. What ChatGPT models are good at and where to use them
4. Refining prompts to get better results

The speakers stress that well-designed prompts make LLMs both more efficient and safer to use.`,
		Tree: &topictree.Tree{Root: topictree.New("ChatGPT Prompt Engineering",
			topictree.New("Fundamentals",
				topictree.New("What is an LLM"),
				topictree.New("Using the API"),
				topictree.New("Prompt design principles"),
			),
			topictree.New("Techniques",
				topictree.New("Clear instructions"),
				topictree.New("Give examples"),
				topictree.New("Split complex tasks"),
			),
			topictree.New("Use cases",
				topictree.New("Text generation"),
				topictree.New("Summarization"),
				topictree.New("Dialogue systems"),
			),
		)},
	}
}

// SampleResult backs the template preview that needs no upload.
func SampleResult() Result {
	return Result{
		Summary: "This is a sample video analysis covering an introduction to AI and basic machine learning concepts.",
		Tree: &topictree.Tree{Root: topictree.New("Sample Mind Map",
			topictree.New("Topic 1",
				topictree.New("Subtopic 1.1"),
				topictree.New("Subtopic 1.2"),
			),
			topictree.New("Topic 2",
				topictree.New("Subtopic 2.1"),
				topictree.New("Subtopic 2.2"),
			),
		)},
	}
}

// Payload returns the named canned result: "canned", "lecture" or "sample".
func Payload(name string) (func() Result, bool) {
	switch name {
	case "", "canned":
		return CannedResult, true
	case "lecture":
		return LectureResult, true
	case "sample":
		return SampleResult, true
	}
	return nil, false
}
