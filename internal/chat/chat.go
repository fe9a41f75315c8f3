// Package chat answers questions about an analyzed video with keyword rules.
// Rules are tried in order and the first match wins.
package chat

import (
	"fmt"
	"strings"
)

// Rule pairs a predicate over the question with a canned answer.
type Rule struct {
	Name   string
	Match  func(question string) bool
	Answer string
}

// FallbackRule is the rule name reported when nothing matched.
const FallbackRule = "fallback"

// Responder evaluates an ordered rule table.
type Responder struct {
	rules    []Rule
	fallback func(question string) string
}

// NewResponder returns a responder over rules. A nil fallback uses
// DefaultFallback.
func NewResponder(rules []Rule, fallback func(string) string) *Responder {
	if fallback == nil {
		fallback = DefaultFallback
	}
	return &Responder{rules: rules, fallback: fallback}
}

// Respond returns the answer and the name of the rule that produced it.
func (r *Responder) Respond(question string) (answer, rule string) {
	for _, rl := range r.rules {
		if rl.Match(question) {
			return rl.Answer, rl.Name
		}
	}
	return r.fallback(question), FallbackRule
}

// ContainsAny matches when the question contains any of the keywords,
// ignoring case.
func ContainsAny(keywords ...string) func(string) bool {
	return func(q string) bool {
		q = strings.ToLower(q)
		for _, k := range keywords {
			if strings.Contains(q, strings.ToLower(k)) {
				return true
			}
		}
		return false
	}
}

// All matches when every predicate matches.
func All(preds ...func(string) bool) func(string) bool {
	return func(q string) bool {
		for _, p := range preds {
			if !p(q) {
				return false
			}
		}
		return true
	}
}

// DefaultRules describe the prompt-engineering lecture the stub analyzer
// pretends to have watched.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "prompt",
			Match:  All(ContainsAny("what", "什么"), ContainsAny("prompt")),
			Answer: "Prompt engineering is the practice of designing and refining the input given to an AI model so that its output is more accurate and relevant.",
		},
		{
			Name:   "speaker",
			Match:  ContainsAny("who", "谁"),
			Answer: "The speakers are Isa Fulford of OpenAI and Andrew Ng of DeepLearning.AI.",
		},
		{
			Name:   "llm",
			Match:  ContainsAny("llm", "large language model", "大语言模型"),
			Answer: "An LLM (large language model) is a deep-learning model that understands and generates human language. ChatGPT is one application of an LLM.",
		},
	}
}

// DefaultFallback echoes the question back inside a generic answer.
func DefaultFallback(question string) string {
	return fmt.Sprintf("You would like to know what the video says about %q. It covers a range of prompt engineering techniques and use cases; the worked examples in the video are a good place to look.", question)
}
