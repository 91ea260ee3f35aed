package filter

import (
	"regexp"
	"unicode"

	"go.uber.org/zap"

	"github.com/scipunch/finfeed/feed"
)

// Rules defines what gets dropped from an aggregation run before merging.
type Rules struct {
	MinTitleWords   int      `toml:"min_title_words"` // 0 = no limit
	ExcludePatterns []string `toml:"exclude_patterns"`
}

// Pipeline applies compiled filter rules to normalized items
type Pipeline struct {
	rules   Rules
	exclude []compiledPattern
}

type compiledPattern struct {
	raw string
	re  *regexp.Regexp
}

// NewPipeline compiles the configured rules. Invalid regex patterns are
// logged and skipped rather than failing the whole pipeline.
func NewPipeline(rules Rules, log *zap.SugaredLogger) *Pipeline {
	p := &Pipeline{
		rules:   rules,
		exclude: make([]compiledPattern, 0, len(rules.ExcludePatterns)),
	}

	for _, pattern := range rules.ExcludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			log.Warnw("invalid exclude pattern, skipping", "pattern", pattern, "error", err)
			continue
		}
		p.exclude = append(p.exclude, compiledPattern{raw: pattern, re: re})
	}

	return p
}

// ShouldInclude returns true if the item passes every rule, otherwise false
// with the rule that rejected it.
func (p *Pipeline) ShouldInclude(item feed.Item) (bool, string) {
	if p.rules.MinTitleWords > 0 && countWords(item.Title) < p.rules.MinTitleWords {
		return false, "min_title_words"
	}

	text := item.Title + " " + item.Description
	for _, pattern := range p.exclude {
		if pattern.re.MatchString(text) {
			return false, "exclude_pattern[" + pattern.raw + "]"
		}
	}

	return true, ""
}

// countWords counts the number of words in text
func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}
