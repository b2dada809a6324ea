package question

import (
	"fmt"
	"strconv"
	"strings"
)

// Section markers tried in order when splitting generator output. The
// generator is prompted to use the first form of each, but models drift,
// so the parser tolerates the common variants.
var (
	stemPrefixes   = []string{"Question:", "Problem:", "Q:"}
	optionsMarkers = []string{"\nOptions:", "\nChoices:", "Options:"}
	answerMarkers  = []string{"\nAnswer:", "\nCorrect answer:", "\nCorrect Answer:", "Answer:"}
)

// Parse extracts a Candidate from raw generator output. wantObjective is
// the format that was requested; if the output's shape disagrees with the
// request the mismatch is a ParseError so the producer retries rather
// than silently accepting the wrong format.
func Parse(raw string, wantObjective bool) (Candidate, error) {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return Candidate{}, &ParseError{Reason: "empty generator output"}
	}

	optionsBlock, hasOptions := splitSection(text, optionsMarkers)
	if hasOptions != wantObjective {
		if wantObjective {
			return Candidate{}, &ParseError{Reason: "requested objective format but output has no options section"}
		}
		return Candidate{}, &ParseError{Reason: "requested free-text format but output has an options section"}
	}

	if wantObjective {
		return parseObjective(text, optionsBlock)
	}
	return parseFreeText(text)
}

func parseObjective(text, optionsBlock string) (Candidate, error) {
	stem := sectionBefore(text, optionsMarkers)
	stem = trimStemPrefix(stem)
	if stem == "" {
		return Candidate{}, &ParseError{Reason: "empty question stem"}
	}

	answerBlock, hasAnswer := splitSection(optionsBlock, answerMarkers)
	if !hasAnswer {
		return Candidate{}, &ParseError{Reason: "missing answer section"}
	}
	optionsText := sectionBefore(optionsBlock, answerMarkers)

	options, err := parseOptionLines(optionsText)
	if err != nil {
		return Candidate{}, err
	}

	token := firstLine(answerBlock)
	idx, err := resolveAnswerIndex(token, options)
	if err != nil {
		return Candidate{}, err
	}

	return Candidate{
		Stem:      stem,
		Objective: true,
		Options:   options,
		Answer:    options[idx-1],
	}, nil
}

func parseFreeText(text string) (Candidate, error) {
	answerBlock, hasAnswer := splitSection(text, answerMarkers)

	var stem, answer string
	if hasAnswer {
		stem = sectionBefore(text, answerMarkers)
		answer = strings.TrimSpace(answerBlock)
	} else {
		// No answer marker at all: the whole output is the stem and the
		// reference answer stays empty.
		stem = text
	}

	stem = trimStemPrefix(stem)
	if stem == "" {
		return Candidate{}, &ParseError{Reason: "empty question stem"}
	}

	return Candidate{
		Stem:      stem,
		Objective: false,
		Answer:    answer,
	}, nil
}

// parseOptionLines requires exactly OptionCount numbered option lines.
func parseOptionLines(block string) ([]string, error) {
	var options []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		opt, ok := stripOptionNumber(line)
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("unrecognized option line %q", line)}
		}
		options = append(options, opt)
	}
	if len(options) != OptionCount {
		return nil, &ParseError{Reason: fmt.Sprintf("expected %d options, got %d", OptionCount, len(options))}
	}
	return options, nil
}

// stripOptionNumber removes a leading "1." / "1)" / "(1)" numbering.
func stripOptionNumber(line string) (string, bool) {
	for n := 1; n <= OptionCount; n++ {
		for _, prefix := range []string{
			fmt.Sprintf("%d.", n),
			fmt.Sprintf("%d)", n),
			fmt.Sprintf("(%d)", n),
		} {
			if strings.HasPrefix(line, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
			}
		}
	}
	return "", false
}

// resolveAnswerIndex turns the answer token into a 1-based option index.
// Accepts a bare number ("3", "3.", "option 3") or the exact option text.
func resolveAnswerIndex(token string, options []string) (int, error) {
	cleaned := strings.TrimSpace(token)
	cleaned = strings.TrimPrefix(strings.ToLower(cleaned), "option ")
	cleaned = strings.TrimRight(cleaned, ".)")
	cleaned = strings.TrimSpace(cleaned)

	if idx, err := strconv.Atoi(cleaned); err == nil {
		if idx < 1 || idx > OptionCount {
			return 0, &ParseError{Reason: fmt.Sprintf("answer index %d out of range [1,%d]", idx, OptionCount)}
		}
		return idx, nil
	}

	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(token), opt) {
			return i + 1, nil
		}
	}

	return 0, &ParseError{Reason: fmt.Sprintf("answer token %q not resolvable to an option", token)}
}

// splitSection returns the text after the first marker found, trying
// markers in order. The boolean reports whether any marker matched.
func splitSection(text string, markers []string) (string, bool) {
	for _, marker := range markers {
		if i := strings.Index(text, marker); i >= 0 {
			return text[i+len(marker):], true
		}
	}
	return "", false
}

// sectionBefore returns the text before the first marker found.
func sectionBefore(text string, markers []string) string {
	for _, marker := range markers {
		if i := strings.Index(text, marker); i >= 0 {
			return strings.TrimSpace(text[:i])
		}
	}
	return strings.TrimSpace(text)
}

func trimStemPrefix(stem string) string {
	stem = strings.TrimSpace(stem)
	for _, prefix := range stemPrefixes {
		if strings.HasPrefix(stem, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(stem, prefix))
		}
	}
	return stem
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func stripCodeFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
