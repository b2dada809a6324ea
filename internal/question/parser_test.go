package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const objectiveOutput = `Question: What is the capital of France?

Options:
1. Berlin
2. Paris
3. Madrid
4. Rome

Answer: 2`

func TestParseObjective(t *testing.T) {
	cand, err := Parse(objectiveOutput, true)
	require.NoError(t, err)

	assert.Equal(t, "What is the capital of France?", cand.Stem)
	assert.True(t, cand.Objective)
	assert.Equal(t, []string{"Berlin", "Paris", "Madrid", "Rome"}, cand.Options)
	assert.Equal(t, "Paris", cand.Answer)
}

func TestParseObjectiveMarkerVariants(t *testing.T) {
	raw := `Q: Which planet is largest?
Choices:
(1) Mars
(2) Jupiter
(3) Venus
(4) Mercury
Correct answer: option 2`

	cand, err := Parse(raw, true)
	require.NoError(t, err)

	assert.Equal(t, "Which planet is largest?", cand.Stem)
	assert.Equal(t, "Jupiter", cand.Answer)
}

func TestParseObjectiveAnswerByText(t *testing.T) {
	raw := `Question: Pick the even number.
Options:
1) one
2) two
3) three
4) five
Answer: two`

	cand, err := Parse(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "two", cand.Answer)
}

func TestParseStripsCodeFences(t *testing.T) {
	raw := "```\n" + objectiveOutput + "\n```"

	cand, err := Parse(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "Paris", cand.Answer)
}

func TestParseFormatMismatch(t *testing.T) {
	freeText := "Question: Explain TCP slow start.\nAnswer: It ramps the congestion window."

	_, err := Parse(freeText, true)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = Parse(objectiveOutput, false)
	require.ErrorAs(t, err, &parseErr)
}

func TestParseObjectiveMissingAnswer(t *testing.T) {
	raw := `Question: What is 2+2?
Options:
1. 3
2. 4
3. 5
4. 6`

	_, err := Parse(raw, true)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "missing answer")
}

func TestParseObjectiveWrongOptionCount(t *testing.T) {
	raw := `Question: What is 2+2?
Options:
1. 3
2. 4
3. 5
Answer: 2`

	_, err := Parse(raw, true)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "expected 4 options")
}

func TestParseObjectiveAnswerOutOfRange(t *testing.T) {
	raw := `Question: What is 2+2?
Options:
1. 3
2. 4
3. 5
4. 6
Answer: 7`

	_, err := Parse(raw, true)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseFreeTextWithReference(t *testing.T) {
	raw := `Question: Explain what a goroutine is.
Answer: A lightweight thread managed by the Go runtime.`

	cand, err := Parse(raw, false)
	require.NoError(t, err)

	assert.Equal(t, "Explain what a goroutine is.", cand.Stem)
	assert.False(t, cand.Objective)
	assert.Nil(t, cand.Options)
	assert.Equal(t, "A lightweight thread managed by the Go runtime.", cand.Answer)
}

func TestParseFreeTextWithoutReference(t *testing.T) {
	cand, err := Parse("Problem: Describe the CAP theorem.", false)
	require.NoError(t, err)

	assert.Equal(t, "Describe the CAP theorem.", cand.Stem)
	assert.Empty(t, cand.Answer)
}

func TestParseEmptyOutput(t *testing.T) {
	_, err := Parse("   \n  ", false)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
