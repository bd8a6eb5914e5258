package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bookline/config"
	"bookline/models"
	"bookline/utils"

	"github.com/go-playground/validator/v10"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Answer classifies a confirmation reply.
type Answer int

const (
	AnswerUnclear Answer = iota
	AnswerYes
	AnswerNo
)

// ExtractResult is the outcome of parsing one user turn for one step.
// When Valid is false, Reason carries the clarification prompt.
type ExtractResult struct {
	Valid    bool
	Reason   string
	Text     string
	DateTime time.Time
	Duration int
	Answer   Answer
}

// FieldExtractor parses free-text user turns into structured booking fields.
// Extraction is pure: the same input against the same clock base always
// yields the same result, and no session state is touched.
type FieldExtractor interface {
	Extract(step models.Step, raw string) ExtractResult
}

// DefaultFieldExtractor resolves natural-language datetimes against the
// configured default timezone, never per-request guesses.
type DefaultFieldExtractor struct {
	Clock           utils.Clock
	Location        *time.Location
	DefaultDuration int
	MaxDuration     int

	parser   *when.Parser
	validate *validator.Validate
}

// NewDefaultFieldExtractor builds an extractor from AppConfig.
func NewDefaultFieldExtractor(clock utils.Clock) (*DefaultFieldExtractor, error) {
	loc, err := time.LoadLocation(config.AppConfig.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", config.AppConfig.DefaultTimezone, err)
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &DefaultFieldExtractor{
		Clock:           clock,
		Location:        loc,
		DefaultDuration: config.AppConfig.DefaultDurationMin,
		MaxDuration:     config.AppConfig.MaxDurationMin,
		parser:          parser,
		validate:        validator.New(),
	}, nil
}

const maxNameLength = 120

func invalid(reason string) ExtractResult {
	return ExtractResult{Valid: false, Reason: reason}
}

// Extract parses raw for the field the given step collects.
func (e *DefaultFieldExtractor) Extract(step models.Step, raw string) ExtractResult {
	text := strings.TrimSpace(raw)

	switch step {
	case models.StepAwaitName:
		if text == "" {
			return invalid("I didn't catch your name. What should I call you?")
		}
		if len(text) > maxNameLength {
			return invalid("That name looks too long. Could you give me a shorter one?")
		}
		return ExtractResult{Valid: true, Text: text}

	case models.StepAwaitEmail:
		if err := e.validate.Var(text, "required,email"); err != nil {
			return invalid("That doesn't look like a valid email address. Could you double-check it?")
		}
		return ExtractResult{Valid: true, Text: text}

	case models.StepAwaitCompany:
		if text == "" {
			return invalid("Which company are you with?")
		}
		return ExtractResult{Valid: true, Text: text}

	case models.StepAwaitInquiry:
		if text == "" {
			return invalid("Could you tell me a bit about what you'd like to discuss?")
		}
		return ExtractResult{Valid: true, Text: text}

	case models.StepAwaitDateTime:
		return e.extractDateTime(text)

	case models.StepAwaitDuration:
		return e.extractDuration(text)

	case models.StepAwaitConfirmation:
		return classifyAnswer(text)
	}

	return invalid("I'm not sure what to do with that.")
}

func (e *DefaultFieldExtractor) extractDateTime(text string) ExtractResult {
	if text == "" {
		return invalid("When would you like to meet? You can say something like \"tomorrow at 2pm\".")
	}

	t, ok := e.parseInstant(text)
	if !ok {
		return invalid("I couldn't work out that date and time. Try something like \"tomorrow at 2pm\" or \"2026-09-03 14:00\".")
	}
	if !t.After(e.Clock.Now()) {
		return invalid("That time is already in the past. When in the future would suit you?")
	}
	return ExtractResult{Valid: true, DateTime: t}
}

// parseInstant accepts explicit timestamps first, then falls back to
// natural-language parsing relative to the clock in the default timezone.
func (e *DefaultFieldExtractor) parseInstant(text string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, text, e.Location); err == nil {
			return t, true
		}
	}

	base := e.Clock.Now().In(e.Location)
	r, err := e.parser.Parse(text, base)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

func (e *DefaultFieldExtractor) extractDuration(text string) ExtractResult {
	if text == "" {
		return ExtractResult{Valid: true, Duration: e.DefaultDuration}
	}

	digits := leadingNumber(text)
	if digits == "" {
		return invalid(fmt.Sprintf("How many minutes should I reserve? Just the number is fine (default is %d).", e.DefaultDuration))
	}
	minutes, err := strconv.Atoi(digits)
	if err != nil || minutes <= 0 {
		return invalid("The duration needs to be a positive number of minutes.")
	}
	if minutes > e.MaxDuration {
		return invalid(fmt.Sprintf("The longest meeting I can book is %d minutes.", e.MaxDuration))
	}
	return ExtractResult{Valid: true, Duration: minutes}
}

// leadingNumber returns the first run of digits in text.
func leadingNumber(text string) string {
	start := -1
	for i, r := range text {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return text[start:i]
		}
	}
	if start >= 0 {
		return text[start:]
	}
	return ""
}

var (
	affirmativeWords = []string{"yes", "y", "yep", "yeah", "sure", "confirm", "correct", "ok", "okay", "book it", "sounds good", "go ahead"}
	negativeWords    = []string{"no", "n", "nope", "nah", "not", "don't", "dont", "change", "cancel", "different"}
)

// classifyAnswer requires an explicit go-ahead before a booking is created.
// Negations are checked first so "not sure" or "don't book it" never read as
// a yes, and matching is on whole words to keep substrings from triggering.
func classifyAnswer(text string) ExtractResult {
	lower := strings.ToLower(strings.TrimSpace(text))
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	matches := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(w, " ") {
				if strings.Contains(lower, w) {
					return true
				}
				continue
			}
			for _, tok := range tokens {
				if tok == w {
					return true
				}
			}
		}
		return false
	}

	if matches(negativeWords) {
		return ExtractResult{Valid: true, Answer: AnswerNo}
	}
	if matches(affirmativeWords) {
		return ExtractResult{Valid: true, Answer: AnswerYes}
	}
	return invalid("Should I go ahead and book it? A simple yes or no works.")
}
