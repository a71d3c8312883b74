package datecode

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/enums"
)

var (
	twoDigitRe     = regexp.MustCompile(`^\d{2}$`)
	fourDigitRe    = regexp.MustCompile(`^\d{4}$`)
	leadingDigitRe = regexp.MustCompile(`^(\d{2})`)
)

// Cache memoizes classification results across parts within a run (memory)
// or across runs (redis). Passed in explicitly, never package state.
type Cache interface {
	Get(ctx context.Context, rawDateCode string) (enums.DateCodeStatus, bool)
	Set(ctx context.Context, rawDateCode string, status enums.DateCodeStatus)
}

// Classifier labels raw date code text as fresh, old, or unknown. It never
// excludes a candidate, only affects ranking.
type Classifier struct {
	cache       Cache
	windowYears int
	now         func() time.Time
}

// ClassifierParams carries the knobs for NewClassifier. Cache and Now are
// optional.
type ClassifierParams struct {
	Cache       Cache
	WindowYears int
	Now         func() time.Time
}

// NewClassifier builds a classifier with the given freshness window.
func NewClassifier(params ClassifierParams) (*Classifier, error) {
	if params.WindowYears < 0 {
		return nil, fmt.Errorf("window years must not be negative, got %d", params.WindowYears)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Classifier{
		cache:       params.Cache,
		windowYears: params.WindowYears,
		now:         now,
	}, nil
}

// Classify resolves raw date code text to a freshness status.
//
// Recognized forms: YYWW ("2217"), bare YY ("25"), and YY with extra
// annotation. A trailing "+" means "this year or newer" and is treated as
// ambiguous. A 4-digit value in 2020-2029 reads as either a calendar year or
// YYWW, also ambiguous. Every ambiguous or unparseable code classifies
// UNKNOWN rather than guessing.
func (c *Classifier) Classify(ctx context.Context, rawDateCode string) enums.DateCodeStatus {
	raw := strings.TrimSpace(rawDateCode)
	if raw == "" {
		return enums.DateCodeUnknown
	}

	if c.cache != nil {
		if status, ok := c.cache.Get(ctx, raw); ok {
			return status
		}
	}

	status := c.classify(raw)

	if c.cache != nil {
		c.cache.Set(ctx, raw, status)
	}
	return status
}

func (c *Classifier) classify(raw string) enums.DateCodeStatus {
	year, ambiguous, ok := parse(raw)
	if !ok || ambiguous {
		return enums.DateCodeUnknown
	}

	// Two-digit years resolve against the current window with century
	// wraparound, never a fixed century. Future-dated codes count as fresh.
	currentYY := c.now().Year() % 100
	age := (currentYY - year + 100) % 100
	if age <= c.windowYears || age >= 100-c.windowYears {
		return enums.DateCodeFresh
	}
	return enums.DateCodeOld
}

// parse extracts a 2-digit year and an ambiguity flag from raw text.
func parse(raw string) (year int, ambiguous bool, ok bool) {
	text := strings.ToUpper(strings.TrimSpace(raw))
	hasPlus := strings.Contains(text, "+")
	text = strings.ReplaceAll(text, "+", "")
	text = strings.TrimSpace(text)

	if twoDigitRe.MatchString(text) {
		year, _ = strconv.Atoi(text)
		return year, hasPlus, true
	}

	if fourDigitRe.MatchString(text) {
		num, _ := strconv.Atoi(text)
		year, _ = strconv.Atoi(text[:2])

		// "2022" reads as year 2022 or YYWW 20/22. "2318" cannot be a
		// calendar year, so it is clearly YYWW.
		if num >= 2020 && num <= 2029 {
			return year, true, true
		}
		return year, hasPlus, true
	}

	if m := leadingDigitRe.FindStringSubmatch(text); m != nil {
		year, _ = strconv.Atoi(m[1])
		return year, hasPlus, true
	}

	return 0, false, false
}
