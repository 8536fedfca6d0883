package intents

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"go.elara.ws/pcre"
)

// TopNMode selects how a top-N bound is read from a question.
type TopNMode int

const (
	// ConcatDigits joins every digit in the question, left to right, and parses the
	// result: "top 1 and 0" yields 10. This is the historical behavior.
	ConcatDigits TopNMode = iota
	// FirstNumber uses the first contiguous run of digits: "top 1 and 0" yields 1.
	FirstNumber
)

func (m TopNMode) String() string {
	if m == FirstNumber {
		return "first"
	}
	return "concat"
}

var (
	numberMu sync.Mutex
	// With UCP, \d matches every decimal digit (Unicode Nd), not only ASCII.
	numberRe = pcre.MustCompileOpts(`\d+`, pcre.UTF|pcre.UCP)
)

// ExtractTopN returns the bound written in question, or def when the question has
// no decimal digits. Digits from any script count ("top ٣" is 3). Bounds too large
// for an int are clamped to math.MaxInt.
func ExtractTopN(question string, def int, mode TopNMode) int {
	var digits string
	switch mode {
	case FirstNumber:
		numberMu.Lock()
		digits = asciiDigits(numberRe.FindString(question))
		numberMu.Unlock()
	default:
		digits = asciiDigits(question)
	}

	if digits == "" {
		return def
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt
		}
		return def
	}
	return n
}

// asciiDigits keeps the decimal digits of s, rewritten as ASCII '0'-'9'.
func asciiDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if v, ok := digitValue(r); ok {
			b.WriteByte(byte('0' + v))
		}
	}
	return b.String()
}

// digitValue returns the value of a Unicode decimal digit. Nd code points come in
// contiguous runs of ten starting at zero, so the value is the offset from the
// start of the run modulo ten.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10, true
}
