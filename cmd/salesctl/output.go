package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"salesbi/internal/assistant"
	"salesbi/internal/history"
	"salesbi/internal/intents"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func printAnswer(w io.Writer, ans *assistant.Answer, width int) {
	fmt.Fprintf(w, "%s (%s)\n\n", ans.Chart.Title, ans.Intent.Label())
	printResult(w, ans.Result, width)
	fmt.Fprintf(w, "\n%d rows in %s\n", ans.Result.Len(), ans.Elapsed.Round(time.Microsecond))
}

// printResult writes res as an aligned two-column table with a proportional bar
// for each value, sized to fit width.
func printResult(w io.Writer, res *intents.Result, width int) {
	if res == nil {
		return
	}

	values := make([]string, res.Len())
	keyWidth, valueWidth := len(res.KeyLabel), len(res.ValueLabel)
	maxValue := 0.0
	for i, p := range res.Points {
		values[i] = formatValue(p.Value)
		keyWidth = max(keyWidth, len(p.Key))
		valueWidth = max(valueWidth, len(values[i]))
		maxValue = max(maxValue, p.Value)
	}

	barWidth := width - keyWidth - valueWidth - 4
	fmt.Fprintf(w, "%-*s  %*s\n", keyWidth, res.KeyLabel, valueWidth, res.ValueLabel)
	for i, p := range res.Points {
		line := fmt.Sprintf("%-*s  %*s", keyWidth, p.Key, valueWidth, values[i])
		if barWidth >= minBarWidth && maxValue > 0 && p.Value > 0 {
			line += "  " + strings.Repeat("#", max(1, int(p.Value/maxValue*float64(barWidth))))
		}
		fmt.Fprintln(w, line)
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printHistory(w io.Writer, logs []history.QueryLog, width int) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No questions asked yet")
		return
	}

	const timeLayout = "2006-01-02 15:04:05"
	prefix := len(timeLayout) + 28
	for _, l := range logs {
		question := l.Question
		if room := width - prefix; room > 3 && len(question) > room {
			question = question[:room-3] + "..."
		}
		fmt.Fprintf(w, "%s  %-24s  %s\n", l.CreatedAt.Local().Format(timeLayout), l.Intent, question)
	}
}
