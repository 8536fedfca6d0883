package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"salesbi/internal/assistant"
	"salesbi/internal/charts"
	"salesbi/internal/config"
	"salesbi/internal/intents"
)

const (
	errEmptyQuestion = "Please enter a question"
	errInvalidBody   = "Invalid request"

	errRequestCancelled = "Request cancelled"
	errRequestTimedOut  = "Request timed out"

	chartFilename = "plot.png"
	csvFilename   = "data.csv"
)

// AskParams is the body of POST /api/ask.
type AskParams struct {
	Query string `json:"query"`
}

// AskResponse is an answered question ready for display.
type AskResponse struct {
	Question   string             `json:"question"`
	Intent     intents.Intent     `json:"intent"`
	Label      string             `json:"label"`
	N          int                `json:"n,omitempty"`
	Chart      *intents.ChartSpec `json:"chart"`
	Columns    []string           `json:"columns"`
	Rows       []intents.Point    `json:"rows"`
	ChartURL   string             `json:"chart_url"`
	CSVURL     string             `json:"csv_url"`
	DurationMs int64              `json:"duration_ms"`
}

func newService(ctx *cartridge.Context, recordHistory bool) *assistant.Service {
	svc := &assistant.Service{
		Logger: ctx.Logger,
		Config: ctx.Config.(*config.Config),
		Source: assistant.SourceHTTP,
	}
	if recordHistory {
		svc.DB = ctx.DB()
	}
	return svc
}

// answer runs question and writes the error response when there is no result to
// show. ok is false when a response has already been written.
func answer(ctx *cartridge.Context, question string, recordHistory bool) (*assistant.Answer, bool, error) {
	if strings.TrimSpace(question) == "" {
		return nil, false, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errEmptyQuestion})
	}

	ans, err := newService(ctx, recordHistory).Ask(question)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			return nil, false, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errEmptyQuestion})
		}
		return nil, false, ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": assistant.LoadErrorMessage(err),
		})
	}

	if !ans.Recognized() {
		return nil, false, ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  intents.MessageUnrecognized,
			"intent": intents.Unrecognized,
		})
	}
	return ans, true, nil
}

// AskAction answers a question posted as JSON.
func AskAction(ctx *cartridge.Context) error {
	var params AskParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse ask request", slog.Any("error", err))
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errInvalidBody})
	}

	ans, ok, err := answer(ctx, params.Query, true)
	if !ok {
		return err
	}

	return ctx.JSON(newAskResponse(ans))
}

func newAskResponse(ans *assistant.Answer) AskResponse {
	q := url.QueryEscape(ans.Question)
	return AskResponse{
		Question:   ans.Question,
		Intent:     ans.Intent,
		Label:      ans.Intent.Label(),
		N:          ans.N,
		Chart:      ans.Chart,
		Columns:    []string{ans.Result.KeyLabel, ans.Result.ValueLabel},
		Rows:       ans.Result.Points,
		ChartURL:   "/api/chart.png?q=" + q,
		CSVURL:     "/api/data.csv?q=" + q,
		DurationMs: ans.Elapsed.Milliseconds(),
	}
}

// ChartAction renders the chart for ?q= as PNG. With ?download=1 the image is sent
// as an attachment.
func ChartAction(ctx *cartridge.Context) error {
	ans, ok, err := answer(ctx, ctx.Query("q"), false)
	if !ok {
		return err
	}

	data, err := charts.RenderPNG(*ans.Chart, ans.Result)
	if err != nil {
		ctx.Logger.Error("Failed to render chart", slog.String("intent", string(ans.Intent)), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render chart"})
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	if ctx.Query("download") != "" {
		ctx.Set(fiber.HeaderContentDisposition, "attachment; filename="+chartFilename)
	}
	return ctx.Send(data)
}

// DataCSVAction sends the aggregation for ?q= as a CSV download.
func DataCSVAction(ctx *cartridge.Context) error {
	ans, ok, err := answer(ctx, ctx.Query("q"), false)
	if !ok {
		return err
	}

	var buf bytes.Buffer
	if err := intents.WriteCSV(&buf, ans.Result); err != nil {
		ctx.Logger.Error("Failed to encode csv", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to encode data"})
	}

	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, "attachment; filename="+csvFilename)
	return ctx.Send(buf.Bytes())
}

// ExamplesAction lists the suggested questions.
func ExamplesAction(ctx *cartridge.Context) error {
	return ctx.JSON(fiber.Map{"examples": intents.Examples})
}

// OverviewAction answers all example questions at once.
func OverviewAction(ctx *cartridge.Context) error {
	answers, err := newService(ctx, false).Overview(ctx.UserContext())
	if err != nil {
		status, msg := overviewFailure(err)
		if status != fiber.StatusServiceUnavailable {
			ctx.Logger.Debug("Overview interrupted", slog.Any("error", err))
		}
		return ctx.Status(status).JSON(fiber.Map{"error": msg})
	}

	overview := make([]AskResponse, 0, len(answers))
	for _, ans := range answers {
		if ans.Recognized() {
			overview = append(overview, newAskResponse(ans))
		}
	}
	return ctx.JSON(fiber.Map{"overview": overview})
}

// overviewFailure maps an Overview error to a status and message. Only dataset
// failures are reported as load errors.
func overviewFailure(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return fiber.StatusRequestTimeout, errRequestCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, errRequestTimedOut
	default:
		return fiber.StatusServiceUnavailable, assistant.LoadErrorMessage(err)
	}
}
