// Package connect provides Connect RPC service implementations.
package connect

import (
	"bytes"
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playtime/internal/app/calc"
	"github.com/osa030/playtime/internal/app/report"
	"github.com/osa030/playtime/internal/domain/duration"
	"github.com/osa030/playtime/internal/infra/config"
)

// Calculator runs playlist duration calculations.
type Calculator interface {
	Calculate(ctx context.Context, req calc.Request) (*calc.Outcome, error)
}

// DurationService implements the DurationService RPC.
type DurationService struct {
	calc   Calculator
	config *config.Config
}

// NewDurationService creates a new DurationService.
func NewDurationService(calculator Calculator, cfg *config.Config) *DurationService {
	return &DurationService{
		calc:   calculator,
		config: cfg,
	}
}

// Ensure DurationService implements the interface.
var _ DurationServiceHandler = (*DurationService)(nil)

// Calculate handles duration calculation requests.
func (s *DurationService) Calculate(
	ctx context.Context,
	req *connect.Request[CalculateRequest],
) (*connect.Response[CalculateResponse], error) {
	outcome, err := s.calc.Calculate(ctx, toCalcRequest(req.Msg))
	if err != nil {
		return nil, s.toConnectError(err)
	}

	link, err := report.ShareLink(s.config.Report.ShareBaseURL, outcome.Request)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	formatted := outcome.Statistics.Formatted()
	return connect.NewResponse(&CalculateResponse{
		PlaylistID:   string(outcome.PlaylistID),
		Title:        outcome.Metadata.Title,
		Creator:      outcome.Metadata.Creator,
		ItemCount:    outcome.Metadata.ItemCount,
		ThumbnailURL: outcome.Metadata.ThumbnailURL,
		Dates:        report.DatesLine(outcome.Metadata),

		TotalSeconds:       outcome.Result.TotalSeconds,
		AdjustedSeconds:    outcome.Statistics.AdjustedTotal,
		TotalDuration:      duration.Format(float64(outcome.Result.TotalSeconds)),
		AverageDuration:    duration.Format(outcome.AverageSeconds),
		EstimatedWatchTime: report.EstimatedWatchTime(outcome),
		DailyWatchTime:     formatted.Daily,
		WeeklyWatchTime:    formatted.Weekly,
		MonthlyWatchTime:   formatted.Monthly,

		ShareLink:     link,
		Partial:       outcome.Result.Partial,
		PartialReason: outcome.Result.PartialReason,
		DegradedCount: len(outcome.Result.Degraded),
	}), nil
}

// ExportReport handles report export requests.
func (s *DurationService) ExportReport(
	ctx context.Context,
	req *connect.Request[ExportReportRequest],
) (*connect.Response[ExportReportResponse], error) {
	format, err := report.ParseFormat(req.Msg.Format)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	outcome, err := s.calc.Calculate(ctx, toCalcRequest(&req.Msg.Request))
	if err != nil {
		return nil, s.toConnectError(err)
	}

	var buf bytes.Buffer
	if err := report.New(s.config.Report.Title, outcome).Write(&buf, format); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&ExportReportResponse{
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Content:     buf.String(),
	}), nil
}

func toCalcRequest(msg *CalculateRequest) calc.Request {
	return calc.Request{
		PlaylistURL:   msg.PlaylistURL,
		StartVideo:    msg.StartVideo,
		EndVideo:      msg.EndVideo,
		PlaybackSpeed: msg.PlaybackSpeed,
	}
}

// toConnectError maps calculation errors to codes carrying the configured
// user-facing message. The underlying error is only logged.
func (s *DurationService) toConnectError(err error) *connect.Error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, calc.ErrInvalidInput):
		code = connect.CodeInvalidArgument
	case errors.Is(err, calc.ErrPlaylistNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, calc.ErrBusy):
		code = connect.CodeResourceExhausted
	case errors.Is(err, calc.ErrNetwork):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}

	if code == connect.CodeInternal || code == connect.CodeUnavailable {
		zlog.Error().Err(err).Str("code", code.String()).Msg("calculation failed")
	} else {
		zlog.Warn().Err(err).Str("code", code.String()).Msg("calculation rejected")
	}

	return connect.NewError(code, errors.New(calc.UserMessage(err, s.config.Messages)))
}
