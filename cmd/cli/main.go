// Package main provides the command line client.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/playtime/internal/api/connect"
	"github.com/osa030/playtime/internal/app/calc"
	"github.com/osa030/playtime/internal/app/report"
	"github.com/osa030/playtime/internal/infra/config"
	"github.com/osa030/playtime/internal/infra/logger"
	"github.com/osa030/playtime/internal/infra/youtube"
)

var (
	app     = kingpin.New("playtime", "YouTube playlist duration calculator")
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()

	// calc command
	calcCmd    = app.Command("calc", "Calculate a playlist duration locally")
	calcConfig = calcCmd.Flag("config", "Path to config file").Default("config/server.yaml").String()
	calcURL    = calcCmd.Arg("playlist-url", "Playlist URL").Required().String()
	calcStart  = calcCmd.Flag("start", "First video position (1-based)").Default("1").Int()
	calcEnd    = calcCmd.Flag("end", "Last video position (0 for the whole playlist)").Default("0").Int()
	calcSpeed  = calcCmd.Flag("speed", "Playback speed").Default("1").Float64()
	calcExport = calcCmd.Flag("export", "Export the report").Enum("text", "csv", "yaml")
	calcOut    = calcCmd.Flag("out", "Export destination (default: the format's file name)").String()

	// remote command
	remoteCmd    = app.Command("remote", "Calculate a playlist duration on a server")
	remoteServer = remoteCmd.Flag("server", "Server address").Default("http://localhost:8080").String()
	remoteURL    = remoteCmd.Arg("playlist-url", "Playlist URL").Required().String()
	remoteStart  = remoteCmd.Flag("start", "First video position (1-based)").Default("1").Int()
	remoteEnd    = remoteCmd.Flag("end", "Last video position (0 for the whole playlist)").Default("0").Int()
	remoteSpeed  = remoteCmd.Flag("speed", "Playback speed").Default("1").Float64()

	// parse-link command
	parseLinkCmd = app.Command("parse-link", "Decode a share link")
	parseLink    = parseLinkCmd.Arg("link", "Share link").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Output: "stderr", Level: level}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case calcCmd.FullCommand():
		runCalc(ctx)
	case remoteCmd.FullCommand():
		runRemote(ctx)
	case parseLinkCmd.FullCommand():
		runParseLink()
	}
}

func runCalc(ctx context.Context) {
	cfg, err := config.Load(*calcConfig)
	if err != nil {
		fail(err)
	}

	svc, err := calc.NewServiceFromConfig(ctx, cfg)
	if err != nil {
		fail(err)
	}

	outcome, err := svc.Calculate(ctx, calc.Request{
		PlaylistURL:   *calcURL,
		StartVideo:    *calcStart,
		EndVideo:      *calcEnd,
		PlaybackSpeed: *calcSpeed,
	})
	if err != nil {
		fmt.Printf("Error: %s\n", calc.UserMessage(err, cfg.Messages))
		if *verbose {
			fmt.Printf("  %+v\n", err)
		}
		os.Exit(1)
	}

	r := report.New(cfg.Report.Title, outcome)
	fmt.Println(r.Title)
	fmt.Println()
	for _, row := range r.Rows {
		fmt.Printf("  %-24s %s\n", row.Label+":", row.Value)
	}
	fmt.Printf("  %s\n", report.DatesLine(outcome.Metadata))
	fmt.Printf("  Playlist: %s\n", youtube.PlaylistURL(outcome.PlaylistID))
	if outcome.Metadata.ThumbnailURL != "" {
		fmt.Printf("  Thumbnail: %s\n", outcome.Metadata.ThumbnailURL)
	}
	printCaveats(outcome.Result.Partial, outcome.Result.PartialReason, len(outcome.Result.Degraded))

	if link, err := report.ShareLink(cfg.Report.ShareBaseURL, outcome.Request); err == nil {
		fmt.Printf("\nShareable Link: %s\n", link)
	}

	if *calcExport != "" {
		format, err := report.ParseFormat(*calcExport)
		if err != nil {
			fail(err)
		}
		var buf bytes.Buffer
		if err := r.Write(&buf, format); err != nil {
			fail(err)
		}
		out := *calcOut
		if out == "" {
			out = format.Filename()
		}
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			fail(err)
		}
		fmt.Printf("Report written to %s\n", out)
	}
}

func runRemote(ctx context.Context) {
	client := apiconnect.NewDurationServiceClient(http.DefaultClient, *remoteServer)

	resp, err := client.Calculate(ctx, connect.NewRequest(&apiconnect.CalculateRequest{
		PlaylistURL:   *remoteURL,
		StartVideo:    *remoteStart,
		EndVideo:      *remoteEnd,
		PlaybackSpeed: *remoteSpeed,
	}))
	if err != nil {
		var connectErr *connect.Error
		if errors.As(err, &connectErr) {
			fmt.Printf("Error [%s]: %s\n", connectErr.Code(), connectErr.Message())
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	m := resp.Msg
	fmt.Printf("Playlist Name:          %s\n", m.Title)
	fmt.Printf("Creator Name:           %s\n", m.Creator)
	fmt.Printf("Number of Videos:       %d\n", m.ItemCount)
	fmt.Printf("Average Video Duration: %s\n", m.AverageDuration)
	fmt.Printf("%s\n", m.Dates)
	fmt.Printf("Total Duration:         %s\n", m.TotalDuration)
	fmt.Printf("Estimated Watch Time:   %s\n", m.EstimatedWatchTime)
	fmt.Printf("Daily Watch Time:       %s\n", m.DailyWatchTime)
	fmt.Printf("Weekly Watch Time:      %s\n", m.WeeklyWatchTime)
	fmt.Printf("Monthly Watch Time:     %s\n", m.MonthlyWatchTime)
	printCaveats(m.Partial, m.PartialReason, m.DegradedCount)
	fmt.Printf("\nShareable Link: %s\n", m.ShareLink)
	fmt.Printf("Request ID: %s\n", resp.Header().Get(apiconnect.RequestIDHeader))
}

func runParseLink() {
	req, err := report.ParseShareLink(*parseLink)
	if err != nil {
		fail(err)
	}

	end := "(end of playlist)"
	if req.EndVideo > 0 {
		end = fmt.Sprintf("%d", req.EndVideo)
	}
	fmt.Printf("Playlist URL:   %s\n", req.PlaylistURL)
	fmt.Printf("Start Video:    %d\n", req.StartVideo)
	fmt.Printf("End Video:      %s\n", end)
	fmt.Printf("Playback Speed: %gx\n", req.PlaybackSpeed)
}

func printCaveats(partial bool, reason string, degraded int) {
	if partial {
		fmt.Printf("\n⚠ Partial result: traversal stopped early (%s)\n", reason)
	}
	if degraded > 0 {
		fmt.Printf("⚠ %d video(s) were unavailable and counted as 0s\n", degraded)
	}
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
