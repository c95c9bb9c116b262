package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// DurationServiceName is the fully-qualified name of the DurationService.
	DurationServiceName = "playtime.v1.DurationService"

	// DurationServiceCalculateProcedure is the path of the Calculate RPC.
	DurationServiceCalculateProcedure = "/playtime.v1.DurationService/Calculate"
	// DurationServiceExportReportProcedure is the path of the ExportReport RPC.
	DurationServiceExportReportProcedure = "/playtime.v1.DurationService/ExportReport"
)

// DurationServiceHandler is implemented by the DurationService server.
type DurationServiceHandler interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	ExportReport(context.Context, *connect.Request[ExportReportRequest]) (*connect.Response[ExportReportResponse], error)
}

// NewDurationServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewDurationServiceHandler(svc DurationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	calculate := connect.NewUnaryHandler(
		DurationServiceCalculateProcedure,
		svc.Calculate,
		opts...,
	)
	exportReport := connect.NewUnaryHandler(
		DurationServiceExportReportProcedure,
		svc.ExportReport,
		opts...,
	)

	return "/" + DurationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DurationServiceCalculateProcedure:
			calculate.ServeHTTP(w, r)
		case DurationServiceExportReportProcedure:
			exportReport.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// DurationServiceClient calls a remote DurationService.
type DurationServiceClient struct {
	calculate    *connect.Client[CalculateRequest, CalculateResponse]
	exportReport *connect.Client[ExportReportRequest, ExportReportResponse]
}

// NewDurationServiceClient creates a client for the server at baseURL.
func NewDurationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DurationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &DurationServiceClient{
		calculate: connect.NewClient[CalculateRequest, CalculateResponse](
			httpClient,
			baseURL+DurationServiceCalculateProcedure,
			opts...,
		),
		exportReport: connect.NewClient[ExportReportRequest, ExportReportResponse](
			httpClient,
			baseURL+DurationServiceExportReportProcedure,
			opts...,
		),
	}
}

// Calculate calls playtime.v1.DurationService.Calculate.
func (c *DurationServiceClient) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

// ExportReport calls playtime.v1.DurationService.ExportReport.
func (c *DurationServiceClient) ExportReport(ctx context.Context, req *connect.Request[ExportReportRequest]) (*connect.Response[ExportReportResponse], error) {
	return c.exportReport.CallUnary(ctx, req)
}
