package insight

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// ReportRequest is the body of POST /reports/generate.
type ReportRequest struct {
	Symbol     string `json:"symbol" validate:"required"`
	Period     string `json:"period" validate:"required"`
	ReportDate string `json:"report_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReportSummary is the slice of the generated report's data the client
// surfaces. The server sends far more; the rest is ignored.
type ReportSummary struct {
	Symbol        string `json:"symbol"`
	Date          string `json:"date"`
	Trend         string `json:"trend"`
	OverallSignal string `json:"overall_signal"`
	ActionPlan    struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	} `json:"action_plan"`
}

// ReportResult is the success body of POST /reports/generate.
type ReportResult struct {
	Success    bool           `json:"success,omitempty"`
	ReportPath string         `json:"report_path" validate:"required"`
	Summary    *ReportSummary `json:"data,omitempty"`
}

// GenerateReport asks the collaborator to build a report for req.Symbol.
func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &InvalidRequestError{Err: err}
	}

	var res ReportResult
	err := c.do(ctx, call{
		endpoint: EndpointGenerateReport,
		method:   "POST",
		path:     "/reports/generate",
		body:     req,
		symbol:   req.Symbol,
	}, func(r io.Reader) error {
		return decodeJSON(r, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DownloadReport streams the generated report named filename into w and
// returns the number of bytes written.
func (c *Client) DownloadReport(ctx context.Context, filename string, w io.Writer) (int64, error) {
	if filename == "" {
		return 0, &InvalidRequestError{Err: fmt.Errorf("filename is required")}
	}

	var n int64
	err := c.do(ctx, call{
		endpoint: EndpointViewReport,
		method:   "GET",
		path:     "/reports/view/" + url.PathEscape(filename),
	}, func(r io.Reader) error {
		cw := &checkedWriter{w: w}
		var err error
		n, err = io.Copy(cw, r)
		if cw.err != nil {
			return &WriteError{Op: EndpointViewReport, Err: cw.err}
		}
		return err
	})
	return n, err
}

// checkedWriter remembers the writer's own failure so it is not mistaken
// for a failed body read.
type checkedWriter struct {
	w   io.Writer
	err error
}

func (cw *checkedWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if err != nil {
		cw.err = err
	}
	return n, err
}
