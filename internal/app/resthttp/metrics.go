package resthttp

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/sir_venger/gridfiles/internal/app/resthttp"

type metrics struct {
	uploads         metric.Int64Counter
	uploadedBytes   metric.Int64Counter
	downloadedBytes metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)

	uploads, err := meter.Int64Counter("gridfiles.uploads",
		metric.WithDescription("Number of stored files"))
	if err != nil {
		return nil, err
	}
	uploaded, err := meter.Int64Counter("gridfiles.uploaded_bytes",
		metric.WithDescription("Bytes accepted by POST /files"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	downloaded, err := meter.Int64Counter("gridfiles.downloaded_bytes",
		metric.WithDescription("Bytes served by GET /files/{id}"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &metrics{
		uploads:         uploads,
		uploadedBytes:   uploaded,
		downloadedBytes: downloaded,
	}, nil
}

func (m *metrics) uploaded(ctx context.Context, n int64) {
	m.uploads.Add(ctx, 1)
	m.uploadedBytes.Add(ctx, n)
}

func (m *metrics) downloaded(ctx context.Context, n int64) {
	m.downloadedBytes.Add(ctx, n)
}
