// prometheus.go - Prometheus text exposition for the internal counters
package server

import (
	"fmt"
	"net/http"
	"strings"
)

// PrometheusExporter converts internal metrics to Prometheus format
type PrometheusExporter struct {
	version string
}

// NewPrometheusExporter creates a new Prometheus exporter
func NewPrometheusExporter(version string) *PrometheusExporter {
	if version == "" {
		version = "dev"
	}
	return &PrometheusExporter{version: version}
}

// Handler returns an HTTP handler for the /metrics endpoint
func (p *PrometheusExporter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := GetMetrics().Snapshot()

		var output strings.Builder

		output.WriteString("# HELP drift_info Application version info\n")
		output.WriteString("# TYPE drift_info gauge\n")
		output.WriteString(fmt.Sprintf("drift_info{version=%q} 1\n\n", p.version))

		writeCounter(&output, "drift_requests_total", "Total number of HTTP requests", snapshot.RequestsTotal)
		writeCounter(&output, "drift_request_errors_4xx_total", "Total number of 4xx responses", snapshot.RequestErrors4xx)
		writeCounter(&output, "drift_request_errors_5xx_total", "Total number of 5xx responses", snapshot.RequestErrors5xx)

		writeCounter(&output, "drift_image_uploads_total", "Total number of image uploads", snapshot.UploadsTotal)
		writeCounter(&output, "drift_image_upload_bytes_total", "Total bytes ingested", snapshot.UploadBytesTotal)
		writeCounter(&output, "drift_image_upload_errors_total", "Total failed image uploads", snapshot.UploadErrorsTotal)

		writeCounter(&output, "drift_image_downloads_total", "Total number of image downloads", snapshot.DownloadsTotal)
		writeCounter(&output, "drift_image_download_bytes_total", "Total bytes served", snapshot.DownloadBytesTotal)
		writeCounter(&output, "drift_image_download_errors_total", "Total failed image downloads", snapshot.DownloadErrorsTotal)

		writeCounter(&output, "drift_login_attempts_total", "Total number of login attempts", snapshot.LoginAttemptsTotal)
		writeCounter(&output, "drift_login_success_total", "Total number of successful logins", snapshot.LoginSuccessTotal)

		writeGauge(&output, "drift_chat_clients_active", "Currently connected chat clients", snapshot.ChatClientsActive)
		writeCounter(&output, "drift_chat_parcels_total", "Total relayed chat parcels", snapshot.ChatParcelsTotal)

		writeCounter(&output, "drift_images_archived_total", "Image rows copied to object storage", snapshot.ArchivedTotal)

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(output.String()))
	}
}

func writeCounter(b *strings.Builder, name, help string, value int64) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, value)
}

func writeGauge(b *strings.Builder, name, help string, value int64) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, value)
}
