package server

import (
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Upload metrics
	uploadsTotal        int64
	uploadBytesTotal    int64
	uploadErrorsTotal   int64
	uploadDurationTotal time.Duration

	// Download metrics
	downloadsTotal      int64
	downloadBytesTotal  int64
	downloadErrorsTotal int64

	// Auth metrics
	loginAttemptsTotal int64
	loginSuccessTotal  int64
	loginFailuresTotal int64

	// Chat metrics
	chatClientsActive int64
	chatParcelsTotal  int64

	// Archive metrics
	archivedTotal int64

	// System metrics
	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordUpload records a successful upload
func (m *Metrics) RecordUpload(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
	m.uploadDurationTotal += duration
}

// RecordUploadError records an upload error
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErrorsTotal++
}

// RecordDownload records a successful download
func (m *Metrics) RecordDownload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsTotal++
	m.downloadBytesTotal += bytes
}

// RecordDownloadError records a download error
func (m *Metrics) RecordDownloadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadErrorsTotal++
}

// RecordLoginAttempt records a login attempt
func (m *Metrics) RecordLoginAttempt(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAttemptsTotal++
	if success {
		m.loginSuccessTotal++
	} else {
		m.loginFailuresTotal++
	}
}

// ChatClientConnected adjusts the active chat client gauge.
func (m *Metrics) ChatClientConnected(delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatClientsActive += delta
}

// RecordChatParcel counts one relayed chat parcel.
func (m *Metrics) RecordChatParcel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatParcelsTotal++
}

// RecordArchived counts image rows copied to object storage.
func (m *Metrics) RecordArchived(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archivedTotal += n
}

// RecordRequest records an HTTP request and its status class.
func (m *Metrics) RecordRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	switch {
	case status >= 500:
		m.requestErrors5xx++
	case status >= 400:
		m.requestErrors4xx++
	}
}

// MetricsSnapshot is a point-in-time copy for exposition.
type MetricsSnapshot struct {
	UploadsTotal      int64
	UploadBytesTotal  int64
	UploadErrorsTotal int64

	DownloadsTotal      int64
	DownloadBytesTotal  int64
	DownloadErrorsTotal int64

	LoginAttemptsTotal int64
	LoginSuccessTotal  int64
	LoginFailuresTotal int64

	ChatClientsActive int64
	ChatParcelsTotal  int64

	ArchivedTotal int64

	RequestsTotal    int64
	RequestErrors4xx int64
	RequestErrors5xx int64
}

// Snapshot returns a consistent copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		UploadsTotal:        m.uploadsTotal,
		UploadBytesTotal:    m.uploadBytesTotal,
		UploadErrorsTotal:   m.uploadErrorsTotal,
		DownloadsTotal:      m.downloadsTotal,
		DownloadBytesTotal:  m.downloadBytesTotal,
		DownloadErrorsTotal: m.downloadErrorsTotal,
		LoginAttemptsTotal:  m.loginAttemptsTotal,
		LoginSuccessTotal:   m.loginSuccessTotal,
		LoginFailuresTotal:  m.loginFailuresTotal,
		ChatClientsActive:   m.chatClientsActive,
		ChatParcelsTotal:    m.chatParcelsTotal,
		ArchivedTotal:       m.archivedTotal,
		RequestsTotal:       m.requestsTotal,
		RequestErrors4xx:    m.requestErrors4xx,
		RequestErrors5xx:    m.requestErrors5xx,
	}
}
