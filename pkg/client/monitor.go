package client

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Connectivity is the display-only liveness of the API.
type Connectivity string

const (
	ConnectivityUnknown Connectivity = "unknown"
	ConnectivityOK      Connectivity = "ok"
	ConnectivityError   Connectivity = "error"
)

// StatusChecker calls the API status endpoint. *Client implements it.
type StatusChecker interface {
	Status(ctx context.Context) (*StatusResponse, error)
}

// StatusMonitor polls the status endpoint. It shares nothing with Form, so a
// failing check never affects submissions.
type StatusMonitor struct {
	api      StatusChecker
	interval time.Duration
	timeout  time.Duration
	current  atomic.Value // Connectivity
}

// NewStatusMonitor は interval ごとに api を確認する StatusMonitor を生成する
func NewStatusMonitor(api StatusChecker, interval time.Duration) *StatusMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m := &StatusMonitor{api: api, interval: interval, timeout: 5 * time.Second}
	m.current.Store(ConnectivityUnknown)
	return m
}

// Connectivity returns the result of the latest check.
func (m *StatusMonitor) Connectivity() Connectivity {
	return m.current.Load().(Connectivity)
}

// Check runs one status call and records the result.
func (m *StatusMonitor) Check(ctx context.Context) Connectivity {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	c := ConnectivityOK
	resp, err := m.api.Status(ctx)
	if err != nil || resp.Status != "ok" {
		slog.Debug("api status check failed", "error", err)
		c = ConnectivityError
	}
	m.current.Store(c)
	return c
}

// Run checks immediately and then every interval until ctx is done.
func (m *StatusMonitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
