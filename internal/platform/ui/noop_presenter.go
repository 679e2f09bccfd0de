// internal/platform/ui/noop_presenter.go
package ui

import "trustlens/internal/core/domain"

// NoopPresenter descarta todo. Se usa en modo quiet y cuando el
// notifier se crea sin presenter.
type NoopPresenter struct{}

func NewNoopPresenter() *NoopPresenter { return &NoopPresenter{} }

func (*NoopPresenter) Start(RunInfo) {}
func (*NoopPresenter) StartAnalyzer(string) {}
func (*NoopPresenter) FinishAnalyzer(string, Status, domain.AnalyzerResult) {}
func (*NoopPresenter) Info(string) {}
func (*NoopPresenter) Warning(string) {}
func (*NoopPresenter) Error(string) {}
func (*NoopPresenter) Finish(RunStats) {}
func (*NoopPresenter) Close() error { return nil }

var _ Presenter = (*NoopPresenter)(nil)
