package internal

import "github.com/rs/zerolog"

// Report is what goes through the runtime's single warning/error channel.
type Report struct {
	Err error

	// Info describes where the error happened, e.g. `callback for watcher "a.b"`.
	Info string

	// Expression of the watcher involved, if any.
	Expression string

	// Owner name of the watcher involved, if any.
	Owner string

	// Warning is set for misuse and diagnostics, unset for errors raised by user code.
	Warning bool
}

// Reporter receives every report of a runtime.
type Reporter func(Report)

func (r *Runtime) handleError(err error, w *Watcher, info string) {
	if w != nil && w.owner != nil && !w.owner.captureError(err, info) {
		return
	}

	r.report(Report{Err: err, Info: info}, w)
}

func (r *Runtime) warn(err error, w *Watcher, info string) {
	r.report(Report{Err: err, Info: info, Warning: true}, w)
}

func (r *Runtime) report(rep Report, w *Watcher) {
	if w != nil {
		rep.Expression = w.expression
		if w.owner != nil {
			rep.Owner = w.owner.name
		}
	}

	level := "error"
	if rep.Warning {
		level = "warning"
	}
	r.metrics.reports.WithLabelValues(level).Inc()

	if r.reporter != nil && r.callReporter(rep) {
		return
	}

	var event *zerolog.Event
	if rep.Warning {
		event = r.logger.Warn()
	} else {
		event = r.logger.Error()
	}

	if rep.Expression != "" {
		event = event.Str("expression", rep.Expression)
	}
	if rep.Owner != "" {
		event = event.Str("owner", rep.Owner)
	}

	event.Err(rep.Err).Msg(rep.Info)
}

// callReporter hands rep to the configured reporter. A panicking reporter is
// logged and reported false so that rep still reaches the logger.
func (r *Runtime) callReporter(rep Report) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Err(recoverError(rec)).Str("info", rep.Info).Msg("reporter panicked")
			ok = false
		}
	}()

	r.reporter(rep)
	return true
}
