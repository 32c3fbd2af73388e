package lexdfa

import "github.com/projectdiscovery/gologger"

// Logger is the subset of gologger's leveled-event API the construction
// pipeline needs. Exists so Config can substitute a different sink (tests,
// embedding applications) without depending on gologger's global state.
type Logger interface {
	Verbosef(format string, args ...any)
	Debugf(format string, args ...any)
	Warningf(format string, args ...any)
}

// defaultLogger adapts the package-level gologger instance to Logger,
// grounded on projectdiscovery-alterx's gologger.Verbose()/.Debug()/
// .Warning().Msgf(...) call style.
type defaultLogger struct{}

func (defaultLogger) Verbosef(format string, args ...any) {
	gologger.Verbose().Msgf(format, args...)
}

func (defaultLogger) Debugf(format string, args ...any) {
	gologger.Debug().Msgf(format, args...)
}

func (defaultLogger) Warningf(format string, args ...any) {
	gologger.Warning().Msgf(format, args...)
}
