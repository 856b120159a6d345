package frontier

import "go.uber.org/zap"

// log is the package-level logger the rest of frontier writes through,
// a zap SugaredLogger in the same global-singleton style as the
// original walker.log4go var it replaces (code.google.com/p/log4go is
// unfetchable today; zap is this corpus's structured logger).
var log = zap.NewNop().Sugar()

// SetLogger replaces the package-level logger. Call it once at process
// startup, before opening a Frontier, if you want output; the default
// is silent so importing this package has no side effect on a
// caller's logging configuration.
func SetLogger(l *zap.Logger) {
	log = l.Sugar()
}

// NewProductionLogger builds the zap logger frontierd uses by
// default: leveled, JSON-encoded, safe for production log shipping.
func NewProductionLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewDevelopmentLogger builds a human-readable console logger, used by
// frontierd when run with --dev.
func NewDevelopmentLogger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}
