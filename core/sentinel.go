package core

// Nothing is the singleton sentinel passed as the initial upstream Pull of
// a pipeline run, priming an otherwise-empty chain. Calling it always
// reports end-of-stream: it never holds a value and is never mistaken for
// one.
var Nothing Pull = func() (any, error) {
	return nil, ErrBlockedUpstream
}
