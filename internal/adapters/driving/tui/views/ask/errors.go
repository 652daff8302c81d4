package ask

import "errors"

// ErrNoAnswerService is returned when asking without an answer service.
var ErrNoAnswerService = errors.New("answer service not available")
