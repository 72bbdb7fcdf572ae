package router

import (
	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
)

// Result is the outcome of one exchange. Text is always displayable: the
// backend's answer on success, a plain-language explanation otherwise.
type Result struct {
	SessionID string
	Backend   ai.Kind
	Text      string
	// Turn is the persisted turn on success.
	Turn *chat.Turn
	Err  *ai.Error
}

// OK reports whether the exchange succeeded and was persisted.
func (r Result) OK() bool {
	return r.Err == nil
}

func failure(sessionID string, backend ai.Kind, err *ai.Error) Result {
	return Result{SessionID: sessionID, Backend: backend, Text: err.Message(), Err: err}
}
