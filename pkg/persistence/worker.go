package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"interviewsim/pkg/logx"
)

// Worker drains persistence requests off a channel so interview steps
// never block on database writes.
type Worker struct {
	ops     *DatabaseOperations
	logger  *logx.Logger
	channel chan *Request
	done    chan struct{}
}

// StartWorker launches the persistence worker goroutine against db.
func StartWorker(db *sql.DB, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}

	w := &Worker{
		ops:     NewDatabaseOperations(db),
		logger:  logx.NewLogger("persistence"),
		channel: make(chan *Request, queueSize),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		w.logger.Debug("Starting persistence worker")

		for req := range w.channel {
			if req != nil {
				w.processRequest(req)
			}
		}

		w.logger.Info("Persistence worker finished draining queue")
	}()

	return w
}

// Channel returns the request channel for fire-and-forget writes.
func (w *Worker) Channel() chan<- *Request {
	return w.channel
}

// Drain closes the request channel and waits for all queued writes to
// land, or for ctx to expire.
func (w *Worker) Drain(ctx context.Context) error {
	w.logger.Info("Draining persistence queue...")
	close(w.channel)

	select {
	case <-w.done:
		w.logger.Info("Persistence queue drained successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for persistence queue to drain: %w", ctx.Err())
	}
}

//nolint:cyclop // dispatch table over operation types
func (w *Worker) processRequest(req *Request) {
	switch req.Operation {
	case OpInsertSession:
		if rec, ok := req.Data.(*SessionRecord); ok {
			if err := w.ops.InsertSession(rec); err != nil {
				w.logger.Error("Failed to insert session: %v", err)
			} else {
				w.logger.Debug("Inserted session: %s", rec.ID)
			}
		}

	case OpInsertQALog:
		if rec, ok := req.Data.(*QARecord); ok {
			if err := w.ops.InsertQALog(rec); err != nil {
				w.logger.Error("Failed to insert qa log: %v", err)
			} else {
				w.logger.Debug("Inserted qa log: session=%s q=%d", rec.SessionID, rec.QuestionNumber)
			}
		}

	case OpUpsertProfile:
		if rec, ok := req.Data.(*ProfileRecord); ok {
			if err := w.ops.UpsertProfile(rec); err != nil {
				w.logger.Error("Failed to upsert profile: %v", err)
			} else {
				w.logger.Debug("Upserted profile for session: %s", rec.SessionID)
			}
		}

	case OpEndSession:
		if end, ok := req.Data.(*SessionEnd); ok {
			if err := w.ops.EndSession(end); err != nil {
				w.logger.Error("Failed to end session %s: %v", end.SessionID, err)
			} else {
				w.logger.Debug("Ended session: %s (score %.1f)", end.SessionID, end.OverallScore)
			}
		}

	case OpGetSession:
		if req.Response != nil {
			if sessionID, ok := req.Data.(string); ok {
				rec, err := w.ops.GetSession(sessionID)
				if err != nil {
					req.Response <- err
				} else {
					req.Response <- rec
				}
			}
		}

	case OpGetTranscript:
		if req.Response != nil {
			if sessionID, ok := req.Data.(string); ok {
				records, err := w.ops.GetTranscript(sessionID)
				if err != nil {
					req.Response <- err
				} else {
					req.Response <- records
				}
			}
		}

	case OpGetSessionList:
		if req.Response != nil {
			limit, _ := req.Data.(int)
			records, err := w.ops.ListSessions(limit)
			if err != nil {
				req.Response <- err
			} else {
				req.Response <- records
			}
		}

	default:
		w.logger.Warn("Unknown persistence operation: %s", req.Operation)
	}
}
