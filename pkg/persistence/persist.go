package persistence

// PersistSession sends a new session record to the persistence worker.
// This is a fire-and-forget operation.
func PersistSession(rec *SessionRecord, persistenceChannel chan<- *Request) {
	if persistenceChannel == nil || rec == nil {
		return
	}

	persistenceChannel <- &Request{
		Operation: OpInsertSession,
		Data:      rec,
		Response:  nil, // Fire-and-forget
	}
}

// PersistQALog sends one transcript row to the persistence worker.
func PersistQALog(rec *QARecord, persistenceChannel chan<- *Request) {
	if persistenceChannel == nil || rec == nil {
		return
	}

	persistenceChannel <- &Request{
		Operation: OpInsertQALog,
		Data:      rec,
		Response:  nil, // Fire-and-forget
	}
}

// PersistProfile sends the profile analysis to the persistence worker.
func PersistProfile(rec *ProfileRecord, persistenceChannel chan<- *Request) {
	if persistenceChannel == nil || rec == nil {
		return
	}

	persistenceChannel <- &Request{
		Operation: OpUpsertProfile,
		Data:      rec,
		Response:  nil, // Fire-and-forget
	}
}

// PersistSessionEnd sends the final session outcome to the persistence worker.
func PersistSessionEnd(end *SessionEnd, persistenceChannel chan<- *Request) {
	if persistenceChannel == nil || end == nil || end.SessionID == "" {
		return
	}

	persistenceChannel <- &Request{
		Operation: OpEndSession,
		Data:      end,
		Response:  nil, // Fire-and-forget
	}
}
