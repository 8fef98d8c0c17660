package runner

// quota counts ticks for one run and enforces the limit.
//
// The quota catches charts that can never finish, for example a chart whose
// completion node is gated on a sensor that stays unknown.
type quota struct {
	runID string
	limit int64
	used  int64
}

func newQuota(runID string, limit int64) *quota {
	return &quota{runID: runID, limit: limit}
}

// Take reserves one tick. It returns *TickQuotaError once the limit is
// reached. A limit <= 0 disables the quota.
func (q *quota) Take() error {
	if q.limit > 0 && q.used >= q.limit {
		return &TickQuotaError{RunID: q.runID, Ticks: q.used, Limit: q.limit}
	}
	q.used++
	return nil
}

// Used returns how many ticks were taken.
func (q *quota) Used() int64 {
	return q.used
}
