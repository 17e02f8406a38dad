package passes

type Status string

const (
	StatusActive        Status = "active"
	StatusInGracePeriod Status = "in_grace_period"
	StatusExpired       Status = "expired"
)

// StatusAt derives the pass state from its window. The grace period is
// inclusive on both ends: a pass at exactly expiresAt or gracePeriodEnd is
// in grace, not expired.
func StatusAt(now, expiresAt, gracePeriodEnd int64) Status {
	switch {
	case now < expiresAt:
		return StatusActive
	case now <= gracePeriodEnd:
		return StatusInGracePeriod
	default:
		return StatusExpired
	}
}
