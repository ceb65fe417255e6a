package batches

import "time"

// ExpiryStatus buckets a batch by how close its expiry date is. The bands
// feed the alerting observer only; ledger correctness never depends on them.
type ExpiryStatus string

const (
	ExpiryNone     ExpiryStatus = "not_expiring"
	ExpiryWithin90 ExpiryStatus = "expiring_90"
	ExpiryWithin60 ExpiryStatus = "expiring_60"
	ExpiryWithin30 ExpiryStatus = "expiring_30"
	Expired        ExpiryStatus = "expired"
)

func ClassifyExpiry(now time.Time, expiry *time.Time) ExpiryStatus {
	if expiry == nil {
		return ExpiryNone
	}

	days := int(expiry.Sub(now).Hours() / 24)
	switch {
	case expiry.Before(now):
		return Expired
	case days <= 30:
		return ExpiryWithin30
	case days <= 60:
		return ExpiryWithin60
	case days <= 90:
		return ExpiryWithin90
	default:
		return ExpiryNone
	}
}
