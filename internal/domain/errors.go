package domain

import "errors"

var (
	// ErrSourceUnavailable marks network or HTTP transport failures talking to a place source.
	ErrSourceUnavailable = errors.New("place source unavailable")
	// ErrSourceRejected marks a non-success status reported by a place source.
	ErrSourceRejected = errors.New("place source rejected request")
	// ErrSourceDenied is a rejection caused by credentials or quota; every
	// later request in the run would fail the same way.
	ErrSourceDenied = errors.New("place source denied access")
	// ErrStoreWrite marks a failed bulk insert chunk.
	ErrStoreWrite = errors.New("restroom store write failed")
	// ErrStoreRead marks a failed listing.
	ErrStoreRead = errors.New("restroom store read failed")
)
