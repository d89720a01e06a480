package model

import "time"

type CallStatus string

const (
	CallStatusStarted CallStatus = "started"
	CallStatusEnded   CallStatus = "ended"
)

// CallLogEntry is pure lifecycle bookkeeping for one call. It is keyed by
// the same call SID as CallSession but stored and mutated independently.
type CallLogEntry struct {
	Status           CallStatus `json:"status"`
	StartTime        time.Time  `json:"startTime"`
	LastExchangeTime *time.Time `json:"lastExchangeTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	Context          string     `json:"context"`
}
