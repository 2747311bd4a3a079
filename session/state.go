package session

import (
	"github.com/rustyeddy/marketinsight/insight"
	"github.com/rustyeddy/marketinsight/market"
)

// Phase is where the session's single request slot is.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Op names the two user-triggered operations.
type Op int

const (
	OpNone Op = iota
	OpFetchMarketData
	OpGenerateReport
)

func (o Op) String() string {
	switch o {
	case OpFetchMarketData:
		return "fetch_market_data"
	case OpGenerateReport:
		return "generate_report"
	default:
		return "none"
	}
}

// RequestState describes the last or current request.
type RequestState struct {
	Phase Phase
	Op    Op
	Err   error // outcome of the last Done request; nil on success
}

// State is a point-in-time copy of the session. Version increases with
// every transition so observers can drop stale snapshots.
type State struct {
	Version uint64
	Symbol  string
	Status  string
	Loading bool
	Data    *market.MarketData
	Report  *insight.ReportResult
	Request RequestState
}
