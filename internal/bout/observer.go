package bout

// Observer receives a snapshot and the outcome after every resolved round.
// Both are plain values; observers have no way back into the bout.
type Observer interface {
	ObserveRound(snap Snapshot, out RoundOutcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot, RoundOutcome)

func (f ObserverFunc) ObserveRound(snap Snapshot, out RoundOutcome) { f(snap, out) }
