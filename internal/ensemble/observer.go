package ensemble

// Observer is notified about engine events, e.g. to export metrics.
type Observer interface {
	IndicatorFault(timeframe, id string)
	DecisionMade(d Decision)
	OutcomeRecorded(magnitude float64, ids []string)
}

type nopObserver struct{}

func (nopObserver) IndicatorFault(string, string)     {}
func (nopObserver) DecisionMade(Decision)             {}
func (nopObserver) OutcomeRecorded(float64, []string) {}
