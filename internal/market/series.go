package market

// Series holds float64 columns of a candle window, the shape indicator math works on.
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

func NewSeries(bars []Bar) Series {
	n := len(bars)
	s := Series{
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}

	for i, b := range bars {
		s.Open[i], _ = b.Open.Float64()
		s.High[i], _ = b.High.Float64()
		s.Low[i], _ = b.Low.Float64()
		s.Close[i], _ = b.Close.Float64()
		s.Volume[i], _ = b.Volume.Float64()
	}

	return s
}

func (s Series) Len() int {
	return len(s.Close)
}

func (s Series) LastClose() float64 {
	if len(s.Close) == 0 {
		return 0
	}
	return s.Close[len(s.Close)-1]
}
