package clock

import "time"

// Clock 统一时间来源，业务逻辑不直接调用 time.Now，便于测试控制时间
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns the wall clock used in production.
func System() Clock {
	return systemClock{}
}

// Fixed 固定时间的时钟，测试用
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
