package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNextTrigger(t *testing.T) {
	cases := []struct {
		name string
		hour int
		now  time.Time
		want time.Time
	}{
		{
			name: "当天还没到点",
			hour: 8,
			now:  time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "当天已经过点",
			hour: 8,
			now:  time.Date(2025, 3, 10, 9, 0, 1, 0, time.UTC),
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "恰好在整点触发时间，应该排到第二天",
			hour: 8,
			now:  time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "整点过1纳秒",
			hour: 8,
			now:  time.Date(2025, 3, 10, 8, 0, 0, 1, time.UTC),
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "零点触发",
			hour: 0,
			now:  time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "月末跨月",
			hour: 1,
			now:  time.Date(2025, 3, 31, 5, 0, 0, 0, time.UTC),
			want: time.Date(2025, 4, 1, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.hour)
			got := s.NextTrigger(tc.now)
			if !got.Equal(tc.want) {
				t.Fatalf("NextTrigger(%v) = %v, want %v", tc.now, got, tc.want)
			}
			if got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
				t.Fatalf("分秒没有清零: %v", got)
			}
			if !got.After(tc.now.UTC()) {
				t.Fatalf("触发时间必须在当前时间之后: now=%v got=%v", tc.now, got)
			}
		})
	}
}

func TestWaitCancelled(t *testing.T) {
	s := New(23)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Wait(ctx); err == nil {
		t.Fatal("context已取消，Wait应该返回错误")
	}
}
