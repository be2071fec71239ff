package frames

import (
	"math"
	"testing"
)

const sampleShowinfo = `[Parsed_showinfo_1 @ 0x7f8] n:   0 pts:   1024 pts_time:4.266667 duration:512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x7f8] color_range:tv color_space:bt709
[Parsed_showinfo_1 @ 0x7f8] n:   1 pts:  30720 pts_time:128 duration:512 fmt:yuv420p
frame=    2 fps=0.4 q=-0.0 Lsize=N/A time=00:05:00.00 bitrate=N/A speed=62.8x
[Parsed_showinfo_1 @ 0x7f8] n:   2 pts:  72192 pts_time:300.8 duration:512 fmt:yuv420p
`

func TestParseSceneTimes(t *testing.T) {
	got := parseSceneTimes(sampleShowinfo)

	want := []float64{4.266667, 128, 300.8}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("timestamp[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseSceneTimesEmpty(t *testing.T) {
	if got := parseSceneTimes("frame= 100 fps=25\n"); len(got) != 0 {
		t.Errorf("parseSceneTimes = %v, want empty", got)
	}
}

func TestFilterTimestamps(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		minGap float64
		want   []float64
	}{
		{
			name:   "drops close followers",
			input:  []float64{0, 0.5, 1.0, 3.0, 3.5, 10.0},
			minGap: 2.0,
			want:   []float64{0, 3.0, 10.0},
		},
		{
			name:   "keeps all when spread out",
			input:  []float64{0, 5, 10},
			minGap: 2.0,
			want:   []float64{0, 5, 10},
		},
		{
			name:   "empty input",
			input:  nil,
			minGap: 2.0,
			want:   nil,
		},
		{
			name:   "single entry",
			input:  []float64{7.5},
			minGap: 2.0,
			want:   []float64{7.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterTimestamps(tt.input, tt.minGap)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
