package geometry

import (
	"math"
	"testing"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

func eyeRing(width, gap float64) [6]entities.Point {
	return [6]entities.Point{
		{X: 0, Y: 0},
		{X: width / 3, Y: -gap / 2},
		{X: 2 * width / 3, Y: -gap / 2},
		{X: width, Y: 0},
		{X: 2 * width / 3, Y: gap / 2},
		{X: width / 3, Y: gap / 2},
	}
}

func TestEyeAspectRatio(t *testing.T) {
	tests := []struct {
		name      string
		ring      [6]entities.Point
		wantBlink bool
	}{
		{"open eye", eyeRing(30, 30), false},
		{"partly open eye", eyeRing(30, 12), false},
		{"near closed eye", eyeRing(30, 0.5), true},
		{"closed eye", eyeRing(30, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ear := EyeAspectRatio(tt.ring)
			if IsBlink(ear) != tt.wantBlink {
				t.Errorf("EyeAspectRatio() = %v, blink = %v, want blink %v", ear, IsBlink(ear), tt.wantBlink)
			}
		})
	}

	if got := EyeAspectRatio(eyeRing(30, 30)); math.Abs(got-1) > 1e-9 {
		t.Errorf("square eye EAR = %v, want 1", got)
	}
	if got := EyeAspectRatio([6]entities.Point{}); got != 0 {
		t.Errorf("degenerate ring EAR = %v, want 0", got)
	}
}

func TestClassifyGaze(t *testing.T) {
	tests := []struct {
		name   string
		offset GazeOffset
		want   string
	}{
		{"horizontal wins over vertical", GazeOffset{X: 0.20, Y: 0.00}, entities.GazeRight},
		{"horizontal wins even with vertical offset", GazeOffset{X: -0.20, Y: 0.30}, entities.GazeLeft},
		{"vertical down", GazeOffset{X: 0.05, Y: 0.15}, entities.GazeDown},
		{"vertical up", GazeOffset{X: 0.05, Y: -0.15}, entities.GazeUp},
		{"center", GazeOffset{X: 0.10, Y: 0.05}, entities.GazeCenter},
		{"thresholds are exclusive", GazeOffset{X: 0.15, Y: 0.10}, entities.GazeCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyGaze(tt.offset); got != tt.want {
				t.Errorf("ClassifyGaze(%+v) = %s, want %s", tt.offset, got, tt.want)
			}
		})
	}
}

func TestIrisOffset(t *testing.T) {
	const w, h = 640, 480
	lm := &entities.FaceLandmarks{Points: make([]entities.Landmark, 478)}
	set := func(i int, x, y float64) { lm.Points[i] = entities.Landmark{X: x / w, Y: y / h} }

	set(33, 300, 240)
	set(133, 340, 240)
	for _, i := range LeftIris {
		set(i, 328, 240)
	}
	for _, i := range RightIris {
		set(i, 328, 240)
	}

	off, err := IrisOffset(lm, w, h)
	if err != nil {
		t.Fatalf("IrisOffset() error = %v", err)
	}
	if math.Abs(off.X-0.2) > 1e-9 || math.Abs(off.Y) > 1e-9 {
		t.Errorf("IrisOffset() = %+v, want {0.2 0}", off)
	}
	if got := ClassifyGaze(off); got != entities.GazeRight {
		t.Errorf("ClassifyGaze() = %s, want right", got)
	}

	short := &entities.FaceLandmarks{Points: make([]entities.Landmark, 468)}
	if _, err := IrisOffset(short, w, h); err != ErrNoIris {
		t.Errorf("IrisOffset() without iris error = %v, want ErrNoIris", err)
	}
}

func rotationFromEuler(yaw, pitch, roll float64) rotation {
	y, p, r := yaw*math.Pi/180, pitch*math.Pi/180, roll*math.Pi/180
	rx := rotation{{1, 0, 0}, {0, math.Cos(p), -math.Sin(p)}, {0, math.Sin(p), math.Cos(p)}}
	ry := rotation{{math.Cos(y), 0, math.Sin(y)}, {0, 1, 0}, {-math.Sin(y), 0, math.Cos(y)}}
	rz := rotation{{math.Cos(r), -math.Sin(r), 0}, {math.Sin(r), math.Cos(r), 0}, {0, 0, 1}}
	return mul(rz, mul(ry, rx))
}

func mul(a, b rotation) rotation {
	var out rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func TestSolvePose(t *testing.T) {
	cam := DefaultCamera(640, 480)
	tests := []struct {
		name        string
		yaw, pitch  float64
		roll        float64
		wantFocused bool
	}{
		{"frontal", 0, 0, 0, true},
		{"slight turn", 10, -5, 3, true},
		{"looking aside", 35, 0, 0, false},
		{"looking down", 0, 25, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed := project(rotationFromEuler(tt.yaw, tt.pitch, tt.roll), [3]float64{20, -10, 2000}, cam)
			pose, err := SolvePose(observed, cam)
			if err != nil {
				t.Fatalf("SolvePose() error = %v", err)
			}
			if math.Abs(pose.Yaw-tt.yaw) > 1 || math.Abs(pose.Pitch-tt.pitch) > 1 || math.Abs(pose.Roll-tt.roll) > 1 {
				t.Errorf("SolvePose() = %+v, want yaw %v pitch %v roll %v", pose, tt.yaw, tt.pitch, tt.roll)
			}
			if pose.Focused() != tt.wantFocused {
				t.Errorf("Focused() = %v, want %v", pose.Focused(), tt.wantFocused)
			}
		})
	}
}

func TestRodriguesRoundTrip(t *testing.T) {
	r := rodrigues([3]float64{0, 0.5, 0})
	pose := eulerAngles(r)
	want := 0.5 * 180 / math.Pi
	if math.Abs(pose.Yaw-want) > 1e-6 || math.Abs(pose.Pitch) > 1e-6 || math.Abs(pose.Roll) > 1e-6 {
		t.Errorf("eulerAngles(rodrigues(y=0.5)) = %+v, want yaw %v", pose, want)
	}
}
