package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Focus thresholds in degrees.
const (
	FocusYawLimit   = 20.0
	FocusPitchLimit = 15.0
)

// PoseLandmarks are the face-mesh indices matched to the face template:
// nose tip, chin, eye outer corners, mouth corners.
var PoseLandmarks = [6]int{1, 152, 33, 263, 61, 291}

// faceTemplate is a generic 3D face in camera axes (x right, y down, z away
// from the camera) with the nose tip at the origin. A frontal face maps to the
// identity rotation.
var faceTemplate = [6][3]float64{
	{0, 0, 0},
	{0, 330, 65},
	{-225, -170, 135},
	{225, -170, 135},
	{-150, 150, 125},
	{150, 150, 125},
}

// templateEyeSpan is the distance between the two template eye corners.
const templateEyeSpan = 450.0

// HeadPose holds Euler angles in degrees.
type HeadPose struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Focused reports whether the head faces the camera
func (p HeadPose) Focused() bool {
	return math.Abs(p.Yaw) < FocusYawLimit && math.Abs(p.Pitch) < FocusPitchLimit
}

// Camera is a pinhole camera without lens distortion.
type Camera struct {
	Focal float64
	CX    float64
	CY    float64
}

// DefaultCamera approximates an uncalibrated webcam: focal length equal to the
// frame width and the principal point at the frame centre.
func DefaultCamera(w, h int) Camera {
	return Camera{Focal: float64(w), CX: float64(w) / 2, CY: float64(h) / 2}
}

// EstimateHeadPose recovers the head pose from a face mesh
func EstimateHeadPose(lm *entities.FaceLandmarks, w, h int) (HeadPose, error) {
	var pts [6]entities.Point
	for i, idx := range PoseLandmarks {
		if !lm.Has(idx) {
			return HeadPose{}, fmt.Errorf("face mesh lacks landmark %d", idx)
		}
		pts[i] = lm.Pixel(idx, w, h)
	}
	return SolvePose(pts, DefaultCamera(w, h))
}

type rotation [3][3]float64

// SolvePose fits the face template to six observed image points by minimizing
// reprojection error with Levenberg-Marquardt over a rotation vector and a
// translation, then decomposes the rotation into yaw, pitch and roll.
func SolvePose(observed [6]entities.Point, cam Camera) (HeadPose, error) {
	if cam.Focal <= 0 {
		return HeadPose{}, errors.New("camera focal length must be positive")
	}
	eyeSpan := math.Hypot(observed[3].X-observed[2].X, observed[3].Y-observed[2].Y)
	if eyeSpan == 0 {
		return HeadPose{}, errors.New("degenerate landmarks")
	}

	tz := cam.Focal * templateEyeSpan / eyeSpan
	params := [6]float64{
		0, 0, 0,
		(observed[0].X - cam.CX) * tz / cam.Focal,
		(observed[0].Y - cam.CY) * tz / cam.Focal,
		tz,
	}

	params, err := levenbergMarquardt(params, func(p [6]float64) []float64 {
		return reprojectionResiduals(p, observed, cam)
	})
	if err != nil {
		return HeadPose{}, err
	}
	return eulerAngles(rodrigues([3]float64{params[0], params[1], params[2]})), nil
}

func reprojectionResiduals(p [6]float64, observed [6]entities.Point, cam Camera) []float64 {
	r := rodrigues([3]float64{p[0], p[1], p[2]})
	projected := project(r, [3]float64{p[3], p[4], p[5]}, cam)
	res := make([]float64, 0, 12)
	for i := range observed {
		res = append(res, projected[i].X-observed[i].X, projected[i].Y-observed[i].Y)
	}
	return res
}

func project(r rotation, t [3]float64, cam Camera) [6]entities.Point {
	var out [6]entities.Point
	for i, m := range faceTemplate {
		x := r[0][0]*m[0] + r[0][1]*m[1] + r[0][2]*m[2] + t[0]
		y := r[1][0]*m[0] + r[1][1]*m[1] + r[1][2]*m[2] + t[1]
		z := r[2][0]*m[0] + r[2][1]*m[1] + r[2][2]*m[2] + t[2]
		if z < 1e-9 {
			out[i] = entities.Point{X: 1e6, Y: 1e6}
			continue
		}
		out[i] = entities.Point{X: cam.Focal*x/z + cam.CX, Y: cam.Focal*y/z + cam.CY}
	}
	return out
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

func levenbergMarquardt(p [6]float64, residuals func([6]float64) []float64) ([6]float64, error) {
	const (
		maxIterations = 100
		tolerance     = 1e-10
	)
	lambda := 1e-3
	r := residuals(p)
	cost := sumSquares(r)

	for iter := 0; iter < maxIterations; iter++ {
		jac := numericJacobian(p, residuals, len(r))

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), mat.NewVecDense(len(r), r))

		improved := false
		for attempt := 0; attempt < 10; attempt++ {
			damped := mat.DenseCopyOf(&jtj)
			for k := 0; k < 6; k++ {
				damped.Set(k, k, jtj.At(k, k)*(1+lambda)+1e-12)
			}
			var step mat.VecDense
			if err := step.SolveVec(damped, &jtr); err != nil {
				lambda *= 10
				continue
			}

			var candidate [6]float64
			var stepNorm float64
			for k := 0; k < 6; k++ {
				candidate[k] = p[k] - step.AtVec(k)
				stepNorm += step.AtVec(k) * step.AtVec(k)
			}
			nextR := residuals(candidate)
			nextCost := sumSquares(nextR)
			if nextCost < cost {
				converged := cost-nextCost < tolerance*(1+cost) || stepNorm < tolerance
				p, r, cost = candidate, nextR, nextCost
				lambda = math.Max(lambda/10, 1e-12)
				improved = true
				if converged {
					return p, nil
				}
				break
			}
			lambda *= 10
		}
		if !improved {
			break
		}
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return p, errors.New("pose solve diverged")
	}
	return p, nil
}

func numericJacobian(p [6]float64, residuals func([6]float64) []float64, n int) *mat.Dense {
	jac := mat.NewDense(n, 6, nil)
	for k := 0; k < 6; k++ {
		h := 1e-6 * math.Max(1, math.Abs(p[k]))
		plus, minus := p, p
		plus[k] += h
		minus[k] -= h
		rp := residuals(plus)
		rm := residuals(minus)
		for i := 0; i < n; i++ {
			jac.Set(i, k, (rp[i]-rm[i])/(2*h))
		}
	}
	return jac
}

// rodrigues converts a rotation vector to a rotation matrix.
func rodrigues(w [3]float64) rotation {
	theta := math.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	if theta < 1e-12 {
		return rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	kx, ky, kz := w[0]/theta, w[1]/theta, w[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	v := 1 - c
	return rotation{
		{c + kx*kx*v, kx*ky*v - kz*s, kx*kz*v + ky*s},
		{ky*kx*v + kz*s, c + ky*ky*v, ky*kz*v - kx*s},
		{kz*kx*v - ky*s, kz*ky*v + kx*s, c + kz*kz*v},
	}
}

// eulerAngles decomposes R = Rz(roll) Ry(yaw) Rx(pitch).
func eulerAngles(r rotation) HeadPose {
	const deg = 180 / math.Pi
	return HeadPose{
		Pitch: math.Atan2(r[2][1], r[2][2]) * deg,
		Yaw:   math.Atan2(-r[2][0], math.Hypot(r[2][1], r[2][2])) * deg,
		Roll:  math.Atan2(r[1][0], r[0][0]) * deg,
	}
}
