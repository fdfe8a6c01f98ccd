package colorspace

import "math"

// maxEigenSweeps caps the iterative reduction. A symmetric 3×3 converges
// in a handful of sweeps; the cap is a conservative guard that replaces
// the floating-point exponent-counting bound sometimes used for this
// solver, which is unreliable in practice.
const maxEigenSweeps = 200

// EigenSym3 diagonalizes a real symmetric 3×3 matrix and returns its
// eigenvectors (rows of vecs, unit length) and eigenvalues, unordered.
//
// Two-stage reduction: one rotation zeroes the (0,2) entry, giving a
// tridiagonal-like intermediate; further rotations are then iterated,
// recomputing the reduced matrix each pass, until every off-diagonal
// entry is relatively zero. Each rotation is built from a max-normalized
// two-component vector, so no step divides by a near-zero magnitude.
//
// Every eigenvector is sign-flipped so its largest-magnitude component is
// positive, removing the ±v ambiguity.
func EigenSym3(m [3][3]float64) (vecs [3][3]float64, vals [3]float64) {
	a := m
	v := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	// Stage 1: zero the corner entry.
	if !relativelyZero(a[0][2], a[0][0], a[2][2]) {
		rotatePair(&a, &v, 0, 2)
	}

	// Stage 2: sweep the remaining off-diagonals. A rotation that zeroes
	// one entry re-fills another, so sweep until all three pass the
	// relative-zero test at once.
	pairs := [3][2]int{{0, 1}, {1, 2}, {0, 2}}
	for sweep := 0; sweep < maxEigenSweeps; sweep++ {
		done := true
		for _, pq := range pairs {
			p, q := pq[0], pq[1]
			if !relativelyZero(a[p][q], a[p][p], a[q][q]) {
				done = false
				rotatePair(&a, &v, p, q)
			}
		}
		if done {
			break
		}
	}

	for i := 0; i < 3; i++ {
		vals[i] = a[i][i]
		vecs[i] = [3]float64{v[0][i], v[1][i], v[2][i]}
		normalizeSigned(&vecs[i])
	}
	return vecs, vals
}

// relativelyZero reports whether adding |off| to the magnitudes of the two
// adjacent diagonal entries no longer changes the sum under floating-point
// rounding. This is the convergence test for the iterative reduction.
func relativelyZero(off, d0, d1 float64) bool {
	sum := math.Abs(d0) + math.Abs(d1)
	return sum+math.Abs(off) == sum
}

// rotatePair applies the Givens-style rotation in the (p,q) plane that
// zeroes a[p][q], updating the accumulated eigenvector matrix v.
func rotatePair(a, v *[3][3]float64, p, q int) {
	app, aqq, apq := a[p][p], a[q][q], a[p][q]

	// Double-angle direction (cos2θ, sin2θ) ∝ ((app−aqq)/2, apq),
	// normalized without dividing by a near-zero magnitude.
	c2, s2 := cosSin(0.5*(app-aqq), apq)

	// Half-angle recovery. cosSin forces c2 ≤ 0, so s ≥ 1/√2 and the
	// division for c is safe.
	s := math.Sqrt(0.5 * (1 - c2))
	c := 0.5 * s2 / s

	r := 3 - p - q // untouched axis
	apr, aqr := a[p][r], a[q][r]

	a[p][p] = c*c*app + 2*c*s*apq + s*s*aqq
	a[q][q] = s*s*app - 2*c*s*apq + c*c*aqq
	a[p][q] = 0
	a[q][p] = 0
	a[p][r] = c*apr + s*aqr
	a[r][p] = a[p][r]
	a[q][r] = c*aqr - s*apr
	a[r][q] = a[q][r]

	for i := 0; i < 3; i++ {
		vip, viq := v[i][p], v[i][q]
		v[i][p] = c*vip + s*viq
		v[i][q] = c*viq - s*vip
	}
}

// cosSin normalizes (u, w) to a unit vector, scaling by the larger
// magnitude first so neither component squares to a denormal. The result
// is flipped to keep the first component non-positive; callers rely on
// that to recover half-angle terms without another near-zero division.
// A zero input vector yields (-1, 0).
func cosSin(u, w float64) (float64, float64) {
	maxAbs := math.Max(math.Abs(u), math.Abs(w))
	if maxAbs == 0 {
		return -1, 0
	}
	u /= maxAbs
	w /= maxAbs
	length := math.Sqrt(u*u + w*w)
	u /= length
	w /= length
	if u > 0 {
		u, w = -u, -w
	}
	return u, w
}

// normalizeSigned scales v to unit length and flips its sign so the
// largest-magnitude component is positive.
func normalizeSigned(v *[3]float64) {
	length := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length == 0 {
		return
	}
	big := 0
	for i := 1; i < 3; i++ {
		if math.Abs(v[i]) > math.Abs(v[big]) {
			big = i
		}
	}
	scale := 1 / length
	if v[big] < 0 {
		scale = -scale
	}
	v[0] *= scale
	v[1] *= scale
	v[2] *= scale
}
