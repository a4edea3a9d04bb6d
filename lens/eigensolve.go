package lens

import "math"

// jacobiEigenSymmetric diagonalizes a small dense symmetric matrix via
// the classical cyclic Jacobi rotation method. gosl exposes no sparse
// or dense symmetric eigensolver in the retrieved corpus, so this
// standard, self-contained numerical routine backs the Rayleigh-Ritz
// projection step of subspaceIterate (see DESIGN.md).
func jacobiEigenSymmetric(a [][]float64) (vals []float64, vecs [][]float64) {
	n := len(a)
	A := make([][]float64, n)
	for i := range A {
		A[i] = append([]float64(nil), a[i]...)
	}
	V := make([][]float64, n)
	for i := range V {
		V[i] = make([]float64, n)
		V[i][i] = 1
	}

	const maxSweeps = 100
	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += A[i][j] * A[i][j]
			}
		}
		if off < 1e-24 {
			break
		}
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(A[p][q]) < 1e-300 {
					continue
				}
				theta := (A[q][q] - A[p][p]) / (2 * A[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta == 0 {
					t = 1
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				app, aqq, apq := A[p][p], A[q][q], A[p][q]
				A[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
				A[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
				A[p][q] = 0
				A[q][p] = 0
				for i := 0; i < n; i++ {
					if i != p && i != q {
						aip, aiq := A[i][p], A[i][q]
						A[i][p] = c*aip - s*aiq
						A[p][i] = A[i][p]
						A[i][q] = s*aip + c*aiq
						A[q][i] = A[i][q]
					}
				}
				for i := 0; i < n; i++ {
					vip, viq := V[i][p], V[i][q]
					V[i][p] = c*vip - s*viq
					V[i][q] = s*vip + c*viq
				}
			}
		}
	}

	vals = make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = A[i][i]
	}
	vecs = make([][]float64, n)
	for i := 0; i < n; i++ {
		vecs[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			vecs[i][j] = V[j][i]
		}
	}
	return
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

func scaleInto(dst []float64, a []float64, s float64) {
	for i := range a {
		dst[i] = a[i] * s
	}
}

func axpy(dst []float64, alpha float64, x []float64) {
	for i := range dst {
		dst[i] += alpha * x[i]
	}
}

// gramSchmidt orthonormalizes the columns of block in place (modified
// Gram-Schmidt, run twice for numerical stability).
func gramSchmidt(block [][]float64) {
	for pass := 0; pass < 2; pass++ {
		for i := range block {
			for j := 0; j < i; j++ {
				c := dot(block[i], block[j])
				axpy(block[i], -c, block[j])
			}
			nrm := norm(block[i])
			if nrm > 1e-14 {
				scaleInto(block[i], block[i], 1/nrm)
			}
		}
	}
}

// subspaceIterate finds the largest k eigenpairs of the symmetric
// operator matvec (size n) via simultaneous/subspace iteration with
// periodic Rayleigh-Ritz refinement. Returns Ritz values descending.
func subspaceIterate(matvec func([]float64) []float64, n, k, iters int, seed func(i int) []float64) ([]float64, [][]float64) {
	block := make([][]float64, k)
	for i := 0; i < k; i++ {
		block[i] = seed(i)
	}
	gramSchmidt(block)

	var ritzVals []float64
	for it := 0; it < iters; it++ {
		next := make([][]float64, k)
		for i := 0; i < k; i++ {
			next[i] = matvec(block[i])
		}
		gramSchmidt(next)
		block = next

		// Rayleigh-Ritz projection every iteration (k is small, so this
		// is cheap relative to the matvecs).
		T := make([][]float64, k)
		applied := make([][]float64, k)
		for i := 0; i < k; i++ {
			applied[i] = matvec(block[i])
		}
		for i := 0; i < k; i++ {
			T[i] = make([]float64, k)
			for j := 0; j < k; j++ {
				T[i][j] = dot(block[i], applied[j])
			}
		}
		vals, vecs := jacobiEigenSymmetric(T)

		// sort descending
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for i := 1; i < k; i++ {
			j := i
			for j > 0 && vals[idx[j]] > vals[idx[j-1]] {
				idx[j], idx[j-1] = idx[j-1], idx[j]
				j--
			}
		}

		rotated := make([][]float64, k)
		for outI, i := range idx {
			v := make([]float64, n)
			for col := 0; col < k; col++ {
				axpy(v, vecs[col][i], block[col])
			}
			nrm := norm(v)
			if nrm > 1e-14 {
				scaleInto(v, v, 1/nrm)
			}
			rotated[outI] = v
		}
		block = rotated
		ritzVals = make([]float64, k)
		for outI, i := range idx {
			ritzVals[outI] = vals[i]
		}
	}
	return ritzVals, block
}
