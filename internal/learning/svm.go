package learning

import (
	"log"
	"math"

	"github.com/montanaflynn/stats"
)

// SVC is a C-support vector classifier with an RBF kernel. Binary problems are
// solved with SMO using maximal-violating-pair selection; more than two classes
// are handled one-vs-one with majority voting.
type SVC struct {
	C             float64
	Gamma         float64 // 0 => 1/(p·Var(X))
	Tolerance     float64
	MaxIterations int // passes over the training rows per binary problem

	gamma   float64
	classes int
	pairs   []binarySVC
}

// binarySVC separates class pos (+1) from class neg (-1)
type binarySVC struct {
	pos, neg int
	vectors  [][]float64
	coef     []float64 // alpha_i * y_i
	rho      float64
}

// NewSVC creates a classifier with C=1 and gamma="scale"
func NewSVC(maxIterations int) *SVC {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &SVC{C: 1, Tolerance: 1e-3, MaxIterations: maxIterations}
}

// Fit trains one binary machine per class pair
func (m *SVC) Fit(X [][]float64, y []int) error {
	p, k, err := checkClassification(X, y)
	if err != nil {
		return err
	}
	if distinctLabels(y) < 2 {
		return ErrSingleClass
	}

	m.gamma = m.Gamma
	if m.gamma <= 0 {
		m.gamma = scaleGamma(X, p)
	}
	m.classes = k

	byClass := make([][]int, k)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	m.pairs = nil
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			if len(byClass[a]) == 0 || len(byClass[b]) == 0 {
				continue
			}
			rows := append(append([]int(nil), byClass[a]...), byClass[b]...)
			sub := make([][]float64, len(rows))
			signs := make([]float64, len(rows))
			for i, r := range rows {
				sub[i] = X[r]
				if y[r] == a {
					signs[i] = 1
				} else {
					signs[i] = -1
				}
			}
			machine, err := m.solve(sub, signs)
			if err != nil {
				return err
			}
			machine.pos, machine.neg = a, b
			m.pairs = append(m.pairs, machine)
		}
	}
	return nil
}

// solve runs SMO on the dual 0.5·αᵀQα − eᵀα, 0 ≤ α ≤ C, yᵀα = 0
func (m *SVC) solve(X [][]float64, y []float64) (binarySVC, error) {
	n := len(X)
	alpha := make([]float64, n)
	grad := make([]float64, n)
	for i := range grad {
		grad[i] = -1
	}
	c := m.C
	const tau = 1e-12

	maxIter := m.MaxIterations * max(n, 1)
	iter := 0
	for ; iter < maxIter; iter++ {
		i, j := -1, -1
		gMax, gMin := math.Inf(-1), math.Inf(1)
		for t := 0; t < n; t++ {
			v := -y[t] * grad[t]
			if (y[t] > 0 && alpha[t] < c) || (y[t] < 0 && alpha[t] > 0) {
				if v >= gMax {
					gMax, i = v, t
				}
			}
			if (y[t] > 0 && alpha[t] > 0) || (y[t] < 0 && alpha[t] < c) {
				if v <= gMin {
					gMin, j = v, t
				}
			}
		}
		if i < 0 || j < 0 || gMax-gMin < m.Tolerance {
			break
		}

		qi := m.kernelRow(X, y, i)
		qj := m.kernelRow(X, y, j)
		oldI, oldJ := alpha[i], alpha[j]

		if y[i] != y[j] {
			quad := qi[i] + qj[j] + 2*qi[j]
			if quad <= 0 {
				quad = tau
			}
			delta := (-grad[i] - grad[j]) / quad
			diff := alpha[i] - alpha[j]
			alpha[i] += delta
			alpha[j] += delta
			if diff > 0 {
				if alpha[j] < 0 {
					alpha[j], alpha[i] = 0, diff
				}
			} else if alpha[i] < 0 {
				alpha[i], alpha[j] = 0, -diff
			}
			if diff > 0 {
				if alpha[i] > c {
					alpha[i], alpha[j] = c, c-diff
				}
			} else if alpha[j] > c {
				alpha[j], alpha[i] = c, c+diff
			}
		} else {
			quad := qi[i] + qj[j] - 2*qi[j]
			if quad <= 0 {
				quad = tau
			}
			delta := (grad[i] - grad[j]) / quad
			sum := alpha[i] + alpha[j]
			alpha[i] -= delta
			alpha[j] += delta
			if sum > c {
				if alpha[i] > c {
					alpha[i], alpha[j] = c, sum-c
				}
			} else if alpha[j] < 0 {
				alpha[j], alpha[i] = 0, sum
			}
			if sum > c {
				if alpha[j] > c {
					alpha[j], alpha[i] = c, sum-c
				}
			} else if alpha[i] < 0 {
				alpha[i], alpha[j] = 0, sum
			}
		}

		dI, dJ := alpha[i]-oldI, alpha[j]-oldJ
		for t := 0; t < n; t++ {
			grad[t] += qi[t]*dI + qj[t]*dJ
		}
	}
	if iter == maxIter {
		log.Printf("[SVC] Solver hit the iteration limit (%d) before convergence", maxIter)
	}

	machine := binarySVC{rho: m.rho(y, alpha, grad)}
	for t := 0; t < n; t++ {
		if alpha[t] > 0 {
			machine.vectors = append(machine.vectors, X[t])
			machine.coef = append(machine.coef, alpha[t]*y[t])
		}
	}
	if !allFinite(machine.coef) || math.IsNaN(machine.rho) || math.IsInf(machine.rho, 0) {
		return binarySVC{}, ErrNonFiniteResult
	}
	return machine, nil
}

// rho averages y·grad over free vectors, or takes the midpoint of the feasible interval
func (m *SVC) rho(y, alpha, grad []float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	sumFree, nFree := 0.0, 0
	for t := range y {
		yG := y[t] * grad[t]
		switch {
		case alpha[t] >= m.C:
			if y[t] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case alpha[t] <= 0:
			if y[t] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}

// kernelRow returns Q[i][t] = y_i·y_t·K(x_i, x_t) for every t
func (m *SVC) kernelRow(X [][]float64, y []float64, i int) []float64 {
	row := make([]float64, len(X))
	for t := range X {
		row[t] = y[i] * y[t] * rbf(X[i], X[t], m.gamma)
	}
	return row
}

// Predict returns the class with the most pairwise wins; ties go to the lower index
func (m *SVC) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	votes := make([]int, max(m.classes, 1))
	for i, row := range X {
		for c := range votes {
			votes[c] = 0
		}
		for _, machine := range m.pairs {
			if machine.decision(row, m.gamma) > 0 {
				votes[machine.pos]++
			} else {
				votes[machine.neg]++
			}
		}
		out[i] = argmaxInt(votes)
	}
	return out
}

func (b binarySVC) decision(row []float64, gamma float64) float64 {
	sum := 0.0
	for t, v := range b.vectors {
		sum += b.coef[t] * rbf(v, row, gamma)
	}
	return sum - b.rho
}

func rbf(a, b []float64, gamma float64) float64 {
	d := 0.0
	for j := range a {
		diff := a[j] - b[j]
		d += diff * diff
	}
	return math.Exp(-gamma * d)
}

// scaleGamma is 1/(p·Var(X)) over every entry of X, or 1 for constant input
func scaleGamma(X [][]float64, p int) float64 {
	if p == 0 {
		return 1
	}
	flat := make(stats.Float64Data, 0, len(X)*p)
	for _, row := range X {
		flat = append(flat, row...)
	}
	variance, err := stats.PopulationVariance(flat)
	if err != nil || variance == 0 {
		return 1
	}
	return 1 / (float64(p) * variance)
}

func distinctLabels(y []int) int {
	seen := make(map[int]bool)
	for _, label := range y {
		seen[label] = true
	}
	return len(seen)
}
