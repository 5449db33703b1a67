// Package sparse implements the bespoke sparse symmetric solver of
// spec.md §4.1: a symbolic + numeric LDLt factorization of A x = b with
// a minimum-degree fill-reducing reordering, sized and indexed
// so that hot-loop assembly from the hydraulic solver is O(links) with
// no per-entry search.
//
// This is the one core component deliberately built on the standard
// library rather than a third-party linear-algebra package: §4.1 asks
// for a bespoke symbolic+numeric LDLt with a precomputed link->nonzero
// slot map, which is a different algorithm shape than wrapping an
// external sparse LU (the approach gofem's own `gosl/la` takes via
// MUMPS/UMFPACK cgo bindings) — see DESIGN.md for the full justification.
// The structure (xlnz/nzsub-style compressed columns, perm/invPerm,
// up-looking numeric factorization via column-linked lists) is grounded
// on original_source/src/Solvers/sparspaksolver.cpp.
package sparse

import "math"

// Solver holds the symbolic factorization of A's sparsity pattern plus
// the numeric workspace reused across every hydraulic iteration.
type Solver struct {
	n int

	perm    []int // perm[original] = permuted position
	invPerm []int // invPerm[permuted] = original

	// symbolic structure of L: compressed columns, rows strictly below
	// the diagonal (permuted space), per column in ascending order.
	colStart []int // length n+1
	rowIndex []int // length nnz(L off-diagonal)

	diag []float64 // length n, permuted space
	lval []float64 // length nnz(L off-diagonal), parallel to rowIndex
	rhs  []float64 // length n, permuted space

	linkSlot []int // linkIdx -> flat position in lval/rowIndex

	// numeric-factorization workspace (up-looking, column-linked lists)
	first   []int
	colLink []int
	work    []float64
}

// Init computes the fill-reducing permutation and the symbolic
// sparsity pattern of L given the network adjacency (n nodes, links
// given as parallel from/to index slices), per spec.md §4.1. Duplicate
// links between the same node pair merge into the same off-diagonal
// slot (their contributions add); self-loops must already be rejected
// upstream (network.AddLink does this).
func (s *Solver) Init(n int, linkFrom, linkTo []int) {
	s.n = n
	adj := make([]map[int]struct{}, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	for i := range linkFrom {
		u, v := linkFrom[i], linkTo[i]
		adj[u][v] = struct{}{}
		adj[v][u] = struct{}{}
	}

	s.perm = make([]int, n)
	s.invPerm = make([]int, n)
	eliminated := make([]bool, n)
	colPatternOrig := make([][]int, n) // indexed by permuted step

	degree := make([]int, n)
	for i := 0; i < n; i++ {
		degree[i] = len(adj[i])
	}

	for step := 0; step < n; step++ {
		// minimum-degree pivot selection, ties broken by smallest index
		v := -1
		best := math.MaxInt64
		for i := 0; i < n; i++ {
			if eliminated[i] {
				continue
			}
			if degree[i] < best {
				best = degree[i]
				v = i
			}
		}
		s.perm[v] = step
		eliminated[v] = true

		// remaining uneliminated neighbors become this column's pattern
		var nbrs []int
		for u := range adj[v] {
			if !eliminated[u] {
				nbrs = append(nbrs, u)
			}
		}
		colPatternOrig[step] = nbrs

		// fill-in: connect every pair of remaining neighbors
		for _, a := range nbrs {
			for _, b := range nbrs {
				if a == b {
					continue
				}
				if _, ok := adj[a][b]; !ok {
					adj[a][b] = struct{}{}
					degree[a]++
				}
			}
			delete(adj[a], v)
			degree[a]--
		}
	}
	for orig, p := range s.perm {
		s.invPerm[p] = orig
	}

	// convert each column's pattern to permuted row indices, sorted
	s.colStart = make([]int, n+1)
	total := 0
	cols := make([][]int, n)
	for step := 0; step < n; step++ {
		permRows := make([]int, len(colPatternOrig[step]))
		for i, orig := range colPatternOrig[step] {
			permRows[i] = s.perm[orig]
		}
		insertionSort(permRows)
		cols[step] = permRows
		total += len(permRows)
	}
	s.rowIndex = make([]int, 0, total)
	for j := 0; j < n; j++ {
		s.colStart[j] = len(s.rowIndex)
		s.rowIndex = append(s.rowIndex, cols[j]...)
	}
	s.colStart[n] = len(s.rowIndex)

	s.diag = make([]float64, n)
	s.lval = make([]float64, len(s.rowIndex))
	s.rhs = make([]float64, n)
	s.first = make([]int, n)
	s.colLink = make([]int, n)
	s.work = make([]float64, n)

	s.linkSlot = make([]int, len(linkFrom))
	for i := range linkFrom {
		s.linkSlot[i] = s.findSlot(linkFrom[i], linkTo[i])
	}
}

// findSlot locates the flat lval/rowIndex position for the off-diagonal
// pair (u,v) given in original node-index space.
func (s *Solver) findSlot(u, v int) int {
	pu, pv := s.perm[u], s.perm[v]
	col, row := pu, pv
	if pv < pu {
		col, row = pv, pu
	}
	lo, hi := s.colStart[col], s.colStart[col+1]
	for lo < hi {
		mid := (lo + hi) / 2
		if s.rowIndex[mid] < row {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Reset zeros the diagonal, off-diagonal and RHS arrays ahead of the
// next iteration's assembly.
func (s *Solver) Reset() {
	for i := range s.diag {
		s.diag[i] = 0
		s.rhs[i] = 0
	}
	for i := range s.lval {
		s.lval[i] = 0
	}
}

// AddToDiag accumulates a into A's diagonal at network row index row.
func (s *Solver) AddToDiag(row int, a float64) { s.diag[s.perm[row]] += a }

// SetDiag overwrites A's diagonal at network row index row.
func (s *Solver) SetDiag(row int, a float64) { s.diag[s.perm[row]] = a }

// AddToOffDiag accumulates a into the off-diagonal slot owned by the
// given link index.
func (s *Solver) AddToOffDiag(linkIdx int, a float64) { s.lval[s.linkSlot[linkIdx]] += a }

// AddToRhs accumulates b into the RHS at network row index row.
func (s *Solver) AddToRhs(row int, b float64) { s.rhs[s.perm[row]] += b }

// SetRhs overwrites the RHS at network row index row.
func (s *Solver) SetRhs(row int, b float64) { s.rhs[s.perm[row]] = b }

// Solve numerically factorizes A = P L D L^T P^T and back-solves for x,
// per spec.md §4.1. Returns -1 on success, or the network-space row
// index of a zero/negative pivot on ill-conditioning.
func (s *Solver) Solve(x []float64) int {
	n := s.n
	for j := 0; j < n; j++ {
		s.first[j] = -1
	}
	for j := 0; j < n; j++ {
		s.colLink[j] = -1
	}

	for j := 0; j < n; j++ {
		dj := s.diag[j]
		for idx := s.colStart[j]; idx < s.colStart[j+1]; idx++ {
			s.work[s.rowIndex[idx]] = s.lval[idx]
		}

		k := s.colLink[j]
		s.colLink[j] = -1
		for k != -1 {
			nextk := s.colLink[k]
			ik := s.first[k]
			ljk := s.lval[ik]
			dk := s.diag[k]
			dj -= ljk * ljk * dk
			for idx2 := ik + 1; idx2 < s.colStart[k+1]; idx2++ {
				i2 := s.rowIndex[idx2]
				s.work[i2] -= s.lval[idx2] * ljk * dk
			}
			s.first[k] = ik + 1
			if s.first[k] < s.colStart[k+1] {
				newCol := s.rowIndex[s.first[k]]
				s.colLink[k] = s.colLink[newCol]
				s.colLink[newCol] = k
			}
			k = nextk
		}

		if dj <= 0 {
			return s.invPerm[j]
		}
		s.diag[j] = dj
		for idx := s.colStart[j]; idx < s.colStart[j+1]; idx++ {
			i := s.rowIndex[idx]
			s.lval[idx] = s.work[i] / dj
		}
		if s.colStart[j] < s.colStart[j+1] {
			s.first[j] = s.colStart[j]
			firstRow := s.rowIndex[s.colStart[j]]
			s.colLink[j] = s.colLink[firstRow]
			s.colLink[firstRow] = j
		}
	}

	y := make([]float64, n)
	copy(y, s.rhs)
	for j := 0; j < n; j++ {
		yj := y[j]
		if yj == 0 {
			continue
		}
		for idx := s.colStart[j]; idx < s.colStart[j+1]; idx++ {
			y[s.rowIndex[idx]] -= s.lval[idx] * yj
		}
	}
	for j := 0; j < n; j++ {
		y[j] /= s.diag[j]
	}
	xp := make([]float64, n)
	for j := n - 1; j >= 0; j-- {
		val := y[j]
		for idx := s.colStart[j]; idx < s.colStart[j+1]; idx++ {
			val -= s.lval[idx] * xp[s.rowIndex[idx]]
		}
		xp[j] = val
	}
	for orig := 0; orig < n; orig++ {
		x[orig] = xp[s.perm[orig]]
	}
	return -1
}

func insertionSort(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
