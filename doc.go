// Package makecases builds synthetic datasets of random variates that follow a
// chosen distribution and, jointly, a chosen linear correlation structure.
//
// What is in the box:
//
//	distribution/  the closed set of generator families and the triangular inverse transform
//	correlation/   EQUAL, TOEPLITZ, FA, ARBITRARY and RANDOM correlation matrices
//	engine/        the numeric engine contract (Sample, Factorize, ExtractComponents)
//	               plus a local engine on gonum samplers and the matrix kernel
//	matrix/        dense row-major kernel: Mul, Cholesky, Jacobi eigen, statistics, token codec
//	synth/         the Draw → Orthogonalize → Correlate → Finalize pipeline
//	dataset/       dataset handles and registries (memory, SQLite, DuckDB)
//
// The root package only carries the error taxonomy shared by every layer:
//
//	ErrInvalidParameters   wrong parameter count or range, raised before any engine call
//	ErrConflictingInput    structure parameters given with structure NONE
//	ErrDelegateExecution   the numeric engine rejected a request (e.g. non-positive-definite matrix)
//
// Quick example:
//
//	p := synth.New(synth.LocalEngines(), dataset.NewMemoryRegistry())
//	ds, err := p.Run(ctx, synth.Request{
//		Dataset:      "sim",
//		NumVars:      3,
//		NumCases:     1000,
//		Distribution: distribution.Normal,
//		Params:       []float64{0, 1},
//		Structure:    correlation.Equal,
//		Corrs:        []float64{0.3},
//		Seed:         42,
//	})
//
// The command-line tool lives in cmd/makecases.
package makecases
