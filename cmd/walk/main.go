// Command walk drives the diffusion Monte Carlo power iteration: it reads
// an initial quantum state and a Hamiltonian specification, applies (Λ-H)ⁿ,
// and writes the resulting state back out.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/twesterhout/walking-lanczos/diffusion"
	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/ioformat"
	"github.com/twesterhout/walking-lanczos/snapshot"
	"github.com/twesterhout/walking-lanczos/state"
)

var (
	inputPath       = flag.String("input", "-", "file containing the initial quantum state, or '-' for standard input")
	outputPath      = flag.String("o", "-", "file to write the final quantum state to, or '-' for standard output")
	hamiltonianPath = flag.String("hamiltonian", "", "file containing the Hamiltonian specification")
	lambda          = flag.Float64("lambda", 1.0, "value of Λ in the diffusion operator (Λ-H)")
	iterations      = flag.Int("n", 1, "number of applications of (Λ-H) to perform")
	softMax         = flag.Int("max", 1000, "maximum number of elements to keep after each iteration")
	hardMax         = flag.Int("hard-max", 0, "per-shard allocation hint; defaults to 2*max")
	shards          = flag.Int("shards", 1, "number of shards to partition the state into, a power of two no greater than 256")
	useRandom       = flag.Bool("random", false, "use weighted random resampling instead of deterministic pruning")
	snapshotPath    = flag.String("snapshot", "", "optional SQLite file to dump the final state into for diagnostics")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if *hamiltonianPath == "" {
		return errors.New("-hamiltonian is required")
	}
	if err := checkNotSameFile(*inputPath, *outputPath); err != nil {
		return err
	}

	hMax := *hardMax
	if hMax == 0 {
		hMax = 2 * *softMax
	}
	params := state.Params{
		SoftMax:           *softMax,
		HardMax:           hMax,
		Shards:            *shards,
		UseRandomSampling: *useRandom,
	}

	input, err := openInput(*inputPath)
	if err != nil {
		return errors.Wrap(err, "opening input file")
	}
	defer input.Close()

	psi0, err := ioformat.ReadState(input, params)
	if err != nil {
		return errors.Wrap(err, "reading initial state")
	}

	hFile, err := os.Open(*hamiltonianPath)
	if err != nil {
		return errors.Wrap(err, "opening Hamiltonian file")
	}
	defer hFile.Close()

	h, err := ioformat.ReadHamiltonian(hFile)
	if err != nil {
		return errors.Wrap(err, "reading Hamiltonian")
	}

	output, closeOutput, err := openOutput(*outputPath)
	if err != nil {
		return errors.Wrap(err, "opening output file")
	}
	defer closeOutput()

	initialEnergy, err := hamiltonian.Energy(h, psi0)
	if err != nil {
		return errors.Wrap(err, "computing initial energy")
	}
	fmt.Fprintf(output, "# Result of evaluating (Λ-H)^n|ψ0> for\n"+
		"# Λ = %g\n"+
		"# n = %d\n"+
		"# E0 = <ψ0|H|ψ0> = %g + %gi\n",
		*lambda, *iterations, real(initialEnergy), imag(initialEnergy))

	progress := func(i, n int) {
		log.Printf("iteration %d/%d", i, n)
	}
	final, err := diffusion.Run(complex(*lambda, 0), h, psi0, *iterations, progress)
	if err != nil {
		return errors.Wrap(err, "running diffusion loop")
	}

	finalEnergy, err := hamiltonian.Energy(h, final)
	if err != nil {
		return errors.Wrap(err, "computing final energy")
	}
	fmt.Fprintf(output, "# => E = %g + %gi\n", real(finalEnergy), imag(finalEnergy))

	if err := ioformat.WriteState(output, final); err != nil {
		return errors.Wrap(err, "writing final state")
	}

	if *snapshotPath != "" {
		w, err := snapshot.Open(*snapshotPath)
		if err != nil {
			return errors.Wrap(err, "opening snapshot")
		}
		defer w.Close()
		if err := w.Write(*iterations, final); err != nil {
			return errors.Wrap(err, "writing snapshot")
		}
	}

	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// checkNotSameFile guards against clobbering the input state with the
// output, mirroring the original CLI's overwrite guard.
func checkNotSameFile(inputPath, outputPath string) error {
	if inputPath == "-" || outputPath == "-" {
		return nil
	}
	in, err := os.Stat(inputPath)
	if err != nil {
		return nil
	}
	out, err := os.Stat(outputPath)
	if err != nil {
		return nil
	}
	if os.SameFile(in, out) {
		return errors.Errorf("input file %q and output file %q are the same", inputPath, outputPath)
	}
	return nil
}
