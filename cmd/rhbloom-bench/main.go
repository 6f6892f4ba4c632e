// Rhbloom-bench measures filter throughput and verifies correctness and
// false positive behavior over a grid of sizes and rates.
//
// Usage:
//
//	go run ./cmd/rhbloom-bench -n 1000000 -p 0.01
//	go run ./cmd/rhbloom-bench -sweep
//
// Flags:
//
//	-n      Number of keys to insert (default: 1,000,000)
//	-p      Target false positive rate (default: 0.01)
//	-sweep  Run the correctness sweep over an n x p grid instead
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/tidwall/rhbloom"
)

// hashKey turns an index into a benchmark key, murmur-hashed so the
// filter sees arbitrary 64-bit keys rather than small integers.
func hashKey(i int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i))
	return murmur3.Sum64(buf[:])
}

// commaize formats n with thousands separators.
func commaize(n uint64) string {
	s := strconv.FormatUint(n, 10)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func benchPrint(n int, elapsed time.Duration) {
	nsop := float64(elapsed.Nanoseconds()) / float64(n)
	opsec := float64(n) / elapsed.Seconds()
	fmt.Printf("%s ops in %.3f secs %6.1f ns/op %13s op/sec\n",
		commaize(uint64(n)), elapsed.Seconds(), nsop, commaize(uint64(opsec)))
}

func bench(n int, p float64) error {
	hashes := make([]uint64, n*2)
	for i := range hashes {
		hashes[i] = hashKey(i)
	}

	f, err := rhbloom.New(uint64(n), p)
	if err != nil {
		return err
	}

	var misses int
	for pass := 0; pass < 2; pass++ {
		if pass > 0 {
			fmt.Println("-- reset --")
			f.Reset()
		}

		fmt.Printf("add          ")
		start := time.Now()
		for i := 0; i < n; i++ {
			f.Add(hashes[i])
		}
		benchPrint(n, time.Since(start))

		fmt.Printf("test (yes)   ")
		start = time.Now()
		for i := 0; i < n; i++ {
			if !f.Test(hashes[i]) {
				return fmt.Errorf("false negative for key %d", i)
			}
		}
		benchPrint(n, time.Since(start))

		fmt.Printf("test (no)    ")
		misses = 0
		start = time.Now()
		for i := n; i < n*2; i++ {
			if f.Test(hashes[i]) {
				misses++
			}
		}
		benchPrint(n, time.Since(start))
	}

	fmt.Printf("Misses %d (%0.4f%% false-positive)\n",
		misses, float64(misses)/float64(n)*100)
	fmt.Printf("Memory %.2f MB\n", float64(f.MemSize())/1024/1024)
	return nil
}

// trial inserts n+1 keys, which always pushes the filter past its
// upgrade point, verifying exact behavior before the upgrade, the no
// false negative guarantee throughout, and the false positive bound
// after. It then resets and repeats to verify reset behavior.
func trial(n int, p float64) error {
	f, err := rhbloom.New(uint64(n), p)
	if err != nil {
		return err
	}
	for pass := 0; pass < 2; pass++ {
		if pass > 0 {
			f.Reset()
			if !f.Upgraded() {
				return fmt.Errorf("n=%d p=%g: reset reverted the upgrade", n, p)
			}
		}
		nn := n + 1
		for i := 0; i < nn; i++ {
			if !f.Upgraded() && f.Test(hashKey(i)) {
				return fmt.Errorf("n=%d p=%g: key %d present before add", n, p, i)
			}
			if !f.Add(hashKey(i)) {
				return fmt.Errorf("n=%d p=%g: add %d failed", n, p, i)
			}
		}
		if !f.Upgraded() {
			return fmt.Errorf("n=%d p=%g: no upgrade after %d inserts", n, p, nn)
		}
		for i := 0; i < nn; i++ {
			if !f.Test(hashKey(i)) {
				return fmt.Errorf("n=%d p=%g: false negative for key %d", n, p, i)
			}
		}
		if n > 0 {
			hits := 0
			for i := nn; i < nn*2; i++ {
				if f.Test(hashKey(i)) {
					hits++
				}
			}
			if observed := float64(hits) / float64(n); observed-p > 0.1 {
				return fmt.Errorf("n=%d p=%g: bad probability, observed %g", n, p, observed)
			}
		}
	}
	return nil
}

func sweep() error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for n := 0; n <= 100000; n += 10000 {
		for p := 0.01; p < 0.70; p += 0.05 {
			n, p := n, p
			g.Go(func() error { return trial(n, p) })
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("PASSED")
	return nil
}

func main() {
	nFlag := flag.Int("n", 1_000_000, "number of keys")
	pFlag := flag.Float64("p", 0.01, "target false positive rate")
	sweepFlag := flag.Bool("sweep", false, "run the correctness sweep")
	flag.Parse()

	var err error
	if *sweepFlag {
		err = sweep()
	} else {
		err = bench(*nFlag, *pFlag)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "rhbloom-bench:", err)
		os.Exit(1)
	}
}
