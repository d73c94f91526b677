// Licensed under the MIT License. See LICENSE file in the project root for details.

// Command bench measures retire/tick throughput of the epoch-based
// reclamation engine under varying numbers of concurrent participants.
//
// # Usage
//
//	go run cmd/bench/main.go
//
// # Benchmark Categories
//
//   - Single-threaded guard acquire/reset latency
//   - Single-threaded retire-then-reclaim throughput
//   - Concurrent readers pinning a shared pointer while a writer retires
//
// # Interpreting Results
//
// Ops/sec for the guard benchmarks reflects pure engine overhead, not any
// application logic; the concurrent benchmark's throughput should scale
// with goroutine count until epoch-advance contention dominates.
package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/kianostad/ebr"
)

type node struct {
	ebr.Reclaimable
	value int
}

func main() {
	fmt.Println("EBR Engine Benchmarks")
	fmt.Println("=====================")

	benchmarkGuardAcquire()
	benchmarkRetireReclaim()
	benchmarkConcurrentReaders()
}

func benchmarkGuardAcquire() {
	fmt.Println("\n1. Guard acquire/reset")
	engine := ebr.NewEngine()
	p := engine.NewParticipant()
	defer p.Close()

	n := &node{value: 42}
	ptr := ebr.NewConcurrentPointer(ebr.MarkedOf(n, 0))

	const iterations = 1_000_000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		g := ebr.AcquireGuard(p, ptr, ebr.OrderAcquire)
		g.Reset()
	}
	duration := time.Since(start)
	fmt.Printf("   %d acquire/reset pairs in %v (%.0f ops/sec)\n",
		iterations, duration, float64(iterations)/duration.Seconds())
}

func benchmarkRetireReclaim() {
	fmt.Println("\n2. Retire + reclaim")
	engine := ebr.NewEngine()
	p := engine.NewParticipant()
	defer p.Close()

	const iterations = 100_000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		n := &node{value: i}
		ptr := ebr.NewConcurrentPointer(ebr.MarkedOf(n, 0))
		g := ebr.AcquireGuard(p, ptr, ebr.OrderAcquire)
		g.Retire(func() {})
		tick(p)
		tick(p)
		tick(p)
	}
	duration := time.Since(start)
	fmt.Printf("   %d retire+reclaim cycles in %v (%.0f ops/sec)\n",
		iterations, duration, float64(iterations)/duration.Seconds())
}

func benchmarkConcurrentReaders() {
	fmt.Println("\n3. Concurrent readers vs. one writer")
	engine := ebr.NewEngine()

	n := &node{value: 7}
	ptr := ebr.NewConcurrentPointer(ebr.MarkedOf(n, 0))

	for _, numReaders := range []int{1, 2, 4, 8, 16} {
		const opsPerReader = 50_000
		var wg sync.WaitGroup
		start := time.Now()

		for r := 0; r < numReaders; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				reader := engine.NewParticipant()
				defer reader.Close()
				for i := 0; i < opsPerReader; i++ {
					g := ebr.AcquireGuard(reader, ptr, ebr.OrderAcquire)
					g.Reset()
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			writer := engine.NewParticipant()
			defer writer.Close()
			for i := 0; i < opsPerReader; i++ {
				old := ptr.Swap(ebr.MarkedOf(&node{value: i}, 0))
				ebr.NewGuardFromValue(writer, old).Retire(func() {})
			}
		}()
		wg.Wait()

		duration := time.Since(start)
		total := numReaders * opsPerReader
		fmt.Printf("   readers=%2d: %d ops in %v (%.0f ops/sec)\n",
			numReaders, total, duration, float64(total)/duration.Seconds())
	}
}

// tick performs one epoch advance attempt by acquiring and releasing a
// guard around a throwaway pointer, mirroring the "epoch tick" defined in
// the engine's test suite.
func tick(p *ebr.Participant) {
	tmp := &node{}
	ptr := ebr.NewConcurrentPointer(ebr.MarkedOf(tmp, 0))
	g := ebr.AcquireGuard(p, ptr, ebr.OrderAcquire)
	g.Reset()
}
