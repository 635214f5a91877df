// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/sky-stress/main.go
// Summary: Concurrency stress driver for the window store. Hammers a
//          strict store with random operations from many goroutines and
//          dies on the first invariant violation.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/framegrace/skylight/sky"
)

var componentKeys = []string{"clock", "welcome", "codeview", "shellrun", "notes"}

func main() {
	workers := flag.Int("workers", 4, "number of concurrent workers")
	ops := flag.Int("ops", 2000, "operations per worker (0 = run until duration)")
	duration := flag.Duration("duration", 30*time.Second, "hard time limit for the run")
	seed := flag.Int64("seed", 0, "base RNG seed, 0 derives one from the clock")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	log.Printf("Stress: %d workers, %d ops each, seed %d", *workers, *ops, *seed)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	store := sky.NewStore(sky.WithStrictInvariants())
	gateway := sky.NewGateway(store, nil)

	counter := &eventCounter{}
	store.Subscribe(counter)

	var st stats
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := &worker{
				store:   store,
				gateway: gateway,
				rng:     rand.New(rand.NewSource(*seed + int64(id))),
				stats:   &st,
			}
			w.run(ctx, *ops)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	store.Unsubscribe(counter)

	// The final state must survive a round trip into a second strict
	// store, same path the session restore takes.
	final := store.Snapshot()
	if err := final.Validate(); err != nil {
		log.Fatalf("final snapshot invalid: %v", err)
	}
	replica := sky.NewStore(sky.WithStrictInvariants())
	if err := replica.LoadSnapshot(final); err != nil {
		log.Fatalf("snapshot round trip rejected: %v", err)
	}
	replica.Shutdown()
	store.Shutdown()

	total := st.applied.Load() + st.rejected.Load()
	fmt.Printf("stress run complete: %d ops in %v (%.0f op/s)\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("  applied %d, rejected %d, checks %d, events %d\n",
		st.applied.Load(), st.rejected.Load(), st.checks.Load(), counter.n.Load())
	fmt.Printf("  final state: %d windows, %d groups\n", len(final.Windows), len(final.Groups))
}

type stats struct {
	applied  atomic.Int64
	rejected atomic.Int64
	checks   atomic.Int64
}

type eventCounter struct{ n atomic.Int64 }

func (c *eventCounter) OnEvent(sky.Event) { c.n.Add(1) }

type worker struct {
	store   *sky.Store
	gateway *sky.Gateway
	rng     *rand.Rand
	stats   *stats
}

func (w *worker) run(ctx context.Context, ops int) {
	for n := 0; ops == 0 || n < ops; n++ {
		if ctx.Err() != nil {
			return
		}
		w.step()
	}
}

// step applies one random operation. Rejections are expected: a target
// picked from the snapshot may be gone by the time the call lands, and
// the store answers with NotFound rather than corrupting state. What
// must never happen is a strict-mode panic.
func (w *worker) step() {
	snap := w.store.Snapshot()
	var err error
	switch w.rng.Intn(20) {
	case 0, 1, 2:
		_, err = w.store.Open(w.pickKey(), nil)
	case 3:
		_, err = w.gateway.LaunchOrFocus(w.pickKey(), nil)
	case 4, 5:
		err = w.store.Close(w.pickWindow(snap))
	case 6, 7:
		err = w.store.BringToFront(w.pickWindow(snap))
	case 8:
		err = w.store.Minimize(w.pickWindow(snap))
	case 9:
		err = w.store.Restore(w.pickWindow(snap))
	case 10:
		err = w.store.Maximize(w.pickWindow(snap))
	case 11:
		err = w.store.SetBounds(w.pickWindow(snap), sky.Bounds{
			X:     w.rng.Intn(120),
			Y:     w.rng.Intn(40),
			Width: 10 + w.rng.Intn(100), Height: 3 + w.rng.Intn(30),
		})
	case 12:
		_, err = w.store.CreateGroup("stress", w.pickWindows(snap, 1+w.rng.Intn(3)))
	case 13:
		err = w.store.AddWindowToGroup(w.pickWindow(snap), w.pickGroup(snap))
	case 14:
		err = w.store.RemoveWindowFromGroup(w.pickWindow(snap))
	case 15:
		err = w.store.SetActiveGroupMember(w.pickGroup(snap), w.pickWindow(snap))
	case 16:
		err = w.store.CollapseGroup(w.pickGroup(snap))
	case 17:
		err = w.store.ExpandGroup(w.pickGroup(snap))
	case 18:
		err = w.store.CloseGroup(w.pickGroup(snap))
	case 19:
		if verr := snap.Validate(); verr != nil {
			log.Fatalf("snapshot validation failed: %v", verr)
		}
		w.stats.checks.Add(1)
		return
	}
	if err != nil {
		w.stats.rejected.Add(1)
		return
	}
	w.stats.applied.Add(1)
}

func (w *worker) pickKey() string {
	return componentKeys[w.rng.Intn(len(componentKeys))]
}

func (w *worker) pickWindow(snap sky.Snapshot) string {
	if len(snap.Windows) == 0 {
		return ""
	}
	return snap.Windows[w.rng.Intn(len(snap.Windows))].ID
}

func (w *worker) pickGroup(snap sky.Snapshot) string {
	if len(snap.Groups) == 0 {
		return ""
	}
	return snap.Groups[w.rng.Intn(len(snap.Groups))].ID
}

func (w *worker) pickWindows(snap sky.Snapshot, n int) []string {
	ids := make([]string, 0, n)
	for _, i := range w.rng.Perm(len(snap.Windows)) {
		ids = append(ids, snap.Windows[i].ID)
		if len(ids) == n {
			break
		}
	}
	return ids
}
