// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmwalk/vmwalk"
	"github.com/vmwalk/vmwalk/config"
	"github.com/vmwalk/vmwalk/log"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Sample the target at --rate Hz until interrupted, then print folded stacks",
	}
	cfg := config.RegisterFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSnapshot(cfg)
	}
	return cmd
}

// runSnapshot attaches to cfg.PID, samples it at cfg.RateHz until SIGINT,
// then writes the aggregated folded-stack counts to stdout, per spec.md
// §6's persisted-sample-stream convention.
func runSnapshot(cfg *config.Config) error {
	if cfg.PID <= 0 {
		return errors.New("vmwalk snapshot: --pid is required")
	}

	var opts []vmwalk.AttachOption
	opts = append(opts, vmwalk.Logger(log.NewStderrLogger()))
	if cfg.HasVersionOverride() {
		opts = append(opts, vmwalk.OverrideVersion(cfg.OverrideVersionMajor, cfg.OverrideVersionMinor, cfg.OverrideVersionPatch))
	}
	if cfg.OverrideAnchor != 0 {
		opts = append(opts, vmwalk.OverrideAnchor(cfg.OverrideAnchor))
	}
	if cfg.MaxThreads > 0 {
		opts = append(opts, vmwalk.MaxThreads(cfg.MaxThreads))
	}
	if cfg.MaxFrameDepth > 0 {
		opts = append(opts, vmwalk.MaxFrameDepth(cfg.MaxFrameDepth))
	}

	target, err := vmwalk.Attach(cfg.PID, opts...)
	if err != nil {
		return err
	}
	defer target.Detach()

	rate := cfg.RateHz
	if rate <= 0 {
		rate = 100
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	counts := map[string]int64{}
	for {
		select {
		case <-sigCh:
			printFolded(os.Stdout, counts)
			return nil
		case <-ticker.C:
			sample, err := target.Snapshot()
			if err != nil {
				if errors.Is(err, vmwalk.ErrGone) {
					printFolded(os.Stdout, counts)
					return nil
				}
				return err
			}
			foldSample(counts, sample)
		}
	}
}

// foldSample accumulates one Sample's per-thread stacks into counts, keyed
// by "thread_id: outer;...;inner" per spec.md §6's format.
func foldSample(counts map[string]int64, sample *vmwalk.Sample) {
	for _, th := range sample.Threads {
		if th.Dropped || len(th.Stack.Frames) == 0 {
			continue
		}
		labels := make([]string, len(th.Stack.Frames))
		for i, f := range th.Stack.Frames {
			labels[i] = frameLabel(f)
		}
		key := fmt.Sprintf("%d: %s", th.ThreadID, strings.Join(labels, ";"))
		counts[key]++
	}
}

func frameLabel(f vmwalk.Frame) string {
	if f.LineNo == 0 {
		return fmt.Sprintf("%s (%s)", f.MethodName, f.Path)
	}
	return fmt.Sprintf("%s (%s:%d)", f.MethodName, f.Path, f.LineNo)
}

// printFolded writes counts to w in descending-count order, matching the
// convention flamegraph.pl-family tools expect: "stack count" per line.
func printFolded(w *os.File, counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	for _, k := range keys {
		fmt.Fprintf(w, "%s %d\n", k, counts[k])
	}
}
