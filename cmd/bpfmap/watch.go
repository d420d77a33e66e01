// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"context"
	"os/signal"
	"syscall"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/export"
	"grimm.is/bpfmap/internal/loader"
	"grimm.is/bpfmap/internal/sys"
)

// runWatch serves prometheus and JSON statistics for the targeted maps until
// interrupted. In sim mode every manifest map is watched; against a real
// kernel it watches the single pinned map.
func runWatch(opts *options) error {
	var (
		coll *loader.Collection
		gw   *sys.Instrumented
	)

	switch {
	case opts.sim:
		if opts.manifest == "" {
			return apperrors.New(apperrors.KindValidation, "sim mode needs -manifest")
		}
		man, err := loader.LoadManifest(opts.manifest)
		if err != nil {
			return err
		}
		sim := sys.NewSimGateway()
		gw = sys.NewInstrumented(sim)
		coll, err = man.CreateSim(sim, gw)
		if err != nil {
			return err
		}
	case opts.pin != "":
		gw = sys.NewInstrumented(sys.Native())
		km, err := loader.OpenPinned(opts.pin, gw, opts.log)
		if err != nil {
			return err
		}
		defer km.Close()
		coll = loader.NewCollection()
		if err := coll.Add(km.Map()); err != nil {
			return err
		}
	default:
		return apperrors.New(apperrors.KindValidation, "watch needs -pin or -sim with -manifest")
	}

	exp, err := export.New(coll, gw, export.Config{
		Listen:   opts.listen,
		Interval: opts.interval,
	}, opts.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return exp.Run(ctx)
}
