package service

import (
	"context"
	"time"

	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/workspace"
	"golang.org/x/sync/errgroup"
)

// FetchPrograms downloads concurrently the remote program artifacts of the
// targets into the local artifact cache. Targets without a remote program
// are skipped, and cached programs are not downloaded again.
func FetchPrograms(targets []*workspace.Target, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		if target.ProgramURL == "" {
			log.Debugw("target without remote program", "target", target.Name)
			continue
		}
		g.Go(func() error {
			if err := target.ProgramArtifact().Fetch(ctx); err != nil {
				return err
			}
			log.Infow("program available", "target", target.Name, "hash", target.ProgramHash.String())
			return nil
		})
	}
	return g.Wait()
}
