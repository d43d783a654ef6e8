// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
)

type Upserter interface {
	UpsertMember(ctx context.Context, u models.MemberUpsert) (bool, error)
}

// Importer loads roster rows into the member registry.
type Importer struct {
	store   Upserter
	cost    int
	workers int
}

func NewImporter(store Upserter, bcryptCost int) *Importer {
	return &Importer{store: store, cost: bcryptCost, workers: runtime.GOMAXPROCS(0)}
}

// ImportBatch upserts every complete row keyed by member number. Incomplete
// or failing rows are reported and skipped; the rest of the batch still
// goes through. Errors are listed in input order, rows numbered from 1.
func (im *Importer) ImportBatch(ctx context.Context, rows []map[string]any) (models.ImportResult, error) {
	rowErrs := make([]string, len(rows))
	saved := make([]bool, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, raw := range rows {
		g.Go(func() error {
			row := ParseRow(raw)
			if !row.Complete() {
				rowErrs[i] = fmt.Sprintf("row %d: incomplete data (member %s)", i+1, numberOrPlaceholder(row.MemberNumber))
				return nil
			}

			hash, err := auth.HashSecret(row.Secret, im.cost)
			if err != nil {
				rowErrs[i] = fmt.Sprintf("row %d: could not hash secret (member %s)", i+1, row.MemberNumber)
				return nil
			}

			_, err = im.store.UpsertMember(gctx, models.MemberUpsert{
				MemberNumber: row.MemberNumber,
				Name:         row.Name,
				FeeStatus:    row.FeeStatus,
				SecretHash:   hash,
			})
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				slog.Error("failed to import member", "member_number", row.MemberNumber, "error", err)
				rowErrs[i] = fmt.Sprintf("row %d: could not be saved (member %s)", i+1, row.MemberNumber)
				return nil
			}
			saved[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.ImportResult{}, apperr.FromStore(err, "failed to import members")
	}

	result := models.ImportResult{Errors: []string{}}
	for i := range rows {
		if saved[i] {
			result.Imported++
		}
		if rowErrs[i] != "" {
			result.Errors = append(result.Errors, rowErrs[i])
		}
	}
	slog.Info("roster imported", "imported", result.Imported, "errors", len(result.Errors))
	return result, nil
}

func numberOrPlaceholder(n string) string {
	if n == "" {
		return "no number"
	}
	return n
}
