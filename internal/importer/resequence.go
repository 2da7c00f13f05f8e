package importer

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/openjournals/backissue/internal/repo"
)

// ResequenceIssues reorders the journal's published issues newest first
// (volume descending, then issue number descending, numbers compared
// numerically where possible) and marks the newest as the current issue.
func ResequenceIssues(ctx context.Context, r repo.Repository, journalID int64) error {
	issues, err := r.PublishedIssues(ctx, journalID)
	if err != nil {
		return fmt.Errorf("listing published issues: %w", err)
	}
	if len(issues) == 0 {
		return nil
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Volume != issues[j].Volume {
			return issues[i].Volume > issues[j].Volume
		}
		ni, iok := numericNumber(issues[i].Number)
		nj, jok := numericNumber(issues[j].Number)
		switch {
		case iok && jok:
			return ni > nj
		case iok != jok:
			// Numeric issue numbers sort ahead of labels like "S1".
			return iok
		default:
			return issues[i].Number > issues[j].Number
		}
	})

	for i, issue := range issues {
		if err := r.UpdateIssueOrder(ctx, issue.ID, i+1); err != nil {
			return fmt.Errorf("ordering issue %d(%s): %w", issue.Volume, issue.Number, err)
		}
	}
	if err := r.SetCurrentIssue(ctx, journalID, issues[0].ID); err != nil {
		return fmt.Errorf("setting current issue: %w", err)
	}
	return nil
}

func numericNumber(number string) (int, bool) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return 0, false
	}
	return n, true
}
