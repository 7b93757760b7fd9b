package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Drop both vector indexes and rebuild the mail index from the mailbox",
	Long: "Drops the mail and match indexes together with their records, recreates them, " +
		"and backfills the mail index by re-embedding the mailbox. Job and candidate " +
		"records are rebuilt gradually as classified mail arrives.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return reindex(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func reindex(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("recreating indexes")
	if err := a.mailIndex.Recreate(ctx); err != nil {
		return fmt.Errorf("recreate %s: %w", a.mailIndex.Name(), err)
	}
	if err := a.matchIndex.Recreate(ctx); err != nil {
		return fmt.Errorf("recreate %s: %w", a.matchIndex.Name(), err)
	}

	a.logger.Info("fetching mailbox", zap.Int("limit", a.cfg.Mail.ReindexLimit))
	messages, err := a.mailer.FetchAll(ctx, a.cfg.Mail.ReindexLimit)
	if err != nil {
		return fmt.Errorf("fetch mailbox: %w", err)
	}

	stored, failed := 0, 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := backfillOne(ctx, a, msg); err != nil {
			failed++
			a.logger.Error("backfill failed",
				zap.String("message_id", msg.MessageID), zap.Error(err))
			continue
		}
		stored++
	}

	a.logger.Info("reindex complete",
		zap.Int("fetched", len(messages)),
		zap.Int("stored", stored),
		zap.Int("failed", failed),
	)
	fmt.Printf("reindexed %d of %d messages (%d failed)\n", stored, len(messages), failed)
	return nil
}

func backfillOne(ctx context.Context, a *app, msg domain.Message) error {
	subjectRes, err := a.embedder.Embed(ctx, msg.Subject)
	if err != nil {
		return fmt.Errorf("embed subject: %w", err)
	}
	contentRes, err := a.embedder.Embed(ctx, msg.Content)
	if err != nil {
		return fmt.Errorf("embed content: %w", err)
	}

	combined, err := domain.CombineWeighted(
		subjectRes.Embedding, contentRes.Embedding,
		a.cfg.Search.SubjectWeight, a.cfg.Search.ContentWeight)
	if err != nil {
		return fmt.Errorf("combine embeddings: %w", err)
	}

	return a.mailRepo.StoreEmail(ctx, msg, combined)
}
