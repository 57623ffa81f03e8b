package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/haivivi/gearstore/cmd/gearstore/internal/config"
	"github.com/haivivi/gearstore/pkg/docstore"
	"github.com/haivivi/gearstore/pkg/telemetry"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Telemetry queue (stats, peek, trim, drain)",
}

var queueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue size against its byte budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		doc, ok, err := store.Get(cmd.Context(), docstore.DefaultQueueKey)
		if err != nil {
			return err
		}

		var events []any
		var size int
		if ok {
			events = docstore.Events(doc, docstore.DefaultQueueField)
			data, merr := json.Marshal(doc)
			if merr != nil {
				return merr
			}
			size = len(data)
		}
		maxBytes, target := queueBudget(cfg)
		pct := float64(size) * 100 / float64(maxBytes)

		fmt.Println(ui.Title.Render("telemetry queue"))
		fmt.Printf("  %s %s\n", ui.Label.Render("events:"), ui.Value.Render(fmt.Sprintf("%d", len(events))))
		sizeLine := fmt.Sprintf("%d / %d bytes (%.1f%%)", size, maxBytes, pct)
		if pct >= 90 {
			fmt.Printf("  %s %s\n", ui.Label.Render("size:"), ui.Warn.Render(sizeLine))
		} else {
			fmt.Printf("  %s %s\n", ui.Label.Render("size:"), ui.Value.Render(sizeLine))
		}
		fmt.Printf("  %s %s\n", ui.Label.Render("trim target:"), ui.Value.Render(fmt.Sprintf("%d bytes", target)))
		if len(events) > 0 {
			if at, ok := eventTime(events[0]); ok {
				fmt.Printf("  %s %s\n", ui.Label.Render("oldest:"), at)
			}
			if at, ok := eventTime(events[len(events)-1]); ok {
				fmt.Printf("  %s %s\n", ui.Label.Render("newest:"), at)
			}
		}
		return nil
	},
}

var queuePeekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Print queued events without removing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		doc, ok, err := store.Get(cmd.Context(), docstore.DefaultQueueKey)
		if err != nil {
			return err
		}
		var events []any
		if ok {
			events = docstore.Events(doc, docstore.DefaultQueueField)
		}
		if events == nil {
			events = []any{}
		}
		expr, _ := cmd.Flags().GetString("jq")
		return printJSON(os.Stdout, events, expr)
	},
}

var queueTrimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Evict oldest events until the queue fits a byte target",
	Long: `Evict oldest events until the encoded queue document fits the target.

The store trims automatically on every write; this command forces a
pass, optionally with a custom target, for reclaiming space by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		target, _ := cmd.Flags().GetInt("target")
		if target <= 0 {
			_, target = queueBudget(cfg)
		}

		ctx := cmd.Context()
		doc, ok, err := store.Get(ctx, docstore.DefaultQueueKey)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("queue is empty")
			return nil
		}
		trimmed, dropped, err := docstore.TrimQueue(docstore.JSON{}, doc, docstore.DefaultQueueField, target)
		if err != nil {
			return err
		}
		if dropped == 0 {
			fmt.Printf("queue already fits %d bytes\n", target)
			return nil
		}
		if err := store.Set(ctx, docstore.DefaultQueueKey, trimmed); err != nil {
			return err
		}
		fmt.Printf("Dropped %d oldest events\n", dropped)
		return nil
	},
}

var queueDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Ship queued events to the configured S3 bucket, then clear",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.Sink.Bucket == "" {
			return fmt.Errorf("sink.bucket is not configured (edit %s)", cfg.Path())
		}
		client, err := newS3Client(cfg.Sink)
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}

		buf := telemetry.NewBuffer(store, nil)
		sink := telemetry.NewS3Sink(client, cfg.Sink.Bucket, cfg.Sink.Prefix)
		n, err := buf.DrainTo(cmd.Context(), sink)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("queue is empty")
			return nil
		}
		fmt.Printf("Delivered %d events to s3://%s\n", n, cfg.Sink.Bucket)
		return nil
	},
}

// queueBudget returns the effective queue byte budget.
func queueBudget(cfg *config.Config) (maxBytes, target int) {
	maxBytes = cfg.Storage.MaxQueueBytes
	if maxBytes <= 0 {
		maxBytes = docstore.DefaultMaxQueueBytes
	}
	target = cfg.Storage.TrimTargetBytes
	if target <= 0 {
		target = docstore.DefaultTrimTargetBytes
	}
	return maxBytes, target
}

// eventTime extracts the "at" unix-millis timestamp from an
// envelope-shaped event.
func eventTime(event any) (string, bool) {
	m, ok := event.(map[string]any)
	if !ok {
		return "", false
	}
	ms, ok := m["at"].(float64)
	if !ok {
		return "", false
	}
	return time.UnixMilli(int64(ms)).Format(time.RFC3339), true
}

// newS3Client builds an S3 client from the sink settings.
func newS3Client(sc config.Sink) (*s3.Client, error) {
	if sc.AccessKeyID == "" || sc.SecretAccessKey == "" {
		return nil, fmt.Errorf("sink credentials are not configured")
	}
	opts := s3.Options{
		Region: sc.Region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     sc.AccessKeyID,
				SecretAccessKey: sc.SecretAccessKey,
			}, nil
		}),
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}

func init() {
	queuePeekCmd.Flags().String("jq", "", "jq expression applied to the event array")
	queueTrimCmd.Flags().Int("target", 0, "byte target (default: configured trim target)")
	queueCmd.AddCommand(queueStatsCmd, queuePeekCmd, queueTrimCmd, queueDrainCmd)
	rootCmd.AddCommand(queueCmd)
}
