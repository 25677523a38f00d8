package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/embedding"
	"github.com/trigtutor/tutor/knowledge"
)

var (
	indexOut       string
	indexThreshold float64
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index <dataset.json>",
	Short: "Embed a raw dataset and write the knowledge base artifact",
	Long: `build-index encodes every question of a raw dataset with the configured
encoder, learns the similarity threshold (80th percentile of sampled pair
similarities) and writes an artifact the tutor loads without re-embedding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc, err := embedding.New(cfg.Embedding)
		if err != nil {
			return err
		}
		b, err := knowledge.LoadFile(cmd.Context(), args[0], knowledge.LoadOptions{
			Encoder:      enc,
			EmbedMissing: true,
			Concurrency:  cfg.Knowledge.EmbedConcurrency,
			Threshold:    indexThreshold,
		})
		if err != nil {
			return err
		}
		if err := writeArtifact(indexOut, b); err != nil {
			return err
		}
		logger.Infof("build-index: wrote %d entries to %s", b.Len(), indexOut)
		fmt.Fprintf(cmd.OutOrStdout(), "%d entries, threshold %.4f, encoder %s (%d dims) -> %s\n",
			b.Len(), b.Threshold(), b.Encoder(), b.Dimensions(), indexOut)
		return nil
	},
}

// writeArtifact replaces path atomically so a watching tutor never reads a
// partial file.
func writeArtifact(path string, b *knowledge.Base) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".trigtutor-index-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := knowledge.WriteArtifact(tmp, b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func init() {
	buildIndexCmd.Flags().StringVarP(&indexOut, "out", "o", "knowledge.index.json", "artifact output path")
	buildIndexCmd.Flags().Float64Var(&indexThreshold, "threshold", 0, "fixed similarity threshold instead of the learned one")
}
