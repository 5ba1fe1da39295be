package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ovoronin/glavtool/internal/api"
	"github.com/ovoronin/glavtool/internal/chapter"
	"github.com/ovoronin/glavtool/internal/config"
	"github.com/ovoronin/glavtool/internal/docxfile"
	"github.com/ovoronin/glavtool/internal/emit"
	"github.com/ovoronin/glavtool/internal/fb2"
	"github.com/ovoronin/glavtool/internal/generate"
	"github.com/ovoronin/glavtool/internal/rulate"
	"github.com/ovoronin/glavtool/internal/separator"
	"github.com/ovoronin/glavtool/internal/source"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "glavtool",
		Short: "Chapter tooling for Cyrillic fiction manuscripts",
		Long: `Glavtool segments manuscripts into chapters by their "Глава N"
headings and checks the structure around them.

It can:
  - Split a DOCX into one file per chapter, formatting intact
  - Bisect chapters into balanced halves
  - Audit chapter numbering for gaps, duplicates and strays
  - Find chapters with identical content
  - Flag leftover Latin words in Cyrillic text
  - Normalize scene separators to a single marker
  - Convert manuscripts to FB2 and upload chapters to rulate`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to TOML config file")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(bisectCmd())
	rootCmd.AddCommand(duplicatesCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(artifactsCmd())
	rootCmd.AddCommand(separatorsCmd())
	rootCmd.AddCommand(fb2Cmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if cfgFile != "" {
		if err := cfg.ApplyFile(cfgFile); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func generateCmd() *cobra.Command {
	var dest string
	var chapters, parts int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of empty chapter documents",
		Long: `Generate a timestamped directory of empty DOCX files named
"Глава N.M.docx" for every chapter/part combination.

Example:
  glavtool generate --chapters 10 --parts 2 --dest ./drafts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, count, err := generate.Batch(dest, chapters, parts, cfg.Workers)
			if err != nil {
				return err
			}
			fmt.Printf("Generated %d documents in %s\n", count, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", ".", "destination directory")
	cmd.Flags().IntVar(&chapters, "chapters", 1, "number of chapters")
	cmd.Flags().IntVar(&parts, "parts", 1, "parts per chapter")
	return cmd
}

func splitCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "split <manuscript.docx>",
		Short: "Split a manuscript into one DOCX per chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, err := docxfile.Open(args[0])
			if err != nil {
				return err
			}
			chapters := chapter.Segment(doc.Paragraphs())
			if len(chapters) == 0 {
				return fmt.Errorf("no chapter headings found in %s", args[0])
			}
			results, err := emit.Chapters(doc, chapters, out, cfg.Workers)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Println(r.Path)
			}
			fmt.Printf("Wrote %d chapters\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	return cmd
}

func bisectCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "bisect <manuscript.docx>",
		Short: "Split each chapter into two balanced halves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, err := docxfile.Open(args[0])
			if err != nil {
				return err
			}
			chapters := chapter.Segment(doc.Paragraphs())
			if len(chapters) == 0 {
				return fmt.Errorf("no chapter headings found in %s", args[0])
			}
			results, skipped, err := emit.Bisect(doc, chapters, out, cfg.Workers)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Println(r.Path)
			}
			for _, label := range skipped {
				fmt.Printf("Skipped %s: too short to split\n", label)
			}
			fmt.Printf("Wrote %d halves\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	return cmd
}

func duplicatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates <manuscript>",
		Short: "Find chapters with identical content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapters, err := segmentFile(args[0])
			if err != nil {
				return err
			}
			groups := chapter.FindDuplicates(chapters)
			if len(groups) == 0 {
				fmt.Println("No duplicate chapters found")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("Identical content: %s\n", strings.Join(g.Labels, ", "))
			}
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <manuscript>",
		Short: "Audit chapter numbering for gaps, duplicates and strays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapters, err := segmentFile(args[0])
			if err != nil {
				return err
			}
			issues := chapter.Audit(chapter.Labels(chapters))
			if len(issues.Missing) == 0 && len(issues.Duplicates) == 0 && len(issues.Unexpected) == 0 {
				fmt.Printf("Numbering is consistent across %d chapters\n", len(chapters))
				return nil
			}
			for _, label := range issues.Missing {
				fmt.Printf("Missing:    %s\n", label)
			}
			for _, label := range issues.Duplicates {
				fmt.Printf("Duplicate:  %s\n", label)
			}
			for _, label := range issues.Unexpected {
				fmt.Printf("Unexpected: %s\n", label)
			}
			return nil
		},
	}
}

func artifactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts <manuscript>",
		Short: "Find leftover Latin words in Cyrillic text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := source.ReadFile(args[0])
			if err != nil {
				return err
			}
			occ := chapter.ScanArtifacts(texts)
			if len(occ) == 0 {
				fmt.Println("No artifact words found")
				return nil
			}
			for _, word := range occ.Words() {
				var at []string
				for _, p := range occ[word] {
					at = append(at, fmt.Sprintf("%d:%d", p.Paragraph, p.Offset))
				}
				fmt.Printf("%s  (%s)\n", word, strings.Join(at, ", "))
			}
			return nil
		},
	}
}

func separatorsCmd() *cobra.Command {
	var write bool
	var out string

	cmd := &cobra.Command{
		Use:   "separators <manuscript.docx>",
		Short: "Find scene separators, optionally normalize them",
		Long: `List paragraphs acting as scene separators (bordered paragraphs,
horizontal rules, asterisk rows). With --write, each one is replaced by
the canonical marker and the document is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := docxfile.Open(args[0])
			if err != nil {
				return err
			}

			if !write {
				found := separator.Find(doc)
				if len(found) == 0 {
					fmt.Println("No separators found")
					return nil
				}
				for _, f := range found {
					fmt.Println(f.Describe())
				}
				return nil
			}

			changed := separator.NormalizeDocument(doc)
			dest := out
			if dest == "" {
				dest = args[0]
			}
			if err := doc.Save(dest); err != nil {
				return err
			}
			fmt.Printf("Normalized %d separators in %s\n", len(changed), dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "replace separators with the canonical marker")
	cmd.Flags().StringVar(&out, "out", "", "write result to this path instead of in place")
	return cmd
}

func fb2Cmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "fb2 <manuscript>",
		Short: "Convert a manuscript to FB2",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := source.ReadFile(args[0])
			if err != nil {
				return err
			}
			path, err := fb2.Convert(texts, dest, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", ".", "destination directory")
	return cmd
}

func uploadCmd() *cobra.Command {
	var opts rulate.Options

	cmd := &cobra.Command{
		Use:   "upload <book-url> <chapter.docx>...",
		Short: "Upload chapter files to a rulate book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateUpload(); err != nil {
				return err
			}

			client, err := rulate.NewClient(cfg.RulateURL, cfg.RulateUsername, cfg.RulatePassword, cfg.HTTPTimeout)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := client.Login(ctx); err != nil {
				return err
			}

			uploaded, err := client.UploadChapters(ctx, args[0], args[1:], opts)
			if err != nil {
				return err
			}
			ok := 0
			for _, path := range args[1:] {
				if uploaded[path] {
					ok++
					fmt.Printf("Uploaded %s\n", path)
				} else {
					fmt.Printf("FAILED   %s\n", path)
				}
			}
			fmt.Printf("%d of %d chapters uploaded\n", ok, len(args)-1)
			if ok < len(args)-1 {
				return fmt.Errorf("%d uploads failed", len(args)-1-ok)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Deferred, "deferred", false, "upload as drafts")
	cmd.Flags().BoolVar(&opts.Subscription, "subscription", false, "restrict to subscribers")
	cmd.Flags().IntVar(&opts.Volume, "volume", 0, "volume to file chapters under")
	cmd.Flags().StringVar(&opts.PublishAt, "publish-at", "", "scheduled publication time")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

			srv := api.NewServer(log, cfg)
			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting glavtool", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

// segmentFile reads any supported manuscript format and segments it
// into chapters for the text-only analyses.
func segmentFile(path string) ([]chapter.Chapter, error) {
	texts, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	chapters := chapter.Segment(chapter.Paragraphs(texts))
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapter headings found in %s", path)
	}
	return chapters, nil
}
