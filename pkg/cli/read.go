package cli

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"doc-narrator/pkg/config"
	"doc-narrator/pkg/domain"
)

var (
	flagKind      string
	flagLang      string
	flagDest      string
	flagStartPage int
)

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Read one document aloud and print the result as JSON",
	Long: `Read fetches the document, narrates it in the terminal session and prints
{original_text, translated_text, ...} when done. Ctrl+C stops after the
sentence being read and still prints the partial result.

Examples:
  doc-narrator read https://example.com/paper.pdf --kind pdf --lang en
  doc-narrator read https://example.com/post --kind html --lang auto --dest fr
  doc-narrator read https://example.com/book.pdf --kind pdf --lang es --start-page 12`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVar(&flagKind, "kind", "", "Content type: pdf or html")
	readCmd.Flags().StringVar(&flagLang, "lang", "", `Source language tag, or "auto" to detect it`)
	readCmd.Flags().StringVar(&flagDest, "dest", domain.DefaultDestLanguage, "Destination language; es reads without translating")
	readCmd.Flags().IntVar(&flagStartPage, "start-page", 1, "First PDF page to read (1-indexed)")
	_ = readCmd.MarkFlagRequired("kind")
	_ = readCmd.MarkFlagRequired("lang")
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	// the history connection and the run itself use ctx; SIGINT only stops narration
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	req := domain.JobRequest{
		URL:            args[0],
		Kind:           domain.ContentKind(flagKind),
		SourceLanguage: flagLang,
		DestLanguage:   flagDest,
		StartPage:      flagStartPage,
	}
	handle, err := a.manager.Start(ctx, req)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			log.Printf("Stopping after the current sentence")
			a.manager.Cancel()
		case <-handle.Done():
		}
	}()

	result, err := handle.Wait(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
