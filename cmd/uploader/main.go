package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-upload/pkg/simpleupload/client"
	"golang.org/x/term"
)

// shellConfig is read from the environment
type shellConfig struct {
	APIBaseURL string `env:"API_BASE_URL" env-default:"http://localhost:3001"`
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	var cfg shellConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read environment", "error", err)
		os.Exit(1)
	}

	shell := NewUploadShell(client.NewClient(cfg.APIBaseURL), os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		shell.termFd = int(os.Stdout.Fd())
	}
	shell.Run(context.Background(), os.Stdin)
}

// UploadShell provides an interactive upload interface
type UploadShell struct {
	client   *client.Client
	files    *client.FileList
	uploader *client.Uploader
	out      io.Writer

	// termFd is the terminal to draw the progress bar on; -1 prints plain lines
	termFd int
}

// NewUploadShell creates a new upload shell
func NewUploadShell(apiClient *client.Client, out io.Writer, opts ...client.UploaderOption) *UploadShell {
	s := &UploadShell{
		client: apiClient,
		files:  client.NewFileList(apiClient),
		out:    out,
		termFd: -1,
	}
	opts = append([]client.UploaderOption{client.WithObserver(s.showStatus)}, opts...)
	s.uploader = client.NewUploader(apiClient, client.NewTransfer(), s.files, opts...)
	return s
}

// Run reads commands until exit or end of input
func (s *UploadShell) Run(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)

	fmt.Fprintln(s.out, "=== Simple Upload Shell ===")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(s.out)

	for {
		fmt.Fprint(s.out, "upload> ")
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintln(s.out)
			return
		}

		if !s.Execute(ctx, input) {
			return
		}
	}
}

// Execute runs one command line and reports whether the shell should continue
func (s *UploadShell) Execute(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	switch command := parts[0]; command {
	case "help", "h":
		s.showHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	case "upload", "up":
		s.handleUpload(ctx, parts[1:])
	case "list", "ls":
		s.handleList()
	case "download", "dl":
		s.handleDownload(ctx, parts[1:])
	case "head":
		s.handleHead(ctx, parts[1:])
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for available commands)\n", command)
	}
	return true
}

func (s *UploadShell) showHelp() {
	help := `
Available Commands:

  upload <path>             Upload a local file (max 10MB; JPEG, PNG, GIF, WebP, PDF, text)
  list, ls                  List files uploaded in this session
  download <key> [dest]     Get a download URL, or save the file to dest
  head <key>                Show stored metadata for a key

  help, h                   Show this help
  exit, quit, q             Exit the shell
`
	fmt.Fprintln(s.out, help)
}

func (s *UploadShell) handleUpload(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: upload <path>")
		return
	}

	file, err := client.OpenFile(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	if err := s.uploader.Select(ctx, file); err != nil {
		fmt.Fprintf(s.out, "Upload failed: %v\n", err)
		return
	}

	records := s.files.Records()
	if len(records) > 0 {
		fmt.Fprintf(s.out, "Uploaded %s as %s\n", records[0].Name, records[0].Key)
	}
}

func (s *UploadShell) handleList() {
	records := s.files.Records()
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No files uploaded yet")
		return
	}

	fmt.Fprintf(s.out, "\nUploaded Files (%d):\n", len(records))
	for _, r := range records {
		fmt.Fprintf(s.out, "  %s %-30s %10s  %s  %s\n",
			client.Icon(r.Type),
			r.Name,
			client.FormatFileSize(r.Size),
			r.UploadedAt.Format(time.DateTime),
			r.Key,
		)
	}
	fmt.Fprintln(s.out)
}

func (s *UploadShell) handleDownload(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: download <key> [dest]")
		return
	}
	key := args[0]

	open := func(ctx context.Context, url string) error {
		fmt.Fprintf(s.out, "Download URL: %s\n", url)
		return nil
	}
	if len(args) > 1 {
		open = saveTo(args[1])
	}

	if err := s.files.Download(ctx, key, open); err != nil {
		slog.Debug("Download failed", "key", key, "error", err)
		fmt.Fprintln(s.out, "Download failed. Please try again.")
		return
	}

	if len(args) > 1 {
		fmt.Fprintf(s.out, "Saved %s to %s\n", key, args[1])
	}
}

func (s *UploadShell) handleHead(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: head <key>")
		return
	}

	meta, err := s.client.GetFileMetadata(ctx, args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "\nKey:           %s\n", args[0])
	fmt.Fprintf(s.out, "Content Type:  %s\n", meta.ContentType)
	fmt.Fprintf(s.out, "Size:          %s (%d bytes)\n", client.FormatFileSize(meta.ContentLength), meta.ContentLength)
	fmt.Fprintf(s.out, "Last Modified: %s\n", meta.LastModified.Format(time.RFC3339))
	fmt.Fprintf(s.out, "ETag:          %s\n\n", meta.ETag)
}

// showStatus draws uploader progress
func (s *UploadShell) showStatus(status client.Status) {
	if s.termFd < 0 {
		switch status.State {
		case client.StateRequestingURL:
			fmt.Fprintf(s.out, "Requesting upload URL for %s...\n", status.File)
		case client.StateDone:
			fmt.Fprintln(s.out, "Upload complete")
		}
		return
	}

	switch status.State {
	case client.StateTransferring, client.StateDone:
		fmt.Fprintf(s.out, "\r%s", progressBar(status.Progress, s.barWidth()))
		if status.State == client.StateDone {
			fmt.Fprintln(s.out)
		}
	case client.StateFailed:
		fmt.Fprintln(s.out)
	}
}

func (s *UploadShell) barWidth() int {
	width, _, err := term.GetSize(s.termFd)
	if err != nil || width < 20 {
		return 40
	}
	return min(width-10, 60)
}

func progressBar(percent, width int) string {
	filled := width * percent / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("=", filled), strings.Repeat(" ", width-filled), percent)
}

// saveTo returns an OpenFunc that fetches the URL into path
func saveTo(path string) client.OpenFunc {
	return func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download failed with status: %s", resp.Status)
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, resp.Body); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
