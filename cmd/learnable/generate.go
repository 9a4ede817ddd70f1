package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/mindmap"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/orchestrator"
	"github.com/learnable-ai/companion/internal/upload"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "generate one artifact from the terminal",
		ArgsUsage: "<summary|mindmap|quiz|flashcards>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "content to learn from"},
			&cli.StringFlag{Name: "url", Usage: "YouTube or web page URL"},
			&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "audio, video or document file (repeatable)"},
			&cli.IntFlag{Name: "questions", Aliases: []string{"n"}, Usage: "quiz size: 3, 5, 7 or 10", Value: orchestrator.DefaultNumQuestions},
			&cli.StringFlag{Name: "format", Usage: "json, or mermaid|layout for mind maps", Value: "json"},
			&cli.StringFlag{Name: "api-key", Usage: "API key for this run", EnvVars: []string{"LEARNABLE_API_KEY"}},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	const funcName = "generateAction"

	kind, ok := models.ParseArtifactKind(c.Args().First())
	if !ok {
		return fmt.Errorf("unknown artifact %q: expected summary, mindmap, quiz or flashcards", c.Args().First())
	}
	switch n := c.Int("questions"); n {
	case 3, 5, 7, 10:
	default:
		return fmt.Errorf("--questions must be 3, 5, 7 or 10, got %d", n)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if key := c.String("api-key"); key != "" {
		// A one-off key stays in memory.
		cfg.Backend.APIKey = key
		cfg.Storage.SettingsFile = ""
	} else {
		cfg.Storage.SettingsFile = existingOrEmpty(cfg.Storage.SettingsFile)
	}

	// Files are staged in a scratch store so a headless run leaves no uploads behind.
	scratch, err := os.MkdirTemp("", "learnable-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	app, err := newCore(cfg, scratch)
	if err != nil {
		return err
	}

	if err := queueFiles(app.queue, c.StringSlice("file")); err != nil {
		return err
	}

	app.proc.OnStatus(func(st models.ProcessingStatus) {
		logger.Info(st.Message,
			zap.String("function", funcName),
			zap.String("state", string(st.State)),
			zap.Int("progress", st.Progress),
		)
	})

	err = app.proc.Generate(c.Context, kind, orchestrator.Request{
		Text:         c.String("text"),
		URL:          c.String("url"),
		NumQuestions: c.Int("questions"),
	})
	if err != nil {
		return err
	}

	return printResult(os.Stdout, kind, app.proc.Results(), c.String("format"))
}

func queueFiles(q *upload.Queue, paths []string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		_, rej, err := q.Add(upload.Incoming{Name: filepath.Base(p), Size: info.Size(), Reader: f})
		f.Close()
		if err != nil {
			return err
		}
		if rej != nil {
			return fmt.Errorf("%s: %s", rej.Name, rej.Reason)
		}
	}
	return nil
}

// existingOrEmpty keeps the settings file only if it already exists, so a
// headless run never creates one.
func existingOrEmpty(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func printResult(w io.Writer, kind models.ArtifactKind, res models.ProcessingResults, format string) error {
	if kind == models.ArtifactMindmap && format != "json" {
		r, err := mindmap.ByName(format)
		if err != nil {
			return err
		}
		var root *models.MindmapNode
		if res.Mindmap != nil {
			root = res.Mindmap.Mindmap
		}
		d, err := r.Render(root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, d.Body)
		return err
	}
	if format != "json" {
		return fmt.Errorf("format %q is only available for mind maps", format)
	}

	var v interface{}
	switch kind {
	case models.ArtifactSummary:
		v = res.Summary
	case models.ArtifactMindmap:
		v = res.Mindmap
	case models.ArtifactQuiz:
		v = res.Quiz
	case models.ArtifactFlashcards:
		v = res.Flashcards
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
