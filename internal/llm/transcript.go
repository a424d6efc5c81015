package llm

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriptSaver implements PromptHook and appends every prompt and raw
// reply to {Dir}/prompt/{worker}.txt.
type TranscriptSaver struct{ Dir string }

func (p *TranscriptSaver) Before(ctx context.Context, worker, prompt string) {
	var buf bytes.Buffer
	buf.WriteString("==== ")
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString(" ====\n")
	buf.WriteString(prompt)
	buf.WriteString("\n\n")
	p.appendTo(worker, buf.Bytes())
}

func (p *TranscriptSaver) After(ctx context.Context, worker, raw string, err error) {
	var buf bytes.Buffer
	buf.WriteString("[RESPONSE]\n")
	if err != nil {
		buf.WriteString("ERROR: " + err.Error() + "\n\n")
	} else {
		buf.WriteString(raw)
		buf.WriteString("\n\n")
	}
	p.appendTo(worker, buf.Bytes())
}

// Path returns the transcript file for worker.
func (p *TranscriptSaver) Path(worker string) string {
	worker = strings.NewReplacer("/", "_", "\\", "_").Replace(worker)
	if worker == "" {
		worker = "unknown"
	}
	return filepath.Join(p.Dir, "prompt", worker+".txt")
}

// Transcripts are best effort; a failed write never fails the request.
func (p *TranscriptSaver) appendTo(worker string, b []byte) {
	path := p.Path(worker)
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, _ := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if f != nil {
		_, _ = f.Write(b)
		_ = f.Close()
	}
}
