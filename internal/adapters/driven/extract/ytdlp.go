package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure YtDlp implements the interface.
var _ driven.VideoMetadataTool = (*YtDlp)(nil)

// DefaultYtDlpTimeout bounds one yt-dlp invocation.
const DefaultYtDlpTimeout = 45 * time.Second

// YtDlp runs the yt-dlp binary to describe a video without downloading it.
type YtDlp struct {
	path    string
	timeout time.Duration
}

// NewYtDlp creates a metadata tool. An empty path means "yt-dlp" on PATH.
func NewYtDlp(path string, timeout time.Duration) *YtDlp {
	if path == "" {
		path = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = DefaultYtDlpTimeout
	}
	return &YtDlp{path: path, timeout: timeout}
}

// Fetch runs yt-dlp --dump-json for rawURL.
// A non-zero exit or output that is not a JSON object is an error.
func (y *YtDlp) Fetch(ctx context.Context, rawURL string) (*driven.VideoMetadata, error) {
	execCtx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, y.path,
		"--dump-json", "--skip-download", "--no-playlist", "--no-warnings", rawURL)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running %s for %s", y.path, rawURL)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: yt-dlp: %s", domain.ErrExtractionFailed, msg)
	}

	var meta driven.VideoMetadata
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &meta); err != nil {
		return nil, fmt.Errorf("%w: yt-dlp output: %w", domain.ErrExtractionFailed, err)
	}
	return &meta, nil
}
