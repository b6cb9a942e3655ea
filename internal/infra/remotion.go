package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/domain/composition"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"github.com/google/uuid"
)

// RemotionRenderer shells out to the Remotion CLI. The plan is written
// to a props file and the mp4 lands in {public}/videos.
type RemotionRenderer struct {
	command   []string
	entry     string
	workDir   string
	publicDir string
	tmpDir    string
	timeout   time.Duration
	now       func() time.Time
}

type RemotionConfig struct {
	Command   string // e.g. "npx remotion render"
	Entry     string
	WorkDir   string
	PublicDir string
	TmpDir    string
	Timeout   time.Duration
}

func NewRemotionRenderer(cfg RemotionConfig) *RemotionRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RemotionRenderer{
		command:   strings.Fields(cfg.Command),
		entry:     cfg.Entry,
		workDir:   cfg.WorkDir,
		publicDir: cfg.PublicDir,
		tmpDir:    cfg.TmpDir,
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

var _ ports.Renderer = (*RemotionRenderer)(nil)

// Args builds the CLI arguments after the command itself.
func (r *RemotionRenderer) Args(plan *composition.RenderPlan, propsFile, outFile string) []string {
	args := append([]string{}, r.command[1:]...)
	return append(args,
		r.entry,
		plan.Composition,
		outFile,
		"--props="+propsFile,
		fmt.Sprintf("--frames=0-%d", plan.TotalFrames-1),
	)
}

func (r *RemotionRenderer) Render(ctx context.Context, plan *composition.RenderPlan) (string, error) {
	if len(r.command) == 0 {
		return "", fmt.Errorf("render command is empty")
	}
	if plan.TotalFrames < 1 {
		return "", fmt.Errorf("render plan has no frames")
	}

	key := fmt.Sprintf("%d-%s", r.now().UnixMilli(), uuid.NewString()[:8])
	start := time.Now()

	if err := os.MkdirAll(r.tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir tmp: %w", err)
	}
	props, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("marshal props: %w", err)
	}
	propsFile, err := filepath.Abs(filepath.Join(r.tmpDir, "props-"+key+".json"))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(propsFile, props, 0o644); err != nil {
		return "", fmt.Errorf("write props: %w", err)
	}
	defer os.Remove(propsFile)

	videosDir := filepath.Join(r.publicDir, "videos")
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir videos: %w", err)
	}
	name := "video-" + key + ".mp4"
	outFile, err := filepath.Abs(filepath.Join(videosDir, name))
	if err != nil {
		return "", err
	}

	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := r.Args(plan, propsFile, outFile)
	log.Printf("[RENDER][START] comp=%s frames=%d out=%s", plan.Composition, plan.TotalFrames, name)

	cmd := exec.CommandContext(rctx, r.command[0], args...)
	cmd.Dir = r.workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if stderr.Len() > 0 {
		log.Printf("[RENDER][STDERR] %s", textutil.Trim(stderr.String(), 2000))
	}
	if err != nil {
		if rctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("render timed out after %s", r.timeout)
		}
		return "", fmt.Errorf("render failed: %w", err)
	}

	log.Printf("[RENDER][OK] out=%s dur=%s", name, time.Since(start))
	return "/videos/" + name, nil
}
