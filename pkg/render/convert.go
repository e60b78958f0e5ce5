package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// rsvgBinary is the librsvg converter; tests point it elsewhere.
var rsvgBinary = "rsvg-convert"

// ToPDF converts SVG to PDF with rsvg-convert. Without librsvg installed it
// fails with an UNSUPPORTED error naming the package to install.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"pdf output needs %s (brew install librsvg, apt install librsvg2-bin)", rsvgBinary)
	}
	cmd := exec.CommandContext(ctx, bin, "--format", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
