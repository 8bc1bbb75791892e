package pipeline

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"

	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	skyio "github.com/matzehuels/skyrender/pkg/io"
	"github.com/matzehuels/skyrender/pkg/render"
	"github.com/matzehuels/skyrender/pkg/sky"
)

// Render writes the requested outputs for a normalized accumulation into
// opts.OutputDir and returns the written paths. Every file is replaced
// atomically. The bright star list is only written when it is non-empty.
func (r *Runner) Render(ctx context.Context, opts Options, acc *Accumulation) (files []string, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	done := r.stage(ctx, StageRender)
	defer func() { done(err) }()

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, skyerrors.Wrap(skyerrors.ErrCodeInvalidPath, err, "create output dir")
	}

	res := acc.Buffer.Res
	var strip *image.NRGBA
	if opts.Wants(FormatStrip) || opts.Wants(FormatNet) {
		strip = render.FaceStrip(acc.Buffer, opts.ExposureValue)
	}

	write := func(name string, fn func(io.Writer) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(opts.OutputDir, name)
		if err := skyio.WriteFileAtomic(path, 0o644, fn); err != nil {
			if skyerrors.GetCode(err) == "" {
				err = skyerrors.Wrap(skyerrors.ErrCodeEncode, err, "write %s", name)
			}
			return err
		}
		opts.Logger.Debug("wrote output", "path", path)
		files = append(files, path)
		return nil
	}

	for _, format := range AllFormats {
		if !opts.Wants(format) {
			continue
		}
		switch format {
		case FormatStrip:
			err = write(render.StripName(res), func(w io.Writer) error {
				return render.EncodePNG(w, strip)
			})
		case FormatNet:
			err = write(render.NetName(res), func(w io.Writer) error {
				return render.EncodePNG(w, render.Net(strip, res))
			})
		case FormatKTX2:
			err = write(render.KTX2Name(res), func(w io.Writer) error {
				return render.EncodeKTX2(w, acc.Buffer, render.KTX2Options{CompressionLevel: opts.CompressionLevel})
			})
		case FormatBright:
			if len(acc.BrightStars) == 0 {
				continue
			}
			err = write(render.BrightStarsName, func(w io.Writer) error {
				_, err := w.Write(sky.EncodeBrightStars(acc.BrightStars))
				return err
			})
		}
		if err != nil {
			return files, err
		}
	}
	return files, nil
}
